// pkg/core/events.go
package core

import (
	"fmt"
	"time"
)

// NoticeKind identifies what a Notice reports.
type NoticeKind uint8

const (
	NoticeRejected         NoticeKind = iota // start refused, Code says why
	NoticeStarted                            // session created, Remaining is the board time
	NoticeCancelled                          // session torn down, Code says why
	NoticeStunned                            // boarder stunned after the target fled
	NoticeCompleted                          // timer ran out, looting resolved
	NoticeSkimmed                            // flat credit skim, Amount credits
	NoticeLockout                            // steal attempt failed
	NoticeRetaliation                        // steal attempt tripped the target's self-destruct
	NoticeLootTaken                          // Amount of Item moved for Category
	NoticeLootEmpty                          // target has nothing of Category
	NoticeLootNoRoom                         // boarder has no cargo room
	NoticeLootAtCapacity                     // boarder already full for Category
	NoticeLootIncompatible                   // no ammo matching the boarder's launchers
	NoticeLootUnknown                        // Item is a token outside the loot vocabulary
	NoticeNoLootSelected                     // boarding with an empty loot selection
	NoticeRecovered                          // the boarder's own escort was docked instead of boarded
)

var noticeNames = [...]string{
	NoticeRejected:         "rejected",
	NoticeStarted:          "started",
	NoticeCancelled:        "cancelled",
	NoticeStunned:          "stunned",
	NoticeCompleted:        "completed",
	NoticeSkimmed:          "skimmed",
	NoticeLockout:          "lockout",
	NoticeRetaliation:      "retaliation",
	NoticeLootTaken:        "loot_taken",
	NoticeLootEmpty:        "loot_empty",
	NoticeLootNoRoom:       "loot_no_room",
	NoticeLootAtCapacity:   "loot_at_capacity",
	NoticeLootIncompatible: "loot_incompatible",
	NoticeLootUnknown:      "loot_unknown",
	NoticeNoLootSelected:   "no_loot_selected",
	NoticeRecovered:        "recovered",
}

func (k NoticeKind) String() string {
	if int(k) < len(noticeNames) {
		return noticeNames[k]
	}
	return fmt.Sprintf("notice(%d)", uint8(k))
}

// MarshalText encodes the kind by name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *NoticeKind) UnmarshalText(b []byte) error {
	for i, name := range noticeNames {
		if name == string(b) {
			*k = NoticeKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown notice kind: %q", string(b))
}

// IsLoot reports whether the notice belongs to a loot category result.
func (k NoticeKind) IsLoot() bool {
	return k >= NoticeLootTaken && k <= NoticeLootIncompatible
}

// Notice is what the boarding core tells the user-feedback collaborator. It carries
// codes and parameters only; turning it into text is somebody else's job.
type Notice struct {
	Kind      NoticeKind   `json:"kind"`
	Tick      uint64       `json:"tick"`
	Time      time.Time    `json:"time"`
	Boarder   VehicleID    `json:"boarder"`
	Target    VehicleID    `json:"target"`
	Code      OutcomeCode  `json:"code"`
	Category  LootCategory `json:"category"`
	Item      string       `json:"item,omitempty"`
	Amount    float64      `json:"amount,omitempty"`
	Remaining float64      `json:"remaining,omitempty"`
	Crewed    bool         `json:"crewed,omitempty"`
	Position  Vec2         `json:"position"`
}

// Damage is a damage event handed to the damage pipeline.
type Damage struct {
	Type        string  `json:"type"`
	Amount      float64 `json:"amount"`
	Penetration float64 `json:"penetration"`
	Disable     float64 `json:"disable"`
}

// HitEvent is a damage event as recorded by the damage pipeline.
type HitEvent struct {
	ID      uint      `json:"id"`
	Tick    uint64    `json:"tick"`
	Time    time.Time `json:"time"`
	Victim  VehicleID `json:"victim"`
	Shooter VehicleID `json:"shooter"`
	Damage  Damage    `json:"damage"`
}
