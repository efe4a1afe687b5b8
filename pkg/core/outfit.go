package core

// OutfitKind classifies an outfit.
type OutfitKind uint8

const (
	OutfitUtility OutfitKind = iota
	OutfitBolt
	OutfitLauncher
)

var outfitKindNames = map[OutfitKind]string{
	OutfitUtility:  "utility",
	OutfitBolt:     "bolt",
	OutfitLauncher: "launcher",
}

func (k OutfitKind) String() string {
	if s, ok := outfitKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// ParseOutfitKind maps a kind name back to its OutfitKind. Unknown names are utilities.
func ParseOutfitKind(s string) OutfitKind {
	for k, name := range outfitKindNames {
		if name == s {
			return k
		}
	}
	return OutfitUtility
}

// Outfit describes a piece of equipment.
type Outfit struct {
	Name         string     `json:"name"`
	Kind         OutfitKind `json:"kind"`
	Mass         float64    `json:"mass"`
	AmmoType     string     `json:"ammoType,omitempty"`
	AmmoCapacity int        `json:"ammoCapacity,omitempty"`
	AmmoMass     float64    `json:"ammoMass,omitempty"`
}

// OutfitSlot is a mount point on a vehicle, optionally holding an outfit.
type OutfitSlot struct {
	Outfit *Outfit `json:"outfit,omitempty"`
	Ammo   int     `json:"ammo,omitempty"`
}

// IsLauncher reports whether the slot holds a launcher that takes ammunition.
func (s OutfitSlot) IsLauncher() bool {
	return s.Outfit != nil && s.Outfit.Kind == OutfitLauncher && s.Outfit.AmmoType != ""
}

// AmmoType returns the ammunition the slot's launcher takes, or "".
func (s OutfitSlot) AmmoType() string {
	if !s.IsLauncher() {
		return ""
	}
	return s.Outfit.AmmoType
}
