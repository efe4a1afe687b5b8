package model

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestTableNames(t *testing.T) {
	tests := []struct {
		name     string
		model    interface{ TableName() string }
		expected string
	}{
		{"Scenario", &Scenario{}, "scenarios"},
		{"Vehicle", &Vehicle{}, "vehicles"},
		{"BoardingNotice", &BoardingNotice{}, "boarding_notices"},
		{"HitEvent", &HitEvent{}, "hit_events"},
		{"Performance", &Performance{}, "performances"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.model.TableName())
		})
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(DatabaseModels...))
	return db
}

func TestOutcomeSummary(t *testing.T) {
	db := openTestDB(t)

	sc := Scenario{Name: "Ambush", StartTime: time.Now()}
	require.NoError(t, db.Create(&sc).Error)
	other := Scenario{Name: "Convoy", StartTime: time.Now()}
	require.NoError(t, db.Create(&other).Error)

	pt := geom.NewPoint(geom.Coordinates{XY: geom.XY{X: 1, Y: 2}})
	notices := []BoardingNotice{
		{ScenarioID: sc.ID, Kind: "started", Code: "CAN_BOARD", Position: pt},
		{ScenarioID: sc.ID, Kind: "cancelled", Code: "TOO_FAR", Position: pt},
		{ScenarioID: sc.ID, Kind: "cancelled", Code: "TOO_FAR", Position: pt},
		{ScenarioID: other.ID, Kind: "started", Code: "CAN_BOARD", Position: pt},
	}
	require.NoError(t, db.Create(&notices).Error)

	got, err := OutcomeSummary(db, sc.ID)
	require.NoError(t, err)

	assert.Equal(t, []OutcomeCount{
		{Kind: "cancelled", Code: "TOO_FAR", Count: 2},
		{Kind: "started", Code: "CAN_BOARD", Count: 1},
	}, got)
}

func TestLatestScenario(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&Scenario{Name: "first", StartTime: base}).Error)
	require.NoError(t, db.Create(&Scenario{Name: "second", StartTime: base.Add(time.Hour)}).Error)

	got, err := LatestScenario(db)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Name)
}

func TestLatestScenario_Empty(t *testing.T) {
	db := openTestDB(t)

	_, err := LatestScenario(db)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
