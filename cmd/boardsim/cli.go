package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gorm.io/gorm"

	"github.com/OCAP2/boarding/internal/config"
	"github.com/OCAP2/boarding/internal/database"
	"github.com/OCAP2/boarding/internal/model"
)

// runReport prints an outcome summary of recorded sqlite files. Without
// arguments every dump in storage.sqlite.outputDir is reported.
func runReport(w io.Writer, paths []string) error {
	if len(paths) == 0 {
		dir := config.GetStorageConfig().SQLite.OutputDir
		found, err := database.BackupPaths(dir)
		if err != nil {
			return fmt.Errorf("listing recordings in %s: %w", dir, err)
		}
		if len(found) == 0 {
			fmt.Fprintf(w, "No recordings in %s\n", dir)
			return nil
		}
		paths = found
	}

	for _, path := range paths {
		if err := reportFile(w, path); err != nil {
			return err
		}
	}
	return nil
}

func reportFile(w io.Writer, path string) error {
	db, err := database.OpenSqlite(path)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	sc, err := model.LatestScenario(db)
	if err != nil {
		return fmt.Errorf("%s: no scenario recorded: %w", path, err)
	}

	vehicles, err := countFor(db, &model.Vehicle{}, sc.ID)
	if err != nil {
		return err
	}
	hits, err := countFor(db, &model.HitEvent{}, sc.ID)
	if err != nil {
		return err
	}
	outcomes, err := model.OutcomeSummary(db, sc.ID)
	if err != nil {
		return fmt.Errorf("summarising outcomes: %w", err)
	}

	fmt.Fprintf(w, "%s\n", path)
	fmt.Fprintf(w, "Scenario: %s (tag %q, by %s)\n", sc.Name, sc.Tag, sc.Author)
	fmt.Fprintf(w, "Started:  %s\n", sc.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Vehicles: %d  Hits: %d\n\n", vehicles, hits)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCODE\tCOUNT")
	for _, o := range outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", o.Kind, o.Code, o.Count)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

func countFor(db *gorm.DB, m any, scenarioID uint) (int64, error) {
	var n int64
	err := db.Model(m).Where("scenario_id = ?", scenarioID).Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("counting rows: %w", err)
	}
	return n, nil
}
