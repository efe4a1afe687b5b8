package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "github.com/OCAP2/boarding/internal/storage/memory/export/v1"
)

// exportJSON writes the scenario data to a JSON file, gzipped if configured.
// Callers hold b.mu.
func (b *Backend) exportJSON() error {
	export := v1.Build(b.scenarioData())

	outputPath := filepath.Join(b.cfg.OutputDir, b.exportFilename())

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	b.lastExportPath = outputPath
	return nil
}

// exportFilename builds <name>_<yyyymmdd_hhmmss>.json[.gz] from the scenario.
func (b *Backend) exportFilename() string {
	name := strings.ReplaceAll(b.scenario.Name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := b.scenario.StartTime.Format("20060102_150405")

	if b.cfg.CompressOutput {
		return fmt.Sprintf("%s_%s.json.gz", name, timestamp)
	}
	return fmt.Sprintf("%s_%s.json", name, timestamp)
}

func (b *Backend) scenarioData() *v1.ScenarioData {
	data := &v1.ScenarioData{
		Scenario: b.scenario,
		Vehicles: make([]v1.VehicleRecord, 0, len(b.order)),
		Notices:  b.notices,
		Hits:     b.hits,
	}
	for _, id := range b.order {
		rec := b.vehicles[id]
		data.Vehicles = append(data.Vehicles, v1.VehicleRecord{Vehicle: rec.Vehicle, JoinTick: rec.JoinTick})
	}
	return data
}

func writeJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data v1.Export) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	encoder := json.NewEncoder(gzWriter)
	if err := encoder.Encode(data); err != nil {
		_ = gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}
