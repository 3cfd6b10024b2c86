package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/solver"
)

type ExportData struct {
	Scenario string              `json:"scenario"`
	Seed     int64               `json:"seed"`
	Dt       float64             `json:"dt"`
	SubSteps int                 `json:"substeps"`
	Ticks    int                 `json:"ticks"`
	Samples  []experiment.Sample `json:"samples"`
	Final    solver.Snapshot     `json:"final"`
	Metrics  map[string]float64  `json:"metrics"`
}

func NewExportData(meta *RunMetadata, samples []experiment.Sample, final solver.Snapshot) ExportData {
	return ExportData{
		Scenario: meta.Scenario,
		Seed:     meta.Seed,
		Dt:       meta.Dt,
		SubSteps: meta.SubSteps,
		Ticks:    len(samples),
		Samples:  samples,
		Final:    final,
		Metrics:  meta.Metrics,
	}
}

// ExportJSON writes a stored run as one JSON document. An empty path means
// stdout.
func (s *Store) ExportJSON(runID, path string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return err
	}
	frame, err := s.LoadFrame(runID)
	if err != nil {
		return err
	}

	data := NewExportData(meta, samples, frame)
	if path == "" {
		return WriteJSON(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	if err := WriteJSON(file, data); err != nil {
		return err
	}
	return file.Close()
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
