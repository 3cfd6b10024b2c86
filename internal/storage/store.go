// Package storage persists runs on disk, one directory per run:
//
//	<base>/<scenario>_<unix millis>/
//	    metadata.json   run settings and final metric values
//	    config.yaml     the exact config the run used
//	    samples.csv     one row per tick
//	    frame.csv       every particle of the final tick
//	    links.csv       the links of the final tick
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/verlet/internal/config"
	"github.com/san-kum/verlet/internal/experiment"
	"github.com/san-kum/verlet/internal/physics"
	"github.com/san-kum/verlet/internal/solver"
)

var sampleHeader = []string{"tick", "time", "particles", "kinetic_energy", "mean_temperature", "settle_delta"}

var frameHeader = []string{"handle", "x", "y", "dx", "dy", "radius", "static", "temperature", "bucket"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Ticks     int                `json:"ticks"`
	SubSteps  int                `json:"substeps"`
	UseIndex  bool               `json:"use_index"`
	Particles int                `json:"particles"`
	Boundary  BoundaryMetadata   `json:"boundary"`
	Metrics   map[string]float64 `json:"metrics"`
}

type BoundaryMetadata struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

func (b BoundaryMetadata) Boundary() physics.Boundary {
	return physics.Boundary{Center: r2.Vec{X: b.X, Y: b.Y}, Radius: b.Radius}
}

// Save writes a finished run and returns its id.
func (s *Store) Save(cfg *config.Config, result *experiment.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Scenario, now.UnixMilli())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	b := result.Final.Boundary
	meta := RunMetadata{
		ID:        runID,
		Scenario:  cfg.Scenario,
		Timestamp: now,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Ticks:     len(result.Samples),
		SubSteps:  cfg.Solver.SubSteps,
		UseIndex:  cfg.Solver.UseIndex,
		Particles: len(result.Final.Bodies),
		Boundary:  BoundaryMetadata{X: b.Center.X, Y: b.Center.Y, Radius: b.Radius},
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, "metadata.json"), meta); err != nil {
		return "", err
	}
	if err := config.Save(filepath.Join(runDir, "config.yaml"), cfg); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "samples.csv"), sampleHeader, sampleRows(result.Samples)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "frame.csv"), frameHeader, frameRows(result.Final.Bodies)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, "links.csv"), []string{"a", "b", "rest_length"}, linkRows(result.Final.Links)); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func ff(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

func sampleRows(samples []experiment.Sample) [][]string {
	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{
			strconv.Itoa(s.Tick),
			ff(s.Time),
			strconv.Itoa(s.Particles),
			ff(s.KineticEnergy),
			ff(s.MeanTemperature),
			ff(s.SettleDelta),
		})
	}
	return rows
}

func frameRows(bodies []solver.Body) [][]string {
	rows := make([][]string, 0, len(bodies))
	for _, b := range bodies {
		rows = append(rows, []string{
			strconv.Itoa(int(b.Handle)),
			ff(b.Position.X),
			ff(b.Position.Y),
			ff(b.Displacement.X),
			ff(b.Displacement.Y),
			ff(b.Radius),
			strconv.FormatBool(b.Static),
			ff(b.Temperature),
			strconv.Itoa(b.Bucket),
		})
	}
	return rows
}

func linkRows(links []physics.Link) [][]string {
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{strconv.Itoa(l.A), strconv.Itoa(l.B), ff(l.RestLength)})
	}
	return rows
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadConfig reads back the config a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, "config.yaml"))
}

func readCSV(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing csv header")
	}
	return records[1:], nil
}

type rowParser struct {
	row []string
	err error
}

func (p *rowParser) float(i int) float64 {
	v, err := strconv.ParseFloat(p.row[i], 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) integer(i int) int {
	v, err := strconv.Atoi(p.row[i])
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *rowParser) boolean(i int) bool {
	v, err := strconv.ParseBool(p.row[i])
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (s *Store) LoadSamples(runID string) ([]experiment.Sample, error) {
	rows, err := readCSV(filepath.Join(s.baseDir, runID, "samples.csv"), sampleHeader)
	if err != nil {
		return nil, err
	}

	samples := make([]experiment.Sample, 0, len(rows))
	for i, row := range rows {
		p := rowParser{row: row}
		sample := experiment.Sample{
			Tick:            p.integer(0),
			Time:            p.float(1),
			Particles:       p.integer(2),
			KineticEnergy:   p.float(3),
			MeanTemperature: p.float(4),
			SettleDelta:     p.float(5),
		}
		if p.err != nil {
			return nil, fmt.Errorf("samples.csv row %d: %w", i+2, p.err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// LoadFrame rebuilds the final snapshot of a run.
func (s *Store) LoadFrame(runID string) (solver.Snapshot, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return solver.Snapshot{}, err
	}
	rows, err := readCSV(filepath.Join(s.baseDir, runID, "frame.csv"), frameHeader)
	if err != nil {
		return solver.Snapshot{}, err
	}

	snap := solver.Snapshot{
		Tick:     meta.Ticks,
		Time:     float64(meta.Ticks) * meta.Dt,
		Boundary: meta.Boundary.Boundary(),
		Bodies:   make([]solver.Body, 0, len(rows)),
	}
	if meta.SubSteps > 0 {
		snap.SubDt = meta.Dt / float64(meta.SubSteps)
	}
	for i, row := range rows {
		p := rowParser{row: row}
		b := solver.Body{
			Handle:       solver.Handle(p.integer(0)),
			Position:     r2.Vec{X: p.float(1), Y: p.float(2)},
			Displacement: r2.Vec{X: p.float(3), Y: p.float(4)},
			Radius:       p.float(5),
			Static:       p.boolean(6),
			Temperature:  p.float(7),
			Bucket:       p.integer(8),
		}
		if p.err != nil {
			return solver.Snapshot{}, fmt.Errorf("frame.csv row %d: %w", i+2, p.err)
		}
		snap.Bodies = append(snap.Bodies, b)
	}

	links, err := readCSV(filepath.Join(s.baseDir, runID, "links.csv"), []string{"a", "b", "rest_length"})
	if err != nil {
		return solver.Snapshot{}, err
	}
	for i, row := range links {
		p := rowParser{row: row}
		l := physics.Link{A: p.integer(0), B: p.integer(1), RestLength: p.float(2)}
		if p.err != nil {
			return solver.Snapshot{}, fmt.Errorf("links.csv row %d: %w", i+2, p.err)
		}
		snap.Links = append(snap.Links, l)
	}
	return snap, nil
}

// RunDir is the directory holding runID.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}
