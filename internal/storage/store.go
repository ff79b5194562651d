// Package storage persists integration runs under a data directory:
// one subdirectory per run holding metadata as JSON and the sampled
// trajectory (and spectrum, when present) as CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"
)

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
	Problem   string             `json:"problem"`
	Kind      string             `json:"kind"` // "integrate", "grid" or "lyapunov"
	Timestamp time.Time          `json:"timestamp"`
	Order     int                `json:"order"`
	AbsTol    float64            `json:"abstol"`
	T0        float64            `json:"t0"`
	TMax      float64            `json:"tmax"`
	Steps     int                `json:"steps"`
	StepLimit bool               `json:"step_limit"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Save writes one run and returns its ID.
func (s *Store) Save(meta RunMetadata, times []float64, states [][]float64, exponents [][]float64) (string, error) {
	runID := fmt.Sprintf("%s_%d", meta.Problem, time.Now().UnixNano())
	meta.ID = runID
	meta.Timestamp = time.Now()
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, "states.csv"), times, states); err != nil {
		return "", err
	}
	if len(exponents) > 0 {
		// exponents are aligned with times[1:]
		if err := writeCSV(filepath.Join(runDir, "exponents.csv"), times[1:], exponents); err != nil {
			return "", err
		}
	}
	return runID, nil
}

func writeCSV(path string, times []float64, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	for i := range times {
		rec := make([]string, 0, len(rows[i])+1)
		rec = append(rec, strconv.FormatFloat(times[i], 'g', -1, 64))
		for _, v := range rows[i] {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// List returns the metadata of every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMeta(e.Name())
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// LoadMeta reads one run's metadata.
func (s *Store) LoadMeta(runID string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// LoadStates reads one run's sampled trajectory.
func (s *Store) LoadStates(runID string) (times []float64, states [][]float64, err error) {
	return readCSV(filepath.Join(s.baseDir, runID, "states.csv"))
}

// LoadExponents reads one run's spectrum history, if stored.
func (s *Store) LoadExponents(runID string) (times []float64, exps [][]float64, err error) {
	return readCSV(filepath.Join(s.baseDir, runID, "exponents.csv"))
}

func readCSV(path string) ([]float64, [][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	times := make([]float64, len(recs))
	rows := make([][]float64, len(recs))
	for i, rec := range recs {
		times[i], err = strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, nil, err
		}
		row := make([]float64, len(rec)-1)
		for j, v := range rec[1:] {
			row[j], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, nil, err
			}
		}
		rows[i] = row
	}
	return times, rows, nil
}
