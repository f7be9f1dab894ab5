package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/hyperfem/internal/analysis"
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

// ReportMetadata describes one saved sweep.
type ReportMetadata struct {
	ID         string             `json:"id"`
	Kind       string             `json:"kind"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Parameters map[string]float64 `json:"parameters"`
	Samples    int                `json:"samples"`
}

// Save writes metadata.json and samples.csv under a new report directory
// and returns its ID.
func (s *Store) Save(kind, model string, params map[string]float64, samples []analysis.CurvePoint) (string, error) {
	now := time.Now()
	id := fmt.Sprintf("%s_%s_%d", kind, model, now.UnixNano())
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	meta := ReportMetadata{
		ID:         id,
		Kind:       kind,
		Model:      model,
		Timestamp:  now,
		Parameters: params,
		Samples:    len(samples),
	}

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, "samples.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write([]string{"param", "energy", "stress"}); err != nil {
		return "", err
	}
	for _, p := range samples {
		row := []string{
			strconv.FormatFloat(p.Param, 'g', -1, 64),
			strconv.FormatFloat(p.Energy, 'g', -1, 64),
			strconv.FormatFloat(p.Stress, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return id, nil
}

// List returns the saved reports, oldest first. Directories without
// readable metadata are skipped.
func (s *Store) List() ([]ReportMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []ReportMetadata{}, nil
		}
		return nil, err
	}

	reports := make([]ReportMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		reports = append(reports, *meta)
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Timestamp.Before(reports[j].Timestamp)
	})
	return reports, nil
}

func (s *Store) Load(id string) (*ReportMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta ReportMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadSamples(id string) ([]analysis.CurvePoint, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, "samples.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = 3

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []analysis.CurvePoint{}, nil
	}

	out := make([]analysis.CurvePoint, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [3]float64
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s line %d: %w", id, i+2, err)
			}
			vals[j] = v
		}
		out = append(out, analysis.CurvePoint{Param: vals[0], Energy: vals[1], Stress: vals[2]})
	}
	return out, nil
}

type exportData struct {
	ReportMetadata
	Points []analysis.CurvePoint `json:"points"`
}

// Export writes a report and its samples to w as one JSON document.
func (s *Store) Export(id string, w io.Writer) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	points, err := s.LoadSamples(id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData{ReportMetadata: *meta, Points: points})
}
