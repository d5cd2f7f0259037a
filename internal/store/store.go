package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Store keeps one directory per run under a base directory, with the
// run record serialized as record.json.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Save(rec *Record) (string, error) {
	runID := fmt.Sprintf("%s_%s_%d", rec.Model, rec.Estimator, time.Now().UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	saved := *rec
	saved.ID = runID
	if saved.Timestamp.IsZero() {
		saved.Timestamp = time.Now()
	}

	if err := ExportJSON(filepath.Join(runDir, "record.json"), &saved); err != nil {
		return "", err
	}
	if err := ExportCSV(filepath.Join(runDir, "result.csv"), &saved); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) Load(runID string) (*Record, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "record.json"))
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns the saved records, newest first. Directories without a
// readable record are skipped.
func (s *Store) List() ([]Record, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}

	recs := make([]Record, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		rec, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		recs = append(recs, *rec)
	}

	sort.Slice(recs, func(i, j int) bool {
		return recs[i].Timestamp.After(recs[j].Timestamp)
	})
	return recs, nil
}
