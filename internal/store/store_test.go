package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func sampleRecord() *Record {
	return &Record{
		Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Model:       "linear",
		Estimator:   "koopman",
		Solver:      "dopri",
		Observable:  "x0@t=4",
		Seed:        1,
		Value:       []float64{5 * math.Exp(-1.2)},
		ErrEstimate: []float64{3.2e-9},
		Evals:       31,
		Converged:   true,
		Elapsed:     0.42,
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := sampleRecord()
	if err := WriteJSON(&buf, rec); err != nil {
		t.Fatalf("write: %v", err)
	}

	var got Record
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Model != rec.Model || got.Estimator != rec.Estimator {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.Value[0] != rec.Value[0] || got.Evals != rec.Evals || !got.Converged {
		t.Errorf("result mismatch: %+v", got)
	}
}

func TestWriteCSVRows(t *testing.T) {
	var buf bytes.Buffer
	rec := sampleRecord()
	rec.Value = []float64{1.5, -2.25}
	rec.ErrEstimate = []float64{1e-8, 2e-8}
	if err := WriteCSV(&buf, rec); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "component" {
		t.Errorf("bad header: %v", rows[0])
	}
	if rows[1][1] != "1.5" || rows[2][1] != "-2.25" {
		t.Errorf("bad values: %v %v", rows[1], rows[2])
	}
}

func TestWriteSweepCSV(t *testing.T) {
	points := []SweepPoint{
		{Budget: 100, Value: 1.52, Error: 0.02, Evals: 100},
		{Budget: 1000, Value: 1.506, Error: 0.006, Evals: 1000},
	}
	var buf bytes.Buffer
	if err := WriteSweepCSV(&buf, points); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100,") || !strings.HasPrefix(lines[2], "1000,") {
		t.Errorf("bad rows: %v", lines[1:])
	}
}

func TestStoreSaveLoadList(t *testing.T) {
	s := New(t.TempDir())

	id, err := s.Save(sampleRecord())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("empty run id")
	}

	got, err := s.Load(id)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != id || got.Model != "linear" || got.Evals != 31 {
		t.Errorf("loaded record mismatch: %+v", got)
	}

	second := sampleRecord()
	second.Estimator = "montecarlo"
	if _, err := s.Save(second); err != nil {
		t.Fatalf("save second: %v", err)
	}

	runs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
}

func TestListEmptyBaseDir(t *testing.T) {
	s := New("/nonexistent/expect-store")
	runs, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("got %d runs, want 0", len(runs))
	}
}
