// Package store persists expectation runs and exports results as JSON
// and CSV.
package store

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"time"
)

// Record captures one completed expectation run.
type Record struct {
	ID          string    `json:"id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Model       string    `json:"model"`
	Estimator   string    `json:"estimator"`
	Solver      string    `json:"solver"`
	Observable  string    `json:"observable"`
	Seed        uint64    `json:"seed"`
	Value       []float64 `json:"value"`
	ErrEstimate []float64 `json:"err_estimate"`
	Moments     []float64 `json:"moments,omitempty"`
	Evals       int64     `json:"evals"`
	Converged   bool      `json:"converged"`
	Elapsed     float64   `json:"elapsed_seconds"`
}

// SweepPoint is one entry of a convergence sweep: estimate quality as a
// function of the trajectory budget.
type SweepPoint struct {
	Budget int     `json:"budget"`
	Value  float64 `json:"value"`
	Error  float64 `json:"error"`
	Evals  int64   `json:"evals"`
}

func ExportJSON(path string, rec *Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, rec)
}

func WriteJSON(w io.Writer, rec *Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func ExportCSV(path string, rec *Record) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteCSV(file, rec)
}

// WriteCSV emits one row per output component.
func WriteCSV(w io.Writer, rec *Record) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"component", "value", "err_estimate", "evals", "converged"}); err != nil {
		return err
	}
	for i, v := range rec.Value {
		errEst := ""
		if i < len(rec.ErrEstimate) {
			errEst = formatFloat(rec.ErrEstimate[i])
		}
		row := []string{
			strconv.Itoa(i),
			formatFloat(v),
			errEst,
			strconv.FormatInt(rec.Evals, 10),
			strconv.FormatBool(rec.Converged),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportSweepCSV(path string, points []SweepPoint) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSweepCSV(file, points)
}

func WriteSweepCSV(w io.Writer, points []SweepPoint) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"budget", "value", "error", "evals"}); err != nil {
		return err
	}
	for _, p := range points {
		row := []string{
			strconv.Itoa(p.Budget),
			formatFloat(p.Value),
			formatFloat(p.Error),
			strconv.FormatInt(p.Evals, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
