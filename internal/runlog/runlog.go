// Package runlog keeps an append-only CSV history of reconciliation runs
// under <workspace>/logs/runs.csv.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/levmatch/levmatch/internal/model"
)

// Entry is one row in the run log.
type Entry struct {
	ID         string
	Timestamp  time.Time
	InputFile  string
	Year       int
	Cases      int
	OK         int
	Review     int
	ReportPath string
}

// Header is the CSV header for runs.csv.
const Header = "run_id,timestamp,input_file,year,cases,ok,review,report"

const (
	numFields     = 8
	logDir        = "logs"
	logFile       = "logs/runs.csv"
	colID         = 0
	colTimestamp  = 1
	colInputFile  = 2
	colYear       = 3
	colCases      = 4
	colOK         = 5
	colReview     = 6
	colReportPath = 7
)

// NewEntry builds a run-log entry for one completed reconciliation.
func NewEntry(inputFile string, year int, summary model.YearSummary, reportPath string) Entry {
	ok := summary.StatusCounts[model.StatusOK]
	return Entry{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		InputFile:  inputFile,
		Year:       year,
		Cases:      summary.TotalCases,
		OK:         ok,
		Review:     summary.TotalCases - ok,
		ReportPath: reportPath,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colInputFile] = e.InputFile
	row[colYear] = strconv.Itoa(e.Year)
	row[colCases] = strconv.Itoa(e.Cases)
	row[colOK] = strconv.Itoa(e.OK)
	row[colReview] = strconv.Itoa(e.Review)
	row[colReportPath] = e.ReportPath
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	ints := make([]int, 4)
	for i, col := range []int{colYear, colCases, colOK, colReview} {
		n, err := strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing field %d %q: %w", col, record[col], err)
		}
		ints[i] = n
	}

	return Entry{
		ID:         record[colID],
		Timestamp:  ts,
		InputFile:  record[colInputFile],
		Year:       ints[0],
		Cases:      ints[1],
		OK:         ints[2],
		Review:     ints[3],
		ReportPath: record[colReportPath],
	}, nil
}

// Append writes an entry to <root>/logs/runs.csv, creating the file and
// header if needed.
func Append(root string, e Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}

	return cw.Error()
}

// Read returns all entries from <root>/logs/runs.csv.
// Returns nil if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
