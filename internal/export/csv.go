package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/isingsim/internal/sweep"
)

var Header = []string{"T", "U", "M_rms"}

// CSVSink writes sweep results as T,U,M_rms rows. The header is written
// before the first row and every row is flushed immediately.
type CSVSink struct {
	w           *csv.Writer
	precision   int
	wroteHeader bool
	rows        int
}

func NewCSVSink(w io.Writer, precision int) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w), precision: precision}
}

func (s *CSVSink) formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', s.precision, 64)
}

// WriteHeader is idempotent.
func (s *CSVSink) WriteHeader() error {
	if s.wroteHeader {
		return nil
	}
	if err := s.w.Write(Header); err != nil {
		return err
	}
	s.wroteHeader = true
	return s.flush()
}

func (s *CSVSink) Write(r sweep.Result) error {
	if err := s.WriteHeader(); err != nil {
		return err
	}
	row := []string{
		s.formatFloat(r.Temperature),
		s.formatFloat(r.Energy),
		s.formatFloat(r.MagnetizationRMS),
	}
	if err := s.w.Write(row); err != nil {
		return err
	}
	s.rows++
	return s.flush()
}

func (s *CSVSink) Rows() int { return s.rows }

func (s *CSVSink) flush() error {
	s.w.Flush()
	return s.w.Error()
}

// FileSink is a CSVSink staged in a temporary file next to Path. Close
// moves it onto Path; Discard removes it, leaving Path untouched.
type FileSink struct {
	*CSVSink
	f    *os.File
	Path string
}

// Create opens the staging file and writes the header right away, so an
// unwritable directory fails before any simulation work starts.
func Create(path string, precision int) (*FileSink, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	s := &FileSink{CSVSink: NewCSVSink(f, precision), f: f, Path: path}
	if err := s.WriteHeader(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, fmt.Errorf("write header %s: %w", path, err)
	}
	return s, nil
}

// Close flushes the staged rows and renames them onto Path.
func (s *FileSink) Close() error {
	ferr := s.flush()
	cerr := s.f.Close()
	if err := errors.Join(ferr, cerr); err != nil {
		_ = os.Remove(s.f.Name())
		return err
	}
	if err := os.Rename(s.f.Name(), s.Path); err != nil {
		_ = os.Remove(s.f.Name())
		return fmt.Errorf("rename %s: %w", s.Path, err)
	}
	return nil
}

// Discard drops everything written so far.
func (s *FileSink) Discard() error {
	cerr := s.f.Close()
	rerr := os.Remove(s.f.Name())
	return errors.Join(cerr, rerr)
}

// WriteFile writes a complete result set to path, replacing it only when
// every row was written.
func WriteFile(path string, results []sweep.Result, precision int) error {
	s, err := Create(path, precision)
	if err != nil {
		return err
	}
	for _, r := range results {
		if err := s.Write(r); err != nil {
			return errors.Join(err, s.Discard())
		}
	}
	return s.Close()
}

// Read parses a T,U,M_rms file back into results indexed by row.
func Read(r io.Reader) ([]sweep.Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("export: missing header")
	}
	for i, h := range Header {
		if records[0][i] != h {
			return nil, fmt.Errorf("export: unexpected header %v", records[0])
		}
	}

	results := make([]sweep.Result, 0, len(records)-1)
	for i, rec := range records[1:] {
		var vals [3]float64
		for j := range vals {
			v, err := strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, fmt.Errorf("export: row %d column %s: %w", i+1, Header[j], err)
			}
			vals[j] = v
		}
		results = append(results, sweep.Result{
			Index:            i,
			Temperature:      vals[0],
			Energy:           vals[1],
			MagnetizationRMS: vals[2],
		})
	}
	return results, nil
}

func ReadFile(path string) ([]sweep.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
