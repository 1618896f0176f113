// Package seriesio reads and writes series as two column CSV or as Parquet
// tables holding many samples.
package seriesio

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
)

// DefaultHeader is written as the first CSV row.
var DefaultHeader = []string{"time_s", "value"}

// ReadCSV parses x,y rows from r. A first row that does not parse as numbers
// is treated as a header. Empty lines and lines starting with '#' are skipped.
func ReadCSV(r io.Reader, sampleID string) (series.Series, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	s := series.Series{SampleID: sampleID}
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return series.Series{}, errors.Wrapf(err, "reading csv row %d", row)
		}
		if len(rec) < 2 {
			return series.Series{}, errors.Errorf("row %d: expected 2 columns, got %d", row, len(rec))
		}

		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errX != nil || errY != nil {
			if row == 1 {
				continue // header
			}
			return series.Series{}, errors.Errorf("row %d: invalid number in %q", row, strings.Join(rec, ","))
		}
		s.X = append(s.X, x)
		s.Y = append(s.Y, y)
	}

	if err := s.Validate(); err != nil {
		return series.Series{}, errors.Wrap(err, "invalid csv series")
	}
	return s, nil
}

// WriteCSV writes s as x,y rows preceded by header (DefaultHeader when nil).
func WriteCSV(w io.Writer, s series.Series, header []string) error {
	if len(s.X) != len(s.Y) {
		return errors.Wrapf(series.ErrLengthMismatch, "sample %q", s.SampleID)
	}
	if header == nil {
		header = DefaultHeader
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	row := make([]string, 2)
	for i := range s.X {
		row[0] = strconv.FormatFloat(s.X[i], 'g', -1, 64)
		row[1] = strconv.FormatFloat(s.Y[i], 'g', -1, 64)
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "writing csv row %d", i)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
