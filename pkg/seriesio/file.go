package seriesio

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
)

var (
	// ErrUnknownFormat is returned for file extensions other than .csv and .parquet.
	ErrUnknownFormat = errors.New("unknown file format")
	// ErrMultipleSeries is returned when more than one series is written to a CSV file.
	ErrMultipleSeries = errors.New("csv files hold a single series")
)

// Format identifies a file encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatParquet
)

// FormatOf derives the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".parquet", ".pq":
		return FormatParquet, nil
	default:
		return 0, errors.Wrapf(ErrUnknownFormat, "%q", path)
	}
}

// SampleIDOf names a CSV series after its file.
func SampleIDOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadFile loads all series stored in path.
func ReadFile(path string) ([]series.Series, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	if format == FormatParquet {
		return ReadParquet(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input")
	}
	defer f.Close()

	s, err := ReadCSV(f, SampleIDOf(path))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", path)
	}
	return []series.Series{s}, nil
}

// WriteFile stores samples in path, replacing an existing file.
func WriteFile(path string, samples []series.Series) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	if format == FormatParquet {
		return WriteParquet(path, samples)
	}
	if len(samples) != 1 {
		return errors.Wrapf(ErrMultipleSeries, "got %d for %q", len(samples), path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output")
	}
	if err := WriteCSV(f, samples[0], nil); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "failed to close output")
}
