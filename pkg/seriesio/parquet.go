package seriesio

import (
	"github.com/K-sudo-sudo/CaloCem/pkg/series"
	"github.com/pkg/errors"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

// parquetParallelism is the number of goroutines the parquet codec may use.
const parquetParallelism = 4

// ParquetPoint is one row of a Parquet series table. Samples are stored one
// after another, each in time order.
type ParquetPoint struct {
	SampleID string  `parquet:"name=sample_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Time     float64 `parquet:"name=time_s, type=DOUBLE"`
	Value    float64 `parquet:"name=value, type=DOUBLE"`
}

// WriteParquet stores all samples in a single Parquet file.
func WriteParquet(path string, samples []series.Series) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return errors.Wrap(err, "creating local file writer")
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(ParquetPoint), parquetParallelism)
	if err != nil {
		return errors.Wrap(err, "creating new parquet writer")
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range samples {
		if len(s.X) != len(s.Y) {
			return errors.Wrapf(series.ErrLengthMismatch, "sample %q", s.SampleID)
		}
		for i := range s.X {
			if err = pw.Write(ParquetPoint{SampleID: s.SampleID, Time: s.X[i], Value: s.Y[i]}); err != nil {
				return errors.Wrapf(err, "writing point %d of sample %q", i, s.SampleID)
			}
		}
	}
	if err = pw.WriteStop(); err != nil {
		return errors.Wrap(err, "stopping parquet writer")
	}

	return nil
}

// ReadParquet loads the samples stored by WriteParquet. Consecutive rows with
// the same sample id form one series; samples keep their order in the file.
func ReadParquet(path string) ([]series.Series, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening local file reader")
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(ParquetPoint), parquetParallelism)
	if err != nil {
		return nil, errors.Wrap(err, "creating new parquet reader")
	}
	defer pr.ReadStop()

	rows := make([]ParquetPoint, pr.GetNumRows())
	if err = pr.Read(&rows); err != nil {
		return nil, errors.Wrap(err, "reading rows")
	}

	var out []series.Series
	for _, row := range rows {
		if len(out) == 0 || out[len(out)-1].SampleID != row.SampleID {
			out = append(out, series.Series{SampleID: row.SampleID})
		}
		last := &out[len(out)-1]
		last.X = append(last.X, row.Time)
		last.Y = append(last.Y, row.Value)
	}

	for _, s := range out {
		if err := s.Validate(); err != nil {
			return nil, errors.Wrap(err, "invalid parquet series")
		}
	}
	return out, nil
}
