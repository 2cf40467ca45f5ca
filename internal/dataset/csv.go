// Package dataset reads labelled feature tables for the command line tools.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Options controls how a CSV table is interpreted.
type Options struct {
	// Header skips the first record.
	Header bool
	// Unlabelled treats every column as a feature; y is nil.
	Unlabelled bool
	// MapBinary rewrites labels 0 and 1 as -1 and +1.
	MapBinary bool
	Comma     rune
}

// Dataset is a loaded table. Y is n×1 and nil for unlabelled data.
type Dataset struct {
	X        *mat.Dense
	Y        *mat.Dense
	Features []string
}

// Read parses r. Every row must have the same number of columns; with labels
// the last column is the label.
func Read(r io.Reader, opts Options) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.Comment = '#'
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to parse csv"), errors.ErrInvalidInput)
	}

	var header []string
	if opts.Header && len(records) > 0 {
		header, records = records[0], records[1:]
	}
	if len(records) == 0 {
		return nil, errors.NewModelError("dataset.Read", "empty data", errors.ErrEmptyData)
	}

	cols := len(records[0])
	nFeatures := cols
	if !opts.Unlabelled {
		nFeatures--
	}
	if nFeatures < 1 {
		return nil, errors.NewValueError("dataset.Read", fmt.Sprintf("need at least one feature column, got %d columns", cols))
	}

	X := mat.NewDense(len(records), nFeatures, nil)
	var y *mat.Dense
	if !opts.Unlabelled {
		y = mat.NewDense(len(records), 1, nil)
	}
	for i, rec := range records {
		for j, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NewValueError("dataset.Read",
					fmt.Sprintf("row %d column %d: %q is not a number", i+1, j+1, field))
			}
			if j < nFeatures {
				X.Set(i, j, v)
				continue
			}
			if opts.MapBinary && v == 0 {
				v = -1
			}
			y.Set(i, 0, v)
		}
	}

	ds := &Dataset{X: X, Y: y}
	if header != nil {
		ds.Features = append([]string(nil), header[:nFeatures]...)
	}
	return ds, nil
}

// ReadFile opens path and calls Read.
func ReadFile(path string, opts Options) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return Read(f, opts)
}

// WriteColumn writes one value per row under name.
func WriteColumn(w io.Writer, name string, values []float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{name}); err != nil {
		return err
	}
	for _, v := range values {
		if err := cw.Write([]string{strconv.FormatFloat(v, 'g', -1, 64)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
