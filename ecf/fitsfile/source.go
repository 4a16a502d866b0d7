// Package fitsfile reads Chandra ECF calibration files (FITS binary tables)
// into ecf.Records.
//
// Each file carries a single table row. Axis columns (ECF, THETA, PHI,
// ENERGY) hold the coordinate vectors and every other numeric column holds a
// flat field vector laid out column-major over the axes.
package fitsfile

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/astrogo/fitsio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/sot/chandra-ecf/ecf"
)

// FileSuffix is appended to the shape name to form the default file name,
// e.g. circular_ECF.fits.
const FileSuffix = "_ECF.fits"

// Source loads calibration records from FITS files on disk.
type Source struct {
	// Dir holds <shape>_ECF.fits files.
	Dir string
	// Paths overrides the file for individual shapes.
	Paths map[ecf.Shape]string
}

// New returns a Source reading <dir>/<shape>_ECF.fits.
func New(dir string) *Source {
	return &Source{Dir: dir, Paths: make(map[ecf.Shape]string)}
}

// Path returns the file the source reads for shape.
func (s *Source) Path(shape ecf.Shape) string {
	if p, ok := s.Paths[shape]; ok && p != "" {
		return p
	}
	return filepath.Join(s.Dir, string(shape)+FileSuffix)
}

// Load implements ecf.Source. A missing file means the shape has no
// calibration data and yields *ecf.UnknownShapeError.
func (s *Source) Load(shape ecf.Shape) (*ecf.Record, error) {
	path := s.Path(shape)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Debugf("No ECF calibration file for shape %s at %s", shape, path)
			return nil, &ecf.UnknownShapeError{Shape: shape}
		}
		return nil, errors.Wrapf(err, "failed to open ECF file %s", path)
	}
	defer f.Close()

	rec, err := ReadRecord(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ECF file %s", path)
	}
	logrus.Debugf("Read %d axes and %d columns from %s", len(rec.Axes), len(rec.Fields), path)
	return rec, nil
}

// ReadRecord decodes the first row of the first extension table in r.
// Column names are upper-cased; non-numeric columns are skipped.
func ReadRecord(r io.Reader) (*ecf.Record, error) {
	file, err := fitsio.Open(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse FITS stream")
	}
	defer file.Close()

	if len(file.HDUs()) < 2 {
		return nil, errors.Errorf("expected a table extension, found %d HDU(s)", len(file.HDUs()))
	}
	tbl, ok := file.HDU(1).(*fitsio.Table)
	if !ok {
		return nil, errors.Errorf("HDU 1 is %v, not a table", file.HDU(1).Type())
	}
	if tbl.NumRows() < 1 {
		return nil, errors.New("calibration table has no rows")
	}

	rows, err := tbl.Read(0, 1)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read calibration row")
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, errors.Wrap(err, "failed to read calibration row")
		}
		return nil, errors.New("calibration table has no rows")
	}

	row := make(map[string]interface{})
	if err := rows.Scan(&row); err != nil {
		return nil, errors.Wrap(err, "failed to decode calibration row")
	}

	rec := &ecf.Record{
		Axes:   make(map[string][]float64),
		Fields: make(map[string][]float64),
	}
	for name, v := range row {
		vals, ok := toFloat64s(v)
		if !ok {
			logrus.Debugf("Skipping non-numeric ECF column %s (%T)", name, v)
			continue
		}
		key := strings.ToUpper(strings.TrimSpace(name))
		if isAxis(key) {
			rec.Axes[key] = vals
		} else {
			rec.Fields[key] = vals
		}
	}
	return rec, nil
}

func isAxis(name string) bool {
	for _, a := range ecf.AxisNames {
		if a == name {
			return true
		}
	}
	return false
}

// toFloat64s flattens a numeric scalar, slice or array cell into float64s.
func toFloat64s(v interface{}) ([]float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]float64, rv.Len())
		for i := range out {
			x, ok := numeric(rv.Index(i))
			if !ok {
				return nil, false
			}
			out[i] = x
		}
		return out, true
	default:
		x, ok := numeric(rv)
		if !ok {
			return nil, false
		}
		return []float64{x}, true
	}
}

func numeric(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	default:
		return 0, false
	}
}
