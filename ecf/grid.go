package ecf

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Shape selects a PSF model variant. Each shape has its own calibration grid.
type Shape string

const (
	Circular   Shape = "circular"
	Elliptical Shape = "elliptical"
)

// ValidShapes is the set of recognized PSF shapes.
var ValidShapes = map[Shape]bool{Circular: true, Elliptical: true}

// ShapeNames returns the recognized shape names, sorted.
func ShapeNames() []string {
	names := make([]string, 0, len(ValidShapes))
	for s := range ValidShapes {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}

// ParseShape maps a case-insensitive shape name onto a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	if !ValidShapes[s] {
		return "", &UnknownShapeError{Shape: Shape(name)}
	}
	return s, nil
}

// Calibration columns carried by the ECF files.
const (
	FieldRadius     = "RADIUS"
	FieldRadiusSMin = "RADIUS_SMIN"
	FieldRadiusSMax = "RADIUS_SMAX"
	FieldY          = "Y"
	FieldZ          = "Z"
	FieldSMA        = "SMA"
	FieldSMB        = "SMB"
	FieldPA         = "PA"
)

// ValidFields is the set of calibration columns a grid may carry.
// Record columns outside this set are ignored at load.
var ValidFields = map[string]bool{
	FieldRadius:     true,
	FieldRadiusSMin: true,
	FieldRadiusSMax: true,
	FieldY:          true,
	FieldZ:          true,
	FieldSMA:        true,
	FieldSMB:        true,
	FieldPA:         true,
}

// FieldNames returns the recognized field names, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(ValidFields))
	for f := range ValidFields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// CanonicalField upper-cases a field name and checks it against ValidFields.
func CanonicalField(name string) (string, error) {
	f := strings.ToUpper(strings.TrimSpace(name))
	if !ValidFields[f] {
		return "", &UnknownFieldError{Field: name}
	}
	return f, nil
}

// Record is one calibration row as supplied by a Source: the four axis
// vectors and the flat field vectors, laid out column-major over
// (ECF, THETA, PHI, ENERGY).
type Record struct {
	Axes   map[string][]float64
	Fields map[string][]float64
}

// Grid is the loaded, read-only 4-D calibration table for one shape.
// The PHI axis and every field array include the PHI=360 sentinel plane.
type Grid struct {
	shape  Shape
	axes   [4]Axis
	dims   [4]int // extended dims, PHI has one extra plane
	fields map[string][]float64
}

// NewGrid validates rec and builds the grid for shape from it. Values are
// copied, so later changes to rec do not affect the grid.
func NewGrid(shape Shape, rec *Record) (*Grid, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedRecordError{Shape: shape, Reason: fmt.Sprintf(format, args...)}
	}
	if rec == nil {
		return nil, malformed("nil record")
	}

	g := &Grid{shape: shape, fields: make(map[string][]float64)}
	n := 1
	for i, name := range AxisNames {
		vals, ok := rec.Axes[name]
		if !ok {
			return nil, malformed("missing axis %s", name)
		}
		ax := Axis{Name: name, Values: append([]float64(nil), vals...)}
		if err := ax.validate(); err != nil {
			return nil, malformed("%v", err)
		}
		g.axes[i] = ax
		g.dims[i] = ax.Len()
		n *= ax.Len()
	}

	phi := &g.axes[2]
	if phi.Min() != 0 || phi.Max() >= phiPeriod {
		return nil, malformed("PHI axis must start at 0 and stay below %g, got [%g, %g]",
			phiPeriod, phi.Min(), phi.Max())
	}
	truePhi := phi.Len()
	phi.Values = append(phi.Values, phiPeriod)
	g.dims[2] = phi.Len()

	for name, flat := range rec.Fields {
		field, err := CanonicalField(name)
		if err != nil {
			logrus.Debugf("Ignoring %s calibration column %s", shape, name)
			continue
		}
		if _, dup := g.fields[field]; dup {
			return nil, malformed("duplicate field %s", field)
		}
		if len(flat) != n {
			return nil, malformed("field %s has %d values, want %d (%dx%dx%dx%d)",
				field, len(flat), n, g.dims[0], g.dims[1], truePhi, g.dims[3])
		}
		g.fields[field] = extendPhi(flat, g.dims[0]*g.dims[1], truePhi, g.dims[3])
	}
	if _, ok := g.fields[FieldRadius]; !ok {
		return nil, malformed("missing field %s", FieldRadius)
	}
	return g, nil
}

// extendPhi copies a column-major array with plane = len(ECF)*len(THETA)
// values per PHI step and appends a copy of the PHI=0 plane after the last
// PHI step of every ENERGY block.
func extendPhi(flat []float64, plane, nPhi, nEnergy int) []float64 {
	out := make([]float64, 0, plane*(nPhi+1)*nEnergy)
	block := plane * nPhi
	for l := 0; l < nEnergy; l++ {
		src := flat[l*block : (l+1)*block]
		out = append(out, src...)
		out = append(out, src[:plane]...)
	}
	return out
}

// Shape returns the PSF shape the grid was loaded for.
func (g *Grid) Shape() Shape { return g.shape }

// Axes returns copies of the four axes in array order. PHI includes the 360 sentinel.
func (g *Grid) Axes() [4]Axis {
	var out [4]Axis
	for i, ax := range g.axes {
		out[i] = Axis{Name: ax.Name, Values: append([]float64(nil), ax.Values...)}
	}
	return out
}

// Fields returns the names of the calibration fields the grid carries, sorted.
func (g *Grid) Fields() []string {
	names := make([]string, 0, len(g.fields))
	for f := range g.fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// At returns the stored value of field at the given axis indices. The PHI
// index may address the sentinel plane.
func (g *Grid) At(field string, i, j, k, l int) (float64, error) {
	data, err := g.field(field)
	if err != nil {
		return math.NaN(), err
	}
	if i < 0 || i >= g.dims[0] || j < 0 || j >= g.dims[1] ||
		k < 0 || k >= g.dims[2] || l < 0 || l >= g.dims[3] {
		return math.NaN(), fmt.Errorf("index (%d, %d, %d, %d) outside grid dims %v", i, j, k, l, g.dims)
	}
	return data[g.offset(i, j, k, l)], nil
}

func (g *Grid) field(name string) ([]float64, error) {
	f, err := CanonicalField(name)
	if err != nil {
		return nil, err
	}
	data, ok := g.fields[f]
	if !ok {
		return nil, &UnknownFieldError{Field: name}
	}
	return data, nil
}

// offset maps 4-D indices onto the column-major backing slice.
func (g *Grid) offset(i, j, k, l int) int {
	return i + g.dims[0]*(j+g.dims[1]*(k+g.dims[2]*l))
}
