package ecf

import (
	"fmt"
	"math"
	"sync"

	"github.com/sirupsen/logrus"
)

// Source supplies the calibration record for a shape. Implementations return
// *UnknownShapeError when they have no data for the shape.
type Source interface {
	Load(shape Shape) (*Record, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(shape Shape) (*Record, error)

// Load calls f(shape).
func (f SourceFunc) Load(shape Shape) (*Record, error) { return f(shape) }

// Query is one forward lookup: a point in (ECF, THETA, PHI, ENERGY), the
// shape whose grid to use and the field to interpolate.
type Query struct {
	ECF    float64
	Theta  float64
	Phi    float64
	Energy float64
	Shape  Shape
	Field  string
}

// DefaultQuery returns the query used when the caller gives no values:
// ECF 0.9 on axis at 1.5 keV, circular RADIUS.
func DefaultQuery() Query {
	return Query{
		ECF:    0.9,
		Theta:  0,
		Phi:    0,
		Energy: 1.5,
		Shape:  Circular,
		Field:  FieldRadius,
	}
}

// Catalog owns the per-shape grid cache. Grids are loaded from the Source on
// first use and kept for the lifetime of the Catalog. A Catalog is safe for
// concurrent use.
type Catalog struct {
	source Source
	grids  sync.Map // Shape -> *Grid

	mu    sync.Mutex
	locks map[Shape]*sync.Mutex
}

// NewCatalog creates an empty catalog backed by src.
func NewCatalog(src Source) *Catalog {
	return &Catalog{source: src, locks: make(map[Shape]*sync.Mutex)}
}

// Grid returns the grid for shape, loading it on first use. Concurrent first
// calls for the same shape load once. Load failures are returned and not
// cached, so the next call asks the Source again.
func (c *Catalog) Grid(shape Shape) (*Grid, error) {
	if g, ok := c.grids.Load(shape); ok {
		return g.(*Grid), nil
	}
	if !ValidShapes[shape] {
		return nil, &UnknownShapeError{Shape: shape}
	}

	lock := c.shapeLock(shape)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have finished the load while we waited.
	if g, ok := c.grids.Load(shape); ok {
		return g.(*Grid), nil
	}

	rec, err := c.source.Load(shape)
	if err != nil {
		return nil, fmt.Errorf("load %s calibration: %w", shape, err)
	}
	g, err := NewGrid(shape, rec)
	if err != nil {
		return nil, err
	}
	c.grids.Store(shape, g)

	ax := g.axes
	logrus.Infof("Loaded %s ECF grid: %d ECF x %d THETA x %d PHI x %d ENERGY, fields %v",
		shape, ax[0].Len(), ax[1].Len(), ax[2].Len()-1, ax[3].Len(), g.Fields())
	return g, nil
}

func (c *Catalog) shapeLock(shape Shape) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[shape]
	if !ok {
		l = &sync.Mutex{}
		c.locks[shape] = l
	}
	return l
}

// Interpolate runs a forward lookup: the interpolated q.Field of the q.Shape
// grid at (q.ECF, q.Theta, q.Phi, q.Energy). Empty Shape and Field fall back
// to circular RADIUS.
func (c *Catalog) Interpolate(q Query) (float64, error) {
	if q.Shape == "" {
		q.Shape = Circular
	}
	if q.Field == "" {
		q.Field = FieldRadius
	}
	if _, err := CanonicalField(q.Field); err != nil {
		return math.NaN(), err
	}
	g, err := c.Grid(q.Shape)
	if err != nil {
		return math.NaN(), err
	}
	return g.Interpolate(q.Field, q.ECF, q.Theta, q.Phi, q.Energy)
}

// ECFForRadius inverts the circular RADIUS grid: the ECF enclosed within
// radius (arcsec) at off-axis angle theta (arcmin), azimuth phi (deg) and
// energy (keV). Results are clamped to [0.01, 0.99].
func (c *Catalog) ECFForRadius(radius, theta, phi, energy float64) (float64, error) {
	g, err := c.Grid(Circular)
	if err != nil {
		return math.NaN(), err
	}
	return g.ECFForRadius(radius, theta, phi, energy)
}
