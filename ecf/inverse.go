package ecf

import (
	"math"
	"sort"
)

// curvePoints is the number of ECF levels sampled by RadiusCurve:
// 0.01, 0.02, ... 0.99.
const curvePoints = 99

// Curve is the field value (normally RADIUS) sampled at 99 ECF levels for one
// fixed (theta, phi, energy). Field values are assumed non-decreasing in ECF;
// this is a property of the calibration and is not checked.
type Curve struct {
	ECF    []float64
	Values []float64
}

// RadiusCurve samples field at ECF 0.01..0.99 for fixed (theta, phi, energy).
// Reusing one Curve avoids 99 interpolations per inversion when many radii are
// inverted at the same position and energy.
func (g *Grid) RadiusCurve(field string, theta, phi, energy float64) (*Curve, error) {
	c := &Curve{
		ECF:    make([]float64, curvePoints),
		Values: make([]float64, curvePoints),
	}
	for i := range c.ECF {
		level := float64(i+1) / 100
		v, err := g.Interpolate(field, level, theta, phi, energy)
		if err != nil {
			return nil, err
		}
		c.ECF[i] = level
		c.Values[i] = v
	}
	return c, nil
}

// ECFAt returns the ECF whose curve value equals radius, interpolating
// linearly between the two bracketing samples. Radii at or below the first
// sample give exactly 0.01 and radii at or above the last give exactly 0.99.
func (c *Curve) ECFAt(radius float64) float64 {
	n := len(c.Values)
	switch {
	case math.IsNaN(radius):
		return math.NaN()
	case radius <= c.Values[0]:
		return c.ECF[0]
	case radius >= c.Values[n-1]:
		return c.ECF[n-1]
	}

	// First sample with value >= radius; always in [1, n-1] here.
	i := sort.SearchFloat64s(c.Values, radius)
	x0, x1 := c.Values[i-1], c.Values[i]
	y0, y1 := c.ECF[i-1], c.ECF[i]
	return y0 + (y1-y0)/(x1-x0)*(radius-x0)
}

// ECFForRadius estimates the ECF whose RADIUS equals radius (arcsec) at fixed
// off-axis angle theta (arcmin), azimuth phi (deg) and energy (keV). The
// 99-point curve is recomputed on every call; use RadiusCurve to reuse it.
func (g *Grid) ECFForRadius(radius, theta, phi, energy float64) (float64, error) {
	if math.IsNaN(radius) {
		return math.NaN(), &OutOfRangeError{Axis: FieldRadius, Value: radius, Min: math.Inf(-1), Max: math.Inf(1)}
	}
	c, err := g.RadiusCurve(FieldRadius, theta, phi, energy)
	if err != nil {
		return math.NaN(), err
	}
	return c.ECFAt(radius), nil
}
