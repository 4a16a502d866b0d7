package ecf

import (
	"fmt"
	"math"
	"sort"
)

// Axis names as they appear in the calibration record.
const (
	AxisECF    = "ECF"
	AxisTheta  = "THETA"
	AxisPhi    = "PHI"
	AxisEnergy = "ENERGY"
)

// AxisNames lists the grid axes in array order (first axis varies fastest).
var AxisNames = [4]string{AxisECF, AxisTheta, AxisPhi, AxisEnergy}

// phiPeriod is the azimuth wrap. The PHI axis carries it as a sentinel.
const phiPeriod = 360.0

// Axis is one strictly increasing coordinate vector of the grid.
type Axis struct {
	Name   string
	Values []float64
}

// Bracket holds the two adjacent axis indices surrounding a query value and
// the linear weights on each, such that
// Weight[0]*Values[Index[0]] + Weight[1]*Values[Index[1]] reproduces the value.
type Bracket struct {
	Index  [2]int
	Weight [2]float64
}

// Len returns the number of coordinates on the axis.
func (a Axis) Len() int { return len(a.Values) }

// Min returns the first coordinate.
func (a Axis) Min() float64 { return a.Values[0] }

// Max returns the last coordinate. Max itself is outside the bracketable range.
func (a Axis) Max() float64 { return a.Values[len(a.Values)-1] }

// Bracket locates x on the axis. The lower index is the greatest j with
// Values[j] <= x, so an exact grid coordinate gets weight 1 on itself.
// x below the first coordinate, at or above the last one, or NaN is out of range.
func (a Axis) Bracket(x float64) (Bracket, error) {
	n := len(a.Values)
	if n < 2 || math.IsNaN(x) || x < a.Values[0] || x >= a.Values[n-1] {
		return Bracket{}, a.outOfRange(x)
	}

	j0 := sort.Search(n, func(i int) bool { return a.Values[i] > x }) - 1
	j1 := j0 + 1

	a0, a1 := a.Values[j0], a.Values[j1]
	t1 := (x - a0) / (a1 - a0)
	return Bracket{
		Index:  [2]int{j0, j1},
		Weight: [2]float64{1 - t1, t1},
	}, nil
}

func (a Axis) outOfRange(x float64) *OutOfRangeError {
	e := &OutOfRangeError{Axis: a.Name, Value: x, Min: math.NaN(), Max: math.NaN()}
	if len(a.Values) > 0 {
		e.Min, e.Max = a.Min(), a.Max()
	}
	return e
}

// validate rejects axes shorter than two points and values that are not finite and strictly increasing.
func (a Axis) validate() error {
	if len(a.Values) < 2 {
		return fmt.Errorf("axis %s has %d points, need at least 2", a.Name, len(a.Values))
	}
	for i, v := range a.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("axis %s has non-finite value at index %d", a.Name, i)
		}
		if i > 0 && v <= a.Values[i-1] {
			return fmt.Errorf("axis %s not strictly increasing at index %d (%g after %g)",
				a.Name, i, v, a.Values[i-1])
		}
	}
	return nil
}
