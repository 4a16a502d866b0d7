package ecf

import (
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// DefaultAzimuths are the PHI samples AzimuthAverage uses when none are given.
var DefaultAzimuths = []float64{0, 45, 90, 135, 180, 225, 270, 315}

// Interpolate computes the 4-D multilinear interpolation of field at
// (ecf, theta, phi, energy). ECF is a fraction in (0, 1), theta is the
// off-axis angle in arcmin, phi the azimuth in degrees and energy in keV.
// For the RADIUS field the result is in arcsec.
//
// All 16 corners of the enclosing hypercube are summed. A coordinate outside
// an axis range returns *OutOfRangeError; nothing is extrapolated.
func (g *Grid) Interpolate(field string, ecf, theta, phi, energy float64) (float64, error) {
	data, err := g.field(field)
	if err != nil {
		return math.NaN(), err
	}

	var br [4]Bracket
	for i, x := range [4]float64{ecf, theta, phi, energy} {
		if br[i], err = g.axes[i].Bracket(x); err != nil {
			return math.NaN(), err
		}
	}

	// The last PHI coordinate is 360, which reads back the PHI=0 plane.
	if br[2].Index[1] == g.dims[2]-1 {
		br[2].Index[1] = 0
	}

	var yi float64
	for dj := 0; dj < 2; dj++ {
		for dk := 0; dk < 2; dk++ {
			for dl := 0; dl < 2; dl++ {
				for dm := 0; dm < 2; dm++ {
					y := data[g.offset(br[0].Index[dj], br[1].Index[dk], br[2].Index[dl], br[3].Index[dm])]
					yi += y * br[0].Weight[dj] * br[1].Weight[dk] * br[2].Weight[dl] * br[3].Weight[dm]
				}
			}
		}
	}

	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Tracef("Interpolated %s %s at (ecf=%g, theta=%g, phi=%g, energy=%g) = %g",
			g.shape, field, ecf, theta, phi, energy, yi)
	}
	return yi, nil
}

// AzimuthAverage returns the mean of field over the given azimuths at fixed
// (ecf, theta, energy). With no azimuths it uses DefaultAzimuths.
func (g *Grid) AzimuthAverage(field string, ecf, theta, energy float64, phis []float64) (float64, error) {
	if len(phis) == 0 {
		phis = DefaultAzimuths
	}
	vals := make([]float64, len(phis))
	for i, phi := range phis {
		v, err := g.Interpolate(field, ecf, theta, phi, energy)
		if err != nil {
			return math.NaN(), err
		}
		vals[i] = v
	}
	return stat.Mean(vals, nil), nil
}
