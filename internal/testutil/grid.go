// Package testutil provides shared test infrastructure for the ecf packages:
// synthetic calibration records with known closed-form values, a Source that
// counts loads, and float comparison helpers.
package testutil

import (
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sot/chandra-ecf/ecf"
)

// Synthetic axis coordinates. PHI stops at 270 so azimuths in [270, 360)
// exercise the wrap onto PHI=0.
var (
	ECFAxis    = []float64{0, 0.25, 0.5, 0.75, 1.0}
	ThetaAxis  = []float64{0, 2, 5, 10, 20}
	PhiAxis    = []float64{0, 90, 180, 270}
	EnergyAxis = []float64{0.5, 1.5, 3, 6}
)

// Radius is the closed-form RADIUS of the synthetic grid. It is affine in
// every coordinate, so multilinear interpolation reproduces it exactly for
// any point with phi < 270.
func Radius(ecfLevel, theta, phi, energy float64) float64 {
	return 1 + 20*ecfLevel + 0.5*theta + 0.002*phi + 0.3*energy
}

// SMA is the closed-form SMA field of the synthetic grid.
func SMA(ecfLevel, theta, phi, energy float64) float64 {
	return 2 * Radius(ecfLevel, theta, phi, energy)
}

// Tabulate samples f on the four axes in column-major order (ECF fastest).
func Tabulate(f func(e, t, p, en float64) float64, ecfs, thetas, phis, energies []float64) []float64 {
	out := make([]float64, 0, len(ecfs)*len(thetas)*len(phis)*len(energies))
	for _, en := range energies {
		for _, p := range phis {
			for _, t := range thetas {
				for _, e := range ecfs {
					out = append(out, f(e, t, p, en))
				}
			}
		}
	}
	return out
}

// SyntheticRecord returns a record on the synthetic axes carrying RADIUS and
// SMA, plus a column outside the known field set that loaders must ignore.
func SyntheticRecord() *ecf.Record {
	return &ecf.Record{
		Axes: map[string][]float64{
			ecf.AxisECF:    append([]float64(nil), ECFAxis...),
			ecf.AxisTheta:  append([]float64(nil), ThetaAxis...),
			ecf.AxisPhi:    append([]float64(nil), PhiAxis...),
			ecf.AxisEnergy: append([]float64(nil), EnergyAxis...),
		},
		Fields: map[string][]float64{
			ecf.FieldRadius: Tabulate(Radius, ECFAxis, ThetaAxis, PhiAxis, EnergyAxis),
			ecf.FieldSMA:    Tabulate(SMA, ECFAxis, ThetaAxis, PhiAxis, EnergyAxis),
			"QUALITY":       make([]float64, 3),
		},
	}
}

// SyntheticGrid builds a grid from SyntheticRecord, failing the test on error.
func SyntheticGrid(t *testing.T, shape ecf.Shape) *ecf.Grid {
	t.Helper()
	g, err := ecf.NewGrid(shape, SyntheticRecord())
	if err != nil {
		t.Fatalf("build synthetic grid: %v", err)
	}
	return g
}

// CountingSource serves fixed records per shape and counts Load calls.
// Shapes without a record return *ecf.UnknownShapeError.
type CountingSource struct {
	mu      sync.Mutex
	records map[ecf.Shape]*ecf.Record
	loads   atomic.Int64
}

// NewCountingSource returns a source serving the given records.
func NewCountingSource(records map[ecf.Shape]*ecf.Record) *CountingSource {
	return &CountingSource{records: records}
}

// Load implements ecf.Source.
func (s *CountingSource) Load(shape ecf.Shape) (*ecf.Record, error) {
	s.loads.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[shape]
	if !ok {
		return nil, &ecf.UnknownShapeError{Shape: shape}
	}
	return rec, nil
}

// Set replaces the record served for shape.
func (s *CountingSource) Set(shape ecf.Shape, rec *ecf.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[shape] = rec
}

// Loads returns the number of Load calls so far.
func (s *CountingSource) Loads() int64 { return s.loads.Load() }

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
