// Package ecf provides lookups into the Chandra HRMA point-spread-function
// enclosed counts fraction (ECF) calibration grid.
//
// # Reading Guide
//
//   - axis.go: grid axes and the bracketing rule shared by all four dimensions
//   - grid.go: the immutable 4-D grid built from one calibration record
//   - interp.go: 4-D multilinear interpolation and the azimuth average
//   - inverse.go: the radius -> ECF inversion over a 99-point curve
//   - catalog.go: per-shape lazy loading and caching on top of a Source
//
// # Architecture
//
// The grid is indexed by (ECF, THETA, PHI, ENERGY). PHI is periodic: the grid
// carries a sentinel PHI=360 hyperplane equal to PHI=0 so that azimuths just
// below 360 bracket against 0 without special cases in the interpolation loop.
//
// The core never reads files. A Source supplies one Record per Shape; the
// FITS-backed implementation lives in ecf/fitsfile.
package ecf
