package ecf_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sot/chandra-ecf/ecf"
	"github.com/sot/chandra-ecf/internal/testutil"
)

func newTestCatalog() (*ecf.Catalog, *testutil.CountingSource) {
	src := testutil.NewCountingSource(map[ecf.Shape]*ecf.Record{
		ecf.Circular:   testutil.SyntheticRecord(),
		ecf.Elliptical: testutil.SyntheticRecord(),
	})
	return ecf.NewCatalog(src), src
}

func TestCatalogGrid_LoadsOnce(t *testing.T) {
	cat, src := newTestCatalog()

	// GIVEN a grid requested twice for the same shape
	g1, err := cat.Grid(ecf.Circular)
	require.NoError(t, err)
	g2, err := cat.Grid(ecf.Circular)
	require.NoError(t, err)

	// THEN the cached object is returned and the source was read once
	assert.Same(t, g1, g2)
	assert.Equal(t, int64(1), src.Loads())

	// AND a different shape triggers its own load
	g3, err := cat.Grid(ecf.Elliptical)
	require.NoError(t, err)
	assert.NotSame(t, g1, g3)
	assert.Equal(t, int64(2), src.Loads())
}

func TestCatalogGrid_ConcurrentFirstUseLoadsOnce(t *testing.T) {
	cat, src := newTestCatalog()

	const workers = 32
	grids := make([]*ecf.Grid, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := cat.Grid(ecf.Circular)
			if err == nil {
				grids[i] = g
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), src.Loads())
	for i := 1; i < workers; i++ {
		require.NotNil(t, grids[i])
		assert.Same(t, grids[0], grids[i])
	}
}

func TestCatalogGrid_UnknownShape(t *testing.T) {
	cat, src := newTestCatalog()

	_, err := cat.Grid(ecf.Shape("hexagonal"))
	var use *ecf.UnknownShapeError
	require.True(t, errors.As(err, &use))
	assert.Equal(t, int64(0), src.Loads(), "unrecognized shapes never reach the source")

	// A recognized shape the source has no data for is also unknown.
	empty := testutil.NewCountingSource(map[ecf.Shape]*ecf.Record{})
	_, err = ecf.NewCatalog(empty).Grid(ecf.Elliptical)
	require.True(t, errors.As(err, &use))
	assert.Equal(t, ecf.Elliptical, use.Shape)
}

func TestCatalogGrid_FailedLoadIsNotCached(t *testing.T) {
	// GIVEN a source whose circular record is malformed
	bad := testutil.SyntheticRecord()
	delete(bad.Fields, ecf.FieldRadius)
	src := testutil.NewCountingSource(map[ecf.Shape]*ecf.Record{ecf.Circular: bad})
	cat := ecf.NewCatalog(src)

	// WHEN the grid is requested
	_, err := cat.Grid(ecf.Circular)

	// THEN the structural error surfaces
	var mre *ecf.MalformedRecordError
	require.True(t, errors.As(err, &mre))

	// AND once the source is fixed the next call loads a good grid
	src.Set(ecf.Circular, testutil.SyntheticRecord())
	g, err := cat.Grid(ecf.Circular)
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Equal(t, int64(2), src.Loads())
}

func TestCatalogInterpolate(t *testing.T) {
	cat, _ := newTestCatalog()

	q := ecf.DefaultQuery()
	got, err := cat.Interpolate(q)
	require.NoError(t, err)
	assert.InDelta(t, testutil.Radius(0.9, 0, 0, 1.5), got, 1e-9)

	q = ecf.Query{ECF: 0.5, Theta: 5, Phi: 45, Energy: 2.0, Shape: ecf.Elliptical, Field: "sma"}
	got, err = cat.Interpolate(q)
	require.NoError(t, err)
	assert.InDelta(t, testutil.SMA(0.5, 5, 45, 2.0), got, 1e-9)
}

func TestCatalogInterpolate_EmptyShapeAndFieldUseDefaults(t *testing.T) {
	cat, _ := newTestCatalog()

	got, err := cat.Interpolate(ecf.Query{ECF: 0.5, Theta: 5, Phi: 45, Energy: 2.0})
	require.NoError(t, err)
	assert.InDelta(t, testutil.Radius(0.5, 5, 45, 2.0), got, 1e-9)
}

func TestCatalogInterpolate_UnknownFieldDoesNotLoad(t *testing.T) {
	cat, src := newTestCatalog()

	_, err := cat.Interpolate(ecf.Query{ECF: 0.5, Energy: 1.5, Field: "flux"})

	var ufe *ecf.UnknownFieldError
	require.True(t, errors.As(err, &ufe))
	assert.Equal(t, int64(0), src.Loads())
}

func TestCatalogECFForRadius_UsesCircular(t *testing.T) {
	// GIVEN only a circular grid is available
	src := testutil.NewCountingSource(map[ecf.Shape]*ecf.Record{ecf.Circular: testutil.SyntheticRecord()})
	cat := ecf.NewCatalog(src)

	got, err := cat.ECFForRadius(14.19, 5, 45, 2.0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got, 1e-9)

	// AND repeated inversions reuse the cached grid
	_, err = cat.ECFForRadius(1.0, 5, 45, 2.0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), src.Loads())
}

func TestSourceFunc(t *testing.T) {
	calls := 0
	src := ecf.SourceFunc(func(shape ecf.Shape) (*ecf.Record, error) {
		calls++
		return testutil.SyntheticRecord(), nil
	})
	cat := ecf.NewCatalog(src)

	_, err := cat.Grid(ecf.Circular)
	require.NoError(t, err)
	_, err = cat.Grid(ecf.Circular)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
