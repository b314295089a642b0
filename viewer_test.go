package msview

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/msview/dataset"
	"github.com/bpowers/msview/dataset/sqlitestore"
	"github.com/bpowers/msview/reshape"
	"github.com/bpowers/msview/settings"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(
		[]int32{100, 200, 300},
		[][]float32{{50.1, 50.9}, {}, {49.8, 120.2}},
		[][]uint16{{10, 20}, {}, {5, 7}},
	)
	require.NoError(t, err)
	return ds
}

func TestViewerDisplaySettingsDoNotRecompute(t *testing.T) {
	ctx := context.Background()
	v := New()
	id, err := v.Load(testDataset(t))
	require.NoError(t, err)

	s := settings.Default()
	first, err := v.Table(ctx, id, s)
	require.NoError(t, err)

	for i := range 50 {
		s.Legend = i%2 == 0
		s.MassToCharge.Precision = i % 5
		s.RetentionTime.Units = settings.TimeUnits(i % 3)
		view, err := v.Table(ctx, id, s)
		require.NoError(t, err)
		assert.Same(t, first, view)
	}

	stats := v.Stats()[TableCache]
	assert.Equal(t, int64(1), stats.Computes)
	assert.Equal(t, int64(50), stats.Hits)
}

func TestViewerMatchesDirectComputation(t *testing.T) {
	ctx := context.Background()
	ds := testDataset(t)
	v := New()
	id, err := v.Load(ds)
	require.NoError(t, err)

	for _, explode := range []bool{false, true} {
		for _, filterNull := range []bool{false, true} {
			for _, axis := range []settings.SortAxis{settings.ByRetentionTime, settings.ByMassToCharge} {
				s := settings.Default()
				s.Explode, s.FilterNull, s.Sort = explode, filterNull, axis

				cached, err := v.Table(ctx, id, s)
				require.NoError(t, err)
				direct, err := reshape.Table(ds, s)
				require.NoError(t, err)
				assert.Equal(t, direct, cached)
			}
		}
	}
	assert.Equal(t, int64(8), v.Stats()[TableCache].Computes)
}

func TestViewerShapingSettingRecomputes(t *testing.T) {
	ctx := context.Background()
	v := New()
	id, err := v.Load(testDataset(t))
	require.NoError(t, err)

	s := settings.Default()
	_, err = v.Table(ctx, id, s)
	require.NoError(t, err)

	s.Explode = true
	view, err := v.Table(ctx, id, s)
	require.NoError(t, err)
	assert.Equal(t, reshape.KindFlattened, view.Kind())
	assert.Equal(t, int64(2), v.Stats()[TableCache].Computes)
}

func TestViewerSpectra(t *testing.T) {
	ctx := context.Background()
	v := New()
	id, err := v.Load(testDataset(t))
	require.NoError(t, err)

	s := settings.Default()
	sp, err := v.Spectra(ctx, id, s)
	require.NoError(t, err)
	assert.Equal(t, []int32{100, 300}, sp.RetentionTime)

	// explode and sort do not shape the spectra view
	s.Explode = true
	s.Sort = settings.ByMassToCharge
	again, err := v.Spectra(ctx, id, s)
	require.NoError(t, err)
	assert.Same(t, sp, again)
	assert.Equal(t, int64(1), v.Stats()[SpectraCache].Computes)
}

func TestViewerCloseDropsViews(t *testing.T) {
	ctx := context.Background()
	v := New(WithCacheCapacity(4))
	keep, err := v.Load(testDataset(t))
	require.NoError(t, err)
	closed, err := v.Load(testDataset(t))
	require.NoError(t, err)

	s := settings.Default()
	for _, id := range []dataset.ID{keep, closed} {
		_, err := v.Table(ctx, id, s)
		require.NoError(t, err)
		_, err = v.Spectra(ctx, id, s)
		require.NoError(t, err)
	}

	require.NoError(t, v.Close(closed))
	assert.Equal(t, []dataset.ID{keep}, v.Datasets())
	assert.Equal(t, 1, v.Stats()[TableCache].Entries)
	assert.Equal(t, 1, v.Stats()[SpectraCache].Entries)

	_, err = v.Table(ctx, closed, s)
	assert.ErrorIs(t, err, dataset.ErrNotFound)
	assert.ErrorIs(t, v.Close(closed), dataset.ErrNotFound)
}

func TestViewerReplaceIssuesNewID(t *testing.T) {
	ctx := context.Background()
	v := New()
	id, err := v.Load(testDataset(t))
	require.NoError(t, err)

	s := settings.Default()
	before, err := v.Table(ctx, id, s)
	require.NoError(t, err)

	smaller, err := dataset.New([]int32{1}, [][]float32{{1}}, [][]uint16{{1}})
	require.NoError(t, err)
	newID, err := v.Replace(id, smaller)
	require.NoError(t, err)
	assert.NotEqual(t, id, newID)

	after, err := v.Table(ctx, newID, s)
	require.NoError(t, err)
	assert.Equal(t, 3, before.Len())
	assert.Equal(t, 1, after.Len())

	_, err = v.Table(ctx, id, s)
	assert.ErrorIs(t, err, dataset.ErrNotFound)
}

func TestViewerLoadRejectsInvalidDataset(t *testing.T) {
	v := New()
	_, err := v.Load(&dataset.Dataset{
		RetentionTime: []int32{1},
		MassToCharge:  [][]float32{{1, 2}},
		Signal:        [][]uint16{{1}},
	})
	assert.ErrorIs(t, err, dataset.ErrDataInvariant)
	assert.Empty(t, v.Datasets())
}

func TestViewerStore(t *testing.T) {
	stores := map[string]func(t *testing.T) dataset.Store{
		"memory": func(t *testing.T) dataset.Store { return dataset.NewMemoryStore() },
		"sqlite": func(t *testing.T) dataset.Store {
			s, err := sqlitestore.New(filepath.Join(t.TempDir(), "msview.db"))
			require.NoError(t, err)
			return s
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()

			v := New(WithStore(store))
			id, err := v.Load(testDataset(t))
			require.NoError(t, err)
			acqID, err := v.Save(id, "run 1")
			require.NoError(t, err)

			reopened, err := v.Open(acqID)
			require.NoError(t, err)
			assert.NotEqual(t, id, reopened)

			ctx := context.Background()
			a, err := v.Table(ctx, id, settings.Default())
			require.NoError(t, err)
			b, err := v.Table(ctx, reopened, settings.Default())
			require.NoError(t, err)
			assert.Equal(t, a, b)

			_, err = v.Open("missing")
			assert.ErrorIs(t, err, dataset.ErrNotFound)
		})
	}
}

func TestViewerWithoutStore(t *testing.T) {
	v := New()
	_, err := v.Open("anything")
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestViewerCollector(t *testing.T) {
	v := New()
	id, err := v.Load(testDataset(t))
	require.NoError(t, err)
	_, err = v.Table(context.Background(), id, settings.Default())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(v.Collector()))
	// seven series per cache
	assert.Equal(t, 14, testutil.CollectAndCount(v.Collector()))
}
