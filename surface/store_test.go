package surface_test

import (
	"testing"

	"github.com/gxemu/surfstore/surface"
	"github.com/gxemu/surfstore/surfutils"
	"github.com/gxemu/surfstore/vram"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const memoryBase = 0x10000

func newTestStore(t *testing.T) (*surface.Store, *surface.FakeBackend, *vram.Buffer) {
	backend := &surface.FakeBackend{}
	mem := vram.NewBuffer(memoryBase, 0x40000)

	store, err := surface.NewStore(surface.StoreCreateInfo{
		Backend: backend,
		Memory:  mem,
	})
	require.NoError(t, err)

	return store, backend, mem
}

func prepareColor(t *testing.T, store *surface.Store, addr, pitch, width, height uint32) {
	err := store.PrepareRenderTargets(
		surface.ColorA8R8G8B8, surface.DepthZ24S8,
		width, height,
		surface.TargetA, surface.AntialiasCenter1Sample,
		[4]uint32{addr}, 0,
		[4]uint32{pitch}, 0,
		nil)
	require.NoError(t, err)
}

func prepareDepth(t *testing.T, store *surface.Store, addr, pitch, width, height uint32) {
	err := store.PrepareRenderTargets(
		surface.ColorA8R8G8B8, surface.DepthZ24S8,
		width, height,
		surface.TargetNone, surface.AntialiasCenter1Sample,
		[4]uint32{}, addr,
		[4]uint32{}, pitch,
		nil)
	require.NoError(t, err)
}

func TestNewStoreRequiresCollaborators(t *testing.T) {
	mem := vram.NewBuffer(memoryBase, 0x1000)

	_, err := surface.NewStore(surface.StoreCreateInfo{Memory: mem})
	require.Error(t, err)

	_, err = surface.NewStore(surface.StoreCreateInfo{Backend: &surface.FakeBackend{}})
	require.Error(t, err)
}

func TestNewStoreRejectsNonPow2TableCapacity(t *testing.T) {
	mem := vram.NewBuffer(memoryBase, 0x1000)

	_, err := surface.NewStore(surface.StoreCreateInfo{
		Backend:       &surface.FakeBackend{},
		Memory:        mem,
		TableCapacity: 48,
	})
	require.Error(t, err)
	require.True(t, errors.Is(err, surfutils.PowerOfTwoError))

	_, err = surface.NewStore(surface.StoreCreateInfo{
		Backend:       &surface.FakeBackend{},
		Memory:        mem,
		TableCapacity: 64,
	})
	require.NoError(t, err)
}

func TestStoreLookupAndBoundState(t *testing.T) {
	store, backend, _ := newTestStore(t)

	prepareColor(t, store, 0x11000, 256, 64, 32)

	require.Len(t, backend.Created, 1)
	bound := store.BoundColorSurface(0)
	require.NotNil(t, bound)
	require.Equal(t, bound, store.ColorSurfaceAt(0x11000))
	require.Equal(t, bound, store.SurfaceAt(0x11000))
	require.Nil(t, store.DepthSurfaceAt(0x11000))
	require.Nil(t, store.BoundDepthSurface())

	require.True(t, store.AddressIsBound(0x11000))
	require.False(t, store.AddressIsBound(0x12000))

	require.NoError(t, store.Validate())
}

func TestSurfaceAtPanicsOnMiss(t *testing.T) {
	store, _, _ := newTestStore(t)

	require.Panics(t, func() {
		store.SurfaceAt(0x11000)
	})
}

func TestAddressExclusivityAcrossKinds(t *testing.T) {
	store, backend, _ := newTestStore(t)

	prepareColor(t, store, 0x11000, 256, 64, 32)
	colorSurface := store.ColorSurfaceAt(0x11000)
	require.NotNil(t, colorSurface)

	prepareDepth(t, store, 0x11000, 256, 64, 32)

	// The depth-stencil bind steals the address; the color surface is
	// evicted and seeds the replacement through a conversion pass
	require.Nil(t, store.ColorSurfaceAt(0x11000))
	depthSurface := store.DepthSurfaceAt(0x11000)
	require.NotNil(t, depthSurface)

	fakeColor := colorSurface.(*surface.FakeSurface)
	require.Equal(t, 1, fakeColor.EvictCount)

	require.Len(t, backend.Created, 2)
	require.Equal(t, colorSurface, backend.Created[1].Seed)

	require.NoError(t, store.Validate())
}

func TestStatisticsCountsTablesAndRetiredPool(t *testing.T) {
	store, _, _ := newTestStore(t)

	prepareColor(t, store, 0x11000, 256, 64, 32)
	prepareDepth(t, store, 0x14000, 256, 64, 32)

	var stats surfutils.DetailedStatistics
	stats.Clear()
	store.Statistics(&stats)

	require.Equal(t, 2, stats.SurfaceCount)
	require.Equal(t, 2*256*32, stats.SurfaceBytes)
	require.Equal(t, 0, stats.RetiredCount)

	// A shape mismatch retires the old color surface into the pool
	prepareColor(t, store, 0x11000, 512, 128, 32)

	stats.Clear()
	store.Statistics(&stats)

	require.Equal(t, 2, stats.SurfaceCount)
	require.Equal(t, 1, stats.RetiredCount)
	require.Equal(t, 256*32, stats.RetiredBytes)
}

func TestTagGeneratorNeverIssuesZero(t *testing.T) {
	tags := surface.NewTagGenerator()

	require.Equal(t, uint64(0), tags.Current())
	require.Equal(t, uint64(1), tags.Next())
	require.Equal(t, uint64(2), tags.Next())
	require.Equal(t, uint64(2), tags.Current())
}

func TestNotifyMemoryStructureChangedAdvancesCacheTag(t *testing.T) {
	store, _, _ := newTestStore(t)

	before := store.CacheTag()
	store.NotifyMemoryStructureChanged()
	require.Greater(t, store.CacheTag(), before)
}
