package surface

import (
	"context"

	"github.com/dolthub/swiss"
	"github.com/gxemu/surfstore/surfutils"
	"github.com/gxemu/surfstore/vram"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

const defaultTableCapacity = 32

type boundSlot struct {
	address uint32
	surface Surface
}

// StoreCreateInfo carries the collaborators a Store is built around.
type StoreCreateInfo struct {
	// Backend is the capability provider that owns real GPU resources.
	Backend Backend
	// Memory is the emulated device memory window surfaces live in, used
	// only for coherency sampling.
	Memory vram.Memory
	// Tags orders binds and writes. May be shared with other consumers;
	// when nil, the store creates a private generator.
	Tags *TagGenerator
	// Logger receives trace and diagnostic output. When nil, slog.Default
	// is used.
	Logger *slog.Logger
	// TableCapacity pre-sizes the two address tables. Zero selects a
	// default.
	TableCapacity uint32
}

// Store caches color and depth-stencil render targets keyed by the device
// address they were configured at, decides how each bind request is
// satisfied (reuse, recycle, or create), and tracks enough coherency
// metadata to know whether a cached surface's device-visible contents can
// still be trusted.
//
// A Store is confined to the single command-processing thread that owns the
// pipeline state. No method may be called concurrently. Surfaces handed out
// by lookups and queries are non-owning references valid only until the
// next bind or invalidate call.
type Store struct {
	logger  *slog.Logger
	backend Backend
	mem     vram.Memory
	tags    *TagGenerator

	colorStorage *swiss.Map[uint32, Surface]
	depthStorage *swiss.Map[uint32, Surface]
	colorRange   surfutils.AddressRange
	depthRange   surfutils.AddressRange

	boundColor [4]boundSlot
	boundDepth boundSlot

	retired    retiredPool
	memoryTree []hierarchyBlock

	cacheTag  uint64
	writeTag  uint64
	memoryTag uint64
}

// NewStore builds a Store from the provided collaborators. Backend and
// Memory are required.
func NewStore(createInfo StoreCreateInfo) (*Store, error) {
	if createInfo.Backend == nil {
		return nil, errors.New("a backend capability provider is required to create a surface store")
	}
	if createInfo.Memory == nil {
		return nil, errors.New("a device memory accessor is required to create a surface store")
	}

	tags := createInfo.Tags
	if tags == nil {
		tags = NewTagGenerator()
	}

	logger := createInfo.Logger
	if logger == nil {
		logger = slog.Default()
	}

	capacity := createInfo.TableCapacity
	if capacity == 0 {
		capacity = defaultTableCapacity
	}
	err := surfutils.CheckPow2(capacity, "createInfo.TableCapacity")
	if err != nil {
		return nil, err
	}

	return &Store{
		logger:  logger,
		backend: createInfo.Backend,
		mem:     createInfo.Memory,
		tags:    tags,

		colorStorage: swiss.NewMap[uint32, Surface](capacity),
		depthStorage: swiss.NewMap[uint32, Surface](capacity),
	}, nil
}

// ColorSurfaceAt returns the cached color surface configured at addr, or
// nil when no color surface owns the address.
func (s *Store) ColorSurfaceAt(addr uint32) Surface {
	if cached, ok := s.colorStorage.Get(addr); ok {
		return cached
	}
	return nil
}

// DepthSurfaceAt returns the cached depth-stencil surface configured at
// addr, or nil when no depth-stencil surface owns the address.
func (s *Store) DepthSurfaceAt(addr uint32) Surface {
	if cached, ok := s.depthStorage.Get(addr); ok {
		return cached
	}
	return nil
}

// SurfaceAt returns the cached surface at addr from whichever table owns
// it. Callers use this form only when their own state tracking guarantees
// the address is cached; a miss is a caller bug and panics.
func (s *Store) SurfaceAt(addr uint32) Surface {
	if cached, ok := s.colorStorage.Get(addr); ok {
		return cached
	}
	if cached, ok := s.depthStorage.Get(addr); ok {
		return cached
	}

	s.logger.LogAttrs(context.Background(), slog.LevelError, "Store::SurfaceAt queried an address cached in neither table",
		slog.Uint64("address", uint64(addr)))
	panic(errors.Errorf("no cached surface at address 0x%08x", addr))
}

// AddressIsBound reports whether addr is one of the currently bound color
// or depth-stencil slots.
func (s *Store) AddressIsBound(addr uint32) bool {
	for i := range s.boundColor {
		if s.boundColor[i].address == addr && s.boundColor[i].surface != nil {
			return true
		}
	}

	return s.boundDepth.address == addr && s.boundDepth.surface != nil
}

// BoundColorSurface returns the surface bound to color slot index, or nil.
func (s *Store) BoundColorSurface(index int) Surface {
	return s.boundColor[index].surface
}

// BoundDepthSurface returns the bound depth-stencil surface, or nil.
func (s *Store) BoundDepthSurface() Surface {
	return s.boundDepth.surface
}

// NotifyMemoryStructureChanged records that the bound-slot topology changed
// behind the store's back, forcing the containment hierarchy to rebuild on
// its next use.
func (s *Store) NotifyMemoryStructureChanged() {
	s.cacheTag = s.tags.Next()
}

// CacheTag returns the current topology change tag.
func (s *Store) CacheTag() uint64 {
	return s.cacheTag
}

// Statistics accumulates the store's surface inventory into stats.
func (s *Store) Statistics(stats *surfutils.DetailedStatistics) {
	s.colorStorage.Iter(func(addr uint32, cached Surface) bool {
		stats.AddSurface(int(s.backend.SurfaceInfo(cached).FootprintBytes()))
		return false
	})
	s.depthStorage.Iter(func(addr uint32, cached Surface) bool {
		stats.AddSurface(int(s.backend.SurfaceInfo(cached).FootprintBytes()))
		return false
	})

	for _, cached := range s.retired.surfaces {
		stats.AddRetired(int(s.backend.SurfaceInfo(cached).FootprintBytes()))
	}
}

// Validate performs internal consistency checks on the store. When the
// store is functioning correctly this cannot fail; it exists to diagnose
// implementation issues and runs at mutation boundaries in debug builds.
func (s *Store) Validate() error {
	var err error
	s.colorStorage.Iter(func(addr uint32, cached Surface) bool {
		if cached == nil {
			err = errors.Errorf("the color table holds a nil surface at address 0x%08x", addr)
			return true
		}
		if _, aliased := s.depthStorage.Get(addr); aliased {
			err = errors.Errorf("address 0x%08x is keyed in both the color and depth-stencil tables", addr)
			return true
		}
		if samples := cached.Descriptor().SampleAddresses(); len(samples) > 0 && samples[0] != addr {
			err = errors.Errorf("the color surface at address 0x%08x samples base address 0x%08x", addr, samples[0])
			return true
		}
		return false
	})
	if err != nil {
		return err
	}

	s.depthStorage.Iter(func(addr uint32, cached Surface) bool {
		if cached == nil {
			err = errors.Errorf("the depth-stencil table holds a nil surface at address 0x%08x", addr)
			return true
		}
		if samples := cached.Descriptor().SampleAddresses(); len(samples) > 0 && samples[0] != addr {
			err = errors.Errorf("the depth-stencil surface at address 0x%08x samples base address 0x%08x", addr, samples[0])
			return true
		}
		return false
	})
	if err != nil {
		return err
	}

	for i := range s.boundColor {
		slot := s.boundColor[i]
		if slot.surface == nil {
			continue
		}
		if cached, ok := s.colorStorage.Get(slot.address); !ok || cached != slot.surface {
			return errors.Errorf("bound color slot %d at address 0x%08x does not match the color table", i, slot.address)
		}
	}

	if s.boundDepth.surface != nil {
		if cached, ok := s.depthStorage.Get(s.boundDepth.address); !ok || cached != s.boundDepth.surface {
			return errors.Errorf("the bound depth-stencil slot at address 0x%08x does not match the depth-stencil table", s.boundDepth.address)
		}
	}

	for i, cached := range s.retired.surfaces {
		if cached == nil {
			return errors.Errorf("the retired pool holds a nil surface at position %d", i)
		}
	}

	return nil
}

var _ surfutils.Validatable = &Store{}
