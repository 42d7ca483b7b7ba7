package surface

import (
	"context"

	"github.com/dolthub/swiss"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"
)

// InvalidateSurface moves a single cached surface, identified by identity,
// from its table into the retired pool. Blit and format-conversion paths
// trigger this when a cached surface can no longer serve its declared
// shape. Returns true if the surface was found and evicted.
func (s *Store) InvalidateSurface(target Surface, isDepth bool) bool {
	s.logger.Debug("Store::InvalidateSurface")

	table := s.colorStorage
	if isDepth {
		table = s.depthStorage
	}

	foundAddr := uint32(0)
	found := false
	table.Iter(func(addr uint32, cached Surface) bool {
		if cached == target {
			foundAddr = addr
			found = true
			return true
		}
		return false
	})

	if !found {
		return false
	}

	s.evictFromTable(table, foundAddr, target)
	return true
}

// InvalidateAddress evicts the surface cached at addr into the retired
// pool. Evicting a currently bound slot would leave the bound configuration
// pointing at pool storage, so that is refused as a caller state-tracking
// error.
func (s *Store) InvalidateAddress(addr uint32, isDepth bool) error {
	s.logger.Debug("Store::InvalidateAddress")

	if s.AddressIsBound(addr) {
		s.logger.LogAttrs(context.Background(), slog.LevelError,
			"Store::InvalidateAddress cannot invalidate a currently bound render target",
			slog.Uint64("address", uint64(addr)),
			slog.Bool("isDepth", isDepth))
		return errors.Errorf("address 0x%08x is currently bound and cannot be invalidated", addr)
	}

	table := s.colorStorage
	if isDepth {
		table = s.depthStorage
	}

	if cached, ok := table.Get(addr); ok {
		s.evictFromTable(table, addr, cached)
	}

	return nil
}

func (s *Store) evictFromTable(table *swiss.Map[uint32, Surface], addr uint32, cached Surface) {
	s.backend.NotifySurfaceEvicted(cached)
	cached.Descriptor().invalidateRefs()
	table.Delete(addr)
	s.retired.push(cached)

	s.cacheTag = s.tags.Next()
}
