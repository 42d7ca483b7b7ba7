package surface

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/gxemu/surfstore/surfutils"
)

// bindRequest gathers one slot's requirements plus the kind-specific
// capability hooks, so color and depth-stencil binds run through a single
// resolver.
type bindRequest struct {
	addr      uint32
	width     uint32
	height    uint32
	pitch     uint32
	antialias Antialiasing

	isDepth     bool
	matches     func(s Surface, exact bool) bool
	create      func(seed Surface) (Surface, error)
	prepareDraw func(s Surface)
}

// PrepareRenderTargets updates every bound color and depth-stencil slot for
// the next frame's configuration. It must be called whenever the surface
// format, clip dimensions, or slot addresses change. Slots the target mask
// does not select, and slots configured at address zero, are cleared with
// their previous occupant transitioned to a sampleable state.
//
// userData is passed through to the backend's surface creation calls
// untouched.
func (s *Store) PrepareRenderTargets(
	colorFormat ColorFormat,
	depthFormat DepthFormat,
	width, height uint32,
	target Target,
	antialias Antialiasing,
	colorAddresses [4]uint32,
	depthAddress uint32,
	colorPitches [4]uint32,
	depthPitch uint32,
	userData any,
) error {
	s.logger.Debug("Store::PrepareRenderTargets")

	s.cacheTag = s.tags.Next()
	s.memoryTree = s.memoryTree[:0]

	// Previous targets become sampleable before the new configuration takes
	// their slots
	for i := range s.boundColor {
		if s.boundColor[i].surface != nil {
			s.backend.PrepareColorForSampling(s.boundColor[i].surface)
		}
		s.boundColor[i] = boundSlot{}
	}

	for _, index := range target.Indexes() {
		addr := colorAddresses[index]
		if addr == 0 {
			continue
		}

		bound, err := s.bindSurface(bindRequest{
			addr:      addr,
			width:     width,
			height:    height,
			pitch:     colorPitches[index],
			antialias: antialias,
			isDepth:   false,
			matches: func(cached Surface, exact bool) bool {
				return s.backend.ColorSurfaceMatches(cached, colorFormat, width, height, exact)
			},
			create: func(seed Surface) (Surface, error) {
				return s.backend.CreateColorSurface(addr, colorFormat, width, height, colorPitches[index], seed, userData)
			},
			prepareDraw: s.backend.PrepareColorForDrawing,
		})
		if err != nil {
			return cerrors.Wrapf(err, "binding color slot %d at address 0x%08x", index, addr)
		}

		s.boundColor[index] = boundSlot{address: addr, surface: bound}
	}

	if s.boundDepth.surface != nil {
		s.backend.PrepareDepthForSampling(s.boundDepth.surface)
	}
	s.boundDepth = boundSlot{}

	if depthAddress != 0 {
		bound, err := s.bindSurface(bindRequest{
			addr:      depthAddress,
			width:     width,
			height:    height,
			pitch:     depthPitch,
			antialias: antialias,
			isDepth:   true,
			matches: func(cached Surface, exact bool) bool {
				return s.backend.DepthSurfaceMatches(cached, depthFormat, width, height, exact)
			},
			create: func(seed Surface) (Surface, error) {
				return s.backend.CreateDepthSurface(depthAddress, depthFormat, width, height, depthPitch, seed, userData)
			},
			prepareDraw: s.backend.PrepareDepthForDrawing,
		})
		if err != nil {
			return cerrors.Wrapf(err, "binding the depth-stencil slot at address 0x%08x", depthAddress)
		}

		s.boundDepth = boundSlot{address: depthAddress, surface: bound}
	}

	surfutils.DebugValidate(s)
	return nil
}

// bindSurface resolves one slot request against the tables and the retired
// pool: reuse an exact match in place, recycle a retired surface of
// matching shape, or create a new one, evicting whatever aliased the
// address first.
func (s *Store) bindSurface(req bindRequest) (Surface, error) {
	ownTable, otherTable := s.colorStorage, s.depthStorage
	if req.isDepth {
		ownTable, otherTable = s.depthStorage, s.colorStorage
	}

	var oldSurface, convertSurface Surface

	// A surface of the other kind occupying this address gets evicted; it
	// may still seed the new contents through a conversion pass
	if aliased, ok := otherTable.Get(req.addr); ok {
		s.backend.NotifySurfaceEvicted(aliased)
		aliased.Descriptor().invalidateRefs()
		otherTable.Delete(req.addr)
		s.retired.push(aliased)
		convertSurface = aliased
	}

	if existing, ok := ownTable.Get(req.addr); ok {
		if req.matches(existing, false) {
			// Same shape at the same address: reuse in place. A matching
			// pitch keeps the contents; a mismatched one keeps only the
			// allocation.
			if s.backend.PitchCompatible(existing, req.pitch) {
				s.backend.NotifySurfacePersist(existing)
			} else {
				s.invalidateContents(existing, nil, req.addr, req.pitch)
			}

			req.prepareDraw(existing)
			existing.Descriptor().SetWriteAA(req.antialias)
			return existing, nil
		}

		s.backend.NotifySurfaceEvicted(existing)
		existing.Descriptor().invalidateRefs()
		ownTable.Delete(req.addr)
		oldSurface = existing
	}

	// Widen the table's min/max summary to cover the new footprint,
	// including the extra storage higher sample modes consume
	footprint := surfutils.RangeStartLength(req.addr, req.pitch*req.height*req.antialias.StorageFactor())
	if req.isDepth {
		s.depthRange = s.depthRange.Extend(footprint)
	} else {
		s.colorRange = s.colorRange.Extend(footprint)
	}

	// A same-kind retirement takes precedence over a cross-kind eviction as
	// the seed content
	seed := convertSurface
	if oldSurface != nil {
		seed = oldSurface
	}

	recycled := s.retired.recycle(func(candidate Surface) bool {
		return req.matches(candidate, true)
	}, oldSurface)

	if recycled == nil && oldSurface != nil {
		s.retired.push(oldSurface)
	}

	if recycled != nil {
		recycled.Descriptor().invalidateRefs()
		s.invalidateContents(recycled, seed, req.addr, req.pitch)
		req.prepareDraw(recycled)
		recycled.Descriptor().SetWriteAA(req.antialias)
		ownTable.Put(req.addr, recycled)
		return recycled, nil
	}

	created, err := req.create(seed)
	if err != nil {
		return nil, err
	}

	desc := created.Descriptor()
	ownInfo := s.backend.SurfaceInfo(created)
	desc.SetOldContents(seed, s.seedInfo(seed), ownInfo)
	desc.QueueTag(req.addr, ownInfo)
	desc.SyncTag(s.mem)
	desc.Dirty = true
	desc.SetWriteAA(req.antialias)

	ownTable.Put(req.addr, created)
	return created, nil
}

// invalidateContents declares a surface's contents unusable at its new
// address and pitch, records the conversion seed, and recomputes the
// coherency samples for the new placement.
func (s *Store) invalidateContents(target Surface, seed Surface, addr, pitch uint32) {
	s.backend.InvalidateSurfaceContents(target, seed, addr, pitch)

	desc := target.Descriptor()
	ownInfo := s.backend.SurfaceInfo(target)
	desc.SetOldContents(seed, s.seedInfo(seed), ownInfo)
	desc.ResetAAMode()
	desc.QueueTag(addr, ownInfo)
	desc.SyncTag(s.mem)
	desc.Dirty = true
}

func (s *Store) seedInfo(seed Surface) SurfaceInfo {
	if seed == nil {
		return SurfaceInfo{}
	}
	return s.backend.SurfaceInfo(seed)
}
