package surface

import (
	"sort"

	"github.com/dolthub/swiss"
	"github.com/gxemu/surfstore/surfutils"
)

// OverlapInfo describes one cached surface intersecting a requested texture
// fetch region, with the clipped sub-rectangle mapping needed to composite
// it into the fetch.
type OverlapInfo struct {
	Surface     Surface
	BaseAddress uint32
	IsDepth     bool

	// IsClipped is set when either dimension was truncated against the
	// fetch bounds or the surface bounds.
	IsClipped bool

	SrcX   uint32
	SrcY   uint32
	DstX   uint32
	DstY   uint32
	Width  uint32
	Height uint32
}

// Area is the mapped pixel area, used to order equally recent results.
func (o OverlapInfo) Area() uint32 {
	return o.Width * o.Height
}

// pitchCompatible reports whether a cached surface's rows can map onto a
// fetch of the given pitch. Multi-row regions must match stride exactly to
// map row-for-row; single-row regions map linearly regardless of stride.
func pitchCompatible(info SurfaceInfo, requiredPitch, requiredHeight uint32) bool {
	if info.Height == 1 || requiredHeight == 1 {
		return true
	}
	return info.Pitch == requiredPitch
}

// MergedTextureMemoryRegion returns every cached surface, color or
// depth-stencil, whose device-memory footprint reaches into the fetch
// region starting at texaddr, each annotated with its clipped source and
// destination sub-rectangles. Surfaces failing their coherency test are
// evicted instead of returned.
//
// Results are sorted ascending by last-use tag, ties broken by ascending
// area, so a consumer compositing them in order ends with the most recently
// written data on top.
func (s *Store) MergedTextureMemoryRegion(texaddr, requiredWidth, requiredHeight, requiredPitch uint32) []OverlapInfo {
	s.logger.Debug("Store::MergedTextureMemoryRegion")

	limit := texaddr + requiredPitch*requiredHeight

	var result []OverlapInfo

	type staleEntry struct {
		address uint32
		isDepth bool
	}
	var stale []staleEntry

	processTable := func(table *swiss.Map[uint32, Surface], isDepth bool) {
		table.Iter(func(thisAddr uint32, cached Surface) bool {
			if thisAddr >= limit {
				return false
			}

			desc := cached.Descriptor()
			info := s.backend.SurfaceInfo(cached)
			if !pitchCompatible(info, requiredPitch, requiredHeight) {
				return false
			}

			scaleX := desc.ReadAA().SampleScaleX()
			scaleY := desc.ReadAA().SampleScaleY()

			textureSize := info.Pitch * info.Height * scaleY
			if thisAddr+textureSize <= texaddr {
				return false
			}

			s.backend.ReadBarrier(cached)
			if !desc.Test(s.mem) {
				// Externally overwritten since the last sync; evict after
				// the scan completes
				stale = append(stale, staleEntry{address: thisAddr, isDepth: isDepth})
				return false
			}

			overlap := OverlapInfo{
				Surface:     cached,
				BaseAddress: thisAddr,
				IsDepth:     isDepth,
			}

			if thisAddr < texaddr {
				// The fetch begins inside the candidate
				scaledWidth := requiredWidth / scaleX
				scaledHeight := requiredHeight / scaleY

				offset := texaddr - thisAddr
				overlap.SrcY = (offset / requiredPitch) / scaleY
				overlap.SrcX = (offset % requiredPitch) / info.BPP / scaleX
				overlap.Width = minU32(scaledWidth, info.Width-overlap.SrcX)
				overlap.Height = minU32(scaledHeight, info.Height-overlap.SrcY)
				overlap.IsClipped = overlap.Width < scaledWidth || overlap.Height < scaledHeight
			} else {
				// The candidate begins inside the fetch
				scaledWidth := info.Width * scaleX
				scaledHeight := info.Height * scaleY

				offset := thisAddr - texaddr
				overlap.DstY = offset / requiredPitch
				overlap.DstX = (offset % requiredPitch) / info.BPP
				overlap.Width = minU32(scaledWidth, requiredWidth-overlap.DstX)
				overlap.Height = minU32(scaledHeight, requiredHeight-overlap.DstY)
				overlap.IsClipped = overlap.Width < requiredWidth || overlap.Height < requiredHeight
				overlap.Width /= scaleX
				overlap.Height /= scaleY
			}

			result = append(result, overlap)
			return false
		})
	}

	// The min/max summaries reject most misses before any per-surface work.
	// Render targets tend to cluster, so the summaries stay tight in
	// practice.
	fetch := surfutils.RangeStartEnd(texaddr, limit)

	if fetch.Overlaps(s.colorRange) {
		processTable(s.colorStorage, false)
	}

	if fetch.Overlaps(s.depthRange) {
		processTable(s.depthStorage, true)
	}

	for _, entry := range stale {
		_ = s.InvalidateAddress(entry.address, entry.isDepth)
	}

	if len(result) > 1 {
		sort.SliceStable(result, func(i, j int) bool {
			a, b := result[i], result[j]
			tagA := a.Surface.Descriptor().LastUseTag
			tagB := b.Surface.Descriptor().LastUseTag
			if tagA == tagB {
				return a.Area() < b.Area()
			}
			return tagA < tagB
		})
	}

	return result
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}
