package surface

// hierarchyChild is one cached surface whose full footprint nests inside a
// bound surface's footprint, recorded with its pixel placement within the
// parent.
type hierarchyChild struct {
	ref     SurfaceRef
	address uint32
	x       uint32
	y       uint32
	width   uint32
	height  uint32
}

// hierarchyBlock is one bound surface's footprint plus every cached surface
// fully nested inside it.
type hierarchyBlock struct {
	address  uint32
	length   uint32
	contents SurfaceRef
	children []hierarchyChild
}

// rebuildMemoryTree derives, from scratch, which cached surfaces' memory
// footprints nest entirely inside a bound surface's footprint. Only full
// containment aligned to the parent's pitch is modeled; surfaces that
// partially overlap a block are skipped, so their staleness is not cascaded
// here. Consumers rely on this narrower behavior.
func (s *Store) rebuildMemoryTree() {
	s.memoryTree = s.memoryTree[:0]

	for i := range s.boundColor {
		if s.boundColor[i].surface != nil {
			s.buildHierarchyBlock(s.boundColor[i].address, s.boundColor[i].surface)
		}
	}

	if s.boundDepth.surface != nil {
		s.buildHierarchyBlock(s.boundDepth.address, s.boundDepth.surface)
	}
}

func (s *Store) buildHierarchyBlock(blockAddr uint32, blockSurface Surface) {
	info := s.backend.SurfaceInfo(blockSurface)
	blockEnd := blockAddr + info.FootprintBytes()

	block := hierarchyBlock{
		address:  blockAddr,
		length:   blockEnd - blockAddr,
		contents: MakeSurfaceRef(blockSurface),
	}

	collect := func(addr uint32, candidate Surface) bool {
		s.collectContained(&block, info, blockAddr, blockEnd, addr, candidate)
		return false
	}
	s.colorStorage.Iter(collect)
	s.depthStorage.Iter(collect)

	if len(block.children) > 0 {
		s.memoryTree = append(s.memoryTree, block)
	}
}

// collectContained records candidate as a child of block if its entire
// footprint fits inside the remaining row and remaining rows of the block,
// aligned to the block's pitch.
func (s *Store) collectContained(
	block *hierarchyBlock,
	blockInfo SurfaceInfo,
	blockAddr, blockEnd uint32,
	addr uint32,
	candidate Surface,
) {
	// A base at or before the block's own base also rejects the block's
	// self test
	if addr <= blockAddr || addr >= blockEnd {
		return
	}

	candidateInfo := s.backend.SurfaceInfo(candidate)

	offset := addr - blockAddr
	offsetY := offset / blockInfo.Pitch
	offsetX := (offset % blockInfo.Pitch) / blockInfo.BPP
	candidateRowBytes := candidateInfo.BPP * candidateInfo.Width

	fitsWidth := (offset%blockInfo.Pitch)+candidateRowBytes <= blockInfo.Pitch
	fitsHeight := (offsetY+candidateInfo.Height)*blockInfo.Pitch <= blockEnd-blockAddr

	if !fitsWidth || !fitsHeight {
		// Partial overlaps are not modeled
		return
	}

	block.children = append(block.children, hierarchyChild{
		ref:     MakeSurfaceRef(candidate),
		address: addr,
		x:       offsetX,
		y:       offsetY,
		width:   candidateInfo.Width,
		height:  candidateInfo.Height,
	})
}

// OnWrite commits a backend-side write event. A zero address means a write
// touched the currently bound slots generically; such writes deduplicate
// against the topology tag so repeated notifications between binds cost
// nothing. The containment hierarchy is rebuilt if stale, every surface
// nested inside a written block is marked dirty, and every bound slot
// matching the filter commits its own write through its descriptor.
func (s *Store) OnWrite(address uint32) {
	if address == 0 {
		if s.writeTag == s.cacheTag {
			return
		}
		s.writeTag = s.cacheTag
	}

	if s.memoryTag != s.cacheTag {
		s.rebuildMemoryTree()
		s.memoryTag = s.cacheTag
	}

	for i := range s.memoryTree {
		block := &s.memoryTree[i]
		if address != 0 && block.address != address {
			continue
		}

		for _, child := range block.children {
			if contained := child.ref.Resolve(); contained != nil {
				// Backend-side contents changed underneath it
				contained.Descriptor().Dirty = true
			}
		}
	}

	for i := range s.boundColor {
		if address != 0 && s.boundColor[i].address != address {
			continue
		}

		if bound := s.boundColor[i].surface; bound != nil {
			bound.Descriptor().OnWrite(s.writeTag, s.mem)
		}
	}

	if bound := s.boundDepth.surface; bound != nil {
		if address == 0 || s.boundDepth.address == address {
			bound.Descriptor().OnWrite(s.writeTag, s.mem)
		}
	}
}
