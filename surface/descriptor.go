package surface

import (
	"github.com/gxemu/surfstore/vram"
)

// SurfaceRef is a non-owning reference to a cached surface. The referenced
// surface may be evicted or recycled at any bind or invalidate call, so the
// reference snapshots the surface's generation and Resolve returns nil once
// the two disagree.
type SurfaceRef struct {
	surface    Surface
	generation uint64
}

// MakeSurfaceRef captures a weak reference to s. A nil s yields the zero
// reference, which never resolves.
func MakeSurfaceRef(s Surface) SurfaceRef {
	if s == nil {
		return SurfaceRef{}
	}
	return SurfaceRef{
		surface:    s,
		generation: s.Descriptor().generation,
	}
}

// Resolve returns the referenced surface, or nil if the reference was empty
// or the surface has since been evicted or recycled.
func (r SurfaceRef) Resolve() Surface {
	if r.surface == nil {
		return nil
	}
	if r.surface.Descriptor().generation != r.generation {
		return nil
	}
	return r.surface
}

type memoryTagSample struct {
	address uint32
	value   uint64
}

// Descriptor is the store-owned coherency and ordering metadata attached to
// every cached surface. Backends embed one in their surface type; only the
// store mutates it.
//
// Coherency is tracked by sampling five 8-byte values in an X pattern over
// the surface's footprint: the four corners and the centroid. The samples
// cannot prove memory is unchanged; they sample-detect likely external
// writes without scanning the full surface.
type Descriptor struct {
	// LastUseTag orders surfaces by the recency of their last committed
	// write. Zero means never written.
	LastUseTag uint64

	// Dirty marks a surface suspected to hold stale or uninitialized data
	// relative to its declared address. Dirty and sample staleness are
	// orthogonal: Dirty means no committed write has landed here, a failed
	// Test means something external overwrote the memory since the last
	// sync.
	Dirty bool

	samples     [5]memoryTagSample
	oldContents SurfaceRef
	readAA      Antialiasing
	writeAA     Antialiasing

	// generation invalidates outstanding SurfaceRefs whenever the surface
	// is evicted or recycled to a different address.
	generation uint64
}

// QueueTag records the five sample addresses for a surface based at addr
// with the given shape. Sample addresses always derive from the surface's
// current base address and pitches; they are recomputed wholesale on every
// shape or address change, never patched.
func (d *Descriptor) QueueTag(addr uint32, info SurfaceInfo) {
	for i := range d.samples {
		d.samples[i].address = 0
	}
	d.samples[0].address = addr // top left

	pitch := info.NativePitch
	if pitch < 16 {
		// Not enough row to carry the 8-byte right-edge samples
		return
	}

	d.samples[1].address = addr + pitch - 8 // top right

	if h := info.Height; h > 1 {
		lastRowOffset := info.Pitch * (h - 1)
		d.samples[2].address = addr + lastRowOffset             // bottom left
		d.samples[3].address = addr + lastRowOffset + pitch - 8 // bottom right

		centerRowOffset := info.Pitch * (h / 2)
		d.samples[4].address = addr + centerRowOffset + pitch/2 // centroid
	}
}

// SyncTag re-reads the live 8-byte value at each recorded sample address.
func (d *Descriptor) SyncTag(mem vram.Memory) {
	for i := range d.samples {
		if d.samples[i].address == 0 {
			break
		}

		value, err := mem.ReadU64(d.samples[i].address)
		if err != nil {
			continue
		}
		d.samples[i].value = value
	}
}

// Test returns false iff any recorded sample's live value differs from the
// value captured at the last SyncTag. A Dirty surface still participates;
// dirtiness and staleness are independent signals.
func (d *Descriptor) Test(mem vram.Memory) bool {
	for i := range d.samples {
		if d.samples[i].address == 0 {
			break
		}

		value, err := mem.ReadU64(d.samples[i].address)
		if err != nil || value != d.samples[i].value {
			return false
		}
	}

	return true
}

// OnWrite commits a backend-side write: refreshes the memory samples,
// promotes the accumulating antialiasing mode, clears the dirty flag, and
// drops the conversion seed now that real contents have landed. A nonzero
// writeTag also updates LastUseTag.
func (d *Descriptor) OnWrite(writeTag uint64, mem vram.Memory) {
	if writeTag != 0 {
		d.LastUseTag = writeTag
	}

	d.SyncTag(mem)

	d.readAA = d.writeAA
	d.Dirty = false
	d.oldContents = SurfaceRef{}
}

// SetOldContents records other as the conversion seed for this surface's
// next initialization. Seeds whose declared pitch differs from ours cannot
// be copied row-for-row and are dropped instead.
func (d *Descriptor) SetOldContents(other Surface, otherInfo, ownInfo SurfaceInfo) {
	if other == nil || otherInfo.Pitch != ownInfo.Pitch {
		d.oldContents = SurfaceRef{}
		return
	}

	d.oldContents = MakeSurfaceRef(other)
}

// OldContents returns the recorded conversion seed, or nil if none was set
// or the seed has since been evicted or recycled.
func (d *Descriptor) OldContents() Surface {
	return d.oldContents.Resolve()
}

// ClearOldContents drops the conversion seed.
func (d *Descriptor) ClearOldContents() {
	d.oldContents = SurfaceRef{}
}

// ReadAA is the sample mode of the last committed write.
func (d *Descriptor) ReadAA() Antialiasing {
	return d.readAA
}

// WriteAA is the sample mode of the write currently accumulating.
func (d *Descriptor) WriteAA() Antialiasing {
	return d.writeAA
}

// SetWriteAA records the sample mode the next committed write will use.
func (d *Descriptor) SetWriteAA(aa Antialiasing) {
	d.writeAA = aa
}

// SaveAAMode promotes the accumulating sample mode and resets the write
// mode to single-sample.
func (d *Descriptor) SaveAAMode() {
	d.readAA = d.writeAA
	d.writeAA = AntialiasCenter1Sample
}

// ResetAAMode forces both sample modes back to single-sample.
func (d *Descriptor) ResetAAMode() {
	d.readAA = AntialiasCenter1Sample
	d.writeAA = AntialiasCenter1Sample
}

// SampleAddresses returns the recorded sample addresses, in pattern order,
// stopping at the first unset slot.
func (d *Descriptor) SampleAddresses() []uint32 {
	var addrs []uint32
	for i := range d.samples {
		if d.samples[i].address == 0 {
			break
		}
		addrs = append(addrs, d.samples[i].address)
	}
	return addrs
}

// invalidateRefs retires every outstanding SurfaceRef pointing at this
// surface.
func (d *Descriptor) invalidateRefs() {
	d.generation++
}
