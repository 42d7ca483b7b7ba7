package surface

// Surface is an opaque backend-owned render target or depth-stencil target.
// The store never inspects pixel contents; it attaches its own Descriptor
// to every surface it caches and routes every other query through the
// Backend capability interface.
type Surface interface {
	// Descriptor returns the store-owned coherency metadata riding on this
	// surface. Backends embed a Descriptor in their surface type and return
	// a pointer to it here.
	Descriptor() *Descriptor
}

// SurfaceInfo describes the shape of a backend surface as it was created.
type SurfaceInfo struct {
	Width  uint32
	Height uint32
	// NativePitch is the tightly packed row size, Width times the per-pixel
	// byte count.
	NativePitch uint32
	// Pitch is the byte stride between rows as laid out in device memory.
	// It may exceed NativePitch.
	Pitch uint32
	// BPP is the per-pixel byte count.
	BPP uint32
}

// FootprintBytes is the byte extent the surface occupies in device memory,
// excluding antialiasing backing storage.
func (i SurfaceInfo) FootprintBytes() uint32 {
	return i.Pitch * i.Height
}

// DownloadBuffer is a backend staging buffer holding a completed surface
// download. Map and Unmap bracket access to the raw bytes; the download is
// synchronous from the store's point of view, so any fencing happens inside
// Map.
type DownloadBuffer interface {
	Map() []byte
	Unmap()
}

// Backend is the capability provider the store drives for everything that
// touches real GPU resources: shape predicates, lifecycle, state
// transitions, and readback. The store consumes this interface and never
// implements it; one Backend implementation exists per rendering API.
//
// All calls are synchronous and arrive on the single command-processing
// thread that owns the store.
type Backend interface {
	// ColorSurfaceMatches reports whether s is a color surface of the given
	// format and dimensions. With exact set, the test is the stricter
	// recycling predicate: the surface must be reusable as-is, with no
	// pitch or layout forgiveness applied.
	ColorSurfaceMatches(s Surface, format ColorFormat, width, height uint32, exact bool) bool
	// DepthSurfaceMatches is the depth-stencil counterpart of
	// ColorSurfaceMatches.
	DepthSurfaceMatches(s Surface, format DepthFormat, width, height uint32, exact bool) bool
	// PitchCompatible reports whether the surface's declared pitch can hold
	// rows of the given pitch without relayout.
	PitchCompatible(s Surface, pitch uint32) bool

	// CreateColorSurface constructs a new color surface at the given device
	// address and shape. A non-nil seed identifies a surface whose contents
	// should initialize the new one through a copy or conversion pass.
	// userData carries backend-specific creation parameters opaque to the
	// store.
	CreateColorSurface(addr uint32, format ColorFormat, width, height, pitch uint32, seed Surface, userData any) (Surface, error)
	// CreateDepthSurface is the depth-stencil counterpart of
	// CreateColorSurface.
	CreateDepthSurface(addr uint32, format DepthFormat, width, height, pitch uint32, seed Surface, userData any) (Surface, error)
	// SurfaceInfo extracts the shape the surface was created with.
	SurfaceInfo(s Surface) SurfaceInfo

	// PrepareColorForDrawing transitions a color surface into a state where
	// it can be bound as a render target.
	PrepareColorForDrawing(s Surface)
	// PrepareColorForSampling transitions a color surface into a state
	// where it can be sampled as a texture.
	PrepareColorForSampling(s Surface)
	// PrepareDepthForDrawing is the depth-stencil counterpart of
	// PrepareColorForDrawing.
	PrepareDepthForDrawing(s Surface)
	// PrepareDepthForSampling is the depth-stencil counterpart of
	// PrepareColorForSampling.
	PrepareDepthForSampling(s Surface)

	// NotifySurfacePersist informs the backend a surface is being reused in
	// place with its contents intact.
	NotifySurfacePersist(s Surface)
	// InvalidateSurfaceContents declares a surface's current contents
	// unusable at its new address and pitch. A non-nil seed identifies the
	// conversion source for the next initialization.
	InvalidateSurfaceContents(s Surface, seed Surface, addr, pitch uint32)
	// NotifySurfaceEvicted informs the backend a surface left the active
	// tables.
	NotifySurfaceEvicted(s Surface)

	// ReadBarrier resolves any pending backend writes to the surface before
	// its memory is sampled or tested.
	ReadBarrier(s Surface)

	// DownloadColor encodes and completes a download of the surface's color
	// data at the given shape.
	DownloadColor(s Surface, format ColorFormat, width, height uint32) (DownloadBuffer, error)
	// DownloadDepth downloads the depth plane of a depth-stencil surface.
	DownloadDepth(s Surface, format DepthFormat, width, height uint32) (DownloadBuffer, error)
	// DownloadStencil downloads the stencil plane of a z24s8 surface.
	DownloadStencil(s Surface, width, height uint32) (DownloadBuffer, error)
}

// TagGenerator hands out the monotonically increasing tags that order binds
// and writes across every consumer sharing it. Correctness depends only on
// relative ordering, so a generator may be shared between several stores or
// kept private to one.
type TagGenerator struct {
	tag uint64
}

// NewTagGenerator returns a generator whose first tag is 1.
func NewTagGenerator() *TagGenerator {
	return &TagGenerator{}
}

// Next returns the next tag. Never returns zero; zero is the "no tag"
// sentinel throughout the store.
func (g *TagGenerator) Next() uint64 {
	g.tag++
	return g.tag
}

// Current returns the most recently issued tag, or zero if none was issued.
func (g *TagGenerator) Current() uint64 {
	return g.tag
}
