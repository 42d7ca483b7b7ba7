package surface

// FakeSurface is a plain in-memory surface for exercising the store without
// a real rendering backend.
type FakeSurface struct {
	desc Descriptor

	Info        SurfaceInfo
	IsDepth     bool
	ColorFormat ColorFormat
	DepthFormat DepthFormat

	// NoRecycle makes the strict recycling predicate reject this surface
	// while the loose reuse predicate still accepts it.
	NoRecycle bool

	Seed            Surface
	State           string
	PersistCount    int
	InvalidateCount int
	EvictCount      int
	BarrierCount    int
}

func (s *FakeSurface) Descriptor() *Descriptor {
	return &s.desc
}

var _ Surface = &FakeSurface{}

type FakeDownload struct {
	Data     []byte
	MapCount int
	Unmapped bool
}

func (d *FakeDownload) Map() []byte {
	d.MapCount++
	return d.Data
}

func (d *FakeDownload) Unmap() {
	d.Unmapped = true
}

var _ DownloadBuffer = &FakeDownload{}

// FakeBackend fabricates FakeSurfaces and records lifecycle traffic. The
// zero value is ready to use.
type FakeBackend struct {
	Created []*FakeSurface

	CreateColorErr error
	CreateDepthErr error
	DownloadErr    error

	// Downloads supplies raw staging bytes per surface. Surfaces without an
	// entry download as zeroes of the expected padded size.
	Downloads map[Surface][]byte

	IssuedDownloads []*FakeDownload
}

func (b *FakeBackend) ColorSurfaceMatches(s Surface, format ColorFormat, width, height uint32, exact bool) bool {
	fake := s.(*FakeSurface)
	if fake.IsDepth || fake.ColorFormat != format {
		return false
	}
	if fake.Info.Width != width || fake.Info.Height != height {
		return false
	}
	return !exact || !fake.NoRecycle
}

func (b *FakeBackend) DepthSurfaceMatches(s Surface, format DepthFormat, width, height uint32, exact bool) bool {
	fake := s.(*FakeSurface)
	if !fake.IsDepth || fake.DepthFormat != format {
		return false
	}
	if fake.Info.Width != width || fake.Info.Height != height {
		return false
	}
	return !exact || !fake.NoRecycle
}

func (b *FakeBackend) PitchCompatible(s Surface, pitch uint32) bool {
	return s.(*FakeSurface).Info.Pitch == pitch
}

func (b *FakeBackend) CreateColorSurface(addr uint32, format ColorFormat, width, height, pitch uint32, seed Surface, userData any) (Surface, error) {
	if b.CreateColorErr != nil {
		return nil, b.CreateColorErr
	}

	fake := &FakeSurface{
		ColorFormat: format,
		Seed:        seed,
		Info: SurfaceInfo{
			Width:       width,
			Height:      height,
			NativePitch: width * format.Bytes(),
			Pitch:       pitch,
			BPP:         format.Bytes(),
		},
	}
	b.Created = append(b.Created, fake)
	return fake, nil
}

func (b *FakeBackend) CreateDepthSurface(addr uint32, format DepthFormat, width, height, pitch uint32, seed Surface, userData any) (Surface, error) {
	if b.CreateDepthErr != nil {
		return nil, b.CreateDepthErr
	}

	fake := &FakeSurface{
		IsDepth:     true,
		DepthFormat: format,
		Seed:        seed,
		Info: SurfaceInfo{
			Width:       width,
			Height:      height,
			NativePitch: width * format.Bytes(),
			Pitch:       pitch,
			BPP:         format.Bytes(),
		},
	}
	b.Created = append(b.Created, fake)
	return fake, nil
}

func (b *FakeBackend) SurfaceInfo(s Surface) SurfaceInfo {
	return s.(*FakeSurface).Info
}

func (b *FakeBackend) PrepareColorForDrawing(s Surface) {
	s.(*FakeSurface).State = "draw"
}

func (b *FakeBackend) PrepareColorForSampling(s Surface) {
	s.(*FakeSurface).State = "sample"
}

func (b *FakeBackend) PrepareDepthForDrawing(s Surface) {
	s.(*FakeSurface).State = "draw"
}

func (b *FakeBackend) PrepareDepthForSampling(s Surface) {
	s.(*FakeSurface).State = "sample"
}

func (b *FakeBackend) NotifySurfacePersist(s Surface) {
	s.(*FakeSurface).PersistCount++
}

func (b *FakeBackend) InvalidateSurfaceContents(s Surface, seed Surface, addr, pitch uint32) {
	fake := s.(*FakeSurface)
	fake.InvalidateCount++
	fake.Seed = seed
	fake.Info.Pitch = pitch
}

func (b *FakeBackend) NotifySurfaceEvicted(s Surface) {
	s.(*FakeSurface).EvictCount++
}

func (b *FakeBackend) ReadBarrier(s Surface) {
	s.(*FakeSurface).BarrierCount++
}

func (b *FakeBackend) issueDownload(s Surface, size uint32) (DownloadBuffer, error) {
	if b.DownloadErr != nil {
		return nil, b.DownloadErr
	}

	data := b.Downloads[s]
	if data == nil {
		data = make([]byte, size)
	}

	download := &FakeDownload{Data: data}
	b.IssuedDownloads = append(b.IssuedDownloads, download)
	return download, nil
}

func (b *FakeBackend) DownloadColor(s Surface, format ColorFormat, width, height uint32) (DownloadBuffer, error) {
	return b.issueDownload(s, AlignedPitch(format, width)*height)
}

func (b *FakeBackend) DownloadDepth(s Surface, format DepthFormat, width, height uint32) (DownloadBuffer, error) {
	return b.issueDownload(s, alignedTransferPitch(width*4)*height)
}

func (b *FakeBackend) DownloadStencil(s Surface, width, height uint32) (DownloadBuffer, error) {
	return b.issueDownload(s, alignedTransferPitch(width)*height)
}

func alignedTransferPitch(rowBytes uint32) uint32 {
	return (rowBytes + 255) &^ 255
}

var _ Backend = &FakeBackend{}
