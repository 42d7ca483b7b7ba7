package surface

import (
	cerrors "github.com/cockroachdb/errors"
	"github.com/gxemu/surfstore/surfutils"
)

// copyPitchedRows repacks rows bytes-per-row from a pitched source buffer
// into a tightly packed destination.
func copyPitchedRows(dst, src []byte, dstPitch, srcPitch, rowBytes, rows uint32) {
	for row := uint32(0); row < rows; row++ {
		copy(dst[row*dstPitch:row*dstPitch+rowBytes], src[row*srcPitch:])
	}
}

// ColorTargetsData downloads every bound color slot and returns its pixels
// as packed host-byte-order rows, indexed by slot. Unbound slots yield nil
// buffers. Downloads are issued for all slots before any is mapped, letting
// the backend overlap the transfers.
func (s *Store) ColorTargetsData(format ColorFormat, width, height uint32) ([4][]byte, error) {
	s.logger.Debug("Store::ColorTargetsData")

	var result [4][]byte
	var downloads [4]DownloadBuffer

	for i := range s.boundColor {
		if s.boundColor[i].surface == nil {
			continue
		}

		download, err := s.backend.DownloadColor(s.boundColor[i].surface, format, width, height)
		if err != nil {
			return result, cerrors.Wrapf(err, "downloading the color surface bound to slot %d", i)
		}
		downloads[i] = download
	}

	srcPitch := AlignedPitch(format, width)
	dstPitch := PackedPitch(format, width)

	for i := range downloads {
		if downloads[i] == nil {
			continue
		}

		raw := downloads[i].Map()
		result[i] = make([]byte, dstPitch*height)
		copyPitchedRows(result[i], raw, dstPitch, srcPitch, dstPitch, height)
		downloads[i].Unmap()
	}

	return result, nil
}

// DepthStencilData downloads the bound depth-stencil slot and returns the
// packed depth plane plus, for z24s8 surfaces, the packed stencil plane.
// Both are nil when no depth-stencil slot is bound.
func (s *Store) DepthStencilData(format DepthFormat, width, height uint32) (depth []byte, stencil []byte, err error) {
	s.logger.Debug("Store::DepthStencilData")

	if s.boundDepth.surface == nil {
		return nil, nil, nil
	}

	// The transfer engine pads depth rows out to 256-byte alignment of the
	// 4-byte-per-pixel layout regardless of format
	srcPitch := uint32(surfutils.AlignUp(int(width*4), 256))

	depthDownload, err := s.backend.DownloadDepth(s.boundDepth.surface, format, width, height)
	if err != nil {
		return nil, nil, cerrors.Wrap(err, "downloading the bound depth surface")
	}

	var stencilDownload DownloadBuffer
	if format == DepthZ24S8 {
		stencilDownload, err = s.backend.DownloadStencil(s.boundDepth.surface, width, height)
		if err != nil {
			return nil, nil, cerrors.Wrap(err, "downloading the bound stencil plane")
		}
	}

	depthRaw := depthDownload.Map()
	rowBytes := width * format.Bytes()
	depth = make([]byte, rowBytes*height)
	copyPitchedRows(depth, depthRaw, rowBytes, srcPitch, rowBytes, height)
	depthDownload.Unmap()

	if format == DepthZ16 {
		return depth, nil, nil
	}

	stencilRaw := stencilDownload.Map()
	stencilPitch := uint32(surfutils.AlignUp(int(width), 256))
	stencil = make([]byte, width*height)
	copyPitchedRows(stencil, stencilRaw, width, stencilPitch, width, height)
	stencilDownload.Unmap()

	return depth, stencil, nil
}
