package surface

import (
	"github.com/gxemu/surfstore/surfutils"
)

// ColorFormat identifies the pixel layout of a color render target as
// declared by the command stream.
type ColorFormat uint32

const (
	ColorX1R5G5B5Z1R5G5B5 ColorFormat = iota + 1
	ColorX1R5G5B5O1R5G5B5
	ColorR5G6B5
	ColorX8R8G8B8Z8R8G8B8
	ColorX8R8G8B8O8R8G8B8
	ColorA8R8G8B8
	ColorB8
	ColorG8B8
	ColorW16Z16Y16X16
	ColorW32Z32Y32X32
	ColorX32
	ColorX8B8G8R8Z8B8G8R8
	ColorX8B8G8R8O8B8G8R8
	ColorA8B8G8R8
)

var colorFormatMapping = map[ColorFormat]string{
	ColorX1R5G5B5Z1R5G5B5: "ColorX1R5G5B5Z1R5G5B5",
	ColorX1R5G5B5O1R5G5B5: "ColorX1R5G5B5O1R5G5B5",
	ColorR5G6B5:           "ColorR5G6B5",
	ColorX8R8G8B8Z8R8G8B8: "ColorX8R8G8B8Z8R8G8B8",
	ColorX8R8G8B8O8R8G8B8: "ColorX8R8G8B8O8R8G8B8",
	ColorA8R8G8B8:         "ColorA8R8G8B8",
	ColorB8:               "ColorB8",
	ColorG8B8:             "ColorG8B8",
	ColorW16Z16Y16X16:     "ColorW16Z16Y16X16",
	ColorW32Z32Y32X32:     "ColorW32Z32Y32X32",
	ColorX32:              "ColorX32",
	ColorX8B8G8R8Z8B8G8R8: "ColorX8B8G8R8Z8B8G8R8",
	ColorX8B8G8R8O8B8G8R8: "ColorX8B8G8R8O8B8G8R8",
	ColorA8B8G8R8:         "ColorA8B8G8R8",
}

func (f ColorFormat) String() string {
	return colorFormatMapping[f]
}

// Bytes returns the per-pixel storage size of the format.
func (f ColorFormat) Bytes() uint32 {
	switch f {
	case ColorB8:
		return 1
	case ColorG8B8, ColorR5G6B5, ColorX1R5G5B5Z1R5G5B5, ColorX1R5G5B5O1R5G5B5:
		return 2
	case ColorW16Z16Y16X16:
		return 8
	case ColorW32Z32Y32X32:
		return 16
	default:
		return 4
	}
}

// DepthFormat identifies the layout of a depth-stencil render target.
type DepthFormat uint32

const (
	DepthZ16 DepthFormat = iota + 1
	DepthZ24S8
)

var depthFormatMapping = map[DepthFormat]string{
	DepthZ16:   "DepthZ16",
	DepthZ24S8: "DepthZ24S8",
}

func (f DepthFormat) String() string {
	return depthFormatMapping[f]
}

// Bytes returns the per-pixel storage size of the depth plane.
func (f DepthFormat) Bytes() uint32 {
	if f == DepthZ16 {
		return 2
	}
	return 4
}

// AlignedPitch returns the row size of a downloaded surface, padded to the
// 256-byte row alignment the transfer engine produces.
func AlignedPitch(format ColorFormat, width uint32) uint32 {
	return uint32(surfutils.AlignUp(int(width*format.Bytes()), 256))
}

// PackedPitch returns the tightly packed row size for the format.
func PackedPitch(format ColorFormat, width uint32) uint32 {
	return width * format.Bytes()
}

// Antialiasing is the sample pattern a surface was configured with. Higher
// modes consume extra backing storage in device memory.
type Antialiasing uint32

const (
	AntialiasCenter1Sample Antialiasing = iota
	AntialiasDiagonal2Samples
	AntialiasSquareCentered4Samples
	AntialiasSquareRotated4Samples
)

var antialiasingMapping = map[Antialiasing]string{
	AntialiasCenter1Sample:          "AntialiasCenter1Sample",
	AntialiasDiagonal2Samples:       "AntialiasDiagonal2Samples",
	AntialiasSquareCentered4Samples: "AntialiasSquareCentered4Samples",
	AntialiasSquareRotated4Samples:  "AntialiasSquareRotated4Samples",
}

func (a Antialiasing) String() string {
	return antialiasingMapping[a]
}

// StorageFactor approximates the extra rows of backing storage the sample
// mode consumes. Single-sample and the 2-sample diagonal pattern fit in the
// declared footprint; every higher mode doubles it.
func (a Antialiasing) StorageFactor() uint32 {
	switch a {
	case AntialiasCenter1Sample, AntialiasDiagonal2Samples:
		return 1
	default:
		return 2
	}
}

// SampleScaleX returns the horizontal resolve scale of the sample mode.
func (a Antialiasing) SampleScaleX() uint32 {
	if a > AntialiasCenter1Sample {
		return 2
	}
	return 1
}

// SampleScaleY returns the vertical resolve scale of the sample mode.
func (a Antialiasing) SampleScaleY() uint32 {
	if a > AntialiasDiagonal2Samples {
		return 2
	}
	return 1
}

// Target selects which of the four color slots a frame renders to.
type Target uint32

const (
	TargetNone Target = iota
	TargetA
	TargetB
	TargetAB
	TargetABC
	TargetABCD
)

var targetMapping = map[Target]string{
	TargetNone: "TargetNone",
	TargetA:    "TargetA",
	TargetB:    "TargetB",
	TargetAB:   "TargetAB",
	TargetABC:  "TargetABC",
	TargetABCD: "TargetABCD",
}

func (t Target) String() string {
	return targetMapping[t]
}

// Indexes returns the color slot indexes the target selects, in slot order.
func (t Target) Indexes() []int {
	switch t {
	case TargetNone:
		return nil
	case TargetA:
		return []int{0}
	case TargetB:
		return []int{1}
	case TargetAB:
		return []int{0, 1}
	case TargetABC:
		return []int{0, 1, 2}
	case TargetABCD:
		return []int{0, 1, 2, 3}
	default:
		return nil
	}
}
