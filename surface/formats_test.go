package surface_test

import (
	"testing"

	"github.com/gxemu/surfstore/surface"
	"github.com/stretchr/testify/require"
)

func TestTargetIndexes(t *testing.T) {
	require.Nil(t, surface.TargetNone.Indexes())
	require.Equal(t, []int{0}, surface.TargetA.Indexes())
	require.Equal(t, []int{1}, surface.TargetB.Indexes())
	require.Equal(t, []int{0, 1}, surface.TargetAB.Indexes())
	require.Equal(t, []int{0, 1, 2}, surface.TargetABC.Indexes())
	require.Equal(t, []int{0, 1, 2, 3}, surface.TargetABCD.Indexes())
}

func TestAntialiasingStorageAndScales(t *testing.T) {
	require.Equal(t, uint32(1), surface.AntialiasCenter1Sample.StorageFactor())
	require.Equal(t, uint32(1), surface.AntialiasDiagonal2Samples.StorageFactor())
	require.Equal(t, uint32(2), surface.AntialiasSquareCentered4Samples.StorageFactor())
	require.Equal(t, uint32(2), surface.AntialiasSquareRotated4Samples.StorageFactor())

	require.Equal(t, uint32(1), surface.AntialiasCenter1Sample.SampleScaleX())
	require.Equal(t, uint32(2), surface.AntialiasDiagonal2Samples.SampleScaleX())
	require.Equal(t, uint32(1), surface.AntialiasDiagonal2Samples.SampleScaleY())
	require.Equal(t, uint32(2), surface.AntialiasSquareCentered4Samples.SampleScaleY())
}

func TestPitchHelpers(t *testing.T) {
	require.Equal(t, uint32(256), surface.AlignedPitch(surface.ColorA8R8G8B8, 33))
	require.Equal(t, uint32(512), surface.AlignedPitch(surface.ColorA8R8G8B8, 65))
	require.Equal(t, uint32(132), surface.PackedPitch(surface.ColorA8R8G8B8, 33))
	require.Equal(t, uint32(66), surface.PackedPitch(surface.ColorG8B8, 33))
}

func TestFormatBytes(t *testing.T) {
	require.Equal(t, uint32(1), surface.ColorB8.Bytes())
	require.Equal(t, uint32(2), surface.ColorR5G6B5.Bytes())
	require.Equal(t, uint32(4), surface.ColorA8B8G8R8.Bytes())
	require.Equal(t, uint32(8), surface.ColorW16Z16Y16X16.Bytes())
	require.Equal(t, uint32(16), surface.ColorW32Z32Y32X32.Bytes())

	require.Equal(t, uint32(2), surface.DepthZ16.Bytes())
	require.Equal(t, uint32(4), surface.DepthZ24S8.Bytes())
}
