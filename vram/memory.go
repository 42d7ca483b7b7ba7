package vram

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Memory is the view of emulated device memory the surface cache depends on.
// The cache never owns this memory and never writes through it; it only
// samples 8-byte values at addresses inside surface footprints to detect
// external writes. Reads outside the mapped region are fallible, never a
// panic.
type Memory interface {
	ReadU64(addr uint32) (uint64, error)
}

// Buffer is a slice-backed Memory mapped at a base device address. It is the
// implementation used by the emulator's local memory window and by tests.
type Buffer struct {
	base uint32
	data []byte
}

var _ Memory = &Buffer{}

// NewBuffer maps size bytes of zeroed memory at the device address base.
func NewBuffer(base uint32, size int) *Buffer {
	return &Buffer{
		base: base,
		data: make([]byte, size),
	}
}

// Base returns the device address the buffer is mapped at.
func (b *Buffer) Base() uint32 {
	return b.base
}

// Size returns the mapped length in bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

func (b *Buffer) offset(addr uint32, width int) (int, error) {
	if addr < b.base {
		return 0, errors.Newf("address 0x%08x is below the mapped region starting at 0x%08x", addr, b.base)
	}

	offset := int(addr - b.base)
	if offset+width > len(b.data) {
		return 0, errors.Newf("address 0x%08x overruns the %d-byte mapped region starting at 0x%08x", addr, len(b.data), b.base)
	}

	return offset, nil
}

// ReadU64 reads the little-endian 8-byte value at addr.
func (b *Buffer) ReadU64(addr uint32) (uint64, error) {
	offset, err := b.offset(addr, 8)
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b.data[offset:]), nil
}

// WriteU64 stores a little-endian 8-byte value at addr. The cache itself
// never calls this; it exists for the emulator's command-stream side and for
// tests that simulate external writes.
func (b *Buffer) WriteU64(addr uint32, value uint64) error {
	offset, err := b.offset(addr, 8)
	if err != nil {
		return err
	}

	binary.LittleEndian.PutUint64(b.data[offset:], value)
	return nil
}

// Bytes exposes the backing storage for bulk initialization.
func (b *Buffer) Bytes() []byte {
	return b.data
}
