package surfutils

import "fmt"

// AddressRange is a half-open [Start, End) interval over the emulated device
// address space. The zero value is the empty range, which overlaps nothing
// and is absorbed by Extend.
type AddressRange struct {
	Start uint32
	End   uint32
}

// RangeStartLength builds an AddressRange covering length bytes beginning at start.
func RangeStartLength(start uint32, length uint32) AddressRange {
	return AddressRange{Start: start, End: start + length}
}

// RangeStartEnd builds an AddressRange from explicit half-open bounds.
func RangeStartEnd(start uint32, end uint32) AddressRange {
	return AddressRange{Start: start, End: end}
}

// Valid returns true if the range covers at least one byte.
func (r AddressRange) Valid() bool {
	return r.End > r.Start
}

// Length returns the number of bytes covered by the range.
func (r AddressRange) Length() uint32 {
	if !r.Valid() {
		return 0
	}
	return r.End - r.Start
}

// Contains returns true if addr falls inside the range.
func (r AddressRange) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.End
}

// Overlaps returns true if the two ranges share at least one byte. Empty
// ranges overlap nothing.
func (r AddressRange) Overlaps(other AddressRange) bool {
	if !r.Valid() || !other.Valid() {
		return false
	}
	return r.Start < other.End && other.Start < r.End
}

// Extend widens the range to cover other as well. The result only ever
// grows; it is the min/max summary used by the surface tables to reject
// lookups cheaply before any per-surface test runs.
func (r AddressRange) Extend(other AddressRange) AddressRange {
	if !r.Valid() {
		return other
	}
	if !other.Valid() {
		return r
	}

	merged := r
	if other.Start < merged.Start {
		merged.Start = other.Start
	}
	if other.End > merged.End {
		merged.End = other.End
	}
	return merged
}

func (r AddressRange) String() string {
	return fmt.Sprintf("[0x%08x, 0x%08x)", r.Start, r.End)
}
