// Package wstr provides the UCS2-style string model shared by both VMs.
//
// Strings are immutable sequences of 16-bit code units. Sequences whose
// units all fit in one byte are stored narrow (1 byte per unit); everything
// else is stored wide (2 bytes per unit). Unpaired surrogates and embedded
// NULs are legal. The length of any string is capped at MaxLen code units;
// operations that would exceed the cap report an error instead of growing.
package wstr

import (
	"errors"
	"unicode/utf16"
)

// MaxLen is the maximum number of code units in a string.
const MaxLen = 0x7FFFFFFF

// ErrTooLong is returned by operations that would produce a string longer
// than MaxLen code units.
var ErrTooLong = errors.New("wstr: string exceeds maximum length")

// WStr is an immutable string of 16-bit code units.
// The zero value is the empty string.
type WStr struct {
	narrow []byte   // set when every unit fits in a byte
	wide   []uint16 // set otherwise
}

// Empty is the empty string.
var Empty = WStr{}

// FromUTF8 builds a WStr from a Go string, encoding to UTF-16 code units.
func FromUTF8(s string) WStr {
	units := utf16.Encode([]rune(s))
	return FromUnits(units)
}

// FromUnits builds a WStr from raw code units, choosing narrow storage
// when possible. The slice is copied.
func FromUnits(units []uint16) WStr {
	allNarrow := true
	for _, u := range units {
		if u > 0xFF {
			allNarrow = false
			break
		}
	}
	if allNarrow {
		b := make([]byte, len(units))
		for i, u := range units {
			b[i] = byte(u)
		}
		return WStr{narrow: b}
	}
	w := make([]uint16, len(units))
	copy(w, units)
	return WStr{wide: w}
}

// FromBytes builds a narrow WStr directly from single-byte units.
// The slice is copied.
func FromBytes(b []byte) WStr {
	n := make([]byte, len(b))
	copy(n, b)
	return WStr{narrow: n}
}

// Len returns the number of code units.
func (s WStr) Len() int {
	if s.wide != nil {
		return len(s.wide)
	}
	return len(s.narrow)
}

// IsEmpty reports whether the string has no code units.
func (s WStr) IsEmpty() bool { return s.Len() == 0 }

// IsWide reports whether the string uses 2-byte unit storage.
func (s WStr) IsWide() bool { return s.wide != nil }

// At returns the code unit at index i. Panics if out of range.
func (s WStr) At(i int) uint16 {
	if s.wide != nil {
		return s.wide[i]
	}
	return uint16(s.narrow[i])
}

// Units returns the code units as a fresh slice.
func (s WStr) Units() []uint16 {
	out := make([]uint16, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}

// String decodes the code units to UTF-8. Unpaired surrogates become the
// replacement character, matching utf16.Decode.
func (s WStr) String() string {
	if s.wide == nil {
		// Narrow units are Latin-1, not UTF-8; decode unit-by-unit.
		runes := make([]rune, len(s.narrow))
		for i, b := range s.narrow {
			runes[i] = rune(b)
		}
		return string(runes)
	}
	return string(utf16.Decode(s.wide))
}

// Equal reports unit-wise equality.
func (s WStr) Equal(t WStr) bool {
	if s.Len() != t.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if s.At(i) != t.At(i) {
			return false
		}
	}
	return true
}

// EqualFold reports equality ignoring ASCII case. This matches the
// case-insensitive name matching of pre-v7 content, which only folds
// the ASCII range.
func (s WStr) EqualFold(t WStr) bool {
	if s.Len() != t.Len() {
		return false
	}
	for i := 0; i < s.Len(); i++ {
		if foldASCII(s.At(i)) != foldASCII(t.At(i)) {
			return false
		}
	}
	return true
}

func foldASCII(u uint16) uint16 {
	if u >= 'A' && u <= 'Z' {
		return u + ('a' - 'A')
	}
	return u
}

// Concat joins two strings, failing if the result would exceed MaxLen.
func Concat(a, b WStr) (WStr, error) {
	if a.Len() > MaxLen-b.Len() {
		return Empty, ErrTooLong
	}
	if !a.IsWide() && !b.IsWide() {
		out := make([]byte, 0, a.Len()+b.Len())
		out = append(out, a.narrow...)
		out = append(out, b.narrow...)
		return WStr{narrow: out}, nil
	}
	out := make([]uint16, 0, a.Len()+b.Len())
	out = append(out, a.Units()...)
	out = append(out, b.Units()...)
	return WStr{wide: out}, nil
}

// Repeat repeats s count times, failing if the result would exceed MaxLen.
func Repeat(s WStr, count int) (WStr, error) {
	if count < 0 {
		count = 0
	}
	if s.Len() != 0 && count > MaxLen/s.Len() {
		return Empty, ErrTooLong
	}
	units := make([]uint16, 0, s.Len()*count)
	for i := 0; i < count; i++ {
		units = append(units, s.Units()...)
	}
	return FromUnits(units), nil
}

// Slice returns the substring [from, to). Bounds are clamped.
func (s WStr) Slice(from, to int) WStr {
	n := s.Len()
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return Empty
	}
	if s.wide != nil {
		return FromUnits(s.wide[from:to])
	}
	return FromBytes(s.narrow[from:to])
}
