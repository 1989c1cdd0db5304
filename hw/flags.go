package hw

import "fmt"

// Flags is the condition-code half of the AF register. Only the top nibble
// is used: the low nibble always reads as zero.
type Flags uint8

const (
	FlagC Flags = 1 << (iota + 4) // carry
	FlagH                         // half-carry
	FlagN                         // subtract
	FlagZ                         // zero

	flagsMask Flags = 0xF0
)

// InvalidFlagBitsError is returned when building Flags from a byte with
// non-zero low nibble.
type InvalidFlagBitsError struct {
	Bits uint8
}

func (e *InvalidFlagBitsError) Error() string {
	return fmt.Sprintf("invalid flag bits %02X: low nibble must be zero", e.Bits)
}

// FlagsFromBits converts b into Flags, rejecting any value with bits set in
// the low nibble.
func FlagsFromBits(b uint8) (Flags, error) {
	if b&0x0F != 0 {
		return 0, &InvalidFlagBitsError{Bits: b}
	}
	return Flags(b), nil
}

// MustFlags is like FlagsFromBits but panics on invalid bits.
func MustFlags(b uint8) Flags {
	f, err := FlagsFromBits(b)
	if err != nil {
		panic(err)
	}
	return f
}

func (f Flags) Has(flag Flags) bool { return f&flag == flag }

func (f *Flags) Insert(flag Flags) { *f = (*f | flag) & flagsMask }
func (f *Flags) Remove(flag Flags) { *f &^= flag }

func (f *Flags) Set(flag Flags, v bool) {
	if v {
		f.Insert(flag)
	} else {
		f.Remove(flag)
	}
}

// Bits returns the byte representation of f.
func (f Flags) Bits() uint8 { return uint8(f & flagsMask) }

func (f Flags) String() string {
	const bits = "-Z-N-H-C"

	s := make([]byte, 4)
	for i := 0; i < 4; i++ {
		ibit := (uint8(f) >> (7 - i)) & 1
		s[i] = bits[2*i+int(ibit)]
	}
	return string(s)
}
