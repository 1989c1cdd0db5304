package hw

import "gbcore/hw/hwio"

// Registers holds the 8-bit registers. 16-bit pairs are views composed on
// demand: the first register of a pair is the high byte.
type Registers struct {
	A    uint8
	F    Flags
	B, C uint8
	D, E uint8
	H, L uint8
}

func join(hi, lo uint8) uint16 { return hwio.Join16(hi, lo) }

func split(v uint16) (hi, lo uint8) { return hwio.Hi8(v), hwio.Lo8(v) }

func (r *Registers) AF() uint16 { return join(r.A, r.F.Bits()) }
func (r *Registers) BC() uint16 { return join(r.B, r.C) }
func (r *Registers) DE() uint16 { return join(r.D, r.E) }
func (r *Registers) HL() uint16 { return join(r.H, r.L) }

// SetAF sets A and F; the low nibble of F is dropped.
func (r *Registers) SetAF(v uint16) {
	var f uint8
	r.A, f = split(v)
	r.F = Flags(f) & flagsMask
}

func (r *Registers) SetBC(v uint16) { r.B, r.C = split(v) }
func (r *Registers) SetDE(v uint16) { r.D, r.E = split(v) }
func (r *Registers) SetHL(v uint16) { r.H, r.L = split(v) }

// HLI returns HL then increments it.
func (r *Registers) HLI() uint16 {
	hl := r.HL()
	r.SetHL(hl + 1)
	return hl
}

// HLD returns HL then decrements it.
func (r *Registers) HLD() uint16 {
	hl := r.HL()
	r.SetHL(hl - 1)
	return hl
}
