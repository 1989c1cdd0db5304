package hw

import "gbcore/hw/hwio"

// 8-bit register operand, in opcode encoding order.
type reg8 uint8

const (
	rB reg8 = iota
	rC
	rD
	rE
	rH
	rL
	rHLind // (HL)
	rA
)

var reg8Names = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

func (r reg8) String() string { return reg8Names[r] }

func (c *CPU) get8(r reg8) uint8 {
	switch r {
	case rB:
		return c.B
	case rC:
		return c.C
	case rD:
		return c.D
	case rE:
		return c.E
	case rH:
		return c.H
	case rL:
		return c.L
	case rHLind:
		return c.read8(c.HL())
	}
	return c.A
}

func (c *CPU) set8(r reg8, v uint8) {
	switch r {
	case rB:
		c.B = v
	case rC:
		c.C = v
	case rD:
		c.D = v
	case rE:
		c.E = v
	case rH:
		c.H = v
	case rL:
		c.L = v
	case rHLind:
		c.write8(c.HL(), v)
	case rA:
		c.A = v
	}
}

// 16-bit register operand. rAF replaces rSP for PUSH/POP.
type reg16 uint8

const (
	rBC reg16 = iota
	rDE
	rHL
	rSP
	rAF
)

var reg16Names = [5]string{"BC", "DE", "HL", "SP", "AF"}

func (r reg16) String() string { return reg16Names[r] }

func (c *CPU) get16(r reg16) uint16 {
	switch r {
	case rBC:
		return c.BC()
	case rDE:
		return c.DE()
	case rHL:
		return c.HL()
	case rSP:
		return c.SP
	}
	return c.AF()
}

func (c *CPU) set16(r reg16, v uint16) {
	switch r {
	case rBC:
		c.SetBC(v)
	case rDE:
		c.SetDE(v)
	case rHL:
		c.SetHL(v)
	case rSP:
		c.SP = v
	case rAF:
		c.SetAF(v)
	}
}

// Branch conditions.
type cond uint8

const (
	always cond = iota
	condNZ
	condZ
	condNC
	condC
)

func (c *CPU) check(cc cond) bool {
	switch cc {
	case condNZ:
		return !c.F.Has(FlagZ)
	case condZ:
		return c.F.Has(FlagZ)
	case condNC:
		return !c.F.Has(FlagC)
	case condC:
		return c.F.Has(FlagC)
	}
	return true
}

func (c *CPU) setFlags(z, n, h, carry bool) {
	var f Flags
	f.Set(FlagZ, z)
	f.Set(FlagN, n)
	f.Set(FlagH, h)
	f.Set(FlagC, carry)
	c.F = f
}

/* 8-bit arithmetic and logic, operating on A */

func (c *CPU) add(v uint8, carry bool) {
	var ci uint8
	if carry && c.F.Has(FlagC) {
		ci = 1
	}
	sum := uint16(c.A) + uint16(v) + uint16(ci)
	h := (c.A&0x0F)+(v&0x0F)+ci > 0x0F
	c.A = uint8(sum)
	c.setFlags(c.A == 0, false, h, sum > 0xFF)
}

// sub computes A-v (minus carry for SBC), sets flags and returns the result
// without storing it.
func (c *CPU) sub(v uint8, carry bool) uint8 {
	var ci uint8
	if carry && c.F.Has(FlagC) {
		ci = 1
	}
	diff := int(c.A) - int(v) - int(ci)
	h := int(c.A&0x0F)-int(v&0x0F)-int(ci) < 0
	res := uint8(diff)
	c.setFlags(res == 0, true, h, diff < 0)
	return res
}

func (c *CPU) and(v uint8) {
	c.A &= v
	c.setFlags(c.A == 0, false, true, false)
}

func (c *CPU) xor(v uint8) {
	c.A ^= v
	c.setFlags(c.A == 0, false, false, false)
}

func (c *CPU) or(v uint8) {
	c.A |= v
	c.setFlags(c.A == 0, false, false, false)
}

func (c *CPU) cp(v uint8) {
	c.sub(v, false)
}

type aluOp uint8

const (
	aluADD aluOp = iota
	aluADC
	aluSUB
	aluSBC
	aluAND
	aluXOR
	aluOR
	aluCP
)

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB ", "SBC A,", "AND ", "XOR ", "OR ", "CP "}

func (c *CPU) alu(op aluOp, v uint8) {
	switch op {
	case aluADD:
		c.add(v, false)
	case aluADC:
		c.add(v, true)
	case aluSUB:
		c.A = c.sub(v, false)
	case aluSBC:
		c.A = c.sub(v, true)
	case aluAND:
		c.and(v)
	case aluXOR:
		c.xor(v)
	case aluOR:
		c.or(v)
	case aluCP:
		c.cp(v)
	}
}

// inc8 and dec8 leave the carry flag untouched.
func (c *CPU) inc8(v uint8) uint8 {
	res := v + 1
	c.F.Set(FlagZ, res == 0)
	c.F.Remove(FlagN)
	c.F.Set(FlagH, v&0x0F == 0x0F)
	return res
}

func (c *CPU) dec8(v uint8) uint8 {
	res := v - 1
	c.F.Set(FlagZ, res == 0)
	c.F.Insert(FlagN)
	c.F.Set(FlagH, v&0x0F == 0)
	return res
}

/* 16-bit arithmetic */

// addHL leaves Z untouched, H is the carry out of bit 11.
func (c *CPU) addHL(v uint16) {
	hl := c.HL()
	sum := uint32(hl) + uint32(v)
	c.F.Remove(FlagN)
	c.F.Set(FlagH, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF)
	c.F.Set(FlagC, sum > 0xFFFF)
	c.SetHL(uint16(sum))
}

// addSP returns SP plus a signed offset. Flags are computed on the low byte,
// as an unsigned 8-bit addition.
func (c *CPU) addSP(e uint8) uint16 {
	sp := c.SP
	res := sp + uint16(int16(int8(e)))
	h := (sp&0x0F)+uint16(e&0x0F) > 0x0F
	carry := (sp&0xFF)+uint16(e) > 0xFF
	c.setFlags(false, false, h, carry)
	return res
}

/* misc accumulator operations */

func (c *CPU) daa() {
	a := c.A
	carry := c.F.Has(FlagC)
	if !c.F.Has(FlagN) {
		if carry || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.F.Has(FlagH) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if carry {
			a -= 0x60
		}
		if c.F.Has(FlagH) {
			a -= 0x06
		}
	}
	c.A = a
	c.F.Set(FlagZ, a == 0)
	c.F.Remove(FlagH)
	c.F.Set(FlagC, carry)
}

func (c *CPU) cpl() {
	c.A = ^c.A
	c.F.Insert(FlagN | FlagH)
}

func (c *CPU) scf() {
	c.F.Remove(FlagN | FlagH)
	c.F.Insert(FlagC)
}

func (c *CPU) ccf() {
	c.F.Remove(FlagN | FlagH)
	c.F.Set(FlagC, !c.F.Has(FlagC))
}

/* shifts and rotates */

func (c *CPU) shiftFlags(res uint8, carry bool) {
	c.setFlags(res == 0, false, false, carry)
}

func (c *CPU) rlc(v uint8) uint8 {
	res := v<<1 | v>>7
	c.shiftFlags(res, v&0x80 != 0)
	return res
}

func (c *CPU) rrc(v uint8) uint8 {
	res := v>>1 | v<<7
	c.shiftFlags(res, v&0x01 != 0)
	return res
}

// rl rotates left through carry.
func (c *CPU) rl(v uint8) uint8 {
	res := v << 1
	if c.F.Has(FlagC) {
		res |= 0x01
	}
	c.shiftFlags(res, v&0x80 != 0)
	return res
}

// rr rotates right through carry.
func (c *CPU) rr(v uint8) uint8 {
	res := v >> 1
	if c.F.Has(FlagC) {
		res |= 0x80
	}
	c.shiftFlags(res, v&0x01 != 0)
	return res
}

func (c *CPU) sla(v uint8) uint8 {
	res := v << 1
	c.shiftFlags(res, v&0x80 != 0)
	return res
}

// sra keeps bit 7.
func (c *CPU) sra(v uint8) uint8 {
	res := v>>1 | v&0x80
	c.shiftFlags(res, v&0x01 != 0)
	return res
}

func (c *CPU) swap(v uint8) uint8 {
	res := v<<4 | v>>4
	c.shiftFlags(res, false)
	return res
}

func (c *CPU) srl(v uint8) uint8 {
	res := v >> 1
	c.shiftFlags(res, v&0x01 != 0)
	return res
}

// bit tests bit n of v, leaving carry untouched.
func (c *CPU) bit(n uint, v uint8) {
	c.F.Set(FlagZ, !hwio.GetBit8(v, n))
	c.F.Remove(FlagN)
	c.F.Insert(FlagH)
}
