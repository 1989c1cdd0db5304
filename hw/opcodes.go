package hw

import "fmt"

// An opcode describes one entry of an instruction table.
//
// name is the disassembly template. Operand placeholders are replaced by the
// disassembler: d8/d16 immediate data, a8 high-page offset, a16 address, r8
// jump offset and e8 signed stack offset.
type opcode struct {
	name   string
	cycles int // cost, or cost when a branch is not taken
	taken  int // cost when a conditional branch is taken, 0 otherwise
	exec   func(*CPU)
}

// Primary instruction table. Entries without exec are illegal opcodes.
var ops = makeOps()

func makeOps() [256]opcode {
	ops := [256]opcode{
		0x00: {"NOP", 4, 0, func(*CPU) {}},
		0x01: {"LD BC,d16", 12, 0, ld16imm(rBC)},
		0x02: {"LD (BC),A", 8, 0, ldIndA(rBC)},
		0x03: {"INC BC", 8, 0, inc16(rBC)},
		0x07: {"RLCA", 4, 0, func(c *CPU) { c.A = c.rlc(c.A); c.F.Remove(FlagZ) }},
		0x08: {"LD (a16),SP", 20, 0, func(c *CPU) { c.write16(c.fetch16(), c.SP) }},
		0x09: {"ADD HL,BC", 8, 0, addHL(rBC)},
		0x0A: {"LD A,(BC)", 8, 0, ldAInd(rBC)},
		0x0B: {"DEC BC", 8, 0, dec16(rBC)},
		0x0F: {"RRCA", 4, 0, func(c *CPU) { c.A = c.rrc(c.A); c.F.Remove(FlagZ) }},

		0x10: {"STOP", 4, 0, func(c *CPU) { c.stopped = true; c.halt() }},
		0x11: {"LD DE,d16", 12, 0, ld16imm(rDE)},
		0x12: {"LD (DE),A", 8, 0, ldIndA(rDE)},
		0x13: {"INC DE", 8, 0, inc16(rDE)},
		0x17: {"RLA", 4, 0, func(c *CPU) { c.A = c.rl(c.A); c.F.Remove(FlagZ) }},
		0x18: {"JR r8", 12, 0, jr(always)},
		0x19: {"ADD HL,DE", 8, 0, addHL(rDE)},
		0x1A: {"LD A,(DE)", 8, 0, ldAInd(rDE)},
		0x1B: {"DEC DE", 8, 0, dec16(rDE)},
		0x1F: {"RRA", 4, 0, func(c *CPU) { c.A = c.rr(c.A); c.F.Remove(FlagZ) }},

		0x20: {"JR NZ,r8", 8, 12, jr(condNZ)},
		0x21: {"LD HL,d16", 12, 0, ld16imm(rHL)},
		0x22: {"LD (HL+),A", 8, 0, func(c *CPU) { c.write8(c.HLI(), c.A) }},
		0x23: {"INC HL", 8, 0, inc16(rHL)},
		0x27: {"DAA", 4, 0, (*CPU).daa},
		0x28: {"JR Z,r8", 8, 12, jr(condZ)},
		0x29: {"ADD HL,HL", 8, 0, addHL(rHL)},
		0x2A: {"LD A,(HL+)", 8, 0, func(c *CPU) { c.A = c.read8(c.HLI()) }},
		0x2B: {"DEC HL", 8, 0, dec16(rHL)},
		0x2F: {"CPL", 4, 0, (*CPU).cpl},

		0x30: {"JR NC,r8", 8, 12, jr(condNC)},
		0x31: {"LD SP,d16", 12, 0, ld16imm(rSP)},
		0x32: {"LD (HL-),A", 8, 0, func(c *CPU) { c.write8(c.HLD(), c.A) }},
		0x33: {"INC SP", 8, 0, inc16(rSP)},
		0x37: {"SCF", 4, 0, (*CPU).scf},
		0x38: {"JR C,r8", 8, 12, jr(condC)},
		0x39: {"ADD HL,SP", 8, 0, addHL(rSP)},
		0x3A: {"LD A,(HL-)", 8, 0, func(c *CPU) { c.A = c.read8(c.HLD()) }},
		0x3B: {"DEC SP", 8, 0, dec16(rSP)},
		0x3F: {"CCF", 4, 0, (*CPU).ccf},

		0x76: {"HALT", 4, 0, (*CPU).halt},

		0xC0: {"RET NZ", 8, 20, retcc(condNZ)},
		0xC1: {"POP BC", 12, 0, pop(rBC)},
		0xC2: {"JP NZ,a16", 12, 16, jp(condNZ)},
		0xC3: {"JP a16", 16, 0, jp(always)},
		0xC4: {"CALL NZ,a16", 12, 24, call(condNZ)},
		0xC5: {"PUSH BC", 16, 0, push(rBC)},
		0xC6: {"ADD A,d8", 8, 0, aluImm(aluADD)},
		0xC7: {"RST 00H", 16, 0, rst(0x00)},
		0xC8: {"RET Z", 8, 20, retcc(condZ)},
		0xC9: {"RET", 16, 0, ret},
		0xCA: {"JP Z,a16", 12, 16, jp(condZ)},
		0xCB: {"PREFIX CB", 4, 0, nil}, // dispatched by Step
		0xCC: {"CALL Z,a16", 12, 24, call(condZ)},
		0xCD: {"CALL a16", 24, 0, call(always)},
		0xCE: {"ADC A,d8", 8, 0, aluImm(aluADC)},
		0xCF: {"RST 08H", 16, 0, rst(0x08)},

		0xD0: {"RET NC", 8, 20, retcc(condNC)},
		0xD1: {"POP DE", 12, 0, pop(rDE)},
		0xD2: {"JP NC,a16", 12, 16, jp(condNC)},
		0xD4: {"CALL NC,a16", 12, 24, call(condNC)},
		0xD5: {"PUSH DE", 16, 0, push(rDE)},
		0xD6: {"SUB d8", 8, 0, aluImm(aluSUB)},
		0xD7: {"RST 10H", 16, 0, rst(0x10)},
		0xD8: {"RET C", 8, 20, retcc(condC)},
		0xD9: {"RETI", 16, 0, reti},
		0xDA: {"JP C,a16", 12, 16, jp(condC)},
		0xDC: {"CALL C,a16", 12, 24, call(condC)},
		0xDE: {"SBC A,d8", 8, 0, aluImm(aluSBC)},
		0xDF: {"RST 18H", 16, 0, rst(0x18)},

		0xE0: {"LDH (a8),A", 12, 0, func(c *CPU) { c.write8(0xFF00|uint16(c.fetch8()), c.A) }},
		0xE1: {"POP HL", 12, 0, pop(rHL)},
		0xE2: {"LD (C),A", 8, 0, func(c *CPU) { c.write8(0xFF00|uint16(c.C), c.A) }},
		0xE5: {"PUSH HL", 16, 0, push(rHL)},
		0xE6: {"AND d8", 8, 0, aluImm(aluAND)},
		0xE7: {"RST 20H", 16, 0, rst(0x20)},
		0xE8: {"ADD SP,e8", 16, 0, func(c *CPU) { c.SP = c.addSP(c.fetch8()); c.tick(); c.tick() }},
		0xE9: {"JP HL", 4, 0, func(c *CPU) { c.PC = c.HL() }},
		0xEA: {"LD (a16),A", 16, 0, func(c *CPU) { c.write8(c.fetch16(), c.A) }},
		0xEE: {"XOR d8", 8, 0, aluImm(aluXOR)},
		0xEF: {"RST 28H", 16, 0, rst(0x28)},

		0xF0: {"LDH A,(a8)", 12, 0, func(c *CPU) { c.A = c.read8(0xFF00 | uint16(c.fetch8())) }},
		0xF1: {"POP AF", 12, 0, pop(rAF)},
		0xF2: {"LD A,(C)", 8, 0, func(c *CPU) { c.A = c.read8(0xFF00 | uint16(c.C)) }},
		0xF3: {"DI", 4, 0, func(c *CPU) { c.IME = false; c.eiDelay = 0 }},
		0xF5: {"PUSH AF", 16, 0, push(rAF)},
		0xF6: {"OR d8", 8, 0, aluImm(aluOR)},
		0xF7: {"RST 30H", 16, 0, rst(0x30)},
		0xF8: {"LD HL,SP+e8", 12, 0, func(c *CPU) { c.SetHL(c.addSP(c.fetch8())); c.tick() }},
		0xF9: {"LD SP,HL", 8, 0, func(c *CPU) { c.SP = c.HL(); c.tick() }},
		0xFA: {"LD A,(a16)", 16, 0, func(c *CPU) { c.A = c.read8(c.fetch16()) }},
		0xFB: {"EI", 4, 0, ei},
		0xFE: {"CP d8", 8, 0, aluImm(aluCP)},
		0xFF: {"RST 38H", 16, 0, rst(0x38)},
	}

	// INC r, DEC r and LD r,d8 in columns 4, 5 and 6 of rows 0-3.
	for r := rB; r <= rA; r++ {
		base := uint8(r) << 3
		incCost, ldCost := 4, 8
		if r == rHLind {
			incCost, ldCost = 12, 12
		}
		ops[base|0x04] = opcode{"INC " + r.String(), incCost, 0, incR(r)}
		ops[base|0x05] = opcode{"DEC " + r.String(), incCost, 0, decR(r)}
		ops[base|0x06] = opcode{"LD " + r.String() + ",d8", ldCost, 0, ldImm(r)}
	}

	// LD r,r' (0x40-0x7F, 0x76 is HALT).
	for dst := rB; dst <= rA; dst++ {
		for src := rB; src <= rA; src++ {
			opc := 0x40 | uint8(dst)<<3 | uint8(src)
			if opc == 0x76 {
				continue
			}
			cost := 4
			if dst == rHLind || src == rHLind {
				cost = 8
			}
			ops[opc] = opcode{fmt.Sprintf("LD %s,%s", dst, src), cost, 0, ld(dst, src)}
		}
	}

	// 8-bit ALU with register operand (0x80-0xBF).
	for op := aluADD; op <= aluCP; op++ {
		for src := rB; src <= rA; src++ {
			cost := 4
			if src == rHLind {
				cost = 8
			}
			ops[0x80|uint8(op)<<3|uint8(src)] = opcode{aluNames[op] + src.String(), cost, 0, aluReg(op, src)}
		}
	}
	return ops
}

/* loads */

func ld(dst, src reg8) func(*CPU) {
	return func(c *CPU) { c.set8(dst, c.get8(src)) }
}

func ldImm(dst reg8) func(*CPU) {
	return func(c *CPU) { c.set8(dst, c.fetch8()) }
}

func ld16imm(r reg16) func(*CPU) {
	return func(c *CPU) { c.set16(r, c.fetch16()) }
}

func ldIndA(r reg16) func(*CPU) {
	return func(c *CPU) { c.write8(c.get16(r), c.A) }
}

func ldAInd(r reg16) func(*CPU) {
	return func(c *CPU) { c.A = c.read8(c.get16(r)) }
}

/* arithmetic */

func aluReg(op aluOp, src reg8) func(*CPU) {
	return func(c *CPU) { c.alu(op, c.get8(src)) }
}

func aluImm(op aluOp) func(*CPU) {
	return func(c *CPU) { c.alu(op, c.fetch8()) }
}

func incR(r reg8) func(*CPU) {
	return func(c *CPU) { c.set8(r, c.inc8(c.get8(r))) }
}

func decR(r reg8) func(*CPU) {
	return func(c *CPU) { c.set8(r, c.dec8(c.get8(r))) }
}

func inc16(r reg16) func(*CPU) {
	return func(c *CPU) {
		c.set16(r, c.get16(r)+1)
		c.tick()
	}
}

func dec16(r reg16) func(*CPU) {
	return func(c *CPU) {
		c.set16(r, c.get16(r)-1)
		c.tick()
	}
}

func addHL(r reg16) func(*CPU) {
	return func(c *CPU) {
		c.addHL(c.get16(r))
		c.tick()
	}
}

/* control flow */

func jr(cc cond) func(*CPU) {
	return func(c *CPU) {
		off := int8(c.fetch8())
		if c.check(cc) {
			c.PC += uint16(int16(off))
			c.tick()
		}
	}
}

func jp(cc cond) func(*CPU) {
	return func(c *CPU) {
		addr := c.fetch16()
		if c.check(cc) {
			c.PC = addr
			c.tick()
		}
	}
}

func call(cc cond) func(*CPU) {
	return func(c *CPU) {
		addr := c.fetch16()
		if c.check(cc) {
			c.push16(c.PC)
			c.PC = addr
		}
	}
}

func ret(c *CPU) {
	c.PC = c.pop16()
	c.tick()
}

func retcc(cc cond) func(*CPU) {
	return func(c *CPU) {
		c.tick()
		if c.check(cc) {
			ret(c)
		}
	}
}

func reti(c *CPU) {
	ret(c)
	c.IME = true
	c.eiDelay = 0
}

func rst(vec uint16) func(*CPU) {
	return func(c *CPU) {
		c.push16(c.PC)
		c.PC = vec
	}
}

/* stack */

func push(r reg16) func(*CPU) {
	return func(c *CPU) { c.push16(c.get16(r)) }
}

func pop(r reg16) func(*CPU) {
	return func(c *CPU) { c.set16(r, c.pop16()) }
}

// ei enables interrupts after the instruction following EI.
func ei(c *CPU) {
	if !c.IME && c.eiDelay == 0 {
		c.eiDelay = 2
	}
}
