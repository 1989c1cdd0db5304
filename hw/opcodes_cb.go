package hw

import (
	"fmt"

	"gbcore/hw/hwio"
)

// CB-prefixed instruction table. Costs include the prefix fetch.
var cbOps = makeCBOps()

var cbShifts = [8]struct {
	name string
	fn   func(*CPU, uint8) uint8
}{
	{"RLC", (*CPU).rlc},
	{"RRC", (*CPU).rrc},
	{"RL", (*CPU).rl},
	{"RR", (*CPU).rr},
	{"SLA", (*CPU).sla},
	{"SRA", (*CPU).sra},
	{"SWAP", (*CPU).swap},
	{"SRL", (*CPU).srl},
}

func makeCBOps() [256]opcode {
	var ops [256]opcode
	for i := range 256 {
		r := reg8(i & 7)
		n := uint(i>>3) & 7

		cost, bitCost := 8, 8
		if r == rHLind {
			cost, bitCost = 16, 12
		}

		switch i >> 6 {
		case 0:
			shift := cbShifts[n]
			ops[i] = opcode{
				name:   fmt.Sprintf("%s %s", shift.name, r),
				cycles: cost,
				exec:   func(c *CPU) { c.set8(r, shift.fn(c, c.get8(r))) },
			}
		case 1:
			ops[i] = opcode{
				name:   fmt.Sprintf("BIT %d,%s", n, r),
				cycles: bitCost,
				exec:   func(c *CPU) { c.bit(n, c.get8(r)) },
			}
		case 2:
			ops[i] = opcode{
				name:   fmt.Sprintf("RES %d,%s", n, r),
				cycles: cost,
				exec: func(c *CPU) {
					v := c.get8(r)
					hwio.ClearBit8(&v, n)
					c.set8(r, v)
				},
			}
		case 3:
			ops[i] = opcode{
				name:   fmt.Sprintf("SET %d,%s", n, r),
				cycles: cost,
				exec: func(c *CPU) {
					v := c.get8(r)
					hwio.SetBit8(&v, n)
					c.set8(r, v)
				},
			}
		}
	}
	return ops
}
