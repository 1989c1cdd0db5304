package hw

import (
	"fmt"
	"strings"

	"gbcore/hw/hwio"
)

type DisasmOp struct {
	Opcode string
	Oper   string
	Buf    []byte
	PC     uint16
}

func (d DisasmOp) String() string {
	if d.Oper == "" {
		return d.Opcode
	}
	return d.Opcode + " " + d.Oper
}

// Next returns the address of the following instruction.
func (d DisasmOp) Next() uint16 { return d.PC + uint16(len(d.Buf)) }

// Bytes returns the string representation of a DisasmOp, this is optimized
// version, suitable for the execution tracer.
func (d DisasmOp) Bytes() []byte {
	const totalLen = 32
	buf := make([]byte, totalLen)

	hexEncode(buf[0:], byte(d.PC>>8))
	hexEncode(buf[2:], byte(d.PC))
	buf[4] = ' '
	buf[5] = ' '

	off := 6
	for i := range d.Buf {
		hexEncode(buf[off:], d.Buf[i])
		buf[off+2] = ' '
		off += 3
	}

	for ; off < 16; off++ {
		buf[off] = ' '
	}

	buf = append(buf[:off], d.String()...)
	if len(buf) >= totalLen {
		return append(buf, ' ')
	}
	for len(buf) < totalLen {
		buf = append(buf, ' ')
	}
	return buf
}

func hexEncode(dst []byte, v byte) {
	const hextable = "0123456789ABCDEF"
	dst[0] = hextable[v>>4]
	dst[1] = hextable[v&0x0f]
}

// disasm decodes the instruction at pc using peek reads only.
func disasm(bus hwio.BankIO8, pc uint16) DisasmOp {
	peek := func(off uint16) uint8 { return hwio.Peek8(bus, pc+off) }

	opc := peek(0)
	dop := DisasmOp{PC: pc, Buf: []byte{opc}}
	op := ops[opc]
	if opc == 0xCB {
		cb := peek(1)
		dop.Buf = append(dop.Buf, cb)
		op = cbOps[cb]
	}
	if op.exec == nil {
		dop.Opcode = "DB"
		dop.Oper = fmt.Sprintf("$%02X", opc)
		return dop
	}

	mnemonic, oper, _ := strings.Cut(op.name, " ")
	dop.Opcode = mnemonic

	next := uint16(len(dop.Buf))
	switch {
	case strings.Contains(oper, "d16"), strings.Contains(oper, "a16"):
		lo, hi := peek(next), peek(next+1)
		dop.Buf = append(dop.Buf, lo, hi)
		v := fmt.Sprintf("$%04X", hwio.Join16(hi, lo))
		oper = strings.NewReplacer("d16", v, "a16", v).Replace(oper)
	case strings.Contains(oper, "d8"):
		v := peek(next)
		dop.Buf = append(dop.Buf, v)
		oper = strings.Replace(oper, "d8", fmt.Sprintf("$%02X", v), 1)
	case strings.Contains(oper, "a8"):
		v := peek(next)
		dop.Buf = append(dop.Buf, v)
		oper = strings.Replace(oper, "a8", fmt.Sprintf("$FF%02X", v), 1)
	case strings.Contains(oper, "r8"):
		v := peek(next)
		dop.Buf = append(dop.Buf, v)
		target := pc + next + 1 + uint16(int16(int8(v)))
		oper = strings.Replace(oper, "r8", fmt.Sprintf("$%04X", target), 1)
	case strings.Contains(oper, "e8"):
		v := int8(peek(next))
		dop.Buf = append(dop.Buf, uint8(v))
		s := fmt.Sprintf("+$%02X", v)
		if v < 0 {
			s = fmt.Sprintf("-$%02X", -int(v))
		}
		oper = strings.Replace(strings.Replace(oper, "+e8", "e8", 1), "e8", s, 1)
	}

	dop.Oper = oper
	return dop
}

// Disassemble decodes count instructions starting at pc.
func Disassemble(bus hwio.BankIO8, pc uint16, count int) []DisasmOp {
	dops := make([]DisasmOp, 0, count)
	for range count {
		dop := disasm(bus, pc)
		dops = append(dops, dop)
		pc = dop.Next()
	}
	return dops
}
