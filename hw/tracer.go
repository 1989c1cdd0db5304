package hw

import (
	"fmt"
	"io"

	"github.com/go-faster/jx"
)

// cpuState stores the CPU state for the execution trace.
type cpuState struct {
	Registers
	SP uint16
	PC uint16

	Clock int64
}

type disasmer interface {
	Disasm(pc uint16) DisasmOp
}

type tracer struct {
	d    disasmer
	w    io.Writer
	json bool
	enc  jx.Encoder
}

func (t *tracer) write(state cpuState) {
	dis := t.d.Disasm(state.PC)
	if t.json {
		t.writeJSON(dis, state)
		return
	}

	buf := dis.Bytes()
	buf = fmt.Appendf(buf, "A:%02X F:%s BC:%04X DE:%04X HL:%04X SP:%04X CYC:%d\n",
		state.A, state.F, state.BC(), state.DE(), state.HL(), state.SP, state.Clock)
	t.w.Write(buf)
}

// writeJSON writes the state as a single JSON object per line.
func (t *tracer) writeJSON(dis DisasmOp, state cpuState) {
	e := &t.enc
	e.Reset()
	e.ObjStart()
	e.FieldStart("pc")
	e.UInt16(state.PC)
	e.FieldStart("op")
	e.Str(dis.String())
	e.FieldStart("a")
	e.UInt8(state.A)
	e.FieldStart("f")
	e.UInt8(state.F.Bits())
	e.FieldStart("bc")
	e.UInt16(state.BC())
	e.FieldStart("de")
	e.UInt16(state.DE())
	e.FieldStart("hl")
	e.UInt16(state.HL())
	e.FieldStart("sp")
	e.UInt16(state.SP)
	e.FieldStart("cyc")
	e.Int64(state.Clock)
	e.ObjEnd()

	t.w.Write(append(e.Bytes(), '\n'))
}
