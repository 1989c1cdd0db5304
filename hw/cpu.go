package hw

import (
	"fmt"
	"io"

	"gbcore/emu/log"
	"gbcore/hw/hwio"
)

// CPU is the SM83 execution engine.
type CPU struct {
	Registers

	PC, SP uint16

	// Bus is owned by the CPU for its entire lifetime.
	Bus hwio.BankIO8

	Cycles int64 // total cycles since creation
	cycles int   // cycles of the current step

	// IME is the interrupt master enable latch. No interrupt controller is
	// modeled, so it only reflects DI/EI/RETI.
	IME     bool
	eiDelay int

	halted  bool
	stopped bool

	// Non-nil when execution tracing is enabled.
	tracer *tracer
}

// owned is implemented by buses supporting exclusive ownership.
type owned interface {
	Claim(owner string)
}

// NewCPU creates a CPU at power-up state, attached to bus. If the bus
// supports ownership it is claimed, and a bus can only be claimed once.
func NewCPU(bus hwio.BankIO8) *CPU {
	if o, ok := bus.(owned); ok {
		o.Claim("cpu")
	}
	return &CPU{Bus: bus}
}

// DecodeError is returned by Step when the fetched opcode has no entry in the
// instruction tables.
type DecodeError struct {
	Opcode   uint8
	Addr     uint16 // address the opcode was fetched from
	Prefixed bool   // opcode belongs to the CB table
}

func (e *DecodeError) Error() string {
	if e.Prefixed {
		return fmt.Sprintf("unknown opcode CB %02X at $%04X", e.Opcode, e.Addr)
	}
	return fmt.Sprintf("unknown opcode %02X at $%04X", e.Opcode, e.Addr)
}

// Step executes a single instruction and returns the number of cycles it
// took. A halted CPU idles for 4 cycles.
func (c *CPU) Step() (int, error) {
	c.cycles = 0
	if c.halted {
		c.tick()
		c.Cycles += int64(c.cycles)
		return c.cycles, nil
	}

	c.traceOp()

	addr := c.PC
	opcode := c.fetch8()
	op := &ops[opcode]
	prefixed := opcode == 0xCB
	if prefixed {
		addr = c.PC
		opcode = c.fetch8()
		op = &cbOps[opcode]
	}

	if op.exec == nil {
		c.Cycles += int64(c.cycles)
		return c.cycles, &DecodeError{Opcode: opcode, Addr: addr, Prefixed: prefixed}
	}

	op.exec(c)

	if c.eiDelay > 0 {
		c.eiDelay--
		if c.eiDelay == 0 {
			c.IME = true
		}
	}

	c.Cycles += int64(c.cycles)
	return c.cycles, nil
}

func (c *CPU) Halted() bool  { return c.halted }
func (c *CPU) Stopped() bool { return c.stopped }

func (c *CPU) halt() {
	c.halted = true
	log.ModCPU.InfoZ("CPU halted").Hex16("PC", c.PC).End()
}

// AddLogContext implements log.Context.
func (c *CPU) AddLogContext(e *log.EntryZ) {
	e.Hex16("pc", c.PC)
}

/* bus access, every access takes one machine cycle */

func (c *CPU) tick() {
	c.cycles += 4
}

func (c *CPU) read8(addr uint16) uint8 {
	c.tick()
	return c.Bus.Read8(addr, false)
}

func (c *CPU) write8(addr uint16, val uint8) {
	c.tick()
	c.Bus.Write8(addr, val)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := c.read8(addr)
	hi := c.read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) write16(addr uint16, val uint16) {
	c.write8(addr, uint8(val))
	c.write8(addr+1, uint8(val>>8))
}

func (c *CPU) fetch8() uint8 {
	val := c.read8(c.PC)
	c.PC++
	return val
}

func (c *CPU) fetch16() uint16 {
	lo := c.fetch8()
	hi := c.fetch8()
	return uint16(hi)<<8 | uint16(lo)
}

/* stack operations */

// push16 stores val below SP, the low byte ending at the lowest address.
func (c *CPU) push16(val uint16) {
	c.tick()
	c.SP--
	c.write8(c.SP, uint8(val>>8))
	c.SP--
	c.write8(c.SP, uint8(val))
}

func (c *CPU) pop16() uint16 {
	lo := c.read8(c.SP)
	c.SP++
	hi := c.read8(c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

/* tracing / debugging */

type TraceFormat int

const (
	TraceText TraceFormat = iota
	TraceJSON
)

func (c *CPU) SetTraceOutput(w io.Writer, format TraceFormat) {
	c.tracer = &tracer{w: w, d: c, json: format == TraceJSON}
}

func (c *CPU) traceOp() {
	if c.tracer != nil {
		c.tracer.write(cpuState{
			Registers: c.Registers,
			SP:        c.SP,
			PC:        c.PC,
			Clock:     c.Cycles,
		})
	}
}

// Disasm disassembles the instruction at pc without side effects.
func (c *CPU) Disasm(pc uint16) DisasmOp {
	return disasm(c.Bus, pc)
}
