package emu

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"gbcore/emu/log"
	"gbcore/hw"
	"gbcore/hw/hwio"
)

// StopReason tells why Run returned.
type StopReason int

//go:generate go tool stringer -type=StopReason -linecomment

const (
	StopNone        StopReason = iota // none
	StopRequested                     // stop requested
	StopHalted                        // cpu halted
	StopBreakpoint                    // breakpoint
	StopMaxSteps                      // max steps reached
	StopDecodeError                   // decode error
)

// A Frame is a call stack entry: the entry point of the function and the
// address execution is at, in it.
type Frame struct {
	Entry string
	PC    string
}

type breakpoints map[uint16]struct{}

type Emulator struct {
	CPU *hw.CPU
	cfg EmulationConfig

	// These are accessed concurrently by the emulator loop and the UI.
	quit   atomic.Bool
	paused atomic.Bool
	bps    atomic.Pointer[breakpoints]

	steps   int64
	skipBP  bool // resume past the breakpoint we stopped at
	cstack  callStack
	started time.Time // start of the current Run
}

// New returns an emulator driving cpu. cfg is expected to have been checked.
func New(cpu *hw.CPU, cfg Config) *Emulator {
	e := &Emulator{
		CPU: cpu,
		cfg: cfg.Emulation,
	}
	e.bps.Store(&breakpoints{})
	for _, addr := range cfg.Debug.Breakpoints {
		e.AddBreakpoint(uint16(addr))
	}
	return e
}

// Launch powers up the CPU and its memory with the given boot and cartridge
// images, and setups the execution trace. It doesn't start the emulation
// loop, call Run() for that.
func Launch(boot, cart []byte, cfg Config) (*Emulator, error) {
	if err := cfg.Check(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cpu := hw.NewCPU(hw.NewMemory(boot, cart))

	// CPU execution trace setup.
	if cfg.TraceOut != nil {
		format, _ := cfg.traceFormat()
		cpu.SetTraceOutput(cfg.TraceOut, format)
	}

	log.AddContext(cpu)
	log.ModEmu.InfoZ("Power up").
		Int("boot", len(boot)).
		Int("cart", len(cart)).
		End()

	return New(cpu, cfg), nil
}

// Close detaches the emulator from the logger.
func (e *Emulator) Close() {
	log.RemoveContext(e.CPU)
}

// Step executes one instruction.
func (e *Emulator) Step() (int, error) {
	pc, sp := e.CPU.PC, e.CPU.SP
	opcode := hwio.Peek8(e.CPU.Bus, pc)

	cycles, err := e.CPU.Step()
	e.steps++
	if err == nil {
		e.cstack.track(opcode, pc, e.CPU.PC, sp, e.CPU.SP)
	}
	return cycles, err
}

// Run runs the emulation loop until it has a reason to stop.
func (e *Emulator) Run() (StopReason, error) {
	e.started = time.Now()
	for {
		if e.quit.CompareAndSwap(true, false) {
			return e.stop(StopRequested, nil)
		}
		if e.paused.Load() {
			// Don't burn cpu while paused.
			time.Sleep(10 * time.Millisecond)
			continue
		}
		if e.CPU.Halted() {
			return e.stop(StopHalted, nil)
		}
		if e.cfg.MaxSteps > 0 && e.steps >= e.cfg.MaxSteps {
			return e.stop(StopMaxSteps, nil)
		}
		if e.isBreakpoint(e.CPU.PC) {
			if !e.skipBP {
				e.skipBP = true
				return e.stop(StopBreakpoint, nil)
			}
		}
		e.skipBP = false

		if _, err := e.Step(); err != nil {
			var derr *hw.DecodeError
			if !errors.As(err, &derr) {
				return e.stop(StopDecodeError, err)
			}
			if e.cfg.OnDecodeError == DecodeSkip {
				log.ModEmu.WarnZ("Skipping unknown opcode").
					Hex8("opcode", derr.Opcode).
					Hex16("addr", derr.Addr).
					Bool("cb", derr.Prefixed).
					End()
				continue
			}
			return e.stop(StopDecodeError, err)
		}
	}
}

func (e *Emulator) stop(reason StopReason, err error) (StopReason, error) {
	var entry *log.EntryZ
	if err != nil {
		entry = log.ModEmu.ErrorZ("Emulation loop exited").Error("err", err)
	} else {
		entry = log.ModEmu.InfoZ("Emulation loop exited")
	}
	entry.Stringer("reason", reason).
		Int64("steps", e.steps).
		Int64("cycles", e.CPU.Cycles).
		Duration("elapsed", time.Since(e.started)).
		End()

	if err != nil {
		for i, f := range e.Backtrace() {
			log.ModDbg.ErrorZ("backtrace").
				Int("frame", i).
				String("entry", f.Entry).
				String("pc", f.PC).
				End()
		}
	}
	return reason, err
}

// SetPause and Stop allows to control the emulator loop in a
// concurrent-safe way.

func (e *Emulator) SetPause(pause bool) { e.paused.CompareAndSwap(!pause, pause) }
func (e *Emulator) Stop()               { e.quit.Store(true) }

func (e *Emulator) Steps() int64  { return e.steps }
func (e *Emulator) Cycles() int64 { return e.CPU.Cycles }

// AddBreakpoint and RemoveBreakpoint can be called while Run is executing.
func (e *Emulator) AddBreakpoint(addr uint16) {
	e.updateBreakpoints(func(bps breakpoints) { bps[addr] = struct{}{} })
	log.ModDbg.InfoZ("Breakpoint added").Hex16("addr", addr).End()
}

func (e *Emulator) RemoveBreakpoint(addr uint16) {
	e.updateBreakpoints(func(bps breakpoints) { delete(bps, addr) })
}

func (e *Emulator) updateBreakpoints(update func(breakpoints)) {
	for {
		old := e.bps.Load()
		bps := make(breakpoints, len(*old)+1)
		for addr := range *old {
			bps[addr] = struct{}{}
		}
		update(bps)
		if e.bps.CompareAndSwap(old, &bps) {
			return
		}
	}
}

func (e *Emulator) isBreakpoint(addr uint16) bool {
	_, ok := (*e.bps.Load())[addr]
	return ok
}

// Backtrace returns the call stack, innermost frame first.
func (e *Emulator) Backtrace() []Frame {
	nfos := e.cstack.build(e.CPU.PC)
	frames := make([]Frame, len(nfos))
	for i, nfo := range nfos {
		frames[i] = Frame{Entry: nfo[0], PC: nfo[1]}
	}
	return frames
}
