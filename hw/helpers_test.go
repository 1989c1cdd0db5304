package hw

import (
	"testing"

	"gbcore/hw/hwio"
)

// newFlatBus returns a bus with 64KB of RAM mapped over the whole address
// space.
func newFlatBus() *hwio.Table {
	bus := hwio.NewTable("flat")
	bus.MapMemorySlice("ram", 0x0000, 0xFFFF, make([]byte, 0x10000), false)
	return bus
}

// newTestCPU returns a CPU on a flat bus, with code loaded at 0x0000.
func newTestCPU(code ...byte) *CPU {
	bus := newFlatBus()
	for i, b := range code {
		bus.Write8(uint16(i), b)
	}
	return NewCPU(bus)
}

func mustStep(t testing.TB, cpu *CPU) int {
	t.Helper()
	cycles, err := cpu.Step()
	if err != nil {
		t.Fatalf("step at %04X: %v", cpu.PC, err)
	}
	return cycles
}

func wantFlags(t testing.TB, got, want Flags) {
	t.Helper()
	if got != want {
		t.Errorf("flags = %s, want %s", got, want)
	}
}
