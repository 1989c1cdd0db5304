package hwio

import (
	"gbcore/emu/log"
)

type MemFlags int

const (
	MemFlagReadWrite MemFlags = 0
	MemFlag8ReadOnly MemFlags = (1 << iota) // read-only accesses
)

// Linear memory area that can be mapped into a Table. The byte at the start
// address of the mapping is Data[0].
type Mem struct {
	Name  string   // name of the memory area (for debugging)
	Data  []byte   // actual memory buffer
	Flags MemFlags // flags determining how the memory can be accessed

	base uint16
}

func (m *Mem) Size() int { return len(m.Data) }

func (m *Mem) Read8(addr uint16, _ bool) uint8 {
	return m.Data[addr-m.base]
}

func (m *Mem) Write8(addr uint16, val uint8) {
	if m.Flags&MemFlag8ReadOnly != 0 {
		log.ModHwIo.ErrorZ("Write8 to read-only memory").
			String("name", m.Name).
			Hex16("addr", addr).
			Hex8("val", val).
			End()
		return
	}
	m.Data[addr-m.base] = val
}
