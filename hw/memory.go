package hw

import (
	"gbcore/emu/log"
	"gbcore/hw/hwio"
)

// Address map.
const (
	BootStart = 0x0000
	BootEnd   = 0x00FF
	CartStart = 0x0100
	CartEnd   = 0x7FFF
	VRAMStart = 0x8000
	VRAMEnd   = 0x9FFF
	IOStart   = 0xFF00
	IOEnd     = 0xFF7F
	HRAMStart = 0xFF80
	HRAMEnd   = 0xFFFE
)

const (
	BootSize = BootEnd - BootStart + 1
	CartSize = CartEnd + 1 // cartridge image starts at 0x0000, the overlay hides its first page
	VRAMSize = VRAMEnd - VRAMStart + 1
	HRAMSize = HRAMEnd - HRAMStart + 1
)

// Memory is the address space seen by the CPU.
type Memory struct {
	*hwio.Table

	Boot [BootSize]uint8
	Cart [CartSize]uint8
	VRAM [VRAMSize]uint8
	HRAM [HRAMSize]uint8

	// I/O registers are not modeled: reads return 0, writes are dropped.
	IO hwio.Device
}

// NewMemory creates the address space, loading the boot and cartridge
// images. Images are copied; oversized ones are truncated.
func NewMemory(boot, cart []byte) *Memory {
	m := &Memory{Table: hwio.NewTable("cpu")}
	m.LogUnmapped = true

	if n := copy(m.Boot[:], boot); n < len(boot) {
		log.ModHwIo.WarnZ("boot image truncated").
			Int("size", len(boot)).
			Int("kept", n).
			End()
	}
	if n := copy(m.Cart[:], cart); n < len(cart) {
		log.ModHwIo.WarnZ("cartridge image truncated, banking is not supported").
			Int("size", len(cart)).
			Int("kept", n).
			End()
	}

	m.IO = hwio.Device{
		Name: "io",
		ReadCb: func(addr uint16) uint8 {
			log.ModHwIo.DebugZ("read from unmodeled I/O register").Hex16("addr", addr).End()
			return 0
		},
		PeekCb: func(uint16) uint8 { return 0 },
		WriteCb: func(addr uint16, val uint8) {
			log.ModHwIo.DebugZ("write to unmodeled I/O register").
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		},
	}

	m.MapMemorySlice("boot", BootStart, BootEnd, m.Boot[:], true)
	m.MapMemorySlice("cart", CartStart, CartEnd, m.Cart[CartStart:], true)
	m.MapMemorySlice("vram", VRAMStart, VRAMEnd, m.VRAM[:], false)
	m.MapDevice(IOStart, IOEnd, &m.IO)
	m.MapMemorySlice("hram", HRAMStart, HRAMEnd, m.HRAM[:], false)
	return m
}
