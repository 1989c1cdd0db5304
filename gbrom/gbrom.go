// Package gbrom loads boot and cartridge images, and decodes the cartridge
// header found at 0x0100-0x014F.
package gbrom

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gbcore/emu/log"
)

// Header offsets.
const (
	logoStart     = 0x0104
	logoEnd       = 0x0133
	titleStart    = 0x0134
	titleEnd      = 0x0143
	cartTypeOff   = 0x0147
	romSizeOff    = 0x0148
	ramSizeOff    = 0x0149
	versionOff    = 0x014C
	checksumOff   = 0x014D
	globalSumOff  = 0x014E
	HeaderEnd     = 0x014F
	MinCartSize   = HeaderEnd + 1
	bootImageSize = 0x100
)

// Rom is a cartridge image.
type Rom struct {
	header
	Data []byte // full image, as read
}

// ReadFile reads a raw image, such as the boot ROM.
func ReadFile(path string) ([]byte, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(buf) != bootImageSize {
		log.ModRom.InfoZ("unusual boot image size").
			String("path", path).
			Int("size", len(buf)).
			End()
	}
	return buf, nil
}

// Open loads a cartridge from file.
func Open(path string) (*Rom, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cartridge: %w", err)
	}
	defer f.Close()

	rom := new(Rom)
	if _, err := rom.ReadFrom(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rom, nil
}

// ReadFrom implements io.ReaderFrom interface
func (rom *Rom) ReadFrom(r io.Reader) (int64, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := rom.decode(buf); err != nil {
		return 0, fmt.Errorf("failed to decode header: %w", err)
	}
	rom.Data = buf

	if !rom.HeaderChecksumOK() {
		log.ModRom.WarnZ("bad header checksum").
			Hex8("stored", rom.HeaderChecksum()).
			Hex8("computed", rom.computed).
			End()
	}
	if size := rom.ROMSize(); size != len(buf) {
		log.ModRom.InfoZ("image size differs from header").
			Uint("declared", uint64(size)).
			Uint("actual", uint64(len(buf))).
			End()
	}
	return int64(len(buf)), nil
}

type header struct {
	raw      [MinCartSize - 0x100]byte // 0x0100-0x014F
	computed uint8
}

func (hdr *header) decode(p []byte) error {
	if len(p) < MinCartSize {
		return fmt.Errorf("too small, needs %d bytes", MinCartSize)
	}
	copy(hdr.raw[:], p[0x100:MinCartSize])

	var x uint8
	for _, b := range p[titleStart:checksumOff] {
		x = x - b - 1
	}
	hdr.computed = x
	return nil
}

func (hdr *header) at(addr int) uint8 { return hdr.raw[addr-0x100] }

// Title returns the game title, without trailing padding.
func (hdr *header) Title() string {
	title := hdr.raw[titleStart-0x100 : titleEnd-0x100+1]
	if i := bytes.IndexByte(title, 0); i >= 0 {
		title = title[:i]
	}
	// The last title byte is the CGB flag on later cartridges.
	if n := len(title); n == 16 && title[n-1]&0x80 != 0 {
		title = title[:n-1]
	}
	return string(bytes.TrimRight(title, " "))
}

// CartType returns the cartridge type code.
func (hdr *header) CartType() uint8 { return hdr.at(cartTypeOff) }

// CartTypeName returns a description of the cartridge type.
func (hdr *header) CartTypeName() string {
	if s, ok := cartTypes[hdr.CartType()]; ok {
		return s
	}
	return fmt.Sprintf("unknown ($%02X)", hdr.CartType())
}

// ROMSize returns the ROM size in bytes, as declared by the header.
func (hdr *header) ROMSize() int {
	code := hdr.at(romSizeOff)
	if code > 8 {
		return 0
	}
	return 32 * 1024 << code
}

// RAMSize returns the external RAM size in bytes, as declared by the header.
func (hdr *header) RAMSize() int {
	switch hdr.at(ramSizeOff) {
	case 2:
		return 8 * 1024
	case 3:
		return 32 * 1024
	case 4:
		return 128 * 1024
	case 5:
		return 64 * 1024
	}
	return 0
}

func (hdr *header) Version() uint8 { return hdr.at(versionOff) }

func (hdr *header) HeaderChecksum() uint8 { return hdr.at(checksumOff) }

// HeaderChecksumOK reports whether the stored header checksum matches the
// one computed over 0x0134-0x014C.
func (hdr *header) HeaderChecksumOK() bool {
	return hdr.computed == hdr.HeaderChecksum()
}

func (hdr *header) GlobalChecksum() uint16 {
	return uint16(hdr.at(globalSumOff))<<8 | uint16(hdr.at(globalSumOff+1))
}

// LogoOK reports whether the header holds the boot logo.
func (hdr *header) LogoOK() bool {
	return bytes.Equal(hdr.raw[logoStart-0x100:logoEnd-0x100+1], Logo[:])
}

// Logo is the bitmap the boot ROM compares against the cartridge header.
var Logo = [48]byte{
	0xCE, 0xED, 0x66, 0x66, 0xCC, 0x0D, 0x00, 0x0B, 0x03, 0x73, 0x00, 0x83, 0x00, 0x0C, 0x00, 0x0D,
	0x00, 0x08, 0x11, 0x1F, 0x88, 0x89, 0x00, 0x0E, 0xDC, 0xCC, 0x6E, 0xE6, 0xDD, 0xDD, 0xD9, 0x99,
	0xBB, 0xBB, 0x67, 0x63, 0x6E, 0x0E, 0xEC, 0xCC, 0xDD, 0xDC, 0x99, 0x9F, 0xBB, 0xB9, 0x33, 0x3E,
}

var cartTypes = map[uint8]string{
	0x00: "ROM ONLY",
	0x01: "MBC1",
	0x02: "MBC1+RAM",
	0x03: "MBC1+RAM+BATTERY",
	0x05: "MBC2",
	0x06: "MBC2+BATTERY",
	0x08: "ROM+RAM",
	0x09: "ROM+RAM+BATTERY",
	0x0B: "MMM01",
	0x0C: "MMM01+RAM",
	0x0D: "MMM01+RAM+BATTERY",
	0x0F: "MBC3+TIMER+BATTERY",
	0x10: "MBC3+TIMER+RAM+BATTERY",
	0x11: "MBC3",
	0x12: "MBC3+RAM",
	0x13: "MBC3+RAM+BATTERY",
	0x19: "MBC5",
	0x1A: "MBC5+RAM",
	0x1B: "MBC5+RAM+BATTERY",
	0x1C: "MBC5+RUMBLE",
	0x1D: "MBC5+RUMBLE+RAM",
	0x1E: "MBC5+RUMBLE+RAM+BATTERY",
	0x20: "MBC6",
	0x22: "MBC7+SENSOR+RUMBLE+RAM+BATTERY",
	0xFC: "POCKET CAMERA",
	0xFD: "BANDAI TAMA5",
	0xFE: "HuC3",
	0xFF: "HuC1+RAM+BATTERY",
}
