package hwio_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"gbcore/hw/hwio"
)

type testTable struct {
	t testing.TB
	*hwio.Table

	RAM []byte
	ROM []byte
	IO  hwio.Device

	ioWrites int
}

func newTestTable(tb testing.TB) *testTable {
	tbl := &testTable{
		t:     tb,
		Table: hwio.NewTable("bus"),
		RAM:   make([]byte, 0x2000),
		ROM:   make([]byte, 0x100),
	}
	for i := range tbl.ROM {
		tbl.ROM[i] = uint8(i)
	}
	tbl.IO = hwio.Device{
		Name:    "io",
		ReadCb:  func(uint16) uint8 { return 0x5A },
		WriteCb: func(uint16, uint8) { tbl.ioWrites++ },
	}
	tbl.MapMemorySlice("rom", 0x0000, 0x00FF, tbl.ROM, true)
	tbl.MapMemorySlice("ram", 0x8000, 0x9FFF, tbl.RAM, false)
	tbl.MapDevice(0xFF00, 0xFF7F, &tbl.IO)
	tbl.MapMemorySlice("hram", 0xFF80, 0xFFFE, make([]byte, 0x7F), false)
	return tbl
}

func (tbl *testTable) wantRead8(addr uint16, want uint8) {
	tbl.t.Helper()
	if got := tbl.Read8(addr, false); got != want {
		tbl.t.Errorf("Read8(%04X) = %02X, want %02X", addr, got, want)
	}
}

func TestTableMapMem(t *testing.T) {
	tbl := newTestTable(t)

	// Read-only memory.
	tbl.wantRead8(0x0000, 0x00)
	tbl.wantRead8(0x00FF, 0xFF)
	tbl.Write8(0x0010, 0x99)
	tbl.wantRead8(0x0010, 0x10)
	if tbl.ROM[0x10] != 0x10 {
		t.Errorf("read-only backing store modified: %02X", tbl.ROM[0x10])
	}

	// Read-write memory, offset from region start.
	tbl.Write8(0x8000, 0x12)
	tbl.Write8(0x9FFF, 0x34)
	tbl.wantRead8(0x8000, 0x12)
	tbl.wantRead8(0x9FFF, 0x34)
	if tbl.RAM[0] != 0x12 || tbl.RAM[0x1FFF] != 0x34 {
		t.Errorf("RAM not indexed from region start")
	}

	// Page 0xFF is shared by io and hram.
	tbl.wantRead8(0xFF00, 0x5A)
	tbl.wantRead8(0xFF7F, 0x5A)
	tbl.Write8(0xFF7F, 0x01)
	if tbl.ioWrites != 1 {
		t.Errorf("io writes = %d, want 1", tbl.ioWrites)
	}
	tbl.Write8(0xFF80, 0xAB)
	tbl.wantRead8(0xFF80, 0xAB)
	tbl.Write8(0xFFFE, 0xCD)
	tbl.wantRead8(0xFFFE, 0xCD)

	// Unmapped.
	tbl.wantRead8(0xA000, 0)
	tbl.wantRead8(0xFFFF, 0)
	tbl.Write8(0xC000, 0x77)
	tbl.wantRead8(0xC000, 0)
}

func TestTableLookup(t *testing.T) {
	tbl := newTestTable(t)

	tests := []struct {
		addr uint16
		want string
		ok   bool
	}{
		{0x0000, "rom", true},
		{0x00FF, "rom", true},
		{0x0100, "", false},
		{0x8123, "ram", true},
		{0xFF00, "io", true},
		{0xFF80, "hram", true},
		{0xFFFF, "", false},
	}
	for _, tt := range tests {
		got, ok := tbl.Lookup(tt.addr)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Lookup(%04X) = %q,%v want %q,%v", tt.addr, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTableRegions(t *testing.T) {
	tbl := newTestTable(t)

	type region struct {
		Name       string
		Start, End uint16
		Size       int
	}
	var got []region
	for _, r := range tbl.Regions() {
		got = append(got, region{r.Name, r.Start, r.End, r.Size()})
	}
	want := []region{
		{"rom", 0x0000, 0x00FF, 0x100},
		{"ram", 0x8000, 0x9FFF, 0x2000},
		{"io", 0xFF00, 0xFF7F, 0x80},
		{"hram", 0xFF80, 0xFFFE, 0x7F},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("regions differ (-want +got):\n%s", diff)
	}
}

func mustPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected a panic", name)
		}
	}()
	f()
}

func TestTableMisuse(t *testing.T) {
	tbl := newTestTable(t)

	mustPanic(t, "overlap", func() {
		tbl.MapMemorySlice("dup", 0x9000, 0xA0FF, make([]byte, 0x1100), false)
	})
	mustPanic(t, "too small", func() {
		tbl.MapMemorySlice("small", 0xC000, 0xC0FF, make([]byte, 0x10), false)
	})
	mustPanic(t, "reversed", func() {
		tbl.MapDevice(0xD000, 0xC000, &hwio.Device{Name: "rev"})
	})

	tbl.Claim("cpu")
	if tbl.Owner() != "cpu" {
		t.Errorf("Owner() = %q, want cpu", tbl.Owner())
	}
	mustPanic(t, "double claim", func() { tbl.Claim("cpu2") })
}

func TestPeek8(t *testing.T) {
	tbl := newTestTable(t)

	var reads int
	dev := &hwio.Device{
		Name:   "timer",
		ReadCb: func(uint16) uint8 { reads++; return 0x11 },
		PeekCb: func(uint16) uint8 { return 0x22 },
	}
	tbl.MapDevice(0xA000, 0xA0FF, dev)

	if got := hwio.Peek8(tbl, 0xA000); got != 0x22 {
		t.Errorf("Peek8(A000) = %02X, want 22", got)
	}
	if reads != 0 {
		t.Errorf("Peek8 triggered %d reads", reads)
	}
	tbl.wantRead8(0xA000, 0x11)
	if reads != 1 {
		t.Errorf("reads = %d, want 1", reads)
	}

	// Without PeekCb the device falls back to ReadCb.
	if got := hwio.Peek8(tbl, 0xFF00); got != 0x5A {
		t.Errorf("Peek8(FF00) = %02X, want 5A", got)
	}
	if got := hwio.Peek8(tbl, 0xFFFF); got != 0 {
		t.Errorf("Peek8(unmapped) = %02X, want 00", got)
	}
}
