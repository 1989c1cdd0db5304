package hwio

import (
	"fmt"

	"gbcore/emu/log"
)

type BankIO8 interface {
	// Read8 reads a byte from the given address. If peek is true, the read
	// shouldn't have any side effects (debugging/tracing).
	Read8(addr uint16, peek bool) uint8
	Write8(addr uint16, val uint8)
}

// Peek8 reads a byte from b without side effects.
func Peek8(b BankIO8, addr uint16) uint8 {
	return b.Read8(addr, true)
}

// A Region is a range of addresses [Start, End] served by a single device.
type Region struct {
	Name       string
	Start, End uint16
	io         BankIO8
}

func (r *Region) Size() int { return int(r.End) - int(r.Start) + 1 }

func (r *Region) contains(addr uint16) bool {
	return addr >= r.Start && addr <= r.End
}

func (r *Region) String() string {
	return fmt.Sprintf("%s[%04X-%04X]", r.Name, r.Start, r.End)
}

// Table routes 8-bit bus accesses to the regions mapped onto it.
//
// Lookup goes through a page table indexed by the high byte of the address:
// a page entirely covered by one region resolves directly, a page shared by
// several regions (or partially mapped) is flagged and resolved by scanning
// the regions overlapping that page.
type Table struct {
	Name string

	// LogUnmapped reports accesses to addresses not covered by any region.
	LogUnmapped bool

	regions []*Region
	pages   [256]*Region
	mixed   [256][]*Region

	owner string
}

func NewTable(name string) *Table {
	t := new(Table)
	t.Name = name
	t.Reset()
	return t
}

// Reset removes all mappings. Ownership is preserved.
func (t *Table) Reset() {
	t.regions = nil
	t.pages = [256]*Region{}
	t.mixed = [256][]*Region{}
}

// Claim marks the table as exclusively owned by owner. A bus can only have a
// single mutator: claiming an already claimed table panics.
func (t *Table) Claim(owner string) {
	if t.owner != "" {
		panic(fmt.Sprintf("hwio: bus %q already owned by %q, cannot be claimed by %q", t.Name, t.owner, owner))
	}
	t.owner = owner
}

// Owner returns the name of the table owner, or "" if unclaimed.
func (t *Table) Owner() string { return t.owner }

// Regions returns the mapped regions, in mapping order.
func (t *Table) Regions() []Region {
	regs := make([]Region, len(t.regions))
	for i, r := range t.regions {
		regs[i] = *r
	}
	return regs
}

// Map maps io onto [addr, end]. Mapping a range that overlaps an already
// mapped region panics.
func (t *Table) Map(name string, addr, end uint16, io BankIO8) {
	if end < addr {
		panic(fmt.Errorf("hwio: invalid range for %s: %04X-%04X", name, addr, end))
	}
	reg := &Region{Name: name, Start: addr, End: end, io: io}
	for _, r := range t.regions {
		if reg.Start <= r.End && r.Start <= reg.End {
			panic(fmt.Errorf("hwio: %s overlaps %s on bus %s", reg, r, t.Name))
		}
	}

	log.ModHwIo.DebugZ("mapping region").
		String("bus", t.Name).
		String("area", name).
		Hex16("addr", addr).
		Hex16("end", end).
		End()

	t.regions = append(t.regions, reg)
	for page := int(addr >> 8); page <= int(end>>8); page++ {
		pstart, pend := uint16(page<<8), uint16(page<<8|0xFF)
		full := addr <= pstart && end >= pend
		if full && t.pages[page] == nil && t.mixed[page] == nil {
			t.pages[page] = reg
			continue
		}
		if t.pages[page] != nil {
			t.mixed[page] = append(t.mixed[page], t.pages[page])
			t.pages[page] = nil
		}
		t.mixed[page] = append(t.mixed[page], reg)
	}
}

// MapMem maps a linear memory area onto [addr, end].
func (t *Table) MapMem(addr, end uint16, mem *Mem) {
	if mem.Size() < int(end)-int(addr)+1 {
		panic(fmt.Errorf("hwio: memory %s too small for %04X-%04X (%d bytes)", mem.Name, addr, end, mem.Size()))
	}
	mem.base = addr
	t.Map(mem.Name, addr, end, mem)
}

// MapDevice maps a manually managed device onto [addr, end].
func (t *Table) MapDevice(addr, end uint16, dev *Device) {
	t.Map(dev.Name, addr, end, dev)
}

// MapMemorySlice is a convenience function to map a byte slice.
func (t *Table) MapMemorySlice(name string, addr, end uint16, buf []uint8, readonly bool) *Mem {
	var flags MemFlags
	if readonly {
		flags |= MemFlag8ReadOnly
	}
	mem := &Mem{
		Name:  name,
		Data:  buf,
		Flags: flags,
	}
	t.MapMem(addr, end, mem)
	return mem
}

func (t *Table) search(addr uint16) *Region {
	page := addr >> 8
	if r := t.pages[page]; r != nil {
		return r
	}
	for _, r := range t.mixed[page] {
		if r.contains(addr) {
			return r
		}
	}
	return nil
}

// Lookup returns the name of the region mapped at addr.
func (t *Table) Lookup(addr uint16) (string, bool) {
	if r := t.search(addr); r != nil {
		return r.Name, true
	}
	return "", false
}

// Read8 searches in the table for the device mapped at the given address and
// forward the read to it. Accesses to unmapped addresses return 0, and are
// logged as errors if peek is false.
func (t *Table) Read8(addr uint16, peek bool) uint8 {
	r := t.search(addr)
	if r == nil {
		if t.LogUnmapped && !peek {
			log.ModHwIo.ErrorZ("unmapped Read8").
				String("name", t.Name).
				Hex16("addr", addr).
				End()
		}
		return 0
	}
	return r.io.Read8(addr, peek)
}

func (t *Table) Write8(addr uint16, val uint8) {
	r := t.search(addr)
	if r == nil {
		if t.LogUnmapped {
			log.ModHwIo.ErrorZ("unmapped Write8").
				String("name", t.Name).
				Hex16("addr", addr).
				Hex8("val", val).
				End()
		}
		return
	}
	r.io.Write8(addr, val)
}
