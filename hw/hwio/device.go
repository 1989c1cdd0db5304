package hwio

// Device is a BankIO8 implementation that allows manual management of an entire
// range of memory. Missing callbacks read as 0 and drop writes.
type Device struct {
	Name string // name of the memory area (for debugging)

	ReadCb  func(addr uint16) uint8
	PeekCb  func(addr uint16) uint8
	WriteCb func(addr uint16, val uint8)
}

func (d *Device) Read8(addr uint16, peek bool) uint8 {
	if peek && d.PeekCb != nil {
		return d.PeekCb(addr)
	}
	if d.ReadCb == nil {
		return 0
	}
	return d.ReadCb(addr)
}

func (d *Device) Write8(addr uint16, val uint8) {
	if d.WriteCb != nil {
		d.WriteCb(addr, val)
	}
}
