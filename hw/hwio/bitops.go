package hwio

// 8-bit operations
func GetBit8(v uint8, n uint) bool {
	return GetBiti8(v, n) != 0
}

func GetBiti8(v uint8, n uint) uint8 {
	return v >> (n) & 0x01
}

func SetBit8(v *uint8, n uint) {
	*v |= (1 << n)
}

func ClearBit8(v *uint8, n uint) {
	*v &= ^(1 << n)
}

// Lo8 and Hi8 split a 16-bit value.
func Lo8(v uint16) uint8 { return uint8(v) }
func Hi8(v uint16) uint8 { return uint8(v >> 8) }

// Join16 builds a 16-bit value from its halves.
func Join16(hi, lo uint8) uint16 { return uint16(hi)<<8 | uint16(lo) }
