package rdt

// Generator polynomial x^8 + x^3 + x^2 + x + 1 (bit pattern 100000111).
// The x^8 term is implicit in the shift out of the register.
const (
	Polynomial   = 0x107
	feedbackMask = byte(Polynomial & 0xff)
)

// crcRegister is the 8-bit linear feedback shift register dividing the
// incoming bit stream by Polynomial.
type crcRegister struct {
	value byte
}

func (reg *crcRegister) reset() {
	reg.value = 0
}

// shift clocks one bit into the register. When the bit leaving the top of
// the register is set, the remainder is reduced by the polynomial.
func (reg *crcRegister) shift(bit byte) {
	carry := reg.value >> 7
	reg.value = reg.value<<1 | bit&1
	if carry == 1 {
		reg.value ^= feedbackMask
	}
}

// feed clocks every bit of data into the register, most significant bit of
// the first byte first. Leading zero bytes leave a cleared register cleared,
// so the byte slice is processed as is and its length never matters.
func (reg *crcRegister) feed(data []byte) {
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			reg.shift(b >> uint(i))
		}
	}
}

// Checksum returns the CRC-8 of data: the remainder of data followed by
// eight zero bits divided by Polynomial.
func Checksum(data []byte) byte {
	reg := crcRegister{}
	reg.reset()
	reg.feed(data)
	reg.feed([]byte{0})
	return reg.value
}

// Verify reports whether data, with its checksum byte appended, divides
// evenly by Polynomial.
func Verify(data []byte) bool {
	reg := crcRegister{}
	reg.reset()
	reg.feed(data)
	return reg.value == 0
}
