package todo

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/roach88/bountylist/internal/address"
)

var errShortBuffer = errors.New("unexpected end of data")

// encoder appends little-endian Borsh-style values.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16) { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32) { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) u64(v uint64) { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) raw(b []byte) { e.buf = append(e.buf, b...) }

func (e *encoder) boolean(v bool) {
	if v {
		e.u8(1)
		return
	}
	e.u8(0)
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *encoder) addr(a address.Address) { e.buf = append(e.buf, a[:]...) }

// decoder reads little-endian Borsh-style values. The first error sticks.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf)-d.off < n {
		d.err = errShortBuffer
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) boolean() bool {
	v := d.u8()
	if v > 1 && d.err == nil {
		d.err = errors.New("invalid bool")
	}
	return v == 1
}

func (d *decoder) str() string {
	n := d.u32()
	if uint64(n) > math.MaxInt32 {
		d.err = errShortBuffer
		return ""
	}
	return string(d.take(int(n)))
}

func (d *decoder) addr() address.Address {
	var a address.Address
	copy(a[:], d.take(address.Size))
	return a
}

// remaining returns the number of unread bytes.
func (d *decoder) remaining() int {
	return len(d.buf) - d.off
}
