// Package chunk reads big-endian IFF style buffers: fixed width numbers,
// even-padded zero terminated strings and variable width indices.
package chunk

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/model_browser/pack/asseterr"
	"github.com/mogaika/model_browser/utils"
)

const (
	// IndexSentinel marks a 4 byte variable width index.
	IndexSentinel = 0xff
	// IndexLongMin is the first value that needs the 4 byte form.
	IndexLongMin = 0xff00
	// IndexMax is the largest value a 4 byte index can hold.
	IndexMax = 0xffffff
)

// Reader is a bounds checked view over one decode buffer. Offsets are
// absolute to the wrapped slice.
type Reader struct {
	buf []byte
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) Len() int {
	return len(r.buf)
}

func (r *Reader) check(off, size int) error {
	if off < 0 || size < 0 || off+size > len(r.buf) || off+size < off {
		return asseterr.Truncated("read of %d bytes at 0x%x, buffer is 0x%x", size, off, len(r.buf))
	}
	return nil
}

func (r *Reader) Slice(off, size int) ([]byte, error) {
	if err := r.check(off, size); err != nil {
		return nil, err
	}
	return r.buf[off : off+size], nil
}

func (r *Reader) U8(off int) (uint8, error) {
	if err := r.check(off, 1); err != nil {
		return 0, err
	}
	return r.buf[off], nil
}

func (r *Reader) U16(off int) (uint16, error) {
	if err := r.check(off, 2); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(r.buf[off:]), nil
}

func (r *Reader) U32(off int) (uint32, error) {
	if err := r.check(off, 4); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(r.buf[off:]), nil
}

func (r *Reader) I16(off int) (int16, error) {
	v, err := r.U16(off)
	return int16(v), err
}

func (r *Reader) I32(off int) (int32, error) {
	v, err := r.U32(off)
	return int32(v), err
}

func (r *Reader) F32(off int) (float32, error) {
	v, err := r.U32(off)
	return math.Float32frombits(v), err
}

func (r *Reader) ReadVec3(off int) (mgl32.Vec3, error) {
	var v mgl32.Vec3
	if err := r.check(off, 12); err != nil {
		return v, err
	}
	for i := range v {
		v[i] = math.Float32frombits(binary.BigEndian.Uint32(r.buf[off+i*4:]))
	}
	return v, nil
}

// Tag returns the 4 byte ASCII identifier at off.
func (r *Reader) Tag(off int) (string, error) {
	if err := r.check(off, 4); err != nil {
		return "", err
	}
	return string(r.buf[off : off+4]), nil
}

// ReadCString reads a zero terminated string. The returned length covers the
// terminator and the pad byte that keeps the next field on an even offset.
// An empty string returns length 0: nothing was consumed.
func (r *Reader) ReadCString(off int) (string, int, error) {
	if err := r.check(off, 1); err != nil {
		return "", 0, err
	}
	n := utils.BytesStringLength(r.buf[off:])
	if off+n >= len(r.buf) {
		return "", 0, asseterr.Truncated("unterminated string at 0x%x", off)
	}
	if n == 0 {
		return "", 0, nil
	}

	size := n + 1
	if size&1 != 0 && off+size < len(r.buf) {
		size++
	}
	return utils.BytesToString(r.buf[off : off+n]), size, nil
}

// ReadIndex reads a variable width index. A leading 0xff byte selects the
// 4 byte form holding a 24 bit value, otherwise the index is a plain u16.
func (r *Reader) ReadIndex(off int) (uint32, int, error) {
	sentinel, err := r.U8(off)
	if err != nil {
		return 0, 0, err
	}
	if sentinel != IndexSentinel {
		v, err := r.U16(off)
		return uint32(v), 2, err
	}
	if err := r.check(off+1, 3); err != nil {
		return 0, 0, err
	}
	return utils.Read24bitUint(binary.BigEndian, r.buf[off+1:]), 4, nil
}

func IndexWidth(v uint32) int {
	if v >= IndexLongMin {
		return 4
	}
	return 2
}

// AppendIndex encodes v in the same variable width layout ReadIndex decodes.
func AppendIndex(dst []byte, v uint32) []byte {
	if v >= IndexLongMin {
		return append(dst, IndexSentinel, byte(v>>16), byte(v>>8), byte(v))
	}
	return append(dst, byte(v>>8), byte(v))
}
