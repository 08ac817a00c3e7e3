package lwo

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/mogaika/model_browser/pack/chunk"
)

// lwoBuilder assembles FORM/LWO2 fixtures chunk by chunk.
type lwoBuilder struct {
	chunks bytes.Buffer
}

func (b *lwoBuilder) chunk(tag string, body ...[]byte) *lwoBuilder {
	data := bytes.Join(body, nil)
	b.chunks.WriteString(tag)
	binary.Write(&b.chunks, binary.BigEndian, uint32(len(data)))
	b.chunks.Write(data)
	if len(data)&1 != 0 {
		b.chunks.WriteByte(0)
	}
	return b
}

func (b *lwoBuilder) bytes() []byte {
	var out bytes.Buffer
	out.WriteString(TAG_FORM)
	binary.Write(&out, binary.BigEndian, uint32(4+b.chunks.Len()))
	out.WriteString(TAG_LWO2)
	out.Write(b.chunks.Bytes())
	return out.Bytes()
}

func s0(s string) []byte {
	out := append([]byte(s), 0)
	if len(out)&1 != 0 {
		out = append(out, 0)
	}
	return out
}

func id4(s string) []byte {
	return []byte(s)
}

func u16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func f32(vals ...float32) []byte {
	out := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		bits := math.Float32bits(v)
		out = append(out, byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
	}
	return out
}

func vx(vals ...uint32) []byte {
	var out []byte
	for _, v := range vals {
		out = chunk.AppendIndex(out, v)
	}
	return out
}

func layr(name string) []byte {
	return bytes.Join([][]byte{u16(0), u16(0), f32(0, 0, 0), s0(name)}, nil)
}

func tri(a, b, c uint32) []byte {
	return append(u16(3), vx(a, b, c)...)
}

func subchunk(id string, body ...[]byte) []byte {
	data := bytes.Join(body, nil)
	out := append([]byte(id), u16(uint16(len(data)))...)
	out = append(out, data...)
	if len(data)&1 != 0 {
		out = append(out, 0)
	}
	return out
}
