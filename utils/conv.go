package utils

import (
	"bytes"
	"encoding/binary"

	"github.com/mogaika/model_browser/config"

	"golang.org/x/text/transform"
)

// BytesToString decodes a zero-terminated 8-bit string with the configured
// charmap. Bytes after the first zero are ignored.
func BytesToString(bs []byte) string {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		// single byte charmaps never fail to decode, keep raw bytes just in case
		return string(bs[0:n])
	}

	return string(s)
}

func BytesStringLength(bs []byte) int {
	if l := bytes.IndexByte(bs, 0); l == -1 {
		return len(bs)
	} else {
		return l
	}
}

func Read24bitUint(o binary.ByteOrder, bin []byte) uint32 {
	var buf [4]byte
	if o == binary.LittleEndian {
		copy(buf[0:], bin[:3])
	} else {
		copy(buf[1:], bin[:3])
	}
	return o.Uint32(buf[:])
}
