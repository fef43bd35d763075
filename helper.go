// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// fits reports whether a+b does not overflow uint32 and a+b <= limit.
// This is the Go port of the original decoder's check_sum macro:
//
//	#define check_sum(a, b, sum) (UINT32_MAX - (a) >= (b) && (a)+(b) <= (sum))
//
// and matches the overflow-safe boundary test the teacher's own
// structUnpack/ReadBytesAtOffset use: "(totalSize > offset) != (size > 0)".
// Both formulations reject the same inputs; fits is kept in the
// check_sum shape because every call site in the original reads
// directly as "does a+b fit within sum".
func fits(a, b, limit uint32) bool {
	if ^uint32(0)-a < b {
		return false
	}
	return a+b <= limit
}

// readUint32At reads a little-endian uint32 at offset, bounds-checked
// against len(buf). Mirrors the teacher's ReadUint32.
func readUint32At(buf []byte, offset uint32) (uint32, error) {
	if !fits(offset, 4, uint32(len(buf))) {
		return 0, ErrTooSmall
	}
	return binary.LittleEndian.Uint32(buf[offset:]), nil
}

func readInt32At(buf []byte, offset uint32) (int32, error) {
	v, err := readUint32At(buf, offset)
	return int32(v), err
}

// sliceAt returns buf[offset:offset+size], bounds-checked the same way
// the teacher's ReadBytesAtOffset does.
func sliceAt(buf []byte, offset, size uint32) ([]byte, error) {
	if !fits(offset, size, uint32(len(buf))) {
		return nil, ErrTooSmall
	}
	return buf[offset : offset+size], nil
}

// decodeUTF16LE decodes a NUL-terminated (or buffer-exhausted) UTF-16LE
// string into UTF-8, ported from the original C decoder's parse_string.
// A lone (unpaired) surrogate is lossily re-encoded as the
// 3-byte UTF-8 form of its raw 16-bit value rather than substituted with
// U+FFFD — this is the one behavior that rules out golang.org/x/text's
// standard UTF-16 decoder (see DESIGN.md). buf's length must be even;
// the caller enforces that as an InvalidSize check before calling.
func decodeUTF16LE(buf []byte) string {
	n := len(buf) / 2
	var b strings.Builder
	b.Grow(len(buf))
	for i := 0; i < n; i++ {
		u := binary.LittleEndian.Uint16(buf[2*i:])
		switch {
		case u == 0:
			return b.String()
		case u < 0x80:
			b.WriteByte(byte(u))
		case u < 0x800:
			b.WriteByte(byte(0xC0 | (u >> 6)))
			b.WriteByte(byte(0x80 | (u & 0x3F)))
		case u >= 0xD800 && u <= 0xDBFF && i+1 < n &&
			binary.LittleEndian.Uint16(buf[2*(i+1):]) >= 0xDC00 &&
			binary.LittleEndian.Uint16(buf[2*(i+1):]) <= 0xDFFF:
			lo := binary.LittleEndian.Uint16(buf[2*(i+1):])
			c := 0x10000 + (uint32(u)-0xD800)<<10 + (uint32(lo) - 0xDC00)
			i++
			b.WriteByte(byte(0xF0 | (c >> 18)))
			b.WriteByte(byte(0x80 | ((c >> 12) & 0x3F)))
			b.WriteByte(byte(0x80 | ((c >> 6) & 0x3F)))
			b.WriteByte(byte(0x80 | (c & 0x3F)))
		default:
			b.WriteByte(byte(0xE0 | (u >> 12)))
			b.WriteByte(byte(0x80 | ((u >> 6) & 0x3F)))
			b.WriteByte(byte(0x80 | (u & 0x3F)))
		}
	}
	return b.String()
}

// toASCII maps a byte to its printable ASCII form, or '.' outside the
// printable range.
func toASCII(c byte) byte {
	if c >= 32 && c <= 126 {
		return c
	}
	return '.'
}

// hexDump renders buf as a classic 16-byte-per-row hex+ASCII dump,
// ported from the original C decoder's dump_bytes. Every warn-and-skip
// path feeds its unrecognized bytes through this and logs the result,
// instead of writing to stderr the way the C source does.
func hexDump(buf []byte) string {
	var out strings.Builder
	var ascii strings.Builder
	for i, c := range buf {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintf(&out, "  |%s|\n", ascii.String())
				ascii.Reset()
			}
			fmt.Fprintf(&out, "%04X:", i)
		}
		fmt.Fprintf(&out, " %02X", c)
		ascii.WriteByte(toASCII(c))
	}
	if ascii.Len() > 0 {
		if len(buf)%16 != 0 {
			for i := 0; i < 16-(len(buf)%16); i++ {
				out.WriteString("   ")
			}
		}
		fmt.Fprintf(&out, "  |%s|\n", ascii.String())
	}
	return out.String()
}
