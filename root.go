// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"bytes"
	"os"

	"github.com/pali-rohar/bmfdec/log"
)

// DefaultMaxElementCount bounds every attacker-controlled repeat count
// the decoder trusts off the wire (classes, variables, qualifiers,
// methods, parameters, flavor-table entries) when Options.MaxElementCount
// is left at its zero value. Mirrors the teacher's
// MaxDefaultCOFFSymbolsCount/MaxDefaultRelocEntriesCount pattern of
// defending against hostile counts that would otherwise drive an
// unbounded allocation before a single byte of the claimed elements is
// validated.
const DefaultMaxElementCount = 1 << 20

// Options configures a Parse/New/NewBytes call, teacher's Options shape
// (file.go) generalized to the BMF domain.
type Options struct {
	// A custom logger. Defaults to a stderr logger filtered to
	// warnings and above.
	Logger log.Logger

	// Maximum number of classes, variables, qualifiers, methods,
	// parameters, or flavor-table entries trusted from a single
	// length-prefixed count field. Defaults to DefaultMaxElementCount.
	MaxElementCount uint32

	// StrictFlavorTable turns the one warn-and-continue case in the
	// qualifier decoder - an unsupported ValueMap/Values (0x2008)
	// qualifier that the auxiliary flavor table still references by
	// offset - into a fatal SemanticMismatch. By default (false) it is
	// logged and the flavor entry is left unconsumed, which still
	// trips the end-of-parse LeftoverFlavor check; strict mode instead
	// fails fast at the qualifier itself.
	StrictFlavorTable bool
}

func (o *Options) withDefaults() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.MaxElementCount == 0 {
		out.MaxElementCount = DefaultMaxElementCount
	}
	return &out
}

func (o *Options) helper() *log.Helper {
	if o.Logger == nil {
		return log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stderr),
			log.FilterLevel(log.LevelWarn)))
	}
	return log.NewHelper(o.Logger)
}

// flavorEntry is one {offset, tag} row of the auxiliary
// BMOFQUALFLAVOR11 side table.
type flavorEntry struct {
	offset   uint32
	tag      flavorTag
	consumed bool
}

// decoder carries the state threaded through every decode function:
// the configured limits, the logger to warn through, and the
// flavor-table side channel that qualifier decoding consults and
// reconciles.
type decoder struct {
	opts    *Options
	logger  *log.Helper
	flavors map[uint32][]*flavorEntry
}

func (d *decoder) checkCount(n uint32, base uint32) error {
	if n > d.opts.MaxElementCount {
		return newParseError(InvalidSize, base, "element count exceeds configured maximum")
	}
	return nil
}

// Parse decodes a decompressed BMF byte buffer into a ClassModel. opts
// may be nil to take every default.
func Parse(data []byte, opts *Options) (*ClassModel, error) {
	o := opts.withDefaults()
	d := &decoder{opts: o, logger: o.helper()}

	if len(data) < 8 {
		return nil, ErrTooSmall
	}
	magic, _ := readUint32At(data, 0)
	if magic != BMOFMagic {
		return nil, newParseError(InvalidMagic, 0, "missing \"BMOF\" container signature")
	}
	length, err := readUint32At(data, 4)
	if err != nil {
		return nil, newParseError(InvalidSize, 0, "container length field")
	}
	size := uint32(len(data))
	if length > size {
		return nil, newParseError(InvalidSize, 4, "container length exceeds input size")
	}

	var rootBase uint32
	if length < size {
		if !fits(20, length, size) {
			return nil, newParseError(InvalidSize, length, "flavor table header exceeds input size")
		}
		if !bytes.Equal(data[length:length+16], []byte(FlavorTableMagic)) {
			return nil, newParseError(InvalidMagic, length, "missing BMOFQUALFLAVOR11 signature")
		}
		count, err := readUint32At(data, length+16)
		if err != nil {
			return nil, newParseError(InvalidSize, length+16, "flavor table count field")
		}
		if count >= ^uint32(0)/8 || 8*count != size-length-16-4 {
			return nil, newParseError(InvalidSize, length+16, "flavor table size mismatch")
		}
		if err := d.checkCount(count, length+16); err != nil {
			return nil, err
		}
		d.flavors = make(map[uint32][]*flavorEntry, count)
		base := length + 20
		for i := uint32(0); i < count; i++ {
			off, err := readUint32At(data, base+8*i)
			if err != nil {
				return nil, newParseError(InvalidSize, base+8*i, "flavor table entry offset")
			}
			tag, err := readUint32At(data, base+8*i+4)
			if err != nil {
				return nil, newParseError(InvalidSize, base+8*i+4, "flavor table entry type")
			}
			if off == 0 {
				return nil, newParseError(InvalidSize, base+8*i, "invalid offset in flavor table entry")
			}
			entry := &flavorEntry{offset: off, tag: flavorTag(tag)}
			d.flavors[off] = append(d.flavors[off], entry)
		}
		rootBase = 8
	}

	model, err := d.decodeRoot(data[8:length], rootBase)
	if err != nil {
		return nil, err
	}

	for _, entries := range d.flavors {
		for _, e := range entries {
			if !e.consumed {
				return nil, newParseError(LeftoverFlavor, e.offset, "flavor table entry was never consumed by a qualifier")
			}
		}
	}

	return model, nil
}

// decodeRoot parses the fixed {0x1, 0x1, count} root header followed by
// count length-prefixed class records.
func (d *decoder) decodeRoot(buf []byte, base uint32) (*ClassModel, error) {
	if len(buf) < 12 {
		return nil, newParseError(InvalidSize, base, "root header shorter than 12 bytes")
	}
	w0, _ := readUint32At(buf, 0)
	w1, _ := readUint32At(buf, 4)
	if w0 != rootHeaderWord0 || w1 != rootHeaderWord1 {
		return nil, newParseError(InvalidUnknown, base, "root header magic mismatch")
	}
	count, _ := readUint32At(buf, 8)
	if err := d.checkCount(count, base+8); err != nil {
		return nil, err
	}

	model := &ClassModel{Classes: make([]Class, 0, count)}
	off := uint32(12)
	for i := uint32(0); i < count; i++ {
		if !fits(off, 4, uint32(len(buf))) {
			return nil, newParseError(InvalidSize, base+off, "class length field out of bounds")
		}
		length, _ := readUint32At(buf, off)
		if length == 0 || !fits(off, length, uint32(len(buf))) {
			return nil, newParseError(InvalidSize, base+off, "class record length invalid")
		}
		childBase := uint32(0)
		if base != 0 {
			childBase = base + off
		}
		cls, err := d.decodeClass(buf[off:off+length], childBase)
		if err != nil {
			return nil, err
		}
		model.Classes = append(model.Classes, cls)
		off += length
	}
	if off != uint32(len(buf)) {
		return nil, newParseError(InvalidSize, base+off, "root region has unconsumed trailing bytes")
	}
	return model, nil
}

// Release clears m so that stale references are not accidentally
// reused by a caller holding a dangling pointer. The Go garbage
// collector owns the memory; this exists for API symmetry with the
// teacher's File.Close.
func Release(m *ClassModel) {
	if m == nil {
		return
	}
	m.Classes = nil
}
