// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import "strings"

// decodeQualifier parses one qualifier record: a 16-byte header, a
// UTF-16LE name, and a type-dependent value. base is buf[0]'s absolute
// offset in the full input; it is 0 when no flavor table is present, in
// which case flavor augmentation is skipped entirely, matching the
// original C decoder's "offset ? ... : 0" gate.
func (d *decoder) decodeQualifier(buf []byte, base uint32) (Qualifier, error) {
	size := uint32(len(buf))
	if size < 16 {
		return Qualifier{}, newParseError(InvalidSize, base, "qualifier header shorter than 16 bytes")
	}
	typ, _ := readUint32At(buf, 4)
	length, _ := readUint32At(buf, 12)
	if !fits(16, length, size) {
		return Qualifier{}, newParseError(InvalidSize, base, "qualifier name length exceeds record")
	}

	var q Qualifier
	switch qualifierType(typ) {
	case wireQualifierBoolean:
		if fits(16+4+1, length, size) {
			return Qualifier{}, newParseError(InvalidSize, base, "boolean qualifier has trailing bytes")
		}
		var val uint32 = 0xFFFF
		if fits(16+4, length, size) {
			val, _ = readUint32At(buf, 16+length)
		}
		if val != 0 && val != 0xFFFF {
			return Qualifier{}, newParseError(InvalidUnknown, base, "boolean qualifier value is neither 0 nor 0xFFFF")
		}
		name, err := d.mofString(buf[16:16+length], base+16)
		if err != nil {
			return Qualifier{}, err
		}
		q = Qualifier{Type: QualifierBoolean, Name: name, BoolValue: val != 0}

	case wireQualifierSint32:
		if !fits(16+4, length, size) {
			return Qualifier{}, newParseError(InvalidSize, base, "sint32 qualifier value out of bounds")
		}
		val, _ := readInt32At(buf, 16+length)
		name, err := d.mofString(buf[16:16+length], base+16)
		if err != nil {
			return Qualifier{}, err
		}
		q = Qualifier{Type: QualifierSint32, Name: name, Sint32Value: val}

	case wireQualifierString:
		name, err := d.mofString(buf[16:16+length], base+16)
		if err != nil {
			return Qualifier{}, err
		}
		valueBuf := buf[16+length:]
		value, err := d.mofString(valueBuf, base+16+length)
		if err != nil {
			return Qualifier{}, err
		}
		q = Qualifier{Type: QualifierString, Name: name, StringValue: value}

	case wireQualifierValueMap:
		d.logger.Warnf("qualifier at offset 0x%x: ValueMap and Values qualifiers are not supported yet", base)
		if d.opts.StrictFlavorTable && d.flavors[base] != nil {
			return Qualifier{}, newParseError(SemanticMismatch, base,
				"ValueMap/Values qualifier referenced by flavor table cannot be reconciled under strict mode")
		}
		return Qualifier{}, nil

	default:
		d.logger.Warnf("qualifier at offset 0x%x: unknown qualifier type 0x%x\n%s", base, typ, hexDump(buf[16:16+length]))
		if length+16 < size {
			d.logger.Warnf("...continuing unknown qualifier dump...\n%s", hexDump(buf[16+length:]))
		}
		return Qualifier{}, nil
	}

	if base != 0 {
		if err := d.applyFlavor(base, &q); err != nil {
			return Qualifier{}, err
		}
	}
	return q, nil
}

// applyFlavor reconciles every flavor-table entry recorded at base
// against the just-decoded qualifier q, marking each consumed. A
// qualifier's absolute offset can in principle be targeted by more
// than one entry, so every match is processed rather than stopping at
// the first (matching the original's non-breaking loop).
func (d *decoder) applyFlavor(base uint32, q *Qualifier) error {
	entries := d.flavors[base]
	for _, e := range entries {
		e.consumed = true
		switch e.tag {
		case flavorDynamic:
			if q.Type != QualifierBoolean || !strings.EqualFold(q.Name, qualifierNameDynamic) {
				return newParseError(SemanticMismatch, base, "flavor entry expects a Boolean \"Dynamic\" qualifier")
			}
		case flavorToSubclass:
			q.ToSubclass = true
		case flavorCimtype:
			if q.Type != QualifierString || q.Name != qualifierNameCIMTYPE {
				return newParseError(SemanticMismatch, base, "flavor entry expects a String \"CIMTYPE\" qualifier")
			}
		case flavorID:
			if q.Type != QualifierSint32 || q.Name != qualifierNameID {
				return newParseError(SemanticMismatch, base, "flavor entry expects a Sint32 \"ID\" qualifier")
			}
		default:
			d.logger.Warnf("qualifier %q at offset 0x%x: unknown flavor type 0x%x", q.Name, base, e.tag)
		}
	}
	return nil
}

// mofString decodes a UTF-16LE byte range into a string, rejecting an
// odd length the way the original C decoder's parse_string does.
func (d *decoder) mofString(buf []byte, base uint32) (string, error) {
	if len(buf)%2 != 0 {
		return "", newParseError(InvalidSize, base, "string byte length is odd")
	}
	return decodeUTF16LE(buf), nil
}
