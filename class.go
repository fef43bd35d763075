// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

// decodeClassData parses the qualifiers-then-variables-then-trailing-
// properties body shared by a top-level class record and a method's
// "__PARAMETERS" sub-class record. withQualifiers is false
// for parameter sub-classes, which never carry a leading qualifier
// block of their own. size1 must equal the qualifiers block's own
// encoded length (a redundant cross-check the original always performs).
func (d *decoder) decodeClassData(buf []byte, size1 uint32, withQualifiers bool, base uint32) (Class, error) {
	size := uint32(len(buf))
	if size < 8 {
		return Class{}, newParseError(InvalidSize, base, "class data shorter than 8 bytes")
	}
	len1, _ := readUint32At(buf, 0)
	if len1 > size {
		return Class{}, newParseError(InvalidSize, base, "class qualifiers block length exceeds record")
	}
	if len1 != size1 {
		return Class{}, newParseError(InvalidSize, base, "class qualifiers block length does not match caller's expectation")
	}
	count1, _ := readUint32At(buf, 4)

	var out Class
	var off uint32
	if withQualifiers {
		if err := d.checkCount(count1, base+4); err != nil {
			return Class{}, err
		}
		out.Qualifiers = make([]Qualifier, 0, count1)
		off = 8
		for i := uint32(0); i < count1; i++ {
			if !fits(off, 4, len1) {
				return Class{}, newParseError(InvalidSize, base+off, "class qualifier length field out of bounds")
			}
			qlen, _ := readUint32At(buf, off)
			if qlen == 0 || !fits(off, qlen, len1) {
				return Class{}, newParseError(InvalidSize, base+off, "class qualifier length invalid")
			}
			qbase := uint32(0)
			if base != 0 {
				qbase = base + off
			}
			q, err := d.decodeQualifier(buf[off:off+qlen], qbase)
			if err != nil {
				return Class{}, err
			}
			out.Qualifiers = append(out.Qualifiers, q)
			off += qlen
		}
	} else {
		off, len1, count1 = 0, 0, 0
	}

	if !fits(off, 8, size) {
		return Class{}, newParseError(InvalidSize, base+off, "class variable block header out of bounds")
	}
	len2, _ := readUint32At(buf, off)
	count2, _ := readUint32At(buf, off+4)
	if !fits(len1, len2, size) {
		return Class{}, newParseError(InvalidSize, base+off, "class variable block length invalid")
	}
	if err := d.checkCount(count2, base+off+4); err != nil {
		return Class{}, err
	}
	off += 8

	total := len1 + len2
	out.Variables = make([]Variable, 0, count2)
	for i := uint32(0); i < count2; i++ {
		if !fits(off, 4, total) {
			return Class{}, newParseError(InvalidSize, base+off, "class variable length field out of bounds")
		}
		vlen, _ := readUint32At(buf, off)
		if vlen == 0 || !fits(off, vlen, total) {
			return Class{}, newParseError(InvalidSize, base+off, "class variable length invalid")
		}

		isProperty := false
		if fits(off, 16, total) {
			marker, _ := readUint32At(buf, off+16)
			isProperty = marker == 0xFFFFFFFF
		}

		vbase := uint32(0)
		if base != 0 {
			vbase = base + off
		}
		if isProperty {
			if err := d.decodeClassProperty(buf[off:off+vlen], &out); err != nil {
				return Class{}, err
			}
		} else {
			v, err := d.decodeVariable(buf[off:off+vlen], vbase)
			if err != nil {
				return Class{}, err
			}
			out.Variables = append(out.Variables, v)
		}
		off += vlen
	}

	for off != size {
		if !fits(off, 4, size) {
			return Class{}, newParseError(InvalidSize, base+off, "trailing class property length field out of bounds")
		}
		plen, _ := readUint32At(buf, off)
		if plen == 0 || !fits(off, plen, size) {
			return Class{}, newParseError(InvalidSize, base+off, "trailing class property length invalid")
		}
		if err := d.decodeClassProperty(buf[off:off+plen], &out); err != nil {
			return Class{}, err
		}
		off += plen
	}

	return out, nil
}

// decodeClass parses a single top-level class record: a header (which
// rejects an instance-of class, out of scope for a class-definition
// decoder), the qualifiers/variables/properties body via
// decodeClassData, and a trailing methods block.
func (d *decoder) decodeClass(buf []byte, base uint32) (Class, error) {
	size := uint32(len(buf))
	if size < 8 {
		return Class{}, newParseError(InvalidSize, base, "class record shorter than 8 bytes")
	}
	if reserved, _ := readUint32At(buf, 4); reserved != 0 {
		return Class{}, newParseError(InvalidUnknown, base+4, "class reserved field is nonzero")
	}
	if size < 20 {
		d.logger.Warnf("class at offset 0x%x: no class defined", base)
		return Class{}, nil
	}
	len1, _ := readUint32At(buf, 8)
	length, _ := readUint32At(buf, 12)
	if !fits(20, length, size) {
		return Class{}, newParseError(InvalidSize, base+12, "class data length exceeds record")
	}
	if len1 > length {
		return Class{}, newParseError(InvalidSize, base+8, "class qualifiers length exceeds class data length")
	}
	kind, _ := readUint32At(buf, 16)
	switch kind {
	case classKindInstanceOf:
		d.logger.Warnf("class at offset 0x%x: instance-of blocks are not supported", base)
		return Class{}, nil
	case classKindNormal:
	default:
		d.logger.Warnf("class at offset 0x%x: unknown class kind 0x%x", base, kind)
		return Class{}, nil
	}

	dataBase := uint32(0)
	if base != 0 {
		dataBase = base + 20
	}
	out, err := d.decodeClassData(buf[20:20+length], len1, true, dataBase)
	if err != nil {
		return Class{}, err
	}

	rest := buf[20+length:]
	restBase := base
	if base != 0 {
		restBase = base + 20 + length
	}
	restLen := uint32(len(rest))
	if restLen < 4 {
		return Class{}, newParseError(InvalidSize, restBase, "class methods header shorter than 4 bytes")
	}
	methodsLen, _ := readUint32At(rest, 0)
	if methodsLen < 8 || methodsLen > restLen {
		return Class{}, newParseError(InvalidSize, restBase, "class methods block length invalid")
	}
	count, _ := readUint32At(rest, 4)
	if err := d.checkCount(count, restBase+4); err != nil {
		return Class{}, err
	}

	off := uint32(8)
	out.Methods = make([]Method, 0, count)
	for i := uint32(0); i < count; i++ {
		if restLen-off < 4 {
			return Class{}, newParseError(InvalidSize, restBase+off, "method length field out of bounds")
		}
		mlen, _ := readUint32At(rest, off)
		if mlen == 0 || mlen > restLen-off {
			return Class{}, newParseError(InvalidSize, restBase+off, "method length invalid")
		}
		mbase := uint32(0)
		if base != 0 {
			mbase = restBase + off
		}
		m, err := d.decodeMethod(rest[off:off+mlen], mbase)
		if err != nil {
			return Class{}, err
		}
		out.Methods = append(out.Methods, m)
		off += mlen
	}

	return out, nil
}
