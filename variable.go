// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import "strings"

// decodeVariable parses a single class property / method parameter
// record: a type tag, an optional inline default value (warned about
// and skipped, never decoded), and a qualifier block whose CIMTYPE and
// MAX entries get promoted into structured fields rather than kept as
// ordinary qualifiers, the same absorption the original's
// parse_class_property applies to pseudo-properties.
func (d *decoder) decodeVariable(buf []byte, base uint32) (Variable, error) {
	size := uint32(len(buf))
	if size < 20 {
		return Variable{}, newParseError(InvalidSize, base, "variable header shorter than 20 bytes")
	}
	typ, _ := readUint32At(buf, 4)

	var isArray bool
	switch typ >> 8 {
	case variableShapeScalar:
		isArray = false
	case variableShapeArray:
		isArray = true
	default:
		d.logger.Warnf("variable at offset 0x%x: unknown variable type 0x%x\n%s", base, typ, hexDump(buf))
		return Variable{}, nil
	}

	var v Variable
	switch typ & 0xFF {
	case wireTypeSint16:
		v.Basic = BasicSint16
	case wireTypeSint32:
		v.Basic = BasicSint32
	case wireTypeString:
		v.Basic = BasicString
	case wireTypeBoolean:
		v.Basic = BasicBoolean
	case wireTypeSint8:
		v.Basic = BasicSint8
	case wireTypeUint8:
		v.Basic = BasicUint8
	case wireTypeUint16:
		v.Basic = BasicUint16
	case wireTypeUint32:
		v.Basic = BasicUint32
	case wireTypeSint64:
		v.Basic = BasicSint64
	case wireTypeUint64:
		v.Basic = BasicUint64
	case wireTypeDatetime:
		v.Basic = BasicDatetime
	case wireTypeObject:
		// object-typed; resolved below from the CIMTYPE qualifier.
	default:
		d.logger.Warnf("variable at offset 0x%x: unknown variable type 0x%x\n%s", base, typ, hexDump(buf))
		return Variable{}, nil
	}

	isObject := typ&0xFF == wireTypeObject
	switch {
	case isObject && isArray:
		v.Kind = VariableObjectArray
	case isObject:
		v.Kind = VariableObject
	case isArray:
		v.Kind = VariableBasicArray
	default:
		v.Kind = VariableBasic
	}

	if reserved, _ := readUint32At(buf, 8); reserved != 0 {
		return Variable{}, newParseError(InvalidUnknown, base+8, "variable reserved field is nonzero")
	}

	length, _ := readUint32At(buf, 16)
	if !fits(20, length, size) {
		return Variable{}, newParseError(InvalidSize, base+16, "variable name/value length exceeds record")
	}

	slen, _ := readUint32At(buf, 12)
	if slen != 0xFFFFFFFF {
		if !fits(20, slen, size) || slen > length {
			return Variable{}, newParseError(InvalidSize, base+12, "variable inline name length invalid")
		}
		name, err := d.mofString(buf[20:20+slen], base+20)
		if err != nil {
			return Variable{}, err
		}
		v.Name = name
		d.logger.Warnf("variable %q at offset 0x%x: inline default value is not supported yet\n%s",
			name, base, hexDump(buf[20+slen:20+length]))
	} else {
		name, err := d.mofString(buf[20:20+length], base+20)
		if err != nil {
			return Variable{}, err
		}
		v.Name = name
	}

	if !fits(28, length, size) {
		return Variable{}, newParseError(InvalidSize, base, "variable qualifier block header out of bounds")
	}
	qualBase := 20 + length
	qualBlockLen, _ := readUint32At(buf, qualBase)
	if size < 20 || !fits(length, qualBlockLen, size-20) {
		return Variable{}, newParseError(InvalidSize, base+qualBase, "variable qualifier block length invalid")
	}
	count, _ := readUint32At(buf, qualBase+4)
	if err := d.checkCount(count, base+qualBase+4); err != nil {
		return Variable{}, err
	}

	off := qualBase + 8
	for i := uint32(0); i < count; i++ {
		// 28 == 20+8, the literal threshold the original guards
		// against cursor wraparound with, not a function of length.
		if off <= 28 || off >= ^uint32(0) {
			return Variable{}, newParseError(InvalidSize, base+off, "variable qualifier cursor out of bounds")
		}
		if !fits(off, 4, size) {
			return Variable{}, newParseError(InvalidSize, base+off, "variable qualifier length field out of bounds")
		}
		qlen, _ := readUint32At(buf, off)
		if qlen == 0 || qlen >= qualBlockLen {
			return Variable{}, newParseError(InvalidSize, base+off, "variable qualifier length invalid")
		}
		if !fits(off, qlen, size) {
			return Variable{}, newParseError(InvalidSize, base+off, "variable qualifier exceeds record")
		}
		qbase := uint32(0)
		if base != 0 {
			qbase = base + off
		}
		q, err := d.decodeQualifier(buf[off:off+qlen], qbase)
		if err != nil {
			return Variable{}, err
		}
		if q.Name != "" {
			if err := d.absorbVariableQualifier(&v, q, isArray); err != nil {
				return Variable{}, err
			}
		}
		off += qlen
	}
	if off != size {
		return Variable{}, newParseError(InvalidSize, base+off, "variable record has unconsumed trailing bytes")
	}
	return v, nil
}

// absorbVariableQualifier implements the CIMTYPE/MAX promotion rules:
// a CIMTYPE qualifier resolves the variable's object type name or
// cross-checks its basic type, and a MAX qualifier (on an array
// variable) becomes ArrayLength. Either way the qualifier is consumed
// rather than appended to v.Qualifiers; anything else is kept.
func (d *decoder) absorbVariableQualifier(v *Variable, q Qualifier, isArray bool) error {
	switch {
	case q.Type == QualifierString && q.Name == qualifierNameCIMTYPE:
		if v.Kind == VariableObject || v.Kind == VariableObjectArray {
			if !strings.HasPrefix(q.StringValue, objectCIMTypePrefix) {
				return newParseError(InvalidUnknown, 0, "object variable CIMTYPE missing \"object:\" prefix")
			}
			v.ObjectType = strings.TrimPrefix(q.StringValue, objectCIMTypePrefix)
			return nil
		}
		basic, ok := basicTypeFromCIMTYPE(q.StringValue)
		if !ok {
			return newParseError(InvalidType, 0, "unknown basic type name in CIMTYPE qualifier")
		}
		if basic != v.Basic {
			return newParseError(SemanticMismatch, 0, "CIMTYPE qualifier does not match the variable's wire type")
		}
		return nil
	case q.Type == QualifierSint32 && q.Name == qualifierNameMAX && isArray:
		v.ArrayLength = q.Sint32Value
		return nil
	default:
		v.Qualifiers = append(v.Qualifiers, q)
		return nil
	}
}

// basicTypeFromCIMTYPE maps a CIMTYPE qualifier's string value to a
// BasicType, matching the original C decoder's parse_class_variable
// string table (a mix of case-sensitive and case-insensitive names,
// ported verbatim).
func basicTypeFromCIMTYPE(s string) (BasicType, bool) {
	switch s {
	case "String", "string":
		return BasicString, true
	case "sint32":
		return BasicSint32, true
	case "uint32":
		return BasicUint32, true
	case "sint16":
		return BasicSint16, true
	case "uint16":
		return BasicUint16, true
	case "sint64":
		return BasicSint64, true
	case "uint64":
		return BasicUint64, true
	case "sint8":
		return BasicSint8, true
	case "uint8":
		return BasicUint8, true
	case "Datetime", "datetime":
		return BasicDatetime, true
	case "Boolean", "boolean":
		return BasicBoolean, true
	default:
		return BasicUnknown, false
	}
}

// decodeClassProperty parses a pseudo-property record:
// __CLASS, __NAMESPACE, __SUPERCLASS (string-valued) or __CLASSFLAGS
// (sint32-valued), folded directly into the owning Class rather than
// kept as a Variable. Anything else is logged and discarded.
func (d *decoder) decodeClassProperty(buf []byte, out *Class) error {
	size := uint32(len(buf))
	if size < 20 {
		return newParseError(InvalidSize, 0, "class property record shorter than 20 bytes")
	}
	length, _ := readUint32At(buf, 0)
	if length == 0 || size < length {
		return newParseError(InvalidSize, 0, "class property length invalid")
	}
	reserved1, _ := readUint32At(buf, 8)
	reserved2, _ := readUint32At(buf, 16)
	if reserved1 != 0 || reserved2 != 0xFFFFFFFF {
		return newParseError(InvalidUnknown, 0, "class property reserved fields mismatch")
	}
	typ, _ := readUint32At(buf, 4)
	slen, _ := readUint32At(buf, 12)
	if !fits(20, slen, size) {
		return newParseError(InvalidSize, 0, "class property name length exceeds record")
	}
	name, err := d.mofString(buf[20:20+slen], 0)
	if err != nil {
		return err
	}

	switch typ {
	case wireTypeString:
		value, err := d.mofString(buf[20+slen:size], 0)
		if err != nil {
			return err
		}
		switch name {
		case pseudoPropClass:
			out.Name = value
		case pseudoPropNamespace:
			out.Namespace = value
		case pseudoPropSuperclass:
			out.SuperclassName = value
		default:
			d.logger.Warnf("unknown class property name %q", name)
		}
	case wireTypeSint32:
		if size-slen-20 != 4 {
			return newParseError(InvalidSize, 0, "class property sint32 value is not 4 bytes")
		}
		value, _ := readInt32At(buf, 20+slen)
		switch name {
		case pseudoPropClassFlags:
			out.ClassFlags = value
		default:
			d.logger.Warnf("unknown class property name %q", name)
		}
	default:
		d.logger.Warnf("unknown class property type 0x%x for name %q", typ, name)
	}
	return nil
}
