// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

// decodeMethod parses a single class method record: a header, an
// optional "__PARAMETERS" block reconciled by decodeMethodParameters, a
// name, and a qualifier block. Unlike decodeVariable, every decoded
// qualifier is appended unconditionally - including the zero-value
// placeholder for an unknown or ValueMap qualifier type - matching the
// original C decoder's parse_class_method, which never filters on
// q.name being empty the way parse_class_variable's caller does.
func (d *decoder) decodeMethod(buf []byte, base uint32) (Method, error) {
	size := uint32(len(buf))
	if size < 20 {
		return Method{}, newParseError(InvalidSize, base, "method header shorter than 20 bytes")
	}
	typ, _ := readUint32At(buf, 4)
	if typ != methodTypePlain && typ != methodTypeReturnValue {
		d.logger.Warnf("method at offset 0x%x: unknown method type 0x%x\n%s", base, typ, hexDump(buf))
		return Method{}, nil
	}
	if reserved, _ := readUint32At(buf, 8); reserved != 0 {
		return Method{}, newParseError(InvalidUnknown, base+8, "method reserved field is nonzero")
	}

	nameLen, _ := readUint32At(buf, 12)
	totalLen, _ := readUint32At(buf, 16)

	var out Method
	if nameLen == 0xFFFFFFFF {
		nameLen = totalLen
	} else {
		if !fits(20, totalLen, size) || totalLen < nameLen {
			return Method{}, newParseError(InvalidSize, base+16, "method parameters block length invalid")
		}
		paramsBase := uint32(0)
		if base != 0 {
			paramsBase = base + 20 + nameLen
		}
		if err := d.decodeMethodParameters(buf[20+nameLen:20+totalLen], &out, paramsBase); err != nil {
			return Method{}, err
		}
	}
	if !fits(20, nameLen, size) {
		return Method{}, newParseError(InvalidSize, base, "method name length exceeds record")
	}
	name, err := d.mofString(buf[20:20+nameLen], base+20)
	if err != nil {
		return Method{}, err
	}
	out.Name = name

	qualBase := 20 + totalLen
	if !fits(qualBase, 4, size) {
		return Method{}, newParseError(InvalidSize, base+qualBase, "method qualifier block header out of bounds")
	}
	qualBlockLen, _ := readUint32At(buf, qualBase)
	if size < 20 || !fits(totalLen, qualBlockLen, size-20) {
		return Method{}, newParseError(InvalidSize, base+qualBase, "method qualifier block length invalid")
	}
	count, _ := readUint32At(buf, qualBase+4)
	if err := d.checkCount(count, base+qualBase+4); err != nil {
		return Method{}, err
	}

	upper := qualBase + 8 + qualBlockLen
	out.Qualifiers = make([]Qualifier, 0, count)
	off := qualBase + 8
	for i := uint32(0); i < count; i++ {
		if !fits(28, totalLen+qualBlockLen, ^uint32(0)) || !fits(off, 4, upper) {
			return Method{}, newParseError(InvalidSize, base+off, "method qualifier length field out of bounds")
		}
		qlen, _ := readUint32At(buf, off)
		if qlen == 0 || !fits(off, qlen, upper) {
			return Method{}, newParseError(InvalidSize, base+off, "method qualifier length invalid")
		}
		qbase := uint32(0)
		if base != 0 {
			qbase = base + off
		}
		q, err := d.decodeQualifier(buf[off:off+qlen], qbase)
		if err != nil {
			return Method{}, err
		}
		out.Qualifiers = append(out.Qualifiers, q)
		off += qlen
	}
	if off != size {
		return Method{}, newParseError(InvalidSize, base+off, "method record has unconsumed trailing bytes")
	}
	return out, nil
}

// decodeMethodParameters reconciles a method's "__PARAMETERS" block:
// one or more sub-classes, each carrying a fragment of the method's
// parameters or its return value tagged by an "ID" qualifier, merged
// by ID into out.Parameters and out.ReturnValue. Ported from the
// original C decoder's parse_class_method_parameters.
func (d *decoder) decodeMethodParameters(buf []byte, out *Method, base uint32) error {
	size := uint32(len(buf))
	if size < 16 {
		return newParseError(InvalidSize, base, "method parameters header shorter than 16 bytes")
	}
	if w, _ := readUint32At(buf, 4); w != 0x1 {
		return newParseError(InvalidUnknown, base+4, "method parameters header magic mismatch")
	}
	count, _ := readUint32At(buf, 8)
	if err := d.checkCount(count, base+8); err != nil {
		return err
	}
	length, _ := readUint32At(buf, 12)
	if length == 0 || !fits(12, length, size) {
		return newParseError(InvalidSize, base+12, "method parameters length field invalid")
	}
	if length+12 != size {
		return newParseError(InvalidSize, base+12, "method parameters length does not cover the whole record")
	}

	subclasses := make([]Class, 0, count)
	off := uint32(16)
	for i := uint32(0); i < count; i++ {
		if off >= ^uint32(0) || !fits(4, off, length) {
			return newParseError(InvalidSize, base+off, "method parameters sub-class cursor out of bounds")
		}
		len1, _ := readUint32At(buf, off)
		if !fits(off, len1, 16+length) {
			return newParseError(InvalidSize, base+off, "method parameters sub-class length invalid")
		}
		if len1 < 20 {
			return newParseError(InvalidSize, base+off, "method parameters sub-class shorter than 20 bytes")
		}
		if w, _ := readUint32At(buf, off+4); w != 0xFFFFFFFF {
			return newParseError(InvalidUnknown, base+off+4, "method parameters sub-class header mismatch")
		}
		if w, _ := readUint32At(buf, off+8); w != 0 {
			return newParseError(InvalidUnknown, base+off+8, "method parameters sub-class reserved field is nonzero")
		}
		len2, _ := readUint32At(buf, off+12)
		if len2 >= length || !fits(off, 4, length-len2) {
			return newParseError(InvalidSize, base+off, "method parameters sub-class data length invalid")
		}
		if w, _ := readUint32At(buf, off+16); w != 0x1 {
			return newParseError(InvalidUnknown, base+off+16, "method parameters sub-class data header mismatch")
		}

		childBase := uint32(0)
		if base != 0 {
			childBase = base + off + 20
		}
		sub, err := d.decodeClassData(buf[off+20:off+20+len2], len2, false, childBase)
		if err != nil {
			return err
		}
		if sub.Name != pseudoPropParameters {
			return newParseError(SemanticMismatch, childBase, "method parameters sub-class has an unexpected class name")
		}
		subclasses = append(subclasses, sub)
		off += len1
	}

	variablesCount := 0
	for _, sub := range subclasses {
		variablesCount += len(sub.Variables)
	}
	parametersMap := make([]uint8, variablesCount)

	for _, sub := range subclasses {
		for _, v := range sub.Variables {
			id, hasID, err := parameterID(v, variablesCount)
			if err != nil {
				return err
			}
			isReturnValue := v.Name == pseudoPropReturnValue
			if hasID == isReturnValue {
				return newParseError(SemanticMismatch, base, "parameter is neither an identified parameter nor a return value")
			}
			if hasID {
				parametersMap[id] = 1
			}
		}
	}

	parametersCount := uint32(0)
	if variablesCount > 0 && parametersMap[0] == 1 {
		parametersCount = 1
	}
	for i := 1; i < variablesCount; i++ {
		if parametersMap[i] == 1 {
			if parametersMap[i-1] == 0 {
				return newParseError(SemanticMismatch, base, "some method parameters are missing from the ID sequence")
			}
			parametersCount = uint32(i + 1)
		}
	}

	out.Parameters = make([]Parameter, parametersCount)
	hasReturnValue := false
	for _, sub := range subclasses {
		for _, v := range sub.Variables {
			id, hasID, err := parameterID(v, variablesCount)
			if err != nil {
				return err
			}
			if hasID {
				p := &out.Parameters[id]
				if parametersMap[id] == 2 {
					if !sameVariableShape(p.Variable, v) {
						return newParseError(SemanticMismatch, base, "two parameter fragments at the same ID disagree")
					}
				} else {
					p.Variable = Variable{
						Name:        v.Name,
						Kind:        v.Kind,
						Basic:       v.Basic,
						ObjectType:  v.ObjectType,
						ArrayLength: v.ArrayLength,
					}
					parametersMap[id] = 2
				}
				for _, q := range v.Qualifiers {
					if q.Type == QualifierSint32 && q.Name == qualifierNameID {
						continue
					}
					if q.Type == QualifierBoolean && q.Name == qualifierNameIn {
						if p.Direction == DirectionUnknown {
							p.Direction = DirectionIn
						} else {
							p.Direction = DirectionInOut
						}
						continue
					}
					if q.Type == QualifierBoolean && q.Name == qualifierNameOut {
						if p.Direction == DirectionUnknown {
							p.Direction = DirectionOut
						} else {
							p.Direction = DirectionInOut
						}
						continue
					}
					if !hasEquivalentQualifier(p.Qualifiers, q) {
						p.Qualifiers = append(p.Qualifiers, q)
					}
				}
			} else {
				if hasReturnValue {
					return newParseError(SemanticMismatch, base, "method has more than one return value")
				}
				out.ReturnValue = v
				hasReturnValue = true
			}
		}
	}

	for i := range out.Parameters {
		if out.Parameters[i].Direction == DirectionUnknown {
			return newParseError(SemanticMismatch, base, "parameter has neither an in nor an out qualifier")
		}
	}
	return nil
}

// parameterID extracts a parameter fragment's "ID" qualifier value, if
// any, validating it against the total parameter count.
func parameterID(v Variable, variablesCount int) (id int, ok bool, err error) {
	found := false
	var value int32
	for _, q := range v.Qualifiers {
		if q.Type == QualifierSint32 && q.Name == qualifierNameID {
			if found {
				return 0, false, newParseError(SemanticMismatch, 0, "parameter has more than one ID qualifier")
			}
			found = true
			value = q.Sint32Value
		}
	}
	if !found {
		return 0, false, nil
	}
	if value < 0 || int(value) >= variablesCount {
		return 0, false, newParseError(SemanticMismatch, 0, "parameter ID is out of range")
	}
	return int(value), true, nil
}

// sameVariableShape reports whether two parameter fragments describing
// the same ID agree on name, kind, and (where applicable) array length
// and basic/object type - the original's cmp_variables.
func sameVariableShape(a, b Variable) bool {
	if a.Name != b.Name || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case VariableBasic:
		return a.Basic == b.Basic
	case VariableBasicArray:
		return a.Basic == b.Basic && a.ArrayLength == b.ArrayLength
	case VariableObject:
		return a.ObjectType == b.ObjectType
	case VariableObjectArray:
		return a.ObjectType == b.ObjectType && a.ArrayLength == b.ArrayLength
	default:
		return false
	}
}

// hasEquivalentQualifier reports whether qs already contains a
// qualifier equal to q by name, type, and value - the original's
// cmp_qualifiers, used to dedupe qualifier fragments merged across
// repeated sub-class entries for the same parameter ID.
func hasEquivalentQualifier(qs []Qualifier, q Qualifier) bool {
	for _, existing := range qs {
		if existing.Name != q.Name || existing.Type != q.Type {
			continue
		}
		switch q.Type {
		case QualifierBoolean:
			if existing.BoolValue == q.BoolValue {
				return true
			}
		case QualifierSint32:
			if existing.Sint32Value == q.Sint32Value {
				return true
			}
		case QualifierString:
			if existing.StringValue == q.StringValue {
				return true
			}
		}
	}
	return false
}
