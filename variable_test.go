// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import "testing"

// buildQualifierRecord assembles a self-contained qualifier record the
// way a variable/class/method qualifier block expects to find it: the
// record's own first 4 bytes hold its total encoded length, which is
// what the caller's loop reads to size the slice handed to
// decodeQualifier (decodeQualifier itself never looks at that word).
func buildQualifierRecord(typ qualifierType, name string, value []byte) []byte {
	nameBytes := utf16le(name)
	rec := buildQualifierHeader(typ, uint32(len(nameBytes)))
	rec = append(rec, nameBytes...)
	rec = append(rec, value...)
	copy(rec[0:4], putUint32LE(uint32(len(rec))))
	return rec
}

func buildVariableHeader(typ, slen, length uint32) []byte {
	buf := make([]byte, 20)
	copy(buf[4:8], putUint32LE(typ))
	copy(buf[12:16], putUint32LE(slen))
	copy(buf[16:20], putUint32LE(length))
	return buf
}

func TestDecodeVariableScalarSint32(t *testing.T) {
	name := utf16le("Foo")
	buf := buildVariableHeader(wireTypeSint32, 0xFFFFFFFF, uint32(len(name)))
	buf = append(buf, name...)
	buf = append(buf, putUint32LE(0)...) // empty qualifier block
	buf = append(buf, putUint32LE(0)...) // count = 0

	d := newTestDecoder()
	v, err := d.decodeVariable(buf, 0)
	if err != nil {
		t.Fatalf("decodeVariable() error = %v", err)
	}
	if v.Kind != VariableBasic || v.Basic != BasicSint32 || v.Name != "Foo" {
		t.Errorf("decodeVariable() = %+v, want scalar sint32 \"Foo\"", v)
	}
}

func TestDecodeVariableArrayAbsorbsMAX(t *testing.T) {
	name := utf16le("Bar")
	buf := buildVariableHeader(variableShapeArray<<8|wireTypeSint32, 0xFFFFFFFF, uint32(len(name)))
	buf = append(buf, name...)

	qual := buildQualifierRecord(wireQualifierSint32, "MAX", putUint32LE(5))
	buf = append(buf, putUint32LE(uint32(len(qual)+1))...) // qualBlockLen, strictly > qlen
	buf = append(buf, putUint32LE(1)...)                   // count
	buf = append(buf, qual...)

	d := newTestDecoder()
	v, err := d.decodeVariable(buf, 0)
	if err != nil {
		t.Fatalf("decodeVariable() error = %v", err)
	}
	if v.Kind != VariableBasicArray || v.Basic != BasicSint32 || v.ArrayLength != 5 {
		t.Errorf("decodeVariable() = %+v, want an array sint32 with ArrayLength 5", v)
	}
	if len(v.Qualifiers) != 0 {
		t.Errorf("decodeVariable() kept MAX as an ordinary qualifier: %+v", v.Qualifiers)
	}
}

func TestDecodeVariableObjectAbsorbsCIMTYPE(t *testing.T) {
	name := utf16le("Obj")
	buf := buildVariableHeader(wireTypeObject, 0xFFFFFFFF, uint32(len(name)))
	buf = append(buf, name...)

	value := append(utf16le("object:Foo"), 0x00, 0x00)
	qual := buildQualifierRecord(wireQualifierString, "CIMTYPE", value)
	buf = append(buf, putUint32LE(uint32(len(qual)+1))...)
	buf = append(buf, putUint32LE(1)...)
	buf = append(buf, qual...)

	d := newTestDecoder()
	v, err := d.decodeVariable(buf, 0)
	if err != nil {
		t.Fatalf("decodeVariable() error = %v", err)
	}
	if v.Kind != VariableObject || v.ObjectType != "Foo" {
		t.Errorf("decodeVariable() = %+v, want an object variable with ObjectType \"Foo\"", v)
	}
	if len(v.Qualifiers) != 0 {
		t.Errorf("decodeVariable() kept CIMTYPE as an ordinary qualifier: %+v", v.Qualifiers)
	}
}

func TestDecodeVariableObjectCIMTYPEMissingPrefix(t *testing.T) {
	name := utf16le("Obj")
	buf := buildVariableHeader(wireTypeObject, 0xFFFFFFFF, uint32(len(name)))
	buf = append(buf, name...)

	value := append(utf16le("Foo"), 0x00, 0x00)
	qual := buildQualifierRecord(wireQualifierString, "CIMTYPE", value)
	buf = append(buf, putUint32LE(uint32(len(qual)+1))...)
	buf = append(buf, putUint32LE(1)...)
	buf = append(buf, qual...)

	d := newTestDecoder()
	if _, err := d.decodeVariable(buf, 0); err == nil {
		t.Error("decodeVariable() with a CIMTYPE missing the \"object:\" prefix = nil error, want InvalidUnknown")
	}
}

func TestDecodeVariableUnknownShapeWarnsAndSkips(t *testing.T) {
	buf := buildVariableHeader(0x4003, 0, 0)

	d := newTestDecoder()
	v, err := d.decodeVariable(buf, 0)
	if err != nil {
		t.Fatalf("decodeVariable() error = %v, want nil", err)
	}
	if v.Name != "" || v.Kind != 0 {
		t.Errorf("decodeVariable() = %+v, want a dropped (zero-value) variable", v)
	}
}

func TestDecodeVariableUnknownBasicTypeWarnsAndSkips(t *testing.T) {
	buf := buildVariableHeader(0xFE, 0, 0)

	d := newTestDecoder()
	v, err := d.decodeVariable(buf, 0)
	if err != nil {
		t.Fatalf("decodeVariable() error = %v, want nil", err)
	}
	if v.Name != "" || v.Kind != 0 {
		t.Errorf("decodeVariable() = %+v, want a dropped (zero-value) variable", v)
	}
}
