// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import "testing"

// buildScalarVariableRecord returns a complete, self-contained variable
// record (the same shape TestDecodeVariableScalarSint32 builds) for
// embedding into a class data / parameters block. Unlike a variable
// decoded standalone, an embedded variable's own offset0 must hold its
// total record length: that is what the owning class data's variable
// block loop reads to size the slice it hands to decodeVariable.
func buildScalarVariableRecord(name string) []byte {
	n := utf16le(name)
	buf := buildVariableHeader(wireTypeSint32, 0xFFFFFFFF, uint32(len(n)))
	buf = append(buf, n...)
	buf = append(buf, putUint32LE(0)...)
	buf = append(buf, putUint32LE(0)...)
	copy(buf[0:4], putUint32LE(uint32(len(buf))))
	return buf
}

func buildClassDataNoQualifiers(variables ...[]byte) []byte {
	var varBlock []byte
	for _, v := range variables {
		varBlock = append(varBlock, v...)
	}
	len2 := uint32(8 + len(varBlock))
	buf := putUint32LE(8) // len1: the empty qualifier block's own 8-byte header
	buf = append(buf, putUint32LE(0)...)
	buf = append(buf, putUint32LE(len2)...)
	buf = append(buf, putUint32LE(uint32(len(variables)))...)
	buf = append(buf, varBlock...)
	return buf
}

// buildClassRecord builds a complete class record. decodeClass itself
// never reads offset0 (the record's own total length, used only by an
// owning root/class-list loop to size the slice it hands over), so it
// is filled in here for embedding into a root region.
func buildClassRecord(classData []byte) []byte {
	buf := make([]byte, 20)
	copy(buf[8:12], putUint32LE(8)) // len1, matching buildClassDataNoQualifiers
	copy(buf[12:16], putUint32LE(uint32(len(classData))))
	copy(buf[16:20], putUint32LE(classKindNormal))
	buf = append(buf, classData...)
	buf = append(buf, putUint32LE(8)...) // methods block length
	buf = append(buf, putUint32LE(0)...) // method count
	copy(buf[0:4], putUint32LE(uint32(len(buf))))
	return buf
}

func TestDecodeClassWithOneVariableNoMethods(t *testing.T) {
	classData := buildClassDataNoQualifiers(buildScalarVariableRecord("Foo"))
	buf := buildClassRecord(classData)

	d := newTestDecoder()
	c, err := d.decodeClass(buf, 0)
	if err != nil {
		t.Fatalf("decodeClass() error = %v", err)
	}
	if len(c.Variables) != 1 || c.Variables[0].Name != "Foo" {
		t.Errorf("decodeClass() = %+v, want one variable named \"Foo\"", c.Variables)
	}
	if len(c.Methods) != 0 {
		t.Errorf("decodeClass() = %+v, want no methods", c.Methods)
	}
}

func TestDecodeClassReservedFieldNonzero(t *testing.T) {
	buf := make([]byte, 8)
	copy(buf[4:8], putUint32LE(1))

	d := newTestDecoder()
	if _, err := d.decodeClass(buf, 0); err == nil {
		t.Error("decodeClass() with a nonzero reserved field = nil error, want InvalidUnknown")
	}
}

func TestDecodeClassTooShortForHeaderWarnsAndSkips(t *testing.T) {
	buf := make([]byte, 12) // size < 20, but >= 8 and reserved field zero

	d := newTestDecoder()
	c, err := d.decodeClass(buf, 0)
	if err != nil {
		t.Fatalf("decodeClass() error = %v, want nil", err)
	}
	if len(c.Variables) != 0 || len(c.Methods) != 0 {
		t.Errorf("decodeClass() = %+v, want a dropped (zero-value) class", c)
	}
}

func TestDecodeClassInstanceOfWarnsAndSkips(t *testing.T) {
	buf := make([]byte, 20)
	copy(buf[16:20], putUint32LE(classKindInstanceOf))

	d := newTestDecoder()
	c, err := d.decodeClass(buf, 0)
	if err != nil {
		t.Fatalf("decodeClass() error = %v, want nil", err)
	}
	if len(c.Variables) != 0 {
		t.Errorf("decodeClass() = %+v, want a dropped (zero-value) class", c)
	}
}

func TestDecodeClassUnknownKindWarnsAndSkips(t *testing.T) {
	buf := make([]byte, 20)
	copy(buf[16:20], putUint32LE(0xAB))

	d := newTestDecoder()
	c, err := d.decodeClass(buf, 0)
	if err != nil {
		t.Fatalf("decodeClass() error = %v, want nil", err)
	}
	if len(c.Variables) != 0 {
		t.Errorf("decodeClass() = %+v, want a dropped (zero-value) class", c)
	}
}

func TestDecodeClassDataQualifiersLengthMismatch(t *testing.T) {
	classData := buildClassDataNoQualifiers(buildScalarVariableRecord("Foo"))

	d := newTestDecoder()
	if _, err := d.decodeClassData(classData, 99, true, 0); err == nil {
		t.Error("decodeClassData() with a mismatched size1 = nil error, want InvalidSize")
	}
}

func TestDecodeClassDataWithoutQualifiers(t *testing.T) {
	// With withQualifiers false, tmp resets to the start of the buffer:
	// the leading 4 bytes serve double duty as both the size1 the
	// caller must match and, reinterpreted, the variable block's own
	// declared length (mirroring how parse_class_method_parameters
	// calls parse_class_data(tmp+20, len2, len2, 0, ...) for a
	// __PARAMETERS sub-class).
	variable := buildScalarVariableRecord("Bar")
	size := uint32(8 + len(variable))
	classData := putUint32LE(size)
	classData = append(classData, putUint32LE(1)...)
	classData = append(classData, variable...)

	d := newTestDecoder()
	c, err := d.decodeClassData(classData, size, false, 0)
	if err != nil {
		t.Fatalf("decodeClassData() error = %v", err)
	}
	if len(c.Variables) != 1 || c.Variables[0].Name != "Bar" {
		t.Errorf("decodeClassData() = %+v, want one variable named \"Bar\"", c.Variables)
	}
}
