// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"errors"
	"testing"
)

func buildContainer(root []byte) []byte {
	length := uint32(8 + len(root))
	buf := putUint32LE(BMOFMagic)
	buf = append(buf, putUint32LE(length)...)
	buf = append(buf, root...)
	return buf
}

func buildRootHeader(classes ...[]byte) []byte {
	var body []byte
	for _, c := range classes {
		body = append(body, c...)
	}
	buf := putUint32LE(1)
	buf = append(buf, putUint32LE(1)...)
	buf = append(buf, putUint32LE(uint32(len(classes)))...)
	buf = append(buf, body...)
	return buf
}

func TestParseEmptyRoot(t *testing.T) {
	data := buildContainer(buildRootHeader())

	model, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(model.Classes) != 0 {
		t.Errorf("Parse() = %+v, want no classes", model.Classes)
	}
}

func TestParseOneClass(t *testing.T) {
	classData := buildClassDataNoQualifiers(buildScalarVariableRecord("Foo"))
	class := buildClassRecord(classData)
	data := buildContainer(buildRootHeader(class))

	model, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(model.Classes) != 1 || len(model.Classes[0].Variables) != 1 || model.Classes[0].Variables[0].Name != "Foo" {
		t.Errorf("Parse() = %+v, want one class with one variable \"Foo\"", model.Classes)
	}
}

func TestParseTooSmall(t *testing.T) {
	if _, err := Parse([]byte{0x01, 0x02}, nil); !errors.Is(err, ErrTooSmall) {
		t.Errorf("Parse() error = %v, want ErrTooSmall", err)
	}
}

func TestParseBadMagic(t *testing.T) {
	data := buildContainer(buildRootHeader())
	data[0] = 0x00

	if _, err := Parse(data, nil); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("Parse() error = %v, want ErrInvalidMagic", err)
	}
}

func TestParseRootHeaderMagicMismatch(t *testing.T) {
	root := buildRootHeader()
	root[0] = 0x02 // corrupt the {0x1, 0x1} root header
	data := buildContainer(root)

	if _, err := Parse(data, nil); !errors.Is(err, ErrInvalidUnknown) {
		t.Errorf("Parse() error = %v, want ErrInvalidUnknown", err)
	}
}

func TestParseContainerLengthExceedsInput(t *testing.T) {
	data := buildContainer(buildRootHeader())
	// Claim a container length far beyond the actual input.
	copy(data[4:8], putUint32LE(uint32(len(data)+100)))

	if _, err := Parse(data, nil); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Parse() error = %v, want ErrInvalidSize", err)
	}
}

func TestParseFlavorTable(t *testing.T) {
	root := buildRootHeader()
	containerLen := uint32(8 + len(root))

	flavorHeader := append([]byte(FlavorTableMagic), putUint32LE(0)...) // count = 0
	data := putUint32LE(BMOFMagic)
	data = append(data, putUint32LE(containerLen)...)
	data = append(data, root...)
	data = append(data, flavorHeader...)

	model, err := Parse(data, nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(model.Classes) != 0 {
		t.Errorf("Parse() = %+v, want no classes", model.Classes)
	}
}

func TestReleaseClearsClasses(t *testing.T) {
	model := &ClassModel{Classes: []Class{{Name: "Foo"}}}
	Release(model)
	if model.Classes != nil {
		t.Errorf("Release() left Classes = %v, want nil", model.Classes)
	}
}
