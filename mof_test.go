// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"strings"
	"testing"
)

func TestFormatClassFlags(t *testing.T) {
	tests := []struct {
		flags int32
		want  string
	}{
		{classFlagsUpdateOnly, "updateonly"},
		{classFlagsCreateOnly, "createonly"},
		{classFlagsSafeUpdate, "safeupdate"},
		{classFlagsUpdateOnly | classFlagsSafeUpdate, "updateonly,safeupdate"},
		{classFlagsForceUpdate, "forceupdate"},
		{classFlagsUpdateOnly | classFlagsForceUpdate, "updateonly,forceupdate"},
		{7, "7"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formatClassFlags(tt.flags); got != tt.want {
				t.Errorf("formatClassFlags(%d) = %q, want %q", tt.flags, got, tt.want)
			}
		})
	}
}

func TestEscapeMOFString(t *testing.T) {
	tests := []struct{ in, want string }{
		{`plain`, `plain`},
		{`has "quotes"`, `has \"quotes\"`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := escapeMOFString(tt.in); got != tt.want {
				t.Errorf("escapeMOFString(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDirectionPrefix(t *testing.T) {
	tests := []struct {
		d    ParameterDirection
		want string
	}{
		{DirectionIn, "in"},
		{DirectionOut, "out"},
		{DirectionInOut, "in, out"},
		{DirectionUnknown, ""},
	}
	for _, tt := range tests {
		if got := directionPrefix(tt.d); got != tt.want {
			t.Errorf("directionPrefix(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestRenderVariableScalar(t *testing.T) {
	v := Variable{Name: "Foo", Kind: VariableBasic, Basic: BasicSint32}
	got := renderVariable(v, "")
	want := "sint32 Foo"
	if got != want {
		t.Errorf("renderVariable() = %q, want %q", got, want)
	}
}

func TestRenderVariableArray(t *testing.T) {
	v := Variable{Name: "Bar", Kind: VariableBasicArray, Basic: BasicUint8, ArrayLength: 4}
	got := renderVariable(v, "")
	want := "uint8 Bar[4]"
	if got != want {
		t.Errorf("renderVariable() = %q, want %q", got, want)
	}
}

func TestRenderVariableWithQualifiers(t *testing.T) {
	v := Variable{
		Name:       "Baz",
		Kind:       VariableBasic,
		Basic:      BasicString,
		Qualifiers: []Qualifier{{Type: QualifierBoolean, Name: "read", BoolValue: true}},
	}
	got := renderVariable(v, "")
	want := "[read] string Baz"
	if got != want {
		t.Errorf("renderVariable() = %q, want %q", got, want)
	}
}

func TestRenderVariableWithDirectionPrefix(t *testing.T) {
	v := Variable{Name: "p", Kind: VariableBasic, Basic: BasicSint32}
	got := renderVariable(v, "in")
	want := "[in] sint32 p"
	if got != want {
		t.Errorf("renderVariable() = %q, want %q", got, want)
	}
}

func TestWriteMOFSimpleClass(t *testing.T) {
	model := &ClassModel{
		Classes: []Class{
			{
				Name: "Win32_Thing",
				Variables: []Variable{
					{Name: "Id", Kind: VariableBasic, Basic: BasicSint32},
				},
			},
		},
	}

	var b strings.Builder
	if err := WriteMOF(&b, model); err != nil {
		t.Fatalf("WriteMOF() error = %v", err)
	}
	got := b.String()
	if !strings.Contains(got, "class Win32_Thing {") {
		t.Errorf("WriteMOF() = %q, want it to contain the class declaration", got)
	}
	if !strings.Contains(got, "sint32 Id;") {
		t.Errorf("WriteMOF() = %q, want it to contain the variable declaration", got)
	}
}

func TestWriteMOFMethodVoidAndReturnValue(t *testing.T) {
	model := &ClassModel{
		Classes: []Class{
			{
				Name: "Win32_Thing",
				Methods: []Method{
					{Name: "DoVoid"},
					{
						Name:        "DoReturn",
						ReturnValue: Variable{Kind: VariableBasic, Basic: BasicUint32},
						Parameters: []Parameter{
							{Variable: Variable{Name: "arg", Kind: VariableBasic, Basic: BasicSint32}, Direction: DirectionIn},
						},
					},
				},
			},
		},
	}

	var b strings.Builder
	if err := WriteMOF(&b, model); err != nil {
		t.Fatalf("WriteMOF() error = %v", err)
	}
	got := b.String()
	if !strings.Contains(got, "void DoVoid();") {
		t.Errorf("WriteMOF() = %q, want a void method declaration", got)
	}
	if !strings.Contains(got, "uint32 DoReturn([in] sint32 arg);") {
		t.Errorf("WriteMOF() = %q, want a typed return method declaration", got)
	}
}

func TestWriteMOFNamespacePragmaLatch(t *testing.T) {
	model := &ClassModel{
		Classes: []Class{
			{Name: "A", Namespace: "root\\custom"},
			{Name: "B", Namespace: defaultNamespace},
		},
	}

	var b strings.Builder
	if err := WriteMOF(&b, model); err != nil {
		t.Fatalf("WriteMOF() error = %v", err)
	}
	got := b.String()
	if strings.Count(got, "#pragma namespace") != 2 {
		t.Errorf("WriteMOF() = %q, want the namespace pragma latched on for every later class", got)
	}
}

func TestWriteMOFClassFlagsPragma(t *testing.T) {
	model := &ClassModel{
		Classes: []Class{
			{Name: "A", ClassFlags: classFlagsUpdateOnly},
		},
	}

	var b strings.Builder
	if err := WriteMOF(&b, model); err != nil {
		t.Fatalf("WriteMOF() error = %v", err)
	}
	if !strings.Contains(b.String(), "#pragma classflags(updateonly)") {
		t.Errorf("WriteMOF() = %q, want a classflags pragma", b.String())
	}
}
