// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"fmt"
	"io"
	"strings"
)

const defaultNamespace = `root\default`

// WriteMOF renders a decoded ClassModel as textual MOF source, ported
// from the original C decompiler's print_classes. Once any class needs
// an explicit "#pragma namespace" directive, every later class gets one
// too even if its namespace matches defaultNamespace - a one-way latch
// the original never resets across the loop.
func WriteMOF(w io.Writer, model *ClassModel) error {
	printNamespace := false
	for i, class := range model.Classes {
		if class.Name == "" {
			continue
		}
		if class.Namespace != "" && (printNamespace || class.Namespace != defaultNamespace) {
			fmt.Fprintf(w, "#pragma namespace(\"%s\")\n", escapeMOFString(class.Namespace))
			printNamespace = true
		}
		if class.ClassFlags != 0 {
			fmt.Fprintf(w, "#pragma classflags(%s)\n", formatClassFlags(class.ClassFlags))
		}
		if len(class.Qualifiers) > 0 {
			fmt.Fprintf(w, "%s\n", renderQualifiers(class.Qualifiers, ""))
		}
		fmt.Fprintf(w, "class %s ", escapeMOFString(class.Name))
		if class.SuperclassName != "" {
			fmt.Fprintf(w, ": %s ", escapeMOFString(class.SuperclassName))
		}
		fmt.Fprint(w, "{\n")

		for _, v := range class.Variables {
			fmt.Fprintf(w, "  %s;\n", renderVariable(v, ""))
		}
		if len(class.Variables) > 0 && len(class.Methods) > 0 {
			fmt.Fprint(w, "\n")
		}
		for _, m := range class.Methods {
			fmt.Fprint(w, "  ")
			if len(m.Qualifiers) > 0 {
				fmt.Fprintf(w, "%s ", renderQualifiers(m.Qualifiers, ""))
			}
			if m.ReturnValue.Kind != VariableUnknown {
				fmt.Fprint(w, renderVariableType(m.ReturnValue))
			} else {
				fmt.Fprint(w, "void")
			}
			fmt.Fprintf(w, " %s(", escapeMOFString(m.Name))
			for k, p := range m.Parameters {
				fmt.Fprint(w, renderVariable(p.Variable, directionPrefix(p.Direction)))
				if k != len(m.Parameters)-1 {
					fmt.Fprint(w, ", ")
				}
			}
			fmt.Fprint(w, ");\n")
		}
		fmt.Fprint(w, "};\n")
		if i != len(model.Classes)-1 {
			fmt.Fprint(w, "\n")
		}
	}
	return nil
}

func directionPrefix(d ParameterDirection) string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "in, out"
	default:
		return ""
	}
}

// escapeMOFString backslash-escapes double quotes and backslashes, the
// way print_string does character by character.
func escapeMOFString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// formatClassFlags translates the classflags bitfield into its literal
// names, falling back to the raw integer for any other bit combination.
func formatClassFlags(flags int32) string {
	switch flags {
	case classFlagsUpdateOnly:
		return "updateonly"
	case classFlagsCreateOnly:
		return "createonly"
	case classFlagsSafeUpdate:
		return "safeupdate"
	case classFlagsUpdateOnly | classFlagsSafeUpdate:
		return "updateonly,safeupdate"
	case classFlagsForceUpdate:
		return "forceupdate"
	case classFlagsUpdateOnly | classFlagsForceUpdate:
		return "updateonly,forceupdate"
	default:
		return fmt.Sprintf("%d", flags)
	}
}

// renderQualifiers formats a "[Name(Value) : ToSubclass, ...]" block. An
// empty prefix behaves like the original's NULL prefix argument: it is
// simply omitted rather than rendered as an empty qualifier entry.
func renderQualifiers(qs []Qualifier, prefix string) string {
	if len(qs) == 0 && prefix == "" {
		return ""
	}
	var b strings.Builder
	b.WriteByte('[')
	if prefix != "" {
		b.WriteString(prefix)
		if len(qs) > 0 {
			b.WriteString(", ")
		}
	}
	for i, q := range qs {
		b.WriteString(escapeMOFString(q.Name))
		switch q.Type {
		case QualifierBoolean:
			if !q.BoolValue {
				b.WriteString("(FALSE)")
			}
		case QualifierSint32:
			fmt.Fprintf(&b, "(%d)", q.Sint32Value)
		case QualifierString:
			fmt.Fprintf(&b, "(\"%s\")", escapeMOFString(q.StringValue))
		default:
			b.WriteString("unknown")
		}
		if q.ToSubclass {
			b.WriteString(" : ToSubclass")
		}
		if i != len(qs)-1 {
			b.WriteString(", ")
		}
	}
	b.WriteByte(']')
	return b.String()
}

// renderVariableType renders just the type name ("sint32", "string",
// the object class name, ...), without the variable's own name.
func renderVariableType(v Variable) string {
	switch v.Kind {
	case VariableBasic, VariableBasicArray:
		return v.Basic.String()
	case VariableObject, VariableObjectArray:
		return v.ObjectType
	default:
		return "unknown"
	}
}

// renderVariable renders a full property/parameter declaration:
// optional qualifier block, type, name, and array suffix.
func renderVariable(v Variable, prefix string) string {
	var b strings.Builder
	if len(v.Qualifiers) > 0 || prefix != "" {
		b.WriteString(renderQualifiers(v.Qualifiers, prefix))
		b.WriteByte(' ')
	}
	b.WriteString(renderVariableType(v))
	b.WriteByte(' ')
	b.WriteString(escapeMOFString(v.Name))
	if v.Kind == VariableBasicArray || v.Kind == VariableObjectArray {
		fmt.Fprintf(&b, "[%d]", v.ArrayLength)
	}
	return b.String()
}
