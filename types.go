// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

// QualifierType identifies what kind of value a Qualifier carries.
//
// Qualifier kinds. QualifierUnknown covers the 0x2008
// ValueMap/Values shape and any other type tag the decoder does not
// recognize; such qualifiers are warned about and decoded as a
// zero-value Qualifier. Variable qualifier lists drop them; class and
// method qualifier lists keep that zero-value placeholder.
type QualifierType int32

const (
	QualifierUnknown QualifierType = iota
	QualifierBoolean
	QualifierSint32
	QualifierString
)

func (t QualifierType) String() string {
	switch t {
	case QualifierBoolean:
		return "Boolean"
	case QualifierSint32:
		return "Numeric"
	case QualifierString:
		return "String"
	default:
		return "Unknown"
	}
}

// Qualifier is a single [Name(Value) : ToSubclass] annotation attached
// to a class, variable, or method.
type Qualifier struct {
	Name            string
	Type            QualifierType
	ToInstance      bool
	ToSubclass      bool
	DisableOverride bool
	Amended         bool
	BoolValue       bool
	Sint32Value     int32
	StringValue     string
}

// VariableKind distinguishes scalar vs array and basic vs object-typed
// properties and parameters.
type VariableKind int

const (
	VariableUnknown VariableKind = iota
	VariableBasic
	VariableObject
	VariableBasicArray
	VariableObjectArray
)

// BasicType enumerates the CIM scalar types a Variable may hold when its
// Kind is VariableBasic or VariableBasicArray.
type BasicType int

const (
	BasicUnknown BasicType = iota
	BasicString
	BasicSint32
	BasicUint32
	BasicSint16
	BasicUint16
	BasicSint64
	BasicUint64
	BasicSint8
	BasicUint8
	BasicDatetime
	BasicBoolean
)

func (t BasicType) String() string {
	switch t {
	case BasicString:
		return "string"
	case BasicSint32:
		return "sint32"
	case BasicUint32:
		return "uint32"
	case BasicSint16:
		return "sint16"
	case BasicUint16:
		return "uint16"
	case BasicSint64:
		return "sint64"
	case BasicUint64:
		return "uint64"
	case BasicSint8:
		return "sint8"
	case BasicUint8:
		return "uint8"
	case BasicDatetime:
		return "datetime"
	case BasicBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// Variable is a class property or a method parameter/return value.
// ObjectType is set only when Kind is VariableObject or
// VariableObjectArray; Basic is set only for the scalar kinds.
// ArrayLength holds the "MAX" qualifier's value for array variables,
// and is 0 when the variable is not an array or carries no MAX
// qualifier (the original decoder never distinguishes the two).
type Variable struct {
	Name        string
	Qualifiers  []Qualifier
	Kind        VariableKind
	Basic       BasicType
	ObjectType  string
	ArrayLength int32
}

// ParameterDirection is derived from a method parameter's in/out
// qualifiers.
type ParameterDirection int

const (
	DirectionUnknown ParameterDirection = iota
	DirectionIn
	DirectionOut
	DirectionInOut
)

func (d ParameterDirection) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "in+out"
	default:
		return "unknown"
	}
}

// Parameter pairs a method parameter Variable with its derived
// direction.
type Parameter struct {
	Variable
	Direction ParameterDirection
}

// Method is a class member function. ReturnValue.Kind is
// VariableUnknown for a void method.
type Method struct {
	Name       string
	Qualifiers []Qualifier
	Parameters []Parameter
	ReturnValue Variable
}

// Class is a single MOF class definition.
type Class struct {
	Name           string
	Namespace      string
	SuperclassName string
	ClassFlags     int32
	Qualifiers     []Qualifier
	Variables      []Variable
	Methods        []Method
}

// ClassModel is the decoded BMF container: an ordered sequence of
// classes.
type ClassModel struct {
	Classes []Class
}
