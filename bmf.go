// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

// Container magic values.
const (
	// BMOFMagic is "BMOF" read as a little-endian uint32: the four bytes
	// that open every Binary MOF file are 46 4F 4D 42 ("FOMB").
	BMOFMagic = 0x424D4F46

	// FlavorTableMagic is the literal ASCII tag that opens the auxiliary
	// qualifier-flavor side table, when one is present.
	FlavorTableMagic = "BMOFQUALFLAVOR11"
)

// Root header fields: a fixed {0x1, 0x1, count} triple.
const (
	rootHeaderWord0 = 0x1
	rootHeaderWord1 = 0x1
)

// Class header "unknown" / "kind" sentinels.
const (
	classKindNormal     = 0x0
	classKindInstanceOf = 0x1
)

// Method header type tag: either a plain method (0x0) or one
// carrying a non-void return type (0x200D).
const (
	methodTypePlain       = 0x00
	methodTypeReturnValue = 0x200D
)

// qualifierType enumerates the four on-wire qualifier kinds.
type qualifierType uint32

const (
	wireQualifierBoolean qualifierType = 0x0B
	wireQualifierSint32  qualifierType = 0x03
	wireQualifierString  qualifierType = 0x08
	// wireQualifierValueMap is the ValueMap/Values qualifier shape; the
	// original decoder never parses its body (see DESIGN.md's Open
	// Question log), so bmfdec warns and skips it the same way.
	wireQualifierValueMap qualifierType = 0x2008
)

// flavorTag enumerates the second-part ("flavor") augmentation types
// that the auxiliary BMOFQUALFLAVOR11 table attaches to a qualifier by
// absolute offset.
type flavorTag uint32

const (
	flavorDynamic    flavorTag = 0x01 // augments a Boolean qualifier named "Dynamic"
	flavorToSubclass flavorTag = 0x02 // sets Qualifier.ToSubclass
	flavorCimtype    flavorTag = 0x03 // augments a String qualifier named "CIMTYPE"
	flavorID         flavorTag = 0x11 // augments a Sint32 qualifier named "ID"
)

// variable type-tag high byte: selects scalar vs array.
const (
	variableShapeScalar = 0x00
	variableShapeArray  = 0x20
)

// variable type-tag low byte: selects the basic CIM type, or
// 0x0D for a reference-typed ("object") variable.
const (
	wireTypeSint16   = 0x02
	wireTypeSint32   = 0x03
	wireTypeString   = 0x08
	wireTypeBoolean  = 0x0B
	wireTypeObject   = 0x0D
	wireTypeSint8    = 0x10
	wireTypeUint8    = 0x11
	wireTypeUint16   = 0x12
	wireTypeUint32   = 0x13
	wireTypeSint64   = 0x14
	wireTypeUint64   = 0x15
	wireTypeDatetime = 0x65
)

// pseudo-property names absorbed into Class fields rather than kept as
// ordinary Variables.
const (
	pseudoPropClass        = "__CLASS"
	pseudoPropNamespace    = "__NAMESPACE"
	pseudoPropSuperclass   = "__SUPERCLASS"
	pseudoPropClassFlags   = "__CLASSFLAGS"
	pseudoPropReturnValue  = "ReturnValue"
	pseudoPropParameters   = "__PARAMETERS"
	qualifierNameID        = "ID"
	qualifierNameMAX       = "MAX"
	qualifierNameCIMTYPE   = "CIMTYPE"
	qualifierNameDynamic   = "Dynamic"
	qualifierNameIn        = "in"
	qualifierNameOut       = "out"
	objectCIMTypePrefix    = "object:"
)

// classflags literal-set translation for MOF emission.
const (
	classFlagsUpdateOnly  = 1
	classFlagsCreateOnly  = 2
	classFlagsSafeUpdate  = 32
	classFlagsForceUpdate = 64
)
