// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind classifies a decode failure.
type Kind int

const (
	// InvalidSize is returned when a length field does not fit the
	// remaining buffer, over/underflows, or otherwise fails a fits()
	// bounds check.
	InvalidSize Kind = iota

	// InvalidMagic is returned when a container signature (the outer
	// "BMOF" tag, the "BMOFQUALFLAVOR11" side-table tag) does not match.
	InvalidMagic

	// InvalidUnknown is returned when a reserved or fixed header word
	// does not hold its expected constant (a "must be zero" field that
	// is nonzero, the root header's {0x1,0x1}, a sub-record marker), or
	// when a value is outside its fixed set (a boolean qualifier value
	// other than 0 or 0xFFFF, an object CIMTYPE without "object:").
	InvalidUnknown

	// InvalidType is returned when a CIMTYPE qualifier names a basic
	// type the decoder does not know.
	InvalidType

	// SemanticMismatch is returned when two independently-decoded
	// values that are supposed to agree do not: a flavor-table
	// augmentation naming the wrong qualifier type, two parameter
	// fragments at the same ID disagreeing in shape, a CIMTYPE string
	// disagreeing with the wire type tag.
	SemanticMismatch

	// Unsupported marks a recognized-but-unhandled construct. It never
	// reaches a ParseError: it is always logged and the decoder
	// continues.
	Unsupported

	// LeftoverFlavor is returned when the auxiliary flavor side table
	// has an entry that no qualifier in the stream consumed.
	LeftoverFlavor
)

func (k Kind) String() string {
	switch k {
	case InvalidSize:
		return "InvalidSize"
	case InvalidMagic:
		return "InvalidMagic"
	case InvalidUnknown:
		return "InvalidUnknown"
	case InvalidType:
		return "InvalidType"
	case SemanticMismatch:
		return "SemanticMismatch"
	case Unsupported:
		return "Unsupported"
	case LeftoverFlavor:
		return "LeftoverFlavor"
	default:
		return "Unknown"
	}
}

// ParseError is returned by every fatal decode failure. It carries
// enough to reproduce where in the decoder and where in the input the
// failure happened: the decode function's name and the byte offset it
// was working at.
type ParseError struct {
	Kind   Kind
	Func   string
	Offset uint32
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bmf: %s at %s (offset 0x%x): %s", e.Kind, e.Func, e.Offset, e.Msg)
}

// Is lets callers match a ParseError by Kind via errors.Is(err, bmf.ErrInvalidSize)
// style sentinels below, and lets two ParseErrors of the same Kind compare equal.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// newParseError builds a ParseError tagged with the decode function
// that raised it, i.e. newParseError's immediate caller.
func newParseError(kind Kind, offset uint32, msg string) *ParseError {
	name := "unknown"
	if pc, _, _, ok := runtime.Caller(1); ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			name = fn.Name()
		}
	}
	return &ParseError{Kind: kind, Func: name, Offset: offset, Msg: msg}
}

// Sentinel errors for use with errors.Is, matching the granularity
// callers most often need to branch on.
var (
	ErrInvalidSize      = &ParseError{Kind: InvalidSize}
	ErrInvalidMagic     = &ParseError{Kind: InvalidMagic}
	ErrInvalidUnknown   = &ParseError{Kind: InvalidUnknown}
	ErrInvalidType      = &ParseError{Kind: InvalidType}
	ErrSemanticMismatch = &ParseError{Kind: SemanticMismatch}
	ErrLeftoverFlavor   = &ParseError{Kind: LeftoverFlavor}
)

// ErrTooSmall is the one plain sentinel that is not source-located: it
// is returned before any offset bookkeeping exists, when the whole
// input is smaller than the smallest possible container.
var ErrTooSmall = errors.New("bmf: input smaller than the smallest possible BMOF container")
