// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bmf

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// A File represents an open BMF file backed by a memory-mapped region or
// an in-memory buffer.
type File struct {
	ClassModel
	data mmap.MMap
	raw  []byte
	f    *os.File
	opts *Options
}

// New memory-maps name and returns a File ready for Parse. The mapping
// stays open until Close is called.
func New(name string, opts *Options) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{data: data, f: f, opts: opts.withDefaults()}, nil
}

// NewBytes wraps an in-memory buffer in a File ready for Parse. data is
// held by reference, not copied.
func NewBytes(data []byte, opts *Options) (*File, error) {
	return &File{raw: data, opts: opts.withDefaults()}, nil
}

// bytes returns the backing buffer regardless of whether the File was
// opened from a path or constructed from a byte slice.
func (file *File) bytes() []byte {
	if file.data != nil {
		return file.data
	}
	return file.raw
}

// Close releases the memory-mapped region, if any, and closes the
// underlying file handle.
func (file *File) Close() error {
	if file.data != nil {
		_ = file.data.Unmap()
	}
	if file.f != nil {
		return file.f.Close()
	}
	return nil
}

// Parse decodes the File's backing buffer and stores the result on the
// File itself.
func (file *File) Parse() error {
	model, err := Parse(file.bytes(), file.opts)
	if err != nil {
		return err
	}
	file.ClassModel = *model
	return nil
}
