// Package io loads robovac program images.
//
// A program image is raw instruction bytes with no header, copied into
// machine memory starting at offset 0.
package io

import (
	"io"
	"io/fs"
	"os"
)

// Rom is a program image, bounded by the memory it will be loaded into.
type Rom struct {
	Capacity int    // Maximum image size, in bytes.
	Data     []byte // Image contents.
}

// Load reads an entire image from a reader.
//
// On failure, Data is left unchanged.
func (rom *Rom) Load(input io.Reader) (err error) {
	// Read one past capacity to detect an oversized image.
	data, err := io.ReadAll(io.LimitReader(input, int64(rom.Capacity)+1))
	if err != nil {
		err = &ErrLoad{Err: err}
		return
	}

	if len(data) > rom.Capacity {
		err = ErrProgramTooLarge{Capacity: rom.Capacity}
		return
	}

	rom.Data = data

	return
}

// LoadFS reads an image from a file in a filesystem.
func (rom *Rom) LoadFS(fsys fs.FS, path string) (err error) {
	inf, err := fsys.Open(path)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}
	defer inf.Close()

	err = rom.Load(inf)
	if le, ok := err.(*ErrLoad); ok {
		le.Path = path
	}

	return
}

// LoadFile reads an image from a file in the operating system.
func (rom *Rom) LoadFile(path string) (err error) {
	inf, err := os.Open(path)
	if err != nil {
		err = &ErrLoad{Path: path, Err: err}
		return
	}
	defer inf.Close()

	err = rom.Load(inf)
	if le, ok := err.(*ErrLoad); ok {
		le.Path = path
	}

	return
}
