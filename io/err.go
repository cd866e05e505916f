package io

import (
	"github.com/ezrec/robovac/translate"
)

var f = translate.From

// ErrProgramTooLarge is a program image that does not fit in memory.
type ErrProgramTooLarge struct {
	Capacity int
}

func (err ErrProgramTooLarge) Error() string {
	return f("program exceeds available memory (%v bytes available)", err.Capacity)
}

// ErrLoad is a failure to open or read a program image.
type ErrLoad struct {
	Path string
	Err  error
}

func (err *ErrLoad) Error() string {
	if len(err.Path) == 0 {
		return f("error reading program: %v", err.Err)
	}
	return f("error loading program %v: %v", err.Path, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
