package cpu

import (
	"errors"

	"github.com/ezrec/robovac/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt         = errors.New(f("halt"))
	ErrInvalidLimit = errors.New(f("invalid opcode limit exceeded"))
	ErrProfileEmpty = errors.New(f("profile missing"))
	ErrProfile      = errors.New(f("profile unknown"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrRegisterInvalid    = errors.New(f("register invalid"))
	ErrTargetMissing      = errors.New(f("target missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrValueRange         = errors.New(f("value out of range"))
)

// ErrOpcode is an unassigned opcode found in the instruction stream.
type ErrOpcode struct {
	Ip     uint32
	Opcode Opcode
}

func (eo ErrOpcode) Error() string {
	return f("invalid opcode 0x%02x at 0x%04x", uint8(eo.Opcode), eo.Ip)
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrOutOfBounds is a memory access outside of the machine memory.
type ErrOutOfBounds struct {
	Address  uint32 // First byte accessed.
	Length   int    // Number of bytes accessed.
	Capacity int    // Size of the memory.
}

func (err *ErrOutOfBounds) Error() string {
	return f("access of %v bytes at 0x%04x outside of memory (%v bytes)", err.Length, err.Address, err.Capacity)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrJumpRange is a relative jump whose target does not fit in a signed byte.
type ErrJumpRange struct {
	Label  string
	Offset int
}

func (err ErrJumpRange) Error() string {
	return f("jump to %v offset %v out of range", err.Label, err.Offset)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseCharacter string

func (err ErrParseCharacter) Error() string {
	return f("'%v' is not a character", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
