package cpu

import (
	"fmt"
)

// Opcode is the first byte of an instruction.
type Opcode uint8

// OPCODE_COUNT is the number of distinct opcode values.
const OPCODE_COUNT = 256

// Register profile opcodes.
const (
	OP_HLT         = Opcode(0x00) // hlt
	OP_MOV_R32_I32 = Opcode(0x01) // mov r, imm32
	OP_ADD_R32_R32 = Opcode(0x02) // add r, r
	OP_JMP_ABS_I16 = Opcode(0x03) // jmp imm16
	OP_JMP_REL_I8  = Opcode(0x04) // jr simm8
	OP_JZ_REL_I8   = Opcode(0x05) // jz simm8
	OP_JNZ_REL_I8  = Opcode(0x06) // jnz simm8
	OP_JC_REL_I8   = Opcode(0x07) // jc simm8
	OP_JNC_REL_I8  = Opcode(0x08) // jnc simm8
	OP_MOV_R32_R32 = Opcode(0x09) // mov r, r
)

// Stack profile opcodes.
const (
	OP_RET = Opcode(0x00) // ret
)

// Operand encodings, used to decode and print instructions.
type Operand int

const (
	OPERAND_NONE  = Operand(iota) // opcode only
	OPERAND_R_I32                 // reg (low nibble), imm32
	OPERAND_R_R                   // reg (high nibble), reg (low nibble)
	OPERAND_I16                   // absolute imm16
	OPERAND_S8                    // relative simm8
)

// operandSize is the total instruction length for each encoding.
var operandSize = map[Operand]int{
	OPERAND_NONE:  1,
	OPERAND_R_I32: 6,
	OPERAND_R_R:   2,
	OPERAND_I16:   3,
	OPERAND_S8:    2,
}

// Size returns the instruction length in bytes, including the opcode.
func (opnd Operand) Size() int {
	return operandSize[opnd]
}

// Handler executes a single instruction at the current IP, including
// advancing the IP.
type Handler func(cpu *Cpu) error

// Op describes a single entry of a Profile dispatch table.
type Op struct {
	Code     Opcode
	Mnemonic string
	Operand  Operand
	Handler  Handler
}

// Valid returns true if the entry is an assigned opcode.
func (op Op) Valid() bool {
	return len(op.Mnemonic) != 0
}

// String returns the mnemonic of the op, or its hex value if unassigned.
func (op Op) String() string {
	if !op.Valid() {
		return fmt.Sprintf(".byte 0x%02x", uint8(op.Code))
	}
	return op.Mnemonic
}
