package cpu

import (
	"fmt"
	"iter"
	"strings"
)

// Instruction is a decoded view of the instruction at an address.
// The machine itself never decodes into an Instruction; it is used for
// tracing and disassembly.
type Instruction struct {
	Ip     uint32   // Address of the opcode.
	Op     Op       // Dispatch table entry.
	Bytes  []byte   // Raw instruction bytes.
	Reg    Register // First (or only) register operand.
	Src    Register // Second register operand.
	Imm    uint32   // Immediate value or absolute address.
	Offset int8     // Relative jump offset.
}

// Decode decodes the instruction at ip in memory, using profile.
func Decode(memory []byte, ip uint32, profile *Profile) (insn Instruction, err error) {
	code, err := load8(memory, ip)
	if err != nil {
		return
	}

	insn.Ip = ip
	insn.Op = profile.Op(Opcode(code))

	size := 1
	if insn.Op.Valid() {
		size = insn.Op.Operand.Size()
	}

	insn.Bytes, err = span(memory, ip, size)
	if err != nil {
		insn.Bytes = memory[ip : ip+1]
		return
	}

	if !insn.Op.Valid() {
		return
	}

	switch insn.Op.Operand {
	case OPERAND_R_I32:
		insn.Reg = Register(insn.Bytes[1] & 0xf)
		insn.Imm, _ = load32(insn.Bytes, 2)
	case OPERAND_R_R:
		insn.Reg = Register(insn.Bytes[1] >> 4)
		insn.Src = Register(insn.Bytes[1] & 0xf)
	case OPERAND_I16:
		imm, _ := load16(insn.Bytes, 1)
		insn.Imm = uint32(imm)
	case OPERAND_S8:
		insn.Offset = int8(insn.Bytes[1])
	}

	return
}

// Target returns the jump target of a relative jump, measured from the
// address of the jump itself.
func (insn Instruction) Target() uint32 {
	return insn.Ip + uint32(int32(insn.Offset))
}

// Text returns the assembly language representation of the instruction.
func (insn Instruction) Text() (text string) {
	if !insn.Op.Valid() {
		return insn.Op.String()
	}

	switch insn.Op.Operand {
	case OPERAND_NONE:
		text = insn.Op.Mnemonic
	case OPERAND_R_I32:
		text = fmt.Sprintf("%v %v 0x%x", insn.Op.Mnemonic, insn.Reg, insn.Imm)
	case OPERAND_R_R:
		text = fmt.Sprintf("%v %v %v", insn.Op.Mnemonic, insn.Reg, insn.Src)
	case OPERAND_I16:
		text = fmt.Sprintf("%v 0x%04x", insn.Op.Mnemonic, insn.Imm)
	case OPERAND_S8:
		text = fmt.Sprintf("%v %d ; 0x%04x", insn.Op.Mnemonic, insn.Offset, insn.Target())
	}

	return
}

// String returns the address, raw bytes and assembly text of the instruction.
func (insn Instruction) String() string {
	raw := make([]string, len(insn.Bytes))
	for n, b := range insn.Bytes {
		raw[n] = fmt.Sprintf("%02x", b)
	}

	return fmt.Sprintf("%04x: %-17s %v", insn.Ip, strings.Join(raw, " "), insn.Text())
}

// Disassemble decodes memory sequentially from offset 0. Iteration stops
// after the first decode error, which is yielded with its partial instruction.
func Disassemble(memory []byte, profile *Profile) iter.Seq2[Instruction, error] {
	return func(yield func(insn Instruction, err error) bool) {
		var ip uint32
		for int(ip) < len(memory) {
			insn, err := Decode(memory, ip, profile)
			if !yield(insn, err) || err != nil {
				return
			}
			ip += uint32(len(insn.Bytes))
		}
	}
}
