package cpu

import (
	"encoding/binary"
)

// MEMORY_SIZE is the default machine memory size, in bytes.
const MEMORY_SIZE = 4096

// span returns the length bytes of memory at addr, or ErrOutOfBounds.
func span(memory []byte, addr uint32, length int) (data []byte, err error) {
	end := uint64(addr) + uint64(length)
	if end > uint64(len(memory)) {
		err = &ErrOutOfBounds{Address: addr, Length: length, Capacity: len(memory)}
		return
	}

	data = memory[addr:end]
	return
}

// load8 reads a byte.
func load8(memory []byte, addr uint32) (value uint8, err error) {
	data, err := span(memory, addr, 1)
	if err != nil {
		return
	}

	value = data[0]
	return
}

// load16 reads a big-endian 16 bit value.
func load16(memory []byte, addr uint32) (value uint16, err error) {
	data, err := span(memory, addr, 2)
	if err != nil {
		return
	}

	value = binary.BigEndian.Uint16(data)
	return
}

// load32 reads a big-endian 32 bit value.
func load32(memory []byte, addr uint32) (value uint32, err error) {
	data, err := span(memory, addr, 4)
	if err != nil {
		return
	}

	value = binary.BigEndian.Uint32(data)
	return
}

// operand reads the byte following the opcode at the current IP.
func (cpu *Cpu) operand(offset uint32) (value uint8, err error) {
	return load8(cpu.Memory, cpu.Register[REG_IP]+offset)
}

// regPair decodes the packed register byte following the opcode.
// The high nibble is the first register, the low nibble the second.
func (cpu *Cpu) regPair() (hi, lo Register, err error) {
	value, err := cpu.operand(1)
	if err != nil {
		return
	}

	hi = Register(value >> 4)
	lo = Register(value & 0xf)
	return
}
