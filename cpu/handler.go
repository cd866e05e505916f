package cpu

import (
	"errors"
)

// opHlt stops the machine. The IP is left at the halt instruction, the
// same as when the halt is intercepted by Tick.
func opHlt(cpu *Cpu) (err error) {
	cpu.Halted = true
	return
}

// opRet is the placeholder return of the stack profile.
func opRet(cpu *Cpu) (err error) {
	cpu.Register[REG_IP]++
	return
}

// opMovR32I32 copies a 32-bit immediate value to a register.
func opMovR32I32(cpu *Cpu) (err error) {
	ip := cpu.Register[REG_IP]

	reg, err := cpu.operand(1)
	if err != nil {
		return
	}

	value, err := load32(cpu.Memory, ip+2)
	if err != nil {
		return
	}

	cpu.Register[reg&0xf] = value
	cpu.Register[REG_IP] += 6

	return
}

// opMovR32R32 copies one register value to another register.
func opMovR32R32(cpu *Cpu) (err error) {
	dst, src, err := cpu.regPair()
	if err != nil {
		return
	}

	cpu.Register[dst] = cpu.Register[src]
	cpu.Register[REG_IP] += 2

	return
}

// opAddR32R32 adds two registers, storing the sum in the first register
// and updating the arithmetic flags.
func opAddR32R32(cpu *Cpu) (err error) {
	dst, src, err := cpu.regPair()
	if err != nil {
		return
	}

	input := cpu.Register[dst]
	operand := cpu.Register[src]

	result, flags := aluAdd(input, operand, Flag(cpu.Register[REG_FL]))
	cpu.Register[dst] = result
	cpu.Register[REG_FL] = uint32(flags)

	cpu.Register[REG_IP] += 2

	return
}

// opJmpAbsI16 sets IP to an absolute 16-bit address.
func opJmpAbsI16(cpu *Cpu) (err error) {
	target, err := load16(cpu.Memory, cpu.Register[REG_IP]+1)
	if err != nil {
		return
	}

	cpu.Register[REG_IP] = uint32(target)

	return
}

// jumpRel moves IP by the signed byte following the opcode, measured from
// the address of the jump itself, if taken. Otherwise, it skips the jump.
func (cpu *Cpu) jumpRel(taken bool) (err error) {
	offset, err := cpu.operand(1)
	if err != nil {
		return
	}

	if taken {
		cpu.Register[REG_IP] += uint32(int32(int8(offset)))
	} else {
		cpu.Register[REG_IP] += 2
	}

	return
}

// flag tests a flag in the flags register.
func (cpu *Cpu) flag(mask Flag) bool {
	return Flag(cpu.Register[REG_FL]).Test(mask)
}

func opJmpRelI8(cpu *Cpu) error { return cpu.jumpRel(true) }
func opJzRelI8(cpu *Cpu) error  { return cpu.jumpRel(cpu.flag(FLAG_ZF)) }
func opJnzRelI8(cpu *Cpu) error { return cpu.jumpRel(!cpu.flag(FLAG_ZF)) }
func opJcRelI8(cpu *Cpu) error  { return cpu.jumpRel(cpu.flag(FLAG_CF)) }
func opJncRelI8(cpu *Cpu) error { return cpu.jumpRel(!cpu.flag(FLAG_CF)) }

// opInvalid reports an unassigned opcode and resynchronizes on the next byte.
//
// In Strict mode, or once more than InvalidLimit opcodes have been seen,
// the opcode is returned as an error and IP is left unchanged.
func opInvalid(cpu *Cpu) (err error) {
	ip := cpu.Register[REG_IP]

	code, err := load8(cpu.Memory, ip)
	if err != nil {
		return
	}

	cpu.Invalid++

	bad := ErrOpcode{Ip: ip, Opcode: Opcode(code)}
	cpu.logger().Print(bad.Error())

	if cpu.Strict {
		err = bad
		return
	}

	if cpu.InvalidLimit > 0 && cpu.Invalid > cpu.InvalidLimit {
		err = errors.Join(ErrInvalidLimit, bad)
		return
	}

	cpu.Register[REG_IP]++

	return
}
