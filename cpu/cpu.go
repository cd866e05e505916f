// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
)

var _cpu_defines = map[string]string{
	"MEMORY_SIZE": fmt.Sprintf("%v", MEMORY_SIZE),
	"FLAG_ZF":     fmt.Sprintf("0x%x", uint32(FLAG_ZF)),
	"FLAG_OF":     fmt.Sprintf("0x%x", uint32(FLAG_OF)),
	"FLAG_CF":     fmt.Sprintf("0x%x", uint32(FLAG_CF)),
	"FLAG_SF":     fmt.Sprintf("0x%x", uint32(FLAG_SF)),
}

// Cpu is the simulation context of a robovac machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Register [REGISTER_COUNT]uint32 // Register file, including flags and IP.
	Memory   []byte                 // Program and data memory.
	Profile  *Profile               // Instruction set in use.
	Halted   bool                   // Set once a halt has been executed.

	Strict       bool // If set, invalid opcodes stop execution.
	InvalidLimit int  // If non-zero, maximum invalid opcodes before stopping.

	Invalid int // Invalid opcode counter.
	Ticks   int // Executed instruction counter.

	Logger *log.Logger // Destination of diagnostics. If nil, the standard logger.
}

// NewCpu creates a new CPU with a specifically sized memory, using an ISA profile.
// If profile is nil, ProfileRegister is used.
func NewCpu(size uint, profile *Profile) (cpu *Cpu) {
	if profile == nil {
		profile = ProfileRegister
	}

	cpu = &Cpu{
		Memory:  make([]byte, size),
		Profile: profile,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// logger returns the diagnostic logger.
func (cpu *Cpu) logger() *log.Logger {
	if cpu.Logger == nil {
		return log.Default()
	}
	return cpu.Logger
}

// Reset the CPU state.
// - Clears the registers and memory.
// - Zeros statistics counters.
// - Clears the halted state.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		cpu.logger().Printf("cpu: reset")
	}

	clear(cpu.Register[:])
	clear(cpu.Memory)
	cpu.Halted = false
	cpu.Invalid = 0
	cpu.Ticks = 0
}

// Load copies a program image into memory at offset 0.
// Memory is untouched if the image does not fit.
func (cpu *Cpu) Load(image []byte) (err error) {
	data, err := span(cpu.Memory, 0, len(image))
	if err != nil {
		return
	}

	copy(data, image)

	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	for n := range cpu.Register {
		reg := Register(n)
		val := cpu.Register[reg]
		var strval string
		switch reg {
		case REG_IP:
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
			if val < uint32(len(cpu.Memory)) {
				strval += fmt.Sprintf(" [%02x]", cpu.Memory[val])
			}
		case REG_FL:
			strval = fmt.Sprintf("%04X_%04X %v", val>>16, val&0xffff, Flag(val))
		default:
			strval = fmt.Sprintf("%04X_%04X", val>>16, val&0xffff)
		}
		text += fmt.Sprintf("% 5s: %v\n", reg.String(), strval)
	}

	if cpu.Halted {
		text += fmt.Sprintf("% 5s: %v\n", "state", "halted")
	}

	return
}

// Dump returns all registers on a single line, as 'name=0xvalue '.
func (cpu *Cpu) Dump() string {
	var sb strings.Builder
	for n, val := range cpu.Register {
		fmt.Fprintf(&sb, "%v=0x%08x ", Register(n), val)
	}
	return sb.String()
}

// Fetch returns the opcode at the IP.
func (cpu *Cpu) Fetch() (code Opcode, err error) {
	value, err := load8(cpu.Memory, cpu.Register[REG_IP])
	if err != nil {
		return
	}

	code = Opcode(value)
	return
}

// Tick executes a single CPU instruction cycle.
//
// Returns ErrHalt once the profile's halt opcode has been fetched. The IP
// is left pointing at the halt instruction.
func (cpu *Cpu) Tick() (err error) {
	if cpu.Halted {
		err = ErrHalt
		return
	}

	if cpu.Profile == nil {
		err = ErrProfileEmpty
		return
	}

	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	halt, ok := cpu.Profile.Halt()
	if ok && code == halt {
		if cpu.Verbose {
			cpu.logger().Printf("%04x: %v", cpu.Register[REG_IP], cpu.Profile.Op(code))
		}
		cpu.Halted = true
		err = ErrHalt
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	if cpu.Halted {
		err = ErrHalt
		return
	}

	// IP must remain within memory.
	_, err = span(cpu.Memory, cpu.Register[REG_IP], 1)
	if err != nil {
		return
	}

	return
}

// Execute dispatches a single opcode, located at the IP, through the profile.
func (cpu *Cpu) Execute(code Opcode) (err error) {
	op := cpu.Profile.Op(code)

	if cpu.Verbose {
		insn, _ := Decode(cpu.Memory, cpu.Register[REG_IP], cpu.Profile)
		cpu.logger().Printf("%v", insn)
	}

	err = op.Handler(cpu)
	if err != nil {
		return
	}

	cpu.Ticks++

	return
}
