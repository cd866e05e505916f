package cpu

import (
	"strings"
)

// REGISTER_COUNT is the size of the register file.
const REGISTER_COUNT = 16

// Register is an index into the register file.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_R0  = Register(0)  // r0
	REG_R1  = Register(1)  // r1
	REG_R2  = Register(2)  // r2
	REG_R3  = Register(3)  // r3
	REG_R4  = Register(4)  // r4
	REG_R5  = Register(5)  // r5
	REG_R6  = Register(6)  // r6
	REG_R7  = Register(7)  // r7
	REG_R8  = Register(8)  // r8
	REG_R9  = Register(9)  // r9
	REG_R10 = Register(10) // r10
	REG_R11 = Register(11) // r11
	REG_R12 = Register(12) // r12
	REG_R13 = Register(13) // r13
	REG_FL  = Register(14) // r14
	REG_IP  = Register(15) // IP
)

// Flag is a condition bit of the flags register.
type Flag uint32

const (
	FLAG_ZF = Flag(1 << 0) // Zero flag
	FLAG_OF = Flag(1 << 1) // Overflow flag
	FLAG_CF = Flag(1 << 2) // Carry flag
	FLAG_SF = Flag(1 << 3) // Sign flag

	FLAG_MASK = FLAG_ZF | FLAG_OF | FLAG_CF | FLAG_SF // Mask of all arithmetic flags.
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FLAG_ZF, "ZF"},
	{FLAG_OF, "OF"},
	{FLAG_CF, "CF"},
	{FLAG_SF, "SF"},
}

// String returns the set flags joined by '|', or "-" if none are set.
func (fl Flag) String() string {
	var names []string
	for _, fn := range flagNames {
		if fl&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}

	if len(names) == 0 {
		return "-"
	}

	return strings.Join(names, "|")
}

// Test returns true if any of the flags in mask are set in the flags register value.
func (fl Flag) Test(mask Flag) bool {
	return fl&mask != 0
}
