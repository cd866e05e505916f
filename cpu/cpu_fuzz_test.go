package cpu

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func FuzzCpu(f *testing.F) {
	for code := range 0x10 {
		f.Add(uint8(code), uint32(0x1e000000), uint8(0), false, false)
		f.Add(uint8(code), uint32(0xfedcba98), uint8(0x76), true, false)
		f.Add(uint8(code), uint32(0x00000000), uint8(0xff), false, true)
	}
	f.Add(uint8(0xff), uint32(0), uint8(0), true, true)

	f.Fuzz(func(t *testing.T, opcode uint8, operand uint32, tail uint8, stack bool, strict bool) {
		assert := assert.New(t)

		profile := ProfileRegister
		if stack {
			profile = ProfileStack
		}

		// Memory is deliberately short, so that wide operands and jumps
		// can run off the end.
		cpu := NewCpu(8, profile)
		cpu.Logger = log.New(&bytes.Buffer{}, "", 0)
		cpu.Strict = strict

		image := []byte{opcode, byte(operand >> 24), byte(operand >> 16), byte(operand >> 8), byte(operand), tail}
		assert.NoError(cpu.Load(image))

		for n := range REG_FL {
			cpu.Register[n] = uint32(n) * 0x01010101
		}
		before := cpu.Register

		err := cpu.Tick()

		var oob *ErrOutOfBounds
		switch {
		case err == nil:
			assert.Less(int(cpu.Register[REG_IP]), len(cpu.Memory))
			assert.Equal(1, cpu.Ticks)
		case errors.Is(err, ErrHalt):
			assert.True(cpu.Halted)
			assert.Equal(uint32(0), cpu.Register[REG_IP])
		case errors.As(err, &oob):
			assert.GreaterOrEqual(uint64(oob.Address)+uint64(oob.Length), uint64(oob.Capacity))
		case errors.Is(err, ErrOpcode{}):
			assert.True(strict)
			assert.Equal(uint32(0), cpu.Register[REG_IP])
		default:
			t.Fatalf("unexpected error: %v", err)
		}

		changed := 0
		for n := range REG_FL {
			if before[n] != cpu.Register[n] {
				changed++
			}
		}
		assert.LessOrEqual(changed, 1)

		assert.Equal(image, cpu.Memory[:len(image)])
	})
}
