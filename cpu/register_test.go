package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterIsolation(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu()

	for n := range REGISTER_COUNT {
		value := uint32(0x11111111 * (n + 1))
		cpu.Register[n] = value
		for m := range REGISTER_COUNT {
			if m == n {
				assert.Equal(value, cpu.Register[m], "r%d", m)
			} else if m > n {
				assert.Equal(uint32(0), cpu.Register[m], "r%d", m)
			}
		}
		assert.Equal(value, cpu.Register[n])
	}
}

func TestRegisterString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("r0", REG_R0.String())
	assert.Equal("r9", REG_R9.String())
	assert.Equal("r13", REG_R13.String())
	assert.Equal("r14", REG_FL.String())
	assert.Equal("IP", REG_IP.String())
	assert.Equal("Register(16)", Register(16).String())
}

func TestFlagString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("-", Flag(0).String())
	assert.Equal("ZF", FLAG_ZF.String())
	assert.Equal("ZF|CF", (FLAG_ZF | FLAG_CF).String())
	assert.Equal("ZF|OF|CF|SF", FLAG_MASK.String())
	assert.Equal("OF", (FLAG_OF | Flag(0x100)).String())

	assert.True((FLAG_ZF | FLAG_CF).Test(FLAG_CF))
	assert.False(FLAG_ZF.Test(FLAG_CF))
}
