package emulator

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"

	"github.com/ezrec/robovac/cpu"
	"github.com/ezrec/robovac/io"
)

// sumProgram adds 1 to r0, COUNT times.
var sumProgram = []string{
	"    mov r0 0",
	"    mov r1 1",
	"    mov r2 COUNT",
	"    mov r3 -1",
	"loop:",
	"    add r0 r1",
	"    add r2 r3",
	"    jnz loop",
	"    hlt",
}

func newTestEmulator(t *testing.T, size uint, program []string, count int) (emu *Emulator, diag *bytes.Buffer) {
	emu = NewEmulator(size, nil)

	diag = &bytes.Buffer{}
	emu.Cpu.Logger = log.New(diag, "", 0)

	asm := &cpu.Assembler{}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}
	asm.Predefine("COUNT", fmt.Sprintf("%v", count))

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Assemble(prog)
	if err != nil {
		t.Fatal(err)
	}

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}

	return
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0x100, nil)

	assert.False(emu.Verbose)
	assert.Equal(cpu.ProfileRegister, emu.Cpu.Profile)
	assert.Equal(0x100, len(emu.Cpu.Memory))
	assert.Equal(0x100, emu.Rom.Capacity)
	assert.NotNil(emu.Program)
	assert.Equal(uint32(0), emu.Ip())
	assert.Equal(0, emu.LineNo())

	emu = NewEmulator(0x10, cpu.ProfileStack)
	assert.Equal(cpu.ProfileStack, emu.Cpu.Profile)
}

func TestEmulatorDefines(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0x100, nil)
	defines := maps.Collect(emu.Defines())

	assert.Equal("256", defines["ROM_SIZE"])
	assert.Contains(defines, "MEMORY_SIZE")
	assert.Contains(defines, "FLAG_ZF")
}

func TestEmulatorTick(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, 0x100, sumProgram, 5)

	for _, st := range emu.Program.Statements[:4] {
		assert.Equal(uint32(st.Ip), emu.Ip())
		assert.Equal(st.LineNo, emu.LineNo())
		done, err := emu.Tick()
		assert.NoError(err)
		assert.False(done)
	}

	assert.Equal(4, emu.Ticks())
	assert.Equal(6, emu.LineNo())
}

func TestEmulatorRun(t *testing.T) {
	assert := assert.New(t)

	table := []int{1, 5, 100}

	for _, count := range table {
		emu, diag := newTestEmulator(t, 0x100, sumProgram, count)

		err := emu.Run()
		assert.NoError(err)

		assert.Equal(uint32(count), emu.Cpu.Register[0])
		assert.Equal(uint32(0), emu.Cpu.Register[2])
		assert.Equal(4+3*count, emu.Ticks())
		assert.Equal(uint32(30), emu.Ip())
		assert.Equal(9, emu.LineNo())
		assert.True(emu.Cpu.Halted)
		assert.Empty(diag.String())

		// Ticking a halted machine remains done.
		done, err := emu.Tick()
		assert.True(done)
		assert.NoError(err)

		// Reset reloads the image.
		assert.NoError(emu.Reset())
		assert.Equal(uint32(0), emu.Cpu.Register[0])
		assert.Equal(0, emu.Ticks())
		assert.False(emu.Cpu.Halted)
		assert.NoError(emu.Run())
		assert.Equal(uint32(count), emu.Cpu.Register[0])
	}
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"mov r0 1",
		"jmp 0x1000",
	}

	emu, _ := newTestEmulator(t, 0x100, program, 0)

	err := emu.Run()

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(2, rt.LineNo)
	assert.Equal(uint32(6), rt.Ip)

	var oob *cpu.ErrOutOfBounds
	assert.True(errors.As(err, &oob))
	assert.Equal(uint32(0x1000), oob.Address)
	assert.Equal(0x100, oob.Capacity)

	assert.Contains(err.Error(), "ip 0x0006")
}

func TestEmulatorStepLimit(t *testing.T) {
	assert := assert.New(t)

	emu, _ := newTestEmulator(t, 0x100, []string{"spin: jr spin"}, 0)
	emu.MaxSteps = 10

	err := emu.Run()
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(10, emu.Ticks())
	assert.Equal(uint32(0), emu.Ip())

	var rt *ErrRuntime
	assert.True(errors.As(err, &rt))
	assert.Equal(1, rt.LineNo)
}

func TestEmulatorInvalid(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0x10, nil)
	diag := &bytes.Buffer{}
	emu.Cpu.Logger = log.New(diag, "", 0)

	assert.NoError(emu.Rom.Load(bytes.NewReader([]byte{0xff, 0xfe, 0x77})))
	assert.NoError(emu.Reset())

	assert.NoError(emu.Run())
	assert.Equal(3, emu.Cpu.Invalid)
	assert.Equal(uint32(3), emu.Ip())
	assert.Equal(3, strings.Count(diag.String(), "\n"))
	assert.Contains(diag.String(), "0xfe")
	assert.Contains(diag.String(), "0x77")

	// Every byte is invalid, and each step resynchronizes on the next byte.
	emu.Rom.Data = bytes.Repeat([]byte{0x0a}, 0x10)
	emu.MaxSteps = 5
	diag.Reset()
	assert.NoError(emu.Reset())

	err := emu.Run()
	assert.ErrorIs(err, ErrStepLimit)
	assert.Equal(uint32(5), emu.Ip())
	assert.Equal(5, strings.Count(diag.String(), "\n"))

	// Strict mode stops on the first one.
	emu.Strict = true
	assert.NoError(emu.Reset())
	err = emu.Run()
	assert.ErrorIs(err, cpu.ErrOpcode{})
	assert.Equal(uint32(0), emu.Ip())
	emu.Strict = false

	// As does exceeding the limit.
	emu.InvalidLimit = 2
	assert.NoError(emu.Reset())
	err = emu.Run()
	assert.ErrorIs(err, cpu.ErrInvalidLimit)
	assert.ErrorIs(err, cpu.ErrOpcode{})
	assert.Equal(uint32(2), emu.Ip())
}

func TestEmulatorStack(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(0x10, cpu.ProfileStack)
	emu.Cpu.Logger = log.New(&bytes.Buffer{}, "", 0)
	emu.Rom.Data = []byte{0x00, 0x01, 0x00}
	assert.NoError(emu.Reset())

	// No halt opcode, so the machine walks off the end of memory.
	err := emu.Run()

	var oob *cpu.ErrOutOfBounds
	assert.True(errors.As(err, &oob))
	assert.Equal(uint32(0x10), oob.Address)
	assert.Equal(1, emu.Cpu.Invalid)
	assert.Equal(0x10, emu.Ticks())
}

func TestEmulatorTooLarge(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(4, nil)

	prog, err := (&cpu.Assembler{}).Parse(strings.NewReader("mov r0 1"))
	assert.NoError(err)

	err = emu.Assemble(prog)
	var tl io.ErrProgramTooLarge
	assert.True(errors.As(err, &tl))
	assert.Equal(4, tl.Capacity)
	assert.Nil(emu.Rom.Data)

	assert.NoError(emu.Reset())
	assert.Equal([]byte{0, 0, 0, 0}, emu.Cpu.Memory)
}

func TestEmulatorConcurrent(t *testing.T) {
	assert := assert.New(t)

	const count = 8

	emus := make([]*Emulator, count)
	for n := range count {
		emus[n], _ = newTestEmulator(t, 0x100, sumProgram, n+1)
	}

	var g errgroup.Group
	for _, emu := range emus {
		g.Go(emu.Run)
	}
	assert.NoError(g.Wait())

	for n, emu := range emus {
		assert.Equal(uint32(n+1), emu.Cpu.Register[0])
		assert.True(emu.Cpu.Halted)
	}
}
