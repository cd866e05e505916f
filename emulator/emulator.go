// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"iter"
	"maps"

	"github.com/ezrec/robovac/cpu"
	"github.com/ezrec/robovac/internal"
	"github.com/ezrec/robovac/io"
)

// Emulator state. CPU + program image.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Assembled listing of the image, if known.

	Rom io.Rom // Program image, copied to memory on Reset.

	MaxSteps int // If non-zero, maximum instructions executed by Run.
}

// NewEmulator creates a new emulator with the given memory size and ISA profile.
// A nil profile selects the register profile.
func NewEmulator(size uint, profile *cpu.Profile) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(size, profile),
		Program: &cpu.Program{},
	}

	emu.Rom.Capacity = int(size)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	emulator_defines := map[string]string{
		"ROM_SIZE": fmt.Sprintf("%v", emu.Rom.Capacity),
	}

	return internal.IterSeq2Concat(maps.All(emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble sets both the image and the listing from an assembled program.
func (emu *Emulator) Assemble(prog *cpu.Program) (err error) {
	bin := prog.Binary()
	if len(bin) > emu.Rom.Capacity {
		err = io.ErrProgramTooLarge{Capacity: emu.Rom.Capacity}
		return
	}

	emu.Program = prog
	emu.Rom.Data = bin

	return
}

// Reset the emulator state, and load the program image into memory.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Rom.Data)
	if err != nil {
		return
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() uint32 {
	return emu.Cpu.Register[cpu.REG_IP]
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Ip())
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Ip()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Ip: ip, LineNo: lineno, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks the emulator until the machine halts, or an error occurs.
func (emu *Emulator) Run() (err error) {
	for steps := 0; ; steps++ {
		if emu.MaxSteps > 0 && steps >= emu.MaxSteps {
			err = &ErrRuntime{Ip: emu.Ip(), LineNo: emu.LineNo(), Err: ErrStepLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}
}
