package cpu

import (
	"bytes"
	"log"
)

// newTestCpu creates a register profile CPU with the program loaded at 0,
// and diagnostics captured in the returned buffer.
func newTestCpu(program ...byte) (cpu *Cpu, diag *bytes.Buffer) {
	diag = &bytes.Buffer{}

	cpu = NewCpu(MEMORY_SIZE, nil)
	cpu.Logger = log.New(diag, "", 0)
	err := cpu.Load(program)
	if err != nil {
		panic(err)
	}

	return
}
