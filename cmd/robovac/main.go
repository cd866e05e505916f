// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ezrec/robovac/cpu"
	"github.com/ezrec/robovac/emulator"
)

func init() {
	log.SetFlags(0)
	log.SetPrefix(fmt.Sprintf("%s: ", filepath.Base(os.Args[0])))
	log.SetOutput(os.Stderr)
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [options] <program>\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	var verbose bool
	var quiet bool
	var memory uint
	var profileName string
	var strict bool
	var maxInvalid int
	var maxSteps int
	var assemble bool
	var output string
	var disassemble bool

	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&quiet, "q", false, "Do not dump registers on completion")
	flag.UintVar(&memory, "m", cpu.MEMORY_SIZE, "Memory size, in bytes")
	flag.StringVar(&profileName, "p", cpu.ProfileRegister.Name(),
		fmt.Sprintf("Instruction set profile (%v)", strings.Join(cpu.Profiles(), ", ")))
	flag.BoolVar(&strict, "strict", false, "Stop on the first invalid opcode")
	flag.IntVar(&maxInvalid, "max-invalid", 0, "Stop after this many invalid opcodes (0 = no limit)")
	flag.IntVar(&maxSteps, "max-steps", 0, "Stop after this many instructions (0 = no limit)")
	flag.BoolVar(&assemble, "a", false, "Program is assembly source")
	flag.StringVar(&output, "o", "", "Write the assembled binary to this file, do not execute")
	flag.BoolVar(&disassemble, "d", false, "Disassemble the program, do not execute")
	flag.Usage = usage

	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}

	path := flag.Arg(0)

	profile, err := cpu.LookupProfile(profileName)
	if err != nil {
		log.Fatalf("%v: %v", profileName, err)
	}

	emu := emulator.NewEmulator(memory, profile)
	emu.Verbose = verbose
	emu.Strict = strict
	emu.InvalidLimit = maxInvalid
	emu.MaxSteps = maxSteps

	if assemble || len(output) != 0 {
		inf, err := os.Open(path)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for key, value := range emu.Defines() {
			asm.Predefine(key, value)
		}
		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}

		err = emu.Assemble(prog)
		if err != nil {
			log.Fatalf("%v: %v", path, err)
		}
	} else {
		err = emu.Rom.LoadFile(path)
		if err != nil {
			log.Fatal(err)
		}
	}

	if len(output) != 0 {
		err = os.WriteFile(output, emu.Rom.Data, 0o644)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		return
	}

	if disassemble {
		for insn, err := range cpu.Disassemble(emu.Rom.Data, profile) {
			if err != nil {
				log.Fatalf("%v: %v", path, err)
			}
			fmt.Println(insn)
		}
		return
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}

	err = emu.Run()
	if !quiet {
		fmt.Fprintln(os.Stderr, emu.Cpu.Dump())
	}
	if err != nil {
		log.Fatalf("%v: %v", path, err)
	}
}
