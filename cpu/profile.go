package cpu

import (
	"iter"
	"maps"
	"slices"
)

// Profile is an immutable ISA: a dispatch table covering every opcode
// value, and the opcode (if any) that the execution loop treats as halt.
//
// Profiles are never modified after construction, so a single Profile may
// be shared by any number of machines running concurrently.
type Profile struct {
	name    string
	halt    Opcode
	hasHalt bool
	table   [OPCODE_COUNT]Op
}

// NewProfile builds a profile from a list of ops. Every opcode not in ops
// dispatches to the invalid opcode handler. If a halt opcode is given, the
// execution loop stops when it fetches that opcode.
func NewProfile(name string, ops []Op, halt ...Opcode) (profile *Profile) {
	profile = &Profile{name: name}

	for n := range profile.table {
		profile.table[n] = Op{Code: Opcode(n), Handler: opInvalid}
	}

	for _, op := range ops {
		if op.Handler == nil {
			op.Handler = opInvalid
		}
		profile.table[op.Code] = op
	}

	if len(halt) > 0 {
		profile.halt = halt[0]
		profile.hasHalt = true
	}

	return
}

// Name of the profile.
func (profile *Profile) Name() string {
	return profile.name
}

// Halt returns the halt opcode, and whether the profile has one.
func (profile *Profile) Halt() (op Opcode, ok bool) {
	return profile.halt, profile.hasHalt
}

// Op returns the dispatch table entry for an opcode.
func (profile *Profile) Op(code Opcode) Op {
	return profile.table[code]
}

// Ops iterates over the assigned opcodes of the profile.
func (profile *Profile) Ops() iter.Seq[Op] {
	return func(yield func(op Op) bool) {
		for _, op := range profile.table {
			if !op.Valid() {
				continue
			}
			if !yield(op) {
				return
			}
		}
	}
}

// ProfileRegister is the canonical register and ALU instruction set.
var ProfileRegister = NewProfile("register", []Op{
	{OP_HLT, "hlt", OPERAND_NONE, opHlt},
	{OP_MOV_R32_I32, "mov", OPERAND_R_I32, opMovR32I32},
	{OP_ADD_R32_R32, "add", OPERAND_R_R, opAddR32R32},
	{OP_JMP_ABS_I16, "jmp", OPERAND_I16, opJmpAbsI16},
	{OP_JMP_REL_I8, "jr", OPERAND_S8, opJmpRelI8},
	{OP_JZ_REL_I8, "jz", OPERAND_S8, opJzRelI8},
	{OP_JNZ_REL_I8, "jnz", OPERAND_S8, opJnzRelI8},
	{OP_JC_REL_I8, "jc", OPERAND_S8, opJcRelI8},
	{OP_JNC_REL_I8, "jnc", OPERAND_S8, opJncRelI8},
	{OP_MOV_R32_R32, "mov", OPERAND_R_R, opMovR32R32},
}, OP_HLT)

// ProfileStack is the stack call instruction set. Only the return
// placeholder is assigned, and there is no halt opcode.
var ProfileStack = NewProfile("stack", []Op{
	{OP_RET, "ret", OPERAND_NONE, opRet},
})

var profiles = map[string]*Profile{
	ProfileRegister.Name(): ProfileRegister,
	ProfileStack.Name():    ProfileStack,
}

// Profiles returns the sorted names of the built-in profiles.
func Profiles() []string {
	return slices.Sorted(maps.Keys(profiles))
}

// LookupProfile finds a built-in profile by name.
func LookupProfile(name string) (profile *Profile, err error) {
	profile, ok := profiles[name]
	if !ok {
		err = ErrProfile
	}

	return
}
