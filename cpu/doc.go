// Package cpu implements the robovac byte-code machine and its assembler.
//
// The machine consists of sixteen 32-bit registers (r0-r13 general purpose,
// r14 flags, r15 the instruction pointer) and a bounded byte memory holding
// the program. Instructions are decoded in place from memory and dispatched
// through a 256 entry table selected by an ISA Profile.
//
// The assembler provides a small assembly language for the register profile,
// supporting macros, labels, equates, and compile-time expression evaluation.
package cpu
