// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/k0kubun/pp/v3"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/robovac/internal"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO": "0",
	"REG_FL": REG_FL.String(),
	"REG_IP": "r15",
}

// Assembler is a single pass macro assembler for the robovac register profile.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string   // Predefines
	Label     map[string]int      // Map of jump labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	expansion int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// regMap is a map of register names to register indexes.
var regMap = func() map[string]Register {
	regs := map[string]Register{
		"fl": REG_FL,
		"ip": REG_IP,
	}
	for n := range REGISTER_COUNT {
		regs[fmt.Sprintf("r%d", n)] = Register(n)
	}
	return regs
}()

// register returns the register named by word.
func (asm *Assembler) register(word string) (reg Register, err error) {
	reg, ok := regMap[strings.ToLower(word)]
	if !ok {
		err = ErrRegisterInvalid
	}
	return
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}
	if len(word) == 0 {
		err = ErrParseNumber(word)
		return
	}
	if word[0] == '\'' {
		// Character quotes should have been expanded into
		// values in parseLine()
		err = ErrParseCharacter(word)
		return
	}
	v64, err := strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	if v64 > 0xffffffff || v64 < -int64(0x80000000) {
		err = ErrValueRange
		return
	}

	value = uint32(v64)

	if invert {
		value = ^value
	}

	return
}

// isLabel returns true if the word is a valid label name.
var isLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`).MatchString

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value32 uint32
		value32, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeUint(uint(value32))
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 > 0xffffffff || st_int64 < -int64(0x80000000) {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// parseLine parses a single line as a statement.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	re := regexp.MustCompile(`'\\?[^']'`)
	line = re.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			case "e":
				str = "\033"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	re = regexp.MustCompile(`\$\([^\$]*\)`)
	line = re.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%#x", value)
	})
	if err != nil {
		return
	}

	line = strings.ReplaceAll(line, ",", " ")

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Check for equate next
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Ip + len(last.Bytes)
}

// Parse parses an input stream into a Program containing statements.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int, 16)
	asm.Statement = asm.Statement[:0]
	asm.Macro = make(map[string](*Macro))
	asm.expansion = 0
	asm.Equate = maps.Collect(internal.IterSeq2Concat(maps.All(sysEquate), maps.All(_cpu_defines)))
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}

		line = strings.Join(st.Words, " ")
		lineno = st.LineNo

		label := st.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			err = ErrLabelMissing(label)
			return
		}

		err = link(st, ip)
		if err != nil {
			return
		}
	}

	if asm.Verbose {
		pp.Fprintf(log.Writer(), "symbols: %v\n", asm.Label)
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// link patches the label address into an assembled jump or move.
func link(st *Statement, ip int) (err error) {
	op := ProfileRegister.Op(Opcode(st.Bytes[0]))

	switch op.Operand {
	case OPERAND_R_I32:
		binary.BigEndian.PutUint32(st.Bytes[2:], uint32(ip))
	case OPERAND_I16:
		if ip > 0xffff {
			err = ErrJumpRange{Label: st.LinkLabel, Offset: ip}
			return
		}
		binary.BigEndian.PutUint16(st.Bytes[1:], uint16(ip))
	case OPERAND_S8:
		// Relative to the jump instruction, not the one after it.
		offset := ip - st.Ip
		if offset < -128 || offset > 127 {
			err = ErrJumpRange{Label: st.LinkLabel, Offset: offset}
			return
		}
		st.Bytes[1] = byte(int8(offset))
	default:
		err = ErrTargetMissing
	}

	return
}

// jumpMap maps relative jump names to opcodes.
var jumpMap = map[string]Opcode{
	"jr":  OP_JMP_REL_I8,
	"jz":  OP_JZ_REL_I8,
	"jnz": OP_JNZ_REL_I8,
	"jc":  OP_JC_REL_I8,
	"jnc": OP_JNC_REL_I8,
}

// target resolves a jump or move argument into a value, or a label to link.
func (asm *Assembler) target(word string) (value uint32, label string, err error) {
	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	if !isLabel(word) {
		return
	}

	if _, is_reg := regMap[strings.ToLower(word)]; is_reg {
		err = ErrTargetMissing
		return
	}

	label = word
	err = nil
	return
}

// args checks the argument count of a statement.
func args(words []string, count int) (err error) {
	switch {
	case len(words) < count+1:
		err = ErrOpcodeValueMissing
	case len(words) > count+1:
		err = ErrOpcodeExtraArgs
	}
	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var code []byte
	var label string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(code) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Bytes: code, LinkLabel: label}
		asm.Statement = append(asm.Statement, st)
	}()

	switch words[0] {
	case "hlt":
		if err = args(words, 0); err != nil {
			return
		}
		code = []byte{byte(OP_HLT)}
	case "mov":
		if err = args(words, 2); err != nil {
			return
		}
		var dst Register
		dst, err = asm.register(words[1])
		if err != nil {
			return
		}
		src, is_reg := regMap[strings.ToLower(words[2])]
		if is_reg {
			code = []byte{byte(OP_MOV_R32_R32), byte(dst<<4) | byte(src)}
			return
		}
		var value uint32
		value, label, err = asm.target(words[2])
		if err != nil {
			return
		}
		code = binary.BigEndian.AppendUint32([]byte{byte(OP_MOV_R32_I32), byte(dst)}, value)
	case "add":
		if err = args(words, 2); err != nil {
			return
		}
		var a, b Register
		a, err = asm.register(words[1])
		if err != nil {
			return
		}
		b, err = asm.register(words[2])
		if err != nil {
			return
		}
		code = []byte{byte(OP_ADD_R32_R32), byte(a<<4) | byte(b)}
	case "jmp":
		if err = args(words, 1); err != nil {
			return
		}
		var value uint32
		value, label, err = asm.target(words[1])
		if err != nil {
			return
		}
		if value > 0xffff {
			err = ErrValueRange
			return
		}
		code = binary.BigEndian.AppendUint16([]byte{byte(OP_JMP_ABS_I16)}, uint16(value))
	case "jr", "jz", "jnz", "jc", "jnc":
		if err = args(words, 1); err != nil {
			return
		}
		var value uint32
		value, label, err = asm.target(words[1])
		if err != nil {
			return
		}
		// Numeric arguments are the signed offset itself.
		offset := int32(value)
		if offset < -128 || offset > 127 {
			err = ErrValueRange
			return
		}
		code = []byte{byte(jumpMap[words[0]]), byte(int8(offset))}
	case ".byte":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			if int32(value) < -128 || (int32(value) >= 0 && value > 0xff) {
				err = ErrValueRange
				return
			}
			code = append(code, byte(value))
		}
	case ".long":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var value uint32
			value, err = asm.valueOf(word)
			if err != nil {
				return
			}
			code = binary.BigEndian.AppendUint32(code, value)
		}
	default:
		err = ErrInstructionInvalid
		return
	}

	return
}
