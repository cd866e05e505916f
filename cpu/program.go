package cpu

import (
	"iter"
)

// Statement represents a line of assembled code with its source location and generated bytes.
type Statement struct {
	LineNo    int
	Ip        int
	Words     []string
	Bytes     []byte
	LinkLabel string
}

// Program is an assembled listing.
type Program struct {
	Statements []Statement
}

// Debug locates the statement covering an address.
type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement that generated the byte at ip.
// If no statement covers ip, Debug.Statement is nil.
func (prog *Program) Debug(ip uint32) (dbg Debug) {
	for n, st := range prog.Statements {
		if ip >= uint32(st.Ip) && ip < uint32(st.Ip+len(st.Bytes)) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     int(ip - uint32(st.Ip)),
			}
			break
		}
	}

	return
}

// LineNo returns the source line that generated the byte at ip, or 0.
func (prog *Program) LineNo(ip uint32) int {
	dbg := prog.Debug(ip)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// Binary returns the program image.
func (prog *Program) Binary() (bin []byte) {
	for _, b := range prog.Bytes() {
		bin = append(bin, b)
	}

	return
}

// Bytes iterates over the program image by address.
func (prog *Program) Bytes() iter.Seq2[uint32, byte] {
	return func(yield func(ip uint32, b byte) bool) {
		for _, st := range prog.Statements {
			ip := uint32(st.Ip)
			for n, b := range st.Bytes {
				if !yield(ip+uint32(n), b) {
					return
				}
			}
		}
	}
}
