package cpu

// sign returns the sign bit of a 32-bit value.
func sign(value uint32) uint32 {
	return value >> 31
}

// aluAdd adds operand to input, returning the wrapped result and the
// flags register with ZF, OF, CF and SF recomputed. Reserved flag bits
// are passed through unchanged.
func aluAdd(input, operand uint32, flags Flag) (result uint32, out Flag) {
	result = input + operand

	out = flags &^ FLAG_MASK

	if result == 0 {
		out |= FLAG_ZF
	}

	if sign(result) != 0 {
		out |= FLAG_SF
	}

	// Unsigned wraparound.
	if input > result {
		out |= FLAG_CF
	}

	// Operands agree in sign, result does not.
	if sign(input) == sign(operand) && sign(result) != sign(operand) {
		out |= FLAG_OF
	}

	return
}
