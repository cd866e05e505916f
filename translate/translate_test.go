package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("invalid opcode", From("invalid opcode"))
	assert.Equal("invalid opcode 0x0a at 0x0010", From("invalid opcode 0x%02x at 0x%04x", uint8(0x0a), uint32(0x10)))
	assert.Equal("label loop missing", From("label %v missing", "loop"))
}
