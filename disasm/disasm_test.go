package disasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisassembleAddi(t *testing.T) {
	assert := assert.New(t)
	// addi x1, x0, -1
	assert.Equal("addi ra, zero, -1", Disassemble(0xFFF00093, 64))
}

func TestDisassembleCompressed(t *testing.T) {
	assert := assert.New(t)
	// C.LI x10, 0 expands to addi a0, zero, 0
	assert.Equal("addi a0, zero, 0", Disassemble(0x4501, 64))
}

func TestDisassembleIllegal(t *testing.T) {
	assert := assert.New(t)
	// the all-zero word is a reserved compressed encoding
	assert.Contains(Disassemble(0x00000000, 64), "illegal")
}

func TestDisassembleRType(t *testing.T) {
	assert := assert.New(t)
	// add x3, x1, x2
	enc := uint32(0x002081b3)
	assert.Equal("add gp, ra, sp", Disassemble(enc, 64))
}
