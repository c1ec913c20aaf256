package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandCompressedCLi(t *testing.T) {
	assert := assert.New(t)

	// 0x4501 is C.LI x10, 0 expanding to addi x10, x0, 0 (0x00000513)
	enc32, err := ExpandCompressed(0x4501, 64)
	assert.NoError(err)
	assert.Equal(uint32(0x00000513), enc32)

	op, err := DecodeCompressed(0x4501, 64)
	assert.NoError(err)
	assert.Equal(Addi, op.Kind)
	assert.EqualValues(10, op.Rd)
	assert.EqualValues(0, op.Imm)
	assert.Equal(2, op.Length)
}

func TestExpandCompressedReservedNop(t *testing.T) {
	assert := assert.New(t)

	// C.ADDI4SPN with zero immediate (0x0000) is a reserved encoding, not
	// a valid all-zero instruction word.
	_, err := ExpandCompressed(0x0000, 64)
	assert.Error(err)
}

func TestExpandCompressedJr(t *testing.T) {
	assert := assert.New(t)

	// C.JR x1 (0x8082) expands to jalr x0, 0(x1)
	enc32, err := ExpandCompressed(0x8082, 64)
	assert.NoError(err)

	op, err := Decode32(enc32, 64)
	assert.NoError(err)
	assert.Equal(Jalr, op.Kind)
	assert.EqualValues(0, op.Rd)
	assert.EqualValues(1, op.Rs1)
	assert.EqualValues(0, op.Imm)
}
