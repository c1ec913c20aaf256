package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode32Arithmetic(t *testing.T) {
	assert := assert.New(t)

	// addi x1, x0, -1
	enc := encodeI(opOpImm, 0x0, 1, 0, -1)
	op, err := Decode32(enc, 64)
	assert.NoError(err)
	assert.Equal(Addi, op.Kind)
	assert.EqualValues(1, op.Rd)
	assert.EqualValues(0, op.Rs1)
	assert.EqualValues(-1, op.Imm)
	assert.Equal(4, op.Length)
}

func TestDecode32Branch(t *testing.T) {
	assert := assert.New(t)

	// beq x0, x0, 0
	enc := encodeB(opBranch, 0x0, 0, 0, 0)
	op, err := Decode32(enc, 64)
	assert.NoError(err)
	assert.Equal(Beq, op.Kind)
	assert.EqualValues(0, op.Imm)
}

func TestDecode32Load(t *testing.T) {
	assert := assert.New(t)

	// lw x5, 14(x1)
	enc := encodeI(opLoad, 0x2, 5, 1, 14)
	op, err := Decode32(enc, 64)
	assert.NoError(err)
	assert.Equal(Lw, op.Kind)
	assert.EqualValues(5, op.Rd)
	assert.EqualValues(1, op.Rs1)
	assert.EqualValues(14, op.Imm)
}

func TestDecode32RV64OnlyStillDecodesRegardlessOfWidth(t *testing.T) {
	assert := assert.New(t)

	// addiw x1, x0, 5 -- RV64-only opcode, but decode is width-agnostic
	// about legality; rejecting it is execute's job, not decode's.
	enc := encodeI(opOpImm32, 0x0, 1, 0, 5)
	op, err := Decode32(enc, 32)
	assert.NoError(err)
	assert.Equal(Addiw, op.Kind)
}

func TestDecode32Illegal(t *testing.T) {
	assert := assert.New(t)

	_, err := Decode32(0b1000000, 64) // opcode 0x40: not assigned in RV32I/M
	assert.Error(err)
}

func TestShiftFieldsRV32VsRV64(t *testing.T) {
	assert := assert.New(t)

	// srai x1, x1, 5: funct7=0x20 (bit 10 of the imm field set), shamt=5
	enc := encodeI(opOpImm, 0x5, 1, 1, 0x400|5)

	op32, err := Decode32(enc, 32)
	assert.NoError(err)
	assert.Equal(Srai, op32.Kind)
	assert.EqualValues(5, op32.Imm)

	op64, err := Decode32(enc, 64)
	assert.NoError(err)
	assert.Equal(Srai, op64.Kind)
	assert.EqualValues(5, op64.Imm)
}

func TestSignExtend(t *testing.T) {
	assert := assert.New(t)
	assert.EqualValues(-1, signExtend(0xFFF, 11))
	assert.EqualValues(2047, signExtend(0x7FF, 12))
}
