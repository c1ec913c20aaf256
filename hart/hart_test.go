package hart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestHart(t *testing.T, width int) *Hart {
	t.Helper()
	h, err := NewHart(4096, NumRegs, width)
	assert.NoError(t, err)
	return h
}

func storeWord(t *testing.T, h *Hart, addr uint64, word uint32) {
	t.Helper()
	assert.NoError(t, h.mem.StoreWidth(Addr(addr), 4, uint64(word)))
}

func TestAddiSignExtension(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	// addi x1, x0, -1
	storeWord(t, h, 0, 0xFFF00093)
	h.stepOnce()

	assert.EqualValues(uint64(0xFFFFFFFFFFFFFFFF), h.xregs.Read(1))
	assert.EqualValues(4, h.pc)
}

func TestBranchNotTaken(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)
	h.SetPC(0x100)

	// beq x1, x2, 0x40 (offset irrelevant here); x1=1, x2=2 so not taken
	h.SetIntReg(1, 1)
	h.SetIntReg(2, 2)
	enc, err := encodeBeq(1, 2, 0x40)
	assert.NoError(err)
	storeWord(t, h, 0x100, enc)

	h.stepOnce()
	assert.EqualValues(0x104, h.pc)
}

func TestJalEvenOffsetNeverMisaligns(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	// jal x1, 2 -- JAL's own encoding has no imm[0] bit (it's always 0),
	// so every representable offset is even: with C always enabled (misa
	// advertises it), a jump target can never actually land on an odd
	// address, and the instruction-address-misaligned trap this core
	// still checks for is unreachable through jal/jalr/branch targets.
	// This pins the reachable behavior instead of a vacuous trap.
	enc, err := encodeJal(1, 2)
	assert.NoError(err)
	storeWord(t, h, 0, enc)

	h.stepOnce()
	assert.EqualValues(2, h.pc)
	assert.EqualValues(4, h.xregs.Read(1))
	ok, mcause := h.PeekCsr(CsrMcause)
	assert.True(ok)
	assert.EqualValues(0, mcause)
}

func TestLoadAcrossMemoryBoundaryFaults(t *testing.T) {
	assert := assert.New(t)
	h, err := NewHart(16, NumRegs, 64)
	assert.NoError(err)

	// lw x2, 0(x1) with x1 = 14: ea = 14 is both out of range (ea+4 > 16)
	// and misaligned (14 % 4 == 2); out-of-range must win so this reports
	// LOAD_ACCESS_FAULT rather than LOAD_ADDR_MISALIGNED.
	h.SetIntReg(1, 14)
	enc, err := encodeLw(2, 1, 0)
	assert.NoError(err)
	storeWord(t, h, 0, enc)

	h.stepOnce()
	ok, mcause := h.PeekCsr(CsrMcause)
	assert.True(ok)
	assert.EqualValues(CauseLoadAccessFault, mcause)
	_, mtval := h.PeekCsr(CsrMtval)
	assert.EqualValues(14, mtval)
}

func TestCsrrsWithRs1ZeroSkipsWrite(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	h.csrs.RawSet(CsrMscratch, 0xAA)
	enc, err := encodeCsrrs(3, uint16(CsrMscratch), 0)
	assert.NoError(err)
	storeWord(t, h, 0, enc)

	h.stepOnce()
	assert.EqualValues(0xAA, h.xregs.Read(3))
	assert.EqualValues(0xAA, h.csrs.RawGet(CsrMscratch))
}

func TestCompressedExpansionExecutes(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	// C.LI x10, 0 (0x4501) expands to addi x10, x0, 0
	h.mem.Store16(0, 0x4501)
	h.stepOnce()

	assert.EqualValues(0, h.xregs.Read(10))
	assert.EqualValues(2, h.pc)
}

func TestDivideByZeroSignedDoesNotTrap(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	h.SetIntReg(1, 5)
	h.SetIntReg(2, 0)
	enc := encodeDiv(3, 1, 2)
	storeWord(t, h, 0, enc)

	h.stepOnce()
	assert.EqualValues(^uint64(0), h.xregs.Read(3))
	ok, mcause := h.PeekCsr(CsrMcause)
	assert.True(ok)
	assert.EqualValues(0, mcause)
}

func TestEcallInMachineMode(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)
	h.SetPC(0x200)

	enc := encodeSystem(0x000, 0, 0)
	storeWord(t, h, 0x200, enc)

	h.stepOnce()
	ok, mcause := h.PeekCsr(CsrMcause)
	assert.True(ok)
	assert.EqualValues(CauseMEnvCall, mcause)
	_, mepc := h.PeekCsr(CsrMepc)
	assert.EqualValues(0x200, mepc)
	assert.Equal(Machine, h.Priv())
}

func TestX0WriteIsDiscarded(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)

	// addi x0, x0, 5
	enc := encodeAddi(0, 0, 5)
	storeWord(t, h, 0, enc)

	h.stepOnce()
	assert.EqualValues(0, h.xregs.Read(0))
}

func TestRunStopsAtHaltAddress(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 64)
	h.SetHaltAddress(4)

	storeWord(t, h, 0, encodeAddi(1, 0, 1))
	storeWord(t, h, 4, encodeAddi(1, 1, 1))

	assert.NoError(h.Run())
	assert.EqualValues(1, h.xregs.Read(1))
	assert.EqualValues(4, h.pc)
}

func TestWidth32Masking(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 32)

	// lui x1, 0xFFFFF -- top bit set, must not sign-extend into bits above 31
	enc := uint32(0xFFFFF000 | (1 << 7) | 0x37)
	storeWord(t, h, 0, enc)
	h.stepOnce()
	assert.EqualValues(0xFFFFF000, h.xregs.Read(1))
}

func TestRV64OnlyOpcodeIllegalAtWidth32(t *testing.T) {
	assert := assert.New(t)
	h := newTestHart(t, 32)

	enc := encodeAddiw(1, 0, 5)
	storeWord(t, h, 0, enc)
	h.stepOnce()

	ok, mcause := h.PeekCsr(CsrMcause)
	assert.True(ok)
	assert.EqualValues(CauseIllegalInst, mcause)
}

// --- small encoders, local to the test file, mirroring decode/encode.go's
// field-packing shapes for the handful of instruction forms these tests
// need to hand-assemble.

func encodeAddi(rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | 0x0<<12 | rd<<7 | 0x13
}

func encodeAddiw(rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | 0x0<<12 | rd<<7 | 0x1b
}

func encodeLw(rd, rs1 uint32, imm int32) (uint32, error) {
	return uint32(imm)<<20 | rs1<<15 | 0x2<<12 | rd<<7 | 0x03, nil
}

func encodeBeq(rs1, rs2 uint32, imm int32) (uint32, error) {
	u := uint32(imm)
	return (u&0x1000)<<19 | (u&0x7e0)<<20 | rs2<<20 | rs1<<15 | 0<<12 |
		(u&0x1e)<<7 | (u&0x800)>>4 | 0x63, nil
}

func encodeJal(rd uint32, imm int32) (uint32, error) {
	u := uint32(imm)
	return (u&0x100000)<<11 | (u & 0xff000) | (u&0x800)<<9 | (u&0x7fe)<<20 | rd<<7 | 0x6f, nil
}

func encodeCsrrs(rd uint32, csr uint16, rs1 uint32) (uint32, error) {
	return uint32(csr)<<20 | rs1<<15 | 0x2<<12 | rd<<7 | 0x73, nil
}

func encodeDiv(rd, rs1, rs2 uint32) uint32 {
	return 0x01<<25 | rs2<<20 | rs1<<15 | 0x4<<12 | rd<<7 | 0x33
}

func encodeSystem(funct, rs1, rd uint32) uint32 {
	return funct<<20 | rs1<<15 | rd<<7 | 0x73
}
