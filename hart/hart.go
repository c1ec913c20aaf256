// Package hart implements the RISC-V execution core: a single hardware
// thread carrying its own program counter, integer register file, CSR
// file and memory, driven by the fetch/decode/execute/trap loop. Every
// public entry point here is the "Execution engine" and "Data model"
// spec.md §3/§4.5 describe; decode.Decode32/ExpandCompressed supply the
// pure decoding step this package dispatches on.
package hart

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"rvsim/decode"
)

// Hart is the single hardware thread this core simulates (spec.md §3).
type Hart struct {
	pc     uint64
	currPc uint64

	xregs XRegs
	csrs  *CSRFile
	priv  Priv

	mem *Memory

	width int // 32 or 64, the register width W

	haltAddr     uint64
	haltAddrSet  bool
	magicHalt    uint64 // write to this address stops Run; 0 disables it
	stopped      bool

	trace *Trace

	// BreakpointTval overrides the mtval stored by ebreak/ecall, which
	// spec.md §9 leaves implementation-defined (architectural convention
	// is either 0 or the faulting instruction's address). Defaults to nil,
	// meaning 0, per SPEC_FULL.md §4.
	BreakpointTval func(currPc uint64) uint64
}

// NewHart constructs a hart with the given memory size and register count.
// regCount must be 32 (spec.md §6); width must be 32 or 64.
func NewHart(memSize uint, regCount int, width int) (*Hart, error) {
	if regCount != NumRegs {
		return nil, fmt.Errorf("hart: register count must be %d, got %d", NumRegs, regCount)
	}
	if width != 32 && width != 64 {
		return nil, fmt.Errorf("hart: register width must be 32 or 64, got %d", width)
	}
	h := &Hart{
		mem:   NewMemory(memSize),
		width: width,
	}
	h.Initialize()
	return h, nil
}

// Width reports the configured register width W.
func (h *Hart) Width() int { return h.width }

// Memory exposes the hart's address space to loaders, which mutate it only
// before Run is called (spec.md §3 "Ownership"). Implements
// loader.MemoryWriter.
func (h *Hart) Memory() *Memory { return h.mem }

// Initialize resets architectural state to spec.md §3's lifecycle: zero
// registers, pc = 0, and the CSR defaults installDefaults computes
// (misa, mstatus, mhartid and the rest of the minimum CSR set).
func (h *Hart) Initialize() {
	h.xregs.Reset()
	h.pc = 0
	h.currPc = 0
	h.priv = Machine
	h.csrs = installDefaults(h.width)
	h.stopped = false
}

// mask truncates v to the configured register width W.
func (h *Hart) mask(v uint64) uint64 {
	if h.width == 32 {
		return uint64(uint32(v))
	}
	return v
}

// signed reinterprets v, already masked to W bits, as a signed W-bit value
// sign-extended into an int64 for comparisons and arithmetic.
func (h *Hart) signed(v uint64) int64 {
	if h.width == 32 {
		return int64(int32(uint32(v)))
	}
	return int64(v)
}

// SetHaltAddress configures an address that stops Run/Step when pc reaches
// it, the "configured halt address" spec.md §4.5.1/§6 describes.
func (h *Hart) SetHaltAddress(addr uint64) {
	h.haltAddr = addr
	h.haltAddrSet = true
}

// SetMagicHaltAddress configures an address that, when stored to by any
// store instruction, stops Run/Step — the "architectural halt idiom (e.g.
// a write to a magic address)" spec.md §5 permits as implementation
// defined. 0 disables the feature (0 is also a legitimate store target, so
// callers that need address 0 to behave normally simply don't enable this).
func (h *Hart) SetMagicHaltAddress(addr uint64) { h.magicHalt = addr }

// PeekIntReg is the host-level, non-intrusive observer spec.md §6 calls
// peekIntReg: it never mutates state and reports whether i was valid.
func (h *Hart) PeekIntReg(i int) (ok bool, value uint64) {
	v, ok := h.xregs.Peek(uint32(i))
	return ok, v
}

// PeekCsr is spec.md §6's peekCsr.
func (h *Hart) PeekCsr(addr uint16) (ok bool, value uint64) {
	v, ok := h.csrs.Peek(addr)
	return ok, v
}

// PeekPc is spec.md §6's peekPc.
func (h *Hart) PeekPc() uint64 { return h.pc }

// SetPC sets the program counter directly. Callers typically use this once
// after a loader reports an entry point, before Run is invoked.
func (h *Hart) SetPC(pc uint64) { h.pc = h.mask(pc) }

// SetIntReg writes register i directly from the host, outside instruction
// semantics; like every XRegs write, a write to x0 is discarded. Used to
// apply config.InitRegs and in test setup.
func (h *Hart) SetIntReg(i uint32, v uint64) { h.xregs.Write(i, h.mask(v)) }

// Priv reports the hart's current privilege mode.
func (h *Hart) Priv() Priv { return h.priv }

// ExpandCompressed is spec.md §6's expandCompressed, exposed directly on
// Hart since it's a pure function of the configured width and needs no
// other hart state.
func (h *Hart) ExpandCompressed(enc16 uint16) (ok bool, enc32 uint32) {
	v, err := decode.ExpandCompressed(enc16, h.width)
	return err == nil, v
}

// Dump renders pc, currPc, the privilege mode, all integer registers and
// the trap CSRs (mstatus, mcause, mepc, mtval) with go-spew, for use in test
// failures and CLI panic handlers — the role the teacher gives
// Emulator.String()/spew.Dump in emulator.go and test.go. Other CSRs and
// memory are not included.
func (h *Hart) Dump() string {
	return spew.Sdump(struct {
		PC, CurrPC uint64
		Priv       Priv
		XRegs      [NumRegs]uint64
		Mstatus    uint64
		Mcause     uint64
		Mepc       uint64
		Mtval      uint64
	}{
		PC: h.pc, CurrPC: h.currPc, Priv: h.priv,
		XRegs:   h.xregs.regs,
		Mstatus: h.csrs.RawGet(CsrMstatus),
		Mcause:  h.csrs.RawGet(CsrMcause),
		Mepc:    h.csrs.RawGet(CsrMepc),
		Mtval:   h.csrs.RawGet(CsrMtval),
	})
}
