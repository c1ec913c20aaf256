package hart

// CSR addresses this core recognizes (spec.md §4.3). Only the Machine-mode
// set is implemented; supervisor/user delegation is an explicitly deferred
// Open Question (SPEC_FULL.md §4).
const (
	CsrMstatus  = 0x300
	CsrMisa     = 0x301
	CsrMedeleg  = 0x302
	CsrMideleg  = 0x303
	CsrMie      = 0x304
	CsrMtvec    = 0x305
	CsrMscratch = 0x340
	CsrMepc     = 0x341
	CsrMcause   = 0x342
	CsrMtval    = 0x343
	CsrMip      = 0x344
	CsrMcycle   = 0xB00
	CsrMinstret = 0xB02
	CsrMcycleh  = 0xB80 // RV32 only: high half of mcycle
	CsrMinstreh = 0xB82 // RV32 only: high half of minstret
	CsrMhartid  = 0xF14
)

// mstatus bit positions this core reads or writes during trap entry/return.
const (
	mstatusMIE  = 1 << 3
	mstatusMPIE = 1 << 7
	mstatusMPPShift = 11
	mstatusMPPMask  = 0x3 << mstatusMPPShift
)

// mtvec low two bits select direct (0) vs vectored (1) trap dispatch.
const (
	mtvecModeMask = 0x3
	mtvecVectored = 0x1
)

// csrEntry is one row of the CSR file: a current value plus the access
// rules spec.md §4.3 and §9 ("CSR table") require — a write mask, an
// implemented-bits mask, and a minimum privilege.
type csrEntry struct {
	value     uint64
	writeMask uint64
	implMask  uint64
	minPriv   Priv
}

// CSRFile is the sparse 12-bit-address -> value map with per-register
// access rules. Unimplemented addresses are simply absent from the map;
// accessing one fails rather than panicking (spec.md §9).
type CSRFile struct {
	regs map[uint16]*csrEntry
}

func newCSRFile() *CSRFile {
	return &CSRFile{regs: make(map[uint16]*csrEntry)}
}

func (c *CSRFile) define(addr uint16, value, writeMask, implMask uint64, minPriv Priv) {
	c.regs[addr] = &csrEntry{value: value, writeMask: writeMask, implMask: implMask, minPriv: minPriv}
}

// Read returns (value, true) if addr is implemented and priv is sufficient,
// masked to the bits that read as implemented.
func (c *CSRFile) Read(addr uint16, priv Priv) (uint64, bool) {
	e, ok := c.regs[addr]
	if !ok || priv < e.minPriv {
		return 0, false
	}
	return e.value & e.implMask, true
}

// Write stores (old &^ mask) | (v & mask) into addr, enforcing spec.md
// §4.3's contract: fails on an unimplemented address, insufficient
// privilege, or a read-only register (writeMask == 0).
func (c *CSRFile) Write(addr uint16, priv Priv, v uint64) bool {
	e, ok := c.regs[addr]
	if !ok || priv < e.minPriv || e.writeMask == 0 {
		return false
	}
	e.value = (e.value &^ e.writeMask) | (v & e.writeMask)
	return true
}

// RawSet bypasses privilege and write-mask checks entirely. Trap initiation
// uses this to set mepc/mcause/mtval/mstatus: "Trap initiation never itself
// traps" (spec.md §4.5.3). It is also how the execution engine advances
// mcycle/minstret each retired instruction.
func (c *CSRFile) RawSet(addr uint16, v uint64) {
	e, ok := c.regs[addr]
	if !ok {
		return
	}
	e.value = v
}

// RawGet reads addr's raw stored value with no privilege or implemented-bit
// masking, for internal use (trap entry, counters) where the full value is
// needed regardless of what a CSR instruction would be allowed to see.
func (c *CSRFile) RawGet(addr uint16) uint64 {
	e, ok := c.regs[addr]
	if !ok {
		return 0
	}
	return e.value
}

// Peek is the host-level, no-privilege-check observer used by tests and the
// CLI (spec.md §6's peekCsr); it reports whether addr is implemented at all.
func (c *CSRFile) Peek(addr uint16) (uint64, bool) {
	e, ok := c.regs[addr]
	if !ok {
		return 0, false
	}
	return e.value, true
}

// installDefaults populates the CSR file with the architectural reset
// state spec.md §3 requires: misa reflecting I+M+C, mstatus's default
// privilege bits, mhartid == 0, and the rest of the minimum set zeroed.
func installDefaults(width int) *CSRFile {
	c := newCSRFile()

	const extI = 1 << 8
	const extM = 1 << 12
	const extC = 1 << 2
	var misa uint64
	if width == 64 {
		misa = uint64(2) << 62
	} else {
		misa = uint64(1) << 30
	}
	misa |= extI | extM | extC

	wmask := uint64(0xFFFFFFFF)
	if width == 64 {
		wmask = ^uint64(0)
	}

	c.define(CsrMisa, misa, 0, wmask, Machine)
	c.define(CsrMstatus, 0, uint64(mstatusMIE|mstatusMPIE|mstatusMPPMask), wmask, Machine)
	c.define(CsrMedeleg, 0, 0, wmask, Machine)
	c.define(CsrMideleg, 0, 0, wmask, Machine)
	c.define(CsrMie, 0, wmask, wmask, Machine)
	c.define(CsrMtvec, 0, wmask, wmask, Machine)
	c.define(CsrMscratch, 0, wmask, wmask, Machine)
	c.define(CsrMepc, 0, ^uint64(1), wmask, Machine)
	c.define(CsrMcause, 0, wmask, wmask, Machine)
	c.define(CsrMtval, 0, wmask, wmask, Machine)
	c.define(CsrMip, 0, 0, wmask, Machine)
	c.define(CsrMcycle, 0, wmask, wmask, Machine)
	c.define(CsrMinstret, 0, wmask, wmask, Machine)
	if width == 32 {
		c.define(CsrMcycleh, 0, wmask, wmask, Machine)
		c.define(CsrMinstreh, 0, wmask, wmask, Machine)
	}
	c.define(CsrMhartid, 0, 0, wmask, Machine)

	return c
}
