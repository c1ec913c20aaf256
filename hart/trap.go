package hart

// Cause is a RISC-V exception or interrupt cause code (the low bits of
// mcause; the top bit of mcause itself distinguishes interrupt from
// exception and is not part of Cause).
type Cause uint64

// Synchronous exception causes this core can raise (spec.md §4.5.2,
// §4.5.3). Values match the RISC-V privileged architecture's mcause
// encoding exactly, which is why the concrete scenarios in spec.md §8 can
// assert on literal mcause values.
const (
	CauseInstAddrMisaligned Cause = 0
	CauseInstAccessFault    Cause = 1
	CauseIllegalInst        Cause = 2
	CauseBreakpoint         Cause = 3
	CauseLoadAddrMisaligned Cause = 4
	CauseLoadAccessFault    Cause = 5
	CauseStoreAddrMisaligned Cause = 6
	CauseStoreAccessFault   Cause = 7
	CauseUEnvCall           Cause = 8
	CauseSEnvCall           Cause = 9
	CauseMEnvCall           Cause = 11
)

// Interrupt causes this core exposes for completeness (spec.md §1 limits
// interrupt sources to "architectural software/timer/external encodings");
// nothing in this core raises these, and no exported method delivers an
// interrupt: raiseTrap, which handles Trap.Interrupt, is unexported.
const (
	CauseMSoftwareInterrupt Cause = 3
	CauseMTimerInterrupt    Cause = 7
	CauseMExternalInterrupt Cause = 11
)

// interruptBit is set in mcause for asynchronous traps (spec.md §4.5.3
// step 2): bit W-1.
func interruptBit(width int) uint64 {
	return uint64(1) << (width - 1)
}

// Trap is the architectural-trap error channel (spec.md §7): a cause code
// plus the value to park in mtval. It is produced by instruction semantic
// handlers and consumed by raiseTrap; it never escapes Hart.Run or
// Hart.RunUntilAddress, so it deliberately does not implement error — the
// two failure channels (architectural trap vs. host-level error) must stay
// distinct per SPEC_FULL.md §1.3.
type Trap struct {
	Cause     Cause
	Tval      uint64
	Interrupt bool
}

// raiseTrap performs trap initiation exactly as spec.md §4.5.3 enumerates:
// save mepc/mcause/mtval, stack MIE into MPIE and clear MIE, stack the
// current privilege into MPP, switch to Machine mode, and vector pc to
// mtvec's base (plus 4*cause for vectored-mode interrupts). All the CSR
// writes here go through RawSet: trap entry must never itself trap
// (spec.md §4.5.3, final paragraph).
func (h *Hart) raiseTrap(t Trap, pcToSave uint64) {
	h.csrs.RawSet(CsrMepc, h.mask(pcToSave))

	cause := uint64(t.Cause)
	if t.Interrupt {
		cause |= interruptBit(h.width)
	}
	h.csrs.RawSet(CsrMcause, cause)
	h.csrs.RawSet(CsrMtval, h.mask(t.Tval))

	status := h.csrs.RawGet(CsrMstatus)
	mie := status & mstatusMIE
	status &^= mstatusMPIE
	if mie != 0 {
		status |= mstatusMPIE
	}
	status &^= mstatusMIE
	status &^= uint64(mstatusMPPMask)
	status |= uint64(h.priv) << mstatusMPPShift
	h.csrs.RawSet(CsrMstatus, status)

	h.priv = Machine

	tvec := h.csrs.RawGet(CsrMtvec)
	base := tvec &^ uint64(mtvecModeMask)
	if t.Interrupt && tvec&mtvecModeMask == mtvecVectored {
		base += 4 * uint64(t.Cause)
	}
	h.pc = h.mask(base)
}
