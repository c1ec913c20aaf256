package hart

import (
	"math"
	"math/bits"

	"rvsim/decode"
)

// fetch performs spec.md §4.5.1 steps 1-3: snapshot currPc, read 16 bits,
// decide compressed vs standard by the low two bits, and read the upper
// half if it turns out to be a 32-bit encoding. It never decodes; that is
// stepOnce's job, mirroring decode's separation from dispatch.
func (h *Hart) fetch() (low16 uint16, word uint32, length int, trap *Trap) {
	h.currPc = h.pc
	lo, err := h.mem.FetchHalf(Addr(h.pc))
	if err != nil {
		return 0, 0, 0, &Trap{Cause: CauseInstAccessFault, Tval: h.pc}
	}
	if lo&0x3 != 0x3 {
		return lo, uint32(lo), 2, nil
	}
	hi, err := h.mem.FetchHalf(Addr(h.pc + 2))
	if err != nil {
		return 0, 0, 0, &Trap{Cause: CauseInstAccessFault, Tval: h.pc}
	}
	return lo, uint32(lo) | uint32(hi)<<16, 4, nil
}

// stepOnce executes exactly one instruction: fetch, decode, dispatch, and
// on a semantic fault, raise the corresponding trap (spec.md §4.5.1 steps
// 4-6). It reports whether a trap fired, which Step uses to stop early.
func (h *Hart) stepOnce() bool {
	low16, word, length, trap := h.fetch()
	if trap != nil {
		h.raiseTrap(*trap, h.currPc)
		return true
	}

	var op decode.Op
	var err error
	if length == 2 {
		op, err = decode.DecodeCompressed(low16, h.width)
	} else {
		op, err = decode.Decode32(word, h.width)
	}
	if err != nil {
		raw := word
		if length == 2 {
			raw = uint32(low16)
		}
		h.raiseTrap(Trap{Cause: CauseIllegalInst, Tval: uint64(raw)}, h.currPc)
		return true
	}

	if h.trace != nil {
		h.trace.record(h.currPc, int(op.Kind))
	}

	nextPC := h.mask(h.currPc + uint64(op.Length))
	if t := h.execute(op, nextPC); t != nil {
		h.raiseTrap(*t, h.currPc)
		return true
	}
	h.bumpCounter(CsrMcycle, CsrMcycleh)
	h.bumpCounter(CsrMinstret, CsrMinstreh)
	return false
}

// Run executes instructions until an externally configured halt condition
// is reached: SetMagicHaltAddress triggers, or pc reaches a halt address
// set with SetHaltAddress. Architectural traps never stop the loop
// (spec.md §7): they're handled and execution continues at the trap
// vector, exactly like real hardware.
func (h *Hart) Run() error {
	for {
		if h.stopped {
			return nil
		}
		if h.haltAddrSet && h.pc == h.haltAddr {
			return nil
		}
		h.stepOnce()
	}
}

// RunUntilAddress is spec.md §4.5.1's runUntilAddress: run while
// currPc != a.
func (h *Hart) RunUntilAddress(a uint64) error {
	for h.currPc != a {
		if h.stopped {
			return nil
		}
		h.stepOnce()
	}
	return nil
}

// Step runs up to n instructions, stopping early on a halt condition or
// the instruction after a trap (SPEC_FULL.md §3's permitted bounded-step
// addition; spec.md §5 explicitly allows it without changing semantics).
func (h *Hart) Step(n int) (executed int, err error) {
	for i := 0; i < n; i++ {
		if h.stopped {
			return executed, nil
		}
		if h.haltAddrSet && h.pc == h.haltAddr {
			return executed, nil
		}
		trapped := h.stepOnce()
		executed++
		if trapped {
			return executed, nil
		}
	}
	return executed, nil
}

func (h *Hart) bumpCounter(lowAddr, highAddr uint16) {
	v := h.csrs.RawGet(lowAddr) + 1
	h.csrs.RawSet(lowAddr, v)
	if h.width == 32 {
		h.csrs.RawSet(highAddr, v>>32)
	}
}

// execute dispatches on the decoded operation kind and updates
// architectural state exactly per spec.md §4.5.2's per-instruction
// contracts. It returns a non-nil Trap when the instruction's own
// semantics fault; stepOnce is responsible for actually raising it.
// nextPC is the address of the following instruction, already computed by
// the caller; branches and jumps overwrite h.pc directly (spec.md §4.5.1
// step 6).
func (h *Hart) execute(op decode.Op, nextPC uint64) *Trap {
	h.pc = nextPC

	if h.width == 32 && isRV64Only(op.Kind) {
		return &Trap{Cause: CauseIllegalInst, Tval: uint64(op.Raw)}
	}

	rs1 := h.xregs.Read(op.Rs1)
	rs2 := h.xregs.Read(op.Rs2)
	imm := uint64(op.Imm)

	switch op.Kind {
	case decode.Lui:
		h.xregs.Write(op.Rd, h.mask(imm))
	case decode.Auipc:
		h.xregs.Write(op.Rd, h.mask(h.currPc+imm))

	case decode.Jal:
		target := h.mask(h.currPc + imm)
		if target%2 != 0 {
			return &Trap{Cause: CauseInstAddrMisaligned, Tval: target}
		}
		h.xregs.Write(op.Rd, h.mask(h.currPc+uint64(op.Length)))
		h.pc = target
	case decode.Jalr:
		target := h.mask((rs1 + imm) &^ 1)
		if target%2 != 0 {
			return &Trap{Cause: CauseInstAddrMisaligned, Tval: target}
		}
		h.xregs.Write(op.Rd, h.mask(h.currPc+uint64(op.Length)))
		h.pc = target

	case decode.Beq, decode.Bne, decode.Blt, decode.Bge, decode.Bltu, decode.Bgeu:
		if h.branchTaken(op.Kind, rs1, rs2) {
			target := h.mask(h.currPc + imm)
			if target%2 != 0 {
				return &Trap{Cause: CauseInstAddrMisaligned, Tval: target}
			}
			h.pc = target
		}

	case decode.Lb, decode.Lh, decode.Lw, decode.Lbu, decode.Lhu, decode.Lwu, decode.Ld:
		return h.doLoad(op, rs1, imm)
	case decode.Sb, decode.Sh, decode.Sw, decode.Sd:
		return h.doStore(op, rs1, rs2, imm)

	case decode.Addi, decode.Add:
		h.xregs.Write(op.Rd, h.mask(rs1+h.rhs(op, rs2, imm)))
	case decode.Sub:
		h.xregs.Write(op.Rd, h.mask(rs1-rs2))
	case decode.Slti:
		h.xregs.Write(op.Rd, boolW(h.signed(rs1) < op.Imm))
	case decode.Slt:
		h.xregs.Write(op.Rd, boolW(h.signed(rs1) < h.signed(rs2)))
	case decode.Sltiu:
		h.xregs.Write(op.Rd, boolW(h.mask(rs1) < h.mask(imm)))
	case decode.Sltu:
		h.xregs.Write(op.Rd, boolW(h.mask(rs1) < h.mask(rs2)))
	case decode.Xori, decode.Xor:
		h.xregs.Write(op.Rd, h.mask(rs1^h.rhs(op, rs2, imm)))
	case decode.Ori, decode.Or:
		h.xregs.Write(op.Rd, h.mask(rs1|h.rhs(op, rs2, imm)))
	case decode.Andi, decode.And:
		h.xregs.Write(op.Rd, h.mask(rs1&h.rhs(op, rs2, imm)))
	case decode.Slli:
		h.xregs.Write(op.Rd, h.mask(rs1<<uint(imm)))
	case decode.Sll:
		h.xregs.Write(op.Rd, h.mask(rs1<<h.shamt(rs2)))
	case decode.Srli:
		h.xregs.Write(op.Rd, h.mask(h.mask(rs1)>>uint(imm)))
	case decode.Srl:
		h.xregs.Write(op.Rd, h.mask(h.mask(rs1)>>h.shamt(rs2)))
	case decode.Srai:
		h.xregs.Write(op.Rd, h.mask(uint64(h.signed(rs1)>>uint(imm))))
	case decode.Sra:
		h.xregs.Write(op.Rd, h.mask(uint64(h.signed(rs1)>>h.shamt(rs2))))

	case decode.Addiw, decode.Addw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)+uint32(h.rhs(op, rs2, imm))))
	case decode.Subw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)-uint32(rs2)))
	case decode.Slliw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)<<uint(imm&0x1f)))
	case decode.Sllw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)<<(uint32(rs2)&0x1f)))
	case decode.Srliw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)>>uint(imm&0x1f)))
	case decode.Srlw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)>>(uint32(rs2)&0x1f)))
	case decode.Sraiw:
		h.xregs.Write(op.Rd, signExtend32(uint32(int32(uint32(rs1))>>uint(imm&0x1f))))
	case decode.Sraw:
		h.xregs.Write(op.Rd, signExtend32(uint32(int32(uint32(rs1))>>(uint32(rs2)&0x1f))))

	case decode.Fence, decode.FenceI, decode.Wfi:
		// no-op: no caches, no pipeline, nothing to fence or wait on.

	case decode.Ecall:
		return &Trap{Cause: envCallCause(h.priv), Tval: h.breakpointTval()}
	case decode.Ebreak:
		return &Trap{Cause: CauseBreakpoint, Tval: h.breakpointTval()}

	case decode.Csrrw, decode.Csrrs, decode.Csrrc, decode.Csrrwi, decode.Csrrsi, decode.Csrrci:
		return h.doCsr(op)

	case decode.Mul:
		h.xregs.Write(op.Rd, h.mask(rs1*rs2))
	case decode.Mulh:
		h.xregs.Write(op.Rd, h.mulhSigned(h.signed(rs1), h.signed(rs2)))
	case decode.Mulhsu:
		h.xregs.Write(op.Rd, h.mulhSU(h.signed(rs1), h.mask(rs2)))
	case decode.Mulhu:
		h.xregs.Write(op.Rd, h.mulhUnsigned(h.mask(rs1), h.mask(rs2)))
	case decode.Div:
		h.xregs.Write(op.Rd, h.mask(uint64(h.divSigned(h.signed(rs1), h.signed(rs2)))))
	case decode.Divu:
		h.xregs.Write(op.Rd, h.mask(h.divUnsigned(h.mask(rs1), h.mask(rs2))))
	case decode.Rem:
		h.xregs.Write(op.Rd, h.mask(uint64(h.remSigned(h.signed(rs1), h.signed(rs2)))))
	case decode.Remu:
		h.xregs.Write(op.Rd, h.mask(h.remUnsigned(h.mask(rs1), h.mask(rs2))))

	case decode.Mulw:
		h.xregs.Write(op.Rd, signExtend32(uint32(rs1)*uint32(rs2)))
	case decode.Divw:
		a, b := int32(uint32(rs1)), int32(uint32(rs2))
		h.xregs.Write(op.Rd, signExtend32(uint32(divSigned32(a, b))))
	case decode.Divuw:
		a, b := uint32(rs1), uint32(rs2)
		h.xregs.Write(op.Rd, signExtend32(divUnsigned32(a, b)))
	case decode.Remw:
		a, b := int32(uint32(rs1)), int32(uint32(rs2))
		h.xregs.Write(op.Rd, signExtend32(uint32(remSigned32(a, b))))
	case decode.Remuw:
		a, b := uint32(rs1), uint32(rs2)
		h.xregs.Write(op.Rd, signExtend32(remUnsigned32(a, b)))

	default:
		return &Trap{Cause: CauseIllegalInst, Tval: uint64(op.Raw)}
	}
	return nil
}

// rhs picks the right-hand operand for the cases execute shares between a
// register form and its immediate form (Add/Addi, Xor/Xori, Or/Ori,
// And/Andi, Addw/Addiw): rs2 for the register Kinds, the immediate for the
// others.
func (h *Hart) rhs(op decode.Op, rs2, imm uint64) uint64 {
	switch op.Kind {
	case decode.Add, decode.Xor, decode.Or, decode.And, decode.Addw:
		return rs2
	default:
		return imm
	}
}

func (h *Hart) shamt(rs2 uint64) uint {
	if h.width == 32 {
		return uint(rs2) & 0x1f
	}
	return uint(rs2) & 0x3f
}

func boolW(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func isRV64Only(k decode.Kind) bool {
	switch k {
	case decode.Addiw, decode.Slliw, decode.Srliw, decode.Sraiw,
		decode.Addw, decode.Subw, decode.Sllw, decode.Srlw, decode.Sraw,
		decode.Mulw, decode.Divw, decode.Divuw, decode.Remw, decode.Remuw,
		decode.Ld, decode.Sd:
		return true
	default:
		return false
	}
}

func (h *Hart) branchTaken(kind decode.Kind, rs1, rs2 uint64) bool {
	switch kind {
	case decode.Beq:
		return h.mask(rs1) == h.mask(rs2)
	case decode.Bne:
		return h.mask(rs1) != h.mask(rs2)
	case decode.Blt:
		return h.signed(rs1) < h.signed(rs2)
	case decode.Bge:
		return h.signed(rs1) >= h.signed(rs2)
	case decode.Bltu:
		return h.mask(rs1) < h.mask(rs2)
	case decode.Bgeu:
		return h.mask(rs1) >= h.mask(rs2)
	}
	return false
}

// widthBytes maps a load/store Kind to its access width in bytes.
func widthBytes(k decode.Kind) uint {
	switch k {
	case decode.Lb, decode.Lbu, decode.Sb:
		return 1
	case decode.Lh, decode.Lhu, decode.Sh:
		return 2
	case decode.Lw, decode.Lwu, decode.Sw:
		return 4
	case decode.Ld, decode.Sd:
		return 8
	}
	return 0
}

func (h *Hart) doLoad(op decode.Op, rs1, imm uint64) *Trap {
	ea := Addr(h.mask(rs1 + imm))
	width := widthBytes(op.Kind)
	v, err := h.mem.LoadWidth(ea, width)
	if err != nil {
		cause := CauseLoadAccessFault
		if me, ok := err.(*MemError); ok && me.Fault == FaultMisaligned {
			cause = CauseLoadAddrMisaligned
		}
		return &Trap{Cause: cause, Tval: uint64(ea)}
	}
	switch op.Kind {
	case decode.Lb:
		h.xregs.Write(op.Rd, h.mask(uint64(int64(int8(v)))))
	case decode.Lh:
		h.xregs.Write(op.Rd, h.mask(uint64(int64(int16(v)))))
	case decode.Lw:
		h.xregs.Write(op.Rd, h.mask(uint64(int64(int32(v)))))
	case decode.Lbu:
		h.xregs.Write(op.Rd, v&0xff)
	case decode.Lhu:
		h.xregs.Write(op.Rd, v&0xffff)
	case decode.Lwu:
		h.xregs.Write(op.Rd, v&0xffffffff)
	case decode.Ld:
		h.xregs.Write(op.Rd, v)
	}
	return nil
}

func (h *Hart) doStore(op decode.Op, rs1, rs2, imm uint64) *Trap {
	ea := Addr(h.mask(rs1 + imm))
	width := widthBytes(op.Kind)
	if err := h.mem.StoreWidth(ea, width, rs2); err != nil {
		cause := CauseStoreAccessFault
		if me, ok := err.(*MemError); ok && me.Fault == FaultMisaligned {
			cause = CauseStoreAddrMisaligned
		}
		return &Trap{Cause: cause, Tval: uint64(ea)}
	}
	if h.magicHalt != 0 && uint64(ea) == h.magicHalt {
		h.stopped = true
	}
	return nil
}

func (h *Hart) breakpointTval() uint64 {
	if h.BreakpointTval != nil {
		return h.BreakpointTval(h.currPc)
	}
	return 0
}

func envCallCause(p Priv) Cause {
	switch p {
	case User:
		return CauseUEnvCall
	case Supervisor:
		return CauseSEnvCall
	default:
		return CauseMEnvCall
	}
}

func (h *Hart) doCsr(op decode.Op) *Trap {
	addr := uint16(op.Imm) & 0xfff
	isImm := op.Kind == decode.Csrrwi || op.Kind == decode.Csrrsi || op.Kind == decode.Csrrci

	var valueIn uint64
	if isImm {
		valueIn = uint64(op.Rs1)
	} else {
		valueIn = h.xregs.Read(op.Rs1)
	}

	old, ok := h.csrs.Read(addr, h.priv)
	if !ok {
		return &Trap{Cause: CauseIllegalInst, Tval: uint64(op.Raw)}
	}

	var newVal uint64
	switch op.Kind {
	case decode.Csrrw, decode.Csrrwi:
		newVal = valueIn
	case decode.Csrrs, decode.Csrrsi:
		newVal = old | valueIn
	case decode.Csrrc, decode.Csrrci:
		newVal = old &^ valueIn
	}

	isWrite := op.Kind == decode.Csrrw || op.Kind == decode.Csrrwi
	skipWrite := !isWrite && op.Rs1 == 0
	if !skipWrite {
		if !h.csrs.Write(addr, h.priv, newVal) {
			return &Trap{Cause: CauseIllegalInst, Tval: uint64(op.Raw)}
		}
	}
	h.xregs.Write(op.Rd, h.mask(old))
	return nil
}

// intMin returns the most negative value representable at width W, used
// by the divide/remainder overflow identity (spec.md §4.5.2/§8).
func (h *Hart) intMin() int64 {
	if h.width == 32 {
		return int64(math.MinInt32)
	}
	return math.MinInt64
}

func (h *Hart) divSigned(a, b int64) int64 {
	if b == 0 {
		return -1
	}
	if a == h.intMin() && b == -1 {
		return a
	}
	return a / b
}

func (h *Hart) remSigned(a, b int64) int64 {
	if b == 0 {
		return a
	}
	if a == h.intMin() && b == -1 {
		return 0
	}
	return a % b
}

func (h *Hart) divUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return h.mask(^uint64(0))
	}
	return a / b
}

func (h *Hart) remUnsigned(a, b uint64) uint64 {
	if b == 0 {
		return a
	}
	return a % b
}

func divSigned32(a, b int32) int32 {
	if b == 0 {
		return -1
	}
	if a == math.MinInt32 && b == -1 {
		return a
	}
	return a / b
}

func remSigned32(a, b int32) int32 {
	if b == 0 {
		return a
	}
	if a == math.MinInt32 && b == -1 {
		return 0
	}
	return a % b
}

func divUnsigned32(a, b uint32) uint32 {
	if b == 0 {
		return ^uint32(0)
	}
	return a / b
}

func remUnsigned32(a, b uint32) uint32 {
	if b == 0 {
		return a
	}
	return a % b
}

// mulhSigned/mulhUnsigned/mulhSU compute the high W bits of a W*W -> 2W
// product (spec.md §4.5.2's mulh/mulhu/mulhsu). At W==32 both halves of
// the product fit in an int64/uint64 so plain arithmetic suffices; at
// W==64 the product needs math/bits.Mul64's 128-bit result, adjusted from
// an unsigned product to the signed interpretation RISC-V wants.
func (h *Hart) mulhSigned(a, b int64) uint64 {
	if h.width == 32 {
		return h.mask(uint64(uint32((a * b) >> 32)))
	}
	hi, _ := bits.Mul64(uint64(a), uint64(b))
	if a < 0 {
		hi -= uint64(b)
	}
	if b < 0 {
		hi -= uint64(a)
	}
	return hi
}

func (h *Hart) mulhUnsigned(a, b uint64) uint64 {
	if h.width == 32 {
		return h.mask((a * b) >> 32)
	}
	hi, _ := bits.Mul64(a, b)
	return hi
}

func (h *Hart) mulhSU(a int64, b uint64) uint64 {
	if h.width == 32 {
		return h.mask(uint64(uint32((a * int64(b)) >> 32)))
	}
	hi, _ := bits.Mul64(uint64(a), b)
	if a < 0 {
		hi -= b
	}
	return hi
}
