package decode

// ExpandCompressed maps a 16-bit RVC encoding to its canonical 32-bit
// standard-form equivalent, exactly the operation spec.md calls
// `expandCompressed`. width is 32 or 64 and disambiguates the handful of
// RVC opcodes whose meaning depends on XLEN (C.JAL/C.ADDIW, C.FLW/C.LD,
// C.FSW/C.SD, C.FLWSP/C.LDSP, C.FSWSP/C.SDSP).
//
// Every recognized compressed form maps to exactly one standard form with
// identical observable behavior (spec.md 4.4). Reserved sub-cases of an
// otherwise-valid opcode (c.addi4spn with zero immediate, c.lwsp with rd==0,
// c.jr with rs1==0, and similar) return an error so that the caller raises
// ILLEGAL_INST instead of silently expanding to nonsense.
func ExpandCompressed(enc16 uint16, width int) (uint32, error) {
	if enc16 == 0 {
		return 0, illegal(uint32(enc16), "all-zero compressed encoding is reserved")
	}

	switch enc16>>11&0x1c | enc16&0x3 {
	case 0x00: // C.ADDI4SPN
		imm, rd := decodeCIW(enc16)
		imm = imm&0xc0>>2 | imm&0x3c<<4 | imm&0x2<<1 | imm&0x1<<3
		if imm == 0 {
			return 0, illegal(uint32(enc16), "c.addi4spn: reserved (nzuimm=0)")
		}
		return encodeI(opOpImm, 0x0, rd, spReg, int32(imm)), nil
	case 0x04: // C.FLD / C.LQ — F/D extension, not supported
		return 0, illegal(uint32(enc16), "c.fld/c.lq: floating-point extension not supported")
	case 0x08: // C.LW
		imm, rs1, rd := decodeCL(enc16)
		imm = (imm<<5 | imm) & 0x3e << 1
		return encodeI(opLoad, 0x2, rd, rs1, int32(imm)), nil
	case 0x0C: // C.FLW (RV32) / C.LD (RV64)
		if width == 32 {
			return 0, illegal(uint32(enc16), "c.flw: floating-point extension not supported")
		}
		imm, rs1, rd := decodeCL(enc16)
		imm = (imm<<6 | imm<<1) & 0xf8
		return encodeI(opLoad, 0x3, rd, rs1, int32(imm)), nil
	case 0x10: // reserved
		return 0, illegal(uint32(enc16), "reserved compressed encoding")
	case 0x14: // C.FSD / C.SQ — F/D extension, not supported
		return 0, illegal(uint32(enc16), "c.fsd/c.sq: floating-point extension not supported")
	case 0x18: // C.SW
		imm, rs1, rs2 := decodeCS(enc16)
		imm = (imm<<5 | imm) << 1 & 0x7c
		return encodeS(opStore, 0x2, rs1, rs2, int32(imm)), nil
	case 0x1C: // C.FSW (RV32) / C.SD (RV64)
		if width == 32 {
			return 0, illegal(uint32(enc16), "c.fsw: floating-point extension not supported")
		}
		imm, rs1, rs2 := decodeCS(enc16)
		imm = (imm<<5 | imm) << 1 & 0xf8
		return encodeS(opStore, 0x3, rs1, rs2, int32(imm)), nil
	case 0x01: // C.NOP / C.ADDI
		imm, rd := decodeCI(enc16)
		return encodeI(opOpImm, 0x0, rd, rd, int32(signExtend(uint64(imm), 5))), nil
	case 0x05: // C.JAL (RV32) / C.ADDIW (RV64)
		imm, rd := decodeCI(enc16)
		se := int32(signExtend(uint64(imm), 5))
		if width == 32 {
			// C.JAL: the CI-format bits are reinterpreted as a CJ-format offset.
			offset := decodeCJOffset(enc16)
			return encodeJ(opJal, raReg, offset), nil
		}
		if rd == 0 {
			return 0, illegal(uint32(enc16), "c.addiw: reserved (rd=0)")
		}
		return encodeI(opOpImm32, 0x0, rd, rd, se), nil
	case 0x09: // C.LI
		imm, rd := decodeCI(enc16)
		return encodeI(opOpImm, 0x0, rd, 0, int32(signExtend(uint64(imm), 5))), nil
	case 0x0D: // C.ADDI16SP / C.LUI
		imm, rd := decodeCI(enc16)
		if rd != spReg {
			if imm == 0 {
				return 0, illegal(uint32(enc16), "c.lui: reserved (nzimm=0)")
			}
			se := int32(signExtend(uint64(imm)<<12, 17))
			return encodeU(opLui, rd, se), nil
		}
		imm = imm&0x20<<4 | imm&0x10 | imm&0x8<<3 | imm&0x6<<6 | imm&0x1<<5
		if imm == 0 {
			return 0, illegal(uint32(enc16), "c.addi16sp: reserved (nzimm=0)")
		}
		se := int32(signExtend(uint64(imm), 9))
		return encodeI(opOpImm, 0x0, spReg, spReg, se), nil
	case 0x11:
		switch enc16 >> 10 & 0x3 {
		case 0x00: // C.SRLI
			imm, rd := decodeShiftCB(enc16)
			return encodeI(opOpImm, 0x5, rd, rd, int32(imm)), nil
		case 0x01: // C.SRAI
			imm, rd := decodeShiftCB(enc16)
			return encodeI(opOpImm, 0x5, rd, rd, int32(imm)|0x400), nil
		case 0x02: // C.ANDI
			imm, rd := decodeShiftCB(enc16)
			return encodeI(opOpImm, 0x7, rd, rd, int32(signExtend(uint64(imm), 5))), nil
		}
		_, rs1, rs2 := decodeCS(enc16)
		switch (enc16 >> 8 & 0x1c) | (enc16 >> 5 & 0x3) {
		case 0xc: // C.SUB
			return encodeR(opOp, 0x0, rs1, rs1, rs2, 0x20), nil
		case 0xd: // C.XOR
			return encodeR(opOp, 0x4, rs1, rs1, rs2, 0x00), nil
		case 0xe: // C.OR
			return encodeR(opOp, 0x6, rs1, rs1, rs2, 0x00), nil
		case 0xf: // C.AND
			return encodeR(opOp, 0x7, rs1, rs1, rs2, 0x00), nil
		case 0x1c: // C.SUBW
			if width == 32 {
				return 0, illegal(uint32(enc16), "c.subw: requires RV64")
			}
			return encodeR(opOp32, 0x0, rs1, rs1, rs2, 0x20), nil
		case 0x1d: // C.ADDW
			if width == 32 {
				return 0, illegal(uint32(enc16), "c.addw: requires RV64")
			}
			return encodeR(opOp32, 0x0, rs1, rs1, rs2, 0x00), nil
		default:
			return 0, illegal(uint32(enc16), "reserved compressed CA-format encoding")
		}
	case 0x15: // C.J
		offset := decodeCJOffset(enc16)
		return encodeJ(opJal, 0, offset), nil
	case 0x19: // C.BEQZ
		imm, rs1 := decodeCBOffset(enc16)
		return encodeB(opBranch, 0x0, rs1, 0, imm), nil
	case 0x1D: // C.BNEZ
		imm, rs1 := decodeCBOffset(enc16)
		return encodeB(opBranch, 0x1, rs1, 0, imm), nil
	case 0x02: // C.SLLI
		imm, rd := decodeCI(enc16)
		if rd == 0 {
			return 0, illegal(uint32(enc16), "c.slli: reserved (rd=0)")
		}
		return encodeI(opOpImm, 0x1, rd, rd, int32(imm)), nil
	case 0x06: // C.FLDSP / C.LQSP — F/D extension, not supported
		return 0, illegal(uint32(enc16), "c.fldsp/c.lqsp: floating-point extension not supported")
	case 0x0A: // C.LWSP
		imm, rd := decodeCI(enc16)
		if rd == 0 {
			return 0, illegal(uint32(enc16), "c.lwsp: reserved (rd=0)")
		}
		imm = (imm<<6 | imm) & 0xfc
		return encodeI(opLoad, 0x2, rd, spReg, int32(imm)), nil
	case 0x0E: // C.FLWSP (RV32) / C.LDSP (RV64)
		if width == 32 {
			return 0, illegal(uint32(enc16), "c.flwsp: floating-point extension not supported")
		}
		imm, rd := decodeCI(enc16)
		if rd == 0 {
			return 0, illegal(uint32(enc16), "c.ldsp: reserved (rd=0)")
		}
		imm = (imm<<6 | imm) & 0x1f8
		return encodeI(opLoad, 0x3, rd, spReg, int32(imm)), nil
	case 0x12:
		rs1, rs2 := decodeCR(enc16)
		bit12 := enc16 & 0x1000
		switch {
		case bit12 == 0 && rs2 == 0:
			if rs1 == 0 {
				return 0, illegal(uint32(enc16), "c.jr: reserved (rs1=0)")
			}
			return encodeI(opJalr, 0x0, 0, rs1, 0), nil
		case bit12 == 0:
			return encodeR(opOp, 0x0, rs1, 0, rs2, 0x00), nil // C.MV
		case bit12 == 0x1000 && rs1 == 0 && rs2 == 0:
			return opSystem | 1<<20, nil // C.EBREAK
		case bit12 == 0x1000 && rs2 == 0:
			return encodeI(opJalr, 0x0, raReg, rs1, 0), nil // C.JALR
		default:
			return encodeR(opOp, 0x0, rs1, rs1, rs2, 0x00), nil // C.ADD
		}
	case 0x16: // C.FSDSP / C.SQSP — F/D extension, not supported
		return 0, illegal(uint32(enc16), "c.fsdsp/c.sqsp: floating-point extension not supported")
	case 0x1A: // C.SWSP
		imm, rs2 := decodeCSS(enc16)
		imm = (imm<<6 | imm) & 0xfc
		return encodeS(opStore, 0x2, spReg, rs2, int32(imm)), nil
	case 0x1E: // C.FSWSP (RV32) / C.SDSP (RV64)
		if width == 32 {
			return 0, illegal(uint32(enc16), "c.fswsp: floating-point extension not supported")
		}
		imm, rs2 := decodeCSS(enc16)
		imm = (imm<<6 | imm) & 0x1f8
		return encodeS(opStore, 0x3, spReg, rs2, int32(imm)), nil
	}
	return 0, illegal(uint32(enc16), "unrecognized compressed encoding")
}

// DecodeCompressed expands enc16 and decodes the result, tagging the
// returned Op as originally 2 bytes long so the execution engine advances
// pc by 2 rather than 4.
func DecodeCompressed(enc16 uint16, width int) (Op, error) {
	enc32, err := ExpandCompressed(enc16, width)
	if err != nil {
		return Op{}, err
	}
	op, err := Decode32(enc32, width)
	if err != nil {
		return op, err
	}
	op.Length = 2
	op.Raw = uint32(enc16)
	return op, nil
}

const (
	spReg = 2
	raReg = 1
	// rvcRegOffset maps a 3-bit RVC register field to the x8..x15 window.
	rvcRegOffset = 8
)

func decodeCR(in uint16) (r1, r2 uint32) {
	return uint32(in>>7) & 0x1f, uint32(in>>2) & 0x1f
}

func decodeCI(in uint16) (imm, r uint32) {
	return uint32(in>>7)&0x20 | uint32(in>>2)&0x1f, uint32(in>>7) & 0x1f
}

func decodeCSS(in uint16) (imm, r uint32) {
	return uint32(in>>7) & 0x3f, uint32(in>>2) & 0x1f
}

func decodeCIW(in uint16) (imm, r uint32) {
	return uint32(in>>5) & 0xff, uint32(in>>2)&0x7 + rvcRegOffset
}

func decodeCL(in uint16) (imm, r1, r2 uint32) {
	return uint32(in>>8)&0x1c | uint32(in>>5)&0x3,
		uint32(in>>7)&0x7 + rvcRegOffset,
		uint32(in>>2)&0x7 + rvcRegOffset
}

func decodeCS(in uint16) (imm, r1, r2 uint32) {
	return uint32(in>>8)&0x1c | uint32(in>>5)&0x3,
		uint32(in>>7)&0x7 + rvcRegOffset,
		uint32(in>>2)&0x7 + rvcRegOffset
}

func decodeCB(in uint16) (imm, r uint32) {
	return uint32(in>>5)&0xe0 | uint32(in>>2)&0x1f, uint32(in>>7)&0x7 + rvcRegOffset
}

func decodeShiftCB(in uint16) (imm, r uint32) {
	return uint32(in&0x1000)>>7 | uint32(in>>2)&0x1f, uint32(in>>7)&0x7 + rvcRegOffset
}

func decodeCJRaw(in uint16) uint32 {
	return uint32(in>>2) & 0x7ff
}

// decodeCJOffset returns the sign-extended C.J/C.JAL branch-target offset,
// ready to feed encodeJ.
func decodeCJOffset(in uint16) int32 {
	imm := decodeCJRaw(in)
	imm = imm&0x200>>5 | imm&0x40<<4 | imm&0x5a0<<1 | imm&0x10<<3 | imm&0xe | imm&1<<5
	return int32(signExtend(uint64(imm), 11))
}

// decodeCBOffset returns the sign-extended C.BEQZ/C.BNEZ branch offset and
// its rs1 register.
func decodeCBOffset(in uint16) (imm int32, r uint32) {
	raw, reg := decodeCB(in)
	raw = raw&0x80<<1 | raw&0x60>>2 | raw&0x18<<3 | raw&0x6 | raw&0x1<<5
	return int32(signExtend(uint64(raw), 8)), reg
}
