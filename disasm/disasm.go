// Package disasm renders a decoded RISC-V instruction as a human-readable
// mnemonic string. It is a pure function of the encoding, exactly what
// spec.md §6 calls disassemble(enc) -> string: no hart state, no
// mutation, just decode.Decode32/ExpandCompressed followed by string
// formatting.
package disasm

import (
	"fmt"

	"rvsim/decode"
)

// regNames gives the ABI name for each of the 32 integer registers,
// adapted from the teacher's Register enum in riscv.go (the teacher names
// registers Zero/Ra/Sp/.../T6 for its own Register type; this table
// generalizes that naming to a plain index -> name lookup disasm can use
// without pulling in a whole Register type of its own).
var regNames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

func reg(i uint32) string {
	if i >= 32 {
		return fmt.Sprintf("x%d", i)
	}
	return regNames[i]
}

// mnemonics maps decode.Kind to its printed opcode name. Lower-cased to
// match RISC-V assembler conventions (and the teacher's own lower-case
// instruction naming in system.go/syscall.go comments).
var mnemonics = map[decode.Kind]string{
	decode.Lui: "lui", decode.Auipc: "auipc", decode.Jal: "jal", decode.Jalr: "jalr",
	decode.Beq: "beq", decode.Bne: "bne", decode.Blt: "blt", decode.Bge: "bge",
	decode.Bltu: "bltu", decode.Bgeu: "bgeu",
	decode.Lb: "lb", decode.Lh: "lh", decode.Lw: "lw", decode.Lbu: "lbu", decode.Lhu: "lhu",
	decode.Lwu: "lwu", decode.Ld: "ld",
	decode.Sb: "sb", decode.Sh: "sh", decode.Sw: "sw", decode.Sd: "sd",
	decode.Addi: "addi", decode.Slti: "slti", decode.Sltiu: "sltiu", decode.Xori: "xori",
	decode.Ori: "ori", decode.Andi: "andi", decode.Slli: "slli", decode.Srli: "srli", decode.Srai: "srai",
	decode.Add: "add", decode.Sub: "sub", decode.Sll: "sll", decode.Slt: "slt", decode.Sltu: "sltu",
	decode.Xor: "xor", decode.Srl: "srl", decode.Sra: "sra", decode.Or: "or", decode.And: "and",
	decode.Fence: "fence", decode.FenceI: "fence.i", decode.Ecall: "ecall", decode.Ebreak: "ebreak",
	decode.Wfi: "wfi",
	decode.Csrrw: "csrrw", decode.Csrrs: "csrrs", decode.Csrrc: "csrrc",
	decode.Csrrwi: "csrrwi", decode.Csrrsi: "csrrsi", decode.Csrrci: "csrrci",
	decode.Addiw: "addiw", decode.Slliw: "slliw", decode.Srliw: "srliw", decode.Sraiw: "sraiw",
	decode.Addw: "addw", decode.Subw: "subw", decode.Sllw: "sllw", decode.Srlw: "srlw", decode.Sraw: "sraw",
	decode.Mul: "mul", decode.Mulh: "mulh", decode.Mulhsu: "mulhsu", decode.Mulhu: "mulhu",
	decode.Div: "div", decode.Divu: "divu", decode.Rem: "rem", decode.Remu: "remu",
	decode.Mulw: "mulw", decode.Divw: "divw", decode.Divuw: "divuw", decode.Remw: "remw", decode.Remuw: "remuw",
}

// Disassemble renders enc as a mnemonic string. enc is the raw encoding as
// fetched: if its low two bits are not 0b11 it's treated as a 16-bit
// compressed instruction (the upper 16 bits of enc are ignored in that
// case) and expanded before formatting; width selects the RV32/RV64
// disambiguation ExpandCompressed and Decode32 need for the handful of
// width-dependent opcodes.
func Disassemble(enc uint32, width int) string {
	compressed := enc&0x3 != 0x3
	var op decode.Op
	var err error
	if compressed {
		op, err = decode.DecodeCompressed(uint16(enc), width)
	} else {
		op, err = decode.Decode32(enc, width)
	}
	if err != nil {
		return fmt.Sprintf("(illegal %#x)", enc)
	}
	return format(op)
}

func format(op decode.Op) string {
	name, ok := mnemonics[op.Kind]
	if !ok {
		return fmt.Sprintf("(unknown %#x)", op.Raw)
	}

	switch op.Kind {
	case decode.Lui, decode.Auipc:
		return fmt.Sprintf("%s %s, %#x", name, reg(op.Rd), op.Imm)
	case decode.Jal:
		return fmt.Sprintf("%s %s, %+d", name, reg(op.Rd), op.Imm)
	case decode.Jalr:
		return fmt.Sprintf("%s %s, %d(%s)", name, reg(op.Rd), op.Imm, reg(op.Rs1))
	case decode.Beq, decode.Bne, decode.Blt, decode.Bge, decode.Bltu, decode.Bgeu:
		return fmt.Sprintf("%s %s, %s, %+d", name, reg(op.Rs1), reg(op.Rs2), op.Imm)
	case decode.Lb, decode.Lh, decode.Lw, decode.Lbu, decode.Lhu, decode.Lwu, decode.Ld:
		return fmt.Sprintf("%s %s, %d(%s)", name, reg(op.Rd), op.Imm, reg(op.Rs1))
	case decode.Sb, decode.Sh, decode.Sw, decode.Sd:
		return fmt.Sprintf("%s %s, %d(%s)", name, reg(op.Rs2), op.Imm, reg(op.Rs1))
	case decode.Addi, decode.Slti, decode.Sltiu, decode.Xori, decode.Ori, decode.Andi,
		decode.Slli, decode.Srli, decode.Srai, decode.Addiw, decode.Slliw, decode.Srliw, decode.Sraiw:
		return fmt.Sprintf("%s %s, %s, %d", name, reg(op.Rd), reg(op.Rs1), op.Imm)
	case decode.Add, decode.Sub, decode.Sll, decode.Slt, decode.Sltu, decode.Xor, decode.Srl,
		decode.Sra, decode.Or, decode.And, decode.Addw, decode.Subw, decode.Sllw, decode.Srlw, decode.Sraw,
		decode.Mul, decode.Mulh, decode.Mulhsu, decode.Mulhu, decode.Div, decode.Divu, decode.Rem, decode.Remu,
		decode.Mulw, decode.Divw, decode.Divuw, decode.Remw, decode.Remuw:
		return fmt.Sprintf("%s %s, %s, %s", name, reg(op.Rd), reg(op.Rs1), reg(op.Rs2))
	case decode.Fence, decode.FenceI, decode.Ecall, decode.Ebreak, decode.Wfi:
		return name
	case decode.Csrrw, decode.Csrrs, decode.Csrrc:
		return fmt.Sprintf("%s %s, %#03x, %s", name, reg(op.Rd), op.Imm, reg(op.Rs1))
	case decode.Csrrwi, decode.Csrrsi, decode.Csrrci:
		return fmt.Sprintf("%s %s, %#03x, %d", name, reg(op.Rd), op.Imm, op.Rs1)
	default:
		return name
	}
}
