// Code generated by running "go generate" by hand would produce this file;
// written out directly here since the toolchain is never invoked in this
// repo's build. Keep in sync with the Kind const block in op.go.

package decode

import "strconv"

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "Invalid"
	case Lui:
		return "Lui"
	case Auipc:
		return "Auipc"
	case Jal:
		return "Jal"
	case Jalr:
		return "Jalr"
	case Beq:
		return "Beq"
	case Bne:
		return "Bne"
	case Blt:
		return "Blt"
	case Bge:
		return "Bge"
	case Bltu:
		return "Bltu"
	case Bgeu:
		return "Bgeu"
	case Lb:
		return "Lb"
	case Lh:
		return "Lh"
	case Lw:
		return "Lw"
	case Lbu:
		return "Lbu"
	case Lhu:
		return "Lhu"
	case Lwu:
		return "Lwu"
	case Ld:
		return "Ld"
	case Sb:
		return "Sb"
	case Sh:
		return "Sh"
	case Sw:
		return "Sw"
	case Sd:
		return "Sd"
	case Addi:
		return "Addi"
	case Slti:
		return "Slti"
	case Sltiu:
		return "Sltiu"
	case Xori:
		return "Xori"
	case Ori:
		return "Ori"
	case Andi:
		return "Andi"
	case Slli:
		return "Slli"
	case Srli:
		return "Srli"
	case Srai:
		return "Srai"
	case Add:
		return "Add"
	case Sub:
		return "Sub"
	case Sll:
		return "Sll"
	case Slt:
		return "Slt"
	case Sltu:
		return "Sltu"
	case Xor:
		return "Xor"
	case Srl:
		return "Srl"
	case Sra:
		return "Sra"
	case Or:
		return "Or"
	case And:
		return "And"
	case Fence:
		return "Fence"
	case FenceI:
		return "FenceI"
	case Ecall:
		return "Ecall"
	case Ebreak:
		return "Ebreak"
	case Wfi:
		return "Wfi"
	case Csrrw:
		return "Csrrw"
	case Csrrs:
		return "Csrrs"
	case Csrrc:
		return "Csrrc"
	case Csrrwi:
		return "Csrrwi"
	case Csrrsi:
		return "Csrrsi"
	case Csrrci:
		return "Csrrci"
	case Addiw:
		return "Addiw"
	case Slliw:
		return "Slliw"
	case Srliw:
		return "Srliw"
	case Sraiw:
		return "Sraiw"
	case Addw:
		return "Addw"
	case Subw:
		return "Subw"
	case Sllw:
		return "Sllw"
	case Srlw:
		return "Srlw"
	case Sraw:
		return "Sraw"
	case Mul:
		return "Mul"
	case Mulh:
		return "Mulh"
	case Mulhsu:
		return "Mulhsu"
	case Mulhu:
		return "Mulhu"
	case Div:
		return "Div"
	case Divu:
		return "Divu"
	case Rem:
		return "Rem"
	case Remu:
		return "Remu"
	case Mulw:
		return "Mulw"
	case Divw:
		return "Divw"
	case Divuw:
		return "Divuw"
	case Remw:
		return "Remw"
	case Remuw:
		return "Remuw"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}
