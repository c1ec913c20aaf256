package decode

// encode* pack operands into the canonical 32-bit standard-form encoding
// used to expand a compressed instruction. They are the inverse of the
// field extraction done in Decode32.

func encodeR(opcode, funct3, rd, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u&0xfe0)<<20 | rs2<<20 | rs1<<15 | funct3<<12 | (u&0x1f)<<7 | opcode
}

func encodeB(opcode, funct3, rs1, rs2 uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u&0x1000)<<19 | (u&0x7e0)<<20 | rs2<<20 | rs1<<15 | funct3<<12 |
		(u&0x1e)<<7 | (u&0x800)>>4 | opcode
}

func encodeU(opcode, rd uint32, imm int32) uint32 {
	return uint32(imm)&0xfffff000 | rd<<7 | opcode
}

func encodeJ(opcode, rd uint32, imm int32) uint32 {
	u := uint32(imm)
	return (u&0x100000)<<11 | (u&0xff000) | (u&0x800)<<9 | (u&0x7fe)<<20 | rd<<7 | opcode
}
