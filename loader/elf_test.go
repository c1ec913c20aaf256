package loader

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildMinimalElf64 hand-assembles the smallest little-endian ELF64
// executable debug/elf will parse: one ELF header, one PT_LOAD program
// header, and a handful of payload bytes placed right after the headers.
func buildMinimalElf64(t *testing.T, vaddr, entry uint64, payload []byte) string {
	t.Helper()

	const ehsize = 64
	const phsize = 56
	phoff := uint64(ehsize)
	dataOff := uint64(ehsize + phsize)
	filesz := dataOff + uint64(len(payload))
	memsz := filesz + 4 // a little slack the loader must zero-pad

	buf := make([]byte, filesz)

	// e_ident
	copy(buf[0:4], []byte{0x7f, 'E', 'L', 'F'})
	buf[4] = 2 // ELFCLASS64
	buf[5] = 1 // ELFDATA2LSB
	buf[6] = 1 // EV_CURRENT
	// e_type = ET_EXEC, e_machine = arbitrary (riscv64 = 0xf3), e_version = 1
	binary.LittleEndian.PutUint16(buf[16:], 2)
	binary.LittleEndian.PutUint16(buf[18:], 0xf3)
	binary.LittleEndian.PutUint32(buf[20:], 1)
	binary.LittleEndian.PutUint64(buf[24:], entry)     // e_entry
	binary.LittleEndian.PutUint64(buf[32:], phoff)      // e_phoff
	binary.LittleEndian.PutUint16(buf[52:], ehsize)     // e_ehsize
	binary.LittleEndian.PutUint16(buf[54:], phsize)     // e_phentsize
	binary.LittleEndian.PutUint16(buf[56:], 1)          // e_phnum

	// program header at phoff
	ph := buf[phoff:]
	binary.LittleEndian.PutUint32(ph[0:], 1)          // p_type = PT_LOAD
	binary.LittleEndian.PutUint32(ph[4:], 5)          // p_flags = R+X
	binary.LittleEndian.PutUint64(ph[8:], dataOff)    // p_offset
	binary.LittleEndian.PutUint64(ph[16:], vaddr)      // p_vaddr
	binary.LittleEndian.PutUint64(ph[24:], vaddr)      // p_paddr
	binary.LittleEndian.PutUint64(ph[32:], uint64(len(payload))) // p_filesz
	binary.LittleEndian.PutUint64(ph[40:], memsz-dataOff)        // p_memsz

	copy(buf[dataOff:], payload)

	dir := t.TempDir()
	path := filepath.Join(dir, "prog.elf")
	assert.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoadElfCopiesSegmentAndReportsEntry(t *testing.T) {
	assert := assert.New(t)

	payload := []byte{0x13, 0x05, 0x00, 0x00}
	path := buildMinimalElf64(t, 0x1000, 0x1000, payload)

	mem := newFakeMem(0x2000)
	entry, err := LoadElf(path, mem)
	assert.NoError(err)
	assert.EqualValues(0x1000, entry)
	assert.Equal(payload, mem.buf[0x1000:0x1004])
}

func TestLoadElfZeroPadsBssTail(t *testing.T) {
	assert := assert.New(t)

	payload := []byte{0xFF, 0xFF}
	path := buildMinimalElf64(t, 0x1000, 0x1000, payload)

	mem := newFakeMem(0x2000)
	for i := range mem.buf {
		mem.buf[i] = 0xCC
	}
	_, err := LoadElf(path, mem)
	assert.NoError(err)
	assert.Equal(byte(0), mem.buf[0x1000+uint64(len(payload))])
}

func TestLoadElfSegmentExceedsMemoryFails(t *testing.T) {
	assert := assert.New(t)

	payload := []byte{0x01, 0x02}
	path := buildMinimalElf64(t, 0x1000, 0x1000, payload)

	mem := newFakeMem(0x800) // smaller than vaddr+memsz
	_, err := LoadElf(path, mem)
	assert.Error(err)
}
