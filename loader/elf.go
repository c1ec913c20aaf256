package loader

import (
	"debug/elf"
	"fmt"
)

// LoadElf walks a standard little-endian ELF file's PT_LOAD program
// headers and copies them into mem at their physical addresses, copying
// p_filesz bytes from the file and zero-filling the rest of p_memsz —
// exactly what the teacher's Emulator.loadSegments/MapProgram do in
// emulator.go, generalized from the teacher's Mmu target to the generic
// MemoryWriter contract. It reports e_entry as entryPoint (spec.md §6).
func LoadElf(path string, mem MemoryWriter) (entryPoint uint64, err error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, &Error{Op: "open", Err: err}
	}
	defer f.Close()

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if prog.Paddr+prog.Memsz > uint64(mem.Len()) {
			return 0, &Error{Op: "map", Err: fmt.Errorf(
				"segment at %#x (memsz %#x) exceeds memory size %#x", prog.Paddr, prog.Memsz, mem.Len())}
		}

		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return 0, &Error{Op: "read", Err: err}
		}
		if err := mem.WriteBytes(prog.Paddr, data); err != nil {
			return 0, &Error{Op: "write", Err: err}
		}

		if prog.Memsz > prog.Filesz {
			pad := make([]byte, prog.Memsz-prog.Filesz)
			if err := mem.WriteBytes(prog.Paddr+prog.Filesz, pad); err != nil {
				return 0, &Error{Op: "write", Err: err}
			}
		}
	}

	return f.Entry, nil
}
