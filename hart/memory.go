package hart

import "fmt"

// Addr is a byte offset into a Hart's Memory.
type Addr uint64

// MemFault distinguishes why a Memory access failed. The execution engine
// turns one of these into the matching architectural trap; Memory itself
// knows nothing about causes or traps, only bounds and alignment, same
// separation the teacher draws between Mmu and the dispatch loop in
// emulator.go.
type MemFault uint8

const (
	FaultNone MemFault = iota
	FaultAccess
	FaultMisaligned
)

// MemError is the host-level description of a failed Memory access: the
// faulting address, the width attempted and why it failed. Execution code
// reads addr/fault and picks a cause code; nothing about MemError is an
// architectural trap by itself (spec.md §7 / SPEC_FULL.md §1.3).
type MemError struct {
	Addr  Addr
	Width uint
	Fault MemFault
}

func (e *MemError) Error() string {
	switch e.Fault {
	case FaultMisaligned:
		return fmt.Sprintf("memory: misaligned %d-byte access at %#x", e.Width, e.Addr)
	default:
		return fmt.Sprintf("memory: access fault, %d-byte access at %#x", e.Width, e.Addr)
	}
}

// Memory is the hart's flat, byte-addressable address space. Any byte
// pattern is legal content (spec.md §4.1); the only things Memory enforces
// are bounds and natural alignment of the access itself.
type Memory struct {
	bytes []byte
}

// NewMemory allocates a zero-filled address space of the given size.
func NewMemory(size uint) *Memory {
	return &Memory{bytes: make([]byte, size)}
}

// Len reports the size of the address space in bytes.
func (m *Memory) Len() uint { return uint(len(m.bytes)) }

// Bytes exposes the underlying storage for loaders (loader.MemoryWriter);
// callers outside this package must only use it before Run is entered
// (spec.md §5's ownership rule).
func (m *Memory) Bytes() []byte { return m.bytes }

func (m *Memory) bounds(addr Addr, width uint) error {
	end := uint64(addr) + uint64(width)
	if uint64(addr) >= uint64(len(m.bytes)) || end > uint64(len(m.bytes)) {
		return &MemError{Addr: addr, Width: width, Fault: FaultAccess}
	}
	if addr%Addr(width) != 0 {
		return &MemError{Addr: addr, Width: width, Fault: FaultMisaligned}
	}
	return nil
}

func (m *Memory) read(addr Addr, width uint) (uint64, error) {
	if err := m.bounds(addr, width); err != nil {
		return 0, err
	}
	var v uint64
	for i := uint(0); i < width; i++ {
		v |= uint64(m.bytes[uint64(addr)+uint64(i)]) << (8 * i)
	}
	return v, nil
}

func (m *Memory) write(addr Addr, width uint, v uint64) error {
	if err := m.bounds(addr, width); err != nil {
		return err
	}
	for i := uint(0); i < width; i++ {
		m.bytes[uint64(addr)+uint64(i)] = byte(v >> (8 * i))
	}
	return nil
}

// Load8/Load16/Load32/Load64 read the little-endian interpretation of the
// bytes at addr, zero-extended to uint64. FetchHalf, used by the fetch
// stage, has the same bounds/alignment contract as Load16.
func (m *Memory) Load8(addr Addr) (uint64, error)  { return m.read(addr, 1) }
func (m *Memory) Load16(addr Addr) (uint64, error) { return m.read(addr, 2) }
func (m *Memory) Load32(addr Addr) (uint64, error) { return m.read(addr, 4) }
func (m *Memory) Load64(addr Addr) (uint64, error) { return m.read(addr, 8) }

// Store8/Store16/Store32/Store64 write the low width*8 bits of v in
// little-endian order.
func (m *Memory) Store8(addr Addr, v uint64) error  { return m.write(addr, 1, v) }
func (m *Memory) Store16(addr Addr, v uint64) error { return m.write(addr, 2, v) }
func (m *Memory) Store32(addr Addr, v uint64) error { return m.write(addr, 4, v) }
func (m *Memory) Store64(addr Addr, v uint64) error { return m.write(addr, 8, v) }

// LoadWidth/StoreWidth dispatch on a runtime byte width, used by the load/
// store instruction handlers which already know the width from the decoded
// opcode (1, 2, 4 or 8).
func (m *Memory) LoadWidth(addr Addr, width uint) (uint64, error) { return m.read(addr, width) }
func (m *Memory) StoreWidth(addr Addr, width uint, v uint64) error {
	return m.write(addr, width, v)
}

// WriteBytes copies data into memory starting at addr with no alignment
// requirement, for loaders that populate memory before Run is ever called
// (spec.md §3 "Ownership", §6 loader entry points). It implements
// loader.MemoryWriter.
func (m *Memory) WriteBytes(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	end := addr + uint64(len(data))
	if addr >= uint64(len(m.bytes)) || end > uint64(len(m.bytes)) {
		return &MemError{Addr: Addr(addr), Width: uint(len(data)), Fault: FaultAccess}
	}
	copy(m.bytes[addr:end], data)
	return nil
}

// FetchHalf reads the 16-bit word at addr without alignment beyond 2 bytes,
// the access width every fetch starts with whether the instruction turns
// out to be compressed or standard (spec.md §4.5.1 step 2).
func (m *Memory) FetchHalf(addr Addr) (uint16, error) {
	v, err := m.read(addr, 2)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
