package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeMem struct {
	buf []byte
}

func newFakeMem(size int) *fakeMem { return &fakeMem{buf: make([]byte, size)} }

func (f *fakeMem) Len() uint { return uint(len(f.buf)) }

func (f *fakeMem) WriteBytes(addr uint64, data []byte) error {
	copy(f.buf[addr:], data)
	return nil
}

func writeTempHex(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.hex")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadHexSequentialBytes(t *testing.T) {
	assert := assert.New(t)
	path := writeTempHex(t, "@0000\n13 05 00 00\n")

	mem := newFakeMem(16)
	assert.NoError(LoadHex(path, mem))
	assert.Equal([]byte{0x13, 0x05, 0x00, 0x00}, mem.buf[:4])
}

func TestLoadHexRelocatingAddress(t *testing.T) {
	assert := assert.New(t)
	path := writeTempHex(t, "@0000\nAA\n@0010\nBB\n")

	mem := newFakeMem(32)
	assert.NoError(LoadHex(path, mem))
	assert.EqualValues(0xAA, mem.buf[0])
	assert.EqualValues(0xBB, mem.buf[0x10])
}

func TestLoadHexRejectsBlankLine(t *testing.T) {
	assert := assert.New(t)
	path := writeTempHex(t, "@0000\nAA\n\nBB\n")

	mem := newFakeMem(16)
	err := LoadHex(path, mem)
	assert.Error(err)
}

func TestLoadHexRejectsCommentLine(t *testing.T) {
	assert := assert.New(t)
	path := writeTempHex(t, "; a comment\n@0000\nAA\n")

	mem := newFakeMem(16)
	err := LoadHex(path, mem)
	assert.Error(err)
}

func TestLoadHexOutOfRangeAddress(t *testing.T) {
	assert := assert.New(t)
	path := writeTempHex(t, "@00FF\nAA\n")

	mem := newFakeMem(4)
	err := LoadHex(path, mem)
	assert.Error(err)
}
