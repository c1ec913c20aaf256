package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeTempScript(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.star")
	assert.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	assert := assert.New(t)
	cfg := Default()
	assert.EqualValues(2*1024*1024, cfg.MemSize)
	assert.Equal(64, cfg.Width)
	assert.ElementsMatch([]string{"I", "M", "C"}, cfg.Extensions)
	assert.False(cfg.HasHalt)
}

func TestLoadOverridesDefaults(t *testing.T) {
	assert := assert.New(t)
	path := writeTempScript(t, `
mem_size = 4096
width = 32
halt_addr = 0x1000
extensions = ["I", "M"]
init_regs = {"sp": 0x2000, "a0": 7}
`)

	cfg, err := Load(path)
	assert.NoError(err)
	assert.EqualValues(4096, cfg.MemSize)
	assert.Equal(32, cfg.Width)
	assert.True(cfg.HasHalt)
	assert.EqualValues(0x1000, cfg.HaltAddr)
	assert.Equal([]string{"I", "M"}, cfg.Extensions)
	assert.EqualValues(0x2000, cfg.InitRegs["sp"])
	assert.EqualValues(7, cfg.InitRegs["a0"])
}

func TestLoadRejectsBadWidth(t *testing.T) {
	assert := assert.New(t)
	path := writeTempScript(t, "width = 17\n")

	_, err := Load(path)
	assert.Error(err)
}

func TestLoadOnlySetsProvidedFields(t *testing.T) {
	assert := assert.New(t)
	path := writeTempScript(t, "width = 32\n")

	cfg, err := Load(path)
	assert.NoError(err)
	assert.Equal(32, cfg.Width)
	assert.EqualValues(Default().MemSize, cfg.MemSize)
}
