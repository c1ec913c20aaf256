// Package config loads hart construction options from a Starlark script,
// the same technique the teacher's cpu/assembler.go uses for compile-time
// $(...) expression evaluation, applied here to a whole configuration file
// instead of a single expression.
package config

import (
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Config holds the construction options a .star file can set. Defaults
// (SPEC_FULL.md §1.4) apply to anything the script leaves unset.
type Config struct {
	MemSize    uint              // mem_size
	Width      int               // width: 32 or 64
	HaltAddr   uint64            // halt_addr
	HasHalt    bool
	Extensions []string          // extensions: subset of "I", "M", "C"
	InitRegs   map[string]uint64 // init_regs: register name -> initial value
}

// Default returns the hardcoded fallback SPEC_FULL.md §1.4 specifies for
// when no config file is given: 2 MiB of memory, width 64, all extensions.
func Default() Config {
	return Config{
		MemSize:    2 * 1024 * 1024,
		Width:      64,
		Extensions: []string{"I", "M", "C"},
		InitRegs:   map[string]uint64{},
	}
}

// Load executes the Starlark script at path and returns the Config it
// describes, starting from Default() so a script only needs to set the
// variables it cares about.
func Load(path string) (Config, error) {
	cfg := Default()

	thread := &starlark.Thread{Name: "rvsim-config"}
	opts := syntax.FileOptions{}
	globals, err := starlark.ExecFileOptions(&opts, thread, path, nil, nil)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	if v, ok := globals["mem_size"]; ok {
		n, err := toInt(v)
		if err != nil {
			return cfg, fmt.Errorf("config: mem_size: %w", err)
		}
		cfg.MemSize = uint(n)
	}
	if v, ok := globals["width"]; ok {
		n, err := toInt(v)
		if err != nil {
			return cfg, fmt.Errorf("config: width: %w", err)
		}
		if n != 32 && n != 64 {
			return cfg, fmt.Errorf("config: width must be 32 or 64, got %d", n)
		}
		cfg.Width = int(n)
	}
	if v, ok := globals["halt_addr"]; ok {
		n, err := toInt(v)
		if err != nil {
			return cfg, fmt.Errorf("config: halt_addr: %w", err)
		}
		cfg.HaltAddr = uint64(n)
		cfg.HasHalt = true
	}
	if v, ok := globals["extensions"]; ok {
		exts, err := toStringList(v)
		if err != nil {
			return cfg, fmt.Errorf("config: extensions: %w", err)
		}
		cfg.Extensions = exts
	}
	if v, ok := globals["init_regs"]; ok {
		regs, err := toRegDict(v)
		if err != nil {
			return cfg, fmt.Errorf("config: init_regs: %w", err)
		}
		cfg.InitRegs = regs
	}

	return cfg, nil
}

func toInt(v starlark.Value) (int64, error) {
	i, ok := v.(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("expected int, got %s", v.Type())
	}
	n, ok := i.Int64()
	if !ok {
		return 0, fmt.Errorf("integer out of range: %s", i.String())
	}
	return n, nil
}

func toStringList(v starlark.Value) ([]string, error) {
	lst, ok := v.(*starlark.List)
	if !ok {
		return nil, fmt.Errorf("expected list, got %s", v.Type())
	}
	out := make([]string, 0, lst.Len())
	iter := lst.Iterate()
	defer iter.Done()
	var item starlark.Value
	for iter.Next(&item) {
		s, ok := starlark.AsString(item)
		if !ok {
			return nil, fmt.Errorf("expected string list element, got %s", item.Type())
		}
		out = append(out, s)
	}
	return out, nil
}

func toRegDict(v starlark.Value) (map[string]uint64, error) {
	dict, ok := v.(*starlark.Dict)
	if !ok {
		return nil, fmt.Errorf("expected dict, got %s", v.Type())
	}
	out := make(map[string]uint64, dict.Len())
	for _, item := range dict.Items() {
		key, ok := starlark.AsString(item[0])
		if !ok {
			return nil, fmt.Errorf("register name must be a string, got %s", item[0].Type())
		}
		n, err := toInt(item[1])
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", key, err)
		}
		out[key] = uint64(n)
	}
	return out, nil
}
