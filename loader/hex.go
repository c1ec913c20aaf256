package loader

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/db47h/lex"
)

// Intel-HEX-like token types this lexer emits (spec.md §6's "HEX file
// format"): a line is either an "@HHHH..." pointer-set directive or one
// or more whitespace-separated two-hex-digit byte tokens written
// sequentially from the current pointer.
const (
	tokEOF lex.Token = iota
	tokAddr
	tokByte
)

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// hexInitState is the lexer's initial StateFn: it dispatches on the next
// rune to either an address directive, a byte token, whitespace (skipped),
// or an error, following the StateFn chain pattern db47h/lex's own doc.go
// and lex_test.go demonstrate.
func hexInitState(l *lex.State) lex.StateFn {
	r := l.Next()
	switch {
	case r == lex.EOF:
		l.Emit(l.Pos(), tokEOF, nil)
		return nil
	case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		return nil
	case r == '@':
		return hexLexAddr
	case isHexDigit(r):
		l.Backup()
		return hexLexByte
	default:
		l.Errorf(l.Pos(), "unexpected character %q", r)
		return nil
	}
}

func hexLexAddr(l *lex.State) lex.StateFn {
	start := l.Pos()
	var digits []rune
	for {
		r := l.Next()
		if !isHexDigit(r) {
			l.Backup()
			break
		}
		digits = append(digits, r)
	}
	if len(digits) == 0 {
		l.Errorf(start, "'@' must be followed by hex digits")
		return nil
	}
	addr, err := strconv.ParseUint(string(digits), 16, 64)
	if err != nil {
		l.Errorf(start, "invalid address: %v", err)
		return nil
	}
	l.Emit(start, tokAddr, addr)
	return nil
}

func hexLexByte(l *lex.State) lex.StateFn {
	start := l.Pos()
	var digits [2]rune
	for i := range digits {
		r := l.Next()
		if !isHexDigit(r) {
			l.Errorf(start, "expected two hex digits for a byte token")
			return nil
		}
		digits[i] = r
	}
	if r := l.Next(); isHexDigit(r) {
		l.Errorf(start, "byte token must be exactly two hex digits")
		return nil
	} else {
		l.Backup()
	}
	v, err := strconv.ParseUint(string(digits[:]), 16, 8)
	if err != nil {
		l.Errorf(start, "invalid byte: %v", err)
		return nil
	}
	l.Emit(start, tokByte, uint8(v))
	return nil
}

// validateLines enforces the grammar's line-level policy (spec.md §6):
// blank lines and anything not starting with '@' or a hex digit — i.e.
// comment lines — are errors, not silently-skipped decoration.
func validateLines(data []byte) error {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if i == len(lines)-1 {
				continue // trailing newline at EOF, not a blank line in the middle of the file
			}
			return fmt.Errorf("line %d: blank lines are not permitted", i+1)
		}
		first := rune(trimmed[0])
		if first != '@' && !isHexDigit(first) {
			return fmt.Errorf("line %d: comment lines are not permitted", i+1)
		}
	}
	return nil
}

// LoadHex parses the Intel-HEX-like text format at path and writes its
// contents into mem, starting at pointer 0 and relocating on each
// "@HHHH..." directive (spec.md §6).
func LoadHex(path string, mem MemoryWriter) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Op: "open", Err: err}
	}
	if err := validateLines(data); err != nil {
		return &Error{Op: "parse", Err: err}
	}

	f := lex.NewFile(path, bytes.NewReader(data))
	lx := lex.NewLexer(f, hexInitState)

	var ptr uint64
	for {
		tok, pos, val := lx.Lex()
		switch tok {
		case tokEOF:
			return nil
		case lex.Error:
			return &Error{Op: "parse", Err: fmt.Errorf("%s: %v", f.Position(pos), val)}
		case tokAddr:
			ptr = val.(uint64)
		case tokByte:
			if ptr >= uint64(mem.Len()) {
				return &Error{Op: "write", Err: fmt.Errorf("%s: address %#x out of range", f.Position(pos), ptr)}
			}
			if err := mem.WriteBytes(ptr, []byte{val.(uint8)}); err != nil {
				return &Error{Op: "write", Err: fmt.Errorf("%s: %w", f.Position(pos), err)}
			}
			ptr++
		}
	}
}
