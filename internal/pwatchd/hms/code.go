// Package hms decodes Health Management System error codes reported by
// Bambu Lab printers and maps them to human-readable descriptions and
// documentation links.
package hms

import (
	"fmt"
	"strconv"
	"strings"
)

// Code identifies an HMS error as the pair of 32-bit words a printer
// reports: the attribute word locates the fault (module and submodule),
// the code word carries the severity and fault number.
type Code struct {
	Attr uint32
	Code uint32
}

// String renders the code in wiki notation: four groups of four
// uppercase hex digits, most-significant byte first, attribute word
// before code word. Example: 0300_0D00_0001_0004.
func (c Code) String() string {
	return fmt.Sprintf("%04X_%04X_%04X_%04X",
		c.Attr>>16, c.Attr&0xFFFF,
		c.Code>>16, c.Code&0xFFFF,
	)
}

// Module returns the module identifier carried in the top byte of the
// attribute word.
func (c Code) Module() int {
	return int(c.Attr >> 24)
}

// Severity returns the severity carried in the low nibble of the high
// half of the code word. Printers set flag bits above the nibble on
// some codes, so only the nibble is significant.
func (c Code) Severity() Severity {
	return Severity(c.Code >> 16 & 0xF)
}

// ParseCode parses a code in wiki notation. Underscores and hyphens are
// both accepted as group separators, and parsing is case-insensitive.
func ParseCode(s string) (Code, error) {
	norm := strings.NewReplacer("_", "", "-", "").Replace(strings.TrimSpace(s))
	if len(norm) != 16 {
		return Code{}, fmt.Errorf("invalid HMS code %q: expected 16 hex digits", s)
	}

	attr, err := strconv.ParseUint(norm[:8], 16, 32)
	if err != nil {
		return Code{}, fmt.Errorf("invalid HMS code %q: %w", s, err)
	}
	code, err := strconv.ParseUint(norm[8:], 16, 32)
	if err != nil {
		return Code{}, fmt.Errorf("invalid HMS code %q: %w", s, err)
	}
	return Code{Attr: uint32(attr), Code: uint32(code)}, nil
}
