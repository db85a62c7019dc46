// Package ucd parses the Unicode reference data files the index builder
// consumes: UnicodeData.txt for general categories, Scripts.txt for script
// assignment, and the IDNA derived property listing.
package ucd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Parser reads rows of a Unicode Character Database text file:
// ';'-separated fields, '#' comments, and a first field holding either a
// single hexadecimal codepoint or an inclusive "XXXX..YYYY" range.
type Parser struct {
	scanner *bufio.Scanner
	fields  []string
	lo, hi  rune
	line    int
	err     error
}

// New returns a parser over r.
func New(r io.Reader) *Parser {
	return &Parser{scanner: bufio.NewScanner(r)}
}

// Next advances to the next data row, skipping blanks and comments. It
// returns false at end of input or on the first malformed row; Err
// distinguishes the two.
func (p *Parser) Next() bool {
	if p.err != nil {
		return false
	}
	for p.scanner.Scan() {
		p.line++
		line := p.scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ";")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		lo, hi, err := parseRange(fields[0])
		if err != nil {
			p.err = fmt.Errorf("line %d: %w", p.line, err)
			return false
		}
		p.fields = fields
		p.lo, p.hi = lo, hi
		return true
	}
	p.err = p.scanner.Err()
	return false
}

// Range returns the codepoint range of the current row.
func (p *Parser) Range() (lo, hi rune) {
	return p.lo, p.hi
}

// Field returns the i'th trimmed field of the current row, or "" when the
// row has fewer fields.
func (p *Parser) Field(i int) string {
	if i < 0 || i >= len(p.fields) {
		return ""
	}
	return p.fields[i]
}

// Line returns the current line number.
func (p *Parser) Line() int {
	return p.line
}

// Err reports the first scan or parse error.
func (p *Parser) Err() error {
	return p.err
}

func parseRange(s string) (rune, rune, error) {
	loPart, hiPart, isRange := strings.Cut(s, "..")
	lo, err := parseCode(loPart)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		return lo, lo, nil
	}
	hi, err := parseCode(hiPart)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("inverted range %q", s)
	}
	return lo, hi, nil
}

func parseCode(s string) (rune, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("bad codepoint %q", s)
	}
	if v > unicode.MaxRune {
		return 0, fmt.Errorf("codepoint %04X beyond the last codepoint", v)
	}
	return rune(v), nil
}
