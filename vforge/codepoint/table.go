package codepoint

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// ErrMalformedRange reports a property table row whose codepoint range cannot
// be parsed. Build-time data error; the table must be fixed, not skipped.
var ErrMalformedRange = errors.New("malformed codepoint range")

// ParsePropertyTable reads the native property table format: one row per
// line, "0041, PVALID" for a single codepoint or "0041-0044, PVALID" for an
// inclusive range, codepoints in hexadecimal. Blank lines and '#' comments
// are skipped.
func ParsePropertyTable(r io.Reader) ([]PropertyRange, error) {
	var table []PropertyRange
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pr, err := parsePropertyRow(line)
		if err != nil {
			return nil, fmt.Errorf("property table line %d: %w", lineNo, err)
		}
		table = append(table, pr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read property table: %w", err)
	}
	return table, nil
}

func parsePropertyRow(line string) (PropertyRange, error) {
	rangePart, prop, ok := strings.Cut(line, ",")
	if !ok {
		return PropertyRange{}, fmt.Errorf("%w: no property in %q", ErrMalformedRange, line)
	}
	prop = strings.TrimSpace(prop)
	if prop == "" {
		return PropertyRange{}, fmt.Errorf("%w: empty property in %q", ErrMalformedRange, line)
	}
	lo, hi, err := parseRange(strings.TrimSpace(rangePart))
	if err != nil {
		return PropertyRange{}, err
	}
	return PropertyRange{Lo: lo, Hi: hi, Property: prop}, nil
}

// parseRange accepts "0041" or "0041-0044", both hexadecimal, range inclusive.
func parseRange(s string) (rune, rune, error) {
	loPart, hiPart, isRange := strings.Cut(s, "-")
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
		return 0, 0, fmt.Errorf("%w: %q is inverted", ErrMalformedRange, s)
	}
	return lo, hi, nil
}

func parseCode(s string) (rune, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a hexadecimal codepoint", ErrMalformedRange, s)
	}
	if v > unicode.MaxRune {
		return 0, fmt.Errorf("%w: %04X is beyond the last codepoint", ErrMalformedRange, v)
	}
	return rune(v), nil
}
