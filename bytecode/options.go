package bytecode

import (
	"fmt"
	"regexp/syntax"
	"strings"
)

// Flags is the option bitset understood by the compiler and the matcher.
//
// Some flags only affect compilation (Ungreedy, SingleLine, NoSubExpressions),
// some only affect matching (Global, Sticky, SingleMatch, MatchNotBeginOfLine,
// MatchNotEndOfLine, InternalStateful), and some affect both (Insensitive,
// Multiline, Unicode, UnicodeSets).
type Flags uint32

const (
	// Global keeps searching after the first match.
	Global Flags = 1 << iota

	// Insensitive folds case when comparing characters.
	Insensitive

	// Ungreedy swaps the meaning of greedy and lazy quantifiers.
	Ungreedy

	// Unicode enables full Unicode simple case folding for Insensitive.
	// Without it only ASCII letters fold.
	Unicode

	// UnicodeSets behaves like Unicode for matching purposes.
	UnicodeSets

	// SingleLine makes '.' match '\n'.
	SingleLine

	// Sticky restricts matching to the cursor position only.
	Sticky

	// Multiline makes '^' and '$' match at line boundaries and, for dialects
	// that split subjects into lines, matches every line.
	Multiline

	// SingleMatch stops the whole scan after one match.
	SingleMatch

	// NoSubExpressions compiles capture groups as plain groups.
	NoSubExpressions

	// MatchNotBeginOfLine rejects matches that start at the beginning of a view.
	MatchNotBeginOfLine

	// MatchNotEndOfLine rejects matches that end at the end of a view.
	MatchNotEndOfLine

	// InternalStateful persists the end of the last match in the handle cursor
	// and resumes from it on the next call.
	InternalStateful
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{Global, "Global"},
	{Insensitive, "Insensitive"},
	{Ungreedy, "Ungreedy"},
	{Unicode, "Unicode"},
	{UnicodeSets, "UnicodeSets"},
	{SingleLine, "SingleLine"},
	{Sticky, "Sticky"},
	{Multiline, "Multiline"},
	{SingleMatch, "SingleMatch"},
	{NoSubExpressions, "NoSubExpressions"},
	{MatchNotBeginOfLine, "MatchNotBeginOfLine"},
	{MatchNotEndOfLine, "MatchNotEndOfLine"},
	{InternalStateful, "InternalStateful"},
}

// Has reports whether every bit of f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// UnicodeAware reports whether Unicode or UnicodeSets is set.
func (f Flags) UnicodeAware() bool {
	return f&(Unicode|UnicodeSets) != 0
}

// String returns the flag names joined with '|'.
func (f Flags) String() string {
	if f == 0 {
		return "None"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
			f &^= fn.flag
		}
	}
	if f != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(f)))
	}
	return strings.Join(parts, "|")
}

// ParseFlags parses a comma or '|' separated list of flag names, as produced
// by Flags.String. Names are case-insensitive. Single letters are accepted for
// the common flags: g, i, m, s, y, U.
func ParseFlags(s string) (Flags, error) {
	var f Flags
	for _, field := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' || r == ' ' }) {
		switch field {
		case "g":
			f |= Global
			continue
		case "i":
			f |= Insensitive
			continue
		case "m":
			f |= Multiline
			continue
		case "s":
			f |= SingleLine
			continue
		case "y":
			f |= Sticky
			continue
		case "u":
			f |= Unicode
			continue
		case "U":
			f |= Ungreedy
			continue
		}
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(fn.name, field) {
				f |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flag %q", field)
		}
	}
	return f, nil
}

// Dialect selects the pattern syntax a program is compiled from.
type Dialect uint8

const (
	// Perl is the Perl/RE2 syntax accepted by regexp/syntax with syntax.Perl.
	Perl Dialect = iota

	// POSIXExtended is POSIX ERE syntax (regexp/syntax with syntax.POSIX).
	// '.' matches newlines, and Multiline matches split the subject into one
	// view per line.
	POSIXExtended
)

// String returns the dialect name.
func (d Dialect) String() string {
	switch d {
	case Perl:
		return "Perl"
	case POSIXExtended:
		return "POSIXExtended"
	default:
		return fmt.Sprintf("Dialect(%d)", uint8(d))
	}
}

// SplitsLines reports whether a Multiline match in this dialect runs over
// one view per line rather than over the whole subject.
func (d Dialect) SplitsLines() bool {
	return d == POSIXExtended
}

func (d Dialect) syntaxFlags() (syntax.Flags, error) {
	switch d {
	case Perl:
		return syntax.Perl, nil
	case POSIXExtended:
		// '.' and negated classes match newlines unless the subject is split
		// into lines, as with regcomp without REG_NEWLINE.
		return syntax.POSIX | syntax.OneLine | syntax.DotNL | syntax.ClassNL, nil
	default:
		return 0, fmt.Errorf("%w: unknown dialect %d", ErrInvalidPattern, uint8(d))
	}
}

// Options is the dialect plus flags a pattern is compiled with.
// It is comparable and used verbatim as part of the compilation cache key.
type Options struct {
	Dialect Dialect
	Flags   Flags
}

// String returns a readable form, e.g. "Perl(Global|Insensitive)".
func (o Options) String() string {
	return o.Dialect.String() + "(" + o.Flags.String() + ")"
}
