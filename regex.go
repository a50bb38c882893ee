// Package bregex provides a backtracking regular expression engine with
// multi-view matching, stateful cursors and a shared compilation cache.
//
// Patterns are compiled into a flat bytecode program and run by a priority
// ordered backtracking VM. Compiled patterns are cached process-wide by
// pattern text and options, so compiling the same pattern in a hot loop only
// pays for a map lookup.
//
// Basic usage:
//
//	re := bregex.MustCompile(`(\w+)@(\w+)\.com`)
//	res := re.Search([]byte("alice@example.com bob@test.com"), 0)
//	for i, m := range res.Matches {
//	    fmt.Println(m.Column, m, res.Captures(i)[0])
//	}
//
// Options:
//
//	// POSIX extended syntax, one view per line, every match
//	re, err := bregex.CompileOptions(`^[[:alpha:]]+=([[:digit:]]*)`, bregex.Options{
//	    Dialect: bregex.POSIXExtended,
//	    Flags:   bregex.Global | bregex.Multiline,
//	})
//
// Stateful handles remember where the last match ended and resume there on
// the next call:
//
//	re, _ := bregex.CompileOptions(`\d+`, bregex.Options{Flags: bregex.InternalStateful})
//	re.Match(subject, 0) // first number
//	re.Match(subject, 0) // second number
package bregex

import (
	"bytes"
	"strconv"

	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/meta"
)

// Options is the dialect and flags a pattern is compiled with.
type Options = bytecode.Options

// Flags is the option bitset accepted at compile time and per call.
type Flags = bytecode.Flags

// Dialect selects the pattern syntax.
type Dialect = bytecode.Dialect

// Match is one matched span.
type Match = meta.Match

// Result is the outcome of one match call.
type Result = meta.Result

// Config controls compilation and prefiltering.
type Config = meta.Config

const (
	Global              = bytecode.Global
	Insensitive         = bytecode.Insensitive
	Ungreedy            = bytecode.Ungreedy
	Unicode             = bytecode.Unicode
	UnicodeSets         = bytecode.UnicodeSets
	SingleLine          = bytecode.SingleLine
	Sticky              = bytecode.Sticky
	Multiline           = bytecode.Multiline
	SingleMatch         = bytecode.SingleMatch
	NoSubExpressions    = bytecode.NoSubExpressions
	MatchNotBeginOfLine = bytecode.MatchNotBeginOfLine
	MatchNotEndOfLine   = bytecode.MatchNotEndOfLine
	InternalStateful    = bytecode.InternalStateful
)

const (
	Perl          = bytecode.Perl
	POSIXExtended = bytecode.POSIXExtended
)

// Regex is a compiled pattern plus the cursor of one handle.
//
// A Regex is safe for concurrent use unless it was compiled with
// InternalStateful: stateful calls read and update the handle's cursor and
// must be serialized by the caller.
type Regex struct {
	pattern *meta.Pattern
	matcher *meta.Matcher
	cursor  meta.Cursor
}

// Compile compiles a Perl syntax pattern with no flags.
//
// Example:
//
//	re, err := bregex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, Options{}, DefaultConfig())
}

// CompileOptions compiles pattern with the given dialect and flags.
func CompileOptions(pattern string, opts Options) (*Regex, error) {
	return CompileWithConfig(pattern, opts, DefaultConfig())
}

// CompileWithConfig compiles pattern, reusing the cached program for the
// same pattern text, options and build settings of config when there is one.
// Every call returns a new handle with its own cursor at zero.
//
// Example:
//
//	config := bregex.DefaultConfig()
//	config.Cache = cache.Nop{} // always recompile
//	re, err := bregex.CompileWithConfig("(a|b|c)*", bregex.Options{}, config)
func CompileWithConfig(pattern string, opts Options, config Config) (*Regex, error) {
	p, err := meta.Compile(pattern, opts, config)
	if err != nil {
		return nil, err
	}
	return &Regex{
		pattern: p,
		matcher: meta.NewMatcher(p),
	}, nil
}

// MustCompile is like Compile but panics if the pattern cannot be parsed.
//
// Example:
//
//	var word = bregex.MustCompile(`\w+`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("bregex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// MustCompileOptions is like CompileOptions but panics on error.
func MustCompileOptions(pattern string, opts Options) *Regex {
	re, err := CompileOptions(pattern, opts)
	if err != nil {
		panic("bregex: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// DefaultConfig returns the default configuration for compilation.
func DefaultConfig() Config {
	return meta.DefaultConfig()
}

// QuoteMeta returns a string that escapes all regular expression metacharacters
// inside the argument text; the returned string is a regular expression matching
// the literal text.
//
// Example:
//
//	escaped := bregex.QuoteMeta("hello.world")
//	// escaped = "hello\\.world"
func QuoteMeta(s string) string {
	const special = `\.+*?()|[]{}^$`

	n := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	buf := make([]byte, len(s)+n)
	j := 0
	for i := 0; i < len(s); i++ {
		if isSpecial(s[i], special) {
			buf[j] = '\\'
			j++
		}
		buf[j] = s[i]
		j++
	}
	return string(buf)
}

// isSpecial returns true if c is in the special characters string.
func isSpecial(c byte, special string) bool {
	for i := 0; i < len(special); i++ {
		if c == special[i] {
			return true
		}
	}
	return false
}

// Lines splits b into views at every '\n'. The separators are dropped, so a
// match's GlobalOffset still indexes b.
func Lines(b []byte) [][]byte {
	return bytes.Split(b, []byte{'\n'})
}

// views returns the views b is matched as under the given effective flags:
// one per line for dialects that split multiline subjects, else b whole.
func (r *Regex) views(b []byte, flags Flags) [][]byte {
	if flags.Has(Multiline) && r.pattern.Options().Dialect.SplitsLines() {
		return Lines(b)
	}
	return [][]byte{b}
}

func (r *Regex) run(views [][]byte, flags Flags) *Result {
	return r.runLimit(views, flags, 0)
}

// runLimit is run that stops after limit matches, 0 meaning all of them.
func (r *Regex) runLimit(views [][]byte, flags Flags, limit int) *Result {
	var cur *meta.Cursor
	if r.pattern.Options().Flags.Has(InternalStateful) {
		cur = &r.cursor
	}
	return r.matcher.Run(meta.Request{Views: views, Flags: flags, Cursor: cur, Limit: limit})
}

// Match runs the pattern over b with the compile-time flags plus flags.
//
// Without Global or Multiline the result holds at most the first match.
//
// Example:
//
//	re := bregex.MustCompile(`a+`)
//	res := re.Match([]byte("aaab"), 0)
//	// res.Matches[0].String() == "aaa"
func (r *Regex) Match(b []byte, flags Flags) *Result {
	flags |= r.pattern.Options().Flags
	return r.run(r.views(b, flags), flags)
}

// MatchString is like Match but takes a string.
func (r *Regex) MatchString(s string, flags Flags) *Result {
	return r.Match([]byte(s), flags)
}

// MatchViews runs the pattern over views that the caller already split.
// Coordinates assume one separator byte between views.
func (r *Regex) MatchViews(views [][]byte, flags Flags) *Result {
	return r.run(views, flags)
}

// Search is Match with Global set: it returns every match.
//
// Example:
//
//	re := bregex.MustCompile(`a+`)
//	res := re.Search([]byte("aaa baa"), 0)
//	// res.Count == 2
func (r *Regex) Search(b []byte, flags Flags) *Result {
	return r.Match(b, flags|Global)
}

// SearchString is like Search but takes a string.
func (r *Regex) SearchString(s string, flags Flags) *Result {
	return r.Search([]byte(s), flags)
}

// HasMatch reports whether b contains any match of the pattern.
func (r *Regex) HasMatch(b []byte) bool {
	return r.Match(b, SingleMatch).Success
}

// HasMatchString reports whether s contains any match of the pattern.
func (r *Regex) HasMatchString(s string) bool {
	return r.HasMatch([]byte(s))
}

// FullMatch reports whether the preferred match at the start of b covers
// all of b. Like the rest of the engine it does not look for a longer
// alternative once one has matched.
//
// Example:
//
//	re := bregex.MustCompile(`[[:alpha:]]*=([[:digit:]]*)`)
//	re.FullMatch([]byte("ViewMode=Icon")) // false
//	re.FullMatch([]byte("Opacity=255"))   // true
func (r *Regex) FullMatch(b []byte) bool {
	flags := r.pattern.Options().Flags | Sticky
	flags &^= Multiline
	res := r.matcher.Match([][]byte{b}, flags, nil)
	return res.Success && res.Matches[0].Column == 0 && res.Matches[0].End() == len(b)
}

// FullMatchString is like FullMatch but takes a string.
func (r *Regex) FullMatchString(s string) bool {
	return r.FullMatch([]byte(s))
}

// FindAll returns the text of successive matches in b.
// If n >= 0, it returns at most n matches.
//
// Example:
//
//	re := bregex.MustCompile(`\d+`)
//	re.FindAll([]byte("1 22 333"), -1) // ["1" "22" "333"]
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	if n == 0 {
		return nil
	}
	flags := r.pattern.Options().Flags | Global
	res := r.runLimit(r.views(b, flags), flags, max(n, 0))
	if !res.Success {
		return nil
	}
	out := make([][]byte, 0, res.Count)
	for _, m := range res.Matches {
		out = append(out, m.View)
	}
	return out
}

// FindAllString is like FindAll but takes and returns strings.
func (r *Regex) FindAllString(s string, n int) []string {
	all := r.FindAll([]byte(s), n)
	if all == nil {
		return nil
	}
	out := make([]string, len(all))
	for i, m := range all {
		out[i] = string(m)
	}
	return out
}

// FindSubmatch returns the text of the first match and of each capture group.
// Groups that did not participate are nil. Returns nil if there is no match.
//
// Example:
//
//	re := bregex.MustCompile(`(\w+)=(\d+)`)
//	m := re.FindSubmatch([]byte("x a=1"))
//	// m[0] == "a=1", m[1] == "a", m[2] == "1"
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	res := r.Match(b, 0)
	if !res.Success {
		return nil
	}
	out := make([][]byte, 1+res.CaptureGroupsCount)
	out[0] = res.Matches[0].View
	for i, c := range res.Captures(0) {
		if c.Matched() {
			out[i+1] = c.View
		}
	}
	return out
}

// FindStringSubmatch is like FindSubmatch but takes and returns strings.
// Groups that did not participate are empty.
func (r *Regex) FindStringSubmatch(s string) []string {
	sub := r.FindSubmatch([]byte(s))
	if sub == nil {
		return nil
	}
	out := make([]string, len(sub))
	for i, m := range sub {
		out[i] = string(m)
	}
	return out
}

// Count returns the number of matches in b.
func (r *Regex) Count(b []byte) int {
	return r.Search(b, 0).Count
}

// ReplaceAll returns a copy of src with every match replaced by repl.
// Inside repl, \N (one or more digits) inserts capture group N, \0 the whole
// match, and \\ a backslash. References to groups that did not participate
// or do not exist insert nothing.
//
// Example:
//
//	re := bregex.MustCompile(`(\w+)@(\w+)\.com`)
//	re.ReplaceAll([]byte("user@example.com"), []byte(`\1 at \2`))
//	// "user at example"
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	res := r.Search(src, 0)
	if !res.Success {
		return append([]byte(nil), src...)
	}

	result := make([]byte, 0, len(src))
	lastEnd := 0
	for i, m := range res.Matches {
		start := m.GlobalOffset
		result = append(result, src[lastEnd:start]...)
		result = expand(result, repl, m, res.Captures(i))
		lastEnd = start + len(m.View)
	}
	return append(result, src[lastEnd:]...)
}

// ReplaceAllString is like ReplaceAll but takes and returns strings.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// expand appends template to dst, substituting \N group references.
func expand(dst, template []byte, whole Match, groups []Match) []byte {
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '\\' || i+1 >= len(template) {
			dst = append(dst, c)
			continue
		}
		next := template[i+1]
		if next == '\\' {
			dst = append(dst, '\\')
			i++
			continue
		}
		if next < '0' || next > '9' {
			dst = append(dst, c)
			continue
		}

		j := i + 1
		for j < len(template) && template[j] >= '0' && template[j] <= '9' {
			j++
		}
		n, err := strconv.Atoi(string(template[i+1 : j]))
		i = j - 1
		switch {
		case err != nil:
		case n == 0:
			dst = append(dst, whole.View...)
		case n <= len(groups) && groups[n-1].Matched():
			dst = append(dst, groups[n-1].View...)
		}
	}
	return dst
}

// Cursor returns the position the next stateful call resumes from.
func (r *Regex) Cursor() int {
	return r.cursor.Offset()
}

// SetCursor moves the resume position of a stateful handle.
func (r *Regex) SetCursor(offset int) {
	r.cursor.Set(offset)
}

// Options returns the dialect and flags the pattern was compiled with.
func (r *Regex) Options() Options {
	return r.pattern.Options()
}

// Program returns the compiled program, mainly for inspection.
func (r *Regex) Program() *bytecode.Program {
	return r.pattern.Program()
}

// NumSubexp returns the number of capture groups.
func (r *Regex) NumSubexp() int {
	return r.pattern.NumCaptures()
}

// SubexpNames returns the names of the capture groups. The name of the whole
// match, at index 0, is always empty, as are the names of unnamed groups.
func (r *Regex) SubexpNames() []string {
	names := make([]string, 1+r.pattern.NumCaptures())
	copy(names[1:], r.pattern.GroupNames())
	return names
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern.Source()
}
