package bregex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/coregx/bregex/cache"
)

func texts(res *Result) []string {
	var out []string
	for _, m := range res.Matches {
		out = append(out, m.String())
	}
	return out
}

func TestMatch_FirstMatch(t *testing.T) {
	re := MustCompile(`a+`)
	res := re.Match([]byte("aaab"), 0)
	if !res.Success || res.Count != 1 {
		t.Fatalf("Success, Count = %v, %d; want true, 1", res.Success, res.Count)
	}
	m := res.Matches[0]
	if m.String() != "aaa" || m.Column != 0 || m.End() != 3 {
		t.Errorf("match = %q [%d:%d], want \"aaa\" [0:3]", m, m.Column, m.End())
	}
}

func TestSearch_Global(t *testing.T) {
	re := MustCompile(`a+`)
	res := re.SearchString("aaa baa", 0)
	type hit struct {
		Text   string
		Column int
	}
	var got []hit
	for _, m := range res.Matches {
		got = append(got, hit{m.String(), m.Column})
	}
	want := []hit{{"aaa", 0}, {"aa", 5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
}

// The literal every match must contain often sits after the match start.
func TestSearch_RequiredLiteralInsideMatch(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
		want    []string
	}{
		{`\w+@\w+`, "bob@example", []string{"bob@example"}},
		{`[a-c]+x`, "abcx", []string{"abcx"}},
		{`(foo)?bar`, "foobar", []string{"foobar"}},
		{`\d+px`, "width: 10px; height: 2px", []string{"10px", "2px"}},
		{`(?:ab|cd)\.txt`, "see ab.txt and cd.txt", []string{"ab.txt", "cd.txt"}},
		{`\w+@\w+`, "no at sign here", nil},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			for _, enabled := range []bool{true, false} {
				config := DefaultConfig()
				config.EnablePrefilter = enabled
				config.Cache = cache.Nop{}
				re, err := CompileWithConfig(tt.pattern, Options{}, config)
				if err != nil {
					t.Fatal(err)
				}
				got := texts(re.SearchString(tt.subject, 0))
				if diff := cmp.Diff(tt.want, got); diff != "" {
					t.Errorf("prefilter %v: matches mismatch (-want +got):\n%s", enabled, diff)
				}
			}
		})
	}
}

func TestMatch_Flags(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		opts    Options
		flags   Flags
		subject string
		want    []string
	}{
		{"compile-time global", `\d`, Options{Flags: Global}, 0, "a1b2", []string{"1", "2"}},
		{"call-time insensitive", `abc`, Options{}, Insensitive, "ABC", []string{"ABC"}},
		{"sticky", `\d`, Options{}, Sticky | Global, "a1", nil},
		{"single match", `\d`, Options{}, Global | SingleMatch, "123", []string{"1"}},
		{"single line dot", `a.b`, Options{Flags: SingleLine}, 0, "a\nb", []string{"a\nb"}},
		{"dot excludes newline", `a.b`, Options{}, 0, "a\nb", nil},
		{"multiline anchors", `^\w+$`, Options{Flags: Multiline}, 0, "ab\ncd", []string{"ab", "cd"}},
		{"no sub expressions", `(a)(b)`, Options{Flags: NoSubExpressions}, 0, "ab", []string{"ab"}},
		{"ungreedy", `<.+>`, Options{Flags: Ungreedy}, 0, "<a><b>", []string{"<a>"}},
		{"posix dot matches newline", `^.*$`, Options{Dialect: POSIXExtended}, 0, "ab\ncd", []string{"ab\ncd"}},
		{"posix lines", `^.*$`, Options{Dialect: POSIXExtended}, Multiline, "ab\ncd", []string{"ab", "cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, err := CompileOptions(tt.pattern, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			got := texts(re.MatchString(tt.subject, tt.flags))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("matches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatch_PosixIniEntries(t *testing.T) {
	re := MustCompileOptions(`[[:alpha:]]*=([[:digit:]]*)|\[(.*)\]`, Options{Dialect: POSIXExtended})
	res := re.SearchString("[Window]\nOpacity=255\nAudibleBeep=0\n", Multiline)
	if res.Count != 3 {
		t.Fatalf("Count = %d, want 3 (%q)", res.Count, texts(res))
	}

	type span struct {
		Text         string
		Line, Column int
	}
	got := []span{
		{res.Matches[0].String(), res.Matches[0].Line, res.Matches[0].Column},
		{res.Captures(0)[1].String(), res.Captures(0)[1].Line, res.Captures(0)[1].Column},
		{res.Matches[1].String(), res.Matches[1].Line, res.Matches[1].Column},
		{res.Captures(1)[0].String(), res.Captures(1)[0].Line, res.Captures(1)[0].Column},
		{res.Matches[2].String(), res.Matches[2].Line, res.Matches[2].Column},
		{res.Captures(2)[0].String(), res.Captures(2)[0].Line, res.Captures(2)[0].Column},
	}
	want := []span{
		{"[Window]", 0, 0},
		{"Window", 0, 1},
		{"Opacity=255", 1, 0},
		{"255", 1, 8},
		{"AudibleBeep=0", 2, 0},
		{"0", 2, 12},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	if res.Matches[2].GlobalOffset != len("[Window]\nOpacity=255\n") {
		t.Errorf("GlobalOffset = %d", res.Matches[2].GlobalOffset)
	}
}

func TestMatch_PosixWholeSubject(t *testing.T) {
	re := MustCompileOptions(`^.*$`, Options{Dialect: POSIXExtended})
	subject := "Well, hello friends!\nHello World!"

	res := re.MatchString(subject, 0)
	if res.Count != 1 || len(res.Matches[0].View) != 33 {
		t.Errorf("whole subject: Count = %d, matches %q", res.Count, texts(res))
	}
	if !re.HasMatchString("Well,....") {
		t.Error("HasMatch = false")
	}

	res = re.MatchString(subject, Multiline)
	if diff := cmp.Diff([]string{"Well, hello friends!", "Hello World!"}, texts(res)); diff != "" {
		t.Errorf("per line mismatch (-want +got):\n%s", diff)
	}
}

func TestFullMatch(t *testing.T) {
	re := MustCompileOptions(`[[:alpha:]]*=([[:digit:]]*)`, Options{Dialect: POSIXExtended})
	if re.FullMatchString("ViewMode=Icon") {
		t.Error("FullMatch(ViewMode=Icon) = true")
	}
	if !re.FullMatchString("Opacity=255") {
		t.Error("FullMatch(Opacity=255) = false")
	}
	if got := re.SearchString("ViewMode=Icon", 0).Count; got != 1 {
		t.Errorf("Search count = %d, want 1", got)
	}
	if MustCompile(`b`).FullMatchString("ab") {
		t.Error("FullMatch must start at the beginning")
	}
	if !MustCompile(`a*`).FullMatchString("") {
		t.Error("FullMatch(a*, \"\") = false")
	}
}

func TestStatefulHandle(t *testing.T) {
	opts := Options{Flags: InternalStateful}
	re := MustCompileOptions(`\d+`, opts)
	subject := []byte("12 345 6")

	var got []string
	for {
		res := re.Match(subject, 0)
		if !res.Success {
			break
		}
		got = append(got, res.Matches[0].String())
	}
	if diff := cmp.Diff([]string{"12", "345", "6"}, got); diff != "" {
		t.Errorf("successive matches mismatch (-want +got):\n%s", diff)
	}
	if re.Cursor() != 0 {
		t.Errorf("Cursor() = %d after exhausting the subject", re.Cursor())
	}

	re.SetCursor(3)
	if m := re.Match(subject, 0).Matches[0]; m.String() != "345" || re.Cursor() != 6 {
		t.Errorf("after SetCursor(3): %q, cursor %d", m, re.Cursor())
	}

	// a second handle for the same cached pattern starts at zero
	other := MustCompileOptions(`\d+`, opts)
	if other.Program() != re.Program() {
		t.Error("handles do not share the cached program")
	}
	if other.Cursor() != 0 || other.Match(subject, 0).Matches[0].String() != "12" {
		t.Error("new handle inherited the cursor")
	}
}

func TestStatefulAcrossLines(t *testing.T) {
	re := MustCompileOptions(`[a-z]+`, Options{Dialect: POSIXExtended, Flags: InternalStateful})
	lines := Lines([]byte("ab\n12\ncd ef"))
	var got []int
	for i := 0; i < 4; i++ {
		res := re.MatchViews(lines, 0)
		if !res.Success {
			break
		}
		got = append(got, res.Matches[0].GlobalOffset)
	}
	if diff := cmp.Diff([]int{0, 6, 9}, got); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
}

func TestFindAll(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		n       int
		want    []string
	}{
		{`\d+`, "1 22 333", -1, []string{"1", "22", "333"}},
		{`\d+`, "1 22 333", 2, []string{"1", "22"}},
		{`\d+`, "1 22 333", 0, nil},
		{`\d+`, "abc", -1, nil},
		{`a`, "aaa", -1, []string{"a", "a", "a"}},
		{`x*`, "ab", -1, []string{"", "", ""}},
		{`é`, "aéé", -1, []string{"é", "é"}},
	}

	for _, tt := range tests {
		re := MustCompile(tt.pattern)
		got := re.FindAllString(tt.input, tt.n)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("FindAllString(%q, %q, %d) mismatch (-want +got):\n%s", tt.pattern, tt.input, tt.n, diff)
		}
		if c := re.Count([]byte(tt.input)); tt.n < 0 && c != len(tt.want) {
			t.Errorf("Count(%q, %q) = %d, want %d", tt.pattern, tt.input, c, len(tt.want))
		}
	}
}

func TestFindSubmatch(t *testing.T) {
	re := MustCompile(`(?P<user>\w+)@(\w+)(\.com)?`)
	got := re.FindStringSubmatch("mail: bob@example.org")
	want := []string{"bob@example", "bob", "example", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FindStringSubmatch mismatch (-want +got):\n%s", diff)
	}

	raw := re.FindSubmatch([]byte("bob@example.org"))
	if raw[3] != nil {
		t.Errorf("unset group = %q, want nil", raw[3])
	}
	if re.FindSubmatch([]byte("nothing")) != nil || re.FindStringSubmatch("nothing") != nil {
		t.Error("FindSubmatch without a match should be nil")
	}

	if re.NumSubexp() != 3 {
		t.Errorf("NumSubexp() = %d, want 3", re.NumSubexp())
	}
	if diff := cmp.Diff([]string{"", "user", "", ""}, re.SubexpNames()); diff != "" {
		t.Errorf("SubexpNames mismatch (-want +got):\n%s", diff)
	}
}

func TestAccessors(t *testing.T) {
	opts := Options{Dialect: POSIXExtended, Flags: Insensitive}
	re := MustCompileOptions(`ab+`, opts)
	if re.String() != `ab+` {
		t.Errorf("String() = %q", re.String())
	}
	if re.Options() != opts {
		t.Errorf("Options() = %v, want %v", re.Options(), opts)
	}
	if re.Program() == nil || re.Program().Len() == 0 {
		t.Error("Program() is empty")
	}
}

func TestCompileWithConfig(t *testing.T) {
	c := cache.NewFIFO(cache.Options{})
	config := DefaultConfig()
	config.Cache = c

	a, err := CompileWithConfig(`cfg\d`, Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	b, err := CompileWithConfig(`cfg\d`, Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("handles must be distinct")
	}
	if a.Program() != b.Program() || c.Len() != 1 {
		t.Errorf("cache not shared: Len() = %d", c.Len())
	}

	config.Cache = cache.Nop{}
	d, err := CompileWithConfig(`cfg\d`, Options{}, config)
	if err != nil {
		t.Fatal(err)
	}
	if d.Program() == a.Program() {
		t.Error("Nop cache returned a cached program")
	}
}

func TestMatchViews(t *testing.T) {
	re := MustCompile(`z`)
	res := re.MatchViews([][]byte{[]byte("hello"), []byte("big cat"), []byte("wxyz")}, Global)
	if res.Count != 1 {
		t.Fatalf("Count = %d", res.Count)
	}
	m := res.Matches[0]
	if m.Line != 2 || m.Column != 3 || m.GlobalOffset != 5+1+7+1+3 {
		t.Errorf("line, column, offset = %d, %d, %d", m.Line, m.Column, m.GlobalOffset)
	}
}

func TestLines(t *testing.T) {
	got := Lines([]byte("a\n\nbc\n"))
	var s []string
	for _, l := range got {
		s = append(s, string(l))
	}
	if diff := cmp.Diff([]string{"a", "", "bc", ""}, s); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestQuoteMeta(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"hello.world", `hello\.world`},
		{`a+b*c?`, `a\+b\*c\?`},
		{`(x|y)[z]{1}^$\`, `\(x\|y\)\[z\]\{1\}\^\$\\`},
		{"", ""},
	}
	for _, tt := range tests {
		if got := QuoteMeta(tt.in); got != tt.want {
			t.Errorf("QuoteMeta(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !MustCompile(QuoteMeta(tt.in)).FullMatchString(tt.in) {
			t.Errorf("QuoteMeta(%q) does not match itself", tt.in)
		}
	}
}

func TestPathologicalPatternTerminates(t *testing.T) {
	tests := []struct {
		pattern string
		subject string
	}{
		{`^(a|aa)*c`, strings.Repeat("a", 200)},
		{`(a*)*b`, strings.Repeat("a", 200)},
		{`(a?){30}a{30}`, strings.Repeat("a", 30)},
		{`^(\w+\s?)*$`, strings.Repeat("word ", 40) + "!"},
	}
	for _, tt := range tests {
		re := MustCompile(tt.pattern)
		res := re.MatchString(tt.subject, 0)
		if res.Operations > 5_000_000 {
			t.Errorf("%q: %d operations", tt.pattern, res.Operations)
		}
	}
}

func BenchmarkSearch(b *testing.B) {
	re := MustCompile(`(\w+)@(\w+)\.com`)
	subject := []byte(strings.Repeat("lorem ipsum alice@example.com dolor ", 50))
	b.SetBytes(int64(len(subject)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		re.Search(subject, 0)
	}
}

func BenchmarkCompileCached(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Compile(`(\w+)@(\w+)\.com`); err != nil {
			b.Fatal(err)
		}
	}
}
