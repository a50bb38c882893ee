package bregex

import (
	"regexp"
	"testing"

	"github.com/dlclark/regexp2"
	"github.com/google/go-cmp/cmp"
)

// compatPatterns cannot match the empty string, so successive matches never
// depend on how an engine treats an empty match next to a previous one.
var compatPatterns = []struct {
	pattern string
	// regexp2 is false for syntax that differs between RE2 and .NET.
	regexp2 bool
}{
	{`\d+`, true},
	{`[a-z]+`, true},
	{`a|ab`, true},
	{`ab|a`, true},
	{`(a|ab)(c|bcd)`, true},
	{`(foo|foobar)baz`, true},
	{`x(y|z)+w`, true},
	{`[^,\s]+`, true},
	{`\w+@\w+\.(com|org)`, true},
	{`(\w+)=(\d*)`, true},
	{`a{2,3}`, true},
	{`a{2,}?`, true},
	{`(?i)hello`, true},
	{`(?s)a.b`, true},
	{`a.b`, true},
	{`colou?r`, true},
	{`\$(\d+)\.(\d{2})`, true},
	{`(?:ab)+c`, true},
	{`(a+)(b+)?`, true},
	{`\D+`, true},
	{`.+?,`, true},
	{`\bfoo\b`, false},
	{`(?m)^\w+$`, false},
	{`[[:upper:]]+`, false},
	{`(?U)a+`, false},
	{`\Aline`, false},
	{`\pL+`, false},
}

var compatSubjects = []string{
	"",
	"a",
	"ab abc abcd",
	"aab aaab",
	"x-y foo foobar foobarbaz foobaz",
	"key=12 other=3 x= y",
	"colour color colr",
	"hello HeLLo HELLO",
	"a\nb axb a\tb",
	"line one\nline2\nlast",
	"$12.50 and $3.1 or $7.05",
	"AAbbCC aBc",
	"xyzw xw xyyw",
	"ababc abc ac",
	"user@example.com,bob@test.org, eve@x.net",
}

func TestStdlibCompat_FindAll(t *testing.T) {
	for _, tc := range compatPatterns {
		std := regexp.MustCompile(tc.pattern)
		re := MustCompile(tc.pattern)
		for _, s := range compatSubjects {
			want := std.FindAllString(s, -1)
			got := re.FindAllString(s, -1)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FindAllString(%q, %q) mismatch (-stdlib +bregex):\n%s", tc.pattern, s, diff)
			}
		}
	}
}

func TestStdlibCompat_Submatch(t *testing.T) {
	for _, tc := range compatPatterns {
		std := regexp.MustCompile(tc.pattern)
		re := MustCompile(tc.pattern)
		if re.NumSubexp() != std.NumSubexp() {
			t.Errorf("NumSubexp(%q) = %d, stdlib %d", tc.pattern, re.NumSubexp(), std.NumSubexp())
		}
		for _, s := range compatSubjects {
			want := std.FindStringSubmatch(s)
			got := re.FindStringSubmatch(s)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FindStringSubmatch(%q, %q) mismatch (-stdlib +bregex):\n%s", tc.pattern, s, diff)
			}
			if std.MatchString(s) != re.HasMatchString(s) {
				t.Errorf("HasMatchString(%q, %q) = %v", tc.pattern, s, re.HasMatchString(s))
			}
		}
	}
}

func TestStdlibCompat_Offsets(t *testing.T) {
	for _, tc := range compatPatterns {
		std := regexp.MustCompile(tc.pattern)
		re := MustCompile(tc.pattern)
		for _, s := range compatSubjects {
			var got [][]int
			for _, m := range re.SearchString(s, 0).Matches {
				got = append(got, []int{m.GlobalOffset, m.GlobalOffset + len(m.View)})
			}
			want := std.FindAllStringIndex(s, -1)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("offsets of %q in %q mismatch (-stdlib +bregex):\n%s", tc.pattern, s, diff)
			}
		}
	}
}

// regexp2FindAll collects successive matches the way .NET style engines
// report them.
func regexp2FindAll(t *testing.T, re *regexp2.Regexp, s string) []string {
	t.Helper()
	var out []string
	m, err := re.FindStringMatch(s)
	for m != nil && err == nil {
		out = append(out, m.String())
		m, err = re.FindNextMatch(m)
	}
	if err != nil {
		t.Fatalf("regexp2 %q on %q: %v", re.String(), s, err)
	}
	return out
}

func TestRegexp2Compat_FindAll(t *testing.T) {
	for _, tc := range compatPatterns {
		if !tc.regexp2 {
			continue
		}
		ref, err := regexp2.Compile(tc.pattern, regexp2.None|regexp2.RE2)
		if err != nil {
			t.Fatalf("regexp2.Compile(%q): %v", tc.pattern, err)
		}
		re := MustCompile(tc.pattern)
		for _, s := range compatSubjects {
			want := regexp2FindAll(t, ref, s)
			got := re.FindAllString(s, -1)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FindAllString(%q, %q) mismatch (-regexp2 +bregex):\n%s", tc.pattern, s, diff)
			}
		}
	}
}

// A backtracking engine reports the same capture text as another
// backtracking engine, group by group.
func TestRegexp2Compat_Groups(t *testing.T) {
	for _, tc := range compatPatterns {
		if !tc.regexp2 {
			continue
		}
		ref := regexp2.MustCompile(tc.pattern, regexp2.None|regexp2.RE2)
		re := MustCompile(tc.pattern)
		for _, s := range compatSubjects {
			m, err := ref.FindStringMatch(s)
			if err != nil {
				t.Fatal(err)
			}
			got := re.FindStringSubmatch(s)
			if m == nil {
				if got != nil {
					t.Errorf("FindStringSubmatch(%q, %q) = %q, regexp2 found nothing", tc.pattern, s, got)
				}
				continue
			}
			var want []string
			for _, g := range m.Groups() {
				want = append(want, g.String())
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("groups of %q in %q mismatch (-regexp2 +bregex):\n%s", tc.pattern, s, diff)
			}
		}
	}
}

// Without line splitting the POSIX dialect agrees with the Perl one on
// patterns both accept, negated classes matching newlines included.
func TestPosixCompat(t *testing.T) {
	patterns := []string{
		`[[:alpha:]]+`,
		`[[:digit:]]+\.[[:digit:]]*`,
		`[[:alnum:]_]+=`,
		`(a|ab)(c|bcd)`,
		`x[^y]*y`,
	}
	for _, pattern := range patterns {
		std := regexp.MustCompile(pattern)
		re := MustCompileOptions(pattern, Options{Dialect: POSIXExtended})
		for _, s := range compatSubjects {
			want := std.FindAllString(s, -1)
			got := re.FindAllString(s, -1)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("FindAllString(%q, %q) mismatch (-stdlib +bregex):\n%s", pattern, s, diff)
			}
		}
	}
}
