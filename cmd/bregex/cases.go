package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coregx/bregex"
)

// matchCase is one entry of a -cases file:
//
//	- name: ini entries
//	  pattern: '[[:alpha:]]*=([[:digit:]]*)'
//	  dialect: posix
//	  flags: [global, multiline]
//	  subject: "Opacity=255\nAudibleBeep=0"
//	  want: [Opacity=255, AudibleBeep=0]
type matchCase struct {
	Name    string   `yaml:"name"`
	Pattern string   `yaml:"pattern"`
	Dialect string   `yaml:"dialect"`
	Flags   []string `yaml:"flags"`
	Subject string   `yaml:"subject"`
	Want    []string `yaml:"want"`
	// Error, when set, is a substring of the expected compile error.
	Error string `yaml:"error"`
}

var flagNames = map[string]bregex.Flags{
	"global":       bregex.Global,
	"insensitive":  bregex.Insensitive,
	"ungreedy":     bregex.Ungreedy,
	"unicode":      bregex.Unicode,
	"unicode-sets": bregex.UnicodeSets,
	"single-line":  bregex.SingleLine,
	"sticky":       bregex.Sticky,
	"multiline":    bregex.Multiline,
	"single-match": bregex.SingleMatch,
	"no-subexp":    bregex.NoSubExpressions,
	"not-bol":      bregex.MatchNotBeginOfLine,
	"not-eol":      bregex.MatchNotEndOfLine,
	"stateful":     bregex.InternalStateful,
}

func (c *matchCase) options() (bregex.Options, error) {
	var opts bregex.Options
	switch strings.ToLower(c.Dialect) {
	case "", "perl":
		opts.Dialect = bregex.Perl
	case "posix", "posix-extended":
		opts.Dialect = bregex.POSIXExtended
	default:
		return opts, fmt.Errorf("unknown dialect %q", c.Dialect)
	}
	for _, name := range c.Flags {
		f, ok := flagNames[strings.ToLower(name)]
		if !ok {
			return opts, fmt.Errorf("unknown flag %q", name)
		}
		opts.Flags |= f
	}
	return opts, nil
}

func loadCases(filename string) ([]matchCase, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var cases []matchCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cases, nil
}

func (p *program) runCases() error {
	if p.args.cases == "" {
		return nil
	}
	cases, err := loadCases(p.args.cases)
	if err != nil {
		return err
	}

	for i := range cases {
		c := &cases[i]
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("#%d %s", i, c.Pattern)
		}
		if problem := p.runCase(c); problem != "" {
			p.numFailed++
			fmt.Fprintf(p.stdout, "FAIL %s: %s\n", name, problem)
			continue
		}
		if p.args.verbose {
			p.logger.Printf("debug: ok %s", name)
		}
	}
	fmt.Fprintf(p.stdout, "%d cases, %d failed\n", len(cases), p.numFailed)
	return nil
}

// runCase returns a description of the mismatch, or "" if c passes.
func (p *program) runCase(c *matchCase) string {
	opts, err := c.options()
	if err != nil {
		return err.Error()
	}
	re, err := bregex.CompileWithConfig(c.Pattern, opts, p.config)
	if c.Error != "" {
		if err == nil {
			return fmt.Sprintf("compiled, want error containing %q", c.Error)
		}
		if !strings.Contains(err.Error(), c.Error) {
			return fmt.Sprintf("error %q, want one containing %q", err, c.Error)
		}
		return ""
	}
	if err != nil {
		return err.Error()
	}

	res := re.MatchString(c.Subject, 0)
	got := make([]string, 0, res.Count)
	for _, m := range res.Matches {
		got = append(got, m.String())
	}
	want := c.Want
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return fmt.Sprintf("got %q, want %q", got, want)
	}
	return ""
}
