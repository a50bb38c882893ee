// Command bregex searches files line by line and prints every match.
//
//	bregex [flags...] pattern [files...]
//
// With -cases it instead runs a YAML file of match expectations and reports
// the ones that fail.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/coregx/bregex"
	"github.com/coregx/bregex/bytecode"
	"github.com/coregx/bregex/cache"
)

// Following the grep tool convention.
const (
	exitMatched    = 0
	exitNotMatched = 1
	exitError      = 2
)

func main() {
	log.SetFlags(0)
	exitCode, err := mainNoExit(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		log.Printf("error: %v", err)
	}
	os.Exit(exitCode)
}

type arguments struct {
	posix       bool
	insensitive bool
	singleLine  bool
	ungreedy    bool
	countMode   bool
	verbose     bool
	noColor     bool
	matchColor  string

	cases       string
	cacheBudget int
	maxDepth    int

	pattern string
	files   []string
}

type program struct {
	args   arguments
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	color  bool

	re         *bregex.Regex
	config     bregex.Config
	numMatches int
	numFailed  int
}

func mainNoExit(argv []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	var args arguments
	if err := parseFlags(&args, argv, stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitMatched, nil
		}
		return exitError, err
	}

	p := &program{
		args:   args,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, "", 0),
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"validate flags", p.validateFlags},
		{"configure", p.configure},
		{"run cases", p.runCases},
		{"compile pattern", p.compilePattern},
		{"search files", p.searchFiles},
	}

	for _, step := range steps {
		if args.verbose {
			p.logger.Printf("debug: starting %q step", step.name)
		}
		if err := step.fn(); err != nil {
			return exitError, fmt.Errorf("%s: %w", step.name, err)
		}
	}

	if args.cases != "" {
		if p.numFailed != 0 {
			return exitNotMatched, nil
		}
		return exitMatched, nil
	}
	if p.numMatches == 0 {
		return exitNotMatched, nil
	}
	return exitMatched, nil
}

func parseFlags(args *arguments, argv []string, output io.Writer) error {
	fs := flag.NewFlagSet("bregex", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		const usage = `Usage: bregex [flags...] pattern [files...]
       bregex -cases file.yaml
Where:
  pattern is a regular expression, Perl syntax unless -posix is given
  files are searched line by line; standard input is read when there are none
Examples:
  # Print every number in a log.
  bregex '\d+' app.log
  # Find INI keys with POSIX classes, ignoring case.
  bregex -posix -i '^[[:alpha:]]+=' settings.ini
  # Check a batch of expectations.
  bregex -cases testdata/cases.yaml

Exit status:
  0 if something is matched (or every case passed)
  1 if nothing is matched (or a case failed)
  2 if error occurred

Supported command-line flags:
`
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	fs.BoolVar(&args.posix, "posix", false,
		`use POSIX extended syntax instead of Perl syntax`)
	fs.BoolVar(&args.insensitive, "i", false,
		`case insensitive matching`)
	fs.BoolVar(&args.singleLine, "s", false,
		`let '.' match newlines`)
	fs.BoolVar(&args.ungreedy, "U", false,
		`swap the greediness of quantifiers`)
	fs.BoolVar(&args.countMode, "c", false,
		`print only the number of matches per file`)
	fs.BoolVar(&args.verbose, "v", false,
		`verbose mode: turn on additional debug logging`)
	fs.BoolVar(&args.noColor, "no-color", false,
		`disable colored output`)
	fs.StringVar(&args.matchColor, "color-match", envVarOrDefault("BREGEX_COLOR_MATCH", "dark-red"),
		`match text color, can also override via $BREGEX_COLOR_MATCH`)
	fs.StringVar(&args.cases, "cases", "",
		`run the match cases of a YAML file instead of searching`)
	fs.IntVar(&args.cacheBudget, "cache-budget", cache.DefaultBudget,
		`byte budget of the compiled pattern cache`)
	fs.IntVar(&args.maxDepth, "max-depth", bregex.DefaultConfig().MaxRecursionDepth,
		`maximum nesting depth of a pattern`)

	if err := fs.Parse(argv); err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) != 0 {
		args.pattern = rest[0]
		args.files = rest[1:]
	}
	return nil
}

func (p *program) validateFlags() error {
	if p.args.cases == "" && p.args.pattern == "" {
		return fmt.Errorf("pattern can't be empty")
	}
	if p.args.cases != "" && p.args.pattern != "" {
		return fmt.Errorf("-cases does not take a pattern")
	}
	if _, err := colorizeText("", p.args.matchColor); err != nil {
		return fmt.Errorf("color-match: %v", err)
	}
	if p.args.cacheBudget <= 0 {
		return fmt.Errorf("cache-budget: must be positive, got %d", p.args.cacheBudget)
	}

	p.color = !p.args.noColor && isTerminal(p.stdout)
	if p.args.verbose {
		p.logger.Printf("debug: pattern: %s", p.args.pattern)
		p.logger.Printf("debug: files: %v", p.args.files)
		p.logger.Printf("debug: color: %v", p.color)
	}
	return nil
}

func (p *program) configure() error {
	opts := cache.Options{Budget: p.args.cacheBudget}
	if p.args.verbose {
		opts.Logger = debugLogger{p.logger}
	}
	p.config = bregex.DefaultConfig()
	p.config.MaxRecursionDepth = p.args.maxDepth
	p.config.Cache = cache.NewFIFO(opts)
	return p.config.Validate()
}

func (p *program) options() bregex.Options {
	var opts bregex.Options
	if p.args.posix {
		opts.Dialect = bregex.POSIXExtended
	}
	if p.args.insensitive {
		opts.Flags |= bregex.Insensitive
	}
	if p.args.singleLine {
		opts.Flags |= bregex.SingleLine
	}
	if p.args.ungreedy {
		opts.Flags |= bregex.Ungreedy
	}
	return opts
}

func (p *program) compilePattern() error {
	if p.args.cases != "" {
		return nil
	}
	re, err := bregex.CompileWithConfig(p.args.pattern, p.options(), p.config)
	if err != nil {
		var pe *bytecode.ParseError
		if errors.As(err, &pe) {
			fmt.Fprintln(p.stderr, pe.Render(""))
		}
		return err
	}
	p.re = re
	if p.args.verbose {
		prog := re.Program()
		p.logger.Printf("debug: program: %d words, %d groups, min length %d",
			prog.Len(), prog.CaptureGroups, prog.MinLength)
	}
	return nil
}

func (p *program) searchFiles() error {
	if p.re == nil {
		return nil
	}
	if len(p.args.files) == 0 {
		data, err := io.ReadAll(p.stdin)
		if err != nil {
			return err
		}
		p.search("<stdin>", data)
		return nil
	}
	for _, filename := range p.args.files {
		data, err := os.ReadFile(filename)
		if err != nil {
			return err
		}
		p.search(filename, data)
	}
	return nil
}

func (p *program) search(filename string, data []byte) {
	res := p.re.MatchViews(bregex.Lines(data), bregex.Global)
	p.numMatches += res.Count
	if p.args.verbose {
		p.logger.Printf("debug: %s: %d matches, %d operations", filename, res.Count, res.Operations)
	}

	if p.args.countMode {
		fmt.Fprintf(p.stdout, "%s: %d\n", filename, res.Count)
		return
	}
	for _, m := range res.Matches {
		text := m.String()
		if p.color {
			text = mustColorizeText(text, p.args.matchColor)
		}
		fmt.Fprintf(p.stdout, "%s:%d:%d: %s\n", filename, m.Line+1, m.Column+1, text)
	}
}

// debugLogger lets a standard logger receive cache activity.
type debugLogger struct {
	*log.Logger
}

func (l debugLogger) Debugf(format string, args ...any) {
	l.Printf("debug: "+format, args...)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func envVarOrDefault(name, defaultValue string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return defaultValue
}
