package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lmorg/readline"
	"github.com/yamitzky/xleval-go/xleval"
)

var version = "dev"

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type session struct {
	book   *xleval.Book
	sheet  *xleval.Sheet
	stdout *bufio.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var cells stringList

	fs := flag.NewFlagSet("xlcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	showVersion := fs.Bool("v", false, "show version")
	fs.BoolVar(showVersion, "version", false, "show version")

	locale := fs.String("l", "en-US", "locale for numbers in text")
	fs.StringVar(locale, "locale", "en-US", "locale for numbers in text")

	sheetName := fs.String("s", "Sheet1", "sheet formulas are evaluated on")
	fs.StringVar(sheetName, "sheet", "Sheet1", "sheet formulas are evaluated on")

	fs.Var(&cells, "c", "cell assignment")
	fs.Var(&cells, "cell", "cell assignment")

	interactive := fs.Bool("i", false, "interactive mode")
	fs.BoolVar(interactive, "interactive", false, "interactive mode")

	listFunctions := fs.Bool("f", false, "list functions")
	fs.BoolVar(listFunctions, "functions", false, "list functions")

	verbosity := fs.Int("verbosity", 0, "trace level written to stderr")

	fs.Usage = func() {
		fmt.Fprint(stderr, usageText())
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, version)
		return 0
	}

	culture, err := xleval.ParseCulture(*locale)
	if err != nil {
		fmt.Fprintf(stderr, "invalid locale: %v\n", err)
		return 2
	}

	book := xleval.NewBook(&xleval.BookOptions{
		Logfile:   stderr,
		Verbosity: *verbosity,
		Culture:   culture,
	})
	sheet, err := book.AddSheet(*sheetName)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	s := &session{
		book:   book,
		sheet:  sheet,
		stdout: bufio.NewWriter(stdout),
		stderr: stderr,
	}
	defer s.stdout.Flush()

	for _, cell := range cells {
		name, input, ok := strings.Cut(cell, "=")
		if !ok {
			fmt.Fprintf(stderr, "invalid cell assignment %q, want NAME=VALUE\n", cell)
			return 2
		}
		if err := s.assign(name, input); err != nil {
			fmt.Fprintf(stderr, "invalid cell assignment %q: %v\n", cell, err)
			return 2
		}
	}

	if *listFunctions {
		for _, name := range book.Registry.Names() {
			fmt.Fprintln(s.stdout, name)
		}
		return 0
	}

	if *interactive {
		s.repl()
		return 0
	}

	status := 0
	formulas := fs.Args()
	if len(formulas) == 0 {
		scanner := bufio.NewScanner(stdin)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				formulas = append(formulas, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "failed to read stdin: %v\n", err)
			return 1
		}
	}
	for _, formula := range formulas {
		if !s.evaluate(formula) {
			status = 2
		}
	}
	return status
}

func usageText() string {
	return `Usage:

 xlcalc [-h] [-v] [-l LOCALE] [-s SHEET] [-c CELL=VALUE ...] [-i] [-f]
        [--verbosity N] [--] [formula ...]
positional arguments:

  formula               formula to evaluate, with or without a leading '=';
                        read one per line from STDIN when none are given
optional arguments:

  -h, --help            show this help message and exit
  -v, --version         show program's version number and exit
  -l LOCALE, --locale LOCALE
                        BCP 47 tag governing numbers held in text, such as
                        "3,1" under de-DE (default: en-US)
  -s SHEET, --sheet SHEET
                        name of the sheet formulas are evaluated on
                        (default: Sheet1)
  -c CELL=VALUE, --cell CELL=VALUE
                        store VALUE in CELL before evaluating, as if typed
                        into it; CELL may be qualified (Data!B2) and a
                        VALUE starting with '=' is a formula
  -i, --interactive     read formulas from a line editor; "B2 := VALUE"
                        assigns a cell and "quit" leaves
  -f, --functions       list the available functions and exit
  --verbosity N         write evaluation traces to STDERR
Use '--' before a formula that starts with '-'.
`
}

// assign stores input in the named cell, creating the sheet it names if
// the book does not have one yet.
func (s *session) assign(name, input string) error {
	sheetName, box, err := xleval.ParseRangeName(name)
	if err != nil {
		return err
	}
	if box.RowXHi-box.RowXLo != 1 || box.ColXHi-box.ColXLo != 1 {
		return fmt.Errorf("%s is not a single cell", strings.TrimSpace(name))
	}
	sh := s.sheet
	if sheetName != "" {
		if sh, err = s.book.SheetByName(sheetName); err != nil {
			if sh, err = s.book.AddSheet(sheetName); err != nil {
				return err
			}
		}
	}
	return sh.Enter(box.RowXLo, box.ColXLo, strings.TrimSpace(input))
}

// evaluate prints the result of one formula, evaluated as if entered in
// the first unused row of the sheet.
func (s *session) evaluate(formula string) bool {
	v, err := s.sheet.Evaluate(s.sheet.NRows, 0, formula)
	if err != nil {
		fmt.Fprintf(s.stderr, "%s: %v\n", formula, err)
		return false
	}
	fmt.Fprintln(s.stdout, xleval.Display(v))
	return true
}

func (s *session) repl() {
	rline := readline.NewInstance()
	rline.SetPrompt(xleval.QuotedSheetName(s.sheet.Name) + "> ")
	for {
		line, err := rline.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "quit", "exit":
			return
		}
		if name, input, ok := strings.Cut(line, ":="); ok {
			if err := s.assign(name, input); err != nil {
				fmt.Fprintln(s.stderr, err)
			}
			continue
		}
		s.evaluate(line)
		s.stdout.Flush()
	}
}
