// Package maincmd implements the juvm command line with
// github.com/mna/mainer, over a single action (load and run an assembly):
// juvm has no subcommands.
package maincmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mna/mainer"

	"github.com/kaisadilla/judith"
)

const binName = "juvm"

// defaultEntryPath is the built-in test path the CLI driver falls back to
// when invoked with no arguments.
const defaultEntryPath = "res/test.jdll"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<entry-path>] [<out-path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<entry-path>] [<out-path>]
       %[1]s -h|--help
       %[1]s -v|--version

Loads and runs a JUDITH assembly.

       entry-path                Path to the assembly file to run. The file
                                 name's stem becomes the assembly name.
                                 Defaults to %[2]s.
       out-path                  If given, standard output is redirected to
                                 this file instead of the console.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
`, binName, defaultEntryPath)
)

// Cmd is the juvm command line: a single action, not a dispatch table.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string)      { c.args = args }
func (c *Cmd) SetFlags(_ map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 2 {
		return fmt.Errorf("too many arguments: expected at most <entry-path> <out-path>, got %d", len(c.args))
	}
	return nil
}

// Main parses args and either prints help/version or loads and runs the
// requested assembly, redirecting standard output to out-path when one is
// given.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	entryPath := defaultEntryPath
	if len(c.args) >= 1 {
		entryPath = c.args[0]
	} else {
		fmt.Fprintln(stdio.Stdout, "no arguments - juvm test mode")
	}

	stdout := stdio.Stdout
	if len(c.args) >= 2 {
		outPath := c.args[1]
		if dir := filepath.Dir(outPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				fmt.Fprintf(stdio.Stderr, "%s\n", err)
				return mainer.Failure
			}
		}
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			return mainer.Failure
		}
		defer f.Close()

		w := bufio.NewWriter(f)
		defer w.Flush()
		stdout = w
	}

	m := judith.New()
	m.Stdout = stdout
	m.Stderr = stdio.Stderr
	m.Stdin = stdio.Stdin

	if err := m.Start(entryPath); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}
