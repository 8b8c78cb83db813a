// Package cliopts defines the reclog flag surface and binds it to a
// cobra command: flags are bound to the fields of an Options struct,
// which a separate Validate call checks after parsing.
package cliopts

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Options holds the parsed, validated flag set for one invocation.
type Options struct {
	Header bool
	Ts     bool
	TsFmt  string
	TsSrc  string
	Output string
	Force  bool
	Append bool
	Null   bool
	Raw    bool
	Silent bool
	QuitMs int
	Buffer int
	Debug  bool
	Man    bool

	Command []string
}

// Register attaches all reclog flags to cmd and returns an Options
// whose fields cobra will populate on parse.
func Register(cmd *cobra.Command) *Options {
	o := &Options{}
	flags := cmd.Flags()

	flags.BoolVarP(&o.Header, "header", "H", false, "emit header line before running child")
	flags.BoolVarP(&o.Ts, "ts", "t", false, "enable per-line timestamp prefix")
	flags.StringVar(&o.TsFmt, "ts-fmt", "%T%.3f ", "strftime-style timestamp format")
	flags.StringVar(&o.TsSrc, "ts-src", "wall", "timestamp source: wall, elapsed, or delta")
	flags.StringVarP(&o.Output, "output", "o", "", "output file path (auto-derived from COMMAND otherwise)")
	flags.BoolVarP(&o.Force, "force", "f", false, "overwrite an existing output file")
	flags.BoolVarP(&o.Append, "append", "a", false, "append to an existing output file")
	flags.BoolVarP(&o.Null, "null", "N", false, "no output file (stdout only)")
	flags.BoolVarP(&o.Raw, "raw", "R", false, "don't strip ANSI escapes in the file sink")
	flags.BoolVarP(&o.Silent, "silent", "s", false, "no stdout")
	flags.IntVarP(&o.QuitMs, "quit", "q", 15, "drain/termination deadline in milliseconds")
	flags.IntVarP(&o.Buffer, "buffer", "b", 10000, "ring buffer capacity in lines")
	flags.BoolVarP(&o.Debug, "debug", "D", false, "enable stderr debug log and a per-pump trace sidecar")
	flags.BoolVar(&o.Man, "man", false, "print the manual page and exit")

	cmd.MarkFlagsMutuallyExclusive("force", "append")
	cmd.MarkFlagsMutuallyExclusive("null", "force")
	cmd.MarkFlagsMutuallyExclusive("null", "append")
	cmd.MarkFlagsMutuallyExclusive("null", "output")

	return o
}

// Validate checks cross-flag and value constraints cobra's own
// machinery doesn't express, and records the child command and
// argument vector. Returns a usage error (exit code 2 in the caller)
// on any violation.
func (o *Options) Validate(args []string) error {
	if !o.Man {
		if len(args) == 0 {
			return fmt.Errorf("no command given")
		}
		o.Command = args
	}

	switch o.TsSrc {
	case "wall", "elapsed", "delta":
	default:
		return fmt.Errorf("invalid --ts-src %q (want wall, elapsed, or delta)", o.TsSrc)
	}

	if o.QuitMs < 0 {
		return fmt.Errorf("--quit must be >= 0, got %d", o.QuitMs)
	}
	if o.Buffer <= 0 {
		return fmt.Errorf("--buffer must be > 0, got %d", o.Buffer)
	}

	return nil
}
