// Command reclog runs a child program inside a pty, duplicates its
// output to a log file, and mediates signal and termination semantics
// between the user's terminal and the child process group.
package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"reclog/internal/cliopts"
	"reclog/internal/exitstatus"
	"reclog/internal/outputpath"
	"reclog/internal/outputsink"
	"reclog/internal/ptysession"
	"reclog/internal/supervisor"
	"reclog/internal/term"
	"reclog/internal/timestamp"
)

//go:embed reclog.1
var manPage string

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

// activeTermState is whatever termios snapshot execute last saved. The
// recover in main uses it to restore the terminal on a panic that
// happens after SetCanonical but before the supervisor's own deferred
// restore takes over.
var activeTermState *term.State

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = activeTermState.Restore()
			panic(r)
		}
	}()
	code := run()
	os.Exit(code)
}

func run() int {
	rootCmd := &cobra.Command{
		Use:                   "reclog [OPTIONS] COMMAND...",
		Short:                 "Run a command in a pty and record its output",
		Version:               version,
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Args:                  cobra.ArbitraryArgs,
	}
	opts := cliopts.Register(rootCmd)
	// Define --version with the -V shorthand; cobra then skips adding its
	// own default -v flag and still prints Version when this one is set.
	rootCmd.Flags().BoolP("version", "V", false, "print the version and exit")
	// Stop parsing flags at the first positional argument so a flag
	// meant for the child command (e.g. `reclog cmd -o fake`) is never
	// mistaken for reclog's own --output.
	rootCmd.Flags().SetInterspersed(false)

	var execErr error
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if opts.Man {
			fmt.Print(manPage)
			return nil
		}
		if err := opts.Validate(args); err != nil {
			execErr = exitstatus.New(exitstatus.Usage, err)
			return execErr
		}
		code, err := execute(opts)
		if err != nil {
			execErr = err
			return err
		}
		execErr = exitstatus.New(code, nil)
		return nil
	}

	if err := rootCmd.Execute(); err != nil {
		if execErr == nil {
			execErr = exitstatus.New(exitstatus.Usage, err)
		}
		fmt.Fprintln(os.Stderr, err)
	}

	var exitErr *exitstatus.Error
	if errors.As(execErr, &exitErr) {
		return exitErr.Code
	}
	return exitstatus.OK
}

// execute runs the full pty-wrapper session for one invocation and
// returns the process exit code the child's fate (or a setup failure)
// implies.
func execute(opts *cliopts.Options) (int, error) {
	logLevel := new(slog.LevelVar)
	logLevel.Set(slog.LevelWarn)
	if opts.Debug {
		logLevel.Set(slog.LevelDebug)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	termState, err := term.Save(os.Stdin)
	if err != nil {
		return exitstatus.System, exitstatus.New(exitstatus.System, err)
	}
	activeTermState = termState
	if term.IsTerminal(os.Stdin) {
		if err := term.SetCanonical(os.Stdin); err != nil {
			logger.Debug("set canonical mode failed", "error", err)
		}
	}

	windowSize := term.PreferredWindowSize(os.Stdin, os.Stdout)

	outputPath, err := outputpath.Resolve(opts.Command[0], opts.Output, opts.Force, opts.Append)
	if !opts.Null && err != nil {
		_ = termState.Restore()
		return exitstatus.System, exitstatus.New(exitstatus.System, err)
	}

	// File and stdout are independently-ordered streams (§4.7), so each
	// gets its own Stamper: sharing one would let a delta-source prefix
	// on one stream measure against the other stream's last line.
	var fileStamper, stdoutStamper *timestamp.Stamper
	if opts.Ts {
		src, err := timestamp.ParseSource(opts.TsSrc)
		if err != nil {
			_ = termState.Restore()
			return exitstatus.Usage, exitstatus.New(exitstatus.Usage, err)
		}
		now := time.Now()
		if fileStamper, err = timestamp.New(src, opts.TsFmt, now); err != nil {
			_ = termState.Restore()
			return exitstatus.Usage, exitstatus.New(exitstatus.Usage, err)
		}
		if stdoutStamper, err = timestamp.New(src, opts.TsFmt, now); err != nil {
			_ = termState.Restore()
			return exitstatus.Usage, exitstatus.New(exitstatus.Usage, err)
		}
	}

	var fileSink outputsink.LineSink
	var outFile *os.File
	if opts.Null {
		fileSink = outputsink.NullSink{}
	} else {
		flags := os.O_CREATE | os.O_WRONLY
		if opts.Append {
			flags |= os.O_APPEND
		} else {
			flags |= os.O_TRUNC
		}
		outFile, err = os.OpenFile(outputPath, flags, 0o644)
		if err != nil {
			_ = termState.Restore()
			return exitstatus.System, exitstatus.New(exitstatus.System, fmt.Errorf("open %q: %w", outputPath, err))
		}
		fileSink = outputsink.NewFileSink(outFile, opts.Raw, fileStamper)
	}

	stdoutSink := outputsink.NewStdoutSink(os.Stdout, stdoutStamper, opts.Silent)

	// --debug doubles as the switch for the trace sidecar: a
	// tracelog-framed copy of every byte each pump moves, for after-the-
	// fact inspection of a session that misbehaved.
	var traceFile *os.File
	var traceWriter io.Writer
	if opts.Debug {
		traceFile, err = os.OpenFile(outputPath+".trace.log", os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			logger.Debug("trace sidecar open failed", "error", err)
		} else {
			traceWriter = traceFile
		}
	}

	if opts.Header {
		header := outputsink.FormatHeader(opts.Command, time.Now())
		if !opts.Silent {
			fmt.Fprint(os.Stdout, header)
		}
		if !opts.Null {
			fmt.Fprint(outFile, header)
		}
	}

	session, err := ptysession.Start(opts.Command, windowSize)
	if err != nil {
		_ = termState.Restore()
		var execError *ptysession.ExecError
		if errors.As(err, &execError) {
			return exitstatus.ExecFailed, exitstatus.New(exitstatus.ExecFailed, err)
		}
		return exitstatus.System, exitstatus.New(exitstatus.System, err)
	}

	sup := supervisor.New(session, os.Stdin, os.Stdout, fileSink, stdoutSink, termState, supervisor.Config{
		QuitDeadline: time.Duration(opts.QuitMs) * time.Millisecond,
		BufferLines:  opts.Buffer,
		Logger:       logger,
		Trace:        traceWriter,
	})

	code := sup.Run()
	if traceFile != nil {
		_ = traceFile.Close()
	}
	return code, nil
}
