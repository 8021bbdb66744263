package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hackasm/pkg/asm"
	"hackasm/pkg/utils"
)

type options struct {
	code          bool
	pass1         bool
	pass2         bool
	symbols       bool
	systemSymbols bool
	paths         bool
	trace         bool
}

// usageError marks a bad command line, as opposed to a failed assembly.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "hackasm [flags] file.asm [output-dir]",
		Short: "Assemble Hack assembly code into a Hack binary",
		Long: `Hackasm generates a Hack binary file from a Hack assembly code file.

The assembly file must end with extension '.asm'. The binary gets the same
name with extension '.hack' and is placed in output-dir, which defaults to
the directory of the assembly file. Listings and symbol dumps go to stdout.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := ""
			if len(args) == 2 {
				outDir = args[1]
			}
			return run(opts, args[0], outDir, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	f := cmd.Flags()
	f.BoolVarP(&opts.code, "code", "c", false, "list the generated code of the hack-file")
	f.BoolVarP(&opts.pass1, "pass1", "1", false, "list the asm-file in pass 1")
	f.BoolVarP(&opts.pass2, "pass2", "2", false, "list the asm-file in pass 2")
	f.BoolVarP(&opts.symbols, "symbols", "u", false, "dump user-defined symbols")
	f.BoolVarP(&opts.systemSymbols, "system-symbols", "s", false, "dump system-defined symbols (implies -u)")
	f.BoolVarP(&opts.paths, "paths", "p", false, "show the pathnames of the asm-file and hack-file")
	f.BoolVar(&opts.trace, "trace", false, "pretty-print every classified command and the symbol table to stderr")

	// glog registers -v, -vmodule, -logtostderr and friends on the default set
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func run(opts options, src, outDir string, stdout, stderr io.Writer) error {
	if err := utils.CheckSource(src); err != nil {
		return usageError{err}
	}
	dst, err := utils.OutputPath(src, outDir)
	if err != nil {
		return usageError{err}
	}
	if opts.paths {
		full, _, _ := utils.GetPathInfo(src)
		glog.Infof("asm-file: %s", full)
		glog.Infof("hack-file: %s", dst)
	}

	color := isTerminal(stderr)
	listeners := []asm.Listener{
		&asm.Listing{Out: stdout, Pass1: opts.pass1, Pass2: opts.pass2, Code: opts.code},
	}
	if opts.trace {
		listeners = append(listeners, newTracer(stderr, color))
	}

	a := asm.NewAssembler(asm.Options{
		Listener: asm.MultiListener(listeners...),
		AfterPass1: func(t *asm.SymbolTable) {
			if opts.symbols || opts.systemSymbols {
				t.Dump(stdout, opts.systemSymbols)
			}
			if opts.trace {
				if err := t.DebugDump(stderr, color); err != nil {
					glog.Warningf("trace: %v", err)
				}
			}
		},
	})

	var code bytes.Buffer
	res, err := a.Assemble(asm.FileSource(src), &code)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, code.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	glog.V(1).Infof("assembled %d words -> %s", res.Words, dst)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// tracer pretty-prints every pass-1 command.
type tracer struct {
	out     io.Writer
	printer *pp.PrettyPrinter
}

func newTracer(out io.Writer, color bool) *tracer {
	printer := pp.New()
	printer.SetColoringEnabled(color)
	return &tracer{out: out, printer: printer}
}

func (t *tracer) Line(pass asm.Pass, line int, _ string, cmd asm.Command) {
	if pass != asm.Pass1 || cmd.Type == asm.EmptyCommand {
		return
	}
	t.printer.Fprintf(t.out, "%d: %v\n", line, cmd)
}

func (t *tracer) EndOfSource(asm.Pass) {}

func (t *tracer) Word(int, string, asm.Command, string) {}

// exitCode maps an error returned by the root command to a process status.
func exitCode(err error) int {
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue):
		return 2
	default:
		return 1
	}
}
