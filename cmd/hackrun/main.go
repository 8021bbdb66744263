package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

type runOptions struct {
	maxSteps   int
	ram        string
	key        uint16
	screenshot string
	scale      int
	saveState  string
	resume     string
}

// parseRange parses "lo:hi" into a half-open RAM range.
func parseRange(s string) (lo, hi int, err error) {
	a, b, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: expected lo:hi", s)
	}
	if lo, err = strconv.Atoi(a); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if hi, err = strconv.Atoi(b); err != nil {
		return 0, 0, fmt.Errorf("range %q: %w", s, err)
	}
	if lo < 0 || hi > cpu.RAMSize || lo > hi {
		return 0, 0, fmt.Errorf("range %q outside RAM [0, %d)", s, cpu.RAMSize)
	}
	return lo, hi, nil
}

func run(opts runOptions, args []string, out io.Writer) error {
	vm := cpu.NewCPU()
	switch {
	case opts.resume != "":
		if err := vm.RestoreFromFile(opts.resume); err != nil {
			return fmt.Errorf("resume %s: %w", opts.resume, err)
		}
		glog.V(1).Infof("resumed %s at pc %d after %d steps", opts.resume, vm.PC, vm.Steps)
	case len(args) == 1:
		fullPath, _, err := utils.GetPathInfo(args[0])
		if err != nil {
			return err
		}
		program, err := utils.LoadProgram(fullPath)
		if err != nil {
			return err
		}
		if err := vm.Load(program); err != nil {
			return err
		}
		glog.V(1).Infof("loaded %d words from %s", len(program), fullPath)
	default:
		return errors.New("nothing to run: give a program or --resume")
	}

	var lo, hi int
	if opts.ram != "" {
		var err error
		if lo, hi, err = parseRange(opts.ram); err != nil {
			return err
		}
	}

	vm.SetKey(opts.key)
	halted := vm.Run(opts.maxSteps)

	state := "halted"
	if !halted {
		state = "stopped"
	}
	fmt.Fprintf(out, "%s after %d steps: PC=%d A=%d D=%d\n", state, vm.Steps, vm.PC, vm.A, int16(vm.D))
	for addr := lo; addr < hi; addr++ {
		v := vm.RAM[addr]
		fmt.Fprintf(out, "RAM[%5d] = %6d (0x%04X)\n", addr, int16(v), v)
	}

	if opts.screenshot != "" {
		if err := vm.SaveScreenshot(opts.screenshot, opts.scale); err != nil {
			return fmt.Errorf("screenshot: %w", err)
		}
	}
	if opts.saveState != "" {
		if err := vm.HibernateToFile(opts.saveState); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}
	return nil
}

func newRootCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "hackrun [flags] [program.asm|program.hack]",
		Short: "Run a Hack program headless and print the machine state",
		Long: `Hackrun loads a Hack program, assembling it first when given a .asm file,
and steps it until it halts or the step limit is reached. A program halts
when it enters the canonical (END) @END 0;JMP loop or runs off its end.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.maxSteps, "max-steps", 10_000_000, "stop after this many instructions (0 = no limit)")
	f.StringVar(&opts.ram, "ram", "", "print RAM[lo:hi] after the run, e.g. 0:16")
	f.Uint16Var(&opts.key, "key", 0, "keyboard register value during the run")
	f.StringVar(&opts.screenshot, "screenshot", "", "write the screen to this PNG file")
	f.IntVar(&opts.scale, "scale", 1, "screenshot scale factor")
	f.StringVar(&opts.saveState, "save-state", "", "write a hibernation archive after the run")
	f.StringVar(&opts.resume, "resume", "", "continue from a hibernation archive instead of loading a program")
	cmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	return cmd
}

func main() {
	_ = flag.Set("logtostderr", "true")
	err := newRootCmd().Execute()
	glog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
