// Package asm translates Hack assembly into Hack machine code, one line of
// sixteen '0'/'1' characters per instruction.
package asm

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/golang/glog"
)

var (
	constantPattern = regexp.MustCompile(`^[0-9]+$`)
	symbolPattern   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.$:]*$`)
)

func isConstant(s string) bool { return constantPattern.MatchString(s) }

func isSymbol(s string) bool { return symbolPattern.MatchString(s) }

// State is the phase an Assembler is in.
type State uint8

const (
	StateIdle State = iota
	StatePass1
	StateResolvingSymbols
	StatePass2
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePass1:
		return "pass1"
	case StateResolvingSymbols:
		return "resolving"
	case StatePass2:
		return "pass2"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Options configure an Assembler.
type Options struct {
	// Listener, if set, observes both passes.
	Listener Listener
	// AfterPass1 is called once the symbol table is resolved, before any
	// word is emitted.
	AfterPass1 func(*SymbolTable)
}

// Result describes a successful run.
type Result struct {
	Words   int
	Labels  LabelIndex
	Symbols *SymbolTable
}

// Assembler runs a single assembly. It owns its symbol table and counters;
// separate Assemblers share nothing.
type Assembler struct {
	opts    Options
	state   State
	symbols *SymbolTable
	labels  LabelIndex
	rom     int
	words   int
}

func NewAssembler(opts Options) *Assembler {
	return &Assembler{
		opts:    opts,
		symbols: NewSymbolTable(),
	}
}

// Assemble reads r once, then assembles it into w.
func Assemble(r io.Reader, w io.Writer) (*Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	return NewAssembler(Options{}).Assemble(BytesSource(src), w)
}

func (a *Assembler) State() State { return a.state }

func (a *Assembler) Symbols() *SymbolTable { return a.symbols }

func (a *Assembler) setState(s State) {
	glog.V(2).Infof("asm: %v -> %v", a.state, s)
	a.state = s
}

// Assemble runs both passes over src and writes the words to out. An
// Assembler can only be used once.
func (a *Assembler) Assemble(src Source, out io.Writer) (*Result, error) {
	if a.state != StateIdle {
		return nil, fmt.Errorf("assembler already used (state %v)", a.state)
	}

	a.setState(StatePass1)
	if err := a.pass1(src); err != nil {
		return nil, a.fail(err)
	}

	a.setState(StateResolvingSymbols)
	labels, err := a.symbols.ResolveVariables()
	if err != nil {
		return nil, a.fail(err)
	}
	a.labels = labels
	glog.V(1).Infof("asm: pass 1 done, %d instructions, %d symbols", a.rom, a.symbols.Len())
	if a.opts.AfterPass1 != nil {
		a.opts.AfterPass1(a.symbols)
	}

	a.setState(StatePass2)
	if err := a.pass2(src, out); err != nil {
		return nil, a.fail(err)
	}

	a.setState(StateDone)
	glog.V(1).Infof("asm: pass 2 done, %d words", a.words)
	return &Result{Words: a.words, Labels: a.labels, Symbols: a.symbols}, nil
}

func (a *Assembler) fail(err error) error {
	a.setState(StateFailed)
	return err
}

func (a *Assembler) listener() Listener {
	if a.opts.Listener == nil {
		return nopListener{}
	}
	return a.opts.Listener
}

func open(src Source) (*Reader, io.Closer, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open source: %w", err)
	}
	return NewReader(rc), rc, nil
}

func (a *Assembler) pass1(src Source) error {
	reader, closer, err := open(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	lst := a.listener()
	for reader.Scan() {
		cmd := reader.Command()
		lst.Line(Pass1, reader.Line(), reader.Text(), cmd)
		if err := a.declare(cmd, reader.Line()); err != nil {
			return atLine(err, reader.Line())
		}
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("read source after line %d: %w", reader.Line(), err)
	}
	lst.EndOfSource(Pass1)
	return nil
}

// declare applies one command to the symbol table and ROM counter.
func (a *Assembler) declare(cmd Command, line int) error {
	switch cmd.Type {
	case AddressCommand:
		if err := a.checkOperand(cmd.Symbol, line); err != nil {
			return err
		}
		return a.occupy()
	case ComputeCommand:
		return a.occupy()
	case LabelCommand:
		if !cmd.closedLabel() || !isSymbol(cmd.Symbol) {
			return newError(ErrInvalidSymbol, "label %q", cmd.Text)
		}
		return a.symbols.DeclareLabel(cmd.Symbol, a.rom, line)
	}
	return nil
}

func (a *Assembler) checkOperand(operand string, line int) error {
	switch {
	case isConstant(operand):
		_, err := parseLiteral(operand)
		return err
	case isSymbol(operand):
		a.symbols.DeclareOperand(operand, line)
		return nil
	default:
		return newError(ErrInvalidSymbol, "%q", operand)
	}
}

func parseLiteral(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v > MaxLiteral {
		return 0, newError(ErrIntegerTooLarge, "%s", s)
	}
	return uint16(v), nil
}

func (a *Assembler) occupy() error {
	if a.rom >= ROMSize {
		return newError(ErrProgramTooLarge, "more than %d instructions", ROMSize)
	}
	a.rom++
	return nil
}

func (a *Assembler) pass2(src Source, out io.Writer) error {
	reader, closer, err := open(src)
	if err != nil {
		return err
	}
	defer closer.Close()

	// nothing reaches out until the whole program has been encoded
	var buf bytes.Buffer
	lst := a.listener()
	for reader.Scan() {
		cmd := reader.Command()
		lst.Line(Pass2, reader.Line(), reader.Text(), cmd)

		word, err := a.encode(cmd)
		if err != nil {
			return atLine(err, reader.Line())
		}
		if word == "" {
			continue
		}
		buf.WriteString(word)
		buf.WriteByte('\n')
		lst.Word(a.words, word, cmd, a.labels[uint16(a.words)])
		a.words++
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("read source after line %d: %w", reader.Line(), err)
	}
	lst.EndOfSource(Pass2)

	if _, err := buf.WriteTo(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// encode returns the word for cmd, or "" for lines that emit nothing.
func (a *Assembler) encode(cmd Command) (string, error) {
	switch cmd.Type {
	case AddressCommand:
		var (
			v   uint16
			err error
		)
		if isConstant(cmd.Symbol) {
			v, err = parseLiteral(cmd.Symbol)
		} else {
			v, err = a.symbols.AddressOf(cmd.Symbol)
		}
		if err != nil {
			return "", err
		}
		if v > MaxLiteral {
			// a label placed after the last ROM slot
			return "", newError(ErrIntegerTooLarge, "%s=%d", cmd.Symbol, v)
		}
		return EncodeAddress(v), nil
	case ComputeCommand:
		return EncodeCompute(cmd.Dest, cmd.Comp, cmd.Jump)
	}
	return "", nil
}

type nopListener struct{}

func (nopListener) Line(Pass, int, string, Command) {}
func (nopListener) EndOfSource(Pass) {}
func (nopListener) Word(int, string, Command, string) {}

// IsAssemblyError reports whether err is a decorated assembly failure rather
// than an I/O problem.
func IsAssemblyError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
