package asm

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
)

// CommandType is the syntactic class of one source line.
type CommandType uint8

const (
	EmptyCommand CommandType = iota
	AddressCommand
	ComputeCommand
	LabelCommand
)

// String returns the one-character key used in listings.
func (t CommandType) String() string {
	switch t {
	case AddressCommand:
		return "A"
	case ComputeCommand:
		return "C"
	case LabelCommand:
		return ":"
	default:
		return "#"
	}
}

// Command is one classified source line. Symbol is set for address and label
// commands, Dest/Comp/Jump for compute commands.
type Command struct {
	Type CommandType
	// Text is the line with its comment and surrounding blanks removed.
	Text   string
	Symbol string
	Dest   string
	Comp   string
	Jump   string
}

// Classify turns a raw source line into a Command. Only the first character
// decides the class; anything not starting with '@' or '(' is a compute
// command and is validated later, when its fields are encoded.
func Classify(raw string) Command {
	text, _, _ := strings.Cut(raw, "//")
	text = strings.TrimSpace(text)
	cmd := Command{Text: text}

	switch {
	case text == "":
		cmd.Type = EmptyCommand
	case text[0] == '@':
		cmd.Type = AddressCommand
		cmd.Symbol = text[1:]
	case text[0] == '(':
		cmd.Type = LabelCommand
		if closing := strings.LastIndexByte(text, ')'); closing > 0 {
			cmd.Symbol = text[1:closing]
		} else {
			cmd.Symbol = text[1:]
		}
	default:
		cmd.Type = ComputeCommand
		left, jump, _ := strings.Cut(text, ";")
		dest, comp, found := strings.Cut(left, "=")
		if !found {
			dest, comp = "", left
		}
		cmd.Dest = strings.TrimSpace(dest)
		cmd.Comp = strings.TrimSpace(comp)
		cmd.Jump = strings.TrimSpace(jump)
	}
	return cmd
}

// closedLabel reports whether a label command ends with its ')'.
func (c Command) closedLabel() bool {
	return strings.HasSuffix(c.Text, ")")
}

const maxLineLength = 1 << 20

// Reader yields one Command per physical line of its input.
type Reader struct {
	scanner *bufio.Scanner
	line    int
	raw     string
	cmd     Command
}

func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	return &Reader{scanner: scanner}
}

// Scan advances to the next line. It returns false at end of input or on a
// read error, which Err then reports.
func (r *Reader) Scan() bool {
	if !r.scanner.Scan() {
		return false
	}
	r.line++
	r.raw = r.scanner.Text()
	r.cmd = Classify(r.raw)
	return true
}

func (r *Reader) Command() Command { return r.cmd }

// Line is the 1-based number of the line last returned by Scan.
func (r *Reader) Line() int { return r.line }

// Text is the unmodified line last returned by Scan.
func (r *Reader) Text() string { return r.raw }

func (r *Reader) Err() error { return r.scanner.Err() }

// Source is assembly input that can be read from the start more than once.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource opens the named file afresh for every pass.
type FileSource string

func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// BytesSource replays an in-memory copy of the input.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}
