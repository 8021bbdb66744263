package asm

import (
	"fmt"
	"io"
)

// Pass identifies which read of the source a callback belongs to.
type Pass uint8

const (
	Pass1 Pass = 1
	Pass2 Pass = 2
)

// Listener observes an assembly run. Callbacks never influence the result.
type Listener interface {
	// Line is called for every physical source line, in both passes.
	Line(pass Pass, line int, raw string, cmd Command)
	// EndOfSource is called when a pass reaches the end of its input.
	EndOfSource(pass Pass)
	// Word is called for every emitted word. label is the label bound to rom,
	// or "".
	Word(rom int, word string, cmd Command, label string)
}

// Listing writes the human readable listings of a run to Out.
type Listing struct {
	Out io.Writer

	Pass1 bool // echo source during pass 1
	Pass2 bool // echo source during pass 2
	Code  bool // annotate every emitted word

	headers [3]bool
}

func (l *Listing) wants(pass Pass) bool {
	return (pass == Pass1 && l.Pass1) || (pass == Pass2 && l.Pass2)
}

func (l *Listing) header(slot int, lines ...string) {
	if l.headers[slot] {
		return
	}
	l.headers[slot] = true
	for _, s := range lines {
		fmt.Fprintln(l.Out, s)
	}
}

func (l *Listing) Line(pass Pass, line int, raw string, cmd Command) {
	if !l.wants(pass) {
		return
	}
	l.header(int(pass), "line#:cmd|        source", "-----:---+-------------------------")
	fmt.Fprintf(l.Out, "%5d: %s |%s\n", line, cmd.Type, raw)
}

func (l *Listing) EndOfSource(pass Pass) {
	if l.wants(pass) {
		fmt.Fprintln(l.Out, "<<EOF>>")
	}
}

func (l *Listing) Word(rom int, word string, cmd Command, label string) {
	if !l.Code {
		return
	}
	l.header(0, "  rom=      binary      | fields", "-----=----------------  +-------------------------")
	if label != "" {
		fmt.Fprintf(l.Out, "%5d=%16s  | label[%s]\n", rom, "", label)
	}
	switch cmd.Type {
	case AddressCommand:
		v, _ := DecodeWord(word)
		out := fmt.Sprintf("%5d=%s  | address[%5d=0x%04x]", rom, word, v, v)
		if !isConstant(cmd.Symbol) {
			out += " @" + cmd.Symbol
		}
		fmt.Fprintln(l.Out, out)
	case ComputeCommand:
		out := fmt.Sprintf("%5d=%s  | comp[%3s] ", rom, word, cmd.Comp)
		if cmd.Dest == "" {
			out += "         "
		} else {
			out += fmt.Sprintf("dest[%3s]", cmd.Dest)
		}
		if cmd.Jump != "" {
			out += fmt.Sprintf(" jump[%3s]", cmd.Jump)
		}
		fmt.Fprintln(l.Out, out)
	}
}

// multiListener fans callbacks out to several listeners.
type multiListener []Listener

func (m multiListener) Line(pass Pass, line int, raw string, cmd Command) {
	for _, l := range m {
		l.Line(pass, line, raw, cmd)
	}
}

func (m multiListener) EndOfSource(pass Pass) {
	for _, l := range m {
		l.EndOfSource(pass)
	}
}

func (m multiListener) Word(rom int, word string, cmd Command, label string) {
	for _, l := range m {
		l.Word(rom, word, cmd, label)
	}
}

// MultiListener returns a Listener that forwards to all of ls.
func MultiListener(ls ...Listener) Listener {
	return multiListener(ls)
}
