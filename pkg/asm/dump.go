package asm

import (
	"fmt"
	"io"
	"sort"

	"github.com/k0kubun/pp/v3"
)

const sectionSeparator = "========"

// Dump writes the user symbols of t, data first and labels second, each
// section sorted by name. With predefined set the predefined symbols are
// written first as a CONSTANTS section.
func (t *SymbolTable) Dump(w io.Writer, predefined bool) {
	var consts, data, labels []Entry
	for _, e := range t.entries {
		switch {
		case e.Predefined:
			consts = append(consts, e)
		case e.Address.Space == ROM:
			labels = append(labels, e)
		default:
			data = append(data, e)
		}
	}

	if predefined {
		dumpSection(w, "CONSTANTS:", consts)
		fmt.Fprintln(w, sectionSeparator)
	}
	dumpSection(w, "DATA:", data)
	fmt.Fprintln(w, sectionSeparator)
	dumpSection(w, "LABELS:", labels)
}

func dumpSection(w io.Writer, title string, entries []Entry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	fmt.Fprintln(w, title)
	for _, e := range entries {
		fmt.Fprintf(w, "%40s: %3s 0x%04x (%5d)\n", e.Name, e.Address.Space, e.Address.Value, e.Address.Value)
	}
}

// DebugDump pretty-prints the raw table entries in insertion order.
func (t *SymbolTable) DebugDump(w io.Writer, color bool) error {
	printer := pp.New()
	printer.SetColoringEnabled(color)
	_, err := printer.Fprintln(w, t.Entries())
	return err
}
