package asm

import (
	"errors"
	"fmt"
	"math"
)

const (
	// FirstVariableAddress is the first RAM slot handed out to variables.
	FirstVariableAddress = 16
	// LastVariableAddress is the last RAM slot below the screen map.
	LastVariableAddress = 0x4000 - 1

	// MaxLiteral is the largest value an address instruction can carry.
	MaxLiteral = 1<<15 - 1
	// ROMSize is the number of instruction slots.
	ROMSize = 1 << 15
)

// Space says which memory an Address points into.
type Space uint8

const (
	Unresolved Space = iota
	RAM
	ROM
)

func (s Space) String() string {
	switch s {
	case RAM:
		return "RAM"
	case ROM:
		return "ROM"
	default:
		return "???"
	}
}

// Address is a symbol binding: a RAM or ROM address, or nothing yet.
type Address struct {
	Space Space
	Value uint16
}

// unresolvedEncoding marks "declared, no address yet" in the legacy
// single-integer encoding.
const unresolvedEncoding = math.MinInt32

// Encoded returns the legacy single-integer form of the address:
// RAM addresses as themselves, ROM addresses as -(rom+1).
func (a Address) Encoded() int32 {
	switch a.Space {
	case RAM:
		return int32(a.Value)
	case ROM:
		return -(int32(a.Value) + 1)
	default:
		return unresolvedEncoding
	}
}

// DecodeAddress is the inverse of Address.Encoded.
func DecodeAddress(v int32) Address {
	switch {
	case v == unresolvedEncoding:
		return Address{}
	case v < 0:
		return Address{Space: ROM, Value: uint16(-(v + 1))}
	default:
		return Address{Space: RAM, Value: uint16(v)}
	}
}

// Entry is one row of the symbol table.
type Entry struct {
	Name       string
	Address    Address
	Predefined bool
	// Line is where the symbol was first seen; 0 for predefined symbols.
	Line int
}

// LabelIndex maps ROM addresses back to a label bound there.
type LabelIndex map[uint16]string

var predefinedSymbols = []Entry{
	{Name: "SP", Address: Address{RAM, 0}},
	{Name: "LCL", Address: Address{RAM, 1}},
	{Name: "ARG", Address: Address{RAM, 2}},
	{Name: "THIS", Address: Address{RAM, 3}},
	{Name: "THAT", Address: Address{RAM, 4}},
	{Name: "SCREEN", Address: Address{RAM, 0x4000}},
	{Name: "KBD", Address: Address{RAM, 0x6000}},
}

func init() {
	for reg := 0; reg < 16; reg++ {
		predefinedSymbols = append(predefinedSymbols, Entry{
			Name:    fmt.Sprintf("R%d", reg),
			Address: Address{RAM, uint16(reg)},
		})
	}
	for i := range predefinedSymbols {
		predefinedSymbols[i].Predefined = true
	}
}

// SymbolTable holds predefined symbols, labels and variables of one run.
// Entries keep their insertion order, which is the order variables are
// given RAM addresses in.
type SymbolTable struct {
	entries  []Entry
	index    map[string]int
	resolved bool
}

func NewSymbolTable() *SymbolTable {
	t := &SymbolTable{
		entries: make([]Entry, 0, len(predefinedSymbols)),
		index:   make(map[string]int, len(predefinedSymbols)),
	}
	for _, e := range predefinedSymbols {
		t.insert(e)
	}
	return t
}

func (t *SymbolTable) insert(e Entry) {
	t.index[e.Name] = len(t.entries)
	t.entries = append(t.entries, e)
}

// DeclareOperand records a symbol used as an address operand. Existing
// bindings are left alone.
func (t *SymbolTable) DeclareOperand(name string, line int) {
	if _, ok := t.index[name]; ok {
		return
	}
	t.insert(Entry{Name: name, Line: line})
}

// DeclareLabel binds name to the ROM address rom. Binding a name that already
// has a different address fails with ErrDuplicateSymbol.
func (t *SymbolTable) DeclareLabel(name string, rom int, line int) error {
	addr := Address{Space: ROM, Value: uint16(rom)}
	i, ok := t.index[name]
	if !ok {
		t.insert(Entry{Name: name, Address: addr, Line: line})
		return nil
	}
	e := &t.entries[i]
	switch {
	case e.Address.Space == Unresolved:
		e.Address = addr
		return nil
	case e.Address == addr:
		return nil
	default:
		return newError(ErrDuplicateSymbol, "%s", name)
	}
}

// ResolveVariables gives every still-unresolved symbol the next free RAM
// address, starting at FirstVariableAddress, and returns the reverse index of
// all labels.
func (t *SymbolTable) ResolveVariables() (LabelIndex, error) {
	if t.resolved {
		return nil, errors.New("symbol table already resolved")
	}
	t.resolved = true

	labels := make(LabelIndex)
	next := FirstVariableAddress
	for i := range t.entries {
		e := &t.entries[i]
		switch e.Address.Space {
		case Unresolved:
			if next > LastVariableAddress {
				return nil, &Error{Kind: ErrOutOfDataMemory, Line: e.Line, Detail: e.Name}
			}
			e.Address = Address{Space: RAM, Value: uint16(next)}
			next++
		case ROM:
			labels[e.Address.Value] = e.Name
		}
	}
	return labels, nil
}

// AddressOf returns the plain address bound to name, whichever memory it is in.
func (t *SymbolTable) AddressOf(name string) (uint16, error) {
	i, ok := t.index[name]
	if !ok || t.entries[i].Address.Space == Unresolved {
		return 0, newError(ErrUndefinedSymbol, "%s", name)
	}
	return t.entries[i].Address.Value, nil
}

func (t *SymbolTable) Lookup(name string) (Entry, bool) {
	i, ok := t.index[name]
	if !ok {
		return Entry{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the table in insertion order.
func (t *SymbolTable) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

func (t *SymbolTable) Len() int { return len(t.entries) }
