package asm

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestPredefinedSymbols(t *testing.T) {
	tests := []struct {
		name string
		want uint16
	}{
		{"SP", 0},
		{"LCL", 1},
		{"ARG", 2},
		{"THIS", 3},
		{"THAT", 4},
		{"R0", 0},
		{"R7", 7},
		{"R15", 15},
		{"SCREEN", 0x4000},
		{"KBD", 0x6000},
	}
	s := NewSymbolTable()
	for _, tc := range tests {
		got, err := s.AddressOf(tc.name)
		if err != nil {
			t.Errorf("AddressOf(%q): unexpected error %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("AddressOf(%q) = %d; want %d", tc.name, got, tc.want)
		}
	}
	if s.Len() != 23 {
		t.Errorf("expected 23 predefined symbols, got %d", s.Len())
	}
}

func TestAddressEncoding(t *testing.T) {
	tests := []struct {
		addr Address
		want int32
	}{
		{Address{RAM, 0}, 0},
		{Address{RAM, 16}, 16},
		{Address{ROM, 0}, -1},
		{Address{ROM, 32767}, -32768},
		{Address{}, unresolvedEncoding},
	}
	for _, tc := range tests {
		got := tc.addr.Encoded()
		if got != tc.want {
			t.Errorf("%+v.Encoded() = %d; want %d", tc.addr, got, tc.want)
		}
		if back := DecodeAddress(got); back != tc.addr {
			t.Errorf("DecodeAddress(%d) = %+v; want %+v", got, back, tc.addr)
		}
	}
}

func TestDeclareOperandNeverOverwrites(t *testing.T) {
	s := NewSymbolTable()
	if err := s.DeclareLabel("LOOP", 7, 1); err != nil {
		t.Fatalf("DeclareLabel: %v", err)
	}
	s.DeclareOperand("LOOP", 2)
	s.DeclareOperand("R3", 3)

	if got, _ := s.AddressOf("LOOP"); got != 7 {
		t.Errorf("LOOP: expected 7, got %d", got)
	}
	if got, _ := s.AddressOf("R3"); got != 3 {
		t.Errorf("R3: expected 3, got %d", got)
	}
}

func TestDeclareLabel(t *testing.T) {
	t.Run("ForwardReference", func(t *testing.T) {
		s := NewSymbolTable()
		s.DeclareOperand("END", 1)
		if _, err := s.AddressOf("END"); !errors.Is(err, ErrUndefinedSymbol) {
			t.Errorf("unresolved END: expected ErrUndefinedSymbol, got %v", err)
		}
		if err := s.DeclareLabel("END", 4, 5); err != nil {
			t.Fatalf("DeclareLabel over placeholder: %v", err)
		}
		if got, _ := s.AddressOf("END"); got != 4 {
			t.Errorf("END: expected 4, got %d", got)
		}
	})

	t.Run("SameAddressTwice", func(t *testing.T) {
		s := NewSymbolTable()
		if err := s.DeclareLabel("A1", 3, 1); err != nil {
			t.Fatal(err)
		}
		if err := s.DeclareLabel("A1", 3, 2); err != nil {
			t.Errorf("redeclaring at the same address: unexpected error %v", err)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		s := NewSymbolTable()
		if err := s.DeclareLabel("A1", 3, 1); err != nil {
			t.Fatal(err)
		}
		err := s.DeclareLabel("A1", 4, 2)
		if !errors.Is(err, ErrDuplicateSymbol) {
			t.Errorf("expected ErrDuplicateSymbol, got %v", err)
		}
	})

	t.Run("Predefined", func(t *testing.T) {
		s := NewSymbolTable()
		if err := s.DeclareLabel("SCREEN", 0, 1); !errors.Is(err, ErrDuplicateSymbol) {
			t.Errorf("label over predefined: expected ErrDuplicateSymbol, got %v", err)
		}
	})
}

func TestResolveVariables(t *testing.T) {
	s := NewSymbolTable()
	s.DeclareOperand("zeta", 1)
	s.DeclareOperand("alpha", 2)
	if err := s.DeclareLabel("LOOP", 0, 3); err != nil {
		t.Fatal(err)
	}
	if err := s.DeclareLabel("END", 9, 4); err != nil {
		t.Fatal(err)
	}
	s.DeclareOperand("mid", 5)

	labels, err := s.ResolveVariables()
	if err != nil {
		t.Fatalf("ResolveVariables: %v", err)
	}

	// first-declared order, not alphabetical
	want := map[string]uint16{"zeta": 16, "alpha": 17, "mid": 18, "LOOP": 0, "END": 9}
	for name, addr := range want {
		if got, err := s.AddressOf(name); err != nil || got != addr {
			t.Errorf("AddressOf(%q) = %d, %v; want %d", name, got, err, addr)
		}
	}
	if e, _ := s.Lookup("alpha"); e.Address.Space != RAM {
		t.Errorf("alpha: expected RAM, got %v", e.Address.Space)
	}
	if e, _ := s.Lookup("END"); e.Address.Space != ROM {
		t.Errorf("END: expected ROM, got %v", e.Address.Space)
	}

	if len(labels) != 2 || labels[0] != "LOOP" || labels[9] != "END" {
		t.Errorf("label index = %v; want map[0:LOOP 9:END]", labels)
	}

	if _, err := s.ResolveVariables(); err == nil {
		t.Error("second ResolveVariables: expected error")
	}
}

func TestLabelIndexAliases(t *testing.T) {
	s := NewSymbolTable()
	if err := s.DeclareLabel("A", 0, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.DeclareLabel("B", 0, 2); err != nil {
		t.Fatal(err)
	}
	labels, err := s.ResolveVariables()
	if err != nil {
		t.Fatal(err)
	}
	// last declared label wins the reverse index
	if len(labels) != 1 || labels[0] != "B" {
		t.Errorf("expected map[0:B], got %v", labels)
	}
	for _, name := range []string{"A", "B"} {
		if got, err := s.AddressOf(name); err != nil || got != 0 {
			t.Errorf("AddressOf(%q) = %d, %v; want 0", name, got, err)
		}
	}

	res, err := Assemble(strings.NewReader("(A)\n(B)\nD=0\n"), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if res.Labels[0] != "B" {
		t.Errorf("Assemble label index: expected B at 0, got %q", res.Labels[0])
	}
}

func TestResolveVariablesOutOfMemory(t *testing.T) {
	available := LastVariableAddress - FirstVariableAddress + 1

	s := NewSymbolTable()
	for i := 0; i < available; i++ {
		s.DeclareOperand(fmt.Sprintf("v%d", i), i+1)
	}
	if _, err := s.ResolveVariables(); err != nil {
		t.Fatalf("%d variables should fit: %v", available, err)
	}
	if got, _ := s.AddressOf(fmt.Sprintf("v%d", available-1)); got != LastVariableAddress {
		t.Errorf("last variable: expected 0x%04X, got 0x%04X", LastVariableAddress, got)
	}

	s = NewSymbolTable()
	for i := 0; i <= available; i++ {
		s.DeclareOperand(fmt.Sprintf("v%d", i), i+1)
	}
	_, err := s.ResolveVariables()
	if !errors.Is(err, ErrOutOfDataMemory) {
		t.Fatalf("expected ErrOutOfDataMemory, got %v", err)
	}
	var asmErr *Error
	if !errors.As(err, &asmErr) || asmErr.Line != available+1 || asmErr.Detail != fmt.Sprintf("v%d", available) {
		t.Errorf("expected failure on v%d at line %d, got %v", available, available+1, err)
	}
}

func TestAddressOfUnknown(t *testing.T) {
	s := NewSymbolTable()
	if _, err := s.AddressOf("nothing"); !errors.Is(err, ErrUndefinedSymbol) {
		t.Errorf("expected ErrUndefinedSymbol, got %v", err)
	}
}
