package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"hackasm/pkg/asm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestGetPathInfo(t *testing.T) {
	full, parent, err := GetPathInfo("a/b/../c.asm")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(full) || filepath.Base(full) != "c.asm" {
		t.Errorf("full path: got %q", full)
	}
	if filepath.Base(parent) != "a" {
		t.Errorf("parent dir: got %q", parent)
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "Add.asm", "@1\n")
	wrongExt := writeFile(t, dir, "Add.txt", "@1\n")

	if err := CheckSource(good); err != nil {
		t.Errorf("CheckSource(%q): %v", good, err)
	}
	if err := CheckSource(wrongExt); err == nil {
		t.Error("expected error for wrong extension")
	}
	if err := CheckSource(filepath.Join(dir, "Missing.asm")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOutputPath(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Max.asm", "@1\n")
	out := t.TempDir()

	tests := []struct {
		name    string
		outDir  string
		want    string
		wantErr bool
	}{
		{"SourceDir", "", filepath.Join(dir, "Max.hack"), false},
		{"OutputDir", out, filepath.Join(out, "Max.hack"), false},
		{"NotADir", src, "", true},
		{"Missing", filepath.Join(dir, "nope"), "", true},
	}
	for _, tc := range tests {
		got, err := OutputPath(src, tc.outDir)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tc.name, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestLoadProgram(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Two.asm", "@2\nD=A\n")
	bin := writeFile(t, dir, "Two.hack", "0000000000000010\n1110110000010000\n")

	for _, path := range []string{src, bin} {
		words, err := LoadProgram(path)
		if err != nil {
			t.Fatalf("LoadProgram(%s): %v", filepath.Base(path), err)
		}
		if len(words) != 2 || words[0] != 2 || words[1] != 0xEC10 {
			t.Errorf("LoadProgram(%s) = %04X", filepath.Base(path), words)
		}
	}

	broken := writeFile(t, dir, "Bad.asm", "@1\nD=Q\n")
	if _, err := LoadProgram(broken); !errors.Is(err, asm.ErrUnrecognizedMnemonic) {
		t.Errorf("expected ErrUnrecognizedMnemonic, got %v", err)
	}
	if _, err := LoadProgram(writeFile(t, dir, "x.bin", "")); err == nil {
		t.Error("expected error for unknown extension")
	}
}
