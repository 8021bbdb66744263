package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"hackasm/pkg/asm"
	"hackasm/pkg/cpu"
)

const (
	SourceExt = ".asm"
	BinaryExt = ".hack"
)

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// CheckSource verifies that path names a readable assembly file.
func CheckSource(path string) error {
	if !strings.HasSuffix(path, SourceExt) {
		return fmt.Errorf("asm-file (%s) must have a '%s' filename extension", path, SourceExt)
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("unable to find/read asm-file (%s)", path)
	}
	f.Close()
	return nil
}

// OutputPath returns where the binary for src goes: next to src, or in outDir
// when it is not empty. outDir must be an existing directory.
func OutputPath(src, outDir string) (string, error) {
	fullPath, parentDir, err := GetPathInfo(src)
	if err != nil {
		return "", err
	}
	if outDir == "" {
		outDir = parentDir
	}
	info, err := os.Stat(outDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("output-directory (%s) is not a directory", outDir)
	}
	name := strings.TrimSuffix(filepath.Base(fullPath), SourceExt) + BinaryExt
	return filepath.Join(outDir, name), nil
}

// LoadProgram returns the machine words of an assembly or binary file.
// Assembly files are assembled in memory.
func LoadProgram(path string) ([]uint16, error) {
	switch filepath.Ext(path) {
	case SourceExt:
		var out bytes.Buffer
		if _, err := asm.NewAssembler(asm.Options{}).Assemble(asm.FileSource(path), &out); err != nil {
			return nil, fmt.Errorf("assemble %s: %w", path, err)
		}
		return cpu.ParseHack(&out)
	case BinaryExt:
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		words, err := cpu.ParseHack(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return words, nil
	default:
		return nil, fmt.Errorf("%s: expected a %s or %s file", path, SourceExt, BinaryExt)
	}
}
