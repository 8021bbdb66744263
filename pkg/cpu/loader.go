package cpu

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseHack reads Hack machine code: one word per line written as sixteen
// '0'/'1' characters. Blank lines are skipped.
func ParseHack(r io.Reader) ([]uint16, error) {
	var words []uint16
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if len(text) != 16 {
			return nil, fmt.Errorf("line %d: word %q is not 16 bits", line, text)
		}
		v, err := strconv.ParseUint(text, 2, 16)
		if err != nil {
			return nil, fmt.Errorf("line %d: word %q is not binary", line, text)
		}
		if len(words) == ROMSize {
			return nil, fmt.Errorf("line %d: program exceeds %d words", line, ROMSize)
		}
		words = append(words, uint16(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	return words, nil
}
