package asm

import (
	"strconv"
	"strings"
)

// compCodes maps comp mnemonics to the a bit followed by c1..c6.
var compCodes = map[string]string{
	"0":   "0101010",
	"1":   "0111111",
	"-1":  "0111010",
	"D":   "0001100",
	"A":   "0110000",
	"!D":  "0001101",
	"!A":  "0110001",
	"-D":  "0001111",
	"-A":  "0110011",
	"D+1": "0011111",
	"A+1": "0110111",
	"D-1": "0001110",
	"A-1": "0110010",
	"D+A": "0000010",
	"D-A": "0010011",
	"A-D": "0000111",
	"D&A": "0000000",
	"D|A": "0010101",
	"M":   "1110000",
	"!M":  "1110001",
	"-M":  "1110011",
	"M+1": "1110111",
	"M-1": "1110010",
	"D+M": "1000010",
	"D-M": "1010011",
	"M-D": "1000111",
	"D&M": "1000000",
	"D|M": "1010101",
}

// DestMnemonics and JumpMnemonics are indexed by their 3-bit code.
var (
	DestMnemonics = [8]string{"", "M", "D", "MD", "A", "AM", "AD", "AMD"}
	JumpMnemonics = [8]string{"", "JGT", "JEQ", "JGE", "JLT", "JNE", "JLE", "JMP"}
)

var (
	compMnemonics = invert(compCodes)
	destCodes     = indexOf(DestMnemonics)
	jumpCodes     = indexOf(JumpMnemonics)
)

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func indexOf(names [8]string) map[string]string {
	out := make(map[string]string, len(names))
	for code, name := range names {
		out[name] = bits(uint16(code), 3)
	}
	return out
}

// bits renders the low n bits of v, most significant first.
func bits(v uint16, n int) string {
	var b strings.Builder
	b.Grow(n)
	for mask := uint16(1) << (n - 1); mask != 0; mask >>= 1 {
		if v&mask == 0 {
			b.WriteByte('0')
		} else {
			b.WriteByte('1')
		}
	}
	return b.String()
}

// EncodeComp returns the 7 bits (a c1..c6) for a comp mnemonic.
func EncodeComp(mnemonic string) (string, error) {
	code, ok := compCodes[mnemonic]
	if !ok {
		return "", newError(ErrUnrecognizedMnemonic, "comp %q", mnemonic)
	}
	return code, nil
}

// EncodeDest returns the 3 bits (A D M) for a dest mnemonic.
func EncodeDest(mnemonic string) (string, error) {
	code, ok := destCodes[mnemonic]
	if !ok {
		return "", newError(ErrUnrecognizedMnemonic, "dest %q", mnemonic)
	}
	return code, nil
}

// EncodeJump returns the 3 bits (lt eq gt) for a jump mnemonic.
func EncodeJump(mnemonic string) (string, error) {
	code, ok := jumpCodes[mnemonic]
	if !ok {
		return "", newError(ErrUnrecognizedMnemonic, "jump %q", mnemonic)
	}
	return code, nil
}

// EncodeAddress renders an address instruction. value must already be known
// to fit in 15 bits.
func EncodeAddress(value uint16) string {
	return "0" + bits(value, 15)
}

// EncodeCompute renders a compute instruction from its three fields.
func EncodeCompute(dest, comp, jump string) (string, error) {
	c, err := EncodeComp(comp)
	if err != nil {
		return "", err
	}
	d, err := EncodeDest(dest)
	if err != nil {
		return "", err
	}
	j, err := EncodeJump(jump)
	if err != nil {
		return "", err
	}
	return "111" + c + d + j, nil
}

func DecodeComp(code string) (string, bool) {
	m, ok := compMnemonics[code]
	return m, ok
}

func DecodeDest(code string) (string, bool) { return decodeField(code, DestMnemonics) }

func DecodeJump(code string) (string, bool) { return decodeField(code, JumpMnemonics) }

func decodeField(code string, names [8]string) (string, bool) {
	if len(code) != 3 {
		return "", false
	}
	v, err := strconv.ParseUint(code, 2, 3)
	if err != nil {
		return "", false
	}
	return names[v], true
}

// DecodeWord parses a 16-character word. ok is false if it is not made of
// exactly 16 binary digits.
func DecodeWord(word string) (value uint16, ok bool) {
	if len(word) != 16 {
		return 0, false
	}
	v, err := strconv.ParseUint(word, 2, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}

// DecodeInstruction turns an emitted word back into assembly text.
func DecodeInstruction(word string) (string, bool) {
	if _, ok := DecodeWord(word); !ok {
		return "", false
	}
	if word[0] == '0' {
		v, _ := DecodeWord(word)
		return "@" + strconv.Itoa(int(v)), true
	}
	if word[:3] != "111" {
		return "", false
	}
	comp, ok := DecodeComp(word[3:10])
	if !ok {
		return "", false
	}
	dest, _ := DecodeDest(word[10:13])
	jump, _ := DecodeJump(word[13:16])

	text := comp
	if dest != "" {
		text = dest + "=" + text
	}
	if jump != "" {
		text += ";" + jump
	}
	return text, true
}
