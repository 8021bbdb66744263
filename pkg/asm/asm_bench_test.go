package asm

import (
	"fmt"
	"io"
	"strings"
	"testing"
)

// smallProgram adds R0 and R1 into R2.
const smallProgram = `
    @R0
    D=M
    @R1
    D=D+M
    @R2
    M=D
(END)
    @END
    0;JMP
`

// mediumProgram multiplies R0 by R1 and then blackens the screen row by row.
const mediumProgram = `
// product = R0 * R1
    @R2
    M=0
    @i
    M=0
(MUL)
    @i
    D=M
    @R1
    D=D-M
    @FILL
    D;JGE
    @R0
    D=M
    @R2
    M=D+M
    @i
    M=M+1
    @MUL
    0;JMP

// paint every word of the screen
(FILL)
    @SCREEN
    D=A
    @addr
    M=D
    @8192
    D=A
    @n
    M=D
(PAINT)
    @n
    D=M
    @END
    D;JEQ
    @addr
    A=M
    M=-1
    @addr
    M=M+1
    @n
    M=M-1
    @PAINT
    0;JMP
(END)
    @END
    0;JMP
`

// largeProgram repeats a block with its own labels and variables.
var largeProgram = func() string {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		fmt.Fprintf(&b, "(BLOCK%d)\n", i)
		fmt.Fprintf(&b, "    @var%d\n    M=M+1\n    D=M\n", i)
		fmt.Fprintf(&b, "    @BLOCK%d\n    D;JGT\n", (i+1)%400)
		b.WriteString("    @SP\n    AM=M+1\n    A=A-1\n    M=D\n")
	}
	return b.String()
}()

func benchmarkAssemble(b *testing.B, src string) {
	b.ReportAllocs()
	b.SetBytes(int64(len(src)))
	for i := 0; i < b.N; i++ {
		_, err := Assemble(strings.NewReader(src), io.Discard)
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAssemble_Small(b *testing.B) { benchmarkAssemble(b, smallProgram) }

func BenchmarkAssemble_Medium(b *testing.B) { benchmarkAssemble(b, mediumProgram) }

func BenchmarkAssemble_Large(b *testing.B) { benchmarkAssemble(b, largeProgram) }
