package cpu

import (
	"fmt"

	"github.com/golang/glog"
)

const (
	ROMSize = 1 << 15

	ScreenBase   uint16 = 0x4000
	ScreenWords         = 8192
	KeyboardAddr uint16 = 0x6000

	// RAMSize covers data memory, the screen map and the keyboard register.
	RAMSize = int(KeyboardAddr) + 1
)

// ALU control bits as they appear in bits 11..6 of a compute instruction.
const (
	ctlZX uint16 = 1 << 5
	ctlNX uint16 = 1 << 4
	ctlZY uint16 = 1 << 3
	ctlNY uint16 = 1 << 2
	ctlF  uint16 = 1 << 1
	ctlNO uint16 = 1 << 0
)

// Destination bits.
const (
	destM uint16 = 1 << 0
	destD uint16 = 1 << 1
	destA uint16 = 1 << 2
)

// Jump condition bits.
const (
	jumpGT uint16 = 1 << 0
	jumpEQ uint16 = 1 << 1
	jumpLT uint16 = 1 << 2
)

type CPU struct {
	ROM [ROMSize]uint16
	RAM [RAMSize]uint16

	A  uint16
	D  uint16
	PC uint16

	// ProgramLen is the number of words loaded into ROM. Leaving
	// [0, ProgramLen) halts the machine.
	ProgramLen int

	Halted bool
	Steps  uint64
}

func NewCPU() *CPU {
	return &CPU{}
}

// Load copies program into ROM starting at address 0 and resets the registers.
func (c *CPU) Load(program []uint16) error {
	if len(program) > ROMSize {
		return fmt.Errorf("program has %d words, ROM holds %d", len(program), ROMSize)
	}
	c.ROM = [ROMSize]uint16{}
	copy(c.ROM[:], program)
	c.ProgramLen = len(program)
	c.Reset()
	return nil
}

// Reset clears the registers and the halt flag. Memory is left alone.
func (c *CPU) Reset() {
	c.A, c.D, c.PC = 0, 0, 0
	c.Halted = false
	c.Steps = 0
}

func (c *CPU) ReadMem(addr uint16) uint16 {
	if int(addr) >= RAMSize {
		return 0
	}
	return c.RAM[addr]
}

// WriteMem stores val at addr. The keyboard register and addresses past it
// are read-only.
func (c *CPU) WriteMem(addr uint16, val uint16) {
	if addr >= KeyboardAddr {
		return
	}
	c.RAM[addr] = val
}

// SetKey sets the keyboard register; 0 means no key is pressed.
func (c *CPU) SetKey(code uint16) {
	c.RAM[KeyboardAddr] = code
}

// ALU computes the Hack ALU function selected by the six control bits.
func ALU(x, y, ctl uint16) uint16 {
	if ctl&ctlZX != 0 {
		x = 0
	}
	if ctl&ctlNX != 0 {
		x = ^x
	}
	if ctl&ctlZY != 0 {
		y = 0
	}
	if ctl&ctlNY != 0 {
		y = ^y
	}
	var out uint16
	if ctl&ctlF != 0 {
		out = x + y
	} else {
		out = x & y
	}
	if ctl&ctlNO != 0 {
		out = ^out
	}
	return out
}

func jumps(cond, out uint16) bool {
	v := int16(out)
	return (cond&jumpLT != 0 && v < 0) ||
		(cond&jumpEQ != 0 && v == 0) ||
		(cond&jumpGT != 0 && v > 0)
}

func (c *CPU) Step() {
	if c.Halted {
		return
	}
	if int(c.PC) >= c.ProgramLen {
		glog.V(1).Infof("cpu: pc %d left the program after %d steps", c.PC, c.Steps)
		c.Halted = true
		return
	}

	instr := c.ROM[c.PC]
	c.Steps++

	if instr&0x8000 == 0 {
		c.A = instr
		c.PC++
		return
	}

	y := c.A
	if instr&0x1000 != 0 {
		y = c.ReadMem(c.A)
	}
	out := ALU(c.D, y, (instr>>6)&0x3F)
	dest := (instr >> 3) & 0x7
	cond := instr & 0x7

	addr := c.A
	if dest&destM != 0 {
		c.WriteMem(addr, out)
	}
	if dest&destA != 0 {
		c.A = out
	}
	if dest&destD != 0 {
		c.D = out
	}

	if !jumps(cond, out) {
		c.PC++
		return
	}
	if c.isHaltLoop(cond) {
		glog.V(1).Infof("cpu: halt loop at %d after %d steps", c.PC, c.Steps)
		c.Halted = true
	}
	c.PC = c.A
}

// isHaltLoop reports whether the unconditional jump at PC spins forever:
// either a jump to itself or the @X / 0;JMP pair at X.
func (c *CPU) isHaltLoop(cond uint16) bool {
	if cond != jumpGT|jumpEQ|jumpLT {
		return false
	}
	if c.A == c.PC {
		return true
	}
	return c.PC > 0 && c.A == c.PC-1 && c.ROM[c.A] == c.A
}

// Run steps until the machine halts or maxSteps instructions have executed.
// maxSteps <= 0 means no limit. It reports whether the machine halted.
func (c *CPU) Run(maxSteps int) bool {
	for n := 0; !c.Halted; n++ {
		if maxSteps > 0 && n >= maxSteps {
			return false
		}
		c.Step()
	}
	return true
}
