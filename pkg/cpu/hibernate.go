package cpu

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// machineState is the JSON part of a hibernation archive.
type machineState struct {
	A          uint16 `json:"a"`
	D          uint16 `json:"d"`
	PC         uint16 `json:"pc"`
	ProgramLen int    `json:"program_len"`
	Halted     bool   `json:"halted"`
	Steps      uint64 `json:"steps"`
}

// HibernateToBytes serialises registers, ROM and RAM into an in-memory ZIP
// archive.
func (c *CPU) HibernateToBytes() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	state := machineState{
		A:          c.A,
		D:          c.D,
		PC:         c.PC,
		ProgramLen: c.ProgramLen,
		Halted:     c.Halted,
		Steps:      c.Steps,
	}
	jsonData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cpu_state: %w", err)
	}
	if err := writeZipEntry(zw, "cpu_state.json", jsonData); err != nil {
		return nil, err
	}

	// only the loaded part of ROM is stored
	if err := writeZipEntry(zw, "rom.bin", uint16SliceToLE(c.ROM[:c.ProgramLen])); err != nil {
		return nil, err
	}
	if err := writeZipEntry(zw, "ram.bin", uint16SliceToLE(c.RAM[:])); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close zip: %w", err)
	}
	return buf.Bytes(), nil
}

// RestoreFromBytes applies an archive produced by HibernateToBytes.
func (c *CPU) RestoreFromBytes(data []byte) error {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}

	fileMap := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		fileMap[f.Name] = f
	}

	jsonData, err := readZipEntry(fileMap, "cpu_state.json")
	if err != nil {
		return err
	}
	var state machineState
	if err := json.Unmarshal(jsonData, &state); err != nil {
		return fmt.Errorf("unmarshal cpu_state: %w", err)
	}
	if state.ProgramLen < 0 || state.ProgramLen > ROMSize {
		return fmt.Errorf("cpu_state: program length %d out of range", state.ProgramLen)
	}

	rom, err := readZipEntry(fileMap, "rom.bin")
	if err != nil {
		return err
	}
	if len(rom) != state.ProgramLen*2 {
		return fmt.Errorf("rom.bin: %d bytes for %d words", len(rom), state.ProgramLen)
	}

	ram, err := readZipEntry(fileMap, "ram.bin")
	if err != nil {
		return err
	}
	if len(ram) != RAMSize*2 {
		return fmt.Errorf("ram.bin: %d bytes, want %d", len(ram), RAMSize*2)
	}

	c.ROM = [ROMSize]uint16{}
	leToUint16Slice(rom, c.ROM[:state.ProgramLen])
	leToUint16Slice(ram, c.RAM[:])

	c.A = state.A
	c.D = state.D
	c.PC = state.PC
	c.ProgramLen = state.ProgramLen
	c.Halted = state.Halted
	c.Steps = state.Steps
	return nil
}

func (c *CPU) HibernateToFile(path string) error {
	data, err := c.HibernateToBytes()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *CPU) RestoreFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.RestoreFromBytes(data)
}

func writeZipEntry(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %q: %w", name, err)
	}
	_, err = w.Write(data)
	return err
}

func readZipEntry(fileMap map[string]*zip.File, name string) ([]byte, error) {
	f, ok := fileMap[name]
	if !ok {
		return nil, fmt.Errorf("zip entry %q not found", name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open zip entry %q: %w", name, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func uint16SliceToLE(src []uint16) []byte {
	out := make([]byte, len(src)*2)
	for i, v := range src {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func leToUint16Slice(src []byte, dst []uint16) {
	for i := range dst {
		if i*2+1 < len(src) {
			dst[i] = binary.LittleEndian.Uint16(src[i*2:])
		}
	}
}
