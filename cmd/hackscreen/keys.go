package main

import "github.com/hajimehoshi/ebiten/v2"

// specialKeys maps non-printing keys to their Hack keyboard codes.
var specialKeys = []struct {
	key  ebiten.Key
	code uint16
}{
	{ebiten.KeyEnter, 128},
	{ebiten.KeyBackspace, 129},
	{ebiten.KeyArrowLeft, 130},
	{ebiten.KeyArrowUp, 131},
	{ebiten.KeyArrowRight, 132},
	{ebiten.KeyArrowDown, 133},
	{ebiten.KeyHome, 134},
	{ebiten.KeyEnd, 135},
	{ebiten.KeyPageUp, 136},
	{ebiten.KeyPageDown, 137},
	{ebiten.KeyInsert, 138},
	{ebiten.KeyDelete, 139},
	{ebiten.KeyEscape, 140},
	{ebiten.KeyF1, 141},
	{ebiten.KeyF2, 142},
	{ebiten.KeyF3, 143},
	{ebiten.KeyF4, 144},
	{ebiten.KeyF5, 145},
	{ebiten.KeyF6, 146},
	{ebiten.KeyF7, 147},
	{ebiten.KeyF8, 148},
	{ebiten.KeyF9, 149},
	{ebiten.KeyF10, 150},
	{ebiten.KeyF11, 151},
	{ebiten.KeyF12, 152},
}

// hackKey returns the keyboard register value for the keys held this frame.
// lastChar is the most recent printable character typed while they were held.
func hackKey(pressed []ebiten.Key, lastChar rune) uint16 {
	if len(pressed) == 0 {
		return 0
	}
	for _, sk := range specialKeys {
		for _, k := range pressed {
			if k == sk.key {
				return sk.code
			}
		}
	}
	if lastChar >= ' ' && lastChar <= '~' {
		return uint16(lastChar)
	}
	return 0
}
