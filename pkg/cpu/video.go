package cpu

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"hackasm/pkg/grid"
)

const (
	ScreenWidth  = 512
	ScreenHeight = 256

	wordsPerRow = ScreenWidth / 16
)

// Pixel reports whether the screen pixel at (x, y) is set. Bit 0 of each
// screen word is its leftmost pixel.
func (c *CPU) Pixel(x, y int) bool {
	if x < 0 || x >= ScreenWidth || y < 0 || y >= ScreenHeight {
		return false
	}
	word := c.RAM[int(ScreenBase)+y*wordsPerRow+x/16]
	return word&(1<<(x%16)) != 0
}

// FramebufferRGBA decodes the screen map into a 512x256 RGBA8888 byte slice.
// Set pixels are black, clear pixels white.
func (c *CPU) FramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := 0; i < ScreenWords; i++ {
		word := c.RAM[int(ScreenBase)+i]
		col, row := grid.GetGridCoords(i, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			var v byte = 0xFF
			if word&(1<<bit) != 0 {
				v = 0x00
			}
			p := (row*ScreenWidth + col*16 + bit) * 4
			pixels[p+0] = v
			pixels[p+1] = v
			pixels[p+2] = v
			pixels[p+3] = 0xFF
		}
	}
	return pixels
}

// FramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) FramebufferImage() *image.RGBA {
	return &image.RGBA{
		Pix:    c.FramebufferRGBA(),
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// ScaledImage returns the screen enlarged by an integer factor with
// nearest-neighbour sampling.
func (c *CPU) ScaledImage(scale int) *image.RGBA {
	src := c.FramebufferImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, ScreenWidth*scale, ScreenHeight*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveScreenshot encodes the screen, scaled by scale, as a PNG.
func (c *CPU) SaveScreenshot(filename string, scale int) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := png.Encode(f, c.ScaledImage(scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return f.Close()
}
