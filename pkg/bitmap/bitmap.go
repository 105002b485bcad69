package bitmap

import (
	"image"
	"image/color"
	"image/draw"
)

// Channel indexes used when addressing a single colour component of a Pixel.
const (
	Red = iota
	Green
	Blue

	// Channels is the number of colour components carried by a Pixel.
	Channels = 3
)

// Pixel is one 24-bit sample. Alpha is not carried by the container.
type Pixel struct {
	R, G, B uint8
}

// Channel returns the value of colour component c.
func (p Pixel) Channel(c int) uint8 {
	switch c {
	case Red:
		return p.R
	case Green:
		return p.G
	default:
		return p.B
	}
}

// SetChannel overwrites colour component c.
func (p *Pixel) SetChannel(c int, v uint8) {
	switch c {
	case Red:
		p.R = v
	case Green:
		p.G = v
	default:
		p.B = v
	}
}

// Image is a width x height grid of pixels stored row-major, top row first.
type Image struct {
	Width  int
	Height int
	Pix    []Pixel
}

// New allocates a black image of the given size.
func New(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]Pixel, width*height),
	}
}

// At returns the pixel at (x, y).
func (m *Image) At(x, y int) Pixel {
	return m.Pix[y*m.Width+x]
}

// Set stores p at (x, y).
func (m *Image) Set(x, y int, p Pixel) {
	m.Pix[y*m.Width+x] = p
}

// Clone returns a deep copy that can be mutated without touching m.
func (m *Image) Clone() *Image {
	out := &Image{
		Width:  m.Width,
		Height: m.Height,
		Pix:    make([]Pixel, len(m.Pix)),
	}
	copy(out.Pix, m.Pix)
	return out
}

// FromImage converts any image.Image into an Image, dropping alpha.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, src, bounds.Min, draw.Src)
	}

	out := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			off := rgba.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
			out.Pix[y*out.Width+x] = Pixel{
				R: rgba.Pix[off],
				G: rgba.Pix[off+1],
				B: rgba.Pix[off+2],
			}
		}
	}
	return out
}

// RGBA converts m into an opaque *image.RGBA.
func (m *Image) RGBA() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, m.Width, m.Height))
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			p := m.Pix[y*m.Width+x]
			out.SetRGBA(x, y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}
	return out
}
