// Package imageutil provides the pure Go image plumbing that feeds the
// analogy core: float images, symmetric padding, sliding patch extraction,
// Gaussian pyramids and image IO.
package imageutil

import (
	"image"
	"image/color"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// RGBAImage wraps image.RGBA with convenience methods for pixel access.
type RGBAImage struct {
	*image.RGBA
}

// NewRGBAImage creates a new RGBAImage with the specified dimensions.
func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		RGBA: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// RGBAImageFromImage converts any image.Image to RGBAImage.
func RGBAImageFromImage(img image.Image) *RGBAImage {
	bounds := img.Bounds()
	rgba := NewRGBAImage(bounds.Dx(), bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x-bounds.Min.X, y-bounds.Min.Y, img.At(x, y))
		}
	}
	return rgba
}

// Width returns the image width.
func (img *RGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *RGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *RGBAImage) GetRGB(x, y int) RGB {
	c := img.RGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y).
func (img *RGBAImage) SetRGB(x, y int, c RGB) {
	img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

// FloatImage is a channel-last float64 image. Pixel (row, col) channel ch
// lives at Pix[(row*Width+col)*Channels+ch]. Values produced by the
// converters in this package are in [0, 1].
type FloatImage struct {
	Pix      []float64
	Width    int
	Height   int
	Channels int
}

// NewFloatImage allocates a zeroed FloatImage.
func NewFloatImage(width, height, channels int) *FloatImage {
	return &FloatImage{
		Pix:      make([]float64, width*height*channels),
		Width:    width,
		Height:   height,
		Channels: channels,
	}
}

// Stride is the number of float64 values per image row.
func (img *FloatImage) Stride() int {
	return img.Width * img.Channels
}

// Empty reports whether the image has no pixels.
func (img *FloatImage) Empty() bool {
	return img == nil || img.Width <= 0 || img.Height <= 0 || img.Channels <= 0
}

// At returns channel ch of pixel (row, col).
func (img *FloatImage) At(row, col, ch int) float64 {
	return img.Pix[(row*img.Width+col)*img.Channels+ch]
}

// Set writes channel ch of pixel (row, col).
func (img *FloatImage) Set(row, col, ch int, v float64) {
	img.Pix[(row*img.Width+col)*img.Channels+ch] = v
}

// Pixel returns the channel values of pixel (row, col). The returned slice
// aliases Pix.
func (img *FloatImage) Pixel(row, col int) []float64 {
	off := (row*img.Width + col) * img.Channels
	return img.Pix[off : off+img.Channels]
}

// SetPixel copies v into pixel (row, col).
func (img *FloatImage) SetPixel(row, col int, v []float64) {
	copy(img.Pixel(row, col), v)
}

// Clone creates a deep copy of the image.
func (img *FloatImage) Clone() *FloatImage {
	clone := NewFloatImage(img.Width, img.Height, img.Channels)
	copy(clone.Pix, img.Pix)
	return clone
}

// FloatFromRGBA converts an RGBA image to a 3-channel FloatImage.
func FloatFromRGBA(img *RGBAImage) *FloatImage {
	width, height := img.Width(), img.Height()
	f := NewFloatImage(width, height, 3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := img.RGBAAt(x, y)
			f.Set(y, x, 0, float64(c.R)/255)
			f.Set(y, x, 1, float64(c.G)/255)
			f.Set(y, x, 2, float64(c.B)/255)
		}
	}
	return f
}

// ToRGBA converts a 1- or 3-channel FloatImage back to 8-bit RGBA.
// Single-channel images are replicated into R, G and B.
func (img *FloatImage) ToRGBA() *RGBAImage {
	out := NewRGBAImage(img.Width, img.Height)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			var c RGB
			if img.Channels >= 3 {
				c = RGB{
					R: clampUint8(img.At(y, x, 0) * 255),
					G: clampUint8(img.At(y, x, 1) * 255),
					B: clampUint8(img.At(y, x, 2) * 255),
				}
			} else {
				v := clampUint8(img.At(y, x, 0) * 255)
				c = RGB{R: v, G: v, B: v}
			}
			out.SetRGB(x, y, c)
		}
	}
	return out
}
