package imageutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Kernel represents a convolution kernel.
type Kernel struct {
	Values [][]float64
	Width  int
	Height int
}

// NewKernel creates a new kernel from a 2D slice.
func NewKernel(values [][]float64) *Kernel {
	height := len(values)
	width := 0
	if height > 0 {
		width = len(values[0])
	}
	return &Kernel{
		Values: values,
		Width:  width,
		Height: height,
	}
}

// GaussianKernel returns a size×size Gaussian kernel normalised to sum to
// one. A non-positive sigma selects size/4, wide enough that the corner
// taps stay well above zero.
func GaussianKernel(size int, sigma float64) *Kernel {
	if sigma <= 0 {
		sigma = float64(size) / 4
	}
	half := size / 2
	values := make([][]float64, size)
	var sum float64
	for y := range size {
		values[y] = make([]float64, size)
		for x := range size {
			dy, dx := float64(y-half), float64(x-half)
			values[y][x] = math.Exp(-(dx*dx + dy*dy) / (2 * sigma * sigma))
		}
		sum += floats.Sum(values[y])
	}
	for _, row := range values {
		floats.Scale(1/sum, row)
	}
	return NewKernel(values)
}

// PyramidKernel is the separable 5-tap low-pass filter applied before each
// decimation step of GaussianPyramid.
func PyramidKernel() *Kernel {
	taps := [5]float64{0.05, 0.25, 0.4, 0.25, 0.05}
	values := make([][]float64, 5)
	for y := range 5 {
		values[y] = make([]float64, 5)
		for x := range 5 {
			values[y][x] = taps[y] * taps[x]
		}
	}
	return NewKernel(values)
}

// Flatten returns the kernel values in row-major order.
func (k *Kernel) Flatten() []float64 {
	out := make([]float64, 0, k.Width*k.Height)
	for _, row := range k.Values {
		out = append(out, row...)
	}
	return out
}

// ConvolveFloat applies kernel to every channel of img. Border pixels are
// handled by symmetric reflection, matching PadSymmetric.
func ConvolveFloat(img *FloatImage, kernel *Kernel) *FloatImage {
	dst := NewFloatImage(img.Width, img.Height, img.Channels)

	halfKW := kernel.Width / 2
	halfKH := kernel.Height / 2

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out := dst.Pixel(y, x)
			for ky := 0; ky < kernel.Height; ky++ {
				sy := reflectIndex(y+ky-halfKH, img.Height)
				for kx := 0; kx < kernel.Width; kx++ {
					sx := reflectIndex(x+kx-halfKW, img.Width)
					k := kernel.Values[ky][kx]
					for ch, v := range img.Pixel(sy, sx) {
						out[ch] += v * k
					}
				}
			}
		}
	}

	return dst
}

// clampUint8 clamps a float64 to [0, 255] and converts to uint8.
func clampUint8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}
