package imageutil

import (
	"image/color"
	"math"
	"math/rand"
)

// CreateGradientImage creates a horizontal gradient test image.
func CreateGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / (width - 1))
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

// CreateColorBarsImage creates a color bars test pattern.
func CreateColorBarsImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	colors := []RGB{
		{255, 255, 255}, // White
		{255, 255, 0},   // Yellow
		{0, 255, 255},   // Cyan
		{0, 255, 0},     // Green
		{255, 0, 255},   // Magenta
		{255, 0, 0},     // Red
		{0, 0, 255},     // Blue
		{0, 0, 0},       // Black
	}

	barWidth := max(width/len(colors), 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			colorIdx := min(x/barWidth, len(colors)-1)
			img.SetRGB(x, y, colors[colorIdx])
		}
	}
	return img
}

// CreateRampFloat creates a float image whose value at (row, col, ch) is
// row*width + col + ch/10, so every sample identifies its own position.
func CreateRampFloat(width, height, channels int) *FloatImage {
	img := NewFloatImage(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for ch := 0; ch < channels; ch++ {
				img.Set(y, x, ch, float64(y*width+x)+float64(ch)/10)
			}
		}
	}
	return img
}

// CreateNoiseFloat creates a float image of uniform noise in [0, 1)
// from a seeded source.
func CreateNoiseFloat(width, height, channels int, seed int64) *FloatImage {
	rng := rand.New(rand.NewSource(seed))
	img := NewFloatImage(width, height, channels)
	for i := range img.Pix {
		img.Pix[i] = rng.Float64()
	}
	return img
}

// CreateStripesFloat creates a single-channel image of vertical stripes of
// the given period, alternating between 0 and 1.
func CreateStripesFloat(width, height, period int) *FloatImage {
	img := NewFloatImage(width, height, 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x/period)%2 == 0 {
				img.Set(y, x, 0, 1)
			}
		}
	}
	return img
}

// CalculateMSEFloat calculates the mean squared error between two float
// images of the same shape.
func CalculateMSEFloat(img1, img2 *FloatImage) float64 {
	if img1.Width != img2.Width || img1.Height != img2.Height ||
		img1.Channels != img2.Channels {
		return math.MaxFloat64
	}
	var sumSq float64
	for i, v := range img1.Pix {
		d := v - img2.Pix[i]
		sumSq += d * d
	}
	return sumSq / float64(len(img1.Pix))
}
