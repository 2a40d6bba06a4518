package imageutil

// Luminance collapses a 3-channel FloatImage to a single channel using the
// BT.601 weights Y = 0.299*R + 0.587*G + 0.114*B, the same formula OpenCV
// uses for COLOR_BGR2GRAY. Single-channel input is cloned.
func Luminance(img *FloatImage) *FloatImage {
	if img.Channels == 1 {
		return img.Clone()
	}
	gray := NewFloatImage(img.Width, img.Height, 1)
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			p := img.Pixel(y, x)
			gray.Set(y, x, 0, 0.299*p[0]+0.587*p[1]+0.114*p[2])
		}
	}
	return gray
}

// ReplaceLuminance returns a copy of color whose channels are shifted so
// that their BT.601 luminance equals lum. It is how a single-channel
// synthesis result is recombined with the colour of the original input.
func ReplaceLuminance(color, lum *FloatImage) *FloatImage {
	out := color.Clone()
	if color.Channels < 3 {
		copy(out.Pix, lum.Pix)
		return out
	}
	for y := 0; y < color.Height; y++ {
		for x := 0; x < color.Width; x++ {
			p := out.Pixel(y, x)
			delta := lum.At(y, x, 0) - (0.299*p[0] + 0.587*p[1] + 0.114*p[2])
			for ch := range 3 {
				p[ch] = clampUnit(p[ch] + delta)
			}
		}
	}
	return out
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
