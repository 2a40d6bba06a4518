package imageutil

// Downsample low-pass filters img with PyramidKernel and keeps every other
// row and column. The result is ceil(h/2) × ceil(w/2).
func Downsample(img *FloatImage) *FloatImage {
	blurred := ConvolveFloat(img, PyramidKernel())
	out := NewFloatImage((img.Width+1)/2, (img.Height+1)/2, img.Channels)
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			out.SetPixel(y, x, blurred.Pixel(2*y, 2*x))
		}
	}
	return out
}

// GaussianPyramid builds a levels-deep pyramid ordered coarsest first: the
// last element is img itself and each earlier level is the Downsample of
// the one after it. Decimation stops early once a level would shrink below
// minSize pixels on either axis, so fewer than levels may be returned.
func GaussianPyramid(img *FloatImage, levels, minSize int) []*FloatImage {
	if levels < 1 {
		levels = 1
	}
	fine := []*FloatImage{img}
	for len(fine) < levels {
		cur := fine[len(fine)-1]
		if (cur.Width+1)/2 < minSize || (cur.Height+1)/2 < minSize {
			break
		}
		fine = append(fine, Downsample(cur))
	}

	pyr := make([]*FloatImage, len(fine))
	for i, level := range fine {
		pyr[len(fine)-1-i] = level
	}
	return pyr
}

// UpsampleNearest enlarges img to width × height by pixel replication,
// taking pixel (y/2, x/2) for output (y, x). It is the inverse mapping of
// Downsample and is used to seed a level from its coarser parent.
func UpsampleNearest(img *FloatImage, width, height int) *FloatImage {
	out := NewFloatImage(width, height, img.Channels)
	for y := 0; y < height; y++ {
		sy := min(y/2, img.Height-1)
		for x := 0; x < width; x++ {
			out.SetPixel(y, x, img.Pixel(sy, min(x/2, img.Width-1)))
		}
	}
	return out
}
