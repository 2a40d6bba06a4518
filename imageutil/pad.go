package imageutil

// reflectIndex maps i into [0, n) by mirroring about the array edges with
// the edge sample repeated, e.g. for n=4: ... 1 0 | 0 1 2 3 | 3 2 ...
// This is numpy's "symmetric" mode and OpenCV's BORDER_REFLECT.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// PadSymmetric pads both spatial axes of img by pad pixels on every side
// using symmetric edge extension. Channels are not padded. The input is
// not modified.
func PadSymmetric(img *FloatImage, pad int) *FloatImage {
	if pad <= 0 {
		return img.Clone()
	}
	out := NewFloatImage(img.Width+2*pad, img.Height+2*pad, img.Channels)
	for y := 0; y < out.Height; y++ {
		sy := reflectIndex(y-pad, img.Height)
		for x := 0; x < out.Width; x++ {
			sx := reflectIndex(x-pad, img.Width)
			out.SetPixel(y, x, img.Pixel(sy, sx))
		}
	}
	return out
}

// Unpad returns a copy of img with pad pixels removed from every side,
// the inverse of PadSymmetric.
func Unpad(img *FloatImage, pad int) *FloatImage {
	out := NewFloatImage(img.Width-2*pad, img.Height-2*pad, img.Channels)
	span := out.Stride()
	for y := 0; y < out.Height; y++ {
		off := (y+pad)*img.Stride() + pad*img.Channels
		copy(out.Pix[y*span:(y+1)*span], img.Pix[off:off+span])
	}
	return out
}

// Mirror lists, for every pixel of an image, each position of its
// PadSymmetric copy that holds that pixel. It lets a padded image be
// written in place while its border keeps reflecting the interior.
type Mirror struct {
	rows, cols [][]int
}

// NewMirror builds the Mirror of a width × height image padded by pad.
func NewMirror(width, height, pad int) Mirror {
	return Mirror{rows: mirrorAxis(height, pad), cols: mirrorAxis(width, pad)}
}

func mirrorAxis(n, pad int) [][]int {
	pad = max(pad, 0)
	out := make([][]int, n)
	for i := 0; i < n+2*pad; i++ {
		src := reflectIndex(i-pad, n)
		out[src] = append(out[src], i)
	}
	return out
}

// SetPixel writes v at unpadded (row, col) of padded and at every border
// position that reflects it.
func (m Mirror) SetPixel(padded *FloatImage, row, col int, v []float64) {
	for _, y := range m.rows[row] {
		for _, x := range m.cols[col] {
			padded.SetPixel(y, x, v)
		}
	}
}
