package imageutil

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PatchLen is the length of a flattened size×size patch of img.
func PatchLen(img *FloatImage, size int) int {
	return size * size * img.Channels
}

// CopyPatch writes the size×size patch whose top-left corner is
// (row, col) into dst, flattened row, column, channel. dst must hold at
// least PatchLen(img, size) values; the number written is returned.
func CopyPatch(dst []float64, img *FloatImage, row, col, size int) int {
	n := 0
	span := size * img.Channels
	stride := img.Stride()
	for dy := 0; dy < size; dy++ {
		off := (row+dy)*stride + col*img.Channels
		n += copy(dst[n:n+span], img.Pix[off:off+span])
	}
	return n
}

// ExtractPatches returns every size×size sliding window of img as one row
// of a matrix, windows ordered row-major by their top-left corner. The
// matrix has (Height-size+1)*(Width-size+1) rows and PatchLen columns.
// It panics if size does not fit inside img.
func ExtractPatches(img *FloatImage, size int) *mat.Dense {
	if size <= 0 || size > img.Width || size > img.Height {
		panic(fmt.Sprintf("imageutil: patch size %d does not fit %dx%d image",
			size, img.Width, img.Height))
	}
	rowsOut := img.Height - size + 1
	colsOut := img.Width - size + 1
	patchLen := PatchLen(img, size)

	data := make([]float64, rowsOut*colsOut*patchLen)
	for y := 0; y < rowsOut; y++ {
		for x := 0; x < colsOut; x++ {
			off := (y*colsOut + x) * patchLen
			CopyPatch(data[off:off+patchLen], img, y, x, size)
		}
	}
	return mat.NewDense(rowsOut*colsOut, patchLen, data)
}
