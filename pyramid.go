package imganalogy

import (
	"fmt"

	"github.com/wbrown/imganalogy/imageutil"
)

// Pyramid is a multiresolution image ordered coarsest first. Level i is
// ceil(h/2) × ceil(w/2) of level i+1. Levels are read-only once built.
type Pyramid []*imageutil.FloatImage

// BuildPyramid builds a Gaussian pyramid of at most levels levels from img,
// never shrinking a level below minSize pixels on either side.
func BuildPyramid(img *imageutil.FloatImage, levels, minSize int) Pyramid {
	return Pyramid(imageutil.GaussianPyramid(img, levels, minSize))
}

// Finest returns the full resolution level.
func (p Pyramid) Finest() *imageutil.FloatImage {
	return p[len(p)-1]
}

// Validate checks that p is non-empty, every level has pixels, every level
// has numCh channels and each level is the half-resolution parent of the
// next.
func (p Pyramid) Validate(numCh int) error {
	if len(p) == 0 {
		return ErrEmptyPyramid
	}
	for i, level := range p {
		if level.Empty() {
			return fmt.Errorf("%w: level %d has no pixels", ErrEmptyPyramid, i)
		}
		if level.Channels != numCh {
			return fmt.Errorf("%w: level %d has %d channels, want %d",
				ErrPyramidShape, i, level.Channels, numCh)
		}
		if i == 0 {
			continue
		}
		coarse := p[i-1]
		if coarse.Width != (level.Width+1)/2 || coarse.Height != (level.Height+1)/2 {
			return fmt.Errorf("%w: level %d is %dx%d but level %d is %dx%d",
				ErrPyramidShape, i-1, coarse.Width, coarse.Height,
				i, level.Width, level.Height)
		}
	}
	return nil
}

// sameShape reports the first level where a and b differ in size.
func sameShape(a, b Pyramid) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d levels vs %d", ErrLevelMismatch, len(a), len(b))
	}
	for i := range a {
		if a[i].Width != b[i].Width || a[i].Height != b[i].Height {
			return fmt.Errorf("%w: level %d is %dx%d vs %dx%d", ErrLevelMismatch,
				i, a[i].Width, a[i].Height, b[i].Width, b[i].Height)
		}
	}
	return nil
}

// PaddedImagePair holds one pyramid level together with its coarser
// parent, both symmetrically padded so that every patch around an image
// pixel is defined. Small is always the coarser level.
type PaddedImagePair struct {
	Small *imageutil.FloatImage
	Large *imageutil.FloatImage
}

// NewPaddedImagePair pads level-1 by PaddingSm and level by PaddingLg.
// Level 0 has no coarser parent and is rejected.
func NewPaddedImagePair(pyr Pyramid, level int, c Config) (PaddedImagePair, error) {
	if level < 1 || level >= len(pyr) {
		return PaddedImagePair{}, fmt.Errorf("%w: level %d outside [1, %d)",
			ErrPyramidShape, level, len(pyr))
	}
	return PaddedImagePair{
		Small: imageutil.PadSymmetric(pyr[level-1], c.PaddingSm()),
		Large: imageutil.PadSymmetric(pyr[level], c.PaddingLg()),
	}, nil
}

// Height is the unpadded height of the large image.
func (p PaddedImagePair) Height(c Config) int {
	return p.Large.Height - 2*c.PaddingLg()
}

// Width is the unpadded width of the large image.
func (p PaddedImagePair) Width(c Config) int {
	return p.Large.Width - 2*c.PaddingLg()
}

// Coord is a (row, col) pixel position.
type Coord struct {
	Row, Col int
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{Row: c.Row + o.Row, Col: c.Col + o.Col}
}

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord {
	return Coord{Row: c.Row - o.Row, Col: c.Col - o.Col}
}

// QueryPosition is the output pixel being synthesized and the width of the
// output level, which turns (row, col) into a synthesis map index.
type QueryPosition struct {
	Row, Col int
	Width    int
}

// Coord returns the (row, col) part of q.
func (q QueryPosition) Coord() Coord {
	return Coord{Row: q.Row, Col: q.Col}
}

// Linear returns the raster index of (row, col).
func (q QueryPosition) Linear(row, col int) int {
	return row*q.Width + col
}
