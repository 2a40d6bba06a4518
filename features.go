package imganalogy

import (
	"fmt"
	"runtime"

	"github.com/wbrown/imganalogy/imageutil"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// FeatureArrays holds one descriptor matrix per pyramid level, one row per
// pixel in raster order. Index 0 is always nil so that arrays line up with
// pyramid levels.
type FeatureArrays []*mat.Dense

// ComputeFeatureArray builds the descriptor of every pixel of every level
// above 0. Each descriptor is the small patch around the pixel's parent on
// the coarser level followed by the large patch around the pixel itself.
// When fullFeat is false the large patch is cut to its first NHalf pixels,
// the neighbours that precede the pixel in raster order.
//
// Levels are independent of each other and are computed concurrently.
func ComputeFeatureArray(pyr Pyramid, c Config, fullFeat bool) (FeatureArrays, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := pyr.Validate(c.NumCh); err != nil {
		return nil, err
	}

	features := make(FeatureArrays, len(pyr))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for level := 1; level < len(pyr); level++ {
		g.Go(func() error {
			f, err := levelFeatures(pyr, level, c, fullFeat)
			if err != nil {
				return err
			}
			features[level] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return features, nil
}

func levelFeatures(pyr Pyramid, level int, c Config, fullFeat bool) (*mat.Dense, error) {
	pair, err := NewPaddedImagePair(pyr, level, c)
	if err != nil {
		return nil, err
	}
	coarse, fine := pyr[level-1], pyr[level]

	patchesSm := imageutil.ExtractPatches(pair.Small, c.NSm())
	patchesLg := imageutil.ExtractPatches(pair.Large, c.NLg())

	if n, _ := patchesSm.Dims(); n != coarse.Width*coarse.Height {
		return nil, fmt.Errorf("%w: level %d yields %d small patches for %d pixels",
			ErrPyramidShape, level-1, n, coarse.Width*coarse.Height)
	}
	if n, _ := patchesLg.Dims(); n != fine.Width*fine.Height {
		return nil, fmt.Errorf("%w: level %d yields %d large patches for %d pixels",
			ErrPyramidShape, level, n, fine.Width*fine.Height)
	}

	smLen := c.NumCh * c.NSm() * c.NSm()
	lgLen := c.NumCh * c.NLg() * c.NLg()
	if !fullFeat {
		lgLen = c.NumCh * c.NHalf
	}

	// coarse.Width is ceil(fine.Width/2), checked by Pyramid.Validate
	out := mat.NewDense(fine.Width*fine.Height, smLen+lgLen, nil)
	for row := 0; row < fine.Height; row++ {
		for col := 0; col < fine.Width; col++ {
			i := row*fine.Width + col
			dst := out.RawRowView(i)
			copy(dst[:smLen], patchesSm.RawRowView((row/2)*coarse.Width+col/2))
			copy(dst[smLen:], patchesLg.RawRowView(i)[:lgLen])
		}
	}
	return out, nil
}

// ExtractPixelFeature returns the descriptor of a single pixel, read
// straight from an already padded image pair. It equals the matching row
// of ComputeFeatureArray without rebuilding the whole level.
func ExtractPixelFeature(pair PaddedImagePair, at Coord, c Config, fullFeat bool) []float64 {
	return AppendPixelFeature(nil, pair, at, c, fullFeat)
}

// AppendPixelFeature appends the descriptor of pixel at to dst and returns
// the extended slice.
func AppendPixelFeature(dst []float64, pair PaddedImagePair, at Coord, c Config, fullFeat bool) []float64 {
	start := len(dst)
	full := c.FullFeatureLen()
	dst = grow(dst, full)

	buf := dst[start:]
	n := imageutil.CopyPatch(buf, pair.Small, at.Row/2, at.Col/2, c.NSm())
	imageutil.CopyPatch(buf[n:], pair.Large, at.Row, at.Col, c.NLg())

	if !fullFeat {
		return dst[:start+c.HalfFeatureLen()]
	}
	return dst
}

// grow extends s by n elements, reallocating only when capacity runs out.
func grow(s []float64, n int) []float64 {
	if cap(s)-len(s) >= n {
		return s[:len(s)+n]
	}
	out := make([]float64, len(s)+n, 2*len(s)+n)
	copy(out, s)
	return out
}
