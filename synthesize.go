package imganalogy

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/wbrown/imganalogy/imageutil"
)

// Synthesizer applies the A → A′ relationship of a source pair to new
// images. The per-level indices are built once and reused for every call to
// Synthesize.
type Synthesizer struct {
	a, ap   Pyramid
	cfg     Config
	indices []*Index
	params  []IndexParams
	weights []float64

	aPairs  []PaddedImagePair
	apPairs []PaddedImagePair
}

// Result is the outcome of one synthesis run.
type Result struct {
	// Pyramid is B′, coarsest level first.
	Pyramid Pyramid
	// Sources holds, per level, the source pixel each output pixel was
	// copied from.
	Sources []*SynthesisMap
	// Coherent counts, per level, the pixels taken from the coherence
	// match instead of the approximate match.
	Coherent []int
}

// NewSynthesizer validates the source pair and indexes every level above 0.
func NewSynthesizer(a, ap Pyramid, c Config) (*Synthesizer, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := a.Validate(c.NumCh); err != nil {
		return nil, fmt.Errorf("source pyramid: %w", err)
	}
	if err := ap.Validate(c.NumCh); err != nil {
		return nil, fmt.Errorf("filtered source pyramid: %w", err)
	}

	indices, params, _, err := CreateIndex(a, ap, c)
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{
		a:       a,
		ap:      ap,
		cfg:     c,
		indices: indices,
		params:  params,
		weights: FeatureWeights(c),
		aPairs:  make([]PaddedImagePair, len(a)),
		apPairs: make([]PaddedImagePair, len(a)),
	}
	for level := 1; level < len(a); level++ {
		if s.aPairs[level], err = NewPaddedImagePair(a, level, c); err != nil {
			return nil, err
		}
		if s.apPairs[level], err = NewPaddedImagePair(ap, level, c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Levels is the number of pyramid levels the synthesizer was built for.
func (s *Synthesizer) Levels() int {
	return len(s.a)
}

// Synthesize builds B′ for b. Level 0 is seeded with randomly chosen A′
// pixels. Every later level is scanned in raster order; each output pixel
// takes the A′ value of whichever of the approximate and coherence matches
// wins under PreferCoherence. Pixels within a level depend on every pixel
// before them, so a level is processed sequentially. ctx is checked once
// per output row.
func (s *Synthesizer) Synthesize(ctx context.Context, b Pyramid) (*Result, error) {
	if err := b.Validate(s.cfg.NumCh); err != nil {
		return nil, fmt.Errorf("target pyramid: %w", err)
	}
	if len(b) != len(s.a) {
		return nil, fmt.Errorf("%w: target has %d levels, source has %d",
			ErrLevelMismatch, len(b), len(s.a))
	}

	res := &Result{
		Pyramid:  make(Pyramid, len(b)),
		Sources:  make([]*SynthesisMap, len(b)),
		Coherent: make([]int, len(b)),
	}
	res.Pyramid[0], res.Sources[0] = s.seedLevel(b[0])

	for level := 1; level < len(b); level++ {
		if err := s.synthesizeLevel(ctx, b, level, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// seedLevel fills the coarsest output level with A′ pixels picked from a
// seeded source.
func (s *Synthesizer) seedLevel(b0 *imageutil.FloatImage) (*imageutil.FloatImage, *SynthesisMap) {
	rng := rand.New(rand.NewSource(s.cfg.Seed))
	src := s.ap[0]
	out := imageutil.NewFloatImage(b0.Width, b0.Height, b0.Channels)
	sources := NewSynthesisMap(b0.Width * b0.Height)
	for row := 0; row < b0.Height; row++ {
		for col := 0; col < b0.Width; col++ {
			p := Coord{Row: rng.Intn(src.Height), Col: rng.Intn(src.Width)}
			out.SetPixel(row, col, src.Pixel(p.Row, p.Col))
			sources.Set(row*b0.Width+col, p)
		}
	}
	return out, sources
}

func (s *Synthesizer) synthesizeLevel(ctx context.Context, b Pyramid, level int, res *Result) error {
	c := s.cfg
	start := time.Now()
	height, width := b[level].Height, b[level].Width
	srcWidth := s.a[level].Width
	maxLevel := len(b) - 1
	slog.Info("synthesizing level", "level", level, "width", width, "height", height)

	bPair, err := NewPaddedImagePair(b, level, c)
	if err != nil {
		return err
	}
	bpPair, mirror := newOutputLevel(res.Pyramid[level-1], width, height, c)

	idx, params := s.indices[level], s.params[level]
	sources := NewSynthesisMap(width * height)
	query := make([]float64, 0, c.DescriptorLen())
	coherent := 0

	for row := 0; row < height; row++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("level %d row %d: %w", level, row, err)
		}
		for col := 0; col < width; col++ {
			at := Coord{Row: row, Col: col}
			query = AppendPixelFeature(query[:0], bPair, at, c, true)
			query = AppendPixelFeature(query, bpPair, at, c, false)

			approxRow := BestApproximateMatch(idx, params, query)
			best := Coord{Row: approxRow / srcWidth, Col: approxRow % srcWidth}

			coh, ok := BestCoherenceMatch(s.aPairs[level], s.apPairs[level], query,
				sources, QueryPosition{Row: row, Col: col, Width: width}, c)
			if ok && coh != best {
				approxDist := ComputeDistance(idx.Descriptor(approxRow), query, s.weights)
				cohDist := ComputeDistance(idx.Descriptor(coh.Row*srcWidth+coh.Col), query, s.weights)
				if PreferCoherence(approxDist, cohDist, level, maxLevel, c.Kappa) {
					best = coh
					coherent++
				}
			}

			mirror.SetPixel(bpPair.Large, row, col, s.ap[level].Pixel(best.Row, best.Col))
			sources.Set(row*width+col, best)
		}
	}

	res.Pyramid[level] = imageutil.Unpad(bpPair.Large, c.PaddingLg())
	res.Sources[level] = sources
	res.Coherent[level] = coherent
	slog.Info("level done", "level", level, "pixels", width*height,
		"coherent", coherent, "elapsed", time.Since(start))
	return nil
}

// newOutputLevel returns the padded pair for an in-progress B′ level of
// width × height under parent. The level starts as an upsampled copy of
// its parent so pixels not yet written hold plausible values. Writes
// through the returned Mirror keep the reflected border in step with the
// synthesized interior.
func newOutputLevel(parent *imageutil.FloatImage, width, height int,
	c Config) (PaddedImagePair, imageutil.Mirror) {
	pair := PaddedImagePair{
		Small: imageutil.PadSymmetric(parent, c.PaddingSm()),
		Large: imageutil.PadSymmetric(
			imageutil.UpsampleNearest(parent, width, height), c.PaddingLg()),
	}
	return pair, imageutil.NewMirror(width, height, c.PaddingLg())
}
