package imganalogy

import (
	"context"
	"errors"
	"testing"

	"github.com/wbrown/imganalogy/imageutil"
)

func newTestSynthesizer(t *testing.T, c Config) *Synthesizer {
	t.Helper()
	a := noisePyramid(16, 16, c.NumCh, 3, 21)
	ap := noisePyramid(16, 16, c.NumCh, 3, 22)
	s, err := NewSynthesizer(a, ap, c)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}
	return s
}

func TestSynthesizeDimensions(t *testing.T) {
	c := NewConfig(1, 1, 1)
	s := newTestSynthesizer(t, c)
	if s.Levels() != 3 {
		t.Fatalf("Expected 3 levels, got %d", s.Levels())
	}

	b := noisePyramid(12, 10, 1, 3, 23)
	res, err := s.Synthesize(context.Background(), b)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for level := range b {
		got := res.Pyramid[level]
		if got.Width != b[level].Width || got.Height != b[level].Height {
			t.Errorf("Level %d: output %dx%d, want %dx%d", level,
				got.Width, got.Height, b[level].Width, b[level].Height)
		}
		if res.Sources[level].Len() != got.Width*got.Height {
			t.Errorf("Level %d: %d sources recorded for %d pixels", level,
				res.Sources[level].Len(), got.Width*got.Height)
		}
		if res.Coherent[level] > got.Width*got.Height {
			t.Errorf("Level %d: %d coherent picks exceed pixel count", level, res.Coherent[level])
		}
	}
}

func TestSynthesizeCopiesSourcePixels(t *testing.T) {
	c := NewConfig(1, 2, 3)
	a := noisePyramid(16, 16, 3, 3, 31)
	ap := noisePyramid(16, 16, 3, 3, 32)
	s, err := NewSynthesizer(a, ap, c)
	if err != nil {
		t.Fatalf("NewSynthesizer: %v", err)
	}

	res, err := s.Synthesize(context.Background(), noisePyramid(10, 14, 3, 3, 33))
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for level, out := range res.Pyramid {
		res.Sources[level].Iterate(func(i int, src Coord) {
			row, col := i/out.Width, i%out.Width
			if !equalFloats(out.Pixel(row, col), ap[level].Pixel(src.Row, src.Col)) {
				t.Fatalf("Level %d pixel (%d,%d) differs from its source %v",
					level, row, col, src)
			}
		})
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	c := NewConfig(1, 1, 1)
	s := newTestSynthesizer(t, c)
	b := noisePyramid(12, 12, 1, 3, 41)

	first, err := s.Synthesize(context.Background(), b)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	second, err := s.Synthesize(context.Background(), b)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !equalFloats(first.Pyramid.Finest().Pix, second.Pyramid.Finest().Pix) {
		t.Error("Two runs over the same input differ")
	}
}

func TestSynthesizeCanceled(t *testing.T) {
	c := NewConfig(1, 1, 1)
	s := newTestSynthesizer(t, c)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Synthesize(ctx, noisePyramid(12, 12, 1, 3, 51))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestSynthesizeLevelMismatch(t *testing.T) {
	c := NewConfig(1, 1, 1)
	s := newTestSynthesizer(t, c)
	_, err := s.Synthesize(context.Background(), noisePyramid(12, 12, 1, 2, 61))
	if !errors.Is(err, ErrLevelMismatch) {
		t.Errorf("Expected ErrLevelMismatch, got %v", err)
	}
}

func TestNewSynthesizerRejectsBadInput(t *testing.T) {
	c := NewConfig(1, 1, 1)
	a := noisePyramid(16, 16, 1, 3, 1)
	if _, err := NewSynthesizer(a, noisePyramid(16, 12, 1, 3, 2), c); !errors.Is(err, ErrLevelMismatch) {
		t.Errorf("Expected ErrLevelMismatch, got %v", err)
	}
	if _, err := NewSynthesizer(a, a, NewConfig(1, 1, 3)); !errors.Is(err, ErrPyramidShape) {
		t.Errorf("Expected ErrPyramidShape, got %v", err)
	}
	bad := c
	bad.PadLg = -1
	if _, err := NewSynthesizer(a, a, bad); !errors.Is(err, ErrConfig) {
		t.Errorf("Expected ErrConfig, got %v", err)
	}
}

func TestOutputLevelBorderFollowsInterior(t *testing.T) {
	c := NewConfig(1, 2, 1)
	parent := imageutil.CreateNoiseFloat(6, 5, 1, 71)
	target := imageutil.CreateNoiseFloat(12, 10, 1, 72)
	pair, mirror := newOutputLevel(parent, 12, 10, c)
	want := imageutil.PadSymmetric(target, c.PaddingLg())

	// Once the first PadLg rows are written, the padded rows above them
	// reflect the written values, not the upsampled parent.
	for row := 0; row < c.PadLg; row++ {
		for col := 0; col < 12; col++ {
			mirror.SetPixel(pair.Large, row, col, target.Pixel(row, col))
		}
	}
	for y := 0; y < c.PaddingLg(); y++ {
		for x := 0; x < pair.Large.Width; x++ {
			if got, w := pair.Large.At(y, x, 0), want.At(y, x, 0); got != w {
				t.Fatalf("Padded (%d,%d) = %f, want %f", y, x, got, w)
			}
		}
	}

	for row := c.PadLg; row < 10; row++ {
		for col := 0; col < 12; col++ {
			mirror.SetPixel(pair.Large, row, col, target.Pixel(row, col))
		}
	}
	if !equalFloats(pair.Large.Pix, want.Pix) {
		t.Error("Padded output level differs from the padded synthesized level")
	}
	if !equalFloats(pair.Small.Pix, imageutil.PadSymmetric(parent, c.PaddingSm()).Pix) {
		t.Error("Small image should be the padded parent level")
	}
}
