package imganalogy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig reports an unusable feature configuration.
	ErrConfig = errors.New("invalid analogy config")
	// ErrEmptyPyramid reports a pyramid with no levels or an empty level.
	ErrEmptyPyramid = errors.New("empty pyramid")
	// ErrPyramidShape reports levels that do not follow the
	// half-resolution relationship, or inconsistent channel counts.
	ErrPyramidShape = errors.New("malformed pyramid")
	// ErrLevelMismatch reports source pyramids A and A′ whose levels
	// differ in shape.
	ErrLevelMismatch = errors.New("pyramid level mismatch")
)

// Config fixes the neighbourhood geometry used to build descriptors and
// the knobs of the synthesis search. It is passed by value and never
// mutated once built.
type Config struct {
	// PadSm is the half-width of the small patch taken from the coarser
	// pyramid level.
	PadSm int
	// PadLg is the half-width of the large patch taken from the current
	// level. It also bounds the coherence neighbourhood.
	PadLg int
	// NumCh is the number of channels per pixel.
	NumCh int
	// NHalf is how many large-patch pixels the filtered side keeps: the
	// pixels that precede the centre in raster order and are therefore
	// already synthesized.
	NHalf int

	// Kappa biases the synthesis driver toward coherence matches. Zero
	// disables the bias.
	Kappa float64
	// Checks bounds the number of descriptor distance evaluations per
	// approximate query. Zero or less searches exhaustively. Coarsely
	// quantized images tie on many kd-tree splits and need a larger
	// budget; see IndexParams.
	Checks int
	// Trees is the number of randomised kd-trees per level index.
	Trees int
	// Seed drives index randomisation and level 0 initialisation.
	Seed int64
}

// NewConfig derives a Config from the patch half-widths and channel count
// with the causal half covering every large-patch pixel before the centre.
// Search tunables take their DefaultConfig values.
func NewConfig(padSm, padLg, numCh int) Config {
	c := DefaultConfig()
	c.PadSm = padSm
	c.PadLg = padLg
	c.NumCh = numCh
	c.NHalf = c.NLg() * c.NLg() / 2
	return c
}

// DefaultConfig returns 3x3 coarse / 5x5 fine RGB neighbourhoods with the
// search tunables used by the analogize command.
func DefaultConfig() Config {
	return Config{
		PadSm:  1,
		PadLg:  2,
		NumCh:  3,
		NHalf:  12,
		Kappa:  2,
		Checks: 64,
		Trees:  4,
		Seed:   1,
	}
}

// NSm is the side length of the small patch.
func (c Config) NSm() int { return 2*c.PadSm + 1 }

// NLg is the side length of the large patch.
func (c Config) NLg() int { return 2*c.PadLg + 1 }

// PaddingSm is the symmetric padding applied to the coarser level.
func (c Config) PaddingSm() int { return c.PadSm }

// PaddingLg is the symmetric padding applied to the current level.
func (c Config) PaddingLg() int { return c.PadLg }

// FullFeatureLen is the length of a descriptor that keeps the whole large
// patch.
func (c Config) FullFeatureLen() int {
	return c.NumCh * (c.NSm()*c.NSm() + c.NLg()*c.NLg())
}

// HalfFeatureLen is the length of a descriptor that keeps only the causal
// part of the large patch.
func (c Config) HalfFeatureLen() int {
	return c.NumCh * (c.NSm()*c.NSm() + c.NHalf)
}

// DescriptorLen is the width of a combined A/A′ descriptor.
func (c Config) DescriptorLen() int {
	return c.FullFeatureLen() + c.HalfFeatureLen()
}

// IndexParams returns the search parameters derived from c.
func (c Config) IndexParams() IndexParams {
	return IndexParams{Checks: c.Checks, Trees: max(c.Trees, 1), Seed: c.Seed}
}

// Validate reports whether c describes a usable neighbourhood.
func (c Config) Validate() error {
	switch {
	case c.PadSm < 0 || c.PadLg < 0:
		return fmt.Errorf("%w: negative patch half-width (sm=%d, lg=%d)",
			ErrConfig, c.PadSm, c.PadLg)
	case c.NumCh <= 0:
		return fmt.Errorf("%w: channel count %d", ErrConfig, c.NumCh)
	case c.NHalf < 0 || c.NHalf > c.NLg()*c.NLg():
		return fmt.Errorf("%w: n_half %d outside [0, %d]",
			ErrConfig, c.NHalf, c.NLg()*c.NLg())
	case c.Kappa < 0:
		return fmt.Errorf("%w: negative kappa %f", ErrConfig, c.Kappa)
	}
	return nil
}
