package imganalogy

import (
	"fmt"
	"math"

	"github.com/wbrown/imganalogy/imageutil"
)

// ComputeDistance returns Σ (wᵢ·(pᵢ − qᵢ))². The three slices must have
// the same length; anything else is a caller bug and panics.
func ComputeDistance(p, q, weights []float64) float64 {
	if len(p) != len(q) || len(p) != len(weights) {
		panic(fmt.Sprintf("imganalogy: distance over %d, %d and %d values",
			len(p), len(q), len(weights)))
	}
	var sum float64
	for i, w := range weights {
		d := w * (p[i] - q[i])
		sum += d * d
	}
	return sum
}

// FeatureWeights returns the per-element weights for a combined A/A′
// descriptor laid out as [A small, A large, A′ small, A′ causal large].
// Each patch is weighted by a normalised Gaussian centred on the pixel, so
// the smaller coarse patch carries a larger weight per element than the
// large fine patch. Weights enter ComputeDistance squared, so each element
// holds the square root of its Gaussian tap.
func FeatureWeights(c Config) []float64 {
	sm := channelWeights(imageutil.GaussianKernel(c.NSm(), 0).Flatten(), c.NumCh)
	lg := channelWeights(imageutil.GaussianKernel(c.NLg(), 0).Flatten(), c.NumCh)

	w := make([]float64, 0, c.DescriptorLen())
	w = append(w, sm...)
	w = append(w, lg...)
	w = append(w, sm...)
	w = append(w, lg[:c.NumCh*c.NHalf]...)
	return w
}

// channelWeights repeats every spatial weight once per channel, matching
// the row, column, channel flattening of patches.
func channelWeights(spatial []float64, channels int) []float64 {
	out := make([]float64, 0, len(spatial)*channels)
	for _, v := range spatial {
		for range channels {
			out = append(out, math.Sqrt(v))
		}
	}
	return out
}

// PreferCoherence reports whether the coherence match should replace the
// approximate match. The coherence distance may exceed the approximate one
// by a factor of 1 + 2^(level-maxLevel)·kappa, so the bias toward coherence
// is strongest at the finest level.
func PreferCoherence(approxDist, cohDist float64, level, maxLevel int, kappa float64) bool {
	slack := 1 + math.Pow(2, float64(level-maxLevel))*kappa
	return cohDist <= approxDist*slack
}
