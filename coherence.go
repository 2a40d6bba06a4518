package imganalogy

import "fmt"

// BestCoherenceMatch looks for the source pixel that continues the patch
// of source already copied around the output pixel q.
//
// Every output pixel r that precedes q in raster order and lies within
// PadLg rows and columns of it was matched to a source pixel s[r]. Shifting
// that source by the same offset that separates q from r gives the
// candidate s[r] + (q - r). Candidates that fall outside the unpadded
// source are skipped; the rest are compared against query by squared
// Euclidean distance between the combined A/A′ descriptor at the candidate
// and the query. The first minimum in scan order wins.
//
// a and ap are the padded pairs of the source level being matched, query
// is the combined B/B′ descriptor of q. The boolean is false when no
// candidate exists, as for the first pixel of a level.
func BestCoherenceMatch(a, ap PaddedImagePair, query []float64, s *SynthesisMap,
	q QueryPosition, c Config) (Coord, bool) {
	if len(query) != c.DescriptorLen() {
		panic(fmt.Sprintf("imganalogy: coherence query has %d values, want %d",
			len(query), c.DescriptorLen()))
	}

	srcH, srcW := a.Height(c), a.Width(c)
	rowStart := max(0, q.Row-c.PadLg)
	colStart := max(0, q.Col-c.PadLg)
	colEnd := min(q.Width, q.Col+c.PadLg)

	var (
		found   bool
		best    Coord
		minDist float64
		feat    = make([]float64, 0, c.DescriptorLen())
	)
	for rRow := rowStart; rRow <= q.Row; rRow++ {
		end := colEnd
		if rRow == q.Row {
			end = q.Col
		}
		for rCol := colStart; rCol < end; rCol++ {
			src, ok := s.Get(q.Linear(rRow, rCol))
			if !ok {
				continue
			}
			p := CoherenceCandidate(src, Coord{Row: rRow, Col: rCol}, q.Coord())
			if p.Row < 0 || p.Row >= srcH || p.Col < 0 || p.Col >= srcW {
				continue
			}

			feat = AppendPixelFeature(feat[:0], a, p, c, true)
			feat = AppendPixelFeature(feat, ap, p, c, false)
			dist := squaredDistance(feat, query)
			if !found || dist < minDist {
				found, best, minDist = true, p, dist
			}
		}
	}
	return best, found
}

// CoherenceCandidate is the source pixel reached from the source src of
// reference pixel r by the offset that leads from r to q.
func CoherenceCandidate(src, r, q Coord) Coord {
	return src.Add(q.Sub(r))
}
