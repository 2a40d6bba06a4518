package imganalogy

import (
	"testing"

	"github.com/wbrown/imganalogy/imageutil"
)

// coherenceFixture returns padded A/A′ pairs for level 1 of two noise
// pyramids whose finest level is 12x12.
func coherenceFixture(t *testing.T, c Config) (PaddedImagePair, PaddedImagePair) {
	t.Helper()
	a := noisePyramid(12, 12, c.NumCh, 2, 11)
	ap := noisePyramid(12, 12, c.NumCh, 2, 12)
	aPair, err := NewPaddedImagePair(a, 1, c)
	if err != nil {
		t.Fatalf("NewPaddedImagePair: %v", err)
	}
	apPair, err := NewPaddedImagePair(ap, 1, c)
	if err != nil {
		t.Fatalf("NewPaddedImagePair: %v", err)
	}
	return aPair, apPair
}

func sourceDescriptor(a, ap PaddedImagePair, p Coord, c Config) []float64 {
	d := ExtractPixelFeature(a, p, c, true)
	return append(d, ExtractPixelFeature(ap, p, c, false)...)
}

func TestBestCoherenceMatchFirstPixel(t *testing.T) {
	c := NewConfig(1, 2, 1)
	a, ap := coherenceFixture(t, c)
	query := make([]float64, c.DescriptorLen())

	_, ok := BestCoherenceMatch(a, ap, query, NewSynthesisMap(0),
		QueryPosition{Row: 0, Col: 0, Width: 12}, c)
	if ok {
		t.Error("First pixel of a level should have no coherence candidate")
	}
}

func TestBestCoherenceMatchTranslation(t *testing.T) {
	c := NewConfig(1, 2, 1)
	a, ap := coherenceFixture(t, c)
	q := QueryPosition{Row: 4, Col: 5, Width: 12}

	// Every earlier output pixel was copied from the source shifted by
	// (3, 4), so every candidate is the same shifted pixel.
	s := NewSynthesisMap(144)
	shift := Coord{Row: 3, Col: 4}
	for row := 0; row <= q.Row; row++ {
		for col := 0; col < 12; col++ {
			if row == q.Row && col >= q.Col {
				break
			}
			s.Set(q.Linear(row, col), Coord{Row: row, Col: col}.Add(shift))
		}
	}

	query := make([]float64, c.DescriptorLen())
	got, ok := BestCoherenceMatch(a, ap, query, s, q, c)
	if !ok {
		t.Fatal("Expected a coherence candidate")
	}
	if want := q.Coord().Add(shift); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBestCoherenceMatchPicksNearest(t *testing.T) {
	c := NewConfig(1, 1, 1)
	a, ap := coherenceFixture(t, c)
	q := QueryPosition{Row: 3, Col: 3, Width: 12}

	s := NewSynthesisMap(144)
	s.Set(q.Linear(2, 2), Coord{Row: 0, Col: 0}) // candidate (1, 1)
	s.Set(q.Linear(2, 3), Coord{Row: 7, Col: 8}) // candidate (8, 8)
	s.Set(q.Linear(3, 2), Coord{Row: 5, Col: 1}) // candidate (5, 2)

	target := Coord{Row: 8, Col: 8}
	query := sourceDescriptor(a, ap, target, c)

	got, ok := BestCoherenceMatch(a, ap, query, s, q, c)
	if !ok || got != target {
		t.Errorf("Expected %v, got %v (ok=%v)", target, got, ok)
	}
}

func TestBestCoherenceMatchSkipsOutOfBounds(t *testing.T) {
	c := NewConfig(1, 1, 1)
	a, ap := coherenceFixture(t, c)
	q := QueryPosition{Row: 1, Col: 1, Width: 12}

	s := NewSynthesisMap(144)
	s.Set(q.Linear(0, 0), Coord{Row: 11, Col: 11}) // candidate (12, 12)
	s.Set(q.Linear(0, 1), Coord{Row: 11, Col: 0})  // candidate (12, 0)
	s.Set(q.Linear(1, 0), Coord{Row: 0, Col: 11})  // candidate (0, 12)

	query := make([]float64, c.DescriptorLen())
	if got, ok := BestCoherenceMatch(a, ap, query, s, q, c); ok {
		t.Errorf("Expected no candidate inside the source, got %v", got)
	}
}

func TestBestCoherenceMatchNeighbourhood(t *testing.T) {
	c := NewConfig(1, 1, 1)
	a, ap := coherenceFixture(t, c)
	q := QueryPosition{Row: 5, Col: 5, Width: 12}

	// Pixels more than PadLg rows above, columns at or past col+PadLg, and
	// pixels at or after q on its own row are not references.
	s := NewSynthesisMap(144)
	s.Set(q.Linear(3, 5), Coord{Row: 2, Col: 2})
	s.Set(q.Linear(4, 6), Coord{Row: 2, Col: 2})
	s.Set(q.Linear(4, 7), Coord{Row: 2, Col: 2})
	s.Set(q.Linear(5, 2), Coord{Row: 2, Col: 2})
	s.Set(q.Linear(5, 5), Coord{Row: 2, Col: 2})
	s.Set(q.Linear(5, 6), Coord{Row: 2, Col: 2})

	query := make([]float64, c.DescriptorLen())
	if got, ok := BestCoherenceMatch(a, ap, query, s, q, c); ok {
		t.Errorf("Expected no reference in the causal neighbourhood, got %v", got)
	}

	s.Set(q.Linear(4, 4), Coord{Row: 2, Col: 2})
	got, ok := BestCoherenceMatch(a, ap, query, s, q, c)
	if want := (Coord{Row: 3, Col: 3}); !ok || got != want {
		t.Errorf("Expected %v, got %v (ok=%v)", want, got, ok)
	}
}

func TestBestCoherenceMatchTieKeepsFirstScanned(t *testing.T) {
	c := NewConfig(1, 1, 1)
	flat := func() Pyramid {
		pyr := Pyramid{imageutil.NewFloatImage(6, 6, 1), imageutil.NewFloatImage(12, 12, 1)}
		for _, level := range pyr {
			for i := range level.Pix {
				level.Pix[i] = 0.5
			}
		}
		return pyr
	}
	a, err := NewPaddedImagePair(flat(), 1, c)
	if err != nil {
		t.Fatalf("NewPaddedImagePair: %v", err)
	}
	ap, err := NewPaddedImagePair(flat(), 1, c)
	if err != nil {
		t.Fatalf("NewPaddedImagePair: %v", err)
	}
	q := QueryPosition{Row: 2, Col: 2, Width: 12}

	// Every candidate of a flat source has the same descriptor, so all
	// three are at equal distance. References are scanned (1,1), (1,2),
	// (2,1); recording them in reverse checks that scan order decides.
	s := NewSynthesisMap(144)
	s.Set(q.Linear(2, 1), Coord{Row: 0, Col: 0}) // candidate (0, 1)
	s.Set(q.Linear(1, 2), Coord{Row: 7, Col: 3}) // candidate (8, 3)
	s.Set(q.Linear(1, 1), Coord{Row: 5, Col: 5}) // candidate (6, 6)

	query := make([]float64, c.DescriptorLen())
	got, ok := BestCoherenceMatch(a, ap, query, s, q, c)
	if want := (Coord{Row: 6, Col: 6}); !ok || got != want {
		t.Errorf("Expected first scanned candidate %v, got %v (ok=%v)", want, got, ok)
	}
}

func TestBestCoherenceMatchDeterministic(t *testing.T) {
	c := NewConfig(1, 2, 1)
	a, ap := coherenceFixture(t, c)
	q := QueryPosition{Row: 6, Col: 6, Width: 12}

	s := NewSynthesisMap(144)
	for i := 0; i < q.Linear(q.Row, q.Col); i++ {
		s.Set(i, Coord{Row: (i * 7) % 12, Col: (i * 5) % 12})
	}
	query := sourceDescriptor(a, ap, Coord{Row: 2, Col: 9}, c)

	first, firstOK := BestCoherenceMatch(a, ap, query, s, q, c)
	for i := 0; i < 3; i++ {
		got, ok := BestCoherenceMatch(a, ap, query, s, q, c)
		if got != first || ok != firstOK {
			t.Fatalf("Repeated search returned %v/%v then %v/%v", first, firstOK, got, ok)
		}
	}
}

func TestCoherenceCandidate(t *testing.T) {
	got := CoherenceCandidate(Coord{Row: 10, Col: 3}, Coord{Row: 4, Col: 6}, Coord{Row: 5, Col: 5})
	if want := (Coord{Row: 11, Col: 2}); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestBestCoherenceMatchQueryLength(t *testing.T) {
	c := NewConfig(1, 1, 1)
	a, ap := coherenceFixture(t, c)
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a short query")
		}
	}()
	BestCoherenceMatch(a, ap, []float64{1}, NewSynthesisMap(0),
		QueryPosition{Row: 1, Col: 1, Width: 12}, c)
}
