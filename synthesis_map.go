package imganalogy

// SynthesisMap records, for every output pixel produced so far on the
// current level, the source pixel it was copied from. Keys are raster
// indices into the output level and are kept in insertion order. A key
// that was never set is absent, which is distinct from a pixel matched to
// source (0, 0).
//
// The synthesis driver is the only writer and sets each pixel before the
// coherence search of any later pixel reads it, so the map carries no lock.
type SynthesisMap struct {
	keys    []int
	sources []Coord
	present []bool
}

// NewSynthesisMap creates a map sized for an output level of n pixels.
func NewSynthesisMap(n int) *SynthesisMap {
	return &SynthesisMap{
		keys:    make([]int, 0, n),
		sources: make([]Coord, n),
		present: make([]bool, n),
	}
}

// Set records src as the source of output pixel i. Setting a pixel twice
// overwrites its source but keeps its original position in the order.
func (m *SynthesisMap) Set(i int, src Coord) {
	if i >= len(m.present) {
		m.sources = append(m.sources, make([]Coord, i+1-len(m.sources))...)
		m.present = append(m.present, make([]bool, i+1-len(m.present))...)
	}
	if !m.present[i] {
		m.keys = append(m.keys, i)
		m.present[i] = true
	}
	m.sources[i] = src
}

// Get returns the source of output pixel i and whether one was recorded.
func (m *SynthesisMap) Get(i int) (Coord, bool) {
	if m == nil || i < 0 || i >= len(m.present) || !m.present[i] {
		return Coord{}, false
	}
	return m.sources[i], true
}

// Indices returns the recorded output pixels in the order they were set.
func (m *SynthesisMap) Indices() []int {
	return append([]int{}, m.keys...)
}

// Iterate calls f for each recorded pixel in insertion order.
func (m *SynthesisMap) Iterate(f func(i int, src Coord)) {
	for _, k := range m.keys {
		f(k, m.sources[k])
	}
}

// Len returns the number of recorded pixels.
func (m *SynthesisMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Reset forgets every recorded pixel and resizes the map for an output
// level of n pixels.
func (m *SynthesisMap) Reset(n int) {
	m.keys = m.keys[:0]
	if cap(m.sources) < n {
		m.sources = make([]Coord, n)
		m.present = make([]bool, n)
		return
	}
	m.sources = m.sources[:n]
	m.present = m.present[:n]
	clear(m.sources)
	clear(m.present)
}
