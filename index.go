package imganalogy

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"log/slog"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IndexParams controls how a level index is built and how much effort each
// query may spend.
type IndexParams struct {
	// Checks bounds the number of descriptor distance evaluations per
	// query. Zero or less searches exhaustively. Queries equal to an
	// indexed row never spend checks. Descriptors with few distinct values
	// per element tie on many splits and need a larger budget.
	Checks int
	// Trees is the number of randomised kd-trees.
	Trees int
	// Seed drives the axis permutation of every tree after the first.
	Seed int64
}

// Shape records the dimensions of a level's descriptor array.
type Shape struct {
	Rows, Cols int
}

// Index answers approximate nearest neighbour queries over the rows of one
// level's combined descriptor array. It is read-only after construction
// and safe for concurrent queries.
type Index struct {
	desc   *mat.Dense
	forest *forest

	// exact maps the hash of a descriptor to the rows holding it, lowest
	// row first.
	seed  maphash.Seed
	exact map[uint64][]int
}

// NewIndex builds a kd-tree forest over the rows of desc. Every row is a
// point in descriptor space; query results are row numbers of desc.
func NewIndex(desc *mat.Dense, p IndexParams) (*Index, error) {
	if desc == nil || desc.IsEmpty() {
		return nil, fmt.Errorf("%w: no descriptors to index", ErrEmptyPyramid)
	}
	rows, _ := desc.Dims()
	idx := &Index{
		desc:   desc,
		forest: buildForest(desc, max(p.Trees, 1), p.Seed),
		seed:   maphash.MakeSeed(),
		exact:  make(map[uint64][]int, rows),
	}
	for i := 0; i < rows; i++ {
		k := descriptorKey(idx.seed, desc.RawRowView(i))
		idx.exact[k] = append(idx.exact[k], i)
	}
	return idx, nil
}

// exactMatch returns the lowest row equal to query element for element.
func (idx *Index) exactMatch(query []float64) (int, bool) {
	for _, row := range idx.exact[descriptorKey(idx.seed, query)] {
		if floats.Equal(idx.desc.RawRowView(row), query) {
			return row, true
		}
	}
	return 0, false
}

// descriptorKey hashes the bit patterns of v. Zeros of either sign hash
// alike.
func descriptorKey(seed maphash.Seed, v []float64) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var buf [8]byte
	for _, x := range v {
		if x == 0 {
			x = 0
		}
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(x))
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Len is the number of indexed descriptors.
func (idx *Index) Len() int {
	rows, _ := idx.desc.Dims()
	return rows
}

// Dims is the descriptor width.
func (idx *Index) Dims() int {
	_, cols := idx.desc.Dims()
	return cols
}

// Shape returns the dimensions of the indexed descriptor array.
func (idx *Index) Shape() Shape {
	rows, cols := idx.desc.Dims()
	return Shape{Rows: rows, Cols: cols}
}

// Descriptor returns row i of the indexed descriptor array. The slice
// aliases the index and must not be modified.
func (idx *Index) Descriptor(i int) []float64 {
	return idx.desc.RawRowView(i)
}

// CreateIndex computes full descriptors for the unfiltered pyramid a and
// causal half descriptors for the filtered pyramid ap, joins them column
// wise per level and indexes every level above 0. The returned slices are
// aligned with pyramid levels and their level 0 entries are zero: synthesis
// of level 0 does not use an index.
//
// Levels have no dependency on each other and are built concurrently.
func CreateIndex(a, ap Pyramid, c Config) ([]*Index, []IndexParams, []Shape, error) {
	if err := sameShape(a, ap); err != nil {
		return nil, nil, nil, err
	}
	aFeat, err := ComputeFeatureArray(a, c, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("unfiltered features: %w", err)
	}
	apFeat, err := ComputeFeatureArray(ap, c, false)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("filtered features: %w", err)
	}

	levels := len(a)
	indices := make([]*Index, levels)
	params := make([]IndexParams, levels)
	shapes := make([]Shape, levels)

	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for level := 1; level < levels; level++ {
		g.Go(func() error {
			slog.Info("building index", "level", level, "of", levels-1)

			desc := joinColumns(aFeat[level], apFeat[level])
			p := c.IndexParams()
			p.Seed += int64(level)

			idx, err := NewIndex(desc, p)
			if err != nil {
				return fmt.Errorf("level %d: %w", level, err)
			}
			indices[level], params[level], shapes[level] = idx, p, idx.Shape()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return indices, params, shapes, nil
}

// joinColumns returns [left | right]; both must have the same row count.
func joinColumns(left, right *mat.Dense) *mat.Dense {
	rows, lc := left.Dims()
	_, rc := right.Dims()
	out := mat.NewDense(rows, lc+rc, nil)
	out.Augment(left, right)
	return out
}

// BestApproximateMatch returns the row of idx whose descriptor is nearest
// to query, searching with the effort allowed by p.Checks. A query equal to
// one or more indexed rows returns the lowest of them. The caller turns the
// row into (row/width, row%width).
//
// A nil or empty index, or a query whose length differs from the indexed
// descriptor width, is a caller bug and panics.
func BestApproximateMatch(idx *Index, p IndexParams, query []float64) int {
	if idx == nil {
		panic("imganalogy: approximate match against a nil index (level 0 has no index)")
	}
	if len(query) != idx.Dims() {
		panic(fmt.Sprintf("imganalogy: query has %d values, index expects %d",
			len(query), idx.Dims()))
	}
	if row, ok := idx.exactMatch(query); ok {
		return row
	}
	row, _ := idx.forest.nearest(query, p.Checks)
	if row < 0 {
		panic("imganalogy: approximate match found no descriptor")
	}
	return row
}
