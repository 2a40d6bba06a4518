package imganalogy

import (
	"container/heap"
	"math"
	"math/bits"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"
)

// descriptorPoint is one descriptor row as seen by one tree of a forest.
// The tree splits on axes[0], axes[1], ... in turn, so Dims reports the
// number of split axes rather than the descriptor width.
type descriptorPoint struct {
	row  int
	vec  []float64
	axes []int
}

func (p descriptorPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	axis := p.axes[d]
	return p.vec[axis] - c.(descriptorPoint).vec[axis]
}

func (p descriptorPoint) Dims() int { return len(p.axes) }

func (p descriptorPoint) Distance(c kdtree.Comparable) float64 {
	return squaredDistance(p.vec, c.(descriptorPoint).vec)
}

// descriptorPoints satisfies kdtree.Interface.
type descriptorPoints []descriptorPoint

func (p descriptorPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p descriptorPoints) Len() int                      { return len(p) }
func (p descriptorPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot sorts p along d and returns the middle position, so every point
// left of it is <= the pivot on d and every point right of it is >=.
// Sorting keeps the tree shape a function of the rows alone.
func (p descriptorPoints) Pivot(d kdtree.Dim) int {
	sort.Sort(descriptorPlane{points: p, dim: d})
	return len(p) / 2
}

type descriptorPlane struct {
	points descriptorPoints
	dim    kdtree.Dim
}

func (p descriptorPlane) Len() int { return len(p.points) }
func (p descriptorPlane) Less(i, j int) bool {
	return p.points[i].Compare(p.points[j], p.dim) < 0
}
func (p descriptorPlane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }

// forest is a set of kd-trees over the same descriptor rows, each splitting
// on its own ordering of the highest variance axes.
type forest struct {
	trees []*kdtree.Tree
	axes  [][]int
}

// buildForest builds trees kd-trees over the rows of desc. The first tree
// splits on axes by decreasing variance; the others split on random
// permutations of the same high variance axes.
func buildForest(desc *mat.Dense, trees int, seed int64) *forest {
	rows, _ := desc.Dims()
	ranked := chooseSplitAxes(desc, bits.Len(uint(rows))+4)
	rng := rand.New(rand.NewSource(seed))

	f := &forest{}
	for t := 0; t < trees; t++ {
		axes := append([]int(nil), ranked...)
		if t > 0 {
			rng.Shuffle(len(axes), func(i, j int) { axes[i], axes[j] = axes[j], axes[i] })
		}
		points := make(descriptorPoints, rows)
		for i := range points {
			points[i] = descriptorPoint{row: i, vec: desc.RawRowView(i), axes: axes}
		}
		f.trees = append(f.trees, kdtree.New(points, false))
		f.axes = append(f.axes, axes)
	}
	return f
}

// chooseSplitAxes returns up to n descriptor axes ordered by decreasing
// variance. Constant axes are kept last so that a descriptor with no
// variation at all still has an axis to split on.
func chooseSplitAxes(desc *mat.Dense, n int) []int {
	rows, cols := desc.Dims()
	variance := make([]float64, cols)
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, desc)
		variance[j] = stat.Variance(col, nil)
		if math.IsNaN(variance[j]) {
			variance[j] = 0
		}
	}

	axes := make([]int, cols)
	for j := range axes {
		axes[j] = j
	}
	sort.SliceStable(axes, func(i, j int) bool {
		return variance[axes[i]] > variance[axes[j]]
	})
	return axes[:min(n, cols)]
}

// branch is an unexplored subtree together with a lower bound on the
// squared distance from the query to any point inside it.
type branch struct {
	node  *kdtree.Node
	tree  int
	bound float64
}

// branchQueue is a min-heap of branches keyed by bound.
type branchQueue []branch

func (q branchQueue) Len() int            { return len(q) }
func (q branchQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q branchQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *branchQueue) Push(x interface{}) { *q = append(*q, x.(branch)) }
func (q *branchQueue) Pop() interface{} {
	old := *q
	b := old[len(old)-1]
	*q = old[:len(old)-1]
	return b
}

// nearest runs a best-bin-first search over every tree of the forest and
// returns the row of the closest descriptor found together with its squared
// distance; equal distances keep the lower row. The search stops after
// checks distance evaluations; checks <= 0 lets it run until every
// remaining branch is provably farther than the best match, which makes
// the result exact.
//
// A query equal to the split value descends left and leaves the right
// subtree queued with bound 0. On heavily quantized descriptors many
// splits tie, so a small checks budget may end before those subtrees are
// visited.
func (f *forest) nearest(query []float64, checks int) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	evaluated := 0
	exhausted := func() bool { return checks > 0 && evaluated >= checks }

	pq := make(branchQueue, 0, 4*len(f.trees))
	for t, tree := range f.trees {
		if tree.Root != nil {
			pq = append(pq, branch{node: tree.Root, tree: t})
		}
	}
	heap.Init(&pq)

	for pq.Len() > 0 && !exhausted() {
		b := heap.Pop(&pq).(branch)
		if b.bound > bestDist {
			break
		}
		q := descriptorPoint{vec: query, axes: f.axes[b.tree]}

		for n := b.node; n != nil && !exhausted(); {
			p := n.Point.(descriptorPoint)
			dist := squaredDistance(p.vec, query)
			evaluated++
			if dist < bestDist || (dist == bestDist && p.row < best) {
				best, bestDist = p.row, dist
			}

			// Points equal to the split value may sit on either side
			diff := q.Compare(p, n.Plane)
			near, far := n.Left, n.Right
			if diff > 0 {
				near, far = n.Right, n.Left
			}
			if far != nil && diff*diff <= bestDist {
				heap.Push(&pq, branch{node: far, tree: b.tree, bound: diff * diff})
			}
			n = near
		}
	}
	return best, bestDist
}

// squaredDistance is the unweighted squared Euclidean distance between two
// equal length vectors.
func squaredDistance(p, q []float64) float64 {
	var sum float64
	for i, v := range p {
		d := v - q[i]
		sum += d * d
	}
	return sum
}
