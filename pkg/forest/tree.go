package forest

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Node is a tree node. Inner nodes send rows with Feature <= Threshold to Left
// and record the weighted impurity decrease of their split in Gain.
type Node struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Gain      float64
	Samples   int
}

type Tree struct {
	Nodes []Node
}

type treeBuilder struct {
	config     Config
	x          mat.Matrix
	y          []int
	numClasses int
	totalRows  int
	rng        *rand.Rand
	tree       *Tree
}

func (b *treeBuilder) build(rows []int, depth int) int {
	counts := b.classCounts(rows)
	index := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Samples: len(rows)})

	if depth >= b.config.MaxDepth || len(rows) < b.config.MinSamplesSplit || isPure(counts) {
		b.makeLeaf(index)
		return index
	}

	s, ok := b.bestSplit(rows, counts)
	if !ok {
		b.makeLeaf(index)
		return index
	}

	var left, right []int
	for _, row := range rows {
		if b.x.At(row, s.feature) <= s.threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	leftIndex := b.build(left, depth+1)
	rightIndex := b.build(right, depth+1)

	b.tree.Nodes[index] = Node{
		Feature:   s.feature,
		Threshold: s.threshold,
		Left:      leftIndex,
		Right:     rightIndex,
		Gain:      s.gain * float64(len(rows)) / float64(b.totalRows),
		Samples:   len(rows),
	}
	return index
}

func (b *treeBuilder) makeLeaf(index int) {
	b.tree.Nodes[index].Leaf = true
}

type split struct {
	feature   int
	threshold float64
	gain      float64
}

func (b *treeBuilder) bestSplit(rows []int, counts []float64) (split, bool) {
	_, numFeatures := b.x.Dims()
	candidates := b.sampleFeatures(numFeatures)
	parentImpurity := gini(counts, float64(len(rows)))

	best := split{gain: minGain}
	found := false
	sorted := make([]int, len(rows))
	for _, feature := range candidates {
		copy(sorted, rows)
		sort.SliceStable(sorted, func(i, j int) bool {
			return lessNaNLast(b.x.At(sorted[i], feature), b.x.At(sorted[j], feature))
		})

		leftCounts := make([]float64, b.numClasses)
		rightCounts := make([]float64, b.numClasses)
		copy(rightCounts, counts)
		n := float64(len(sorted))
		for i := 0; i < len(sorted)-1; i++ {
			leftCounts[b.y[sorted[i]]]++
			rightCounts[b.y[sorted[i]]]--

			current := b.x.At(sorted[i], feature)
			next := b.x.At(sorted[i+1], feature)
			if math.IsNaN(next) {
				break
			}
			if current == next {
				continue
			}
			nLeft := float64(i + 1)
			nRight := n - nLeft
			gain := parentImpurity - (nLeft/n)*gini(leftCounts, nLeft) - (nRight/n)*gini(rightCounts, nRight)
			if gain > best.gain {
				best = split{feature: feature, threshold: current + (next-current)/2, gain: gain}
				found = true
			}
		}
	}
	return best, found
}

func (b *treeBuilder) sampleFeatures(numFeatures int) []int {
	count := int(math.Ceil(b.config.ColumnSubsample * float64(numFeatures)))
	if count < 1 {
		count = 1
	}
	if count > numFeatures {
		count = numFeatures
	}
	return b.rng.Perm(numFeatures)[:count]
}

func (b *treeBuilder) classCounts(rows []int) []float64 {
	counts := make([]float64, b.numClasses)
	for _, row := range rows {
		counts[b.y[row]]++
	}
	return counts
}

// minGain keeps floating point noise from producing splits on pure nodes.
const minGain = 1e-12

func gini(counts []float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := c / total
		impurity -= p * p
	}
	return impurity
}

func isPure(counts []float64) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func lessNaNLast(a, b float64) bool {
	if math.IsNaN(a) {
		return false
	}
	if math.IsNaN(b) {
		return true
	}
	return a < b
}
