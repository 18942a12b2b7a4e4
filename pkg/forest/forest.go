// Package forest implements a randomized forest of gini classification trees.
// Every tree is grown on a row sub-sample and considers a random subset of the
// features at each node.
package forest

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrEmptyDataset = errors.New("empty dataset")

type Config struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	RowSubsample    float64
	ColumnSubsample float64
	Seed            uint64

	// Workers bounds the number of trees grown concurrently, all cores when <= 0
	Workers int
}

func DefaultConfig() Config {
	return Config{
		NumTrees:        100,
		MaxDepth:        6,
		MinSamplesSplit: 2,
		RowSubsample:    0.8,
		ColumnSubsample: 0.8,
		Seed:            0,
	}
}

type Forest struct {
	Config
	NumFeatures int
	NumClasses  int
	Trees       []*Tree
}

// Fit grows the forest on x (rows are samples) and class codes y in [0, numClasses).
// The result only depends on the data and the configured seed.
func Fit(x mat.Matrix, y []int, numClasses int, config Config) (*Forest, error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyDataset
	}
	if rows != len(y) {
		return nil, fmt.Errorf("input has %d rows but %d targets", rows, len(y))
	}
	for i, class := range y {
		if class < 0 || class >= numClasses {
			return nil, fmt.Errorf("target %d at row %d outside [0, %d)", class, i, numClasses)
		}
	}
	if config.NumTrees <= 0 {
		return nil, fmt.Errorf("invalid number of trees %d", config.NumTrees)
	}

	f := &Forest{
		Config:      config,
		NumFeatures: cols,
		NumClasses:  numClasses,
		Trees:       make([]*Tree, config.NumTrees),
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range f.Trees {
		g.Go(func() error {
			f.Trees[i] = f.growTree(x, y, rows, uint64(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) growTree(x mat.Matrix, y []int, rows int, index uint64) *Tree {
	rng := rand.New(rand.NewPCG(f.Seed, index))
	sampleSize := int(f.RowSubsample * float64(rows))
	if sampleSize < 1 || sampleSize > rows {
		sampleSize = rows
	}
	sample := rng.Perm(rows)[:sampleSize]

	b := &treeBuilder{
		config:     f.Config,
		x:          x,
		y:          y,
		numClasses: f.NumClasses,
		totalRows:  sampleSize,
		rng:        rng,
		tree:       &Tree{},
	}
	b.build(sample, 0)
	return b.tree
}

// SplitCounts returns how many inner nodes split on each feature across all trees.
func (f *Forest) SplitCounts() []int {
	counts := make([]int, f.NumFeatures)
	for _, t := range f.Trees {
		for _, node := range t.Nodes {
			if !node.Leaf {
				counts[node.Feature]++
			}
		}
	}
	return counts
}

// GainImportances returns the impurity decrease attributed to each feature,
// normalized to sum to one. All zeros when no tree could split.
func (f *Forest) GainImportances() []float64 {
	importances := make([]float64, f.NumFeatures)
	for _, t := range f.Trees {
		for _, node := range t.Nodes {
			if !node.Leaf {
				importances[node.Feature] += node.Gain
			}
		}
	}
	if total := floats.Sum(importances); total > 0 {
		floats.Scale(1/total, importances)
	}
	return importances
}
