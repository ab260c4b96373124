package gbm

import (
	"math/rand/v2"
	"sort"
)

// Node is one entry in a tree's node arena. Child references are
// indices into the same arena (-1 marks a terminal node), so ownership
// is single and the structure is acyclic by construction.
type Node struct {
	// SplitFeature and Threshold describe an internal node's split;
	// SplitFeature is -1 on terminal nodes.
	SplitFeature int
	Threshold    float64
	LeftChild    int
	RightChild   int

	// Prediction is the fitted constant of a terminal node.
	Prediction float64

	// Weight and Count record the in-bag mass that reached the node.
	Weight float64
	Count  int

	// Improvement is the split's weighted reduction in squared error,
	// accumulated into the variable-importance totals.
	Improvement float64
}

// IsLeaf reports whether the node is terminal.
func (n *Node) IsLeaf() bool { return n.LeftChild == -1 }

// Tree is a single regression tree stored as a node arena rooted at
// index 0.
type Tree struct {
	Nodes []Node
}

// PredictRow traverses the tree for one feature vector and returns the
// terminal prediction.
func (t *Tree) PredictRow(row []float64) float64 {
	return t.Nodes[t.leafIndex(row)].Prediction
}

// leafIndex returns the arena index of the terminal node row falls in.
func (t *Tree) leafIndex(row []float64) int {
	idx := 0
	for !t.Nodes[idx].IsLeaf() {
		if row[t.Nodes[idx].SplitFeature] <= t.Nodes[idx].Threshold {
			idx = t.Nodes[idx].LeftChild
		} else {
			idx = t.Nodes[idx].RightChild
		}
	}
	return idx
}

// treeBuilder grows one regression tree per boosting iteration from the
// in-bag working response.
type treeBuilder struct {
	d         *Dataset
	z         []float64
	inBag     []bool
	nTrain    int
	minObs    int
	mFeatures int
	monotone  []int
	rng       *rand.Rand
}

// splitResult describes the best candidate split found for one node.
type splitResult struct {
	feature     int
	threshold   float64
	improvement float64
	found       bool
}

// openLeaf is a terminal node still eligible for splitting, with its
// in-bag rows and pre-evaluated best split.
type openLeaf struct {
	node int
	obs  []int
	best splitResult
}

// grow builds the tree with at most maxSplits splits. It returns the
// tree, the row -> terminal-slot assignment for the whole training
// partition, and the slot -> arena-index list handed to the
// distribution's constant fitting.
func (tb *treeBuilder) grow(maxSplits int) (*Tree, []int, []int) {
	var rootObs []int
	for i := 0; i < tb.nTrain; i++ {
		if tb.inBag[i] {
			rootObs = append(rootObs, i)
		}
	}

	t := &Tree{}
	t.Nodes = append(t.Nodes, tb.makeLeaf(rootObs))

	open := []openLeaf{{node: 0, obs: rootObs, best: tb.bestSplit(rootObs)}}

	for split := 0; split < maxSplits; split++ {
		// Best-first: expand the open leaf with the largest
		// improvement; ties go to the earliest-created leaf.
		bestIdx := -1
		for li, leaf := range open {
			if !leaf.best.found {
				continue
			}
			if bestIdx == -1 || leaf.best.improvement > open[bestIdx].best.improvement {
				bestIdx = li
			}
		}
		if bestIdx == -1 {
			break
		}

		leaf := open[bestIdx]
		open = append(open[:bestIdx], open[bestIdx+1:]...)

		var leftObs, rightObs []int
		for _, i := range leaf.obs {
			if tb.d.At(i, leaf.best.feature) <= leaf.best.threshold {
				leftObs = append(leftObs, i)
			} else {
				rightObs = append(rightObs, i)
			}
		}

		leftIdx := len(t.Nodes)
		t.Nodes = append(t.Nodes, tb.makeLeaf(leftObs))
		rightIdx := len(t.Nodes)
		t.Nodes = append(t.Nodes, tb.makeLeaf(rightObs))

		n := &t.Nodes[leaf.node]
		n.SplitFeature = leaf.best.feature
		n.Threshold = leaf.best.threshold
		n.Improvement = leaf.best.improvement
		n.LeftChild = leftIdx
		n.RightChild = rightIdx

		open = append(open,
			openLeaf{node: leftIdx, obs: leftObs, best: tb.bestSplit(leftObs)},
			openLeaf{node: rightIdx, obs: rightObs, best: tb.bestSplit(rightObs)},
		)
	}

	// Slot numbering follows arena order so it is stable under replay.
	var leaves []int
	slotOf := make([]int, len(t.Nodes))
	for idx := range t.Nodes {
		if t.Nodes[idx].IsLeaf() {
			slotOf[idx] = len(leaves)
			leaves = append(leaves, idx)
		}
	}

	assign := make([]int, tb.nTrain)
	for i := 0; i < tb.nTrain; i++ {
		assign[i] = slotOf[t.leafIndex(tb.d.Row(i))]
	}

	return t, assign, leaves
}

// makeLeaf builds a terminal node predicting the weighted mean working
// response of its rows.
func (tb *treeBuilder) makeLeaf(obs []int) Node {
	wSum, zSum := 0.0, 0.0
	for _, i := range obs {
		wSum += tb.d.Weight[i]
		zSum += tb.d.Weight[i] * tb.z[i]
	}
	pred := 0.0
	if wSum > 0 {
		pred = zSum / wSum
	}
	return Node{
		SplitFeature: -1,
		LeftChild:    -1,
		RightChild:   -1,
		Prediction:   pred,
		Weight:       wSum,
		Count:        len(obs),
	}
}

// candidateFeatures returns the features scanned at one node, sorted
// ascending. When the subsample size is smaller than the feature count
// a fresh uniform subset is drawn for every node, independently of the
// row bagging.
func (tb *treeBuilder) candidateFeatures() []int {
	p := tb.d.NumFeatures()
	if tb.mFeatures == 0 || tb.mFeatures >= p {
		feats := make([]int, p)
		for j := range feats {
			feats[j] = j
		}
		return feats
	}
	perm := make([]int, p)
	for j := range perm {
		perm[j] = j
	}
	for j := 0; j < tb.mFeatures; j++ {
		k := j + tb.rng.IntN(p-j)
		perm[j], perm[k] = perm[k], perm[j]
	}
	feats := perm[:tb.mFeatures]
	sort.Ints(feats)
	return feats
}

// bestSplit scans the candidate features for the split maximizing the
// weighted squared-error reduction of the working response, honoring
// the minimum-observation and monotonicity constraints. Ties break
// toward the earliest candidate in feature-then-threshold scan order.
func (tb *treeBuilder) bestSplit(obs []int) splitResult {
	best := splitResult{found: false}
	if len(obs) < 2*tb.minObs {
		return best
	}

	wTot, sTot := 0.0, 0.0
	for _, i := range obs {
		wTot += tb.d.Weight[i]
		sTot += tb.d.Weight[i] * tb.z[i]
	}

	order := make([]int, len(obs))
	for _, feature := range tb.candidateFeatures() {
		copy(order, obs)
		f := feature
		sort.Slice(order, func(a, b int) bool {
			va, vb := tb.d.At(order[a], f), tb.d.At(order[b], f)
			if va != vb {
				return va < vb
			}
			return order[a] < order[b]
		})

		mono := 0
		if tb.monotone != nil {
			mono = tb.monotone[f]
		}

		wL, sL := 0.0, 0.0
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			wL += tb.d.Weight[i]
			sL += tb.d.Weight[i] * tb.z[i]

			v, vNext := tb.d.At(i, f), tb.d.At(order[k+1], f)
			if v == vNext {
				continue
			}
			cL, cR := k+1, len(order)-k-1
			if cL < tb.minObs || cR < tb.minObs {
				continue
			}
			wR := wTot - wL
			if wL <= 0 || wR <= 0 {
				continue
			}
			meanL := sL / wL
			meanR := (sTot - sL) / wR
			if mono != 0 && float64(mono)*(meanR-meanL) < 0 {
				continue
			}
			diff := meanL - meanR
			improvement := wL * wR * diff * diff / (wL + wR)
			// Strict comparison: equally good splits keep the first
			// one in scan order.
			if improvement > best.improvement {
				best = splitResult{
					feature:     f,
					threshold:   (v + vNext) / 2,
					improvement: improvement,
					found:       true,
				}
			}
		}
	}
	return best
}
