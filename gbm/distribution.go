package gbm

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/goml-dev/goboost/pkg/errors"
)

// predictionClamp bounds the linear predictor of log-linear losses,
// matching the bound the R gbm package uses.
const predictionClamp = 19.0

// distribution is the loss-family strategy. All methods that touch the
// running fit take the per-class fit slices fs (length 1 except for
// Multinomial) so that softmax-style losses can see every class score.
//
// workingResponse, fitBestConstant and bagImprovement operate on the
// training partition [0, n); deviance evaluates an arbitrary index
// range so train and validation partitions can be scored disjointly.
type distribution interface {
	name() Distribution

	// numClasses returns the trees fitted per iteration (1 for all
	// losses except Multinomial).
	numClasses() int

	// validate rejects malformed loss-specific configuration before
	// any iteration runs.
	validate(cfg *Config, d *Dataset) error

	// initF returns the per-class constant minimizing total loss
	// before any trees are added.
	initF(d *Dataset) []float64

	// workingResponse fills z[0:n] with the negative loss gradient of
	// class with respect to the current fit. Losses with cross-row
	// structure (CoxPH risk sets) restrict their sums to in-bag rows.
	workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int)

	// deviance returns the average loss over rows [lo, hi).
	deviance(d *Dataset, fs [][]float64, lo, hi int) float64

	// fitBestConstant overwrites each terminal node's prediction with
	// the loss-minimizing constant computed from in-bag rows assigned
	// to it. assign maps row -> terminal slot, leaves maps slot ->
	// node index in t.
	fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int)

	// bagImprovement estimates the loss reduction on out-of-bag rows
	// if fadj (the new tree's raw contribution for class) were applied
	// at the given step size. Diagnostics only.
	bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64
}

// newDistribution builds the strategy for cfg.Distribution.
func newDistribution(cfg *Config) (distribution, error) {
	switch cfg.Distribution {
	case Gaussian, "":
		return &gaussianDist{}, nil
	case Laplace:
		return &laplaceDist{}, nil
	case TDist:
		return &tDist{df: cfg.Df}, nil
	case Bernoulli:
		return &bernoulliDist{}, nil
	case Huberized:
		return &huberizedDist{}, nil
	case Multinomial:
		return &multinomialDist{k: cfg.NumClasses}, nil
	case AdaBoost:
		return &adaBoostDist{}, nil
	case Poisson:
		return &poissonDist{}, nil
	case CoxPH:
		return &coxPHDist{}, nil
	case Quantile:
		return &quantileDist{alpha: cfg.Alpha}, nil
	case Pairwise:
		return &pairwiseDist{}, nil
	default:
		return nil, errors.NewValidationError("Distribution", "unknown distribution", string(cfg.Distribution))
	}
}

// ===========================================================================
//
//	shared numeric helpers
//
// ===========================================================================

// weightedQuantile returns the weighted p-quantile of values.
func weightedQuantile(p float64, values, weights []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	sv := make([]float64, n)
	sw := make([]float64, n)
	for pos, i := range idx {
		sv[pos] = values[i]
		sw[pos] = weights[i]
	}
	return stat.Quantile(p, stat.Empirical, sv, sw)
}

// weightedMedian returns the weighted median of values.
func weightedMedian(values, weights []float64) float64 {
	return weightedQuantile(0.5, values, weights)
}

// softplus computes log(1+exp(x)) without overflow.
func softplus(x float64) float64 {
	if x > 35 {
		return x
	}
	if x < -35 {
		return 0
	}
	return math.Log1p(math.Exp(x))
}

// clampLogLinear bounds a leaf prediction so the resulting linear
// predictor stays within ±predictionClamp, given the extreme fits
// already present in the leaf.
func clampLogLinear(pred, maxF, minF float64) float64 {
	pred = math.Min(pred, predictionClamp-maxF)
	pred = math.Max(pred, -predictionClamp-minF)
	return pred
}

// leafSums accumulates per-terminal-node statistics during constant
// fitting: numerator/denominator sums over in-bag rows plus the max and
// min existing fit over all training rows in the node.
type leafSums struct {
	num, den   []float64
	maxF, minF []float64
}

func newLeafSums(k int) *leafSums {
	ls := &leafSums{
		num:  make([]float64, k),
		den:  make([]float64, k),
		maxF: make([]float64, k),
		minF: make([]float64, k),
	}
	for i := 0; i < k; i++ {
		ls.maxF[i] = math.Inf(-1)
		ls.minF[i] = math.Inf(1)
	}
	return ls
}

func (ls *leafSums) trackF(slot int, f float64) {
	if f > ls.maxF[slot] {
		ls.maxF[slot] = f
	}
	if f < ls.minF[slot] {
		ls.minF[slot] = f
	}
}

// checkBinaryResponse validates a 0/1 response vector.
func checkBinaryResponse(d *Dataset, dist Distribution) error {
	for _, y := range d.Y {
		if y != 0 && y != 1 {
			return errors.NewValidationError("Y", "response must be 0 or 1 for "+string(dist), y)
		}
	}
	return nil
}
