package gbm

import (
	"math"

	"github.com/goml-dev/goboost/pkg/errors"
)

// pairwiseDist implements logistic pairwise ranking loss. Within each
// query group, every pair with unequal relevance contributes a logistic
// loss on the score difference; gradients are accumulated per row in
// the LambdaRank manner. Groups must be contiguous runs of equal ids
// and weights must be constant within a group.
type pairwiseDist struct {
	// hess caches per-row curvature from the last workingResponse
	// pass; the strategy instance is owned by a single fit call.
	hess []float64
}

func (*pairwiseDist) name() Distribution { return Pairwise }

func (*pairwiseDist) numClasses() int { return 1 }

func (*pairwiseDist) validate(cfg *Config, d *Dataset) error {
	if d.Group == nil {
		return errors.NewValidationError("Group", "pairwise requires group ids in Dataset.Group", nil)
	}
	seen := make(map[int]bool)
	for i := 0; i < d.NumRows(); {
		g := d.Group[i]
		if seen[g] {
			return errors.NewValidationError("Group", "group rows must be contiguous", g)
		}
		seen[g] = true
		w := d.Weight[i]
		j := i
		for j < d.NumRows() && d.Group[j] == g {
			if d.Weight[j] != w {
				return errors.NewValidationError("Weight", "weights must be constant within a group", g)
			}
			j++
		}
		i = j
	}
	return nil
}

func (*pairwiseDist) initF(d *Dataset) []float64 {
	return []float64{0}
}

// groupRanges yields the [start, end) runs of groups fully contained in
// [lo, hi).
func groupRanges(d *Dataset, lo, hi int, fn func(start, end int)) {
	i := lo
	for i < hi {
		g := d.Group[i]
		j := i
		for j < hi && d.Group[j] == g {
			j++
		}
		// Skip groups truncated by the partition boundary.
		if (i == lo && i > 0 && d.Group[i-1] == g) || (j == hi && j < d.NumRows() && d.Group[j] == g) {
			i = j
			continue
		}
		fn(i, j)
		i = j
	}
}

func (p *pairwiseDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	if p.hess == nil {
		p.hess = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		z[i] = 0
		p.hess[i] = 0
	}
	groupRanges(d, 0, n, func(start, end int) {
		for i := start; i < end; i++ {
			for j := i + 1; j < end; j++ {
				hiIdx, loIdx := i, j
				if d.Y[i] == d.Y[j] {
					continue
				}
				if d.Y[j] > d.Y[i] {
					hiIdx, loIdx = j, i
				}
				s := (f[hiIdx] + d.Offset[hiIdx]) - (f[loIdx] + d.Offset[loIdx])
				rho := 1 / (1 + math.Exp(s))
				z[hiIdx] += rho
				z[loIdx] -= rho
				h := rho * (1 - rho)
				p.hess[hiIdx] += h
				p.hess[loIdx] += h
			}
		}
	})
}

func (*pairwiseDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	groupRanges(d, lo, hi, func(start, end int) {
		w := d.Weight[start]
		for i := start; i < end; i++ {
			for j := i + 1; j < end; j++ {
				if d.Y[i] == d.Y[j] {
					continue
				}
				hiIdx, loIdx := i, j
				if d.Y[j] > d.Y[i] {
					hiIdx, loIdx = j, i
				}
				s := (f[hiIdx] + d.Offset[hiIdx]) - (f[loIdx] + d.Offset[loIdx])
				dL += w * softplus(-s)
				dW += w
			}
		}
	})
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (p *pairwiseDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		num[slot] += d.Weight[i] * z[i]
		den[slot] += d.Weight[i] * p.hess[i]
	}
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (*pairwiseDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	groupRanges(d, 0, n, func(start, end int) {
		w := d.Weight[start]
		for i := start; i < end; i++ {
			if inBag[i] {
				continue
			}
			for j := i + 1; j < end; j++ {
				if inBag[j] || d.Y[i] == d.Y[j] {
					continue
				}
				hiIdx, loIdx := i, j
				if d.Y[j] > d.Y[i] {
					hiIdx, loIdx = j, i
				}
				sOld := (f[hiIdx] + d.Offset[hiIdx]) - (f[loIdx] + d.Offset[loIdx])
				sNew := sOld + step*(fadj[hiIdx]-fadj[loIdx])
				ret += w * (softplus(-sOld) - softplus(-sNew))
				dW += w
			}
		}
	})
	if dW == 0 {
		return 0
	}
	return ret / dW
}
