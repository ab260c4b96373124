package gbm

import (
	"github.com/goml-dev/goboost/pkg/errors"
)

// quantileDist implements the pinball loss at quantile alpha. Leaf
// constants are weighted alpha-quantiles of the in-bag residuals.
type quantileDist struct {
	alpha float64
}

func (*quantileDist) name() Distribution { return Quantile }

func (*quantileDist) numClasses() int { return 1 }

func (q *quantileDist) validate(cfg *Config, d *Dataset) error {
	if q.alpha <= 0 || q.alpha >= 1 {
		return errors.NewValidationError("Alpha", "must be in (0, 1)", q.alpha)
	}
	return nil
}

func (q *quantileDist) initF(d *Dataset) []float64 {
	adj := make([]float64, d.NumRows())
	for i := range adj {
		adj[i] = d.Y[i] - d.Offset[i]
	}
	return []float64{weightedQuantile(q.alpha, adj, d.Weight)}
}

func (q *quantileDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		if d.Y[i]-d.Offset[i] > f[i] {
			z[i] = q.alpha
		} else {
			z[i] = q.alpha - 1
		}
	}
}

// pinball is the quantile check loss of residual u.
func (q *quantileDist) pinball(u float64) float64 {
	if u > 0 {
		return q.alpha * u
	}
	return (q.alpha - 1) * u
}

func (q *quantileDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		dL += d.Weight[i] * q.pinball(d.Y[i]-d.Offset[i]-f[i])
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (q *quantileDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	resid := make([][]float64, len(leaves))
	weights := make([][]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		resid[slot] = append(resid[slot], d.Y[i]-d.Offset[i]-f[i])
		weights[slot] = append(weights[slot], d.Weight[i])
	}
	for slot, nodeIdx := range leaves {
		if len(resid[slot]) == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = weightedQuantile(q.alpha, resid[slot], weights[slot])
	}
}

func (q *quantileDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		r := d.Y[i] - d.Offset[i] - f[i]
		ret += d.Weight[i] * (q.pinball(r) - q.pinball(r-step*fadj[i]))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
