package gbm

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/goml-dev/goboost/pkg/errors"
)

// tDist implements Student-t loss with df degrees of freedom, a robust
// alternative to squared error. The initial value has no closed form
// and is found by a short Newton iteration on the location; leaf
// constants are single Newton steps.
type tDist struct {
	df float64
}

const tDistInitSteps = 8

func (*tDist) name() Distribution { return TDist }

func (*tDist) numClasses() int { return 1 }

func (t *tDist) validate(cfg *Config, d *Dataset) error {
	if t.df <= 0 {
		return errors.NewValidationError("Df", "must be positive", t.df)
	}
	return nil
}

// psi is the negative gradient of the loss at residual u, psiPrime its
// derivative.
func (t *tDist) psi(u float64) float64 {
	return (t.df + 1) * u / (t.df + u*u)
}

func (t *tDist) psiPrime(u float64) float64 {
	den := t.df + u*u
	return (t.df + 1) * (t.df - u*u) / (den * den)
}

func (t *tDist) initF(d *Dataset) []float64 {
	adj := make([]float64, d.NumRows())
	for i := range adj {
		adj[i] = d.Y[i] - d.Offset[i]
	}
	mu := stat.Mean(adj, d.Weight)

	for step := 0; step < tDistInitSteps; step++ {
		num, den := 0.0, 0.0
		for i, v := range adj {
			u := v - mu
			num += d.Weight[i] * t.psi(u)
			den += d.Weight[i] * t.psiPrime(u)
		}
		if den <= 0 {
			break
		}
		mu += num / den
	}
	return []float64{mu}
}

func (t *tDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		z[i] = t.psi(d.Y[i] - d.Offset[i] - f[i])
	}
}

func (t *tDist) loss(u float64) float64 {
	return math.Log1p(u * u / t.df)
}

func (t *tDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		dL += d.Weight[i] * t.loss(d.Y[i]-d.Offset[i]-f[i])
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (t *tDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t2 *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		u := d.Y[i] - d.Offset[i] - f[i]
		num[slot] += d.Weight[i] * z[i]
		den[slot] += d.Weight[i] * t.psiPrime(u)
	}
	for slot, nodeIdx := range leaves {
		if den[slot] <= 0 {
			t2.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t2.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (t *tDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		u := d.Y[i] - d.Offset[i] - f[i]
		ret += d.Weight[i] * (t.loss(u) - t.loss(u-step*fadj[i]))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
