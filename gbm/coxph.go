package gbm

import (
	"math"

	"github.com/goml-dev/goboost/pkg/errors"
)

// coxPHDist implements the Cox proportional-hazards partial likelihood.
// Y holds survival times sorted in non-increasing order within each
// partition, so the risk set of row i is the prefix [0, i]; Misc holds
// the censoring indicator (1 = event observed, 0 = censored). The
// partial likelihood has no intercept, so InitF is zero.
type coxPHDist struct{}

func (*coxPHDist) name() Distribution { return CoxPH }

func (*coxPHDist) numClasses() int { return 1 }

func (*coxPHDist) validate(cfg *Config, d *Dataset) error {
	if d.Misc == nil {
		return errors.NewValidationError("Misc", "coxph requires a censoring indicator in Dataset.Misc", nil)
	}
	for _, m := range d.Misc {
		if m != 0 && m != 1 {
			return errors.NewValidationError("Misc", "censoring indicator must be 0 or 1", m)
		}
	}
	nTrain := cfg.nTrainOrAll(d)
	for i := 1; i < d.NumRows(); i++ {
		if i == nTrain {
			continue // partitions are scored with independent risk sets
		}
		if d.Y[i] > d.Y[i-1] {
			return errors.NewValidationError("Y", "coxph requires survival times sorted in non-increasing order within each partition", i)
		}
	}
	return nil
}

func (*coxPHDist) initF(d *Dataset) []float64 {
	return []float64{0}
}

// cumHazard fills haz[lo:hi] with the cumulative baseline-hazard
// estimate for each row, using only rows selected by include for the
// risk and event sums. haz[i] multiplies exp(F_i) in the gradient.
func (*coxPHDist) cumHazard(d *Dataset, f []float64, lo, hi int, include func(int) bool, haz []float64) {
	// Rows are ordered by decreasing time: the risk set of row i is the
	// prefix, events accumulate from the suffix.
	riskTot := make([]float64, hi-lo)
	tot := 0.0
	for i := lo; i < hi; i++ {
		if include(i) {
			tot += d.Weight[i] * math.Exp(f[i]+d.Offset[i])
		}
		riskTot[i-lo] = tot
	}
	cum := 0.0
	for i := hi - 1; i >= lo; i-- {
		if include(i) && d.Misc[i] == 1 && riskTot[i-lo] > 0 {
			cum += d.Weight[i] / riskTot[i-lo]
		}
		haz[i] = cum
	}
}

func (c *coxPHDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	haz := make([]float64, n)
	c.cumHazard(d, f, 0, n, func(i int) bool { return inBag[i] }, haz)
	for i := 0; i < n; i++ {
		z[i] = d.Misc[i] - math.Exp(f[i]+d.Offset[i])*haz[i]
	}
}

func (*coxPHDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	tot := 0.0
	for i := lo; i < hi; i++ {
		tot += d.Weight[i] * math.Exp(f[i]+d.Offset[i])
		if d.Misc[i] == 1 && tot > 0 {
			dL += d.Weight[i] * (f[i] + d.Offset[i] - math.Log(tot))
			dW += d.Weight[i]
		}
	}
	if dW == 0 {
		return 0
	}
	return -2 * dL / dW
}

func (c *coxPHDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	haz := make([]float64, n)
	c.cumHazard(d, f, 0, n, func(i int) bool { return inBag[i] }, haz)

	ls := newLeafSums(len(leaves))
	for i := 0; i < n; i++ {
		slot := assign[i]
		if inBag[i] {
			ls.num[slot] += d.Weight[i] * d.Misc[i]
			ls.den[slot] += d.Weight[i] * math.Exp(f[i]+d.Offset[i]) * haz[i]
		}
		ls.trackF(slot, f[i])
	}
	for slot, nodeIdx := range leaves {
		var pred float64
		switch {
		case ls.num[slot] == 0:
			pred = -predictionClamp
		case ls.den[slot] == 0:
			pred = 0
		default:
			pred = math.Log(ls.num[slot] / ls.den[slot])
		}
		t.Nodes[nodeIdx].Prediction = clampLogLinear(pred, ls.maxF[slot], ls.minF[slot])
	}
}

// oobPartialLik is the negative partial log-likelihood over the
// out-of-bag rows with out-of-bag risk sets.
func (*coxPHDist) oobPartialLik(d *Dataset, f, fadj []float64, inBag []bool, step float64, n int) (float64, float64) {
	loss, dW := 0.0, 0.0
	tot := 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		eta := f[i] + d.Offset[i] + step*fadj[i]
		tot += d.Weight[i] * math.Exp(eta)
		if d.Misc[i] == 1 && tot > 0 {
			loss -= d.Weight[i] * (eta - math.Log(tot))
			dW += d.Weight[i]
		}
	}
	return loss, dW
}

func (c *coxPHDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	before, dW := c.oobPartialLik(d, f, fadj, inBag, 0, n)
	after, _ := c.oobPartialLik(d, f, fadj, inBag, step, n)
	if dW == 0 {
		return 0
	}
	return (before - after) / dW
}
