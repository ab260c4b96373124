package gbm

import (
	"math"

	"github.com/goml-dev/goboost/pkg/errors"
)

// poissonDist implements log-linear count loss. Leaf constants are
// log(sum w·y / sum w·exp(F)) with the degenerate-leaf fallbacks and
// the ±19 linear-predictor clamp required for compatibility: a leaf
// whose numerator is zero would otherwise be -Inf.
type poissonDist struct{}

func (*poissonDist) name() Distribution { return Poisson }

func (*poissonDist) numClasses() int { return 1 }

func (*poissonDist) validate(cfg *Config, d *Dataset) error {
	for _, y := range d.Y {
		if y < 0 {
			return errors.NewValidationError("Y", "response must be non-negative for poisson", y)
		}
	}
	return nil
}

func (*poissonDist) initF(d *Dataset) []float64 {
	num, den := 0.0, 0.0
	for i := 0; i < d.NumRows(); i++ {
		num += d.Weight[i] * d.Y[i]
		den += d.Weight[i] * math.Exp(d.Offset[i])
	}
	if num == 0 || den == 0 {
		return []float64{-predictionClamp}
	}
	return []float64{math.Log(num / den)}
}

func (*poissonDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		z[i] = d.Y[i] - math.Exp(f[i]+d.Offset[i])
	}
}

func (*poissonDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		eta := f[i] + d.Offset[i]
		dL += d.Weight[i] * (d.Y[i]*eta - math.Exp(eta))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return -2 * dL / dW
}

func (*poissonDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	ls := newLeafSums(len(leaves))
	for i := 0; i < n; i++ {
		slot := assign[i]
		if inBag[i] {
			ls.num[slot] += d.Weight[i] * d.Y[i]
			ls.den[slot] += d.Weight[i] * math.Exp(f[i]+d.Offset[i])
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

func (*poissonDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		eta := f[i] + d.Offset[i]
		delta := step * fadj[i]
		ret += d.Weight[i] * (d.Y[i]*delta - math.Exp(eta+delta) + math.Exp(eta))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
