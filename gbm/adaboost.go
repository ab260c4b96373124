package gbm

import "math"

// adaBoostDist implements the exponential loss exp(-(2y-1)F) for 0/1
// responses.
type adaBoostDist struct{}

func (*adaBoostDist) name() Distribution { return AdaBoost }

func (*adaBoostDist) numClasses() int { return 1 }

func (*adaBoostDist) validate(cfg *Config, d *Dataset) error {
	return checkBinaryResponse(d, AdaBoost)
}

func (*adaBoostDist) initF(d *Dataset) []float64 {
	num, den := 0.0, 0.0
	for i := 0; i < d.NumRows(); i++ {
		num += d.Weight[i] * d.Y[i] * math.Exp(-d.Offset[i])
		den += d.Weight[i] * (1 - d.Y[i]) * math.Exp(d.Offset[i])
	}
	switch {
	case num == 0:
		return []float64{-predictionClamp}
	case den == 0:
		return []float64{predictionClamp}
	default:
		return []float64{0.5 * math.Log(num/den)}
	}
}

func (*adaBoostDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		m := 2*d.Y[i] - 1
		z[i] = m * math.Exp(-m*(d.Offset[i]+f[i]))
	}
}

func (*adaBoostDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		m := 2*d.Y[i] - 1
		dL += d.Weight[i] * math.Exp(-m*(d.Offset[i]+f[i]))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (*adaBoostDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		m := 2*d.Y[i] - 1
		e := math.Exp(-m * (d.Offset[i] + f[i]))
		num[slot] += d.Weight[i] * m * e
		den[slot] += d.Weight[i] * e
	}
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (*adaBoostDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		m := 2*d.Y[i] - 1
		eta := d.Offset[i] + f[i]
		ret += d.Weight[i] * (math.Exp(-m*eta) - math.Exp(-m*(eta+step*fadj[i])))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
