package gbm

import "math"

// bernoulliDist implements logistic log-loss for 0/1 responses.
type bernoulliDist struct{}

const bernoulliInitSteps = 6

func (*bernoulliDist) name() Distribution { return Bernoulli }

func (*bernoulliDist) numClasses() int { return 1 }

func (*bernoulliDist) validate(cfg *Config, d *Dataset) error {
	return checkBinaryResponse(d, Bernoulli)
}

func (*bernoulliDist) initF(d *Dataset) []float64 {
	hasOffset := false
	for _, o := range d.Offset {
		if o != 0 {
			hasOffset = true
			break
		}
	}

	if !hasOffset {
		num, den := 0.0, 0.0
		for i := 0; i < d.NumRows(); i++ {
			num += d.Weight[i] * d.Y[i]
			den += d.Weight[i] * (1 - d.Y[i])
		}
		switch {
		case num == 0:
			return []float64{-predictionClamp}
		case den == 0:
			return []float64{predictionClamp}
		default:
			return []float64{math.Log(num / den)}
		}
	}

	// With an offset the optimum has no closed form; a few Newton
	// steps on the intercept suffice.
	f0 := 0.0
	for step := 0; step < bernoulliInitSteps; step++ {
		num, den := 0.0, 0.0
		for i := 0; i < d.NumRows(); i++ {
			p := 1 / (1 + math.Exp(-(d.Offset[i] + f0)))
			num += d.Weight[i] * (d.Y[i] - p)
			den += d.Weight[i] * p * (1 - p)
		}
		if den == 0 {
			break
		}
		f0 += num / den
	}
	return []float64{f0}
}

func (*bernoulliDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		p := 1 / (1 + math.Exp(-(d.Offset[i] + f[i])))
		z[i] = d.Y[i] - p
	}
}

func (*bernoulliDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		eta := d.Offset[i] + f[i]
		dL += d.Weight[i] * (d.Y[i]*eta - softplus(eta))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return -2 * dL / dW
}

func (*bernoulliDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		num[slot] += d.Weight[i] * z[i]
		// p = y - z, so p(1-p) is recoverable without a second pass
		// over the fit.
		den[slot] += d.Weight[i] * (d.Y[i] - z[i]) * (1 - d.Y[i] + z[i])
	}
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (*bernoulliDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		eta := d.Offset[i] + f[i]
		delta := step * fadj[i]
		ret += d.Weight[i] * (d.Y[i]*delta - softplus(eta+delta) + softplus(eta))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
