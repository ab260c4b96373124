package gbm

// gaussianDist implements squared-error loss. The working response is
// the plain residual and every leaf constant is the weighted residual
// mean.
type gaussianDist struct{}

func (*gaussianDist) name() Distribution { return Gaussian }

func (*gaussianDist) numClasses() int { return 1 }

func (*gaussianDist) validate(cfg *Config, d *Dataset) error { return nil }

func (*gaussianDist) initF(d *Dataset) []float64 {
	num, den := 0.0, 0.0
	for i := 0; i < d.NumRows(); i++ {
		num += d.Weight[i] * (d.Y[i] - d.Offset[i])
		den += d.Weight[i]
	}
	if den == 0 {
		return []float64{0}
	}
	return []float64{num / den}
}

func (*gaussianDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		z[i] = d.Y[i] - d.Offset[i] - f[i]
	}
}

func (*gaussianDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		r := d.Y[i] - d.Offset[i] - f[i]
		dL += d.Weight[i] * r * r
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (*gaussianDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		num[slot] += d.Weight[i] * z[i]
		den[slot] += d.Weight[i]
	}
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (*gaussianDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		delta := step * fadj[i]
		r := d.Y[i] - d.Offset[i] - f[i]
		// (r)^2 - (r-delta)^2 expanded to avoid a second residual pass.
		ret += d.Weight[i] * delta * (2*r - delta)
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
