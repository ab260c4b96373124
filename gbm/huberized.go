package gbm

// huberizedDist implements the huberized hinge loss for 0/1 responses:
// quadratic inside the margin, linear beyond it.
type huberizedDist struct{}

func (*huberizedDist) name() Distribution { return Huberized }

func (*huberizedDist) numClasses() int { return 1 }

func (*huberizedDist) validate(cfg *Config, d *Dataset) error {
	return checkBinaryResponse(d, Huberized)
}

func (*huberizedDist) initF(d *Dataset) []float64 {
	return []float64{0}
}

func (*huberizedDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		m := 2*d.Y[i] - 1
		v := m * (d.Offset[i] + f[i])
		switch {
		case v > 1:
			z[i] = 0
		case v >= -1:
			z[i] = 2 * m * (1 - v)
		default:
			z[i] = 4 * m
		}
	}
}

func huberizedLoss(v float64) float64 {
	switch {
	case v > 1:
		return 0
	case v >= -1:
		return (1 - v) * (1 - v)
	default:
		return -4 * v
	}
}

func (*huberizedDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		m := 2*d.Y[i] - 1
		dL += d.Weight[i] * huberizedLoss(m*(d.Offset[i]+f[i]))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (*huberizedDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	f := fs[0]
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		num[slot] += d.Weight[i] * z[i]
		m := 2*d.Y[i] - 1
		v := m * (d.Offset[i] + f[i])
		// Curvature only exists inside the margin.
		if v >= -1 && v <= 1 {
			den[slot] += 2 * d.Weight[i]
		}
	}
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = num[slot] / den[slot]
	}
}

func (*huberizedDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		m := 2*d.Y[i] - 1
		eta := d.Offset[i] + f[i]
		ret += d.Weight[i] * (huberizedLoss(m*eta) - huberizedLoss(m*(eta+step*fadj[i])))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
