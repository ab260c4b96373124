package gbm

import "math"

// laplaceDist implements absolute-error loss: sign gradients, weighted
// median initial value and leaf constants.
type laplaceDist struct{}

func (*laplaceDist) name() Distribution { return Laplace }

func (*laplaceDist) numClasses() int { return 1 }

func (*laplaceDist) validate(cfg *Config, d *Dataset) error { return nil }

func (*laplaceDist) initF(d *Dataset) []float64 {
	adj := make([]float64, d.NumRows())
	for i := range adj {
		adj[i] = d.Y[i] - d.Offset[i]
	}
	return []float64{weightedMedian(adj, d.Weight)}
}

func (*laplaceDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	f := fs[0]
	for i := 0; i < n; i++ {
		r := d.Y[i] - d.Offset[i] - f[i]
		switch {
		case r > 0:
			z[i] = 1
		case r < 0:
			z[i] = -1
		default:
			z[i] = 0
		}
	}
}

func (*laplaceDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	f := fs[0]
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		dL += d.Weight[i] * math.Abs(d.Y[i]-d.Offset[i]-f[i])
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return dL / dW
}

func (*laplaceDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
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
		t.Nodes[nodeIdx].Prediction = weightedMedian(resid[slot], weights[slot])
	}
}

func (*laplaceDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	f := fs[0]
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		r := d.Y[i] - d.Offset[i] - f[i]
		ret += d.Weight[i] * (math.Abs(r) - math.Abs(r-step*fadj[i]))
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
