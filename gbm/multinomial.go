package gbm

import (
	"math"

	"github.com/goml-dev/goboost/pkg/errors"
)

// multinomialDist implements softmax log-loss over k classes. Each
// boosting iteration appends k trees, class-major; the per-class
// offsets cancel in the softmax, so Dataset.Offset is ignored.
type multinomialDist struct {
	k int
}

func (*multinomialDist) name() Distribution { return Multinomial }

func (m *multinomialDist) numClasses() int { return m.k }

func (m *multinomialDist) validate(cfg *Config, d *Dataset) error {
	if m.k < 2 {
		return errors.NewValidationError("NumClasses", "must be at least 2 for multinomial", m.k)
	}
	for _, y := range d.Y {
		cls := int(y)
		if float64(cls) != y || cls < 0 || cls >= m.k {
			return errors.NewValidationError("Y", "response must be an integer class label in [0, NumClasses)", y)
		}
	}
	return nil
}

func (m *multinomialDist) initF(d *Dataset) []float64 {
	return make([]float64, m.k)
}

// classProb returns the softmax probability of class for row i.
func (m *multinomialDist) classProb(fs [][]float64, class, i int) float64 {
	maxF := fs[0][i]
	for c := 1; c < m.k; c++ {
		if fs[c][i] > maxF {
			maxF = fs[c][i]
		}
	}
	sum := 0.0
	for c := 0; c < m.k; c++ {
		sum += math.Exp(fs[c][i] - maxF)
	}
	return math.Exp(fs[class][i]-maxF) / sum
}

func (m *multinomialDist) workingResponse(d *Dataset, fs [][]float64, class int, z []float64, inBag []bool, n int) {
	for i := 0; i < n; i++ {
		ind := 0.0
		if int(d.Y[i]) == class {
			ind = 1
		}
		z[i] = ind - m.classProb(fs, class, i)
	}
}

func (m *multinomialDist) deviance(d *Dataset, fs [][]float64, lo, hi int) float64 {
	dL, dW := 0.0, 0.0
	for i := lo; i < hi; i++ {
		p := m.classProb(fs, int(d.Y[i]), i)
		if p < 1e-300 {
			p = 1e-300
		}
		dL += d.Weight[i] * math.Log(p)
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return -2 * dL / dW
}

func (m *multinomialDist) fitBestConstant(d *Dataset, fs [][]float64, class int, z []float64, assign []int, leaves []int, t *Tree, minObs int, inBag []bool, n int) {
	num := make([]float64, len(leaves))
	den := make([]float64, len(leaves))
	for i := 0; i < n; i++ {
		if !inBag[i] {
			continue
		}
		slot := assign[i]
		num[slot] += d.Weight[i] * z[i]
		az := math.Abs(z[i])
		den[slot] += d.Weight[i] * az * (1 - az)
	}
	scale := float64(m.k-1) / float64(m.k)
	for slot, nodeIdx := range leaves {
		if den[slot] == 0 {
			t.Nodes[nodeIdx].Prediction = 0
			continue
		}
		t.Nodes[nodeIdx].Prediction = scale * num[slot] / den[slot]
	}
}

func (m *multinomialDist) bagImprovement(d *Dataset, fs [][]float64, class int, fadj []float64, inBag []bool, step float64, n int) float64 {
	ret, dW := 0.0, 0.0
	for i := 0; i < n; i++ {
		if inBag[i] {
			continue
		}
		maxF := fs[0][i]
		for c := 1; c < m.k; c++ {
			if fs[c][i] > maxF {
				maxF = fs[c][i]
			}
		}
		sumOld, sumNew := 0.0, 0.0
		for c := 0; c < m.k; c++ {
			e := math.Exp(fs[c][i] - maxF)
			sumOld += e
			if c == class {
				e = math.Exp(fs[c][i] + step*fadj[i] - maxF)
			}
			sumNew += e
		}
		y := int(d.Y[i])
		lpOld := fs[y][i] - maxF - math.Log(sumOld)
		lpNew := fs[y][i] - maxF - math.Log(sumNew)
		if y == class {
			lpNew += step * fadj[i]
		}
		ret += d.Weight[i] * (lpNew - lpOld)
		dW += d.Weight[i]
	}
	if dW == 0 {
		return 0
	}
	return ret / dW
}
