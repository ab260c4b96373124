package gbm

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func constantDataset(t *testing.T, y []float64) *Dataset {
	t.Helper()
	n := len(y)
	d, err := NewDataset(mat.NewDense(n, 1, make([]float64, n)), y)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return d
}

func TestGaussianInitFIsWeightedMean(t *testing.T) {
	d := constantDataset(t, []float64{1, 2, 3, 10})
	d.Weight = []float64{1, 1, 1, 3}

	got := (&gaussianDist{}).initF(d)
	want := (1.0 + 2 + 3 + 30) / 6.0
	if len(got) != 1 || !almostEqual(got[0], want, 1e-12) {
		t.Errorf("initF = %v, want [%v]", got, want)
	}
}

func TestGaussianInitFSubtractsOffset(t *testing.T) {
	d := constantDataset(t, []float64{5, 5, 5})
	d.Offset = []float64{1, 1, 1}

	got := (&gaussianDist{}).initF(d)
	if !almostEqual(got[0], 4, 1e-12) {
		t.Errorf("initF = %v, want 4 after offset", got[0])
	}
}

func TestPoissonInitF(t *testing.T) {
	d := constantDataset(t, []float64{2, 4, 6})
	got := (&poissonDist{}).initF(d)
	want := math.Log(4.0)
	if !almostEqual(got[0], want, 1e-12) {
		t.Errorf("initF = %v, want log(mean) = %v", got[0], want)
	}
}

func TestPoissonInitFAllZeros(t *testing.T) {
	d := constantDataset(t, []float64{0, 0, 0})
	got := (&poissonDist{}).initF(d)
	if got[0] != -predictionClamp {
		t.Errorf("initF = %v, want %v for an all-zero response", got[0], -predictionClamp)
	}
}

func TestBernoulliInitFIsLogOdds(t *testing.T) {
	d := constantDataset(t, []float64{1, 1, 1, 0})
	got := (&bernoulliDist{}).initF(d)
	want := math.Log(3.0)
	if !almostEqual(got[0], want, 1e-12) {
		t.Errorf("initF = %v, want log(3) = %v", got[0], want)
	}
}

func TestBernoulliInitFDegenerate(t *testing.T) {
	all1 := (&bernoulliDist{}).initF(constantDataset(t, []float64{1, 1}))
	if all1[0] != predictionClamp {
		t.Errorf("all-ones initF = %v, want %v", all1[0], predictionClamp)
	}
	all0 := (&bernoulliDist{}).initF(constantDataset(t, []float64{0, 0}))
	if all0[0] != -predictionClamp {
		t.Errorf("all-zeros initF = %v, want %v", all0[0], -predictionClamp)
	}
}

func TestWeightedMedian(t *testing.T) {
	values := []float64{5, 1, 3}
	weights := []float64{1, 1, 1}
	if got := weightedMedian(values, weights); got != 3 {
		t.Errorf("median = %v, want 3", got)
	}

	// A heavy weight drags the median onto its value.
	weights = []float64{10, 1, 1}
	if got := weightedMedian(values, weights); got != 5 {
		t.Errorf("weighted median = %v, want 5", got)
	}
}

func TestClampLogLinear(t *testing.T) {
	// Feasible adjustment passes through untouched.
	if got := clampLogLinear(1.0, 2.0, -2.0); got != 1.0 {
		t.Errorf("feasible: got %v, want 1.0", got)
	}
	// Upper bound: no row may exceed +predictionClamp after the step.
	if got := clampLogLinear(30, 5, -5); got != predictionClamp-5 {
		t.Errorf("upper clamp: got %v, want %v", got, predictionClamp-5)
	}
	// Lower bound mirrors it.
	if got := clampLogLinear(-30, 5, -5); got != -predictionClamp+5 {
		t.Errorf("lower clamp: got %v, want %v", got, -predictionClamp+5)
	}
}

func TestSoftplus(t *testing.T) {
	if got := softplus(0); !almostEqual(got, math.Log(2), 1e-12) {
		t.Errorf("softplus(0) = %v, want log 2", got)
	}
	if got := softplus(100); got != 100 {
		t.Errorf("softplus(100) = %v, want 100", got)
	}
	if got := softplus(-100); got != 0 {
		t.Errorf("softplus(-100) = %v, want 0", got)
	}
}

func TestNewDistributionUnknown(t *testing.T) {
	cfg := &Config{Distribution: "tweedie"}
	if _, err := newDistribution(cfg); err == nil {
		t.Fatal("expected an error for an unknown distribution")
	}
}

func TestNewDistributionDefaultsToGaussian(t *testing.T) {
	dist, err := newDistribution(&Config{})
	if err != nil {
		t.Fatalf("newDistribution: %v", err)
	}
	if dist.name() != Gaussian {
		t.Errorf("default distribution = %v, want gaussian", dist.name())
	}
}
