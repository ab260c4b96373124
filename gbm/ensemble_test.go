package gbm

import (
	"bytes"
	"math"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	gberrors "github.com/goml-dev/goboost/pkg/errors"
)

func fittedEnsemble(t *testing.T) (*Ensemble, *Dataset) {
	t.Helper()
	d := regressionDataset(t, 200, 3, 0.1, 17)
	ens, err := Fit(d, Config{
		Distribution:     Gaussian,
		NTrees:           20,
		InteractionDepth: 2,
		Seed:             17,
	})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return ens, d
}

func TestPredictNotFitted(t *testing.T) {
	var e Ensemble
	_, err := e.Predict(mat.NewDense(1, 1, []float64{0}), 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	var nf *gberrors.NotFittedError
	if !gberrors.As(err, &nf) {
		t.Errorf("error type = %T, want NotFittedError", err)
	}
}

func TestPredictDimensionMismatch(t *testing.T) {
	ens, _ := fittedEnsemble(t)
	_, err := ens.Predict(mat.NewDense(2, 5, make([]float64, 10)), 0)
	if err == nil {
		t.Fatal("expected an error")
	}
	var de *gberrors.DimensionError
	if !gberrors.As(err, &de) {
		t.Fatalf("error type = %T, want DimensionError", err)
	}
	if de.Expected != 3 || de.Got != 5 {
		t.Errorf("dimension error = %+v, want expected 3 got 5", de)
	}
}

func TestPredictPrefixDiffersFromFull(t *testing.T) {
	ens, d := fittedEnsemble(t)
	x := mat.NewDense(1, 3, append([]float64(nil), d.Row(0)...))

	one, err := ens.Predict(x, 1)
	if err != nil {
		t.Fatalf("Predict(1): %v", err)
	}
	full, err := ens.Predict(x, 0)
	if err != nil {
		t.Fatalf("Predict(full): %v", err)
	}
	if one.At(0, 0) == full.At(0, 0) {
		t.Error("one-tree and full predictions coincide; trees add nothing")
	}

	// Requests beyond the fitted range clamp to the full ensemble.
	over, err := ens.Predict(x, 999)
	if err != nil {
		t.Fatalf("Predict(999): %v", err)
	}
	if over.At(0, 0) != full.At(0, 0) {
		t.Error("over-long request did not clamp to the fitted range")
	}
}

func TestDevianceMatchesTrainHistory(t *testing.T) {
	ens, d := fittedEnsemble(t)
	got, err := ens.Deviance(d, 0, 0, d.NumRows())
	if err != nil {
		t.Fatalf("Deviance: %v", err)
	}
	want := ens.TrainError[len(ens.TrainError)-1]
	if got != want {
		t.Errorf("replayed deviance %v differs from recorded %v", got, want)
	}
}

func TestDevianceRangeChecks(t *testing.T) {
	ens, d := fittedEnsemble(t)
	if _, err := ens.Deviance(d, 0, -1, 10); err == nil {
		t.Error("negative lo accepted")
	}
	if _, err := ens.Deviance(d, 0, 10, 10); err == nil {
		t.Error("empty range accepted")
	}
	if _, err := ens.Deviance(d, 0, 0, d.NumRows()+1); err == nil {
		t.Error("hi beyond rows accepted")
	}
}

func TestBestIterationOOB(t *testing.T) {
	d := regressionDataset(t, 200, 3, 0.1, 19)
	ens, err := Fit(d, Config{NTrees: 30, BagFraction: 0.5, Seed: 19})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	best, err := ens.BestIterationOOB()
	if err != nil {
		t.Fatalf("BestIterationOOB: %v", err)
	}
	if best < 1 || best > 30 {
		t.Errorf("best iteration = %d, want in [1, 30]", best)
	}
}

func TestBestIterationValidationRequiresPartition(t *testing.T) {
	ens, _ := fittedEnsemble(t)
	if _, err := ens.BestIterationValidation(); err == nil {
		t.Fatal("expected an error without a validation partition")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ens, d := fittedEnsemble(t)
	path := filepath.Join(t.TempDir(), "model.gob")
	if err := ens.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadEnsemble(path)
	if err != nil {
		t.Fatalf("LoadEnsemble: %v", err)
	}

	if loaded.NIterations != ens.NIterations {
		t.Fatalf("NIterations = %d, want %d", loaded.NIterations, ens.NIterations)
	}
	if !bytes.Equal(loaded.RNGState, ens.RNGState) {
		t.Error("RNG state did not survive the round trip")
	}

	x := mat.NewDense(3, 3, []float64{
		0.1, 0.2, 0.3,
		0.5, 0.5, 0.5,
		0.9, 0.1, 0.4,
	})
	a, err := ens.Predict(x, 0)
	if err != nil {
		t.Fatalf("Predict original: %v", err)
	}
	b, err := loaded.Predict(x, 0)
	if err != nil {
		t.Fatalf("Predict loaded: %v", err)
	}
	if !mat.Equal(a, b) {
		t.Error("loaded model predicts differently")
	}

	// The loaded model keeps extending exactly like the original.
	if err := Extend(loaded, d, 5); err != nil {
		t.Fatalf("Extend loaded: %v", err)
	}
	if err := Extend(ens, d, 5); err != nil {
		t.Fatalf("Extend original: %v", err)
	}
	if la, lb := ens.TrainError[24], loaded.TrainError[24]; la != lb {
		t.Errorf("post-extend deviance diverged: %v vs %v", la, lb)
	}
}

func TestSaveLoadViaWriter(t *testing.T) {
	ens, _ := fittedEnsemble(t)
	var buf bytes.Buffer
	if err := ens.SaveTo(&buf); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	loaded, err := LoadEnsembleFrom(&buf)
	if err != nil {
		t.Fatalf("LoadEnsembleFrom: %v", err)
	}
	if loaded.NIterations != ens.NIterations {
		t.Errorf("NIterations = %d, want %d", loaded.NIterations, ens.NIterations)
	}
}

func TestSaveRejectsUnfitted(t *testing.T) {
	var e Ensemble
	if err := e.Save(filepath.Join(t.TempDir(), "x.gob")); err == nil {
		t.Fatal("expected an error")
	}
}

func TestRelativeInfluenceUnfitted(t *testing.T) {
	var e Ensemble
	if _, err := e.RelativeInfluence(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestPredictValuesFollowSignal(t *testing.T) {
	ens, _ := fittedEnsemble(t)
	// y = 2*x0 - x1: a high-x0 low-x1 point must outscore the reverse.
	x := mat.NewDense(2, 3, []float64{
		0.9, 0.1, 0.5,
		0.1, 0.9, 0.5,
	})
	pred, err := ens.Predict(x, 0)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !(pred.At(0, 0) > pred.At(1, 0)) {
		t.Errorf("predictions ignore the signal: %v vs %v", pred.At(0, 0), pred.At(1, 0))
	}
	for i := 0; i < 2; i++ {
		if math.IsNaN(pred.At(i, 0)) {
			t.Fatalf("prediction %d is NaN", i)
		}
	}
}
