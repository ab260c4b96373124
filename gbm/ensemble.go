package gbm

import (
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/goml-dev/goboost/core/model"
	"github.com/goml-dev/goboost/pkg/errors"
)

// Ensemble is a fitted boosting model. All fields are exported for gob
// persistence; treat them as read-only outside this package.
type Ensemble struct {
	// Params is the fully defaulted configuration the model was
	// trained with.
	Params Config

	// NumClasses is the number of parallel fit vectors; greater than
	// one only for the multinomial distribution.
	NumClasses int

	// InitF holds the intercept on the link scale, one per class.
	InitF []float64

	// Trees are stored class-major within each iteration: iteration i
	// contributes Trees[i*NumClasses : (i+1)*NumClasses].
	Trees []Tree

	NIterations int

	// Per-iteration diagnostics. ValidError is empty when no
	// validation partition was held out.
	TrainError []float64
	ValidError []float64
	OOBImprove []float64

	// Importance accumulates raw split improvements per feature.
	Importance   []float64
	FeatureNames []string

	NumFeatures int
	NumRows     int
	NTrain      int

	// RNGState is the marshaled generator state after the last
	// completed iteration; Extend resumes from it.
	RNGState []byte
}

func (e *Ensemble) fitted() bool {
	return e != nil && len(e.Trees) > 0 && e.NIterations > 0
}

// clampTrees maps a requested iteration count onto the fitted range;
// zero or negative requests mean "use everything".
func (e *Ensemble) clampTrees(nTrees int) int {
	if nTrees <= 0 || nTrees > e.NIterations {
		return e.NIterations
	}
	return nTrees
}

// Predict returns link-scale predictions for X using the first nTrees
// iterations, one column per class. Pass nTrees <= 0 for the full
// ensemble. Offsets are not applied; callers holding an offset add it
// themselves.
func (e *Ensemble) Predict(X mat.Matrix, nTrees int) (*mat.Dense, error) {
	if !e.fitted() {
		return nil, errors.NewNotFittedError("Ensemble", "Predict")
	}
	rows, cols := X.Dims()
	if cols != e.NumFeatures {
		return nil, errors.NewDimensionError("Predict", e.NumFeatures, cols, 1)
	}
	nTrees = e.clampTrees(nTrees)

	out := mat.NewDense(rows, e.NumClasses, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			row[j] = X.At(i, j)
		}
		for c := 0; c < e.NumClasses; c++ {
			f := e.InitF[c]
			for it := 0; it < nTrees; it++ {
				f += e.Params.Shrinkage * e.Trees[it*e.NumClasses+c].PredictRow(row)
			}
			out.Set(i, c, f)
		}
	}
	return out, nil
}

// replayFit reconstructs the per-class fit vectors over d from the
// first nTrees iterations. Contributions are accumulated tree by tree
// in training order, so the result is bit-identical to the running fit
// the trainer held after those iterations.
func (e *Ensemble) replayFit(d *Dataset, nTrees int) [][]float64 {
	n := d.NumRows()
	fs := make([][]float64, e.NumClasses)
	for c := range fs {
		fs[c] = make([]float64, n)
		for i := range fs[c] {
			fs[c][i] = e.InitF[c]
		}
	}
	for it := 0; it < nTrees; it++ {
		for c := 0; c < e.NumClasses; c++ {
			t := &e.Trees[it*e.NumClasses+c]
			f := fs[c]
			for i := 0; i < n; i++ {
				f[i] += e.Params.Shrinkage * t.PredictRow(d.Row(i))
			}
		}
	}
	return fs
}

// Deviance scores rows lo..hi of d under the model's loss using the
// first nTrees iterations. The row range lets callers score a training
// prefix and a held-out suffix separately.
func (e *Ensemble) Deviance(d *Dataset, nTrees, lo, hi int) (float64, error) {
	if !e.fitted() {
		return 0, errors.NewNotFittedError("Ensemble", "Deviance")
	}
	if d == nil {
		return 0, errors.Wrap(errors.ErrEmptyData, "Deviance")
	}
	if err := d.check("Deviance"); err != nil {
		return 0, err
	}
	if d.NumFeatures() != e.NumFeatures {
		return 0, errors.NewDimensionError("Deviance", e.NumFeatures, d.NumFeatures(), 1)
	}
	if lo < 0 || hi > d.NumRows() || lo >= hi {
		return 0, errors.NewValueError("Deviance", "row range must satisfy 0 <= lo < hi <= rows")
	}
	dist, err := newDistribution(&e.Params)
	if err != nil {
		return 0, err
	}
	if err := dist.validate(&e.Params, d); err != nil {
		return 0, err
	}
	fs := e.replayFit(d, e.clampTrees(nTrees))
	return dist.deviance(d, fs, lo, hi), nil
}

// RelativeInfluence returns per-feature importance normalized to sum
// to 100. Features never chosen for a split score zero.
func (e *Ensemble) RelativeInfluence() ([]float64, error) {
	if !e.fitted() {
		return nil, errors.NewNotFittedError("Ensemble", "RelativeInfluence")
	}
	out := make([]float64, len(e.Importance))
	total := floats.Sum(e.Importance)
	if total <= 0 {
		return out, nil
	}
	for i, v := range e.Importance {
		out[i] = 100 * v / total
	}
	return out, nil
}

// BestIterationValidation picks the iteration minimizing held-out
// deviance. It fails when the model was trained without a validation
// partition.
func (e *Ensemble) BestIterationValidation() (int, error) {
	if !e.fitted() {
		return 0, errors.NewNotFittedError("Ensemble", "BestIterationValidation")
	}
	if len(e.ValidError) == 0 {
		return 0, errors.NewValueError("BestIterationValidation",
			"model was trained without a validation partition")
	}
	best := 0
	for i, v := range e.ValidError {
		if v < e.ValidError[best] {
			best = i
		}
	}
	return best + 1, nil
}

// BestIterationOOB picks the iteration maximizing the cumulative
// out-of-bag improvement. The OOB estimate is known to be pessimistic
// about the optimal iteration count but needs no held-out data.
func (e *Ensemble) BestIterationOOB() (int, error) {
	if !e.fitted() {
		return 0, errors.NewNotFittedError("Ensemble", "BestIterationOOB")
	}
	best, cum, bestCum := 0, 0.0, 0.0
	for i, v := range e.OOBImprove {
		cum += v
		if i == 0 || cum > bestCum {
			best, bestCum = i, cum
		}
	}
	return best + 1, nil
}

// Save writes the ensemble to path using the shared gob persistence
// layer.
func (e *Ensemble) Save(path string) error {
	if !e.fitted() {
		return errors.NewNotFittedError("Ensemble", "Save")
	}
	return model.SaveModel(e, path)
}

// SaveTo writes the ensemble to an arbitrary writer.
func (e *Ensemble) SaveTo(w io.Writer) error {
	if !e.fitted() {
		return errors.NewNotFittedError("Ensemble", "SaveTo")
	}
	return model.SaveModelToWriter(e, w)
}

// LoadEnsemble reads an ensemble previously written with Save.
func LoadEnsemble(path string) (*Ensemble, error) {
	var e Ensemble
	if err := model.LoadModel(&e, path); err != nil {
		return nil, err
	}
	if !e.fitted() {
		return nil, errors.NewModelError("LoadEnsemble", "decode",
			errors.New("file does not contain a fitted ensemble"))
	}
	return &e, nil
}

// LoadEnsembleFrom reads an ensemble from an arbitrary reader.
func LoadEnsembleFrom(r io.Reader) (*Ensemble, error) {
	var e Ensemble
	if err := model.LoadModelFromReader(&e, r); err != nil {
		return nil, err
	}
	if !e.fitted() {
		return nil, errors.NewModelError("LoadEnsembleFrom", "decode",
			errors.New("stream does not contain a fitted ensemble"))
	}
	return &e, nil
}
