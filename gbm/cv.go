package gbm

import (
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/goml-dev/goboost/core/parallel"
	"github.com/goml-dev/goboost/pkg/errors"
)

// CVFold holds the row indices of one cross-validation fold.
type CVFold struct {
	TrainIndices []int
	TestIndices  []int
}

// KFold assigns rows to k folds, optionally shuffling first.
type KFold struct {
	NSplits int
	Shuffle bool
	Seed    int64
}

// NewKFold creates a k-fold splitter. Fewer than two splits falls back
// to the conventional five.
func NewKFold(nSplits int, shuffle bool, seed int64) *KFold {
	if nSplits < 2 {
		nSplits = 5
	}
	return &KFold{NSplits: nSplits, Shuffle: shuffle, Seed: seed}
}

// Split partitions row indices 0..n-1 into NSplits folds. Fold sizes
// differ by at most one row.
func (kf *KFold) Split(n int) []CVFold {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if kf.Shuffle {
		r := rand.New(rand.NewPCG(uint64(kf.Seed), uint64(kf.Seed)))
		r.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	folds := make([]CVFold, kf.NSplits)
	foldSize := n / kf.NSplits
	remainder := n % kf.NSplits

	cur := 0
	for i := 0; i < kf.NSplits; i++ {
		testSize := foldSize
		if i < remainder {
			testSize++
		}
		test := make([]int, testSize)
		copy(test, indices[cur:cur+testSize])

		train := make([]int, 0, n-testSize)
		train = append(train, indices[:cur]...)
		train = append(train, indices[cur+testSize:]...)

		folds[i] = CVFold{TrainIndices: train, TestIndices: test}
		cur += testSize
	}
	return folds
}

// CVResult aggregates the per-fold models and held-out scores of one
// cross-validation run.
type CVResult struct {
	Folds     []CVFold
	Ensembles []*Ensemble

	// TestDeviance is each fold's held-out deviance at its best
	// iteration; BestIters holds those iterations.
	TestDeviance []float64
	BestIters    []int

	// MeanDeviance averages TestDeviance across folds.
	MeanDeviance float64
}

// CrossValidate fits one model per fold and scores each on its held-out
// rows. Each fold sees a dataset with its training rows first and the
// held-out rows as the validation suffix, so the per-iteration
// held-out deviance history comes out of the fit itself. Folds run
// concurrently; the fits inside each fold stay sequential.
//
// Distributions whose losses depend on row ordering or grouping (CoxPH
// and Pairwise) are rejected, since shuffled folds would break their
// row contracts.
func CrossValidate(d *Dataset, cfg Config, nFolds int) (*CVResult, error) {
	if d == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "CrossValidate")
	}
	cfg = cfg.withDefaults()
	if nFolds < 2 {
		return nil, errors.NewValidationError("nFolds", "must be at least 2", nFolds)
	}
	if cfg.Distribution == CoxPH || cfg.Distribution == Pairwise {
		return nil, errors.NewValidationError("Distribution",
			"cross-validation does not support row-ordered losses", cfg.Distribution)
	}
	if nFolds > d.NumRows() {
		return nil, errors.NewValidationError("nFolds", "must not exceed the number of rows", nFolds)
	}

	kf := NewKFold(nFolds, true, cfg.Seed)
	res := &CVResult{
		Folds:        kf.Split(d.NumRows()),
		Ensembles:    make([]*Ensemble, nFolds),
		TestDeviance: make([]float64, nFolds),
		BestIters:    make([]int, nFolds),
	}

	var mu sync.Mutex
	var firstErr error
	setErr := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	parallel.Parallelize(nFolds, func(start, end int) {
		for fi := start; fi < end; fi++ {
			fold := res.Folds[fi]
			rows := make([]int, 0, d.NumRows())
			rows = append(rows, fold.TrainIndices...)
			rows = append(rows, fold.TestIndices...)

			sub, err := d.Subset(rows)
			if err != nil {
				setErr(errors.Wrapf(err, "CrossValidate: fold %d", fi))
				continue
			}

			foldCfg := cfg
			foldCfg.NTrain = len(fold.TrainIndices)

			ens, err := Fit(sub, foldCfg)
			if err != nil {
				setErr(errors.Wrapf(err, "CrossValidate: fold %d", fi))
				continue
			}

			bestIter, err := ens.BestIterationValidation()
			if err != nil {
				setErr(errors.Wrapf(err, "CrossValidate: fold %d", fi))
				continue
			}

			res.Ensembles[fi] = ens
			res.BestIters[fi] = bestIter
			res.TestDeviance[fi] = ens.ValidError[bestIter-1]
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}

	res.MeanDeviance = floats.Sum(res.TestDeviance) / float64(nFolds)
	return res, nil
}
