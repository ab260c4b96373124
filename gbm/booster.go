package gbm

import (
	"math/rand/v2"

	"github.com/goml-dev/goboost/pkg/errors"
	"github.com/goml-dev/goboost/pkg/log"
)

// booster owns all mutable per-run state: the running fit, the working
// response, the bag flags and the RNG. Every Fit or Extend call builds
// its own booster, so independent calls never share mutable state and
// a calling layer may run folds concurrently without locking.
type booster struct {
	cfg    Config
	data   *Dataset
	dist   distribution
	src    *rand.PCG
	rng    *rand.Rand
	fs     [][]float64
	z      []float64
	fadj   []float64
	inBag  []bool
	nTrain int
	ens    *Ensemble
}

// Fit trains a new ensemble on d. Configuration problems are reported
// before the first iteration; a failed call returns no partial result.
func Fit(d *Dataset, cfg Config) (*Ensemble, error) {
	if d == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "Fit")
	}
	cfg = cfg.withDefaults()
	if err := d.check("Fit"); err != nil {
		return nil, err
	}
	if err := cfg.validate(d); err != nil {
		return nil, err
	}
	dist, err := newDistribution(&cfg)
	if err != nil {
		return nil, err
	}
	if err := dist.validate(&cfg, d); err != nil {
		return nil, err
	}

	nTrain := cfg.nTrainOrAll(d)
	ens := &Ensemble{
		Params:       cfg,
		NumClasses:   dist.numClasses(),
		InitF:        dist.initF(d),
		NumFeatures:  d.NumFeatures(),
		NumRows:      d.NumRows(),
		NTrain:       nTrain,
		FeatureNames: d.FeatureNames,
		Importance:   make([]float64, d.NumFeatures()),
	}

	b := newBooster(d, cfg, dist, nTrain, ens)
	b.src = rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed))
	b.rng = rand.New(b.src)
	for c := range b.fs {
		for i := range b.fs[c] {
			b.fs[c][i] = ens.InitF[c]
		}
	}

	b.run(cfg.NTrees)
	return ens, nil
}

// Extend appends nNew iterations to a completed ensemble. The dataset
// must be the same effective data as the original run; the persisted
// RNG state is resumed so the combined run is bit-for-bit identical to
// a single longer Fit.
func Extend(ens *Ensemble, d *Dataset, nNew int) error {
	if ens == nil || len(ens.Trees) == 0 {
		return errors.NewNotFittedError("Ensemble", "Extend")
	}
	if nNew < 1 {
		return errors.NewValidationError("nNew", "must be at least 1", nNew)
	}
	if d == nil {
		return errors.Wrap(errors.ErrEmptyData, "Extend")
	}
	if err := d.check("Extend"); err != nil {
		return err
	}
	if d.NumRows() != ens.NumRows {
		return errors.NewDimensionError("Extend", ens.NumRows, d.NumRows(), 0)
	}
	if d.NumFeatures() != ens.NumFeatures {
		return errors.NewDimensionError("Extend", ens.NumFeatures, d.NumFeatures(), 1)
	}

	dist, err := newDistribution(&ens.Params)
	if err != nil {
		return err
	}
	if err := dist.validate(&ens.Params, d); err != nil {
		return err
	}

	b := newBooster(d, ens.Params, dist, ens.NTrain, ens)
	b.src = rand.NewPCG(uint64(ens.Params.Seed), uint64(ens.Params.Seed))
	b.rng = rand.New(b.src)
	if err := b.src.UnmarshalBinary(ens.RNGState); err != nil {
		return errors.NewModelError("Extend", "restore RNG state", err)
	}

	// Rebuild the running fit by replaying the fitted trees in order;
	// the accumulation order matches the original incremental updates.
	b.fs = ens.replayFit(d, ens.NIterations)

	b.run(nNew)
	return nil
}

func newBooster(d *Dataset, cfg Config, dist distribution, nTrain int, ens *Ensemble) *booster {
	n := d.NumRows()
	k := dist.numClasses()
	fs := make([][]float64, k)
	for c := range fs {
		fs[c] = make([]float64, n)
	}
	return &booster{
		cfg:    cfg,
		data:   d,
		dist:   dist,
		fs:     fs,
		z:      make([]float64, nTrain),
		fadj:   make([]float64, n),
		inBag:  make([]bool, nTrain),
		nTrain: nTrain,
		ens:    ens,
	}
}

// run executes nIters boosting iterations, appending trees and
// diagnostics to the ensemble. The loop is strictly sequential:
// iteration k+1's gradients depend on the fully updated fit of
// iteration k.
func (b *booster) run(nIters int) {
	k := b.dist.numClasses()
	n := b.data.NumRows()
	logger := log.GetLoggerWithName("gbm.booster")

	for iter := 0; iter < nIters; iter++ {
		b.drawBag()

		oobSum := 0.0
		for class := 0; class < k; class++ {
			b.dist.workingResponse(b.data, b.fs, class, b.z, b.inBag, b.nTrain)

			tb := &treeBuilder{
				d:         b.data,
				z:         b.z,
				inBag:     b.inBag,
				nTrain:    b.nTrain,
				minObs:    b.cfg.MinObsInNode,
				mFeatures: b.cfg.MFeatures,
				monotone:  b.cfg.Monotone,
				rng:       b.rng,
			}
			t, assign, leaves := tb.grow(b.cfg.InteractionDepth)

			b.dist.fitBestConstant(b.data, b.fs, class, b.z, assign, leaves, t, b.cfg.MinObsInNode, b.inBag, b.nTrain)

			// The tree's raw contribution for every row, train and
			// validation alike; structure is not altered here.
			for i := 0; i < n; i++ {
				b.fadj[i] = t.PredictRow(b.data.Row(i))
			}

			oobSum += b.dist.bagImprovement(b.data, b.fs, class, b.fadj, b.inBag, b.cfg.Shrinkage, b.nTrain)

			f := b.fs[class]
			for i := 0; i < n; i++ {
				f[i] += b.cfg.Shrinkage * b.fadj[i]
			}

			for _, nd := range t.Nodes {
				if !nd.IsLeaf() {
					b.ens.Importance[nd.SplitFeature] += nd.Improvement
				}
			}
			b.ens.Trees = append(b.ens.Trees, *t)
		}

		trainDev := b.dist.deviance(b.data, b.fs, 0, b.nTrain)
		b.ens.TrainError = append(b.ens.TrainError, trainDev)
		if b.nTrain < n {
			b.ens.ValidError = append(b.ens.ValidError, b.dist.deviance(b.data, b.fs, b.nTrain, n))
		}
		b.ens.OOBImprove = append(b.ens.OOBImprove, oobSum)
		b.ens.NIterations++

		if b.cfg.Verbosity > 0 && iter%10 == 0 {
			logger.Debug("boosting progress",
				"iteration", b.ens.NIterations,
				"train_deviance", trainDev)
		}
	}

	state, err := b.src.MarshalBinary()
	if err == nil {
		b.ens.RNGState = state
	}
}

// drawBag samples an exact-size bag without replacement from the
// training partition. One uniform variate is consumed per training row
// so the RNG stream position is independent of which rows are taken.
func (b *booster) drawBag() {
	total := int(b.cfg.BagFraction * float64(b.nTrain))
	bagged := 0
	for i := 0; i < b.nTrain; i++ {
		u := b.rng.Float64()
		b.inBag[i] = false
		if bagged < total && u*float64(b.nTrain-i) < float64(total-bagged) {
			b.inBag[i] = true
			bagged++
		}
	}
}
