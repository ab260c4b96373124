package gbm

import (
	"github.com/goml-dev/goboost/pkg/errors"
)

// Distribution identifies a loss family. The set is fixed; there is no
// open-ended registration mechanism.
type Distribution string

const (
	// Gaussian is squared-error loss.
	Gaussian Distribution = "gaussian"
	// Laplace is absolute-error loss.
	Laplace Distribution = "laplace"
	// TDist is Student-t loss with Df degrees of freedom.
	TDist Distribution = "tdist"
	// Bernoulli is logistic log-loss for 0/1 responses.
	Bernoulli Distribution = "bernoulli"
	// Huberized is the huberized hinge loss for 0/1 responses.
	Huberized Distribution = "huberized"
	// Multinomial is softmax log-loss over NumClasses classes; each
	// iteration appends one tree per class.
	Multinomial Distribution = "multinomial"
	// AdaBoost is the exponential loss for 0/1 responses.
	AdaBoost Distribution = "adaboost"
	// Poisson is log-linear count loss.
	Poisson Distribution = "poisson"
	// CoxPH is the Cox proportional-hazards partial likelihood.
	// Observations must be sorted by decreasing survival time and carry
	// the censoring indicator (1 = event, 0 = censored) in Dataset.Misc.
	CoxPH Distribution = "coxph"
	// Quantile is the pinball loss at quantile Alpha.
	Quantile Distribution = "quantile"
	// Pairwise is logistic pairwise ranking loss within Dataset.Group.
	Pairwise Distribution = "pairwise"
)

// Config holds the boosting hyperparameters.
type Config struct {
	Distribution Distribution

	// NTrees is the number of boosting iterations.
	NTrees int

	// InteractionDepth is the number of splits per tree, so a fitted
	// tree has at most InteractionDepth+1 terminal nodes.
	InteractionDepth int

	// MinObsInNode is the minimum number of in-bag observations that
	// each child of a split must retain.
	MinObsInNode int

	// Shrinkage is the learning rate applied to every tree contribution.
	Shrinkage float64

	// BagFraction is the fraction of the training partition drawn
	// (without replacement) for each iteration's bag.
	BagFraction float64

	// NTrain is the size of the training partition; rows [NTrain, N)
	// form the validation suffix. Zero means all rows train.
	NTrain int

	// MFeatures is the number of candidate features drawn uniformly at
	// each node. Zero means all features are candidates at every node.
	MFeatures int

	// Monotone holds one sign constraint per feature: +1 forces the
	// fitted function to be non-decreasing in that feature, -1
	// non-increasing, 0 unconstrained. Nil means unconstrained.
	Monotone []int

	// Seed initializes the RNG stream used for bagging and feature
	// subsampling. Runs with identical seed, data and parameters are
	// bit-for-bit reproducible.
	Seed int64

	// Alpha is the target quantile for the Quantile distribution.
	Alpha float64

	// Df is the degrees of freedom for the TDist distribution.
	Df float64

	// NumClasses is the number of classes for Multinomial.
	NumClasses int

	// Verbosity enables progress logging when positive.
	Verbosity int
}

// withDefaults fills zero-valued parameters with the standard defaults.
func (c Config) withDefaults() Config {
	if c.NTrees == 0 {
		c.NTrees = 100
	}
	if c.InteractionDepth == 0 {
		c.InteractionDepth = 1
	}
	if c.MinObsInNode == 0 {
		c.MinObsInNode = 10
	}
	if c.Shrinkage == 0 {
		c.Shrinkage = 0.1
	}
	if c.BagFraction == 0 {
		c.BagFraction = 0.5
	}
	if c.Alpha == 0 {
		c.Alpha = 0.5
	}
	if c.Df == 0 {
		c.Df = 4
	}
	return c
}

// validate checks the generic parameters against the dataset. All
// configuration errors are reported before the first iteration runs.
func (c *Config) validate(d *Dataset) error {
	if c.NTrees < 1 {
		return errors.NewValidationError("NTrees", "must be at least 1", c.NTrees)
	}
	if c.InteractionDepth < 1 {
		return errors.NewValidationError("InteractionDepth", "must be at least 1", c.InteractionDepth)
	}
	if c.MinObsInNode < 1 {
		return errors.NewValidationError("MinObsInNode", "must be at least 1", c.MinObsInNode)
	}
	if c.Shrinkage <= 0 {
		return errors.NewValidationError("Shrinkage", "must be positive", c.Shrinkage)
	}
	if c.BagFraction <= 0 || c.BagFraction > 1 {
		return errors.NewValidationError("BagFraction", "must be in (0, 1]", c.BagFraction)
	}
	if c.NTrain < 0 || c.NTrain > d.NumRows() {
		return errors.NewValidationError("NTrain", "must be in [0, number of rows]", c.NTrain)
	}
	if c.MFeatures < 0 || c.MFeatures > d.NumFeatures() {
		return errors.NewValidationError("MFeatures", "must be in [0, number of features]", c.MFeatures)
	}
	if c.Monotone != nil && len(c.Monotone) != d.NumFeatures() {
		return errors.NewValidationError("Monotone", "length must equal the number of features", len(c.Monotone))
	}
	for i, m := range c.Monotone {
		if m < -1 || m > 1 {
			return errors.NewValidationError("Monotone", "entries must be -1, 0 or +1", struct {
				Index int
				Value int
			}{i, m})
		}
	}
	return nil
}

// nTrainOrAll resolves the training-partition boundary.
func (c *Config) nTrainOrAll(d *Dataset) int {
	if c.NTrain == 0 {
		return d.NumRows()
	}
	return c.NTrain
}
