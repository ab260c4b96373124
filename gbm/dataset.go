package gbm

import (
	"gonum.org/v1/gonum/mat"

	"github.com/goml-dev/goboost/pkg/errors"
)

// Dataset bundles the observation set handed to the engine: a feature
// matrix plus per-row response, weight, and the optional offset,
// auxiliary data and group ids some distributions need. Features must be
// pre-encoded as numbers; categorical encoding is the caller's concern.
type Dataset struct {
	x *mat.Dense

	// Y is the response vector.
	Y []float64

	// Weight holds non-negative observation weights; NewDataset fills
	// it with ones.
	Weight []float64

	// Offset holds the per-row fixed offset on the link scale;
	// NewDataset fills it with zeros.
	Offset []float64

	// Misc carries loss-specific auxiliary data, e.g. the censoring
	// indicator for CoxPH. Nil when unused.
	Misc []float64

	// Group carries group ids for the Pairwise distribution. Rows of a
	// group must be contiguous. Nil when unused.
	Group []int

	// FeatureNames is optional and only used for reporting.
	FeatureNames []string

	rows, cols int
}

// NewDataset validates shapes and wraps the inputs. The matrix is
// copied into a dense layout unless it already is one.
func NewDataset(X mat.Matrix, y []float64) (*Dataset, error) {
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewDataset")
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("NewDataset", rows, len(y), 0)
	}

	var xd *mat.Dense
	if v, ok := X.(*mat.Dense); ok {
		xd = v
	} else {
		xd = mat.DenseCopyOf(X)
	}

	weight := make([]float64, rows)
	for i := range weight {
		weight[i] = 1
	}

	return &Dataset{
		x:      xd,
		Y:      y,
		Weight: weight,
		Offset: make([]float64, rows),
		rows:   rows,
		cols:   cols,
	}, nil
}

// NumRows returns the number of observations.
func (d *Dataset) NumRows() int { return d.rows }

// NumFeatures returns the number of feature columns.
func (d *Dataset) NumFeatures() int { return d.cols }

// Row returns the feature vector of observation i without copying.
func (d *Dataset) Row(i int) []float64 { return d.x.RawRowView(i) }

// At returns feature j of observation i.
func (d *Dataset) At(i, j int) float64 { return d.x.At(i, j) }

// check verifies the optional per-row vectors set after construction.
func (d *Dataset) check(op string) error {
	if len(d.Y) != d.rows {
		return errors.NewDimensionError(op, d.rows, len(d.Y), 0)
	}
	if len(d.Weight) != d.rows {
		return errors.NewDimensionError(op, d.rows, len(d.Weight), 0)
	}
	for _, w := range d.Weight {
		if w < 0 {
			return errors.NewValueError(op, "negative observation weight")
		}
	}
	if len(d.Offset) != d.rows {
		return errors.NewDimensionError(op, d.rows, len(d.Offset), 0)
	}
	if d.Misc != nil && len(d.Misc) != d.rows {
		return errors.NewDimensionError(op, d.rows, len(d.Misc), 0)
	}
	if d.Group != nil && len(d.Group) != d.rows {
		return errors.NewDimensionError(op, d.rows, len(d.Group), 0)
	}
	if d.FeatureNames != nil && len(d.FeatureNames) != d.cols {
		return errors.NewDimensionError(op, d.cols, len(d.FeatureNames), 1)
	}
	return nil
}

// Subset builds a new Dataset from the given row indices, in order.
// The orchestration layer uses it to assemble per-fold views with the
// training rows first and the held-out rows as the validation suffix.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Subset")
	}
	x := mat.NewDense(len(indices), d.cols, nil)
	sub := &Dataset{
		x:            x,
		Y:            make([]float64, len(indices)),
		Weight:       make([]float64, len(indices)),
		Offset:       make([]float64, len(indices)),
		FeatureNames: d.FeatureNames,
		rows:         len(indices),
		cols:         d.cols,
	}
	if d.Misc != nil {
		sub.Misc = make([]float64, len(indices))
	}
	if d.Group != nil {
		sub.Group = make([]int, len(indices))
	}
	for pos, i := range indices {
		if i < 0 || i >= d.rows {
			return nil, errors.NewValueError("Subset", "row index out of range")
		}
		x.SetRow(pos, d.Row(i))
		sub.Y[pos] = d.Y[i]
		sub.Weight[pos] = d.Weight[i]
		sub.Offset[pos] = d.Offset[i]
		if d.Misc != nil {
			sub.Misc[pos] = d.Misc[i]
		}
		if d.Group != nil {
			sub.Group[pos] = d.Group[i]
		}
	}
	return sub, nil
}
