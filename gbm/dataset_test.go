package gbm

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestNewDatasetDefaults(t *testing.T) {
	d, err := NewDataset(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), []float64{1, 0, 1})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	if d.NumRows() != 3 || d.NumFeatures() != 2 {
		t.Fatalf("dims = (%d, %d), want (3, 2)", d.NumRows(), d.NumFeatures())
	}
	for i, w := range d.Weight {
		if w != 1 {
			t.Errorf("Weight[%d] = %v, want 1", i, w)
		}
	}
	for i, o := range d.Offset {
		if o != 0 {
			t.Errorf("Offset[%d] = %v, want 0", i, o)
		}
	}
	if got := d.Row(1); got[0] != 3 || got[1] != 4 {
		t.Errorf("Row(1) = %v, want [3 4]", got)
	}
	if d.At(2, 1) != 6 {
		t.Errorf("At(2,1) = %v, want 6", d.At(2, 1))
	}
}

func TestNewDatasetRejectsBadShapes(t *testing.T) {
	if _, err := NewDataset(mat.NewDense(2, 1, []float64{1, 2}), []float64{1}); err == nil {
		t.Error("response length mismatch accepted")
	}
}

func TestDatasetCheckRejectsNegativeWeight(t *testing.T) {
	d, err := NewDataset(mat.NewDense(2, 1, []float64{1, 2}), []float64{1, 2})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	d.Weight[1] = -0.5
	if err := d.check("test"); err == nil {
		t.Error("negative weight accepted")
	}
}

func TestDatasetCheckRejectsShortVectors(t *testing.T) {
	d, err := NewDataset(mat.NewDense(3, 1, []float64{1, 2, 3}), []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	d.Misc = []float64{1}
	if err := d.check("test"); err == nil {
		t.Error("short Misc accepted")
	}
	d.Misc = nil
	d.Group = []int{0}
	if err := d.check("test"); err == nil {
		t.Error("short Group accepted")
	}
}

func TestSubsetReordersRows(t *testing.T) {
	d, err := NewDataset(mat.NewDense(4, 1, []float64{10, 20, 30, 40}), []float64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	d.Weight = []float64{1, 2, 3, 4}
	d.Misc = []float64{0, 1, 0, 1}

	sub, err := d.Subset([]int{3, 1})
	if err != nil {
		t.Fatalf("Subset: %v", err)
	}
	if sub.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", sub.NumRows())
	}
	if sub.At(0, 0) != 40 || sub.At(1, 0) != 20 {
		t.Errorf("features = (%v, %v), want (40, 20)", sub.At(0, 0), sub.At(1, 0))
	}
	if sub.Y[0] != 4 || sub.Y[1] != 2 {
		t.Errorf("Y = %v, want [4 2]", sub.Y)
	}
	if sub.Weight[0] != 4 || sub.Misc[1] != 1 {
		t.Errorf("per-row vectors did not follow the reorder")
	}

	if _, err := d.Subset([]int{7}); err == nil {
		t.Error("out-of-range index accepted")
	}
	if _, err := d.Subset(nil); err == nil {
		t.Error("empty index list accepted")
	}
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	if c.NTrees != 100 || c.InteractionDepth != 1 || c.MinObsInNode != 10 {
		t.Errorf("tree defaults = (%d, %d, %d)", c.NTrees, c.InteractionDepth, c.MinObsInNode)
	}
	if c.Shrinkage != 0.1 || c.BagFraction != 0.5 {
		t.Errorf("rate defaults = (%v, %v)", c.Shrinkage, c.BagFraction)
	}
	if c.Alpha != 0.5 || c.Df != 4 {
		t.Errorf("loss defaults = (%v, %v)", c.Alpha, c.Df)
	}

	// Explicit settings survive.
	c2 := Config{NTrees: 7, Shrinkage: 0.01}.withDefaults()
	if c2.NTrees != 7 || c2.Shrinkage != 0.01 {
		t.Errorf("explicit values overwritten: %+v", c2)
	}
}
