package errors

import (
	"strings"
	"testing"
)

func TestNotFittedError(t *testing.T) {
	err := NewNotFittedError("Ensemble", "Predict")

	var nfe *NotFittedError
	if !As(err, &nfe) {
		t.Fatal("expected error to unwrap to *NotFittedError")
	}
	if nfe.ModelName != "Ensemble" || nfe.Method != "Predict" {
		t.Errorf("unexpected fields: %+v", nfe)
	}
	if !strings.Contains(err.Error(), "not fitted") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestDimensionError(t *testing.T) {
	err := NewDimensionError("Predict", 5, 3, 1)

	var de *DimensionError
	if !As(err, &de) {
		t.Fatal("expected error to unwrap to *DimensionError")
	}
	if de.Expected != 5 || de.Got != 3 {
		t.Errorf("unexpected fields: %+v", de)
	}
	if !strings.Contains(err.Error(), "features") {
		t.Errorf("expected axis name in message, got: %s", err.Error())
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("BagFraction", "must be in (0, 1]", 1.5)

	var ve *ValidationError
	if !As(err, &ve) {
		t.Fatal("expected error to unwrap to *ValidationError")
	}
	if ve.ParamName != "BagFraction" {
		t.Errorf("unexpected param name: %s", ve.ParamName)
	}
}

func TestWrapPreservesType(t *testing.T) {
	base := NewValueError("Deviance", "index range out of bounds")
	wrapped := Wrap(base, "evaluating validation deviance")

	var ve *ValueError
	if !As(wrapped, &ve) {
		t.Fatal("wrapping lost the underlying error type")
	}
	if !strings.Contains(wrapped.Error(), "evaluating validation deviance") {
		t.Errorf("wrap message missing: %s", wrapped.Error())
	}
}
