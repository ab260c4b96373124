package model

import (
	"bytes"
	"path/filepath"
	"testing"
)

type fixture struct {
	Name    string
	Weights []float64
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	in := fixture{Name: "m", Weights: []float64{1.5, -2.25}}
	if err := SaveModel(&in, path); err != nil {
		t.Fatalf("SaveModel: %v", err)
	}

	var out fixture
	if err := LoadModel(&out, path); err != nil {
		t.Fatalf("LoadModel: %v", err)
	}
	if out.Name != in.Name || len(out.Weights) != 2 || out.Weights[1] != -2.25 {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestLoadMissingFile(t *testing.T) {
	var out fixture
	if err := LoadModel(&out, filepath.Join(t.TempDir(), "absent.gob")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSaveLoadWriter(t *testing.T) {
	var buf bytes.Buffer
	in := fixture{Name: "w"}
	if err := SaveModelToWriter(&in, &buf); err != nil {
		t.Fatalf("SaveModelToWriter: %v", err)
	}
	var out fixture
	if err := LoadModelFromReader(&out, &buf); err != nil {
		t.Fatalf("LoadModelFromReader: %v", err)
	}
	if out.Name != "w" {
		t.Errorf("Name = %q, want \"w\"", out.Name)
	}
}

func TestLoadGarbage(t *testing.T) {
	var out fixture
	if err := LoadModelFromReader(&out, bytes.NewReader([]byte{0x01, 0x02})); err == nil {
		t.Fatal("expected a decode error")
	}
}
