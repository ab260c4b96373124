// Package model provides persistence helpers shared by fitted models.
package model

import (
	"encoding/gob"
	"io"
	"os"

	"github.com/goml-dev/goboost/pkg/errors"
)

// SaveModel writes a model to a file using gob encoding.
func SaveModel(model interface{}, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.NewModelError("SaveModel", "create file", err)
	}
	defer file.Close()

	return SaveModelToWriter(model, file)
}

// LoadModel reads a model from a file written by SaveModel. The model
// argument must be a pointer to the concrete type that was saved.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.NewModelError("LoadModel", "open file", err)
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes a model to w.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.NewModelError("SaveModel", "encode", err)
	}
	return nil
}

// LoadModelFromReader gob-decodes a model from r.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.NewModelError("LoadModel", "decode", err)
	}
	return nil
}
