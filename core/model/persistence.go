package model

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

// Save はモデルをファイルに保存する。拡張子が .gob ならgob、それ以外はJSON
//
// 使用例:
//
//	weights, _ := lr.ExportWeights()
//	err := model.Save(weights, "sleep_model.json")
func Save(v interface{}, filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	defer file.Close()

	if isGob(filename) {
		return SaveModelToWriter(v, file)
	}
	return SaveJSONToWriter(v, file)
}

// Load はファイルからモデルを読み込む。拡張子でフォーマットを判定する
//
// A missing file yields an error that matches fs.ErrNotExist.
func Load(v interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	if isGob(filename) {
		return LoadModelFromReader(v, file)
	}
	return LoadJSONFromReader(v, file)
}

// SaveModelToWriter はモデルをgobでio.Writerに保存する
func SaveModelToWriter(v interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader はio.Readerからgobでモデルを読み込む
func LoadModelFromReader(v interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

// SaveJSONToWriter writes v as indented JSON.
func SaveJSONToWriter(v interface{}, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadJSONFromReader decodes JSON into v, rejecting unknown fields.
func LoadJSONFromReader(v interface{}, r io.Reader) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}

func isGob(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".gob")
}
