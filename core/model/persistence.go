package model

import (
	"encoding/gob"
	"encoding/json"
	"io"
	"os"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
)

// Format はスナップショットのエンコード形式
type Format string

const (
	// FormatGob はencoding/gobによるバイナリ形式
	FormatGob Format = "gob"
	// FormatJSON は人が読めるJSON形式
	FormatJSON Format = "json"
)

// ParseFormat はファイル拡張子やフラグ値から形式を判定する
func ParseFormat(s string) (Format, error) {
	switch s {
	case "gob", ".gob":
		return FormatGob, nil
	case "json", ".json":
		return FormatJSON, nil
	default:
		return "", errors.NewValidationError("format", "must be gob or json", s)
	}
}

// SaveModel はスナップショットをファイルに保存する
//
// 使用例:
//
//	snap, _ := clf.Export()
//	err := model.SaveModel(snap, "model.gob", model.FormatGob)
func SaveModel(snapshot interface{}, filename string, format Format) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", filename)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "failed to close %s", filename)
		}
	}()

	return SaveModelToWriter(snapshot, file, format)
}

// LoadModel はファイルからスナップショットを読み込む
//
// 使用例:
//
//	var snap svm.Snapshot
//	err := model.LoadModel(&snap, "model.gob", model.FormatGob)
func LoadModel(snapshot interface{}, filename string, format Format) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", filename)
	}
	defer file.Close()

	return LoadModelFromReader(snapshot, file, format)
}

// SaveModelToWriter はスナップショットをio.Writerに書き出す
func SaveModelToWriter(snapshot interface{}, w io.Writer, format Format) error {
	switch format {
	case FormatGob:
		if err := gob.NewEncoder(w).Encode(snapshot); err != nil {
			return errors.Wrap(err, "failed to encode model")
		}
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot); err != nil {
			return errors.Wrap(err, "failed to encode model")
		}
	default:
		return errors.NewValidationError("format", "must be gob or json", string(format))
	}
	return nil
}

// LoadModelFromReader はio.Readerからスナップショットを読み込む
//
// デコードに失敗した場合は errors.ErrInvalidInput としてマークされる。
func LoadModelFromReader(snapshot interface{}, r io.Reader, format Format) error {
	var err error
	switch format {
	case FormatGob:
		err = gob.NewDecoder(r).Decode(snapshot)
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(snapshot)
	default:
		return errors.NewValidationError("format", "must be gob or json", string(format))
	}
	if err != nil {
		return errors.Mark(errors.Wrap(err, "failed to decode model"), errors.ErrInvalidInput)
	}
	return nil
}
