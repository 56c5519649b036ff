package cache

import (
	"bytes"
	"encoding/gob"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"f1trackrenderer/pkg/model"
)

// Encode serializes a loaded session into a zstd compressed gob stream.
func Encode(s *model.Session) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if err := gob.NewEncoder(zw).Encode(s); err != nil {
		zw.Close()
		return nil, errors.Wrap(err, "encode session")
	}
	if err := zw.Close(); err != nil {
		return nil, errors.Wrap(err, "compress session")
	}
	return buf.Bytes(), nil
}

func Decode(blob []byte) (*model.Session, error) {
	zr, err := zstd.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, errors.Wrap(err, "decompress session")
	}
	defer zr.Close()

	s := &model.Session{}
	if err := gob.NewDecoder(zr).Decode(s); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	return s, nil
}
