package schemacache

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// compressThreshold is the encoded size above which entries are zstd-compressed.
const compressThreshold = 4 * 1024

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// codec compresses large cache entries. Small entries are stored as plain
// JSON; readers tell the two apart by the zstd frame magic.
type codec struct {
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	threshold int
}

func newCodec() (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{encoder: encoder, decoder: decoder, threshold: compressThreshold}, nil
}

func (c *codec) encode(data []byte) []byte {
	if c == nil || len(data) <= c.threshold {
		return data
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
}

func (c *codec) decode(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	if c == nil {
		return nil, fmt.Errorf("compressed entry without decoder")
	}
	out, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress entry: %w", err)
	}
	return out, nil
}
