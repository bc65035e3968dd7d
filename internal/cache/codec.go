package cache

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	encoderOnce sync.Once
	encoder     *zstd.Encoder
	decoderOnce sync.Once
	decoder     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		encoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	})
	return encoder
}

func zstdDecoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		decoder, _ = zstd.NewReader(nil)
	})
	return decoder
}

// encodeEntry serializes an entry as zstd-compressed JSON
func encodeEntry(e entry) ([]byte, error) {
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}
	return zstdEncoder().EncodeAll(raw, nil), nil
}

func decodeEntry(data []byte) (entry, error) {
	var e entry
	raw, err := zstdDecoder().DecodeAll(data, nil)
	if err != nil {
		return e, fmt.Errorf("failed to decompress entry: %w", err)
	}
	if err := json.Unmarshal(raw, &e); err != nil {
		return e, fmt.Errorf("failed to decode entry: %w", err)
	}
	return e, nil
}
