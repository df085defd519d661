// Package compress wraps zstd for the document bodies and serialized
// index blobs the index store persists (C2), with a decode path that
// tolerates legacy uncompressed values.
package compress

import (
	"encoding/base64"
	"sync"

	"github.com/klauspost/compress/zstd"
)

var (
	encoderOnce sync.Once
	sharedEnc   *zstd.Encoder

	decoderOnce sync.Once
	sharedDec   *zstd.Decoder
)

func encoder() *zstd.Encoder {
	encoderOnce.Do(func() {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			// SpeedDefault with a nil writer never fails to construct.
			panic(err)
		}
		sharedEnc = enc
	})
	return sharedEnc
}

func decoder() *zstd.Decoder {
	decoderOnce.Do(func() {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}
		sharedDec = dec
	})
	return sharedDec
}

// Compress zstd-encodes data at the configured (level-3-equivalent) speed.
func Compress(data []byte) []byte {
	return encoder().EncodeAll(data, make([]byte, 0, len(data)))
}

// DecodeTolerant decompresses data, falling back to treating it as
// already-raw bytes if zstd decoding fails (spec §4.2, DecodeFailure kind).
func DecodeTolerant(data []byte) []byte {
	out, err := decoder().DecodeAll(data, nil)
	if err != nil {
		return data
	}
	return out
}

// EncodeString compresses and base64-wraps data for storage in a
// string-only transport field (spec §9's recommendation, applied to doc,
// chaos, and active_index payloads alike).
func EncodeString(data []byte) string {
	return base64.StdEncoding.EncodeToString(Compress(data))
}

// DecodeString reverses EncodeString, tolerating values that were never
// base64-wrapped or never compressed (legacy plain values).
func DecodeString(s string) []byte {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return []byte(s)
	}
	return DecodeTolerant(raw)
}
