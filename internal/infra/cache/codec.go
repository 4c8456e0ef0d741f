package cache

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// Codec converts values of T to and from their stored string form.
type Codec[T any] struct {
	Encode func(v T) (string, error)
	Decode func(s string) (T, error)
}

// JSON returns a codec that stores values as JSON. Decoding rejects unknown
// fields and trailing data so that entries written for a different shape of
// T are reported as corrupt instead of being half-read.
func JSON[T any]() Codec[T] {
	return Codec[T]{
		Encode: func(v T) (string, error) {
			data, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(data), nil
		},
		Decode: func(s string) (T, error) {
			var v, zero T
			dec := json.NewDecoder(strings.NewReader(s))
			dec.DisallowUnknownFields()
			if err := dec.Decode(&v); err != nil {
				return zero, err
			}
			if _, err := dec.Token(); !errors.Is(err, io.EOF) {
				return zero, errors.New("trailing data after value")
			}
			return v, nil
		},
	}
}
