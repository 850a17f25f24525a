package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// JSONCodec encodes values as indented JSON. Decoding rejects unknown
// object fields and trailing data so a blob of the wrong shape fails
// instead of decoding into a partially filled value.
type JSONCodec struct{}

var _ Codec = JSONCodec{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return data, nil
}

func (JSONCodec) Decode(data []byte, shape any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(shape); err != nil {
		return fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after json value", ErrDecodeFailure)
	}
	return nil
}

// YAMLCodec encodes values as YAML documents. Struct fields follow the
// `yaml` tag conventions of gopkg.in/yaml.v3; unknown fields are rejected.
type YAMLCodec struct{}

var _ Codec = YAMLCodec{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Encode(v any) ([]byte, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return data, nil
}

func (YAMLCodec) Decode(data []byte, shape any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(shape); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty yaml document", ErrDecodeFailure)
		}
		return fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}
	return nil
}

// CodecByName returns the codec registered under name ("json" or "yaml").
func CodecByName(name string) (Codec, error) {
	switch name {
	case JSONCodec{}.Name():
		return JSONCodec{}, nil
	case YAMLCodec{}.Name():
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %q", ErrUnsupported, name)
	}
}
