package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lesson struct {
	ID       int       `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Tags     []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	StartsAt time.Time `json:"startsAt" yaml:"startsAt"`
}

func codecs() []Codec {
	return []Codec{JSONCodec{}, YAMLCodec{}}
}

func TestCodec_RoundTrip(t *testing.T) {
	startsAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	for _, codec := range codecs() {
		t.Run(codec.Name(), func(t *testing.T) {
			t.Run("collection", func(t *testing.T) {
				in := []lesson{
					{ID: 1, Title: "Algebra", Tags: []string{"math"}, StartsAt: startsAt},
					{ID: 2, Title: "Biology", StartsAt: startsAt.Add(time.Hour)},
				}
				data, err := codec.Encode(in)
				require.NoError(t, err)

				var out []lesson
				require.NoError(t, codec.Decode(data, &out))
				assert.Equal(t, in, out)
			})

			t.Run("single object", func(t *testing.T) {
				in := lesson{ID: 7, Title: "Chemistry", StartsAt: startsAt}
				data, err := codec.Encode(in)
				require.NoError(t, err)

				var out lesson
				require.NoError(t, codec.Decode(data, &out))
				assert.Equal(t, in, out)
			})

			t.Run("map", func(t *testing.T) {
				in := map[string]int{"a": 1, "b": 2}
				data, err := codec.Encode(in)
				require.NoError(t, err)

				var out map[string]int
				require.NoError(t, codec.Decode(data, &out))
				assert.Equal(t, in, out)
			})
		})
	}
}

func TestCodec_Deterministic(t *testing.T) {
	in := map[string]int{"z": 1, "a": 2, "m": 3}
	for _, codec := range codecs() {
		first, err := codec.Encode(in)
		require.NoError(t, err)
		for range 5 {
			again, err := codec.Encode(in)
			require.NoError(t, err)
			assert.Equal(t, first, again, codec.Name())
		}
	}
}

func TestCodec_DecodeFailure(t *testing.T) {
	tests := []struct {
		name  string
		codec Codec
		data  string
		shape any
	}{
		{name: "json malformed", codec: JSONCodec{}, data: `[{"id": 1,`, shape: &[]lesson{}},
		{name: "json object into list", codec: JSONCodec{}, data: `{"id": 1}`, shape: &[]lesson{}},
		{name: "json list into object", codec: JSONCodec{}, data: `[{"id": 1}]`, shape: &lesson{}},
		{name: "json unknown field", codec: JSONCodec{}, data: `{"id": 1, "colour": "red"}`, shape: &lesson{}},
		{name: "json trailing data", codec: JSONCodec{}, data: `{"id": 1} {"id": 2}`, shape: &lesson{}},
		{name: "json wrong field type", codec: JSONCodec{}, data: `{"id": "one"}`, shape: &lesson{}},
		{name: "json non-pointer shape", codec: JSONCodec{}, data: `{"id": 1}`, shape: lesson{}},
		{name: "yaml malformed", codec: YAMLCodec{}, data: "- id: [1\n", shape: &[]lesson{}},
		{name: "yaml map into list", codec: YAMLCodec{}, data: "id: 1\n", shape: &[]lesson{}},
		{name: "yaml unknown field", codec: YAMLCodec{}, data: "id: 1\ncolour: red\n", shape: &lesson{}},
		{name: "yaml empty document", codec: YAMLCodec{}, data: "", shape: &lesson{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.codec.Decode([]byte(tt.data), tt.shape)
			assert.ErrorIs(t, err, ErrDecodeFailure)
		})
	}
}

func TestCodec_EncodeFailure(t *testing.T) {
	_, err := JSONCodec{}.Encode(make(chan int))
	assert.ErrorIs(t, err, ErrEncodeFailure)
}

func TestCodecByName(t *testing.T) {
	codec, err := CodecByName("json")
	require.NoError(t, err)
	assert.Equal(t, "json", codec.Name())

	codec, err = CodecByName("yaml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", codec.Name())

	_, err = CodecByName("xml")
	assert.ErrorIs(t, err, ErrUnsupported)
}
