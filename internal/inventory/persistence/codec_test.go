package persistence

import (
	"math"
	"testing"

	"github.com/abgdnv/stockroom/internal/inventory"
	ierrors "github.com/abgdnv/stockroom/internal/inventory/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSequences() map[string][]inventory.Item {
	return map[string][]inventory.Item{
		"empty": {},
		"single": {
			inventory.NewItem("A1", "Sugar", 12, 1500.5),
		},
		"duplicate ids keep order": {
			inventory.NewItem("A", "Apple", 1, 0.1),
			inventory.NewItem("B", "Banana", -4, 0),
			inventory.NewItem("A", "Avocado", 0, 1e-9),
		},
		"awkward values": {
			inventory.NewItem("", "", math.MinInt32, -0.3),
			inventory.NewItem("ünïcode", "line\nbreak \"quoted\"", math.MaxInt32, math.MaxFloat64),
			inventory.NewItem("inf", "Infinity", 1, math.Inf(1)),
		},
	}
}

func codecs() map[string]Codec {
	return map[string]Codec{
		FormatJSON:   JSONCodec{},
		FormatBinary: BinaryCodec{},
	}
}

func Test_Codec_RoundTrip(t *testing.T) {
	for codecName, codec := range codecs() {
		for seqName, items := range sampleSequences() {
			t.Run(codecName+"/"+seqName, func(t *testing.T) {
				// when
				data, err := codec.Encode(items)
				require.NoError(t, err)
				decoded, err := codec.Decode(data)
				// then
				require.NoError(t, err)
				assert.Equal(t, items, decoded)
			})
		}
	}
}

func Test_Codec_RoundTrip_NaNBits(t *testing.T) {
	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Encode([]inventory.Item{inventory.NewItem("n", "NaN", 1, math.NaN())})
			require.NoError(t, err)

			decoded, err := codec.Decode(data)

			require.NoError(t, err)
			require.Len(t, decoded, 1)
			assert.True(t, math.IsNaN(decoded[0].Price))
		})
	}
}

func Test_Codec_Decode_Mismatch(t *testing.T) {
	testCases := []struct {
		name  string
		codec Codec
		data  []byte
	}{
		{name: "json garbage", codec: JSONCodec{}, data: []byte("\xac\xed\x00\x05sr")},
		{name: "json empty", codec: JSONCodec{}, data: []byte{}},
		{name: "json wrong version", codec: JSONCodec{}, data: []byte(`{"version":2,"items":[]}`)},
		{name: "json bad price", codec: JSONCodec{}, data: []byte(`{"version":1,"items":[{"id":"a","name":"b","quantity":1,"price":"cheap"}]}`)},
		{name: "json unknown field", codec: JSONCodec{}, data: []byte(`{"version":1,"items":[],"extra":true}`)},
		{name: "binary no magic", codec: BinaryCodec{}, data: []byte(`{"version":1}`)},
		{name: "binary wrong version", codec: BinaryCodec{}, data: []byte("STKR\x02")},
		{name: "binary truncated item", codec: BinaryCodec{}, data: []byte("STKR\x01\x0a\x01")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := tc.codec.Decode(tc.data)

			assert.ErrorIs(t, err, ierrors.ErrFormatMismatch)
			assert.Nil(t, items)
		})
	}
}

func Test_NewCodec(t *testing.T) {
	testCases := []struct {
		format      string
		expected    Codec
		expectError bool
	}{
		{format: "", expected: JSONCodec{}},
		{format: "json", expected: JSONCodec{}},
		{format: "binary", expected: BinaryCodec{}},
		{format: "xml", expectError: true},
	}

	for _, tc := range testCases {
		t.Run(tc.format, func(t *testing.T) {
			codec, err := NewCodec(tc.format)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, codec)
		})
	}
}
