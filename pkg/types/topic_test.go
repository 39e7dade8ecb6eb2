// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name   string
		volume Volume
		want   Bucket
	}{
		{"unavailable", UnavailableVolume(), BucketUnknown},
		{"zero", KnownVolume(0), BucketUnknown},
		{"negative", KnownVolume(-5), BucketUnknown},
		{"one", KnownVolume(1), BucketLow},
		{"low upper bound", KnownVolume(1000), BucketLow},
		{"medium lower bound", KnownVolume(1001), BucketMedium},
		{"medium upper bound", KnownVolume(10000), BucketMedium},
		{"high lower bound", KnownVolume(10001), BucketHigh},
		{"very high", KnownVolume(2_500_000), BucketHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketFor(tt.volume))
		})
	}
}

func TestBucketForExhaustiveRange(t *testing.T) {
	for v := int64(-10); v <= 20000; v++ {
		got := BucketFor(KnownVolume(v))
		assert.Equal(t, got == BucketHigh, v > 10000, "high at %d", v)
		assert.Equal(t, got == BucketMedium, v > 1000 && v <= 10000, "medium at %d", v)
		assert.Equal(t, got == BucketLow, v > 0 && v <= 1000, "low at %d", v)
		assert.Equal(t, got == BucketUnknown, v <= 0, "unknown at %d", v)
	}
}

func TestTopicNodeLabel(t *testing.T) {
	assert.Equal(t, "Go (Search Volume: 1200)", TopicNode{ID: "Go", Volume: KnownVolume(1200)}.Label())
	assert.Equal(t, "Go (Search Volume: N/A)", TopicNode{ID: "Go"}.Label())
}

func TestParseVolume(t *testing.T) {
	tests := []struct {
		in   string
		want Volume
	}{
		{"42", KnownVolume(42)},
		{" 42 ", KnownVolume(42)},
		{"12.6", KnownVolume(13)},
		{"N/A", UnavailableVolume()},
		{"", UnavailableVolume()},
		{"lots", UnavailableVolume()},
		{"NaN", UnavailableVolume()},
		{"1e20", KnownVolume(math.MaxInt64)},
		{"-1e20", KnownVolume(math.MinInt64)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVolume(tt.in))
		})
	}
}

func TestVolumeJSONDecoding(t *testing.T) {
	var got []KeywordMetric
	data := `[
		{"keyword": "a", "search_volume": 1500},
		{"keyword": "b", "search_volume": "N/A"},
		{"keyword": "c", "search_volume": null},
		{"keyword": "d", "search_volume": "880"},
		{"keyword": "e"}
	]`
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	require.Len(t, got, 5)

	assert.Equal(t, KnownVolume(1500), got[0].Volume)
	assert.False(t, got[1].Volume.Known())
	assert.False(t, got[2].Volume.Known())
	assert.Equal(t, KnownVolume(880), got[3].Volume)
	assert.False(t, got[4].Volume.Known())
}

func TestVolumeJSONDecodingSaturates(t *testing.T) {
	var v Volume
	require.NoError(t, json.Unmarshal([]byte(`1e20`), &v))
	assert.Equal(t, KnownVolume(math.MaxInt64), v)
	assert.Equal(t, BucketHigh, BucketFor(v))

	require.NoError(t, json.Unmarshal([]byte(`"1e20"`), &v))
	assert.Equal(t, KnownVolume(math.MaxInt64), v)
}

func TestVolumeEncoding(t *testing.T) {
	out, err := json.Marshal([]Volume{KnownVolume(7), UnavailableVolume()})
	require.NoError(t, err)
	assert.JSONEq(t, `[7, "N/A"]`, string(out))

	y, err := yaml.Marshal(map[string]Volume{"a": KnownVolume(7), "b": UnavailableVolume()})
	require.NoError(t, err)
	assert.Contains(t, string(y), "a: 7")
	assert.Contains(t, string(y), "b: N/A")

	var back map[string]Volume
	require.NoError(t, yaml.Unmarshal(y, &back))
	assert.Equal(t, KnownVolume(7), back["a"])
	assert.False(t, back["b"].Known())
}

func TestUnavailableMetrics(t *testing.T) {
	got := UnavailableMetrics([]string{"x", "y"})
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].Keyword)
	assert.Equal(t, "y", got[1].Keyword)
	for _, m := range got {
		assert.Equal(t, BucketUnknown, BucketFor(m.Volume))
	}
}
