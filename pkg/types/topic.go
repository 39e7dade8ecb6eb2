// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for topic-tree: the topic
// graph (nodes and edges), keyword metrics, and configuration.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"
)

// unavailableText is how an unavailable volume is displayed and serialized.
const unavailableText = "N/A"

// Volume is a keyword search volume that is either a known number or
// unavailable. The zero value is unavailable.
type Volume struct {
	value int64
	known bool
}

// KnownVolume returns a Volume holding v.
func KnownVolume(v int64) Volume {
	return Volume{value: v, known: true}
}

// UnavailableVolume returns a Volume with no value.
func UnavailableVolume() Volume {
	return Volume{}
}

// Value returns the volume and whether it is known.
func (v Volume) Value() (int64, bool) {
	return v.value, v.known
}

// Known reports whether the volume holds a number.
func (v Volume) Known() bool {
	return v.known
}

// String returns the number, or "N/A" when unavailable.
func (v Volume) String() string {
	if !v.known {
		return unavailableText
	}
	return strconv.FormatInt(v.value, 10)
}

// MarshalJSON encodes a known volume as a number and an unavailable one
// as the string "N/A".
func (v Volume) MarshalJSON() ([]byte, error) {
	if !v.known {
		return json.Marshal(unavailableText)
	}
	return json.Marshal(v.value)
}

// UnmarshalJSON accepts numbers, numeric strings, null, and any other
// string (treated as unavailable).
func (v *Volume) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*v = UnavailableVolume()
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return fmt.Errorf("decoding volume: %w", err)
		}
		*v = ParseVolume(str)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decoding volume: %w", err)
	}
	*v = KnownVolume(roundVolume(f))
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (v Volume) MarshalYAML() (any, error) {
	if !v.known {
		return unavailableText, nil
	}
	return v.value, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (v *Volume) UnmarshalYAML(node *yaml.Node) error {
	*v = ParseVolume(node.Value)
	return nil
}

// ParseVolume interprets s as a search volume. Anything that is not a
// number is unavailable.
func ParseVolume(s string) Volume {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return KnownVolume(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return KnownVolume(roundVolume(f))
	}
	return UnavailableVolume()
}

// roundVolume rounds f to the nearest int64, saturating at the int64 range.
func roundVolume(f float64) int64 {
	f = math.Round(f)
	switch {
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// Bucket groups a node by search volume for display.
type Bucket string

const (
	BucketHigh    Bucket = "high"
	BucketMedium  Bucket = "medium"
	BucketLow     Bucket = "low"
	BucketUnknown Bucket = "unknown"
)

// Volume thresholds for bucketing.
const (
	HighVolumeThreshold   = 10000
	MediumVolumeThreshold = 1000
)

// BucketFor returns the display bucket for a volume:
// high above 10000, medium above 1000, low above 0, unknown otherwise.
func BucketFor(v Volume) Bucket {
	n, ok := v.Value()
	switch {
	case !ok || n <= 0:
		return BucketUnknown
	case n > HighVolumeThreshold:
		return BucketHigh
	case n > MediumVolumeThreshold:
		return BucketMedium
	default:
		return BucketLow
	}
}

// TopicNode is one topic in the generated tree. ID is the topic string
// itself and is unique within a run.
type TopicNode struct {
	ID     string `json:"id" yaml:"id"`
	Volume Volume `json:"search_volume" yaml:"search_volume"`
}

// Bucket returns the node's display bucket.
func (n TopicNode) Bucket() Bucket {
	return BucketFor(n.Volume)
}

// Label returns the node's display label.
func (n TopicNode) Label() string {
	return fmt.Sprintf("%s (Search Volume: %s)", n.ID, n.Volume)
}

// TopicEdge links a parent topic to a child topic. Edges are not
// deduplicated: a topic reached from two parents has two edges.
type TopicEdge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// KeywordMetric is one keyword's search volume as returned by a metrics
// lookup.
type KeywordMetric struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Volume  Volume `json:"search_volume" yaml:"search_volume"`
}

// UnavailableMetrics returns one unavailable record per keyword, in order.
func UnavailableMetrics(keywords []string) []KeywordMetric {
	out := make([]KeywordMetric, len(keywords))
	for i, kw := range keywords {
		out[i] = KeywordMetric{Keyword: kw, Volume: UnavailableVolume()}
	}
	return out
}
