// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns a generated topic tree into an interactive
// vis-network graph and into YAML or JSON exports.
package render

import (
	"github.com/pdiddy/topic-tree/pkg/types"
)

// Default display settings.
const (
	DefaultWidth          = 800
	DefaultHeight         = 800
	DefaultHighlightColor = "#F7A7A6"
	DefaultOutputFile     = "generated_topic_graph.html"

	// FontColor is the label color of every node.
	FontColor = "white"
)

// Palette maps a volume bucket to its node color.
var Palette = map[types.Bucket]string{
	types.BucketHigh:    "#97eb14",
	types.BucketMedium:  "#f4ff00",
	types.BucketLow:     "#f10e38",
	types.BucketUnknown: "white",
}

// ColorFor returns the node color for b. Unrecognized buckets get the
// unknown color.
func ColorFor(b types.Bucket) string {
	if c, ok := Palette[b]; ok {
		return c
	}
	return Palette[types.BucketUnknown]
}

// Options controls how the graph is drawn.
type Options struct {
	Width          int
	Height         int
	Physics        bool
	Hierarchical   bool
	HighlightColor string
	Directed       bool
}

// DefaultOptions returns an 800x800 directed graph with a static layout.
func DefaultOptions() Options {
	return Options{
		Width:          DefaultWidth,
		Height:         DefaultHeight,
		HighlightColor: DefaultHighlightColor,
		Directed:       true,
	}
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.HighlightColor == "" {
		o.HighlightColor = DefaultHighlightColor
	}
	return o
}

// Data is the vis-network data set and options for one graph.
type Data struct {
	Nodes   []Node     `json:"nodes"`
	Edges   []Edge     `json:"edges"`
	Options VisOptions `json:"options"`
}

// Node is a vis-network node.
type Node struct {
	ID     string    `json:"id"`
	Label  string    `json:"label"`
	Title  string    `json:"title"`
	Bucket string    `json:"bucket"`
	Color  NodeColor `json:"color"`
	Font   Font      `json:"font"`
}

// NodeColor is a node's fill, border and selection colors.
type NodeColor struct {
	Background string    `json:"background"`
	Border     string    `json:"border"`
	Highlight  ColorPair `json:"highlight"`
}

// ColorPair is a background and border color.
type ColorPair struct {
	Background string `json:"background"`
	Border     string `json:"border"`
}

// Font is a node label font.
type Font struct {
	Color string `json:"color"`
}

// Edge is a vis-network edge.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// VisOptions is the subset of vis-network options the graph sets.
type VisOptions struct {
	Edges struct {
		Arrows struct {
			To struct {
				Enabled bool `json:"enabled"`
			} `json:"to"`
		} `json:"arrows"`
		Color struct {
			Highlight string `json:"highlight"`
		} `json:"color"`
	} `json:"edges"`
	Physics struct {
		Enabled bool `json:"enabled"`
	} `json:"physics"`
	Layout struct {
		Hierarchical struct {
			Enabled   bool   `json:"enabled"`
			Direction string `json:"direction,omitempty"`
		} `json:"hierarchical"`
	} `json:"layout"`
	Interaction struct {
		Hover bool `json:"hover"`
	} `json:"interaction"`
}

// Graph builds the vis-network data for nodes and edges. Node colors come
// from each node's volume bucket.
func Graph(nodes []types.TopicNode, edges []types.TopicEdge, opts Options) Data {
	opts = opts.withDefaults()

	d := Data{
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		fill := ColorFor(n.Bucket())
		d.Nodes[i] = Node{
			ID:     n.ID,
			Label:  n.Label(),
			Title:  n.Label(),
			Bucket: string(n.Bucket()),
			Color: NodeColor{
				Background: fill,
				Border:     fill,
				Highlight:  ColorPair{Background: opts.HighlightColor, Border: opts.HighlightColor},
			},
			Font: Font{Color: FontColor},
		}
	}
	for i, e := range edges {
		d.Edges[i] = Edge{From: e.Source, To: e.Target}
	}

	d.Options.Edges.Arrows.To.Enabled = opts.Directed
	d.Options.Edges.Color.Highlight = opts.HighlightColor
	d.Options.Physics.Enabled = opts.Physics
	d.Options.Layout.Hierarchical.Enabled = opts.Hierarchical
	if opts.Hierarchical {
		d.Options.Layout.Hierarchical.Direction = "UD"
	}
	d.Options.Interaction.Hover = true
	return d
}
