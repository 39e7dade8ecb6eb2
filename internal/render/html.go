// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/pdiddy/topic-tree/pkg/types"
)

// visNetworkURL is the vis-network build loaded by rendered pages.
var visNetworkURL = "https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"

const containerID = "topic-graph"

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html.tmpl"))

// LegendEntry is one bucket in a page legend.
type LegendEntry struct {
	Name  string
	Color string
}

// Legend lists the buckets from highest to unknown with their colors.
func Legend() []LegendEntry {
	buckets := []types.Bucket{types.BucketHigh, types.BucketMedium, types.BucketLow, types.BucketUnknown}
	out := make([]LegendEntry, len(buckets))
	for i, b := range buckets {
		out[i] = LegendEntry{Name: string(b), Color: ColorFor(b)}
	}
	return out
}

type view struct {
	Title       string
	Library     string
	ContainerID string
	Width       int
	Height      int
	Data        Data
	Legend      []LegendEntry
}

func newView(title string, nodes []types.TopicNode, edges []types.TopicEdge, opts Options) view {
	opts = opts.withDefaults()
	return view{
		Title:       title,
		Library:     visNetworkURL,
		ContainerID: containerID,
		Width:       opts.Width,
		Height:      opts.Height,
		Data:        Graph(nodes, edges, opts),
		Legend:      Legend(),
	}
}

// Fragment renders the graph as an HTML snippet that can be placed inside
// another page.
func Fragment(nodes []types.TopicNode, edges []types.TopicEdge, opts Options) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "fragment", newView("", nodes, edges, opts)); err != nil {
		return "", fmt.Errorf("rendering graph: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// WriteHTML writes a standalone page showing the graph to w.
func WriteHTML(w io.Writer, title string, nodes []types.TopicNode, edges []types.TopicEdge, opts Options) error {
	if err := templates.ExecuteTemplate(w, "page", newView(title, nodes, edges, opts)); err != nil {
		return fmt.Errorf("rendering graph page: %w", err)
	}
	return nil
}

// WriteHTMLFile writes the standalone page to path.
func WriteHTMLFile(path, title string, nodes []types.TopicNode, edges []types.TopicEdge, opts Options) error {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, title, nodes, edges, opts); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
