// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/topic-tree/internal/tree"
	"github.com/pdiddy/topic-tree/pkg/types"
)

// Export is the serialized form of a run.
type Export struct {
	RunID          string                `json:"run_id" yaml:"run_id"`
	RootTopic      string                `json:"root_topic" yaml:"root_topic"`
	MaxLevel       int                   `json:"max_level" yaml:"max_level"`
	BranchFactor   int                   `json:"branch_factor" yaml:"branch_factor"`
	ElapsedSeconds float64               `json:"elapsed_seconds" yaml:"elapsed_seconds"`
	Nodes          []ExportNode          `json:"nodes" yaml:"nodes"`
	Edges          []types.TopicEdge     `json:"edges" yaml:"edges"`
	Log            []string              `json:"log" yaml:"log"`
	KeywordData    []types.KeywordMetric `json:"keyword_data" yaml:"keyword_data"`
	Warnings       []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Published      []string              `json:"published,omitempty" yaml:"published,omitempty"`
}

// ExportNode is a node with its display attributes.
type ExportNode struct {
	ID           string       `json:"id" yaml:"id"`
	Label        string       `json:"label" yaml:"label"`
	SearchVolume types.Volume `json:"search_volume" yaml:"search_volume"`
	Bucket       types.Bucket `json:"bucket" yaml:"bucket"`
	Color        string       `json:"color" yaml:"color"`
}

// NewExport builds the export form of res.
func NewExport(res *tree.Result) Export {
	e := Export{
		RunID:          res.RunID,
		RootTopic:      res.Config.RootTopic,
		MaxLevel:       res.Config.MaxLevel,
		BranchFactor:   res.Config.BranchFactor,
		ElapsedSeconds: res.Elapsed.Seconds(),
		Nodes:          make([]ExportNode, len(res.Nodes)),
		Edges:          res.Edges,
		Log:            res.Log,
		KeywordData:    res.Metrics,
		Warnings:       res.Warnings,
		Published:      res.Published,
	}
	for i, n := range res.Nodes {
		e.Nodes[i] = ExportNode{
			ID:           n.ID,
			Label:        n.Label(),
			SearchVolume: n.Volume,
			Bucket:       n.Bucket(),
			Color:        ColorFor(n.Bucket()),
		}
	}
	return e
}

// ExportYAML writes res as YAML to w.
func ExportYAML(w io.Writer, res *tree.Result) error {
	data, err := yaml.Marshal(NewExport(res))
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportJSON writes res as indented JSON to w.
func ExportJSON(w io.Writer, res *tree.Result) error {
	data, err := json.MarshalIndent(NewExport(res), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ExportFile writes res to path, choosing YAML or JSON from the extension.
func ExportFile(path string, res *tree.Result) error {
	var write func(io.Writer, *tree.Result) error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		write = ExportYAML
	case ".json":
		write = ExportJSON
	default:
		return fmt.Errorf("unsupported export format %q (use .yaml or .json)", filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
