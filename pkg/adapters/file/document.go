package file

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a portable set of rule trees.
type Document struct {
	Rules []RuleDoc `yaml:"rules" json:"rules"`
}

// RuleDoc is one rule and its roots.
type RuleDoc struct {
	Name        string    `yaml:"name" json:"name"`
	TotalLength int       `yaml:"total_length,omitempty" json:"total_length,omitempty"`
	Active      *bool     `yaml:"active,omitempty" json:"active,omitempty"`
	Nodes       []NodeDoc `yaml:"nodes" json:"nodes"`
}

// NodeDoc is a node with its subtree. Options holds the OPTION children
// of a STATIC node; their type may be omitted. Other nodes without a type
// are STATIC.
//
// Order is only read on roots: the 1-based position of the root among the
// roots of every rule in the document. Decoding tries roots in that order
// across rules, so Export records it and Import honors it.
type NodeDoc struct {
	Name          string    `yaml:"name" json:"name"`
	Order         int       `yaml:"order,omitempty" json:"order,omitempty"`
	Type          string    `yaml:"type,omitempty" json:"type,omitempty"`
	SegmentLength int       `yaml:"segment_length,omitempty" json:"segment_length,omitempty"`
	Code          string    `yaml:"code,omitempty" json:"code,omitempty"`
	ValueRegex    string    `yaml:"value_regex,omitempty" json:"value_regex,omitempty"`
	Placeholder   string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	SortOrder     int       `yaml:"sort_order,omitempty" json:"sort_order,omitempty"`
	Description   string    `yaml:"description,omitempty" json:"description,omitempty"`
	Options       []NodeDoc `yaml:"options,omitempty" json:"options,omitempty"`
	Children      []NodeDoc `yaml:"children,omitempty" json:"children,omitempty"`
}

// Parse decodes a YAML document. JSON is accepted as well, being a subset
// of YAML. Unknown fields are rejected.
func Parse(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &doc, nil
		}
		return nil, fmt.Errorf("failed to parse rule document: %w", err)
	}
	return &doc, nil
}

// Load reads a document from path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule document: %w", err)
	}
	defer f.Close()
	doc, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Encode writes doc as JSON when asJSON is set, YAML otherwise.
func Encode(w io.Writer, doc *Document, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// Save writes doc to path atomically. A ".json" extension selects JSON.
func Save(path string, doc *Document) error {
	var buf bytes.Buffer
	if err := Encode(&buf, doc, strings.EqualFold(filepath.Ext(path), ".json")); err != nil {
		return fmt.Errorf("failed to encode rule document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-rules-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
