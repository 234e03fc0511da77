package domain

import "strings"

// NodeType selects how a node consumes characters of a code.
type NodeType string

const (
	// NodeTypeStatic selects among its OPTION children by literal prefix.
	NodeTypeStatic NodeType = "STATIC"
	// NodeTypeOption is a literal choice under a STATIC parent.
	// It is never matched on its own.
	NodeTypeOption NodeType = "OPTION"
	// NodeTypeFixed is a single mandatory literal segment.
	NodeTypeFixed NodeType = "FIXED"
	// NodeTypeInput is a fixed-length free-form value segment.
	NodeTypeInput NodeType = "INPUT"
	// NodeTypeSerial is a fixed-length serial number segment.
	NodeTypeSerial NodeType = "SERIAL"
)

// ParseNodeType normalizes a node type name. Unknown names are returned
// upper-cased with ok=false.
func ParseNodeType(s string) (NodeType, bool) {
	t := NodeType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case NodeTypeStatic, NodeTypeOption, NodeTypeFixed, NodeTypeInput, NodeTypeSerial:
		return t, true
	}
	return t, false
}

// Consumes reports whether the type takes a fixed number of characters
// regardless of content.
func (t NodeType) Consumes() bool {
	return t == NodeTypeInput || t == NodeTypeSerial
}

// Rule identifies a named encoding scheme. One Rule owns many Nodes.
type Rule struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	TotalLength int    `json:"total_length" yaml:"total_length"`
	Active      bool   `json:"is_active" yaml:"active"`
}

// DefaultTotalLength is the expected code length of a rule created without one.
const DefaultTotalLength = 16

// Node is a typed element of a rule tree.
// A nil ParentID marks a root.
type Node struct {
	ID       int64    `json:"id" yaml:"id"`
	RuleID   int64    `json:"rule_id" yaml:"rule_id"`
	ParentID *int64   `json:"parent_id" yaml:"parent_id,omitempty"`
	Name     string   `json:"name" yaml:"name"`
	Type     NodeType `json:"node_type" yaml:"type"`

	SegmentLength int `json:"segment_length" yaml:"segment_length"`

	// Code is the literal matched by OPTION and FIXED nodes.
	Code string `json:"code,omitempty" yaml:"code,omitempty"`

	// ValueRegex is advisory: the decoder never enforces it.
	ValueRegex       string `json:"value_regex,omitempty" yaml:"value_regex,omitempty"`
	ValuePlaceholder string `json:"value_placeholder,omitempty" yaml:"value_placeholder,omitempty"`

	SortOrder   int    `json:"sort_order" yaml:"sort_order"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return n.ParentID == nil
}

// Parent returns the parent id, or 0 for roots.
func (n Node) Parent() int64 {
	if n.ParentID == nil {
		return 0
	}
	return *n.ParentID
}

// ParentRef returns a pointer suitable for Node.ParentID.
func ParentRef(id int64) *int64 {
	return &id
}
