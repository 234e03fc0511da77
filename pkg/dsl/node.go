package dsl

import "github.com/Catneko-0422/tuerulebase/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node and adding
// children beneath it.
type NodeBuilder struct {
	builder *Builder
	index   int
}

func (n *NodeBuilder) node() *domain.Node {
	return &n.builder.nodes[n.index]
}

func (n *NodeBuilder) child(node domain.Node) *NodeBuilder {
	parent := n.node()
	node.RuleID = parent.RuleID
	node.ParentID = domain.ParentRef(parent.ID)
	return n.builder.add(node)
}

// ID returns the node id.
func (n *NodeBuilder) ID() int64 {
	return n.node().ID
}

// Option adds an OPTION child and returns the receiver, so options chain.
func (n *NodeBuilder) Option(code, name string) *NodeBuilder {
	n.child(domain.Node{Name: name, Type: domain.NodeTypeOption, Code: code, SegmentLength: len(code)})
	return n
}

// AddOption adds an OPTION child and returns the option's own builder.
func (n *NodeBuilder) AddOption(code, name string) *NodeBuilder {
	return n.child(domain.Node{Name: name, Type: domain.NodeTypeOption, Code: code, SegmentLength: len(code)})
}

// OptionID returns the id of the OPTION child with the given code, or 0.
func (n *NodeBuilder) OptionID(code string) int64 {
	for _, c := range n.builder.nodes {
		if c.Type == domain.NodeTypeOption && c.Parent() == n.ID() && c.Code == code {
			return c.ID
		}
	}
	return 0
}

// Static adds a STATIC child.
func (n *NodeBuilder) Static(name string) *NodeBuilder {
	return n.child(domain.Node{Name: name, Type: domain.NodeTypeStatic})
}

// Fixed adds a FIXED child matching code.
func (n *NodeBuilder) Fixed(name, code string) *NodeBuilder {
	return n.child(domain.Node{Name: name, Type: domain.NodeTypeFixed, Code: code, SegmentLength: len(code)})
}

// Input adds an INPUT child consuming length characters.
func (n *NodeBuilder) Input(name string, length int) *NodeBuilder {
	return n.child(domain.Node{Name: name, Type: domain.NodeTypeInput, SegmentLength: length})
}

// Serial adds a SERIAL child consuming length characters.
func (n *NodeBuilder) Serial(name string, length int) *NodeBuilder {
	return n.child(domain.Node{Name: name, Type: domain.NodeTypeSerial, SegmentLength: length})
}

// Sort sets the sibling ordering key.
func (n *NodeBuilder) Sort(order int) *NodeBuilder {
	n.node().SortOrder = order
	return n
}

// Regex sets the advisory value pattern.
func (n *NodeBuilder) Regex(pattern string) *NodeBuilder {
	n.node().ValueRegex = pattern
	return n
}

// Placeholder sets the display placeholder.
func (n *NodeBuilder) Placeholder(p string) *NodeBuilder {
	n.node().ValuePlaceholder = p
	return n
}

// Describe sets the free-text description.
func (n *NodeBuilder) Describe(d string) *NodeBuilder {
	n.node().Description = d
	return n
}

// Build returns a copy of the underlying domain.Node.
func (n *NodeBuilder) Build() domain.Node {
	node := *n.node()
	if node.ParentID != nil {
		node.ParentID = domain.ParentRef(*node.ParentID)
	}
	return node
}
