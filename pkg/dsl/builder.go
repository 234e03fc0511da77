package dsl

import (
	"context"
	"fmt"

	"github.com/Catneko-0422/tuerulebase/pkg/adapters/memory"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
)

// Builder manages rule tree construction. Ids are assigned in creation
// order, the same order a fresh store would assign them.
type Builder struct {
	rules []domain.Rule
	nodes []domain.Node
}

// New creates a new tree builder.
func New() *Builder {
	return &Builder{}
}

// Rule starts a new rule.
func (b *Builder) Rule(name string, totalLength int) *RuleBuilder {
	rule := domain.Rule{
		ID:          int64(len(b.rules) + 1),
		Name:        name,
		TotalLength: totalLength,
		Active:      true,
	}
	b.rules = append(b.rules, rule)
	return &RuleBuilder{builder: b, rule: rule}
}

// Rules returns a copy of the rules built so far.
func (b *Builder) Rules() []domain.Rule {
	return append([]domain.Rule(nil), b.rules...)
}

// Nodes returns a copy of the nodes built so far, in id order.
func (b *Builder) Nodes() []domain.Node {
	out := make([]domain.Node, len(b.nodes))
	for i, n := range b.nodes {
		if n.ParentID != nil {
			n.ParentID = domain.ParentRef(*n.ParentID)
		}
		out[i] = n
	}
	return out
}

// Build seeds a fresh in-memory store with the tree.
func (b *Builder) Build() (*memory.Store, error) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, r := range b.rules {
		got, err := store.CreateRule(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("failed to create rule %s: %w", r.Name, err)
		}
		if got.ID != r.ID {
			return nil, fmt.Errorf("rule %s: store assigned id %d, want %d", r.Name, got.ID, r.ID)
		}
	}
	for _, n := range b.Nodes() {
		got, err := store.CreateNode(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("failed to create node %s: %w", n.Name, err)
		}
		if got.ID != n.ID {
			return nil, fmt.Errorf("node %s: store assigned id %d, want %d", n.Name, got.ID, n.ID)
		}
	}
	return store, nil
}

func (b *Builder) add(node domain.Node) *NodeBuilder {
	node.ID = int64(len(b.nodes) + 1)
	b.nodes = append(b.nodes, node)
	return &NodeBuilder{builder: b, index: len(b.nodes) - 1}
}

// RuleBuilder adds root nodes to one rule.
type RuleBuilder struct {
	builder *Builder
	rule    domain.Rule
}

// ID returns the rule id.
func (r *RuleBuilder) ID() int64 {
	return r.rule.ID
}

// Static adds a STATIC root.
func (r *RuleBuilder) Static(name string) *NodeBuilder {
	return r.builder.add(domain.Node{RuleID: r.rule.ID, Name: name, Type: domain.NodeTypeStatic})
}

// Fixed adds a FIXED root matching code.
func (r *RuleBuilder) Fixed(name, code string) *NodeBuilder {
	return r.builder.add(domain.Node{RuleID: r.rule.ID, Name: name, Type: domain.NodeTypeFixed, Code: code, SegmentLength: len(code)})
}

// Input adds an INPUT root consuming length characters.
func (r *RuleBuilder) Input(name string, length int) *NodeBuilder {
	return r.builder.add(domain.Node{RuleID: r.rule.ID, Name: name, Type: domain.NodeTypeInput, SegmentLength: length})
}

// Serial adds a SERIAL root consuming length characters.
func (r *RuleBuilder) Serial(name string, length int) *NodeBuilder {
	return r.builder.add(domain.Node{RuleID: r.rule.ID, Name: name, Type: domain.NodeTypeSerial, SegmentLength: length})
}

// Option adds an OPTION as a root. Such a tree is malformed; decoding
// never matches it.
func (r *RuleBuilder) Option(code, name string) *NodeBuilder {
	return r.builder.add(domain.Node{RuleID: r.rule.ID, Name: name, Type: domain.NodeTypeOption, Code: code, SegmentLength: len(code)})
}
