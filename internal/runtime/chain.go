package runtime

import (
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Chain is the result of walking one path down the tree.
// Remaining may be non-empty: a childless node ends a chain wherever it
// stands, and the caller decides whether leftovers are acceptable.
type Chain struct {
	Segments  []domain.Segment
	Remaining string
}

// DecodeChain matches node against remaining and then descends depth first
// into its non-OPTION children in sort order. The first child whose subtree
// matches decides the result; later siblings are never tried, even if the
// chosen one leaves characters unconsumed.
func DecodeChain(tree ports.TreeReader, node domain.Node, remaining string) (Chain, bool) {
	m, ok := MatchNode(tree, node, remaining)
	if !ok {
		return Chain{}, false
	}
	segment := domain.Segment{
		NodeName: node.Name,
		Value:    m.Value,
		Meaning:  m.Meaning,
		Type:     node.Type,
	}

	children := tree.Children(node.ID, true)
	if len(children) == 0 {
		return Chain{Segments: []domain.Segment{segment}, Remaining: m.Remaining}, true
	}

	for _, child := range children {
		sub, ok := DecodeChain(tree, child, m.Remaining)
		if !ok {
			continue
		}
		segments := make([]domain.Segment, 0, len(sub.Segments)+1)
		segments = append(segments, segment)
		segments = append(segments, sub.Segments...)
		return Chain{Segments: segments, Remaining: sub.Remaining}, true
	}
	return Chain{}, false
}
