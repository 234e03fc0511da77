package runtime

import (
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Snapshot is an immutable arena of nodes indexed by id and by parent.
// It is built once per decode call from the store's node list and then
// only read, so concurrent decodes may share one.
type Snapshot struct {
	byID     map[int64]domain.Node
	roots    []domain.Node
	children map[int64][]domain.Node
}

var _ ports.TreeReader = (*Snapshot)(nil)

// NewSnapshot indexes nodes. Roots keep the input order; children are
// ordered by sort order, ties broken by id.
func NewSnapshot(nodes []domain.Node) *Snapshot {
	s := &Snapshot{
		byID:     make(map[int64]domain.Node, len(nodes)),
		children: make(map[int64][]domain.Node),
	}
	for _, n := range nodes {
		s.byID[n.ID] = n
		if n.IsRoot() {
			s.roots = append(s.roots, n)
			continue
		}
		s.children[*n.ParentID] = append(s.children[*n.ParentID], n)
	}
	for _, kids := range s.children {
		domain.SortNodes(kids, domain.SortBySortOrder)
	}
	return s
}

// ForRule returns a view whose roots are limited to one rule.
// Children are shared with the receiver.
func (s *Snapshot) ForRule(ruleID int64) *Snapshot {
	scoped := &Snapshot{byID: s.byID, children: s.children}
	for _, r := range s.roots {
		if r.RuleID == ruleID {
			scoped.roots = append(scoped.roots, r)
		}
	}
	return scoped
}

// Roots returns every parentless node in store order.
func (s *Snapshot) Roots() []domain.Node {
	return s.roots
}

// Children returns the ordered children of nodeID.
func (s *Snapshot) Children(nodeID int64, excludeOptions bool) []domain.Node {
	kids := s.children[nodeID]
	if !excludeOptions {
		return kids
	}
	out := make([]domain.Node, 0, len(kids))
	for _, k := range kids {
		if k.Type != domain.NodeTypeOption {
			out = append(out, k)
		}
	}
	return out
}

// Options returns the OPTION children of a STATIC node in sort order.
func (s *Snapshot) Options(staticID int64) []domain.Node {
	var out []domain.Node
	for _, k := range s.children[staticID] {
		if k.Type == domain.NodeTypeOption {
			out = append(out, k)
		}
	}
	return out
}

// Node looks up a node by id.
func (s *Snapshot) Node(id int64) (domain.Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Len returns the number of indexed nodes.
func (s *Snapshot) Len() int {
	return len(s.byID)
}
