package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Store implements ports.RuleStore in memory.
// Safe for concurrent use. Values are copied in and out, so callers can't
// mutate store state through a returned node.
type Store struct {
	mu       sync.RWMutex
	rules    map[int64]domain.Rule
	nodes    map[int64]domain.Node
	nextRule int64
	nextNode int64
}

var _ ports.RuleStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		rules: make(map[int64]domain.Rule),
		nodes: make(map[int64]domain.Node),
	}
}

// CreateRule assigns the next rule id.
func (s *Store) CreateRule(ctx context.Context, rule domain.Rule) (domain.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRule++
	rule.ID = s.nextRule
	s.rules[rule.ID] = rule
	return rule, nil
}

// GetRule retrieves a rule by id.
func (s *Store) GetRule(ctx context.Context, id int64) (domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rules[id]
	if !ok {
		return domain.Rule{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, id)
	}
	return r, nil
}

// ListRules returns every rule in id order.
func (s *Store) ListRules(ctx context.Context) ([]domain.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rules := make([]domain.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		rules = append(rules, r)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules, nil
}

// CreateNode checks the rule and parent exist, then assigns the next node id.
func (s *Store) CreateNode(ctx context.Context, node domain.Node) (domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rules[node.RuleID]; !ok {
		return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrRuleNotFound, node.RuleID)
	}
	if node.ParentID != nil {
		if _, ok := s.nodes[*node.ParentID]; !ok {
			return domain.Node{}, fmt.Errorf("parent %w: %d", domain.ErrNodeNotFound, *node.ParentID)
		}
	}
	s.nextNode++
	node.ID = s.nextNode
	node = copyNode(node)
	s.nodes[node.ID] = node
	return copyNode(node), nil
}

// GetNode retrieves a node by id.
func (s *Store) GetNode(ctx context.Context, id int64) (domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return domain.Node{}, fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
	}
	return copyNode(n), nil
}

// HasChildren reports whether any node points at id.
func (s *Store) HasChildren(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasChildren(id), nil
}

func (s *Store) hasChildren(id int64) bool {
	for _, n := range s.nodes {
		if n.ParentID != nil && *n.ParentID == id {
			return true
		}
	}
	return false
}

// ListNodes returns one level of one rule's tree.
func (s *Store) ListNodes(ctx context.Context, ruleID int64, parentID *int64, key domain.SortKey) ([]domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Node
	for _, n := range s.nodes {
		if n.RuleID != ruleID {
			continue
		}
		if parentID == nil && n.ParentID == nil || parentID != nil && n.ParentID != nil && *parentID == *n.ParentID {
			out = append(out, copyNode(n))
		}
	}
	domain.SortNodes(out, key)
	return out, nil
}

// DeleteNode removes a childless node.
func (s *Store) DeleteNode(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("%w: %d", domain.ErrNodeNotFound, id)
	}
	if s.hasChildren(id) {
		return fmt.Errorf("%w: %d", domain.ErrNodeHasChildren, id)
	}
	delete(s.nodes, id)
	return nil
}

// Snapshot returns a copy of every node in id order.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, copyNode(n))
	}
	domain.SortNodes(out, domain.SortByID)
	return out, nil
}

// copyNode detaches the parent pointer from the stored value.
func copyNode(n domain.Node) domain.Node {
	if n.ParentID != nil {
		n.ParentID = domain.ParentRef(*n.ParentID)
	}
	return n
}
