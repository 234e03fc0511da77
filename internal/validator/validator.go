package validator

import (
	"context"
	"fmt"

	"github.com/Catneko-0422/tuerulebase/internal/runtime"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Issue is one structural problem found in a rule tree.
type Issue struct {
	NodeID int64
	Name   string
	Reason string
}

func (i *Issue) Error() string {
	return fmt.Sprintf("node %d (%s): %s", i.NodeID, i.Name, i.Reason)
}

// ValidateStore lints every node held by store.
func ValidateStore(ctx context.Context, store ports.RuleStore) error {
	nodes, err := store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load nodes: %w", err)
	}
	return ValidateTree(nodes)
}

// ValidateTree checks the shape of a rule forest and returns every problem
// as a *domain.AggregateError of *Issue. Decoding never calls it: a tree
// that fails here still decodes, it just may never match.
func ValidateTree(nodes []domain.Node) error {
	byID := make(map[int64]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	children := make(map[int64][]domain.Node)
	for _, n := range nodes {
		if !n.IsRoot() {
			children[n.Parent()] = append(children[n.Parent()], n)
		}
	}

	var errs []error
	report := func(n domain.Node, format string, args ...any) {
		errs = append(errs, &Issue{NodeID: n.ID, Name: n.Name, Reason: fmt.Sprintf(format, args...)})
	}

	for _, n := range nodes {
		if _, ok := domain.ParseNodeType(string(n.Type)); !ok {
			report(n, "unknown node type %q", n.Type)
		}

		if !n.IsRoot() {
			parent, ok := byID[n.Parent()]
			switch {
			case !ok:
				report(n, "parent %d does not exist", n.Parent())
			case parent.RuleID != n.RuleID:
				report(n, "parent %d belongs to rule %d, not %d", parent.ID, parent.RuleID, n.RuleID)
			case n.Type == domain.NodeTypeOption && parent.Type != domain.NodeTypeStatic:
				report(n, "OPTION must sit directly under a STATIC node, parent is %s", parent.Type)
			}
			if inCycle(byID, n) {
				report(n, "parent chain forms a cycle")
			}
		} else if n.Type == domain.NodeTypeOption {
			report(n, "OPTION cannot be a root")
		}

		switch n.Type {
		case domain.NodeTypeOption, domain.NodeTypeFixed:
			if n.Code == "" {
				report(n, "%s needs a non-empty code", n.Type)
			}
		case domain.NodeTypeInput, domain.NodeTypeSerial:
			if n.SegmentLength <= 0 {
				report(n, "%s needs a positive segment_length, got %d", n.Type, n.SegmentLength)
			}
		case domain.NodeTypeStatic:
			errs = append(errs, checkOptions(n, children[n.ID])...)
		}

		if n.ValueRegex != "" {
			if _, err := runtime.CompileValueRegex(n.ValueRegex); err != nil {
				report(n, "value_regex does not compile: %v", err)
			}
		}
	}

	if len(errs) > 0 {
		return &domain.AggregateError{Errors: errs}
	}
	return nil
}

func checkOptions(static domain.Node, kids []domain.Node) []error {
	var errs []error
	seen := make(map[string]int64)
	count := 0
	for _, c := range kids {
		if c.Type != domain.NodeTypeOption {
			continue
		}
		count++
		if c.Code == "" {
			continue
		}
		if first, dup := seen[c.Code]; dup {
			errs = append(errs, &Issue{NodeID: static.ID, Name: static.Name,
				Reason: fmt.Sprintf("options %d and %d share code %q", first, c.ID, c.Code)})
			continue
		}
		seen[c.Code] = c.ID
	}
	if count == 0 {
		errs = append(errs, &Issue{NodeID: static.ID, Name: static.Name, Reason: "STATIC has no options"})
	}
	return errs
}

func inCycle(byID map[int64]domain.Node, n domain.Node) bool {
	visited := map[int64]bool{n.ID: true}
	cur := n
	for !cur.IsRoot() {
		next, ok := byID[cur.Parent()]
		if !ok {
			return false
		}
		if visited[next.ID] {
			return next.ID == n.ID
		}
		visited[next.ID] = true
		cur = next
	}
	return false
}
