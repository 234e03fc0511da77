package file

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
)

// Import creates every rule of doc in store, then every root subtree in
// global root order (NodeDoc.Order, then document order for roots without
// one). Within a subtree nodes are created depth first (a node, its
// options, then its children), so ids follow that order and the cross-rule
// root order survives an Export/Import round trip.
// Import is not atomic: on error, what was created so far stays.
func Import(ctx context.Context, store ports.RuleStore, doc *Document) ([]domain.Rule, error) {
	type rootDoc struct {
		ruleID int64
		path   string
		doc    NodeDoc
	}

	var (
		created []domain.Rule
		roots   []rootDoc
	)
	for i, rd := range doc.Rules {
		rule := domain.Rule{
			Name:        rd.Name,
			TotalLength: rd.TotalLength,
			Active:      rd.Active == nil || *rd.Active,
		}
		if rule.Name == "" {
			return created, fmt.Errorf("rules[%d]: %w", i, &domain.ValidationError{Key: "name", Reason: "is required"})
		}
		if rule.TotalLength == 0 {
			rule.TotalLength = domain.DefaultTotalLength
		}
		rule, err := store.CreateRule(ctx, rule)
		if err != nil {
			return created, fmt.Errorf("rule %q: %w", rd.Name, err)
		}
		created = append(created, rule)

		for j, nd := range rd.Nodes {
			roots = append(roots, rootDoc{ruleID: rule.ID, path: fmt.Sprintf("rules[%d].nodes[%d]", i, j), doc: nd})
		}
	}

	slices.SortStableFunc(roots, func(a, b rootDoc) int {
		return cmp.Compare(rootRank(a.doc), rootRank(b.doc))
	})
	for _, r := range roots {
		if err := importNode(ctx, store, r.ruleID, nil, r.doc, domain.NodeTypeStatic, r.path); err != nil {
			return created, err
		}
	}
	return created, nil
}

// rootRank places roots without an Order after every ordered root.
func rootRank(nd NodeDoc) int {
	if nd.Order > 0 {
		return nd.Order
	}
	return math.MaxInt
}

func importNode(ctx context.Context, store ports.RuleStore, ruleID int64, parentID *int64, nd NodeDoc, defaultType domain.NodeType, path string) error {
	typ := defaultType
	if nd.Type != "" {
		typ, _ = domain.ParseNodeType(nd.Type)
	}
	node := domain.Node{
		RuleID:           ruleID,
		ParentID:         parentID,
		Name:             nd.Name,
		Type:             typ,
		SegmentLength:    nd.SegmentLength,
		Code:             nd.Code,
		ValueRegex:       nd.ValueRegex,
		ValuePlaceholder: nd.Placeholder,
		SortOrder:        nd.SortOrder,
		Description:      nd.Description,
	}
	if node.SegmentLength == 0 && node.Code != "" {
		node.SegmentLength = utf8.RuneCountInString(node.Code)
	}
	if err := domain.ValidateNode(node); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	node, err := store.CreateNode(ctx, node)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	parent := domain.ParentRef(node.ID)
	for k, od := range nd.Options {
		if err := importNode(ctx, store, ruleID, parent, od, domain.NodeTypeOption, fmt.Sprintf("%s.options[%d]", path, k)); err != nil {
			return err
		}
	}
	for k, cd := range nd.Children {
		if err := importNode(ctx, store, ruleID, parent, cd, domain.NodeTypeStatic, fmt.Sprintf("%s.children[%d]", path, k)); err != nil {
			return err
		}
	}
	return nil
}

// Export reads every rule of store into a document. Siblings are listed
// in id order, roots carry their global position in Order, and sort_order
// is carried as a field, so a re-import decodes the same way.
func Export(ctx context.Context, store ports.RuleStore) (*Document, error) {
	rules, err := store.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	nodes, err := store.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}

	children := make(map[int64][]domain.Node)
	roots := make(map[int64][]domain.Node)
	order := make(map[int64]int)
	for _, n := range nodes {
		if n.IsRoot() {
			roots[n.RuleID] = append(roots[n.RuleID], n)
			order[n.ID] = len(order) + 1
			continue
		}
		children[*n.ParentID] = append(children[*n.ParentID], n)
	}

	var build func(n domain.Node) NodeDoc
	build = func(n domain.Node) NodeDoc {
		nd := NodeDoc{
			Name:          n.Name,
			Type:          string(n.Type),
			SegmentLength: n.SegmentLength,
			Code:          n.Code,
			ValueRegex:    n.ValueRegex,
			Placeholder:   n.ValuePlaceholder,
			SortOrder:     n.SortOrder,
			Description:   n.Description,
		}
		for _, c := range children[n.ID] {
			if n.Type == domain.NodeTypeStatic && c.Type == domain.NodeTypeOption {
				opt := build(c)
				opt.Type = ""
				nd.Options = append(nd.Options, opt)
				continue
			}
			nd.Children = append(nd.Children, build(c))
		}
		return nd
	}

	doc := &Document{Rules: make([]RuleDoc, 0, len(rules))}
	for _, r := range rules {
		active := r.Active
		rd := RuleDoc{Name: r.Name, TotalLength: r.TotalLength, Active: &active, Nodes: []NodeDoc{}}
		for _, root := range roots[r.ID] {
			nd := build(root)
			nd.Order = order[root.ID]
			rd.Nodes = append(rd.Nodes, nd)
		}
		doc.Rules = append(doc.Rules, rd)
	}
	return doc, nil
}
