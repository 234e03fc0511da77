package ports

import (
	"context"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
)

// RuleStore defines the persistence collaborator for rules and nodes.
// The engine itself only ever calls Snapshot and GetRule.
type RuleStore interface {
	// CreateRule persists a new rule and returns it with its assigned id.
	CreateRule(ctx context.Context, rule domain.Rule) (domain.Rule, error)

	// GetRule returns domain.ErrRuleNotFound if the rule does not exist.
	GetRule(ctx context.Context, id int64) (domain.Rule, error)

	// ListRules returns every rule in id order.
	ListRules(ctx context.Context) ([]domain.Rule, error)

	// CreateNode persists a node. It returns domain.ErrRuleNotFound when the
	// owning rule is missing and domain.ErrNodeNotFound when the parent is.
	CreateNode(ctx context.Context, node domain.Node) (domain.Node, error)

	// GetNode returns domain.ErrNodeNotFound if the node does not exist.
	GetNode(ctx context.Context, id int64) (domain.Node, error)

	// HasChildren reports whether any node names id as its parent.
	HasChildren(ctx context.Context, id int64) (bool, error)

	// ListNodes returns the nodes of a rule directly under parentID
	// (nil lists the rule's roots), ordered by key.
	ListNodes(ctx context.Context, ruleID int64, parentID *int64, key domain.SortKey) ([]domain.Node, error)

	// DeleteNode removes a leaf node. It never cascades: a node with children
	// yields domain.ErrNodeHasChildren.
	DeleteNode(ctx context.Context, id int64) error

	// Snapshot returns every node of every rule in id order.
	Snapshot(ctx context.Context) ([]domain.Node, error)
}
