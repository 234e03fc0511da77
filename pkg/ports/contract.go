package ports

import (
	"context"
	"testing"

	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRuleStoreContract runs a suite of tests to verify that a RuleStore
// implementation adheres to the defined interface contract.
// The store must be empty when passed in.
func RunRuleStoreContract(t *testing.T, store RuleStore) {
	ctx := context.Background()

	rule, err := store.CreateRule(ctx, domain.Rule{Name: "contract", TotalLength: 5, Active: true})
	require.NoError(t, err, "CreateRule should not return error")
	require.NotZero(t, rule.ID)

	t.Run("Rules", func(t *testing.T) {
		got, err := store.GetRule(ctx, rule.ID)
		require.NoError(t, err)
		assert.Equal(t, rule, got)

		second, err := store.CreateRule(ctx, domain.Rule{Name: "second", TotalLength: 3})
		require.NoError(t, err)
		assert.Greater(t, second.ID, rule.ID, "ids must increase")

		rules, err := store.ListRules(ctx)
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, rule.ID, rules[0].ID)
		assert.Equal(t, second.ID, rules[1].ID)

		_, err = store.GetRule(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)
	})

	var root, optB, optA, fixed domain.Node

	t.Run("Create Nodes", func(t *testing.T) {
		root, err = store.CreateNode(ctx, domain.Node{RuleID: rule.ID, Name: "Series", Type: domain.NodeTypeStatic, SegmentLength: 1})
		require.NoError(t, err)
		optB, err = store.CreateNode(ctx, domain.Node{RuleID: rule.ID, ParentID: domain.ParentRef(root.ID), Name: "TypeB", Type: domain.NodeTypeOption, Code: "B", SortOrder: 2})
		require.NoError(t, err)
		optA, err = store.CreateNode(ctx, domain.Node{RuleID: rule.ID, ParentID: domain.ParentRef(root.ID), Name: "TypeA", Type: domain.NodeTypeOption, Code: "AA", SortOrder: 1})
		require.NoError(t, err)
		fixed, err = store.CreateNode(ctx, domain.Node{RuleID: rule.ID, ParentID: domain.ParentRef(root.ID), Name: "Fixed9", Type: domain.NodeTypeFixed, Code: "9", SegmentLength: 1, ValueRegex: `^\d$`, Description: "constant"})
		require.NoError(t, err)

		assert.True(t, root.ID < optB.ID && optB.ID < optA.ID && optA.ID < fixed.ID, "ids must follow insertion order")

		got, err := store.GetNode(ctx, fixed.ID)
		require.NoError(t, err)
		assert.Equal(t, fixed, got)
		require.NotNil(t, got.ParentID)
		assert.Equal(t, root.ID, *got.ParentID)
	})

	t.Run("Create Node Rejects Unknown References", func(t *testing.T) {
		_, err := store.CreateNode(ctx, domain.Node{RuleID: 9999, Name: "orphan", Type: domain.NodeTypeFixed, Code: "X"})
		assert.ErrorIs(t, err, domain.ErrRuleNotFound)

		_, err = store.CreateNode(ctx, domain.Node{RuleID: rule.ID, ParentID: domain.ParentRef(9999), Name: "orphan", Type: domain.NodeTypeFixed, Code: "X"})
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)

		_, err = store.GetNode(ctx, 9999)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)
	})

	t.Run("List Nodes", func(t *testing.T) {
		roots, err := store.ListNodes(ctx, rule.ID, nil, domain.SortBySortOrder)
		require.NoError(t, err)
		require.Len(t, roots, 1)
		assert.Equal(t, root.ID, roots[0].ID)

		children, err := store.ListNodes(ctx, rule.ID, domain.ParentRef(root.ID), domain.SortBySortOrder)
		require.NoError(t, err)
		assert.Equal(t, []int64{fixed.ID, optA.ID, optB.ID}, ids(children))

		children, err = store.ListNodes(ctx, rule.ID, domain.ParentRef(root.ID), domain.SortByID)
		require.NoError(t, err)
		assert.Equal(t, []int64{optB.ID, optA.ID, fixed.ID}, ids(children))

		children, err = store.ListNodes(ctx, rule.ID, domain.ParentRef(root.ID), domain.SortByCodeLength)
		require.NoError(t, err)
		assert.Equal(t, optA.ID, children[0].ID, "longest code first")
	})

	t.Run("Has Children", func(t *testing.T) {
		has, err := store.HasChildren(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = store.HasChildren(ctx, fixed.ID)
		require.NoError(t, err)
		assert.False(t, has)
	})

	t.Run("Snapshot", func(t *testing.T) {
		nodes, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{root.ID, optB.ID, optA.ID, fixed.ID}, ids(nodes))
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.DeleteNode(ctx, root.ID)
		assert.ErrorIs(t, err, domain.ErrNodeHasChildren, "delete must not cascade")

		require.NoError(t, store.DeleteNode(ctx, optB.ID))
		_, err = store.GetNode(ctx, optB.ID)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound, "GetNode after Delete should return ErrNodeNotFound")

		err = store.DeleteNode(ctx, optB.ID)
		assert.ErrorIs(t, err, domain.ErrNodeNotFound)

		require.NoError(t, store.DeleteNode(ctx, optA.ID))
		require.NoError(t, store.DeleteNode(ctx, fixed.ID))
		require.NoError(t, store.DeleteNode(ctx, root.ID))

		nodes, err := store.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, nodes)
	})
}

func ids(nodes []domain.Node) []int64 {
	out := make([]int64, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}
