package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/Catneko-0422/tuerulebase/pkg/adapters/memory"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunRuleStoreContract(t, store)
}

func TestMemoryStore_CopyOnRead(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rule, err := store.CreateRule(ctx, domain.Rule{Name: "r"})
	require.NoError(t, err)
	root, err := store.CreateNode(ctx, domain.Node{RuleID: rule.ID, Name: "root", Type: domain.NodeTypeStatic})
	require.NoError(t, err)
	child, err := store.CreateNode(ctx, domain.Node{RuleID: rule.ID, ParentID: domain.ParentRef(root.ID), Name: "c", Type: domain.NodeTypeFixed, Code: "X"})
	require.NoError(t, err)

	*child.ParentID = 42
	got, err := store.GetNode(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, *got.ParentID)
}

func TestMemoryStore_ConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	rule, err := store.CreateRule(ctx, domain.Rule{Name: "r"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateNode(ctx, domain.Node{RuleID: rule.ID, Name: "n", Type: domain.NodeTypeFixed, Code: "X"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	nodes, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, nodes, 50)
	for i, n := range nodes {
		assert.Equal(t, int64(i+1), n.ID)
	}
}
