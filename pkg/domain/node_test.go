package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNodeType(t *testing.T) {
	got, ok := ParseNodeType(" static ")
	assert.True(t, ok)
	assert.Equal(t, NodeTypeStatic, got)

	got, ok = ParseNodeType("group")
	assert.False(t, ok)
	assert.Equal(t, NodeType("GROUP"), got)

	assert.True(t, NodeTypeSerial.Consumes())
	assert.False(t, NodeTypeFixed.Consumes())
}

func TestNode_Parent(t *testing.T) {
	root := Node{ID: 1}
	child := Node{ID: 2, ParentID: ParentRef(1)}

	assert.True(t, root.IsRoot())
	assert.Zero(t, root.Parent())
	assert.False(t, child.IsRoot())
	assert.Equal(t, int64(1), child.Parent())
}

func TestValidateNode(t *testing.T) {
	require.NoError(t, ValidateNode(Node{RuleID: 1, Name: "Series", Type: NodeTypeStatic}))

	err := ValidateNode(Node{SegmentLength: -1, Type: "GROUP"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	errs := ValidationErrors(err)
	require.Len(t, errs, 4)
	var keys []string
	for _, e := range errs {
		var ve *ValidationError
		require.ErrorAs(t, e, &ve)
		keys = append(keys, ve.Key)
	}
	assert.Equal(t, []string{"rule_id", "name", "segment_length", "node_type"}, keys)
	assert.Contains(t, err.Error(), "4 validation errors")
}

func TestValidationErrors_NotAggregate(t *testing.T) {
	assert.Nil(t, ValidationErrors(ErrNodeNotFound))
	assert.Nil(t, ValidationErrors(nil))
}
