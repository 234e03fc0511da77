package tuerulebase_test

import (
	"context"
	"testing"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...tuerulebase.Option) (*tuerulebase.Engine, *dsl.NodeBuilder) {
	t.Helper()
	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").Option("A", "TypeA").Option("B", "TypeB")
	series.Fixed("Fixed9", "9").Input("Resistor Value", 3)
	b.Rule("Serials", 4).Fixed("Prefix", "S").Serial("Serial", 3)

	store, err := b.Build()
	require.NoError(t, err)
	return tuerulebase.New(append([]tuerulebase.Option{tuerulebase.WithStore(store)}, opts...)...), series
}

func TestEngine_Decode(t *testing.T) {
	var events []domain.DecodeEvent
	eng, series := newEngine(t, tuerulebase.WithHooks(domain.DecodeHooks{
		OnDecode: func(_ context.Context, e *domain.DecodeEvent) {
			events = append(events, *e)
		},
	}))
	ctx := context.Background()

	res, err := eng.Decode(ctx, " B94K7 ", 0)
	require.NoError(t, err)
	assert.Equal(t, "B94K7", res.Code)
	assert.Equal(t, series.ID(), res.RootID)
	require.Len(t, res.Segments, 3)
	assert.Equal(t, "4.7kΩ", res.Segments[2].Meaning)

	_, err = eng.Decode(ctx, "ZZZ", 0)
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)

	_, err = eng.Decode(ctx, "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.Len(t, events, 3)
	assert.Equal(t, domain.OutcomeOK, events[0].Outcome)
	assert.Equal(t, series.ID(), events[0].RootID)
	assert.Len(t, events[0].Segments, 3)
	assert.Equal(t, domain.OutcomeFailed, events[1].Outcome)
	assert.Equal(t, domain.OutcomeInvalid, events[2].Outcome)
}

func TestEngine_DecodeRuleScope(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	res, err := eng.Decode(ctx, "S123", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.RuleID)

	_, err = eng.Decode(ctx, "S123", 1)
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)

	_, err = eng.Decode(ctx, "S123", 42)
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestEngine_DecodeRejectsControlCharacters(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	for _, code := range []string{"A9\t102", "A9\x00102", "B9\x1b4K7"} {
		_, err := eng.Decode(ctx, code, 0)
		assert.ErrorIs(t, err, tuerulebase.ErrControlChar, "code %q", code)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "code %q", code)
	}

	res, err := eng.Decode(ctx, "\tA9102\n", 0)
	require.NoError(t, err)
	assert.Equal(t, "A9102", res.Code)
}

func TestEngine_MaxCodeLength(t *testing.T) {
	eng, _ := newEngine(t, tuerulebase.WithMaxCodeLength(4))
	_, err := eng.Decode(context.Background(), "A9102", 0)
	assert.ErrorIs(t, err, tuerulebase.ErrCodeTooLong)
}

func TestEngine_Compose(t *testing.T) {
	eng, series := newEngine(t)
	ctx := context.Background()

	nodes, err := eng.Store().ListNodes(ctx, 1, domain.ParentRef(series.ID()), domain.SortBySortOrder)
	require.NoError(t, err)
	var fixedID int64
	for _, n := range nodes {
		if n.Type == domain.NodeTypeFixed {
			fixedID = n.ID
		}
	}
	require.NotZero(t, fixedID)
	value, err := eng.Store().ListNodes(ctx, 1, domain.ParentRef(fixedID), domain.SortBySortOrder)
	require.NoError(t, err)
	require.Len(t, value, 1)

	comp, err := eng.Compose(ctx, []domain.Pick{
		{NodeID: series.ID(), OptionID: series.OptionID("A")},
		{NodeID: fixedID},
		{NodeID: value[0].ID, Value: "102"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A9102", comp.Code)
	assert.True(t, comp.Complete)
	assert.True(t, comp.LengthOK)

	comp, err = eng.Compose(ctx, []domain.Pick{{NodeID: series.ID(), OptionID: series.OptionID("A")}})
	require.NoError(t, err)
	assert.False(t, comp.Complete)
	assert.False(t, comp.LengthOK)

	_, err = eng.Compose(ctx, []domain.Pick{{NodeID: fixedID}})
	assert.ErrorIs(t, err, domain.ErrInvalidPick)
}

func TestEngine_Inspect(t *testing.T) {
	eng, _ := newEngine(t)
	ctx := context.Background()

	rule, nodes, err := eng.Inspect(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Serials", rule.Name)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Prefix", nodes[0].Name)

	_, _, err = eng.Inspect(ctx, 7)
	assert.ErrorIs(t, err, domain.ErrRuleNotFound)
}

func TestEngine_DefaultStoreIsEmpty(t *testing.T) {
	eng := tuerulebase.New()
	_, err := eng.Decode(context.Background(), "A9102", 0)
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}
