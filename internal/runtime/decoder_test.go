package runtime

import (
	"errors"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/Catneko-0422/tuerulebase/internal/logging"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/dsl"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resistorTree is a STATIC series selector, a fixed "9" and a three
// character resistor value.
func resistorTree() (*dsl.Builder, *dsl.NodeBuilder) {
	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").Option("A", "TypeA").Option("B", "TypeB")
	series.Fixed("Fixed9", "9").Input("Resistor Value", 3)
	return b, series
}

func TestDecode_EndToEnd(t *testing.T) {
	b, series := resistorTree()
	tree := NewSnapshot(b.Nodes())

	got, err := Decode(tree, "A9102")
	require.NoError(t, err)
	assert.Equal(t, series.ID(), got.RootID)
	assert.Equal(t, int64(1), got.RuleID)
	assert.Equal(t, []domain.Segment{
		{NodeName: "Series", Value: "A", Meaning: "TypeA", Type: domain.NodeTypeStatic},
		{NodeName: "Fixed9", Value: "9", Meaning: "Fixed9", Type: domain.NodeTypeFixed},
		{NodeName: "Resistor Value", Value: "102", Meaning: "102", Type: domain.NodeTypeInput},
	}, got.Segments)

	got, err = Decode(tree, "B94K7")
	require.NoError(t, err)
	assert.Equal(t, "TypeB", got.Segments[0].Meaning)
	assert.Equal(t, "4.7kΩ", got.Segments[2].Meaning)
}

func TestDecode_Failures(t *testing.T) {
	b, _ := resistorTree()
	tree := NewSnapshot(b.Nodes())

	tests := []struct {
		name string
		code string
	}{
		{"Unknown Option", "C9102"},
		{"Wrong Fixed", "A8102"},
		{"Too Short", "A910"},
		{"Too Long", "A91023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tree, tt.code)
			assert.ErrorIs(t, err, domain.ErrDecodeFailed)
		})
	}
}

func TestDecode_EmptyForest(t *testing.T) {
	_, err := Decode(NewSnapshot(nil), "A9102")
	assert.True(t, errors.Is(err, domain.ErrDecodeFailed))
}

func TestDecode_RootOrder(t *testing.T) {
	b := dsl.New()
	b.Rule("partial", 0).Fixed("Prefix", "AB")
	first := b.Rule("first", 0).Fixed("A", "A")
	first.Serial("Rest", 2)
	second := b.Rule("second", 0).Input("Anything", 3)
	tree := NewSnapshot(b.Nodes())

	got, err := Decode(tree, "ABC")
	require.NoError(t, err)
	assert.Equal(t, first.ID(), got.RootID, "the partial root is skipped and the first exact root wins")

	got, err = Decode(tree, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, second.ID(), got.RootID)
}

func TestDecode_OptionRootNeverMatches(t *testing.T) {
	b := dsl.New()
	b.Rule("broken", 0).Option("A", "TypeA")
	_, err := Decode(NewSnapshot(b.Nodes()), "A")
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestDecode_ConsumesExactly(t *testing.T) {
	b, _ := resistorTree()
	tree := NewSnapshot(b.Nodes())

	for _, code := range []string{"A9102", "B94K7", "A9R01", "B9電阻X"} {
		got, err := Decode(tree, code)
		require.NoError(t, err, code)
		total := 0
		for _, s := range got.Segments {
			total += utf8.RuneCountInString(s.Value)
		}
		assert.Equal(t, utf8.RuneCountInString(code), total, code)
	}
}

func TestDecode_Deterministic(t *testing.T) {
	b, _ := resistorTree()
	tree := NewSnapshot(b.Nodes())

	first, err := Decode(tree, "A94K7")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Decode(NewSnapshot(b.Nodes()), "A94K7")
		require.NoError(t, err)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("decode is not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestDecode_ConcurrentReaders(t *testing.T) {
	b, _ := resistorTree()
	tree := NewSnapshot(b.Nodes())
	decoder := NewDecoder(WithLogger(logging.NewNop()))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := decoder.Decode(tree, "B94K7")
			assert.NoError(t, err)
			assert.Len(t, got.Segments, 3)
		}()
	}
	wg.Wait()
}

func TestDecode_RuleScope(t *testing.T) {
	b := dsl.New()
	b.Rule("first", 0).Input("Any", 3)
	second := b.Rule("second", 0)
	root := second.Fixed("X", "X")
	root.Serial("Rest", 2)
	s := NewSnapshot(b.Nodes())

	got, err := Decode(s, "XYZ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RuleID, "unscoped decode searches every rule")

	got, err = Decode(s.ForRule(second.ID()), "XYZ")
	require.NoError(t, err)
	assert.Equal(t, root.ID(), got.RootID)
}
