package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/Catneko-0422/tuerulebase"
	"github.com/Catneko-0422/tuerulebase/pkg/adapters/file"
	"github.com/Catneko-0422/tuerulebase/pkg/domain"
	"github.com/Catneko-0422/tuerulebase/pkg/dsl"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) (*Server, *dsl.NodeBuilder) {
	t.Helper()
	b := dsl.New()
	series := b.Rule("Resistors", 5).Static("Series").Option("A", "TypeA").Option("B", "TypeB")
	series.Fixed("Fixed9", "9").Input("Resistor Value", 3)
	store, err := b.Build()
	require.NoError(t, err)
	return NewServer(tuerulebase.New(tuerulebase.WithStore(store))), series
}

func TestHandleDecode(t *testing.T) {
	s, series := newServer(t)
	ctx := context.Background()

	res, err := s.handleDecode(ctx, mcp.CallToolRequest{}, decodeArgs{Code: "B94K7"})
	require.NoError(t, err)
	assert.Equal(t, series.ID(), res.RootID)
	require.Len(t, res.Segments, 3)
	assert.Equal(t, "4.7kΩ", res.Segments[2].Meaning)

	_, err = s.handleDecode(ctx, mcp.CallToolRequest{}, decodeArgs{Code: "Z"})
	assert.ErrorIs(t, err, domain.ErrDecodeFailed)
}

func TestHandleCompose(t *testing.T) {
	s, series := newServer(t)
	ctx := context.Background()

	picks := fmt.Sprintf(`[{"node_id":%d,"option_id":%d},{"node_id":4},{"node_id":5,"value":"4K7"}]`,
		series.ID(), series.OptionID("B"))
	comp, err := s.handleCompose(ctx, mcp.CallToolRequest{}, composeArgs{Picks: picks})
	require.NoError(t, err)
	assert.Equal(t, "B94K7", comp.Code)
	assert.True(t, comp.LengthOK)

	_, err = s.handleCompose(ctx, mcp.CallToolRequest{}, composeArgs{Picks: "not json"})
	assert.Error(t, err)

	_, err = s.handleCompose(ctx, mcp.CallToolRequest{}, composeArgs{Picks: `[{"node_id":4}]`})
	assert.ErrorIs(t, err, domain.ErrInvalidPick)
}

func TestHandleListRules(t *testing.T) {
	s, _ := newServer(t)
	res, err := s.handleListRules(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var rules []domain.Rule
	require.NoError(t, json.Unmarshal([]byte(text.Text), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, "Resistors", rules[0].Name)
}

func TestRulesResource(t *testing.T) {
	s, _ := newServer(t)
	contents, err := s.handleRulesResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, rulesURI, text.URI)

	var doc file.Document
	require.NoError(t, json.Unmarshal([]byte(text.Text), &doc))
	require.Len(t, doc.Rules, 1)
	require.Len(t, doc.Rules[0].Nodes, 1)
	assert.Len(t, doc.Rules[0].Nodes[0].Options, 2)
}
