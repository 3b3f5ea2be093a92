package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashita-ai/compendium/internal/model"
	"github.com/ashita-ai/compendium/internal/represent"
	"github.com/ashita-ai/compendium/internal/service/catalog"
	"github.com/ashita-ai/compendium/internal/testutil"
)

const testBaseURL = "http://compendium.test"

func ptr[T any](v T) *T { return &v }

type fixture struct {
	srv    *Server
	svc    *catalog.Service
	wizard int64
	prof   int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := testutil.TestLogger()
	svc := catalog.New(testutil.NewSQLiteDB(t), nil, logger)

	prof, err := svc.CreateProficiency(ctx, model.ProficiencyInput{
		Index: ptr("light_armor"),
		Name:  ptr("Light Armor"),
		Type:  ptr("Armor"),
	})
	require.NoError(t, err)
	wizard, err := svc.CreateClass(ctx, model.ClassInput{
		Index:         ptr("wizard"),
		Name:          ptr("Wizard"),
		HitDie:        ptr(6),
		Proficiencies: ptr([]int64{prof.ID}),
	})
	require.NoError(t, err)

	return &fixture{
		srv:    New(svc, testBaseURL, logger, "test"),
		svc:    svc,
		wizard: wizard.ID,
		prof:   prof.ID,
	}
}

func toolRequest(name string, args map[string]any) mcplib.CallToolRequest {
	return mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// parseToolText extracts the first TextContent text from a CallToolResult.
func parseToolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	for _, c := range result.Content {
		if tc, ok := c.(mcplib.TextContent); ok {
			return tc.Text
		}
	}
	t.Fatal("no TextContent found in tool result")
	return ""
}

func TestHandleList(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleList(context.Background(), toolRequest("compendium_list", map[string]any{
		"resource": model.ResourceClasses,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, parseToolText(t, result))

	var resp struct {
		Resource string              `json:"resource"`
		Results  []represent.Summary `json:"results"`
		Total    int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &resp))
	assert.Equal(t, model.ResourceClasses, resp.Resource)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "wizard", resp.Results[0].Index)
	assert.Equal(t, testBaseURL+"/classes/1/", resp.Results[0].DetailURL)
}

func TestHandleListRejectsUnknownResource(t *testing.T) {
	f := newFixture(t)

	for _, args := range []map[string]any{{}, {"resource": "monsters"}} {
		result, err := f.srv.handleList(context.Background(), toolRequest("compendium_list", args))
		require.NoError(t, err)
		assert.True(t, result.IsError)
	}
}

func TestHandleGetByIDAndIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for name, args := range map[string]map[string]any{
		"id":    {"resource": model.ResourceClasses, "id": float64(f.wizard)},
		"index": {"resource": model.ResourceClasses, "index": "wizard"},
	} {
		t.Run(name, func(t *testing.T) {
			result, err := f.srv.handleGet(ctx, toolRequest("compendium_get", args))
			require.NoError(t, err)
			require.False(t, result.IsError, parseToolText(t, result))

			var class represent.Class
			require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &class))
			assert.Equal(t, f.wizard, class.ID)
			require.Len(t, class.ClassProficiencies, 1)
			assert.Equal(t, "Light Armor", class.ClassProficiencies[0].ProficiencyName)
		})
	}
}

func TestHandleGetMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := map[string]map[string]any{
		"no address":    {"resource": model.ResourceSpells},
		"unknown id":    {"resource": model.ResourceSpells, "id": float64(99)},
		"unknown index": {"resource": model.ResourceSpells, "index": "wish"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			result, err := f.srv.handleGet(ctx, toolRequest("compendium_get", args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestHandleCounts(t *testing.T) {
	f := newFixture(t)

	result, err := f.srv.handleCounts(context.Background(), toolRequest("compendium_counts", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var counts map[string]int64
	require.NoError(t, json.Unmarshal([]byte(parseToolText(t, result)), &counts))
	assert.Equal(t, int64(1), counts[model.ResourceClasses])
	assert.Equal(t, int64(1), counts[model.ResourceProficiencies])
	assert.Equal(t, int64(0), counts[model.ResourceSpells])
	assert.Len(t, counts, len(model.Resources))
}

func TestToolsAreListed(t *testing.T) {
	f := newFixture(t)

	resp := f.srv.MCPServer().HandleMessage(context.Background(),
		json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"compendium_list", "compendium_get", "compendium_counts"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}
