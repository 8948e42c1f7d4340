package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netforge-io/netforge/internal/testserver"
	"github.com/netforge-io/netforge/pkg/netforge"
	"github.com/netforge-io/netforge/pkg/types"
)

// newMCPServer builds an MCP server over an in-memory API server.
func newMCPServer(t *testing.T) (*Server, *testserver.Server) {
	t.Helper()
	api, err := testserver.New(nil)
	require.NoError(t, err)
	api.MountHandlers()

	client, err := netforge.NewTestClient(api.Router, api.Token())
	require.NoError(t, err)
	return New(client), api
}

// callRequest builds a tool call request the way the MCP layer delivers it.
func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// textOf extracts the text content of a tool result.
func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestGetObjects(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/sites",
		types.Record{"name": "alpha", "status": "active"},
		types.Record{"name": "beta", "status": "planned"},
	)

	res, err := s.getObjects(context.Background(), callRequest("netforge_get_objects", map[string]any{
		"endpoint": "dcim/sites",
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var recs types.RecordSet
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "alpha", recs[0].GetString("name"))
}

func TestGetObjectsWithFilters(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/sites",
		types.Record{"name": "alpha", "status": "active"},
		types.Record{"name": "beta", "status": "planned"},
	)

	res, err := s.getObjects(context.Background(), callRequest("netforge_get_objects", map[string]any{
		"endpoint": "dcim/sites",
		"filters":  map[string]any{"status": "planned"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var recs types.RecordSet
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "beta", recs[0].GetString("name"))
}

func TestGetObjectByID(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/sites", types.Record{"name": "alpha"})

	res, err := s.getObjectByID(context.Background(), callRequest("netforge_get_object_by_id", map[string]any{
		"endpoint": "dcim/sites",
		"id":       float64(1),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var rec types.Record
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &rec))
	assert.Equal(t, "alpha", rec.GetString("name"))
}

func TestGetObjectByIDNotFound(t *testing.T) {
	s, _ := newMCPServer(t)

	res, err := s.getObjectByID(context.Background(), callRequest("netforge_get_object_by_id", map[string]any{
		"endpoint": "dcim/sites",
		"id":       float64(42),
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "get failed")
}

func TestCreateObject(t *testing.T) {
	s, api := newMCPServer(t)

	res, err := s.createObject(context.Background(), callRequest("netforge_create_object", map[string]any{
		"endpoint": "dcim/sites",
		"data":     map[string]any{"name": "HQ", "slug": "hq"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var rec types.Record
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &rec))
	id, ok := rec.ID()
	require.True(t, ok)
	assert.Equal(t, 1, id)

	stored, ok := api.Store().Get("dcim/sites", id)
	require.True(t, ok)
	assert.Equal(t, "HQ", stored.GetString("name"))
}

func TestUpdateObject(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/sites", types.Record{"name": "alpha", "slug": "alpha"})

	res, err := s.updateObject(context.Background(), callRequest("netforge_update_object", map[string]any{
		"endpoint": "dcim/sites",
		"id":       float64(1),
		"data":     map[string]any{"name": "renamed"},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	stored, _ := api.Store().Get("dcim/sites", 1)
	assert.Equal(t, "renamed", stored.GetString("name"))
	assert.Equal(t, "alpha", stored.GetString("slug"))
}

func TestDeleteObject(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/sites", types.Record{"name": "doomed"})

	res, err := s.deleteObject(context.Background(), callRequest("netforge_delete_object", map[string]any{
		"endpoint": "dcim/sites",
		"id":       float64(1),
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &status))
	assert.Equal(t, true, status["deleted"])

	_, ok := api.Store().Get("dcim/sites", 1)
	assert.False(t, ok)
}

func TestBulkCreateObjects(t *testing.T) {
	s, api := newMCPServer(t)

	res, err := s.bulkCreateObjects(context.Background(), callRequest("netforge_bulk_create_objects", map[string]any{
		"endpoint": "dcim/devices",
		"data": []any{
			map[string]any{"name": "sw-1"},
			map[string]any{"name": "sw-2"},
		},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var recs types.RecordSet
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &recs))
	require.Len(t, recs, 2)
	assert.Len(t, api.Store().List("dcim/devices"), 2)
}

func TestBulkUpdateObjects(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1", "status": "active"},
		types.Record{"name": "sw-2", "status": "active"},
	)

	res, err := s.bulkUpdateObjects(context.Background(), callRequest("netforge_bulk_update_objects", map[string]any{
		"endpoint": "dcim/devices",
		"data": []any{
			map[string]any{"id": float64(1), "status": "offline"},
			map[string]any{"id": float64(2), "status": "offline"},
		},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)

	stored, _ := api.Store().Get("dcim/devices", 2)
	assert.Equal(t, "offline", stored.GetString("status"))
}

func TestBulkUpdateObjectsRequiresIDs(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/devices", types.Record{"name": "sw-1", "status": "active"})

	res, err := s.bulkUpdateObjects(context.Background(), callRequest("netforge_bulk_update_objects", map[string]any{
		"endpoint": "dcim/devices",
		"data": []any{
			map[string]any{"id": float64(1), "status": "offline"},
			map[string]any{"status": "offline"},
		},
	}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "data[1] has no id field")

	// The invalid batch never reached the server.
	stored, _ := api.Store().Get("dcim/devices", 1)
	assert.Equal(t, "active", stored.GetString("status"))
}

func TestBulkDeleteObjects(t *testing.T) {
	s, api := newMCPServer(t)
	api.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1"},
		types.Record{"name": "sw-2"},
	)

	res, err := s.bulkDeleteObjects(context.Background(), callRequest("netforge_bulk_delete_objects", map[string]any{
		"endpoint": "dcim/devices",
		"ids":      []any{float64(1), float64(2)},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Empty(t, api.Store().List("dcim/devices"))
}

func TestDecodeArgsValidation(t *testing.T) {
	s, _ := newMCPServer(t)
	ctx := context.Background()

	t.Run("arguments not an object", func(t *testing.T) {
		var req mcp.CallToolRequest
		req.Params.Name = "netforge_get_objects"
		req.Params.Arguments = "not-an-object"

		res, err := s.getObjects(ctx, req)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "expected an object")
	})

	t.Run("missing endpoint", func(t *testing.T) {
		res, err := s.getObjects(ctx, callRequest("netforge_get_objects", map[string]any{}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "Endpoint failed on required")
	})

	t.Run("missing id", func(t *testing.T) {
		res, err := s.getObjectByID(ctx, callRequest("netforge_get_object_by_id", map[string]any{
			"endpoint": "dcim/sites",
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "ID failed on required")
	})

	t.Run("empty bulk data", func(t *testing.T) {
		res, err := s.bulkCreateObjects(ctx, callRequest("netforge_bulk_create_objects", map[string]any{
			"endpoint": "dcim/sites",
			"data":     []any{},
		}))
		require.NoError(t, err)
		assert.True(t, res.IsError)
	})
}

// jsonrpc drives one raw message through the server and returns the marshaled
// response.
func jsonrpc(t *testing.T, s *Server, message string) []byte {
	t.Helper()
	rsp := s.HandleMessage(context.Background(), json.RawMessage(message))
	require.NotNil(t, rsp)
	raw, err := json.Marshal(rsp)
	require.NoError(t, err)
	return raw
}

func TestHandleMessageToolsList(t *testing.T) {
	s, _ := newMCPServer(t)

	jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {"protocolVersion": "2025-03-26", "capabilities": {}, "clientInfo": {"name": "test", "version": "0.0.1"}}}`)

	raw := jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}`)

	var parsed struct {
		Result struct {
			Tools []struct {
				Name string `json:"name"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	require.Len(t, parsed.Result.Tools, 8)

	names := make(map[string]bool)
	for _, tool := range parsed.Result.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{
		"netforge_get_objects",
		"netforge_get_object_by_id",
		"netforge_create_object",
		"netforge_update_object",
		"netforge_delete_object",
		"netforge_bulk_create_objects",
		"netforge_bulk_update_objects",
		"netforge_bulk_delete_objects",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestHandleMessageToolCall(t *testing.T) {
	s, api := newMCPServer(t)

	jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {"protocolVersion": "2025-03-26", "capabilities": {}, "clientInfo": {"name": "test", "version": "0.0.1"}}}`)

	raw := jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "netforge_create_object", "arguments": {"endpoint": "dcim/sites", "data": {"name": "HQ", "slug": "hq"}}}}`)

	var parsed struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.False(t, parsed.Result.IsError)
	require.NotEmpty(t, parsed.Result.Content)
	assert.Equal(t, "text", parsed.Result.Content[0].Type)
	assert.Contains(t, parsed.Result.Content[0].Text, `"name": "HQ"`)

	// The call went all the way through to the store.
	rec, ok := api.Store().Get("dcim/sites", 1)
	require.True(t, ok)
	assert.Equal(t, "HQ", rec.GetString("name"))
}

func TestHandleMessageUnknownTool(t *testing.T) {
	s, _ := newMCPServer(t)

	jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 1, "method": "initialize", "params": {"protocolVersion": "2025-03-26", "capabilities": {}, "clientInfo": {"name": "test", "version": "0.0.1"}}}`)

	raw := jsonrpc(t, s, `{"jsonrpc": "2.0", "id": 2, "method": "tools/call", "params": {"name": "netforge_no_such_tool", "arguments": {}}}`)

	var parsed struct {
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(raw, &parsed))
	assert.NotNil(t, parsed.Error)
}
