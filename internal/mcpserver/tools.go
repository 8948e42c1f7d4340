package mcpserver

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// toolRegistration pairs a tool definition with its handler.
type toolRegistration struct {
	tool    mcp.Tool
	handler server.ToolHandlerFunc
}

// tools returns every tool this server offers. Endpoints are NetBox-style
// app/model paths such as dcim/devices or ipam/ip-addresses; the tools put
// no restriction on which collections exist.
func (s *Server) tools() []toolRegistration {
	return []toolRegistration{
		{
			tool: mcp.Tool{
				Name:        "netforge_get_objects",
				Description: "List objects from a collection, optionally filtered. Returns the objects as JSON.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/devices or ipam/ip-addresses"
    },
    "filters": {
      "type": "object",
      "description": "Query parameters to filter the result, e.g. {\"status\": \"active\", \"site_id\": \"3\"}",
      "additionalProperties": {"type": "string"}
    }
  },
  "required": ["endpoint"]
}`),
			},
			handler: s.getObjects,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_get_object_by_id",
				Description: "Fetch one object by its numeric id. Returns the object as JSON.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/devices"
    },
    "id": {
      "type": "integer",
      "description": "Numeric id of the object"
    }
  },
  "required": ["endpoint", "id"]
}`),
			},
			handler: s.getObjectByID,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_create_object",
				Description: "Create one object in a collection. Returns the created object, including its assigned id.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/sites"
    },
    "data": {
      "type": "object",
      "description": "Fields of the new object, e.g. {\"name\": \"Oslo\", \"slug\": \"oslo\"}"
    }
  },
  "required": ["endpoint", "data"]
}`),
			},
			handler: s.createObject,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_update_object",
				Description: "Update fields of one object by id. Fields not named keep their value. Returns the updated object.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/sites"
    },
    "id": {
      "type": "integer",
      "description": "Numeric id of the object"
    },
    "data": {
      "type": "object",
      "description": "Fields to change, e.g. {\"status\": \"offline\"}"
    }
  },
  "required": ["endpoint", "id", "data"]
}`),
			},
			handler: s.updateObject,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_delete_object",
				Description: "Delete one object by id. Reports whether the server confirmed the deletion with 204 No Content.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/sites"
    },
    "id": {
      "type": "integer",
      "description": "Numeric id of the object"
    }
  },
  "required": ["endpoint", "id"]
}`),
			},
			handler: s.deleteObject,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_bulk_create_objects",
				Description: "Create several objects in one request. Returns the created objects with their assigned ids.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/devices"
    },
    "data": {
      "type": "array",
      "description": "One entry per object to create",
      "items": {"type": "object"},
      "minItems": 1
    }
  },
  "required": ["endpoint", "data"]
}`),
			},
			handler: s.bulkCreateObjects,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_bulk_update_objects",
				Description: "Update several objects in one request. Every entry must carry the id of the object it changes. Returns the updated objects.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. dcim/devices"
    },
    "data": {
      "type": "array",
      "description": "One entry per object, each with an id and the fields to change",
      "items": {"type": "object"},
      "minItems": 1
    }
  },
  "required": ["endpoint", "data"]
}`),
			},
			handler: s.bulkUpdateObjects,
		},
		{
			tool: mcp.Tool{
				Name:        "netforge_bulk_delete_objects",
				Description: "Delete several objects by id in one request. Reports whether the server confirmed the deletion with 204 No Content.",
				RawInputSchema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "endpoint": {
      "type": "string",
      "description": "Collection path, e.g. ipam/ip-addresses"
    },
    "ids": {
      "type": "array",
      "description": "Numeric ids of the objects to delete",
      "items": {"type": "integer"},
      "minItems": 1
    }
  },
  "required": ["endpoint", "ids"]
}`),
			},
			handler: s.bulkDeleteObjects,
		},
	}
}
