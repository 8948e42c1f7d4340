package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/netforge-io/netforge/pkg/types"
)

var argsValidator *validator.Validate

func v() *validator.Validate {
	if argsValidator == nil {
		argsValidator = validator.New(validator.WithRequiredStructEnabled())
	}
	return argsValidator
}

type getObjectsArgs struct {
	Endpoint string            `mapstructure:"endpoint" validate:"required"`
	Filters  map[string]string `mapstructure:"filters"`
}

type getObjectByIDArgs struct {
	Endpoint string `mapstructure:"endpoint" validate:"required"`
	ID       int    `mapstructure:"id" validate:"required"`
}

type createObjectArgs struct {
	Endpoint string         `mapstructure:"endpoint" validate:"required"`
	Data     map[string]any `mapstructure:"data" validate:"required"`
}

type updateObjectArgs struct {
	Endpoint string         `mapstructure:"endpoint" validate:"required"`
	ID       int            `mapstructure:"id" validate:"required"`
	Data     map[string]any `mapstructure:"data" validate:"required"`
}

type deleteObjectArgs struct {
	Endpoint string `mapstructure:"endpoint" validate:"required"`
	ID       int    `mapstructure:"id" validate:"required"`
}

type bulkWriteArgs struct {
	Endpoint string           `mapstructure:"endpoint" validate:"required"`
	Data     []map[string]any `mapstructure:"data" validate:"required,min=1"`
}

type bulkDeleteArgs struct {
	Endpoint string `mapstructure:"endpoint" validate:"required"`
	IDs      []int  `mapstructure:"ids" validate:"required,min=1"`
}

// decodeArgs decodes the request arguments into out and validates them.
func decodeArgs(req mcp.CallToolRequest, out any) error {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return fmt.Errorf("invalid arguments: expected an object")
	}
	if err := mapstructure.Decode(args, out); err != nil {
		return fmt.Errorf("invalid arguments: %v", err)
	}
	if err := v().Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid arguments: %s failed on %s", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid arguments: %v", err)
	}
	return nil
}

// errorResult wraps a message as a tool error, so the assistant sees the
// failure instead of the protocol call aborting.
func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: fmt.Sprintf(format, args...),
			},
		},
	}
}

// jsonResult renders a value as indented JSON text content.
func jsonResult(value any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult("failed to encode result: %v", err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(raw),
			},
		},
	}, nil
}

// getObjects handles the netforge_get_objects tool.
func (s *Server) getObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getObjectsArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	raw, err := s.client.List(ctx, args.Endpoint, args.Filters)
	if err != nil {
		return errorResult("list failed: %v", err), nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return errorResult("failed to parse response: %v", err), nil
	}
	return jsonResult(value)
}

// getObjectByID handles the netforge_get_object_by_id tool.
func (s *Server) getObjectByID(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args getObjectByIDArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	rec, err := s.client.Get(ctx, args.Endpoint, args.ID, nil)
	if err != nil {
		return errorResult("get failed: %v", err), nil
	}
	return jsonResult(rec)
}

// createObject handles the netforge_create_object tool.
func (s *Server) createObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args createObjectArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	rec, err := s.client.Create(ctx, args.Endpoint, args.Data)
	if err != nil {
		return errorResult("create failed: %v", err), nil
	}
	return jsonResult(rec)
}

// updateObject handles the netforge_update_object tool.
func (s *Server) updateObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args updateObjectArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	rec, err := s.client.Update(ctx, args.Endpoint, args.ID, args.Data)
	if err != nil {
		return errorResult("update failed: %v", err), nil
	}
	return jsonResult(rec)
}

// deleteObject handles the netforge_delete_object tool. The deleted flag in
// the result is true only when the server answered 204 No Content.
func (s *Server) deleteObject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args deleteObjectArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	deleted, err := s.client.Delete(ctx, args.Endpoint, args.ID)
	if err != nil {
		return errorResult("delete failed: %v", err), nil
	}
	return jsonResult(map[string]any{
		"endpoint": args.Endpoint,
		"id":       args.ID,
		"deleted":  deleted,
	})
}

// bulkCreateObjects handles the netforge_bulk_create_objects tool.
func (s *Server) bulkCreateObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args bulkWriteArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	recs, err := s.client.BulkCreate(ctx, args.Endpoint, args.Data)
	if err != nil {
		return errorResult("bulk create failed: %v", err), nil
	}
	return jsonResult(recs)
}

// bulkUpdateObjects handles the netforge_bulk_update_objects tool.
func (s *Server) bulkUpdateObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args bulkWriteArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}
	for i, d := range args.Data {
		if _, ok := types.Record(d).ID(); !ok {
			return errorResult("invalid arguments: data[%d] has no id field", i), nil
		}
	}

	recs, err := s.client.BulkUpdate(ctx, args.Endpoint, args.Data)
	if err != nil {
		return errorResult("bulk update failed: %v", err), nil
	}
	return jsonResult(recs)
}

// bulkDeleteObjects handles the netforge_bulk_delete_objects tool.
func (s *Server) bulkDeleteObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args bulkDeleteArgs
	if err := decodeArgs(req, &args); err != nil {
		return errorResult("%v", err), nil
	}

	deleted, err := s.client.BulkDelete(ctx, args.Endpoint, args.IDs)
	if err != nil {
		return errorResult("bulk delete failed: %v", err), nil
	}
	return jsonResult(map[string]any{
		"endpoint": args.Endpoint,
		"ids":      args.IDs,
		"deleted":  deleted,
	})
}
