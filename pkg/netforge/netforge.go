// Package netforge provides a typed client for NetForge and NetBox-compatible
// REST APIs. It maps CRUD and bulk operations over arbitrary resource
// collections onto single HTTP requests: URL construction, verb selection,
// pagination unwrapping, and status-code interpretation. The client holds no
// state beyond its construction-time credentials and performs no retries,
// caching, or batching of its own.
package netforge

import (
	"context"

	"github.com/netforge-io/netforge/pkg/types"
)

// Client defines the capability set for resource operations against a
// NetBox-compatible API. There is one network-backed implementation
// (RESTClient) and one in-process implementation for tests (TestClient);
// both translate every call into exactly one HTTP request.
type Client interface {
	// Get fetches the single object with the given id from a collection.
	// The response body is returned as-is: a results field is never
	// unwrapped on a single-object fetch, even if present.
	Get(ctx context.Context, endpoint string, id int, params map[string]string) (types.Record, error)

	// List fetches a collection, optionally filtered by params. When the
	// response body is a paginated envelope, the raw value of its results
	// field is returned; any other body is returned unchanged, byte for
	// byte.
	List(ctx context.Context, endpoint string, params map[string]string) ([]byte, error)

	// Create posts data to the collection URL and returns the created
	// object, including its server-assigned id.
	Create(ctx context.Context, endpoint string, data any) (types.Record, error)

	// Update patches the object with the given id and returns the updated
	// object. Only the fields present in data are modified.
	Update(ctx context.Context, endpoint string, id int, data any) (types.Record, error)

	// Delete removes the object with the given id. Returns true iff the
	// server answered 204 No Content; any other success status yields
	// false. Non-success statuses return an error.
	Delete(ctx context.Context, endpoint string, id int) (bool, error)

	// BulkCreate posts a sequence of objects to the collection's bulk URL
	// and returns the created objects in order.
	BulkCreate(ctx context.Context, endpoint string, data any) (types.RecordSet, error)

	// BulkUpdate patches a sequence of objects through the collection's
	// bulk URL. Every entry must carry an id. Returns the updated objects.
	BulkUpdate(ctx context.Context, endpoint string, data any) (types.RecordSet, error)

	// BulkDelete removes the objects with the given ids through the
	// collection's bulk URL. The request body lists the ids in input
	// order. Returns true iff the server answered 204 No Content.
	BulkDelete(ctx context.Context, endpoint string, ids []int) (bool, error)
}

// Verify that RESTClient and TestClient implement the Client interface.
// This is a compile-time check to ensure both implementations satisfy the interface.
var _ Client = &RESTClient{}
var _ Client = &TestClient{}
