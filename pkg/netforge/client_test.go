package netforge_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netforge-io/netforge/internal/testserver"
	"github.com/netforge-io/netforge/pkg/netforge"
	"github.com/netforge-io/netforge/pkg/types"
)

// newTestServer builds a mounted in-memory server and a client holding its
// admission token.
func newTestServer(t *testing.T, config *testserver.Config) (*testserver.Server, *netforge.TestClient) {
	t.Helper()
	srv, err := testserver.New(config)
	require.NoError(t, err)
	srv.MountHandlers()

	client, err := netforge.NewTestClient(srv.Router, srv.Token())
	require.NoError(t, err)
	return srv, client
}

func TestCreate(t *testing.T) {
	_, client := newTestServer(t, nil)
	ctx := context.Background()

	rec, err := client.Create(ctx, "dcim/sites", types.Record{
		"name": "HQ East",
		"slug": "hq-east",
	})
	require.NoError(t, err)

	id, ok := rec.ID()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.Equal(t, "HQ East", rec.GetString("name"))
	assert.Equal(t, "hq-east", rec.GetString("slug"))
	assert.Equal(t, "/api/dcim/sites/1/", rec.GetString("url"))
}

func TestEndpointSlashVariants(t *testing.T) {
	_, client := newTestServer(t, nil)
	ctx := context.Background()

	// Leading and trailing slashes on the endpoint address the same
	// collection.
	_, err := client.Create(ctx, "/dcim/sites/", types.Record{"name": "one"})
	require.NoError(t, err)
	_, err = client.Create(ctx, "dcim/sites", types.Record{"name": "two"})
	require.NoError(t, err)

	recs, err := client.ListAll(ctx, "dcim/sites/", nil)
	require.NoError(t, err)
	require.Len(t, recs, 2)
}

func TestGetDoesNotUnwrapResults(t *testing.T) {
	srv, client := newTestServer(t, nil)
	ctx := context.Background()

	// A single object that happens to carry its own results field must come
	// back intact, not unwrapped.
	srv.Store().Seed("extras/reports", types.Record{
		"name":    "cabling-audit",
		"results": []any{"pass", "fail"},
	})

	rec, err := client.Get(ctx, "extras/reports", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "cabling-audit", rec.GetString("name"))
	assert.Equal(t, []any{"pass", "fail"}, rec["results"])
}

func TestGetNotFound(t *testing.T) {
	_, client := newTestServer(t, nil)

	rec, err := client.Get(context.Background(), "dcim/sites", 99, nil)
	require.Error(t, err)
	assert.Nil(t, rec)
	assert.True(t, netforge.IsNotFound(err))
	assert.Equal(t, http.StatusNotFound, netforge.ErrorStatus(err))
}

func TestListUnwrapsEnvelope(t *testing.T) {
	srv, client := newTestServer(t, nil)

	srv.Store().Seed("dcim/sites",
		types.Record{"name": "alpha"},
		types.Record{"name": "beta"},
		types.Record{"name": "gamma"},
	)

	body, err := client.List(context.Background(), "dcim/sites", nil)
	require.NoError(t, err)

	// The paginated envelope is stripped down to the bare results array.
	var recs types.RecordSet
	require.NoError(t, json.Unmarshal(body, &recs))
	require.Len(t, recs, 3)
	assert.Equal(t, "alpha", recs[0].GetString("name"))
	assert.Equal(t, "beta", recs[1].GetString("name"))
	assert.Equal(t, "gamma", recs[2].GetString("name"))
}

func TestListFilter(t *testing.T) {
	srv, client := newTestServer(t, nil)

	srv.Store().Seed("dcim/sites",
		types.Record{"name": "alpha", "status": "active"},
		types.Record{"name": "beta", "status": "planned"},
		types.Record{"name": "gamma", "status": "active"},
	)

	body, err := client.List(context.Background(), "dcim/sites", map[string]string{"status": "active"})
	require.NoError(t, err)

	var recs types.RecordSet
	require.NoError(t, json.Unmarshal(body, &recs))
	require.Len(t, recs, 2)
	assert.Equal(t, "alpha", recs[0].GetString("name"))
	assert.Equal(t, "gamma", recs[1].GetString("name"))

	body, err = client.List(context.Background(), "dcim/sites", map[string]string{"status": "retired"})
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &recs))
	assert.Empty(t, recs)
}

func TestListWithoutEnvelope(t *testing.T) {
	// A server that answers without pagination gets passed through
	// untouched; only a results key triggers unwrapping.
	var captured capturedRequest
	raw := `{"count": 2, "items": ["a", "b"]}`
	client, err := netforge.NewTestClient(captureHandler(http.StatusOK, raw, &captured), "sekrit")
	require.NoError(t, err)

	body, err := client.List(context.Background(), "dcim/sites", nil)
	require.NoError(t, err)
	assert.Equal(t, raw, string(body))
}

func TestUpdate(t *testing.T) {
	_, client := newTestServer(t, nil)
	ctx := context.Background()

	created, err := client.Create(ctx, "dcim/sites", types.Record{
		"name": "HQ East",
		"slug": "hq-east",
	})
	require.NoError(t, err)
	id, _ := created.ID()

	updated, err := client.Update(ctx, "dcim/sites", id, types.Record{"name": "HQ West"})
	require.NoError(t, err)
	assert.Equal(t, "HQ West", updated.GetString("name"))
	// Fields absent from the patch survive.
	assert.Equal(t, "hq-east", updated.GetString("slug"))

	updatedID, ok := updated.ID()
	require.True(t, ok)
	assert.Equal(t, id, updatedID)
}

func TestUpdateNotFound(t *testing.T) {
	_, client := newTestServer(t, nil)

	_, err := client.Update(context.Background(), "dcim/sites", 42, types.Record{"name": "x"})
	require.Error(t, err)
	assert.True(t, netforge.IsNotFound(err))
}

func TestDelete(t *testing.T) {
	_, client := newTestServer(t, nil)
	ctx := context.Background()

	created, err := client.Create(ctx, "dcim/sites", types.Record{"name": "doomed"})
	require.NoError(t, err)
	id, _ := created.ID()

	deleted, err := client.Delete(ctx, "dcim/sites", id)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = client.Get(ctx, "dcim/sites", id, nil)
	assert.True(t, netforge.IsNotFound(err))

	// Deleting again is an error, not a false.
	_, err = client.Delete(ctx, "dcim/sites", id)
	require.Error(t, err)
	assert.True(t, netforge.IsNotFound(err))
}

func TestDeleteUnexpectedSuccessStatus(t *testing.T) {
	config := testserver.DefaultConfig()
	config.DeleteStatusCode = http.StatusOK
	_, client := newTestServer(t, config)
	ctx := context.Background()

	created, err := client.Create(ctx, "dcim/sites", types.Record{"name": "doomed"})
	require.NoError(t, err)
	id, _ := created.ID()

	// A success status other than 204 yields false with no error, even though
	// the server did remove the object.
	deleted, err := client.Delete(ctx, "dcim/sites", id)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, err = client.Get(ctx, "dcim/sites", id, nil)
	assert.True(t, netforge.IsNotFound(err))
}

func TestBulkCreate(t *testing.T) {
	_, client := newTestServer(t, nil)

	recs, err := client.BulkCreate(context.Background(), "dcim/devices", types.RecordSet{
		{"name": "sw-1"},
		{"name": "sw-2"},
		{"name": "sw-3"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for i, rec := range recs {
		id, ok := rec.ID()
		require.True(t, ok)
		assert.Equal(t, i+1, id)
	}
	assert.Equal(t, "sw-1", recs[0].GetString("name"))
	assert.Equal(t, "sw-3", recs[2].GetString("name"))
}

func TestBulkUpdate(t *testing.T) {
	srv, client := newTestServer(t, nil)
	ctx := context.Background()

	srv.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1", "status": "active"},
		types.Record{"name": "sw-2", "status": "active"},
	)

	recs, err := client.BulkUpdate(ctx, "dcim/devices", types.RecordSet{
		{"id": 1, "status": "offline"},
		{"id": 2, "status": "offline"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "offline", recs[0].GetString("status"))
	assert.Equal(t, "sw-1", recs[0].GetString("name"))
	assert.Equal(t, "offline", recs[1].GetString("status"))
}

func TestBulkUpdateIsAtomic(t *testing.T) {
	srv, client := newTestServer(t, nil)
	ctx := context.Background()

	srv.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1", "status": "active"},
	)

	// One bad id fails the whole batch.
	_, err := client.BulkUpdate(ctx, "dcim/devices", types.RecordSet{
		{"id": 1, "status": "offline"},
		{"id": 99, "status": "offline"},
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, netforge.ErrorStatus(err))

	rec, err := client.Get(ctx, "dcim/devices", 1, nil)
	require.NoError(t, err)
	assert.Equal(t, "active", rec.GetString("status"))
}

func TestBulkDelete(t *testing.T) {
	srv, client := newTestServer(t, nil)
	ctx := context.Background()

	srv.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1"},
		types.Record{"name": "sw-2"},
		types.Record{"name": "sw-3"},
	)

	deleted, err := client.BulkDelete(ctx, "dcim/devices", []int{1, 3})
	require.NoError(t, err)
	assert.True(t, deleted)

	recs, err := client.ListAll(ctx, "dcim/devices", nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "sw-2", recs[0].GetString("name"))
}

func TestBulkDeleteIsAtomic(t *testing.T) {
	srv, client := newTestServer(t, nil)
	ctx := context.Background()

	srv.Store().Seed("dcim/devices",
		types.Record{"name": "sw-1"},
		types.Record{"name": "sw-2"},
	)

	_, err := client.BulkDelete(ctx, "dcim/devices", []int{1, 99})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, netforge.ErrorStatus(err))

	recs, err := client.ListAll(ctx, "dcim/devices", nil)
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestListAllPagination(t *testing.T) {
	config := testserver.DefaultConfig()
	config.PageSize = 2
	srv, client := newTestServer(t, config)

	srv.Store().Seed("dcim/sites",
		types.Record{"name": "site-1"},
		types.Record{"name": "site-2"},
		types.Record{"name": "site-3"},
		types.Record{"name": "site-4"},
		types.Record{"name": "site-5"},
	)

	recs, err := client.ListAll(context.Background(), "dcim/sites", nil)
	require.NoError(t, err)
	require.Len(t, recs, 5)
	for i, rec := range recs {
		id, ok := rec.ID()
		require.True(t, ok)
		assert.Equal(t, i+1, id)
	}
}

func TestAuth(t *testing.T) {
	srv, err := testserver.New(nil)
	require.NoError(t, err)
	srv.MountHandlers()

	t.Run("missing token", func(t *testing.T) {
		client, err := netforge.NewTestClient(srv.Router, "")
		require.NoError(t, err)

		_, err = client.Status(context.Background())
		require.Error(t, err)
		assert.True(t, netforge.IsAuthFailure(err))
		assert.Equal(t, http.StatusUnauthorized, netforge.ErrorStatus(err))
	})

	t.Run("wrong token", func(t *testing.T) {
		client, err := netforge.NewTestClient(srv.Router, "not-the-token")
		require.NoError(t, err)

		_, err = client.Status(context.Background())
		require.Error(t, err)
		assert.True(t, netforge.IsAuthFailure(err))
		assert.Equal(t, http.StatusForbidden, netforge.ErrorStatus(err))
	})

	t.Run("valid token", func(t *testing.T) {
		client, err := netforge.NewTestClient(srv.Router, srv.Token())
		require.NoError(t, err)

		_, err = client.Status(context.Background())
		require.NoError(t, err)
	})
}

func TestStatus(t *testing.T) {
	config := testserver.DefaultConfig()
	config.APIVersion = "4.1.3"
	_, client := newTestServer(t, config)

	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4.1.3", status.GetString("netbox-version"))
	assert.Equal(t, netforge.Version, status.GetString("netforge-version"))
}

func TestProvisionToken(t *testing.T) {
	srv, err := testserver.New(nil)
	require.NoError(t, err)
	srv.MountHandlers()

	// Provisioning needs no prior token.
	anon, err := netforge.NewTestClient(srv.Router, "")
	require.NoError(t, err)

	rec, err := anon.ProvisionToken(context.Background(), "admin", "admin")
	require.NoError(t, err)
	key := rec.GetString("key")
	require.NotEmpty(t, key)

	// The provisioned token is admitted for authenticated calls.
	client, err := netforge.NewTestClient(srv.Router, key)
	require.NoError(t, err)
	_, err = client.Status(context.Background())
	require.NoError(t, err)
}

func TestProvisionTokenBadCredentials(t *testing.T) {
	srv, err := testserver.New(nil)
	require.NoError(t, err)
	srv.MountHandlers()

	anon, err := netforge.NewTestClient(srv.Router, "")
	require.NoError(t, err)

	_, err = anon.ProvisionToken(context.Background(), "admin", "wrong")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, netforge.ErrorStatus(err))
}

// capturedRequest records what the client put on the wire.
type capturedRequest struct {
	Method string
	URL    string
	Body   string
	Header http.Header
}

// captureHandler answers every request with the given status and body while
// recording the request for inspection.
func captureHandler(status int, body string, out *capturedRequest) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		out.Method = r.Method
		out.URL = r.URL.String()
		out.Body = string(raw)
		out.Header = r.Header.Clone()
		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		if body != "" {
			w.Write([]byte(body))
		}
	})
}

func TestCreateWire(t *testing.T) {
	var captured capturedRequest
	client, err := netforge.NewTestClient(captureHandler(http.StatusCreated, `{"id": 1, "name": "HQ"}`, &captured), "sekrit")
	require.NoError(t, err)

	_, err = client.Create(context.Background(), "dcim/sites", types.Record{"name": "HQ"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, "/api/dcim/sites/", captured.URL)
	assert.JSONEq(t, `{"name": "HQ"}`, captured.Body)
	assert.Equal(t, "Token sekrit", captured.Header.Get("Authorization"))
	assert.Equal(t, "application/json", captured.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", captured.Header.Get("Accept"))
	assert.Equal(t, netforge.UserAgent, captured.Header.Get("User-Agent"))
	assert.NotEmpty(t, captured.Header.Get("X-Request-ID"))
}

func TestBulkDeleteWire(t *testing.T) {
	var captured capturedRequest
	client, err := netforge.NewTestClient(captureHandler(http.StatusNoContent, "", &captured), "sekrit")
	require.NoError(t, err)

	deleted, err := client.BulkDelete(context.Background(), "dcim/sites", []int{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, deleted)

	assert.Equal(t, http.MethodDelete, captured.Method)
	assert.Equal(t, "/api/dcim/sites/bulk/", captured.URL)
	// The body is a sequence of id references in input order.
	assert.Equal(t, `[{"id":1},{"id":2},{"id":3}]`, captured.Body)
}

func TestUpdateWire(t *testing.T) {
	var captured capturedRequest
	client, err := netforge.NewTestClient(captureHandler(http.StatusOK, `{"id": 7}`, &captured), "sekrit")
	require.NoError(t, err)

	_, err = client.Update(context.Background(), "dcim/sites", 7, types.Record{"name": "renamed"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, captured.Method)
	assert.Equal(t, "/api/dcim/sites/7/", captured.URL)
	assert.JSONEq(t, `{"name": "renamed"}`, captured.Body)
}

func TestAnonymousClientSendsNoAuthHeader(t *testing.T) {
	var captured capturedRequest
	client, err := netforge.NewTestClient(captureHandler(http.StatusOK, `{}`, &captured), "")
	require.NoError(t, err)

	_, err = client.Status(context.Background())
	require.NoError(t, err)
	_, present := captured.Header["Authorization"]
	assert.False(t, present)
}
