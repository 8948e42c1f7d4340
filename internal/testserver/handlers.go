package testserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/netforge-io/netforge/internal/common/httpx"
	"github.com/netforge-io/netforge/pkg/netforge"
	"github.com/netforge-io/netforge/pkg/types"
)

// envelope is the paginated wrapper for collection responses.
type envelope struct {
	Count    int                  `json:"count"`
	Next     types.NullableString `json:"next"`
	Previous types.NullableString `json:"previous"`
	Results  types.RecordSet      `json:"results"`
}

// endpointFromRequest reassembles the collection endpoint from the route
// parameters, e.g. "dcim/sites".
func endpointFromRequest(r *http.Request) string {
	return chi.URLParam(r, "group") + "/" + chi.URLParam(r, "model")
}

// getStatus reports the server's version surface.
func (s *Server) getStatus(r *http.Request) (*httpx.Response, error) {
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response: types.Record{
			"netbox-version":   s.config.APIVersion,
			"netforge-version": netforge.Version,
			"plugins":          types.Record{},
		},
	}, nil
}

// provisionToken exchanges a username and password for a fresh API token.
// The token is stored as a users/tokens object and admitted for auth.
func (s *Server) provisionToken(r *http.Request) (*httpx.Response, error) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := httpx.GetRequestData(r, &creds); err != nil {
		return nil, err
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, httpx.ErrInvalidRequest("username and password are required")
	}
	if password, ok := s.config.Users[creds.Username]; !ok || password != creds.Password {
		return nil, httpx.ErrForbidden("Invalid username/password.")
	}

	token := newToken()
	s.registerToken(token)
	rec := s.store.Create("users/tokens", types.Record{
		"key":           token,
		"write_enabled": true,
		"description":   "provisioned for " + creds.Username,
		"expires":       nil,
	})

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Response:   rec,
	}, nil
}

// listObjects serves a collection as a paginated envelope. Query parameters
// other than limit and offset filter records by string equality.
func (s *Server) listObjects(r *http.Request) (*httpx.Response, error) {
	endpoint := endpointFromRequest(r)
	records := s.store.List(endpoint)

	query := r.URL.Query()
	for key, values := range query {
		if key == "limit" || key == "offset" || len(values) == 0 {
			continue
		}
		filtered := make(types.RecordSet, 0, len(records))
		for _, rec := range records {
			if v, ok := rec[key]; ok && fmt.Sprint(v) == values[0] {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}

	limit := s.config.PageSize
	if raw := query.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			limit = n
		}
	}
	offset := 0
	if raw := query.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}

	total := len(records)
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	rsp := envelope{
		Count:   total,
		Results: records[offset:end],
	}
	if end < total {
		rsp.Next.Set(s.pageLink(r, limit, offset+limit))
	}
	if offset > 0 {
		prev := offset - limit
		if prev < 0 {
			prev = 0
		}
		rsp.Previous.Set(s.pageLink(r, limit, prev))
	}

	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rsp,
	}, nil
}

// pageLink builds the absolute URL of a neighboring page, preserving filters.
func (s *Server) pageLink(r *http.Request, limit, offset int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	q := r.URL.Query()
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return fmt.Sprintf("%s://%s%s?%s", scheme, r.Host, r.URL.Path, q.Encode())
}

// createObject inserts one record and answers 201 with the stored object.
func (s *Server) createObject(r *http.Request) (*httpx.Response, error) {
	var rec types.Record
	if err := httpx.GetRequestData(r, &rec); err != nil {
		return nil, err
	}
	if len(rec) == 0 {
		return nil, httpx.ErrInvalidRequest("request body is required")
	}

	endpoint := endpointFromRequest(r)
	created := s.store.Create(endpoint, rec)
	id, _ := created.ID()

	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Location:   objectPath(endpoint, id),
		Response:   created,
	}, nil
}

// getObject serves one record by id.
func (s *Server) getObject(r *http.Request) (*httpx.Response, error) {
	endpoint := endpointFromRequest(r)
	id, err := strconv.Atoi(chi.URLParam(r, "objectID"))
	if err != nil {
		return nil, httpx.ErrNotFound()
	}

	rec, ok := s.store.Get(endpoint, id)
	if !ok {
		return nil, httpx.ErrNotFound()
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rec,
	}, nil
}

// updateObject merges the request fields into one record.
func (s *Server) updateObject(r *http.Request) (*httpx.Response, error) {
	endpoint := endpointFromRequest(r)
	id, err := strconv.Atoi(chi.URLParam(r, "objectID"))
	if err != nil {
		return nil, httpx.ErrNotFound()
	}

	var fields types.Record
	if err := httpx.GetRequestData(r, &fields); err != nil {
		return nil, err
	}

	rec, ok := s.store.Update(endpoint, id, fields)
	if !ok {
		return nil, httpx.ErrNotFound()
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   rec,
	}, nil
}

// deleteObject removes one record and answers the configured deletion status
// with no body.
func (s *Server) deleteObject(r *http.Request) (*httpx.Response, error) {
	endpoint := endpointFromRequest(r)
	id, err := strconv.Atoi(chi.URLParam(r, "objectID"))
	if err != nil {
		return nil, httpx.ErrNotFound()
	}

	if !s.store.Delete(endpoint, id) {
		return nil, httpx.ErrNotFound()
	}
	return &httpx.Response{
		StatusCode: s.config.DeleteStatusCode,
	}, nil
}

// bulkCreateObjects inserts a batch of records and answers 201 with the
// stored objects in input order.
func (s *Server) bulkCreateObjects(r *http.Request) (*httpx.Response, error) {
	var recs types.RecordSet
	if err := httpx.GetRequestData(r, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, httpx.ErrInvalidRequest("request body must be a non-empty list")
	}

	created := s.store.BulkCreate(endpointFromRequest(r), recs)
	return &httpx.Response{
		StatusCode: http.StatusCreated,
		Response:   created,
	}, nil
}

// bulkUpdateObjects merges a batch of id-bearing records. The batch either
// fully applies or fails without touching the store.
func (s *Server) bulkUpdateObjects(r *http.Request) (*httpx.Response, error) {
	var recs types.RecordSet
	if err := httpx.GetRequestData(r, &recs); err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, httpx.ErrInvalidRequest("request body must be a non-empty list")
	}

	updated, err := s.store.BulkUpdate(endpointFromRequest(r), recs)
	if err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}
	return &httpx.Response{
		StatusCode: http.StatusOK,
		Response:   updated,
	}, nil
}

// bulkDeleteObjects removes a batch of records identified by {"id": n}
// entries. The batch either fully applies or fails without touching the
// store.
func (s *Server) bulkDeleteObjects(r *http.Request) (*httpx.Response, error) {
	var refs types.RecordSet
	if err := httpx.GetRequestData(r, &refs); err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, httpx.ErrInvalidRequest("request body must be a non-empty list")
	}

	ids := make([]int, 0, len(refs))
	for _, ref := range refs {
		id, ok := ref.ID()
		if !ok {
			return nil, httpx.ErrInvalidRequest("id is required for bulk delete")
		}
		ids = append(ids, id)
	}

	if err := s.store.BulkDelete(endpointFromRequest(r), ids); err != nil {
		return nil, httpx.ErrInvalidRequest(err.Error())
	}
	return &httpx.Response{
		StatusCode: s.config.DeleteStatusCode,
	}, nil
}
