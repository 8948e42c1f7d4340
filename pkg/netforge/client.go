package netforge

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/gjson"

	"github.com/netforge-io/netforge/pkg/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// defaultTimeout bounds each request when no custom transport is injected.
const defaultTimeout = 30 * time.Second

// RESTClient is the network-backed implementation of Client. It owns its
// credentials and one connection-reusing http.Client; all fields are fixed at
// construction, so a RESTClient is safe for concurrent use.
type RESTClient struct {
	serverURL  string
	apiRoot    string
	token      string
	userAgent  string
	timeout    time.Duration
	insecure   bool
	httpClient *http.Client
}

// Option configures a RESTClient during construction.
type Option func(*RESTClient)

// WithTimeout sets the per-request timeout of the underlying http.Client.
// Ignored when a custom client is injected with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *RESTClient) {
		c.timeout = timeout
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Certificate
// verification is on by default; only disable it against lab servers with
// self-signed certificates.
func WithInsecureSkipVerify() Option {
	return func(c *RESTClient) {
		c.insecure = true
	}
}

// WithHTTPClient injects the http.Client used for requests. Timeout and TLS
// options are not applied to an injected client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *RESTClient) {
		c.httpClient = httpClient
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *RESTClient) {
		c.userAgent = userAgent
	}
}

// New creates a client for the server at serverURL, authenticating every
// request with the given API token. An empty token is allowed so that a fresh
// client can call ProvisionToken. The API root is the server URL with any
// trailing slashes stripped, plus "/api".
func New(serverURL, token string, opts ...Option) (*RESTClient, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", serverURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid server URL %q: missing host", serverURL)
	}

	c := &RESTClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		token:     token,
		userAgent: UserAgent,
		timeout:   defaultTimeout,
	}
	c.apiRoot = c.serverURL + "/api"

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
		if c.insecure {
			c.httpClient.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			}
		}
	}

	return c, nil
}

// collectionURL builds the collection URL for an endpoint. Slashes at both
// ends of the endpoint are stripped before reassembly, and the result always
// ends with a trailing slash.
func (c *RESTClient) collectionURL(endpoint string) string {
	return c.apiRoot + "/" + strings.Trim(endpoint, "/") + "/"
}

// objectURL builds the single-object URL for an endpoint and id.
func (c *RESTClient) objectURL(endpoint string, id int) string {
	return c.collectionURL(endpoint) + strconv.Itoa(id) + "/"
}

// bulkURL builds the bulk-operation URL for an endpoint.
func (c *RESTClient) bulkURL(endpoint string) string {
	return c.collectionURL(endpoint) + "bulk/"
}

// withParams appends params to rawURL as an encoded query string.
func withParams(rawURL string, params map[string]string) string {
	if len(params) == 0 {
		return rawURL
	}
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	return rawURL + "?" + q.Encode()
}

// do issues one HTTP request and returns the response status and body.
// Statuses of 400 and above are converted into an HTTPError carrying the
// response body; everything below is returned to the caller for
// interpretation.
func (c *RESTClient) do(ctx context.Context, method, rawURL string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewBuffer(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode >= 400 {
		return resp.StatusCode, nil, newHTTPError(resp.StatusCode, respBody)
	}

	return resp.StatusCode, respBody, nil
}

// Get fetches the single object with the given id from a collection.
// The body is decoded as one object; a results field is never unwrapped on a
// single-object fetch.
// Returns an HTTPError when the server answers with a non-success status.
func (c *RESTClient) Get(ctx context.Context, endpoint string, id int, params map[string]string) (types.Record, error) {
	_, body, err := c.do(ctx, http.MethodGet, withParams(c.objectURL(endpoint, id), params), nil)
	if err != nil {
		return nil, err
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return rec, nil
}

// List fetches a collection, optionally filtered by params. When the response
// body carries a results field (the paginated list envelope), the raw value of
// that field is returned; any other body is returned unchanged.
// Returns an HTTPError when the server answers with a non-success status.
func (c *RESTClient) List(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	_, body, err := c.do(ctx, http.MethodGet, withParams(c.collectionURL(endpoint), params), nil)
	if err != nil {
		return nil, err
	}

	if results := gjson.GetBytes(body, "results"); results.Exists() {
		return []byte(results.Raw), nil
	}
	return body, nil
}

// Create posts data as JSON to the collection URL.
// Returns the parsed created object, including its server-assigned id.
func (c *RESTClient) Create(ctx context.Context, endpoint string, data any) (types.Record, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %v", err)
	}

	_, body, err := c.do(ctx, http.MethodPost, c.collectionURL(endpoint), payload)
	if err != nil {
		return nil, err
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return rec, nil
}

// Update patches the object with the given id. Only the fields present in
// data are modified on the server.
// Returns the parsed updated object.
func (c *RESTClient) Update(ctx context.Context, endpoint string, id int, data any) (types.Record, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %v", err)
	}

	_, body, err := c.do(ctx, http.MethodPatch, c.objectURL(endpoint, id), payload)
	if err != nil {
		return nil, err
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return rec, nil
}

// Delete removes the object with the given id. Returns true iff the server
// answered 204 No Content. A success status other than 204 yields false, not
// an error, which conflates "succeeded with an unexpected code" with
// "failed"; callers that care must inspect the server's behavior themselves.
// Non-success statuses return an HTTPError before this check.
func (c *RESTClient) Delete(ctx context.Context, endpoint string, id int) (bool, error) {
	status, _, err := c.do(ctx, http.MethodDelete, c.objectURL(endpoint, id), nil)
	if err != nil {
		return false, err
	}
	return status == http.StatusNoContent, nil
}

// BulkCreate posts a sequence of objects to the collection's bulk URL.
// Returns the parsed created objects in order.
func (c *RESTClient) BulkCreate(ctx context.Context, endpoint string, data any) (types.RecordSet, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %v", err)
	}

	_, body, err := c.do(ctx, http.MethodPost, c.bulkURL(endpoint), payload)
	if err != nil {
		return nil, err
	}

	var recs types.RecordSet
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return recs, nil
}

// BulkUpdate patches a sequence of objects through the collection's bulk URL.
// Every entry must carry an id for the server to resolve.
// Returns the parsed updated objects in order.
func (c *RESTClient) BulkUpdate(ctx context.Context, endpoint string, data any) (types.RecordSet, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %v", err)
	}

	_, body, err := c.do(ctx, http.MethodPatch, c.bulkURL(endpoint), payload)
	if err != nil {
		return nil, err
	}

	var recs types.RecordSet
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return recs, nil
}

// BulkDelete removes the objects with the given ids through the collection's
// bulk URL. The request body is a sequence of {"id": n} objects preserving
// input order. Returns true iff the server answered 204 No Content; like
// Delete, any other success status yields false.
func (c *RESTClient) BulkDelete(ctx context.Context, endpoint string, ids []int) (bool, error) {
	refs := make([]map[string]int, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, map[string]int{"id": id})
	}
	payload, err := json.Marshal(refs)
	if err != nil {
		return false, fmt.Errorf("failed to encode request body: %v", err)
	}

	status, _, err := c.do(ctx, http.MethodDelete, c.bulkURL(endpoint), payload)
	if err != nil {
		return false, err
	}
	return status == http.StatusNoContent, nil
}

// envelope is the paginated list wrapper returned by collection endpoints.
type envelope struct {
	Count    int                  `json:"count"`
	Next     types.NullableString `json:"next"`
	Previous types.NullableString `json:"previous"`
	Results  types.RecordSet      `json:"results"`
}

// ListAll walks a paginated collection, following the envelope's next links
// until exhausted, and returns all records in page order. Each page is one
// request; a failed page fails the whole walk.
func (c *RESTClient) ListAll(ctx context.Context, endpoint string, params map[string]string) (types.RecordSet, error) {
	pageURL := withParams(c.collectionURL(endpoint), params)

	var all types.RecordSet
	for {
		_, body, err := c.do(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, err
		}

		var page envelope
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("response is not a paginated envelope: %v", err)
		}
		all = append(all, page.Results...)

		if page.Next.IsNil() {
			break
		}
		pageURL = page.Next.Value
	}
	return all, nil
}

// Status fetches the server's status document: versions, plugin list, worker
// counts. Useful as a connectivity and compatibility probe.
func (c *RESTClient) Status(ctx context.Context) (types.Record, error) {
	_, body, err := c.do(ctx, http.MethodGet, c.collectionURL("status"), nil)
	if err != nil {
		return nil, err
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return rec, nil
}

// ProvisionToken exchanges a username and password for an API token via the
// token-provisioning endpoint. Works on a client constructed with an empty
// token; the returned record's key field holds the new token.
func (c *RESTClient) ProvisionToken(ctx context.Context, username, password string) (types.Record, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %v", err)
	}

	_, body, err := c.do(ctx, http.MethodPost, c.collectionURL("users/tokens/provision"), payload)
	if err != nil {
		return nil, err
	}

	var rec types.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode response: %v", err)
	}
	return rec, nil
}
