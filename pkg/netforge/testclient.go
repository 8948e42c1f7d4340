package netforge

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
)

// TestClient is an in-process implementation of Client for tests. It drives
// the full RESTClient request path, but serves every request directly to an
// http.Handler through httptest.NewRecorder instead of the network.
type TestClient struct {
	*RESTClient
}

// recorderTransport satisfies http.RoundTripper by replaying requests against
// a handler and capturing the response with a recorder.
type recorderTransport struct {
	handler http.Handler
}

func (t *recorderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Hand the handler the request the way a real server would see it:
	// relative URL, populated RequestURI and Host.
	inbound := req.Clone(req.Context())
	inbound.RequestURI = req.URL.RequestURI()
	inbound.Host = req.URL.Host
	inbound.URL = &url.URL{Path: req.URL.Path, RawQuery: req.URL.RawQuery}

	rr := httptest.NewRecorder()
	t.handler.ServeHTTP(rr, inbound)
	return rr.Result(), nil
}

// NewTestClient creates a test client that serves requests to the given
// handler under the fixed base URL http://testserver. The handler sees the
// same URLs, headers, and bodies a real server would.
func NewTestClient(handler http.Handler, token string, opts ...Option) (*TestClient, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler is required")
	}

	opts = append(opts, WithHTTPClient(&http.Client{
		Transport: &recorderTransport{handler: handler},
	}))
	rc, err := New("http://testserver", token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create test client: %v", err)
	}

	return &TestClient{RESTClient: rc}, nil
}
