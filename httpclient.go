package stoma

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// RawRequest is the transport-level request handed to an HTTPClient: the
// resolved URL (base server joined with the expanded path, no query string)
// plus the encoded query, header and body buckets.
type RawRequest struct {
	Method string
	URL    string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// RawResponse is what an HTTPClient returns: status, headers and the raw
// response text. Decoding into the declared result type happens in the
// send pipeline, not in the client.
type RawResponse struct {
	Status int
	Header http.Header
	Text   string
}

// HTTPClient is the transport capability the send pipeline delegates to.
// Implementations own connection handling, TLS, timeouts and cancellation;
// transport failures surface as opaque errors.
type HTTPClient interface {
	Send(ctx context.Context, req *RawRequest) (*RawResponse, error)
}

// NetHTTPClient is the default HTTPClient, backed by net/http.
type NetHTTPClient struct {
	// Client is the underlying http.Client. http.DefaultClient when nil.
	Client *http.Client
}

func (c *NetHTTPClient) Send(ctx context.Context, req *RawRequest) (*RawResponse, error) {
	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	u := req.URL
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("build request %s %s: %w", req.Method, u, err)
	}
	// Copy headers via the map to keep noconvert wire names verbatim;
	// Header.Set would canonicalize them.
	for key, values := range req.Header {
		httpReq.Header[key] = values
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return &RawResponse{
		Status: resp.StatusCode,
		Header: resp.Header,
		Text:   string(text),
	}, nil
}
