// Package testutil provides testing helpers for stoma endpoints.
// This package is designed to be import-cycle safe and can be used from any package.
package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/stoma-dev/stoma"
)

// CaptureClient is an HTTPClient double that records every request it is
// handed and answers with a canned response. Safe for concurrent use.
type CaptureClient struct {
	mu       sync.Mutex
	requests []*stoma.RawRequest
	response *stoma.RawResponse
	err      error
}

// NewCaptureClient creates a capture client answering 200 with an empty
// JSON object until configured otherwise.
func NewCaptureClient() *CaptureClient {
	return &CaptureClient{
		response: &stoma.RawResponse{
			Status: http.StatusOK,
			Header: http.Header{"Content-Type": []string{"application/json"}},
			Text:   "{}",
		},
	}
}

// Respond sets the canned response.
func (c *CaptureClient) Respond(status int, text string) *CaptureClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = &stoma.RawResponse{Status: status, Header: http.Header{}, Text: text}
	c.err = nil
	return c
}

// RespondJSON sets the canned response to the JSON encoding of v.
func (c *CaptureClient) RespondJSON(status int, v any) *CaptureClient {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.response = &stoma.RawResponse{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Text:   string(data),
	}
	c.err = nil
	return c
}

// Fail makes every subsequent Send return err as a transport failure.
func (c *CaptureClient) Fail(err error) *CaptureClient {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// Send implements stoma.HTTPClient.
func (c *CaptureClient) Send(ctx context.Context, req *stoma.RawRequest) (*stoma.RawResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return c.response, nil
}

// Last returns the most recently captured request, or nil when none was sent.
func (c *CaptureClient) Last() *stoma.RawRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return nil
	}
	return c.requests[len(c.requests)-1]
}

// Requests returns a copy of all captured requests in order.
func (c *CaptureClient) Requests() []*stoma.RawRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*stoma.RawRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Calls returns how many requests the client has seen.
func (c *CaptureClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}
