package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stoma-dev/stoma"
)

type echoParams struct {
	ID string `param:"path,alias=id"`
}

type echoResult struct {
	ID string `json:"id"`
}

func TestCaptureClient(t *testing.T) {
	client := NewCaptureClient().RespondJSON(200, echoResult{ID: "42"})
	router := stoma.NewRouter(
		stoma.WithHTTPClient(client),
		stoma.WithServers("https://api.example.com"),
	)
	ep := stoma.Get[echoParams, echoResult](router, "/things/{id}")

	result, err := ep.Send(context.Background(), echoParams{ID: "42"})
	if err != nil {
		t.Fatal(err)
	}
	if result.ID != "42" {
		t.Errorf("result.ID = %q, want 42", result.ID)
	}

	if client.Calls() != 1 {
		t.Errorf("Calls() = %d, want 1", client.Calls())
	}
	last := client.Last()
	if last == nil || last.URL != "https://api.example.com/things/42" {
		t.Errorf("Last() = %+v", last)
	}
}

func TestCaptureClientDefaults(t *testing.T) {
	client := NewCaptureClient()
	resp, err := client.Send(context.Background(), &stoma.RawRequest{Method: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 200 || resp.Text != "{}" {
		t.Errorf("default response = %+v", resp)
	}
}

func TestCaptureClientFail(t *testing.T) {
	sentinel := errors.New("boom")
	client := NewCaptureClient().Fail(sentinel)
	_, err := client.Send(context.Background(), &stoma.RawRequest{Method: "GET"})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if client.Calls() != 1 {
		t.Errorf("failed request not captured")
	}
}

func TestCaptureClientRequests(t *testing.T) {
	client := NewCaptureClient().Respond(204, "")
	for i := 0; i < 3; i++ {
		if _, err := client.Send(context.Background(), &stoma.RawRequest{Method: "DELETE"}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(client.Requests()); got != 3 {
		t.Errorf("Requests() has %d entries, want 3", got)
	}
}
