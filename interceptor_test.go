package stoma

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestChainInterceptorsOrder(t *testing.T) {
	var order []string
	tag := func(name string) Interceptor {
		return func(ctx context.Context, req *RawRequest, next Invoker) (*RawResponse, error) {
			order = append(order, name+" before")
			resp, err := next(ctx, req)
			order = append(order, name+" after")
			return resp, err
		}
	}
	final := func(ctx context.Context, req *RawRequest) (*RawResponse, error) {
		order = append(order, "final")
		return &RawResponse{Status: 200}, nil
	}

	invoke := chainInterceptors([]Interceptor{tag("outer"), tag("inner")}, final)
	resp, err := invoke(context.Background(), &RawRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 200 {
		t.Errorf("status = %d", resp.Status)
	}

	want := []string{"outer before", "inner before", "final", "inner after", "outer after"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestChainInterceptorsShortCircuit(t *testing.T) {
	sentinel := errors.New("denied")
	deny := func(ctx context.Context, req *RawRequest, next Invoker) (*RawResponse, error) {
		return nil, sentinel
	}
	finalCalled := false
	final := func(ctx context.Context, req *RawRequest) (*RawResponse, error) {
		finalCalled = true
		return &RawResponse{Status: 200}, nil
	}

	invoke := chainInterceptors([]Interceptor{deny}, final)
	_, err := invoke(context.Background(), &RawRequest{})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want sentinel", err)
	}
	if finalCalled {
		t.Error("final invoker ran after a short-circuit")
	}
}

func TestChainInterceptorsEmpty(t *testing.T) {
	final := func(ctx context.Context, req *RawRequest) (*RawResponse, error) {
		return &RawResponse{Status: 204}, nil
	}
	invoke := chainInterceptors(nil, final)
	resp, err := invoke(context.Background(), &RawRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 204 {
		t.Errorf("status = %d, want the final invoker untouched", resp.Status)
	}
}
