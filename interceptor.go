package stoma

import "context"

// Invoker sends a prepared request over the wire. It is passed to
// [Interceptor] functions to invoke the next interceptor or the HTTPClient.
type Invoker func(ctx context.Context, req *RawRequest) (*RawResponse, error)

// Interceptor is a hook that wraps request execution.
//
// The next parameter is the next invoker in the chain. Interceptors can:
//   - Inspect/modify the request before calling next
//   - Inspect/modify the response after calling next
//   - Short-circuit by returning an error without calling next
//   - Add values to context using context.WithValue
type Interceptor func(ctx context.Context, req *RawRequest, next Invoker) (*RawResponse, error)

// chainInterceptors combines multiple interceptors around a final invoker.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor, final Invoker) Invoker {
	invoke := final
	for i := len(interceptors) - 1; i >= 0; i-- {
		current, next := interceptors[i], invoke
		invoke = func(ctx context.Context, req *RawRequest) (*RawResponse, error) {
			return current(ctx, req, next)
		}
	}
	return invoke
}
