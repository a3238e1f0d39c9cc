package stoma

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Route is the immutable metadata bound to an endpoint: HTTP method, path
// template with {name} placeholders, and the per-route server list. It is
// created once when the endpoint is constructed; all fields are unexported,
// so mutation after construction is a compile-time error.
type Route struct {
	method  string
	path    string
	servers []string
}

// Method returns the HTTP method.
func (r Route) Method() string { return r.method }

// Path returns the path template.
func (r Route) Path() string { return r.path }

// Servers returns a copy of the route's base-URL list, nil when the route
// has none and the caller must supply a base URL out of band.
func (r Route) Servers() []string {
	if r.servers == nil {
		return nil
	}
	out := make([]string, len(r.servers))
	copy(out, r.servers)
	return out
}

// Router carries the defaults shared by a group of endpoints: base servers
// and the ambient collaborators (HTTP client, codec, validator, logger,
// interceptors). Endpoints are constructed from a router with
// [NewEndpoint] or the Get/Post/Put/Patch/Delete helpers.
type Router struct {
	servers      []string
	client       HTTPClient
	codec        Codec
	validate     *validator.Validate
	logger       *slog.Logger
	interceptors []Interceptor
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// NewRouter creates a Router.
func NewRouter(opts ...RouterOption) *Router {
	r := &Router{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithServers sets the router-wide default base URLs. An endpoint's own
// Servers option strictly overrides them.
func WithServers(servers ...string) RouterOption {
	return func(r *Router) {
		r.servers = servers
	}
}

// WithHTTPClient sets the transport used by endpoints built from this
// router. Defaults to a NetHTTPClient on http.DefaultClient.
func WithHTTPClient(client HTTPClient) RouterOption {
	return func(r *Router) {
		r.client = client
	}
}

// WithCodec sets the payload codec. Defaults to JSONCodec.
func WithCodec(codec Codec) RouterOption {
	return func(r *Router) {
		r.codec = codec
	}
}

// WithValidator sets a custom validator instance, e.g. one with custom
// tags registered.
func WithValidator(v *validator.Validate) RouterOption {
	return func(r *Router) {
		r.validate = v
	}
}

// WithLogger sets a custom logger. If not set, slog.Default() will be used.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithInterceptor adds an interceptor to every endpoint built from this
// router. Interceptors run in the order added (first added is outermost),
// before endpoint-level interceptors.
func WithInterceptor(i Interceptor) RouterOption {
	return func(r *Router) {
		r.interceptors = append(r.interceptors, i)
	}
}
