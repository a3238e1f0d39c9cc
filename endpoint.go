package stoma

import (
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/yosida95/uritemplate/v3"
)

var defaultValidate = validator.New()

// allowedMethods is the closed set of HTTP methods a route may declare.
var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"PATCH":  true,
	"DELETE": true,
}

// Endpoint binds an endpoint record type P and a result type R to an
// immutable Route. It owns the record type's compiled declaration table
// and is safe for concurrent use.
type Endpoint[P any, R any] struct {
	route        Route
	fields       *fieldTable
	template     *uritemplate.Template
	client       HTTPClient
	codec        Codec
	validate     *validator.Validate
	logger       *slog.Logger
	interceptors []Interceptor
}

// EndpointOption configures an endpoint under construction.
type EndpointOption func(*endpointConfig) error

type endpointConfig struct {
	servers      []string
	serversSet   bool
	overrides    map[string]Param
	interceptors []Interceptor
}

// Servers sets the endpoint's base URLs, strictly overriding the router's
// default servers.
func Servers(servers ...string) EndpointOption {
	return func(c *endpointConfig) error {
		c.servers = servers
		c.serversSet = true
		return nil
	}
}

// Field attaches a marker to the named record field, replacing any `param`
// tag it carries. It is the way to attach options a tag cannot express,
// such as a DefaultFactory. Wrap the marker constructor in [Must] to
// inline it, or construct the marker separately to keep the error return:
//
//	stoma.Field("Timestamp", stoma.Must(stoma.Query(stoma.DefaultFactory(now))))
func Field(name string, p Param) EndpointOption {
	return func(c *endpointConfig) error {
		if c.overrides == nil {
			c.overrides = make(map[string]Param)
		}
		c.overrides[name] = p
		return nil
	}
}

// Intercept adds an endpoint-level interceptor. Endpoint interceptors run
// after router interceptors, in the order added.
func Intercept(i Interceptor) EndpointOption {
	return func(c *endpointConfig) error {
		c.interceptors = append(c.interceptors, i)
		return nil
	}
}

// NewEndpoint constructs an endpoint bound to method and path, compiling
// the declaration table for P. It is the bare form of the Get/Post/Put/
// Patch/Delete helpers and returns a *ConfigurationError for malformed
// declarations.
func NewEndpoint[P any, R any](r *Router, method, path string, opts ...EndpointOption) (*Endpoint[P, R], error) {
	if !allowedMethods[method] {
		return nil, configErrorf("method %q is not one of GET, POST, PUT, PATCH, DELETE", method)
	}

	var cfg endpointConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	table, err := compileTable(reflect.TypeOf((*P)(nil)).Elem(), cfg.overrides)
	if err != nil {
		return nil, err
	}

	template, err := uritemplate.New(path)
	if err != nil {
		return nil, configErrorf("path template %q: %v", path, err)
	}

	if r == nil {
		r = &Router{}
	}
	servers := r.servers
	if cfg.serversSet {
		servers = cfg.servers
	}
	var owned []string
	if servers != nil {
		owned = make([]string, len(servers))
		copy(owned, servers)
	}

	ep := &Endpoint[P, R]{
		route:    Route{method: method, path: path, servers: owned},
		fields:   table,
		template: template,
		client:   r.client,
		codec:    r.codec,
		validate: r.validate,
		logger:   r.logger,
	}
	if ep.client == nil {
		ep.client = &NetHTTPClient{}
	}
	if ep.codec == nil {
		ep.codec = JSONCodec{}
	}
	if ep.validate == nil {
		ep.validate = defaultValidate
	}
	ep.interceptors = append(ep.interceptors, r.interceptors...)
	ep.interceptors = append(ep.interceptors, cfg.interceptors...)
	return ep, nil
}

// Get declares a GET endpoint. Like the other method helpers it panics on
// a malformed declaration, so it can be used in package-level variable
// declarations the way regexp.MustCompile is.
func Get[P any, R any](r *Router, path string, opts ...EndpointOption) *Endpoint[P, R] {
	return mustEndpoint[P, R](r, "GET", path, opts)
}

// Post declares a POST endpoint.
func Post[P any, R any](r *Router, path string, opts ...EndpointOption) *Endpoint[P, R] {
	return mustEndpoint[P, R](r, "POST", path, opts)
}

// Put declares a PUT endpoint.
func Put[P any, R any](r *Router, path string, opts ...EndpointOption) *Endpoint[P, R] {
	return mustEndpoint[P, R](r, "PUT", path, opts)
}

// Patch declares a PATCH endpoint.
func Patch[P any, R any](r *Router, path string, opts ...EndpointOption) *Endpoint[P, R] {
	return mustEndpoint[P, R](r, "PATCH", path, opts)
}

// Delete declares a DELETE endpoint.
func Delete[P any, R any](r *Router, path string, opts ...EndpointOption) *Endpoint[P, R] {
	return mustEndpoint[P, R](r, "DELETE", path, opts)
}

func mustEndpoint[P any, R any](r *Router, method, path string, opts []EndpointOption) *Endpoint[P, R] {
	ep, err := NewEndpoint[P, R](r, method, path, opts...)
	if err != nil {
		panic(err)
	}
	return ep
}

// Route returns the endpoint's immutable route metadata.
func (e *Endpoint[P, R]) Route() Route {
	return e.route
}
