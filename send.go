package stoma

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/spf13/cast"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/yosida95/uritemplate/v3"
)

// SendOption configures a single Send call.
type SendOption func(*sendConfig)

type sendConfig struct {
	server string
}

// ToServer overrides server selection for one call, taking precedence over
// the route's server list.
func ToServer(base string) SendOption {
	return func(c *sendConfig) {
		c.server = base
	}
}

// Send issues the endpoint's request for one record: validate, classify,
// resolve the URL, delegate to the HTTPClient, decode the response into R.
// Each call is a single blocking request/response exchange; timeouts and
// cancellation belong to ctx and the HTTPClient.
func (e *Endpoint[P, R]) Send(ctx context.Context, params P, opts ...SendOption) (R, error) {
	var zero R
	var cfg sendConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := e.fields.applyDefaults(&params); err != nil {
		return zero, err
	}
	if err := e.validateRecord(params); err != nil {
		return zero, err
	}

	buckets, err := e.fields.classify(reflect.ValueOf(params))
	if err != nil {
		return zero, err
	}

	path, err := e.expandPath(buckets.Path)
	if err != nil {
		return zero, err
	}
	base, err := e.selectServer(cfg.server)
	if err != nil {
		return zero, err
	}

	query, err := encodeQuery(buckets.Query)
	if err != nil {
		return zero, err
	}
	header, err := encodeHeader(buckets.Header)
	if err != nil {
		return zero, err
	}
	body, mediaType, err := e.encodeBody(buckets)
	if err != nil {
		return zero, err
	}
	if mediaType != "" {
		header.Set("Content-Type", mediaType)
	}

	req := &RawRequest{
		Method: e.route.method,
		URL:    joinURL(base, path),
		Query:  query,
		Header: header,
		Body:   body,
	}

	logger := e.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.DebugContext(ctx, "sending request",
		slog.String("method", req.Method),
		slog.String("url", req.URL))

	invoke := chainInterceptors(e.interceptors, e.client.Send)
	resp, err := invoke(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("stoma: send %s %s: %w", req.Method, req.URL, err)
	}

	logger.DebugContext(ctx, "response received",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.Int("status", resp.Status))

	if resp.Status < 200 || resp.Status > 299 {
		return zero, &HTTPError{StatusCode: resp.Status, ResponseText: resp.Text}
	}

	var out R
	if resp.Text == "" {
		return out, nil
	}
	if err := e.codec.Decode([]byte(resp.Text), &out); err != nil {
		return zero, &ParseError{Message: err.Error(), ResponseText: resp.Text}
	}
	return out, nil
}

// validateRecord runs the validator over the record's `validate` tags, then
// checks each marker's forwarded constraint expression.
func (e *Endpoint[P, R]) validateRecord(params P) error {
	if err := e.validate.Struct(params); err != nil {
		return translateValidationError(err)
	}

	rv := reflect.ValueOf(params)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	var violations []Violation
	var messages []string
	for i := range e.fields.fields {
		f := &e.fields.fields[i]
		if f.param.constraints == "" {
			continue
		}
		value := rv.FieldByIndex(f.index).Interface()
		if err := e.validate.Var(value, f.param.constraints); err != nil {
			ve, ok := translateValidationError(err).(*ValidationError)
			if !ok {
				return err
			}
			for _, v := range ve.Violations {
				v.Field = f.name
				violations = append(violations, v)
				messages = append(messages, f.name+": failed "+v.Constraint)
			}
		}
	}
	if len(violations) > 0 {
		return &ValidationError{
			Message:    strings.Join(messages, "; "),
			Violations: violations,
		}
	}
	return nil
}

// expandPath substitutes the path bucket into the route's template. The
// placeholder set and the path bucket's wire names must match exactly in
// both directions.
func (e *Endpoint[P, R]) expandPath(pathBucket *orderedmap.OrderedMap[string, any]) (string, error) {
	names := e.template.Varnames()
	placeholders := make(map[string]bool, len(names))
	for _, name := range names {
		placeholders[name] = true
	}

	values := uritemplate.Values{}
	var unmatched []string
	for pair := pathBucket.Oldest(); pair != nil; pair = pair.Next() {
		if !placeholders[pair.Key] {
			unmatched = append(unmatched, pair.Key)
			continue
		}
		s, err := stringifyValue(pair.Value)
		if err != nil {
			return "", configErrorf("path value %q: %v", pair.Key, err)
		}
		values[pair.Key] = uritemplate.String(s)
	}

	var missing []string
	for _, name := range names {
		if _, ok := pathBucket.Get(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 || len(unmatched) > 0 {
		return "", &RoutingError{Path: e.route.path, Missing: missing, Unmatched: unmatched}
	}

	return e.template.Expand(values)
}

// selectServer picks the base URL: the explicit per-call server, else the
// first entry of the route's server list.
func (e *Endpoint[P, R]) selectServer(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if len(e.route.servers) > 0 {
		return e.route.servers[0], nil
	}
	return "", configErrorf("no server available for %s %s: declare route servers or pass ToServer", e.route.method, e.route.path)
}

func (e *Endpoint[P, R]) encodeBody(buckets *Params) ([]byte, string, error) {
	if buckets.body == nil {
		return nil, "", nil
	}
	value := buckets.Body
	if buckets.body.param.embed {
		value = map[string]any{buckets.body.wire: value}
	}
	data, err := e.codec.Encode(value)
	if err != nil {
		return nil, "", fmt.Errorf("stoma: encode body field %q: %w", buckets.body.name, err)
	}
	return data, buckets.body.param.mediaType, nil
}

// encodeQuery renders the query bucket as url.Values. Nil values are
// skipped; slice values contribute one entry per element.
func encodeQuery(bucket *orderedmap.OrderedMap[string, any]) (url.Values, error) {
	out := url.Values{}
	for pair := bucket.Oldest(); pair != nil; pair = pair.Next() {
		value, ok := derefValue(pair.Value)
		if !ok {
			continue
		}
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				s, err := stringifyValue(rv.Index(i).Interface())
				if err != nil {
					return nil, configErrorf("query value %q: %v", pair.Key, err)
				}
				out.Add(pair.Key, s)
			}
			continue
		}
		s, err := stringifyValue(value)
		if err != nil {
			return nil, configErrorf("query value %q: %v", pair.Key, err)
		}
		out.Add(pair.Key, s)
	}
	return out, nil
}

// encodeHeader renders the header bucket. Wire names are written into the
// header map directly: Header.Set would canonicalize keys, and a noconvert
// or alias wire name must survive verbatim.
func encodeHeader(bucket *orderedmap.OrderedMap[string, any]) (http.Header, error) {
	out := http.Header{}
	for pair := bucket.Oldest(); pair != nil; pair = pair.Next() {
		value, ok := derefValue(pair.Value)
		if !ok {
			continue
		}
		s, err := stringifyValue(value)
		if err != nil {
			return nil, configErrorf("header value %q: %v", pair.Key, err)
		}
		out[pair.Key] = append(out[pair.Key], s)
	}
	return out, nil
}

// derefValue unwraps pointers and reports whether a usable value remains.
func derefValue(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}

func stringifyValue(v any) (string, error) {
	v, ok := derefValue(v)
	if !ok {
		return "", fmt.Errorf("cannot render nil value")
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return "", fmt.Errorf("cannot render value of type %T as string", v)
	}
	return s, nil
}

func joinURL(base, path string) string {
	base = strings.TrimSuffix(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
