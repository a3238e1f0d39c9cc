package stoma

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"

	"github.com/gorilla/schema"
)

var schemaDecoder = schema.NewDecoder()

func init() {
	schemaDecoder.IgnoreUnknownKeys(true)
}

// Bind is the inverse of Send: it reconstructs a typed endpoint record from
// an incoming request, using the same declaration table that classification
// uses. pathVars carries the matched path-template variables keyed by wire
// name. The bound record is validated before it is returned.
//
// Bind exists for contract tests and server-side doubles: a declaration can
// be round-tripped through real HTTP and compared field by field.
func (e *Endpoint[P, R]) Bind(r *http.Request, pathVars map[string]string) (P, error) {
	var out P

	// Collect wire values keyed by Go field name; the schema decoder
	// handles the string-to-typed-field conversion.
	src := url.Values{}
	var missing []string
	var body *fieldDecl
	for i := range e.fields.fields {
		f := &e.fields.fields[i]
		switch f.param.kind {
		case KindQuery:
			if vs, ok := r.URL.Query()[f.wire]; ok {
				src[f.name] = vs
			}
		case KindHeader:
			if vs := r.Header.Values(f.wire); len(vs) > 0 {
				src[f.name] = vs
			}
		case KindPath:
			v, ok := pathVars[f.wire]
			if !ok {
				missing = append(missing, f.wire)
				continue
			}
			src[f.name] = []string{v}
		case KindBody:
			body = f
		}
	}
	if len(missing) > 0 {
		return out, &RoutingError{Path: e.route.path, Missing: missing}
	}

	if err := schemaDecoder.Decode(&out, src); err != nil {
		return out, bindError(err)
	}

	if body != nil && r.Body != nil {
		if err := e.bindBody(&out, body, r.Body); err != nil {
			return out, err
		}
	}

	if err := e.fields.applyDefaults(&out); err != nil {
		return out, err
	}
	if err := e.validateRecord(out); err != nil {
		return out, err
	}
	return out, nil
}

func (e *Endpoint[P, R]) bindBody(out any, f *fieldDecl, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("stoma: read request body: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	target := reflect.New(f.typ)
	if f.param.embed {
		// An embedded body arrives nested under the wire name; decode
		// through a synthetic wrapper so the codec does the unwrapping.
		wrapperType := reflect.StructOf([]reflect.StructField{{
			Name: "Value",
			Type: f.typ,
			Tag:  reflect.StructTag(fmt.Sprintf(`json:%q`, f.wire)),
		}})
		wrapper := reflect.New(wrapperType)
		if err := e.codec.Decode(data, wrapper.Interface()); err != nil {
			return &ParseError{Message: err.Error(), ResponseText: string(data)}
		}
		target.Elem().Set(wrapper.Elem().Field(0))
	} else {
		if err := e.codec.Decode(data, target.Interface()); err != nil {
			return &ParseError{Message: err.Error(), ResponseText: string(data)}
		}
	}

	rv := reflect.ValueOf(out).Elem()
	rv.FieldByIndex(f.index).Set(target.Elem())
	return nil
}

// bindError converts schema decode failures into a ValidationError with
// per-field violations.
func bindError(err error) error {
	var multi schema.MultiError
	if errors.As(err, &multi) {
		violations := make([]Violation, 0, len(multi))
		message := ""
		for field, ferr := range multi {
			violations = append(violations, Violation{Field: field, Constraint: "type"})
			if message != "" {
				message += "; "
			}
			message += field + ": " + ferr.Error()
		}
		return &ValidationError{Message: message, Violations: violations}
	}
	return &ValidationError{Message: "decode request: " + err.Error()}
}
