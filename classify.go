package stoma

import (
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Params holds the four request buckets produced by classifying an endpoint
// record. Bucket iteration follows field declaration order. Body is nil
// when no body-marked field is declared; when several are, the last one in
// declaration order wins.
type Params struct {
	Query  *orderedmap.OrderedMap[string, any]
	Path   *orderedmap.OrderedMap[string, any]
	Header *orderedmap.OrderedMap[string, any]
	Body   any

	// body is the declaration row of the winning body field; the send
	// pipeline reads embed and media type from it.
	body *fieldDecl
}

// Classify partitions the record's field values into the four request
// buckets, resolving each field's wire name. Fields without a marker are
// excluded. The operation is pure: no validation, serialization or network
// activity happens here, and classifying the same record twice yields
// identical buckets.
func (e *Endpoint[P, R]) Classify(params P) (*Params, error) {
	if err := e.fields.applyDefaults(&params); err != nil {
		return nil, err
	}
	return e.fields.classify(reflect.ValueOf(params))
}

func (t *fieldTable) classify(rv reflect.Value) (*Params, error) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, configErrorf("cannot classify a nil %s record", rv.Type())
		}
		rv = rv.Elem()
	}

	out := &Params{
		Query:  orderedmap.New[string, any](),
		Path:   orderedmap.New[string, any](),
		Header: orderedmap.New[string, any](),
	}
	for i := range t.fields {
		f := &t.fields[i]
		value := rv.FieldByIndex(f.index).Interface()
		switch f.param.kind {
		case KindQuery:
			out.Query.Set(f.wire, value)
		case KindPath:
			out.Path.Set(f.wire, value)
		case KindHeader:
			out.Header.Set(f.wire, value)
		case KindBody:
			// last body-marked field wins
			out.Body = value
			out.body = f
		default:
			return nil, configErrorf("field %q: marker has no parameter kind", f.name)
		}
	}
	return out, nil
}

// applyDefaults runs each marker's DefaultFactory for fields still holding
// their zero value. params is a pointer to the caller's local record copy;
// pointer-typed records are detached onto a clone first, so a struct the
// caller still holds is never written.
func (t *fieldTable) applyDefaults(params any) error {
	rv, err := detachRecord(reflect.ValueOf(params).Elem())
	if err != nil {
		return err
	}
	for i := range t.fields {
		f := &t.fields[i]
		if f.param.defaultFactory == nil {
			continue
		}
		fv := rv.FieldByIndex(f.index)
		if !fv.IsZero() {
			continue
		}
		produced := reflect.ValueOf(f.param.defaultFactory())
		if !produced.IsValid() {
			continue // factory returned nil, field stays zero
		}
		switch {
		case produced.Type().AssignableTo(f.typ):
			fv.Set(produced)
		case produced.Type().ConvertibleTo(f.typ):
			fv.Set(produced.Convert(f.typ))
		default:
			return configErrorf("field %q: default factory produced %s, want %s", f.name, produced.Type(), f.typ)
		}
	}
	return nil
}

// detachRecord unwraps the addressable record value, replacing each pointer
// hop with a clone of its target so writes stay in the local copy. A nil
// pointer has no fields to default or classify.
func detachRecord(rv reflect.Value) (reflect.Value, error) {
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, configErrorf("cannot classify a nil %s record", rv.Type())
		}
		clone := reflect.New(rv.Type().Elem())
		clone.Elem().Set(rv.Elem())
		rv.Set(clone)
		rv = clone.Elem()
	}
	return rv, nil
}
