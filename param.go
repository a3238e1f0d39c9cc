// Package stoma is a declarative HTTP endpoint definition toolkit.
//
// An endpoint is declared as a plain struct whose fields carry `param`
// struct tags naming where each value travels on the wire (query, path,
// header or body), and is bound to an HTTP method, path template and server
// list through an endpoint constructor. At call time the record's fields
// are classified into the four request buckets, the request is issued
// through an HTTPClient, and the JSON response is decoded into the
// endpoint's declared result type.
package stoma

// Kind identifies where a parameter travels on the wire.
type Kind string

const (
	KindQuery  Kind = "query"
	KindPath   Kind = "path"
	KindHeader Kind = "header"
	KindBody   Kind = "body"
)

// defaultMediaType is the body media type used when none is declared.
const defaultMediaType = "application/json"

// Param is the marker attached to one declared field of an endpoint record.
// It says where the field's value comes from on the wire; required-ness and
// static defaults are expressed by the field itself, never by the marker.
//
// A Param is immutable once constructed. The zero Param carries no kind and
// marks nothing.
type Param struct {
	kind  Kind
	alias string

	// literalDefault records a Default option so constructors can reject
	// it: no marker kind accepts a literal default.
	literalDefault bool

	defaultFactory func() any

	// constraints is a validator/v10 expression stored verbatim and
	// forwarded to the validator. The classifier never interprets it.
	constraints string

	// Documentation-only attributes. They never affect classification or
	// request construction.
	examples        []any
	deprecated      bool
	includeInSchema bool
	schemaExtra     map[string]any

	convertUnderscores bool   // header only
	embed              bool   // body only
	mediaType          string // body only
}

// ParamOption configures a Param under construction.
type ParamOption func(*Param) error

// Query constructs a query-parameter marker.
func Query(opts ...ParamOption) (Param, error) {
	return newParam(KindQuery, opts)
}

// Path constructs a path-parameter marker. Path parameters are always
// required at the type level; like every other kind they accept no literal
// default, only a DefaultFactory.
func Path(opts ...ParamOption) (Param, error) {
	return newParam(KindPath, opts)
}

// Header constructs a header-parameter marker. Underscore conversion of the
// field name is enabled unless disabled with ConvertUnderscores(false) or
// overridden outright by an Alias.
func Header(opts ...ParamOption) (Param, error) {
	p := Param{kind: KindHeader, includeInSchema: true, convertUnderscores: true}
	return applyOptions(p, opts)
}

// Body constructs a body-parameter marker. The media type defaults to
// application/json.
func Body(opts ...ParamOption) (Param, error) {
	p := Param{kind: KindBody, includeInSchema: true, mediaType: defaultMediaType}
	return applyOptions(p, opts)
}

func newParam(kind Kind, opts []ParamOption) (Param, error) {
	return applyOptions(Param{kind: kind, includeInSchema: true}, opts)
}

func applyOptions(p Param, opts []ParamOption) (Param, error) {
	for _, opt := range opts {
		if err := opt(&p); err != nil {
			return Param{}, err
		}
	}
	if p.literalDefault {
		return Param{}, configErrorf("%s marker: literal defaults are not accepted; set a default on the field itself or use DefaultFactory", p.kind)
	}
	return p, nil
}

// Must panics if a marker constructor returned an error. It allows a
// constructor call to be inlined where a single Param is expected, in the
// manner of template.Must:
//
//	stoma.Field("Limit", stoma.Must(stoma.Query(stoma.Alias("limit"))))
func Must(p Param, err error) Param {
	if err != nil {
		panic(err)
	}
	return p
}

// Alias overrides the wire name. An alias is used verbatim and beats every
// other wire-name rule.
func Alias(name string) ParamOption {
	return func(p *Param) error {
		p.alias = name
		return nil
	}
}

// Default declares a literal default value. Every marker kind rejects it:
// the marker says where a value travels on the wire, the field says what to
// do when it is absent. It exists so the misuse fails loudly rather than
// silently compiling into nothing.
func Default(v any) ParamOption {
	return func(p *Param) error {
		_ = v
		p.literalDefault = true
		return nil
	}
}

// DefaultFactory declares a programmatic default. The factory runs when the
// field holds its zero value at classification time.
func DefaultFactory(fn func() any) ParamOption {
	return func(p *Param) error {
		p.defaultFactory = fn
		return nil
	}
}

// Constraints attaches a validator/v10 expression (e.g. "gte=1,lte=100").
// The expression is stored verbatim and checked by the validator when the
// record is validated; the classifier ignores it. In a `param` tag, terms
// are separated with ';' instead (`constraints=gte=1;lte=100`) because the
// tag form splits on commas.
func Constraints(expr string) ParamOption {
	return func(p *Param) error {
		p.constraints = expr
		return nil
	}
}

// Examples attaches documentation example values.
func Examples(vs ...any) ParamOption {
	return func(p *Param) error {
		p.examples = vs
		return nil
	}
}

// Deprecated marks the parameter as deprecated in documentation.
func Deprecated() ParamOption {
	return func(p *Param) error {
		p.deprecated = true
		return nil
	}
}

// ExcludeFromSchema hides the parameter from generated documentation.
func ExcludeFromSchema() ParamOption {
	return func(p *Param) error {
		p.includeInSchema = false
		return nil
	}
}

// SchemaExtra attaches extra documentation schema attributes.
func SchemaExtra(extra map[string]any) ParamOption {
	return func(p *Param) error {
		p.schemaExtra = extra
		return nil
	}
}

// ConvertUnderscores controls whether a header field's name is converted to
// conventional header form (e.g. UserAgent or User_Agent becomes
// User-Agent). Only header markers accept it.
func ConvertUnderscores(enabled bool) ParamOption {
	return func(p *Param) error {
		if p.kind != KindHeader {
			return configErrorf("%s marker: ConvertUnderscores applies to header markers only", p.kind)
		}
		p.convertUnderscores = enabled
		return nil
	}
}

// Embed nests the body value under the field's wire name in the outgoing
// JSON object instead of sending it as the top level. Only body markers
// accept it.
func Embed() ParamOption {
	return func(p *Param) error {
		if p.kind != KindBody {
			return configErrorf("%s marker: Embed applies to body markers only", p.kind)
		}
		p.embed = true
		return nil
	}
}

// MediaType sets the body's media type. Only body markers accept it.
func MediaType(mediaType string) ParamOption {
	return func(p *Param) error {
		if p.kind != KindBody {
			return configErrorf("%s marker: MediaType applies to body markers only", p.kind)
		}
		p.mediaType = mediaType
		return nil
	}
}

// Kind returns the marker's kind. It is the discriminant the classifier
// dispatches on and is fixed at construction.
func (p Param) Kind() Kind { return p.kind }

// Alias returns the wire-name override, or "" when none is set.
func (p Param) Alias() string { return p.alias }

// Constraints returns the stored validator expression.
func (p Param) Constraints() string { return p.constraints }

// Examples returns the documentation example values.
func (p Param) Examples() []any { return p.examples }

// Deprecated reports whether the parameter is deprecated.
func (p Param) Deprecated() bool { return p.deprecated }

// IncludeInSchema reports whether the parameter appears in documentation.
func (p Param) IncludeInSchema() bool { return p.includeInSchema }

// SchemaExtra returns the extra documentation schema attributes.
func (p Param) SchemaExtra() map[string]any { return p.schemaExtra }

// ConvertUnderscores reports whether header-name conversion is enabled.
func (p Param) ConvertUnderscores() bool { return p.convertUnderscores }

// Embed reports whether the body value is nested under its wire name.
func (p Param) Embed() bool { return p.embed }

// MediaType returns the body media type.
func (p Param) MediaType() string { return p.mediaType }
