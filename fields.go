package stoma

import (
	"net/textproto"
	"reflect"
	"strings"

	"github.com/stoewer/go-strcase"
)

// fieldDecl is one row of an endpoint type's declaration table: a declared
// struct field together with its marker and resolved wire name.
type fieldDecl struct {
	name  string // Go field name
	index []int
	typ   reflect.Type
	param Param
	wire  string
}

// fieldTable is the per-endpoint-type declaration table. It is compiled
// once when the endpoint is constructed and read-only afterwards.
type fieldTable struct {
	fields []fieldDecl
}

// compileTable builds the declaration table for an endpoint record type.
// Markers come from `param` struct tags; overrides replace or add markers
// per field name. Fields without a marker are excluded from the table and
// therefore from every bucket.
func compileTable(t reflect.Type, overrides map[string]Param) (*fieldTable, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, configErrorf("endpoint record type must be a struct, got %s", t.Kind())
	}

	table := &fieldTable{}
	seen := make(map[string]bool, len(overrides))
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" {
			continue // unexported
		}

		var p Param
		if override, ok := overrides[sf.Name]; ok {
			p = override
			seen[sf.Name] = true
		} else {
			tag, ok := sf.Tag.Lookup("param")
			if !ok || tag == "-" {
				continue
			}
			var err error
			p, err = parseParamTag(tag)
			if err != nil {
				return nil, configErrorf("field %s.%s: %v", t.Name(), sf.Name, err)
			}
		}
		if p.kind == "" {
			return nil, configErrorf("field %s.%s: marker has no parameter kind", t.Name(), sf.Name)
		}

		table.fields = append(table.fields, fieldDecl{
			name:  sf.Name,
			index: sf.Index,
			typ:   sf.Type,
			param: p,
			wire:  resolveWireName(sf.Name, p),
		})
	}

	for name := range overrides {
		if !seen[name] {
			if _, ok := t.FieldByName(name); !ok {
				return nil, configErrorf("field override %q: no such field on %s", name, t.Name())
			}
			return nil, configErrorf("field override %q: field on %s is unexported", name, t.Name())
		}
	}
	return table, nil
}

// parseParamTag parses a `param` struct tag into a marker. The first
// directive is the kind; the rest configure it, mirroring the ParamOption
// surface where a tag can express the option.
func parseParamTag(tag string) (Param, error) {
	directives := strings.Split(tag, ",")
	kind := Kind(strings.TrimSpace(directives[0]))

	var opts []ParamOption
	for _, directive := range directives[1:] {
		directive = strings.TrimSpace(directive)
		key, value, _ := strings.Cut(directive, "=")
		switch key {
		case "alias":
			opts = append(opts, Alias(value))
		case "constraints":
			// the tag itself splits on commas, so multi-term expressions
			// use ';' and are rewritten to the validator's ',' form here
			opts = append(opts, Constraints(strings.ReplaceAll(value, ";", ",")))
		case "noconvert":
			opts = append(opts, ConvertUnderscores(false))
		case "embed":
			opts = append(opts, Embed())
		case "media":
			opts = append(opts, MediaType(value))
		case "deprecated":
			opts = append(opts, Deprecated())
		case "default":
			// Same policy as the Default option: the enclosing field owns
			// its default, not the marker.
			opts = append(opts, Default(value))
		case "":
			// tolerate a trailing comma
		default:
			return Param{}, configErrorf("unknown param tag directive %q", directive)
		}
	}

	switch kind {
	case KindQuery:
		return Query(opts...)
	case KindPath:
		return Path(opts...)
	case KindHeader:
		return Header(opts...)
	case KindBody:
		return Body(opts...)
	default:
		return Param{}, configErrorf("unknown parameter kind %q", string(kind))
	}
}

// resolveWireName resolves the key used on the HTTP wire for a field:
// the alias verbatim if set; else, for headers with conversion enabled,
// the field name in conventional header form; else the field name verbatim.
func resolveWireName(name string, p Param) string {
	if p.alias != "" {
		return p.alias
	}
	if p.kind == KindHeader && p.convertUnderscores {
		return textproto.CanonicalMIMEHeaderKey(strcase.KebabCase(name))
	}
	return name
}
