package stoma

import (
	"errors"
	"testing"
)

func TestMarkerKinds(t *testing.T) {
	tests := []struct {
		name string
		ctor func(...ParamOption) (Param, error)
		want Kind
	}{
		{"query", Query, KindQuery},
		{"path", Path, KindPath},
		{"header", Header, KindHeader},
		{"body", Body, KindBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.ctor()
			if err != nil {
				t.Fatalf("constructor returned error: %v", err)
			}
			if p.Kind() != tt.want {
				t.Errorf("Kind() = %q, want %q", p.Kind(), tt.want)
			}
			if !p.IncludeInSchema() {
				t.Error("IncludeInSchema() = false, want true by default")
			}
		})
	}
}

func TestLiteralDefaultRejected(t *testing.T) {
	ctors := map[string]func(...ParamOption) (Param, error){
		"query":  Query,
		"path":   Path,
		"header": Header,
		"body":   Body,
	}
	for name, ctor := range ctors {
		t.Run(name, func(t *testing.T) {
			_, err := ctor(Default(42))
			if err == nil {
				t.Fatal("expected error for literal default, got nil")
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
		})
	}
}

func TestDefaultFactoryAccepted(t *testing.T) {
	p, err := Query(DefaultFactory(func() any { return 20 }))
	if err != nil {
		t.Fatalf("Query(DefaultFactory) returned error: %v", err)
	}
	if p.defaultFactory == nil {
		t.Fatal("default factory not stored")
	}
	if got := p.defaultFactory(); got != 20 {
		t.Errorf("factory produced %v, want 20", got)
	}
}

func TestMust(t *testing.T) {
	p := Must(Query(Alias("q")))
	if p.Kind() != KindQuery || p.Alias() != "q" {
		t.Errorf("Must returned {%s %s}, want {query q}", p.Kind(), p.Alias())
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a rejected marker")
		}
	}()
	Must(Query(Default(1)))
}

func TestHeaderUnderscoreConversion(t *testing.T) {
	p, err := Header()
	if err != nil {
		t.Fatal(err)
	}
	if !p.ConvertUnderscores() {
		t.Error("ConvertUnderscores() = false, want true by default for headers")
	}

	p, err = Header(ConvertUnderscores(false))
	if err != nil {
		t.Fatal(err)
	}
	if p.ConvertUnderscores() {
		t.Error("ConvertUnderscores() = true after ConvertUnderscores(false)")
	}
}

func TestKindScopedOptions(t *testing.T) {
	tests := []struct {
		name    string
		ctor    func(...ParamOption) (Param, error)
		opt     ParamOption
		wantErr bool
	}{
		{"convert on query", Query, ConvertUnderscores(false), true},
		{"convert on body", Body, ConvertUnderscores(false), true},
		{"convert on header", Header, ConvertUnderscores(false), false},
		{"embed on query", Query, Embed(), true},
		{"embed on header", Header, Embed(), true},
		{"embed on body", Body, Embed(), false},
		{"media on query", Query, MediaType("text/plain"), true},
		{"media on path", Path, MediaType("text/plain"), true},
		{"media on body", Body, MediaType("text/plain"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.ctor(tt.opt)
			if tt.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr {
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Fatalf("expected *ConfigurationError, got %T", err)
				}
			}
		})
	}
}

func TestBodyDefaults(t *testing.T) {
	p, err := Body()
	if err != nil {
		t.Fatal(err)
	}
	if p.MediaType() != "application/json" {
		t.Errorf("MediaType() = %q, want %q", p.MediaType(), "application/json")
	}
	if p.Embed() {
		t.Error("Embed() = true, want false by default")
	}

	p, err = Body(MediaType("application/x-ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	if p.MediaType() != "application/x-ndjson" {
		t.Errorf("MediaType() = %q, want %q", p.MediaType(), "application/x-ndjson")
	}
}

func TestDocumentationOptions(t *testing.T) {
	p, err := Query(
		Alias("q"),
		Constraints("gte=1"),
		Examples(1, 2),
		Deprecated(),
		ExcludeFromSchema(),
		SchemaExtra(map[string]any{"format": "int32"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if p.Alias() != "q" {
		t.Errorf("Alias() = %q, want %q", p.Alias(), "q")
	}
	if p.Constraints() != "gte=1" {
		t.Errorf("Constraints() = %q, want %q", p.Constraints(), "gte=1")
	}
	if len(p.Examples()) != 2 {
		t.Errorf("Examples() has %d entries, want 2", len(p.Examples()))
	}
	if !p.Deprecated() {
		t.Error("Deprecated() = false, want true")
	}
	if p.IncludeInSchema() {
		t.Error("IncludeInSchema() = true after ExcludeFromSchema")
	}
	if p.SchemaExtra()["format"] != "int32" {
		t.Errorf("SchemaExtra()[format] = %v, want int32", p.SchemaExtra()["format"])
	}
}
