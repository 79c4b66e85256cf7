package pathtmpl_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"slate/internal/pathtmpl"
	"slate/internal/services"
)

func testResolver() *pathtmpl.Resolver {
	table := pathtmpl.Table{
		"products":        "{entity_path}/Export/{product}",
		"productVersions": "{product_path}/{version}",
		"productFiles":    "{productversion_path}/{asset}_{product}_{version}{extension}",
	}
	refs := map[string]string{
		"product_path":        "products",
		"productversion_path": "productVersions",
	}
	return pathtmpl.New(table, refs)
}

func TestFlattenExpandsReferences(t *testing.T) {
	r := testResolver()
	flat, err := r.Flatten("productFiles")
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	want := "{entity_path}/Export/{product}/{version}/{asset}_{product}_{version}{extension}"
	if flat != want {
		t.Fatalf("got %q, want %q", flat, want)
	}
}

func TestFlattenUnknownTemplate(t *testing.T) {
	r := testResolver()
	_, err := r.Flatten("renders")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}
}

func TestFlattenDetectsCycles(t *testing.T) {
	r := pathtmpl.New(
		pathtmpl.Table{"a": "{b_path}/x", "b": "{a_path}/y"},
		map[string]string{"a_path": "a", "b_path": "b"},
	)
	if _, err := r.Flatten("a"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("got %v, want configuration error", err)
	}
}

func TestResolveSubstitutesTokens(t *testing.T) {
	r := testResolver()
	got, err := r.Resolve("productFiles", map[string]string{
		"entity_path": "/proj/Assets/Characters/Hero",
		"product":     "model",
		"version":     "v0003",
		"asset":       "Hero",
		"extension":   ".abc",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.FromSlash("/proj/Assets/Characters/Hero/Export/model/v0003/Hero_model_v0003.abc")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestResolveMissingTokensBecomeEmpty(t *testing.T) {
	got := pathtmpl.ResolveString("{root}/Export/{product}/{version}", map[string]string{
		"root":    "/proj",
		"product": "model",
	})
	want := filepath.FromSlash("/proj/Export/model")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestRoundTrip(t *testing.T) {
	r := testResolver()
	contexts := []map[string]string{
		{
			"entity_path": "/proj/Assets/Characters/Hero",
			"product":     "model",
			"version":     "v0003",
			"asset":       "Hero",
			"extension":   ".abc",
		},
		{
			"entity_path": "/proj/Shots/sq010-sh020",
			"product":     "_ShotCam",
			"version":     "master",
			"asset":       "sq010-sh020",
			"extension":   ".fbx",
		},
	}
	for _, ctx := range contexts {
		path, err := r.Resolve("productFiles", ctx)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		fields, ok, err := r.Extract(path, "productFiles")
		if err != nil || !ok {
			t.Fatalf("extract %q: ok=%v err=%v", path, ok, err)
		}
		if !reflect.DeepEqual(fields, ctx) {
			t.Fatalf("round trip mismatch\npath:   %s\ngot:    %v\nwanted: %v", path, fields, ctx)
		}
	}
}

func TestExtractRejectsLiteralMismatch(t *testing.T) {
	_, ok := pathtmpl.ExtractString(
		"/proj/Hero/Renders/model/v0001",
		"{entity_path}/Export/{product}/{version}",
	)
	if ok {
		t.Fatal("expected mismatch on fixed segment")
	}
}

func TestExtractRepeatedTokenMustAgree(t *testing.T) {
	template := "{product}/{product}_{version}"
	if _, ok := pathtmpl.ExtractString("model/model_v0001", template); !ok {
		t.Fatal("agreeing repeated token rejected")
	}
	if fields, ok := pathtmpl.ExtractString("model/rig_v0001", template); ok {
		t.Fatalf("conflicting repeated token accepted: %v", fields)
	}
}

func TestExtractOptionalExtension(t *testing.T) {
	fields, ok := pathtmpl.ExtractString("cache/Hero_model_v0002", "cache/{asset}_{product}_{version}{extension}")
	if !ok {
		t.Fatal("extensionless path rejected")
	}
	if fields["version"] != "v0002" || fields["extension"] != "" {
		t.Fatalf("got %v", fields)
	}
}

func TestMatchEnumeratesOnDisk(t *testing.T) {
	dir := t.TempDir()
	for _, v := range []string{"v0001", "v0002", "master"} {
		if err := os.MkdirAll(filepath.Join(dir, "Export", "model", v), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	hits := pathtmpl.MatchString("{entity_path}/Export/{product}/{version}", map[string]string{
		"entity_path": dir,
		"product":     "model",
	})
	if len(hits) != 3 {
		t.Fatalf("got %d hits, want 3", len(hits))
	}
	seen := map[string]bool{}
	for _, hit := range hits {
		seen[hit.Fields["version"]] = true
		if hit.Fields["product"] != "model" {
			t.Fatalf("product field: %v", hit.Fields)
		}
	}
	for _, v := range []string{"v0001", "v0002", "master"} {
		if !seen[v] {
			t.Fatalf("missing version %s in %v", v, hits)
		}
	}
}

func TestMatchDropsContradictions(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"model", "rig"} {
		if err := os.MkdirAll(filepath.Join(dir, "Export", p, "v0001"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	hits := pathtmpl.MatchString("{entity_path}/Export/{product}/{version}", map[string]string{
		"entity_path": dir,
		"product":     "model",
	})
	if len(hits) != 1 || hits[0].Fields["product"] != "model" {
		t.Fatalf("got %v", hits)
	}
}

func TestTokens(t *testing.T) {
	got := pathtmpl.Tokens("{a}/{b}_{a}{extension}")
	want := []string{"a", "b", "extension"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
