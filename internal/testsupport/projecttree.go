package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"slate/internal/config"
	"slate/internal/confstore"
	"slate/internal/project"
)

// NewStore returns a document store with test-friendly lock tuning.
func NewStore(t testing.TB) *confstore.Store {
	t.Helper()
	return confstore.New(confstore.Options{})
}

// MustLoadProject builds a Project over a fresh document store.
func MustLoadProject(t testing.TB, cfg *config.Config) *project.Project {
	t.Helper()
	p, err := project.Load(context.Background(), cfg, NewStore(t), nil)
	if err != nil {
		t.Fatalf("project.Load: %v", err)
	}
	return p
}

// SeedVersion creates a version folder for the context under root, writes
// the named files into it plus a sidecar document, and returns the folder
// path. File names ending in a separator are created as directories.
func SeedVersion(t testing.TB, p *project.Project, root string, c project.Context, files ...string) string {
	t.Helper()

	tokens, err := p.Tokens(c, root)
	if err != nil {
		t.Fatalf("tokens: %v", err)
	}
	dir, err := p.Resolver().Resolve("productVersions", tokens)
	if err != nil {
		t.Fatalf("resolve version folder: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for _, name := range files {
		WriteFile(t, filepath.Join(dir, name), 16)
	}

	doc := map[string]any{"version": c.Version, "files": files}
	if c.Comment != "" {
		doc["comment"] = c.Comment
	}
	if c.User != "" {
		doc["user"] = c.User
	}
	if err := confstore.WriteDocument(filepath.Join(dir, p.SidecarName()), doc); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}
	return dir
}
