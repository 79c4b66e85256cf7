package testsupport

import (
	"path/filepath"
	"testing"

	"slate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Project.Root = filepath.Join(base, "project")
	cfgVal.Project.LocalRoot = filepath.Join(base, "local")
	cfgVal.User.Name = "tester"
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithoutLocalRoot disables the per-user local location.
func WithoutLocalRoot() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Project.LocalRoot = ""
	}
}

// WithDocumentFormat selects the pipeline document format, "yaml" or "json".
func WithDocumentFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Documents.Format = format
	}
}

// WithPadding overrides the version-number width.
func WithPadding(padding int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Versioning.Padding = padding
	}
}

// WithUser overrides the artist name.
func WithUser(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.User.Name = name
	}
}
