package project

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"slate/internal/config"
	"slate/internal/confstore"
	"slate/internal/logging"
	"slate/internal/pathtmpl"
	"slate/internal/services"
)

// Project is the explicit dependency handed to every component: storage
// roots, template resolver, version conventions and the current user.
type Project struct {
	Name          string
	Root          string
	LocalRoot     string
	User          string
	Padding       int
	Lowest        int
	DocExt        string
	ShotCamFormat string

	// PipelineDoc is the project's own configuration document; the
	// location registry and structure overrides live inside it.
	PipelineDoc string

	store    *confstore.Store
	resolver *pathtmpl.Resolver
	logger   *slog.Logger
}

// Load builds a Project from the tool configuration plus the project's
// pipeline document. Structure templates in the document overlay the
// defaults key by key.
func Load(ctx context.Context, cfg *config.Config, store *confstore.Store, logger *slog.Logger) (*Project, error) {
	p := &Project{
		Name:          "",
		Root:          cfg.Project.Root,
		LocalRoot:     cfg.Project.LocalRoot,
		User:          cfg.User.Name,
		Padding:       cfg.Versioning.Padding,
		Lowest:        cfg.Versioning.Lowest,
		DocExt:        cfg.DocExtension(),
		ShotCamFormat: cfg.Versioning.ShotCamFormat,
		PipelineDoc:   cfg.PipelineConfigPath(),
		store:         store,
		logger:        logging.NewComponentLogger(logger, "project"),
	}

	table := DefaultStructure()
	doc, ok, err := store.Get(ctx, p.PipelineDoc)
	if err != nil {
		return nil, err
	}
	if ok {
		applyDocument(p, table, doc.(map[string]any))
	}
	p.resolver = pathtmpl.New(table, structureRefs())
	return p, nil
}

func applyDocument(p *Project, table pathtmpl.Table, doc map[string]any) {
	if globals, ok := doc["globals"].(map[string]any); ok {
		if name, ok := globals["project_name"].(string); ok {
			p.Name = name
		}
		if padding, ok := intValue(globals["padding"]); ok && padding > 0 && padding <= 9 {
			p.Padding = padding
		}
	}
	if structure, ok := doc["structure"].(map[string]any); ok {
		for key, value := range structure {
			if s, ok := value.(string); ok && s != "" {
				table[key] = s
			}
		}
	}
}

// intValue reads a document number: YAML decodes integers as int, JSON as
// float64.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// Store exposes the document store the project was loaded through.
func (p *Project) Store() *confstore.Store { return p.store }

// Resolver exposes the template resolver built over the project structure.
func (p *Project) Resolver() *pathtmpl.Resolver { return p.resolver }

// Logger returns the project-scoped logger.
func (p *Project) Logger() *slog.Logger { return p.logger }

// Tokens expands a context into template tokens under the given storage
// root, including the resolved entity_path alias.
func (p *Project) Tokens(c Context, root string) (map[string]string, error) {
	if c.Entity == nil {
		return nil, services.Wrap(services.ErrConfiguration, "project", "tokens", "context has no entity", nil)
	}
	tokens := c.TokenMap()
	tokens["root"] = root
	entityPath, err := p.resolver.Resolve(c.Entity.TemplateKey(), tokens)
	if err != nil {
		return nil, err
	}
	tokens["entity_path"] = entityPath
	return tokens, nil
}

// VersionString formats a version number with the project's padding.
func (p *Project) VersionString(num int) string {
	return fmt.Sprintf("v%0*d", p.Padding, num)
}

// LowestVersionString is the version assigned when none exist yet.
func (p *Project) LowestVersionString() string {
	return p.VersionString(p.Lowest)
}

var versionPattern = regexp.MustCompile(`^v(\d+)(?:_([^/\\]+))?$`)

// ParseVersion splits a scanned version string into its number and wedge.
// "v0003" yields (3, ""), "v0003_2" yields (3, "2"). The master name and
// anything else non-conforming report ok=false.
func ParseVersion(s string) (num int, wedge string, ok bool) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, "", false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	return num, m[2], true
}

// IsVersionName reports whether s is a valid version folder name, numbered
// or master.
func IsVersionName(s string) bool {
	if s == MasterVersion {
		return true
	}
	_, _, ok := ParseVersion(s)
	return ok
}

// SidecarName returns the metadata document filename for version folders.
func (p *Project) SidecarName() string {
	return "versioninfo" + p.DocExt
}
