// Package locations maps symbolic storage-location names to filesystem
// roots. Every project has a global root, optionally a per-user local
// root, and any number of named custom roots persisted in the project
// document. Product (export) and media (render) roots are tracked
// separately since a project may define different custom roots for each.
package locations

import (
	"context"
	"log/slog"
	"strings"

	"slate/internal/logging"
	"slate/internal/project"
	"slate/internal/services"
)

// Kind selects which root table a lookup consults.
type Kind string

const (
	Product Kind = "product"
	Media   Kind = "media"
)

// Reserved location names that always resolve from the tool config.
const (
	Global = "global"
	Local  = "local"
)

// Location pairs a symbolic name with its root path.
type Location struct {
	Name string
	Path string
}

// Registry resolves location names against the project configuration.
// Custom roots live in the project document, so edits made by other
// processes become visible through the document cache.
type Registry struct {
	project *project.Project
	logger  *slog.Logger
}

func NewRegistry(p *project.Project) *Registry {
	return &Registry{
		project: p,
		logger:  logging.NewComponentLogger(p.Logger(), "locations"),
	}
}

func docKey(kind Kind) string {
	if kind == Media {
		return "render"
	}
	return "export"
}

// Locations returns every root for the kind: global first, local when
// configured, then custom roots in declaration order.
func (r *Registry) Locations(ctx context.Context, kind Kind) ([]Location, error) {
	out := []Location{{Name: Global, Path: r.project.Root}}
	if r.project.LocalRoot != "" {
		out = append(out, Location{Name: Local, Path: r.project.LocalRoot})
	}
	custom, err := r.custom(ctx, kind)
	if err != nil {
		return nil, err
	}
	return append(out, custom...), nil
}

// Root resolves one location name to its root path.
func (r *Registry) Root(ctx context.Context, kind Kind, name string) (string, error) {
	all, err := r.Locations(ctx, kind)
	if err != nil {
		return "", err
	}
	for _, loc := range all {
		if loc.Name == name {
			return loc.Path, nil
		}
	}
	return "", services.Wrap(services.ErrConfiguration, "locations", "root",
		"unknown location "+name, nil)
}

// Add persists a custom root. Re-adding a name with the identical path is
// a no-op; a different path replaces the stored one.
func (r *Registry) Add(ctx context.Context, kind Kind, name, root string) error {
	if err := checkCustomName(name); err != nil {
		return err
	}
	root = strings.TrimRight(root, "/\\")
	if root == "" {
		return services.Wrap(services.ErrConfiguration, "locations", "add", "empty root path", nil)
	}
	entries, err := r.custom(ctx, kind)
	if err != nil {
		return err
	}
	replaced := false
	for i, loc := range entries {
		if loc.Name != name {
			continue
		}
		if loc.Path == root {
			return nil
		}
		entries[i].Path = root
		replaced = true
	}
	if !replaced {
		entries = append(entries, Location{Name: name, Path: root})
	}
	r.logger.Info("location added", "kind", string(kind), "name", name, "root", root)
	return r.writeCustom(ctx, kind, entries)
}

// Remove deletes a custom root. Removing an unknown name is a no-op.
func (r *Registry) Remove(ctx context.Context, kind Kind, name string) error {
	if err := checkCustomName(name); err != nil {
		return err
	}
	entries, err := r.custom(ctx, kind)
	if err != nil {
		return err
	}
	kept := entries[:0:0]
	for _, loc := range entries {
		if loc.Name != name {
			kept = append(kept, loc)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	r.logger.Info("location removed", "kind", string(kind), "name", name)
	return r.writeCustom(ctx, kind, kept)
}

// LocationOf finds the location containing path by longest matching root
// prefix. The second result is false when the path is outside every root.
func (r *Registry) LocationOf(ctx context.Context, kind Kind, path string) (string, bool, error) {
	all, err := r.Locations(ctx, kind)
	if err != nil {
		return "", false, err
	}
	best := ""
	bestLen := -1
	for _, loc := range all {
		if !underRoot(path, loc.Path) {
			continue
		}
		if len(loc.Path) > bestLen {
			best, bestLen = loc.Name, len(loc.Path)
		}
	}
	if bestLen < 0 {
		return "", false, nil
	}
	return best, true, nil
}

// Convert rewrites the root prefix of path from one location to another.
// No files move; the result is where the same content would live under
// the target root.
func (r *Registry) Convert(ctx context.Context, kind Kind, path, from, to string) (string, error) {
	fromRoot, err := r.Root(ctx, kind, from)
	if err != nil {
		return "", err
	}
	toRoot, err := r.Root(ctx, kind, to)
	if err != nil {
		return "", err
	}
	if !underRoot(path, fromRoot) {
		return "", services.Wrap(services.ErrConfiguration, "locations", "convert",
			path+" is not under the "+from+" root", nil)
	}
	return toRoot + path[len(fromRoot):], nil
}

func (r *Registry) custom(ctx context.Context, kind Kind) ([]Location, error) {
	value, ok, err := r.project.Store().Get(ctx, r.project.PipelineDoc, "locations", docKey(kind))
	if err != nil || !ok {
		return nil, err
	}
	list, _ := value.([]any)
	var out []Location
	for _, item := range list {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["name"].(string)
		path, _ := entry["path"].(string)
		if name == "" || path == "" {
			continue
		}
		out = append(out, Location{Name: name, Path: path})
	}
	return out, nil
}

func (r *Registry) writeCustom(ctx context.Context, kind Kind, entries []Location) error {
	list := make([]any, len(entries))
	for i, loc := range entries {
		list[i] = map[string]any{"name": loc.Name, "path": loc.Path}
	}
	return r.project.Store().Set(ctx, r.project.PipelineDoc, list, "locations", docKey(kind))
}

func checkCustomName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || name == Global || name == Local {
		return services.Wrap(services.ErrConfiguration, "locations", "modify",
			"location name "+name+" is reserved", nil)
	}
	return nil
}

func underRoot(path, root string) bool {
	if root == "" {
		return false
	}
	path = strings.ReplaceAll(path, "\\", "/")
	root = strings.TrimRight(strings.ReplaceAll(root, "\\", "/"), "/")
	if !strings.HasPrefix(path, root) {
		return false
	}
	rest := path[len(root):]
	return rest == "" || strings.HasPrefix(rest, "/")
}
