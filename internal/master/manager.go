// Package master maintains the stable "master" alias of a product: a
// folder at a fixed path holding a copy of one chosen numbered version.
// Masters are never patched in place; every update deletes the previous
// master wholesale and recreates it from the source version.
package master

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"slate/internal/fileutil"
	"slate/internal/locations"
	"slate/internal/logging"
	"slate/internal/project"
	"slate/internal/prompt"
	"slate/internal/services"
	"slate/internal/versions"
)

// Environment toggles.
const (
	// EnvHardlink enables hardlinking master files instead of copying.
	// Only sensible when source and master live on the same filesystem;
	// the copy fallback still applies when linking fails.
	EnvHardlink = "SLATE_USE_HARDLINK_MASTER"
	// EnvMasterLocation forces the location master updates are written to.
	EnvMasterLocation = "SLATE_PRODUCT_MASTER_LOC"
)

// quarantineDir receives master folders that could not be deleted.
const quarantineDir = ".delete"

// shotCamProduct names the shot-camera product, whose auxiliary files also
// encode the version in their filenames.
const shotCamProduct = "_ShotCam"

// Manager creates, replaces and queries master versions.
type Manager struct {
	project  *project.Project
	scanner  *versions.Scanner
	registry *locations.Registry
	prompt   prompt.Prompt
	logger   *slog.Logger
}

func NewManager(p *project.Project, scanner *versions.Scanner, registry *locations.Registry, pr prompt.Prompt) *Manager {
	if pr == nil {
		pr = prompt.Decline{}
	}
	return &Manager{
		project:  p,
		scanner:  scanner,
		registry: registry,
		prompt:   pr,
		logger:   logging.NewComponentLogger(p.Logger(), "master"),
	}
}

// MasterPath returns where the master for the version at sourcePath lives,
// honoring the forced-location override.
func (m *Manager) MasterPath(ctx context.Context, sourcePath string) (string, error) {
	folder := filepath.Base(sourcePath)
	if !project.IsVersionName(folder) {
		return "", services.Wrap(services.ErrConfiguration, "master", "path",
			sourcePath+" is not a version folder", nil)
	}
	path := filepath.Join(filepath.Dir(sourcePath), project.MasterVersion)

	forced := strings.TrimSpace(os.Getenv(EnvMasterLocation))
	if forced == "" {
		return path, nil
	}
	from, ok, err := m.registry.LocationOf(ctx, locations.Product, path)
	if err != nil {
		return "", err
	}
	if !ok || from == forced {
		return path, nil
	}
	return m.registry.Convert(ctx, locations.Product, path, from, forced)
}

// Update replaces the master for the version at sourcePath. The previous
// master folder is deleted first; when deletion is blocked the prompt port
// decides between retrying and quarantining the stuck folder, never a
// silent skip. Copying stops at the first failed file and leaves the
// partial master in place; the next successful update replaces it.
func (m *Manager) Update(ctx context.Context, sourcePath string) (string, error) {
	info, err := os.Stat(sourcePath)
	if err != nil || !info.IsDir() {
		return "", services.Wrap(services.ErrNotFound, "master", "update",
			"source version folder "+sourcePath, err)
	}
	sourceVersion := filepath.Base(sourcePath)
	if !project.IsVersionName(sourceVersion) || sourceVersion == project.MasterVersion {
		return "", services.Wrap(services.ErrConfiguration, "master", "update",
			sourcePath+" is not a numbered version folder", nil)
	}

	masterPath, err := m.MasterPath(ctx, sourcePath)
	if err != nil {
		return "", err
	}
	doc, hasDoc, err := m.scanner.ReadSidecar(ctx, sourcePath)
	if err != nil {
		return "", err
	}
	if !hasDoc {
		doc = map[string]any{}
	}

	// Only the version's recorded export files carry the version token by
	// convention; auxiliary files dropped next to them keep their names,
	// except for the shot camera whose whole folder encodes the version.
	frames := frameSet(doc)
	product := filepath.Base(filepath.Dir(sourcePath))
	rename := func(name string) string {
		if frames[name] || product == shotCamProduct {
			return fileutil.ReplaceVersion(name, sourceVersion, project.MasterVersion)
		}
		return name
	}

	if err := m.removeExisting(masterPath); err != nil {
		return "", err
	}
	if err := os.MkdirAll(masterPath, 0o755); err != nil {
		return "", services.Wrap(services.ErrTransient, "master", "update",
			"create "+masterPath, err)
	}

	hardlink := envEnabled(EnvHardlink)
	copied, err := fileutil.CopyTree(ctx, sourcePath, masterPath, rename, hardlink)
	if err != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrCanceled, "master", "update",
				fmt.Sprintf("canceled after %d files", copied), err)
		}
		return "", services.Wrap(services.ErrTransient, "master", "update",
			fmt.Sprintf("after %d files", copied), err)
	}

	if err := m.writeSidecar(ctx, masterPath, sourceVersion, doc, rename); err != nil {
		return "", err
	}
	m.project.Store().ClearCache(m.scanner.SidecarPath(masterPath))

	m.logger.Info("master updated",
		"source", sourceVersion,
		"path", masterPath,
		"files", copied,
		"hardlink", hardlink)
	return masterPath, nil
}

// removeExisting deletes the previous master, asking the prompt port what
// to do when the folder is stuck.
func (m *Manager) removeExisting(masterPath string) error {
	for {
		err := os.RemoveAll(masterPath)
		if err == nil {
			return nil
		}
		choice := m.prompt.Ask(prompt.Question{
			Key:     "master.delete-blocked",
			Message: "The existing master could not be deleted: " + masterPath,
			Choices: []prompt.Choice{prompt.Retry, prompt.Quarantine, prompt.Cancel},
			Default: prompt.Cancel,
		})
		switch choice {
		case prompt.Retry:
			continue
		case prompt.Quarantine:
			return m.quarantine(masterPath)
		default:
			return services.Wrap(services.ErrTransient, "master", "update",
				"delete previous master "+masterPath, err)
		}
	}
}

// quarantine moves a stuck master folder aside instead of deleting it,
// using a numeric disambiguator to avoid clashing with earlier leftovers.
func (m *Manager) quarantine(masterPath string) error {
	dir := filepath.Join(filepath.Dir(masterPath), quarantineDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "master", "quarantine", "create "+dir, err)
	}
	for i := 1; ; i++ {
		target := filepath.Join(dir, fmt.Sprintf("%s_%d", project.MasterVersion, i))
		if _, err := os.Stat(target); err == nil {
			continue
		}
		if err := os.Rename(masterPath, target); err != nil {
			return services.Wrap(services.ErrTransient, "master", "quarantine",
				"move "+masterPath, err)
		}
		m.logger.Warn("stuck master quarantined", "from", masterPath, "to", target)
		return nil
	}
}

// writeSidecar rebuilds the master sidecar from the source version's
// document: the source version is recorded and the preferredFile and file
// list references are rewritten to the renamed master filenames.
func (m *Manager) writeSidecar(ctx context.Context, masterPath, sourceVersion string, doc map[string]any, rename fileutil.RenameFunc) error {
	doc[versions.KeyVersion] = project.MasterVersion
	doc[versions.KeySourceVersion] = sourceVersion
	if preferred, ok := doc[versions.KeyPreferredFile].(string); ok && preferred != "" {
		doc[versions.KeyPreferredFile] = rename(preferred)
	}
	if files := fileList(doc); files != nil {
		renamed := make([]string, 0, len(files))
		for _, name := range files {
			renamed = append(renamed, rename(name))
		}
		doc[versions.KeyFiles] = renamed
	}

	// The copy step may have hardlinked the source document into the
	// master folder; writing through a shared inode would rewrite the
	// source version's metadata too.
	path := m.scanner.SidecarPath(masterPath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrTransient, "master", "update",
			"replace copied sidecar "+path, err)
	}
	return m.scanner.WriteSidecar(ctx, masterPath, doc)
}

// frameSet collects the filenames recorded as the version's export output.
func frameSet(doc map[string]any) map[string]bool {
	set := map[string]bool{}
	for _, name := range fileList(doc) {
		set[name] = true
	}
	if preferred, ok := doc[versions.KeyPreferredFile].(string); ok && preferred != "" {
		set[preferred] = true
	}
	return set
}

// fileList reads the sidecar's recorded file list, tolerating both the
// decoded ([]any) and freshly written ([]string) shapes.
func fileList(doc map[string]any) []string {
	switch files := doc[versions.KeyFiles].(type) {
	case []string:
		return files
	case []any:
		out := make([]string, 0, len(files))
		for _, f := range files {
			if name, ok := f.(string); ok {
				out = append(out, name)
			}
		}
		return out
	}
	return nil
}

// VersionNumber reads the numbered version a master mirrors from its
// sidecar. It never infers the answer from file content.
func (m *Manager) VersionNumber(ctx context.Context, masterPath string) (string, bool) {
	doc, ok, err := m.scanner.ReadSidecar(ctx, masterPath)
	if err != nil || !ok {
		return "", false
	}
	if source, ok := doc[versions.KeySourceVersion].(string); ok && source != "" {
		return source, true
	}
	if v, ok := doc[versions.KeyVersion].(string); ok && v != "" && v != project.MasterVersion {
		return v, true
	}
	return "", false
}

// Label renders a master for display, e.g. "master (v0002)".
func (m *Manager) Label(ctx context.Context, masterPath string) string {
	source, ok := m.VersionNumber(ctx, masterPath)
	if !ok {
		return project.MasterVersion
	}
	return fmt.Sprintf("%s (%s)", project.MasterVersion, source)
}

func envEnabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
