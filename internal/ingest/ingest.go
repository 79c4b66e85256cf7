// Package ingest brings external files into the version store as a new
// numbered version of a product.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"slate/internal/fileutil"
	"slate/internal/locations"
	"slate/internal/logging"
	"slate/internal/project"
	"slate/internal/services"
	"slate/internal/versions"
)

// Result describes a completed or canceled ingest.
type Result struct {
	Version     string
	VersionPath string
	Copied      int
	Preferred   string
}

// Ingestor copies files into the next available version of a product and
// writes the sidecar document.
type Ingestor struct {
	project  *project.Project
	scanner  *versions.Scanner
	registry *locations.Registry
	logger   *slog.Logger
}

func New(p *project.Project, scanner *versions.Scanner, registry *locations.Registry) *Ingestor {
	return &Ingestor{
		project:  p,
		scanner:  scanner,
		registry: registry,
		logger:   logging.NewComponentLogger(p.Logger(), "ingest"),
	}
}

// Ingest copies the given files into a freshly numbered version of the
// context's product at the context's location (global by default). The
// first copied file becomes the version's preferred file. Cancellation is
// honored between files; the result reports how many completed.
func (ing *Ingestor) Ingest(ctx context.Context, c project.Context, files []string) (Result, error) {
	if len(files) == 0 {
		return Result{}, services.Wrap(services.ErrConfiguration, "ingest", "ingest", "no files given", nil)
	}
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			return Result{}, services.Wrap(services.ErrNotFound, "ingest", "ingest", file, err)
		}
	}

	location := c.Location
	if location == "" {
		location = locations.Global
	}
	version, err := ing.scanner.NextVersion(ctx, c)
	if err != nil {
		return Result{}, err
	}
	vc := c
	vc.Version = version
	dir, err := ing.scanner.VersionPath(ctx, vc, location)
	if err != nil {
		return Result{}, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "ingest", "ingest", "create "+dir, err)
	}

	result := Result{Version: version, VersionPath: dir}
	copied := make([]string, 0, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, services.Wrap(services.ErrCanceled, "ingest", "ingest",
				fmt.Sprintf("canceled after %d files", result.Copied), err)
		}
		target := filepath.Join(dir, filepath.Base(file))
		if err := fileutil.CopyFileVerified(file, target); err != nil {
			return result, services.Wrap(services.ErrTransient, "ingest", "ingest",
				"copy "+file, err)
		}
		if result.Preferred == "" {
			result.Preferred = filepath.Base(file)
		}
		copied = append(copied, filepath.Base(file))
		result.Copied++
	}

	doc := map[string]any{
		versions.KeyVersion:       version,
		versions.KeyPreferredFile: result.Preferred,
		versions.KeyFiles:         copied,
	}
	if c.Comment != "" {
		doc[versions.KeyComment] = c.Comment
	}
	user := c.User
	if user == "" {
		user = ing.project.User
	}
	if user != "" {
		doc[versions.KeyUser] = user
	}
	if err := ing.scanner.WriteSidecar(ctx, dir, doc); err != nil {
		return result, err
	}

	ing.logger.Info("version ingested",
		"product", c.Product,
		"version", version,
		"files", result.Copied,
		"path", dir)
	return result, nil
}
