package versions

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"slate/internal/locations"
	"slate/internal/logging"
	"slate/internal/project"
)

// Record is one discovered version of a product. Paths holds the version
// folder under every location it was found at, in discovery order;
// Locations is the parallel list of location names.
type Record struct {
	Version   string
	Wedge     string
	Path      string
	Paths     []string
	Locations []string
	Context   project.Context
}

// FolderName is the on-disk folder name, version plus wedge suffix.
func (r Record) FolderName() string {
	if r.Wedge == "" {
		return r.Version
	}
	return r.Version + "_" + r.Wedge
}

// IsMaster reports whether the record is the master alias.
func (r Record) IsMaster() bool { return r.Version == project.MasterVersion }

// Scanner discovers versions and products for a project.
type Scanner struct {
	project  *project.Project
	registry *locations.Registry
	logger   *slog.Logger
}

func NewScanner(p *project.Project, reg *locations.Registry) *Scanner {
	return &Scanner{
		project:  p,
		registry: reg,
		logger:   logging.NewComponentLogger(p.Logger(), "versions"),
	}
}

// Scan enumerates every version of the context's product under the named
// locations, or under all locations when none are given. Folders whose
// name is neither vNNNN nor master are ignored. A version present under
// several locations yields a single record whose Paths field accumulates
// each hit in first-seen order.
func (s *Scanner) Scan(ctx context.Context, c project.Context, locs ...string) ([]Record, error) {
	targets, err := s.targetLocations(ctx, locs)
	if err != nil {
		return nil, err
	}

	var records []Record
	index := map[string]int{}
	for _, loc := range targets {
		scanned := project.Context{Entity: c.Entity, Product: c.Product}
		tokens, err := s.project.Tokens(scanned, loc.Path)
		if err != nil {
			return nil, err
		}
		delete(tokens, "version")
		hits, err := s.project.Resolver().Match("productVersions", tokens)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			folder := hit.Fields["version"]
			if !project.IsVersionName(folder) || !isDir(hit.Path) {
				continue
			}
			version, wedge := splitWedge(folder)
			key := folder
			if i, seen := index[key]; seen {
				records[i].Paths = append(records[i].Paths, hit.Path)
				records[i].Locations = append(records[i].Locations, loc.Name)
				continue
			}
			rc := c
			rc.Version = version
			rc.Wedge = wedge
			rc.Location = loc.Name
			index[key] = len(records)
			records = append(records, Record{
				Version:   version,
				Wedge:     wedge,
				Path:      hit.Path,
				Paths:     []string{hit.Path},
				Locations: []string{loc.Name},
				Context:   rc,
			})
		}
	}
	return records, nil
}

// Product is a deliverable stream discovered under an entity, with the
// product folder under each location it exists at.
type Product struct {
	Name      string
	Paths     []string
	Locations []string
}

// Products enumerates the product streams under an entity across the
// requested locations, merged by name in first-seen order.
func (s *Scanner) Products(ctx context.Context, entity project.Entity, locs ...string) ([]Product, error) {
	targets, err := s.targetLocations(ctx, locs)
	if err != nil {
		return nil, err
	}

	var products []Product
	index := map[string]int{}
	for _, loc := range targets {
		tokens, err := s.project.Tokens(project.Context{Entity: entity}, loc.Path)
		if err != nil {
			return nil, err
		}
		delete(tokens, "product")
		hits, err := s.project.Resolver().Match("products", tokens)
		if err != nil {
			return nil, err
		}
		for _, hit := range hits {
			name := hit.Fields["product"]
			if name == "" || strings.HasPrefix(name, ".") || !isDir(hit.Path) {
				continue
			}
			if i, seen := index[name]; seen {
				products[i].Paths = append(products[i].Paths, hit.Path)
				products[i].Locations = append(products[i].Locations, loc.Name)
				continue
			}
			index[name] = len(products)
			products = append(products, Product{
				Name:      name,
				Paths:     []string{hit.Path},
				Locations: []string{loc.Name},
			})
		}
	}
	return products, nil
}

// NextVersion returns the version string after the highest numbered
// version that exists anywhere, or the project's lowest version when the
// product has no versions yet. Master and wedge duplicates do not affect
// the numbering.
func (s *Scanner) NextVersion(ctx context.Context, c project.Context) (string, error) {
	records, err := s.Scan(ctx, c)
	if err != nil {
		return "", err
	}
	highest := -1
	for _, rec := range records {
		if rec.IsMaster() {
			continue
		}
		num, _, ok := project.ParseVersion(rec.Version)
		if ok && num > highest {
			highest = num
		}
	}
	if highest < 0 {
		return s.project.LowestVersionString(), nil
	}
	return s.project.VersionString(highest + 1), nil
}

// VersionPath resolves the folder a given version of the context would
// occupy under the named location, whether or not it exists.
func (s *Scanner) VersionPath(ctx context.Context, c project.Context, location string) (string, error) {
	root, err := s.registry.Root(ctx, locations.Product, location)
	if err != nil {
		return "", err
	}
	tokens, err := s.project.Tokens(c, root)
	if err != nil {
		return "", err
	}
	return s.project.Resolver().Resolve("productVersions", tokens)
}

func (s *Scanner) targetLocations(ctx context.Context, names []string) ([]locations.Location, error) {
	all, err := s.registry.Locations(ctx, locations.Product)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return all, nil
	}
	var out []locations.Location
	for _, name := range names {
		for _, loc := range all {
			if loc.Name == name {
				out = append(out, loc)
				break
			}
		}
	}
	return out, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// splitWedge separates the wedge suffix from a version folder name.
// "v0003_2" is version v0003, wedge 2; master never carries a wedge.
func splitWedge(folder string) (version, wedge string) {
	if folder == project.MasterVersion {
		return folder, ""
	}
	_, wedge, ok := project.ParseVersion(folder)
	if !ok || wedge == "" {
		return folder, ""
	}
	return folder[:len(folder)-len(wedge)-1], wedge
}
