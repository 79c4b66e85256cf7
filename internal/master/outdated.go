package master

import (
	"context"
	"errors"

	"slate/internal/project"
	"slate/internal/services"
	"slate/internal/versions"
)

// Outdated pairs a master with the newer version it should mirror.
// MasterVersion is empty when the product has versions but no master yet.
type Outdated struct {
	Entity        project.Entity
	Product       string
	MasterPath    string
	MasterVersion string
	LatestPath    string
	LatestVersion string
}

// FindOutdated reports, for every product under the given entities, masters
// whose recorded source version differs from the latest numbered version at
// the master's own storage location. Masters are never compared against
// versions at other locations. Products with an ambiguous latest version
// are skipped.
func (m *Manager) FindOutdated(ctx context.Context, entities []project.Entity) ([]Outdated, error) {
	var out []Outdated
	for _, entity := range entities {
		products, err := m.scanner.Products(ctx, entity)
		if err != nil {
			return nil, err
		}
		for _, product := range products {
			entry, ok, err := m.checkProduct(ctx, entity, product.Name)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, entry)
			}
		}
	}
	return out, nil
}

func (m *Manager) checkProduct(ctx context.Context, entity project.Entity, product string) (Outdated, bool, error) {
	c := project.Context{Entity: entity, Product: product}
	records, err := m.scanner.Scan(ctx, c)
	if err != nil {
		return Outdated{}, false, err
	}

	var masterRec *versions.Record
	for i := range records {
		if records[i].IsMaster() {
			masterRec = &records[i]
			break
		}
	}

	// Only versions at the master's own location compete; without a
	// master every location is considered.
	var scope []string
	if masterRec != nil {
		scope = masterRec.Locations[:1]
	}
	candidates := records[:0:0]
	for _, rec := range records {
		if rec.IsMaster() {
			continue
		}
		if scope != nil && !atLocation(rec, scope[0]) {
			continue
		}
		candidates = append(candidates, rec)
	}

	latest, ok, err := m.scanner.Latest(ctx, candidates, false, "")
	if err != nil {
		if errors.Is(err, services.ErrAmbiguous) {
			return Outdated{}, false, nil
		}
		return Outdated{}, false, err
	}
	if !ok {
		return Outdated{}, false, nil
	}

	if masterRec == nil {
		return Outdated{
			Entity:        entity,
			Product:       product,
			LatestPath:    latest.Path,
			LatestVersion: latest.Version,
		}, true, nil
	}

	source, _ := m.VersionNumber(ctx, masterRec.Path)
	if source == latest.Version {
		return Outdated{}, false, nil
	}
	return Outdated{
		Entity:        entity,
		Product:       product,
		MasterPath:    masterRec.Path,
		MasterVersion: source,
		LatestPath:    latest.Path,
		LatestVersion: latest.Version,
	}, true, nil
}

func atLocation(rec versions.Record, location string) bool {
	for _, name := range rec.Locations {
		if name == location {
			return true
		}
	}
	return false
}
