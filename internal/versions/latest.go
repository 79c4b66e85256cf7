package versions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"slate/internal/project"
	"slate/internal/services"
)

// masterSortKey orders master after every zero-padded version string.
const masterSortKey = "zzz"

// metadataExtensions are never importable; files carrying them do not make
// a version valid and are skipped when picking a preferred file.
var metadataExtensions = map[string]bool{
	".txt":  true,
	".ini":  true,
	".yml":  true,
	".yaml": true,
	".json": true,
	".xgen": true,
	".lock": true,
}

// Latest picks the newest version among records. Master sorts after every
// numbered version and is skipped when includeMaster is false. A non-empty
// wedge restricts candidates to that wedge. Records without an importable
// file are ignored. When distinct wedge identities tie at the highest
// version number the query is ambiguous and no record is returned; the
// error carries the ambiguity marker so callers can tell it from "none".
func (s *Scanner) Latest(ctx context.Context, records []Record, includeMaster bool, wedge string) (Record, bool, error) {
	var candidates []Record
	for _, rec := range records {
		if rec.IsMaster() && !includeMaster {
			continue
		}
		if wedge != "" && rec.Wedge != wedge {
			continue
		}
		if _, ok, err := s.PreferredFile(ctx, rec); err != nil {
			return Record{}, false, err
		} else if !ok {
			continue
		}
		candidates = append(candidates, rec)
	}
	if len(candidates) == 0 {
		return Record{}, false, nil
	}

	best := ""
	for _, rec := range candidates {
		if key := sortKey(rec); key > best {
			best = key
		}
	}
	var top []Record
	for _, rec := range candidates {
		if sortKey(rec) == best {
			top = append(top, rec)
		}
	}
	for _, rec := range top[1:] {
		if rec.Wedge != top[0].Wedge {
			return Record{}, false, services.Wrap(services.ErrAmbiguous, "versions", "latest",
				fmt.Sprintf("wedges %q and %q tie at %s", top[0].Wedge, rec.Wedge, top[0].Version), nil)
		}
	}
	return top[0], true, nil
}

func sortKey(rec Record) string {
	if rec.IsMaster() {
		return masterSortKey
	}
	num, _, ok := project.ParseVersion(rec.Version)
	if !ok {
		return ""
	}
	return fmt.Sprintf("v%09d", num)
}

// PreferredFile returns the file downstream tools should import from a
// version. A sidecar preferredFile entry wins when the named file exists;
// otherwise the first importable file found under the record's paths is
// used. Shot-cam records swap to the configured camera format when a
// sibling in that format exists, and material/bitmap picks swap to a
// sibling mesh.
func (s *Scanner) PreferredFile(ctx context.Context, rec Record) (string, bool, error) {
	sidecarName := s.project.SidecarName()
	for _, dir := range rec.Paths {
		named, err := s.preferredFromSidecar(ctx, dir)
		if err != nil {
			return "", false, err
		}
		if named == "" {
			continue
		}
		candidate := filepath.Join(dir, named)
		if fileExists(candidate) {
			return s.applySwaps(rec, candidate), true, nil
		}
	}
	for _, dir := range rec.Paths {
		if first := firstImportable(dir, sidecarName); first != "" {
			return s.applySwaps(rec, first), true, nil
		}
	}
	return "", false, nil
}

func (s *Scanner) preferredFromSidecar(ctx context.Context, dir string) (string, error) {
	value, ok, err := s.project.Store().Get(ctx, s.SidecarPath(dir), "preferredFile")
	if err != nil || !ok {
		return "", err
	}
	name, _ := value.(string)
	return name, nil
}

// applySwaps adjusts a chosen file by product conventions: the shot camera
// prefers the configured exchange format, and picking a .mtl or .bmp
// really means the .obj next to it.
func (s *Scanner) applySwaps(rec Record, chosen string) string {
	ext := strings.ToLower(filepath.Ext(chosen))
	base := chosen[:len(chosen)-len(ext)]
	if rec.Context.Product == "_ShotCam" {
		want := s.project.ShotCamFormat
		if want != "" && ext != want && fileExists(base+want) {
			return base + want
		}
	}
	if ext == ".mtl" || ext == ".bmp" {
		if fileExists(base + ".obj") {
			return base + ".obj"
		}
	}
	return chosen
}

// firstImportable returns the first file in dir that is not metadata, not
// a dotfile and not the sidecar document.
func firstImportable(dir, sidecarName string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == sidecarName {
			continue
		}
		if metadataExtensions[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		return filepath.Join(dir, name)
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
