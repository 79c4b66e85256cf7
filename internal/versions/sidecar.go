package versions

import (
	"context"
	"path/filepath"
)

// Sidecar document keys written by this layer.
const (
	KeyVersion       = "version"
	KeyComment       = "comment"
	KeyUser          = "user"
	KeySourceVersion = "sourceVersion"
	KeyPreferredFile = "preferredFile"
	KeyFiles         = "files"
)

// SidecarPath returns the metadata document location for a version folder.
func (s *Scanner) SidecarPath(versionPath string) string {
	return filepath.Join(versionPath, s.project.SidecarName())
}

// ReadSidecar loads a version folder's metadata document.
func (s *Scanner) ReadSidecar(ctx context.Context, versionPath string) (map[string]any, bool, error) {
	value, ok, err := s.project.Store().Get(ctx, s.SidecarPath(versionPath))
	if err != nil || !ok {
		return nil, ok, err
	}
	doc, _ := value.(map[string]any)
	return doc, doc != nil, nil
}

// WriteSidecar replaces a version folder's metadata document.
func (s *Scanner) WriteSidecar(ctx context.Context, versionPath string, doc map[string]any) error {
	return s.project.Store().SetDocument(ctx, s.SidecarPath(versionPath), doc, true)
}

// SetComment records a comment on an existing version.
func (s *Scanner) SetComment(ctx context.Context, versionPath, comment string) error {
	return s.project.Store().Set(ctx, s.SidecarPath(versionPath), comment, KeyComment)
}

// SetPreferredFile marks one file in the version as the canonical import.
// The name is stored relative to the version folder.
func (s *Scanner) SetPreferredFile(ctx context.Context, versionPath, filename string) error {
	return s.project.Store().Set(ctx, s.SidecarPath(versionPath), filepath.Base(filename), KeyPreferredFile)
}

// Comment returns the recorded comment for a version, if any.
func (s *Scanner) Comment(ctx context.Context, versionPath string) (string, bool) {
	value, ok, err := s.project.Store().Get(ctx, s.SidecarPath(versionPath), KeyComment)
	if err != nil || !ok {
		return "", false
	}
	comment, _ := value.(string)
	return comment, comment != ""
}
