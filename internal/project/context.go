package project

import (
	"fmt"
	"path"
	"strings"

	"slate/internal/services"
)

// Entity identifies a production unit. The two kinds carry different
// identifying fields, so template resolution goes through TokenMap rather
// than a shared field set.
type Entity interface {
	// Kind is "asset" or "shot".
	Kind() string
	// Name is the short name used in version filenames.
	Name() string
	// TokenMap returns the entity's template tokens.
	TokenMap() map[string]string
	// TemplateKey names the structure template for the entity folder.
	TemplateKey() string
	// FilesTemplateKey names the structure template for version files.
	FilesTemplateKey() string
}

// Asset is an entity under the asset hierarchy, identified by its relative
// path, e.g. "Characters/Hero".
type Asset struct {
	Path string
}

func (a Asset) Kind() string { return "asset" }

func (a Asset) Name() string { return path.Base(strings.ReplaceAll(a.Path, "\\", "/")) }

func (a Asset) TokenMap() map[string]string {
	return map[string]string{
		"asset_path": a.Path,
		"asset":      a.Name(),
	}
}

func (a Asset) TemplateKey() string { return "assets" }

func (a Asset) FilesTemplateKey() string { return "productFilesAssets" }

// Shot is an entity identified by a sequence/shot pair. The folder and
// filename form is "<sequence>-<shot>".
type Shot struct {
	Sequence string
	Shot     string
}

func (s Shot) Kind() string { return "shot" }

func (s Shot) Name() string {
	if s.Sequence == "" {
		return s.Shot
	}
	return s.Sequence + "-" + s.Shot
}

func (s Shot) TokenMap() map[string]string {
	return map[string]string{
		"sequence": s.Sequence,
		"shot":     s.Name(),
	}
}

func (s Shot) TemplateKey() string { return "shots" }

func (s Shot) FilesTemplateKey() string { return "productFilesShots" }

// ParseEntity reads the CLI/event form of an entity reference:
// "asset:Characters/Hero" or "shot:sq010/sh020". A bare value is treated
// as an asset path.
func ParseEntity(ref string) (Entity, error) {
	kind, rest, found := strings.Cut(ref, ":")
	if !found {
		rest, kind = kind, "asset"
	}
	rest = strings.Trim(rest, "/")
	switch kind {
	case "asset":
		if rest == "" {
			return nil, services.Wrap(services.ErrConfiguration, "project", "parse entity",
				"empty asset path in "+fmt.Sprintf("%q", ref), nil)
		}
		return Asset{Path: rest}, nil
	case "shot":
		seq, shot, found := strings.Cut(rest, "/")
		if !found {
			seq, shot = "", rest
		}
		if shot == "" {
			return nil, services.Wrap(services.ErrConfiguration, "project", "parse entity",
				"empty shot name in "+fmt.Sprintf("%q", ref), nil)
		}
		return Shot{Sequence: seq, Shot: shot}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "project", "parse entity",
			"unknown entity kind "+fmt.Sprintf("%q", kind), nil)
	}
}

// Context describes one product version request. It is built per call and
// never persisted; only its expansion into paths reaches disk.
type Context struct {
	Entity    Entity
	Product   string
	Version   string
	Wedge     string
	Comment   string
	User      string
	Extension string
	Location  string
}

// TokenMap flattens the context into template tokens. The entity path is
// not included; Project.Tokens adds it once a root is chosen.
func (c Context) TokenMap() map[string]string {
	tokens := map[string]string{}
	if c.Entity != nil {
		for k, v := range c.Entity.TokenMap() {
			tokens[k] = v
		}
	}
	set := func(key, value string) {
		if value != "" {
			tokens[key] = value
		}
	}
	set("product", c.Product)
	set("version", c.Version)
	set("wedge", c.Wedge)
	set("user", c.User)
	set("extension", c.Extension)
	return tokens
}
