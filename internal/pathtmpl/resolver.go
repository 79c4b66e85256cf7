package pathtmpl

import (
	"path/filepath"
	"regexp"
	"strings"

	"slate/internal/services"
)

// Table holds a project's named templates.
type Table map[string]string

// Resolver resolves and inverts templates from a project's table. Refs maps
// alias token names to template keys, so "{product_path}" inside one
// template expands to the flattened "products" template.
type Resolver struct {
	table Table
	refs  map[string]string
}

// New builds a Resolver over a template table.
func New(table Table, refs map[string]string) *Resolver {
	return &Resolver{table: table, refs: refs}
}

// Template returns the raw template string for key.
func (r *Resolver) Template(key string) (string, bool) {
	t, ok := r.table[key]
	return t, ok
}

// Flatten expands alias tokens until the template contains only plain
// tokens. Unknown template keys and reference cycles are configuration
// errors.
func (r *Resolver) Flatten(key string) (string, error) {
	return r.flatten(key, map[string]bool{})
}

func (r *Resolver) flatten(key string, seen map[string]bool) (string, error) {
	if seen[key] {
		return "", services.Wrap(services.ErrConfiguration, "pathtmpl", "flatten",
			"template reference cycle at "+key, nil)
	}
	seen[key] = true
	template, ok := r.table[key]
	if !ok {
		return "", services.Wrap(services.ErrConfiguration, "pathtmpl", "flatten",
			"unknown template "+key, nil)
	}
	var out strings.Builder
	for _, part := range splitTemplate(template) {
		if part.token == "" {
			out.WriteString(part.literal)
			continue
		}
		ref, isRef := r.refs[part.token]
		if !isRef {
			out.WriteString("{" + part.token + "}")
			continue
		}
		expanded, err := r.flatten(ref, seen)
		if err != nil {
			return "", err
		}
		out.WriteString(expanded)
	}
	delete(seen, key)
	return out.String(), nil
}

// Resolve substitutes token values into the named template. Tokens absent
// from the map resolve to an empty segment, so directory and file
// templates share one code path.
func (r *Resolver) Resolve(key string, tokens map[string]string) (string, error) {
	template, err := r.Flatten(key)
	if err != nil {
		return "", err
	}
	return ResolveString(template, tokens), nil
}

// Extract recovers token values from path using the named template.
func (r *Resolver) Extract(path, key string) (map[string]string, bool, error) {
	template, err := r.Flatten(key)
	if err != nil {
		return nil, false, err
	}
	fields, ok := ExtractString(path, template)
	return fields, ok, nil
}

// ResolveString substitutes tokens into a flattened template string and
// normalizes the separators of the result.
func ResolveString(template string, tokens map[string]string) string {
	var out strings.Builder
	for _, part := range splitTemplate(template) {
		if part.token == "" {
			out.WriteString(part.literal)
			continue
		}
		out.WriteString(tokens[part.token])
	}
	return Normalize(out.String())
}

// ExtractString structurally matches path against a flattened template and
// returns the token values. Literal template segments must match exactly.
// A token that appears more than once must capture the same value at every
// occurrence.
func ExtractString(path, template string) (map[string]string, bool) {
	names, re, err := compileTemplate(template)
	if err != nil {
		return nil, false
	}
	match := re.FindStringSubmatch(Normalize(path))
	if match == nil {
		return nil, false
	}
	fields := make(map[string]string, len(names))
	for i, name := range names {
		value := match[i+1]
		if prev, ok := fields[name]; ok && prev != value && prev != "" && value != "" {
			return nil, false
		}
		if value != "" || fields[name] == "" {
			fields[name] = value
		}
	}
	return fields, true
}

// Tokens lists the token names in a template, in order, without duplicates.
func Tokens(template string) []string {
	var names []string
	seen := map[string]bool{}
	for _, part := range splitTemplate(template) {
		if part.token != "" && !seen[part.token] {
			seen[part.token] = true
			names = append(names, part.token)
		}
	}
	return names
}

// Normalize collapses duplicate separators and trims a trailing one,
// keeping a single leading separator for absolute paths.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return filepath.FromSlash(p)
}

type templatePart struct {
	literal string
	token   string
}

var tokenPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

func splitTemplate(template string) []templatePart {
	var parts []templatePart
	last := 0
	for _, loc := range tokenPattern.FindAllStringSubmatchIndex(template, -1) {
		if loc[0] > last {
			parts = append(parts, templatePart{literal: template[last:loc[0]]})
		}
		parts = append(parts, templatePart{token: template[loc[2]:loc[3]]})
		last = loc[1]
	}
	if last < len(template) {
		parts = append(parts, templatePart{literal: template[last:]})
	}
	return parts
}

// compileTemplate turns a flattened template into an anchored regular
// expression with one capture group per token occurrence. The extension
// token is special-cased as an optional dot suffix so file templates also
// match extensionless paths.
func compileTemplate(template string) ([]string, *regexp.Regexp, error) {
	var names []string
	var pattern strings.Builder
	pattern.WriteString("^")
	for _, part := range splitTemplate(Normalize(template)) {
		if part.token == "" {
			pattern.WriteString(regexp.QuoteMeta(part.literal))
			continue
		}
		names = append(names, part.token)
		if part.token == "extension" {
			pattern.WriteString(`(\.[^/\\]*)?`)
		} else {
			// Non-empty lazy capture. Allowing empty captures lets a
			// token vanish at a doubled separator (a product name with a
			// leading underscore) and shifts every later group.
			pattern.WriteString(`(.+?)`)
		}
	}
	pattern.WriteString("$")
	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return nil, nil, err
	}
	return names, re, nil
}
