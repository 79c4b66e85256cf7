package pathtmpl

import (
	"path/filepath"
	"strings"
)

// Hit is one on-disk match of a partially bound template.
type Hit struct {
	Path   string
	Fields map[string]string
}

// Match enumerates paths on disk that fit the named template. Tokens bound
// in the map are substituted literally; unbound tokens become wildcards.
// Every match is paired with the fields extracted from it, and matches
// whose extracted fields contradict a bound token are dropped.
func (r *Resolver) Match(key string, tokens map[string]string) ([]Hit, error) {
	template, err := r.Flatten(key)
	if err != nil {
		return nil, err
	}
	return MatchString(template, tokens), nil
}

// MatchString is Match over a flattened template string.
func MatchString(template string, tokens map[string]string) []Hit {
	pattern := globPattern(template, tokens)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	var hits []Hit
	for _, p := range paths {
		fields, ok := ExtractString(p, template)
		if !ok {
			continue
		}
		if conflicts(fields, tokens) {
			continue
		}
		hits = append(hits, Hit{Path: p, Fields: fields})
	}
	return hits
}

func globPattern(template string, tokens map[string]string) string {
	var out strings.Builder
	for _, part := range splitTemplate(template) {
		if part.token == "" {
			out.WriteString(escapeGlob(part.literal))
			continue
		}
		if value, ok := tokens[part.token]; ok && value != "" {
			out.WriteString(escapeGlob(value))
			continue
		}
		out.WriteString("*")
	}
	return Normalize(out.String())
}

func conflicts(fields, tokens map[string]string) bool {
	for name, want := range tokens {
		if want == "" {
			continue
		}
		if got, ok := fields[name]; ok && got != "" && got != want {
			return true
		}
	}
	return false
}

func escapeGlob(s string) string {
	var out strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			out.WriteRune('\\')
		}
		out.WriteRune(r)
	}
	return out.String()
}
