package confstore

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"slate/internal/services"
)

// ConvertLegacy migrates an INI document left behind by earlier pipeline
// versions into the structured format. The converted file is written next
// to the original with the preferred extension and its path returned. A
// missing INI file is not an error; the empty string is returned instead.
func (s *Store) ConvertLegacy(ctx context.Context, iniPath string) (string, error) {
	if iniPath == "" || filepath.Ext(iniPath) != ".ini" {
		return "", nil
	}
	if _, err := os.Stat(iniPath); err != nil {
		return "", nil
	}

	file, err := ini.Load(iniPath)
	if err != nil {
		return "", services.Wrap(services.ErrCorrupt, "confstore", "convert", iniPath, err)
	}

	doc := Document{}
	for _, section := range file.Sections() {
		name := section.Name()
		if name == ini.DefaultSection && len(section.Keys()) == 0 {
			continue
		}
		values := map[string]any{}
		listShaped := len(section.Keys()) > 0
		list := make([]any, 0, len(section.Keys()))
		for _, key := range section.Keys() {
			value := decodeLegacyValue(key.Value())
			values[key.Name()] = value
			if _, err := strconv.Atoi(key.Name()); err != nil {
				listShaped = false
			} else {
				list = append(list, value)
			}
		}
		if listShaped {
			doc[name] = list
		} else {
			doc[name] = values
		}
	}

	target := iniPath[:len(iniPath)-len(".ini")] + s.preferredExt
	if err := s.writeDocument(target, doc); err != nil {
		return "", err
	}
	s.cacheStore(target, doc)
	s.logger.Info("migrated legacy document", "from", iniPath, "to", target)
	return target, nil
}

// decodeLegacyValue turns the string form the INI format stores into a
// typed value: booleans, numbers, quoted strings and bracketed lists are
// recognized, anything else stays a string.
func decodeLegacyValue(raw string) any {
	raw = strings.TrimSpace(raw)
	switch raw {
	case "True", "true":
		return true
	case "False", "false":
		return false
	case "None", "null", "":
		return nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if len(raw) >= 2 {
		first, last := raw[0], raw[len(raw)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return raw[1 : len(raw)-1]
		}
		if first == '[' && last == ']' {
			inner := strings.TrimSpace(raw[1 : len(raw)-1])
			if inner == "" {
				return []any{}
			}
			items := splitLegacyList(inner)
			out := make([]any, len(items))
			for i, item := range items {
				out[i] = decodeLegacyValue(item)
			}
			return out
		}
	}
	return raw
}

// splitLegacyList splits a comma separated list, honoring quotes so that
// commas inside quoted items survive.
func splitLegacyList(inner string) []string {
	var items []string
	var quote byte
	start := 0
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == ',':
			items = append(items, strings.TrimSpace(inner[start:i]))
			start = i + 1
		}
	}
	items = append(items, strings.TrimSpace(inner[start:]))
	return items
}
