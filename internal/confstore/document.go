package confstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"slate/internal/lockfile"
	"slate/internal/prompt"
	"slate/internal/services"
)

const corruptRetryDelay = 500 * time.Millisecond

// readForUpdate returns the current document content for a
// read-merge-write cycle, or an empty document when the file is absent.
func (s *Store) readForUpdate(ctx context.Context, path string) (Document, error) {
	if _, err := os.Stat(path); err != nil {
		return Document{}, nil
	}
	doc, err := s.readGuarded(ctx, path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// readGuarded waits for any in-flight writer before decoding the document,
// retrying once around transient corruption (a writer mid-flush) and
// consulting the prompt port when the content stays unreadable.
func (s *Store) readGuarded(ctx context.Context, path string) (Document, error) {
	lock := lockfile.New(path, lockfile.Options{
		Timeout: s.lockTimeout,
		Delay:   s.lockDelay,
		Logger:  s.logger,
	})
	if err := lock.WaitUntilReady(ctx); err != nil {
		if !services.Retryable(err) {
			return nil, err
		}
		choice := s.prompt.Ask(prompt.Question{
			Key:     "confstore.read-locked",
			Message: "The document has a stale lock: " + path,
			Choices: []prompt.Choice{prompt.ForceRelease, prompt.Cancel},
			Default: prompt.Cancel,
		})
		if choice != prompt.ForceRelease {
			return nil, err
		}
		if ferr := lock.ForceRelease(); ferr != nil {
			return nil, ferr
		}
	}

	for {
		doc, err := ReadDocument(path)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, services.ErrCorrupt) {
			return nil, err
		}
		time.Sleep(corruptRetryDelay)
		if doc, rerr := ReadDocument(path); rerr == nil {
			return doc, nil
		}

		choice := s.prompt.Ask(prompt.Question{
			Key:     "confstore.corrupt",
			Message: "The document could not be parsed: " + path,
			Choices: []prompt.Choice{prompt.Retry, prompt.Reset, prompt.Cancel},
			Default: prompt.Cancel,
		})
		switch choice {
		case prompt.Retry:
			continue
		case prompt.Reset:
			s.logger.Warn("resetting corrupt document", "path", path)
			if werr := s.writeDocument(path, Document{}); werr != nil {
				return nil, werr
			}
			return Document{}, nil
		default:
			return nil, err
		}
	}
}

// ReadDocument decodes a document by extension: .yml and .yaml parse as
// YAML, everything else as JSON.
func ReadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "confstore", "read", path, err)
		}
		if os.IsPermission(err) {
			return nil, services.Wrap(services.ErrConfiguration, "confstore", "read",
				"permission denied reading "+path, err)
		}
		return nil, services.Wrap(services.ErrTransient, "confstore", "read", path, err)
	}
	doc, err := decodeDocument(path, data)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "confstore", "read", path, err)
	}
	return doc, nil
}

// WriteDocument encodes doc by extension and writes it in place.
func WriteDocument(path string, doc Document) error {
	data, err := encodeDocument(path, doc)
	if err != nil {
		return services.Wrap(services.ErrCorrupt, "confstore", "write", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		if os.IsPermission(err) {
			return services.Wrap(services.ErrConfiguration, "confstore", "write",
				"permission denied writing "+path, err)
		}
		return services.Wrap(services.ErrTransient, "confstore", "write", path, err)
	}
	return nil
}

func (s *Store) writeDocument(path string, doc Document) error {
	return WriteDocument(path, doc)
}

func decodeDocument(path string, data []byte) (Document, error) {
	doc := Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func encodeDocument(path string, doc Document) ([]byte, error) {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return yaml.Marshal(doc)
	default:
		return json.MarshalIndent(doc, "", "    ")
	}
}

// lookup walks a key path through nested maps.
func lookup(doc Document, keys []string) (any, bool, error) {
	var current any = doc
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false, nil
		}
		current, ok = m[key]
		if !ok {
			return nil, false, nil
		}
	}
	return current, true, nil
}

// assign writes value at the key path, creating intermediate maps. A
// non-map value on the way is replaced by a map.
func assign(doc Document, keys []string, value any) {
	current := doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[keys[len(keys)-1]] = value
}

// unassign removes the value at the key path. When the parent is a list,
// the final key is matched against the elements instead.
func unassign(doc Document, keys []string) {
	current := any(doc)
	for _, key := range keys[:len(keys)-1] {
		m, ok := current.(map[string]any)
		if !ok {
			return
		}
		current, ok = m[key]
		if !ok {
			return
		}
	}
	last := keys[len(keys)-1]
	switch parent := current.(type) {
	case map[string]any:
		delete(parent, last)
	case []any:
		// Lists live inside a map one level up, so rewrite in place via
		// the grandparent.
		if len(keys) < 2 {
			return
		}
		grand := any(doc)
		for _, key := range keys[:len(keys)-2] {
			m, ok := grand.(map[string]any)
			if !ok {
				return
			}
			grand, ok = m[key]
			if !ok {
				return
			}
		}
		gm, ok := grand.(map[string]any)
		if !ok {
			return
		}
		filtered := parent[:0:0]
		for _, item := range parent {
			if fmt.Sprintf("%v", item) != last {
				filtered = append(filtered, item)
			}
		}
		gm[keys[len(keys)-2]] = filtered
	}
}

// mergeNested deep-merges src into dst. Nested maps merge key by key,
// everything else in src wins.
func mergeNested(dst, src map[string]any) {
	for key, value := range src {
		if sv, ok := value.(map[string]any); ok {
			if dv, ok := dst[key].(map[string]any); ok {
				mergeNested(dv, sv)
				continue
			}
		}
		dst[key] = deepCopyValue(value)
	}
}

func copyDocument(doc Document) Document {
	out := make(Document, len(doc))
	for key, value := range doc {
		out[key] = deepCopyValue(value)
	}
	return out
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return copyDocument(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return value
	}
}
