package confstore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"slate/internal/lockfile"
	"slate/internal/logging"
	"slate/internal/prompt"
	"slate/internal/services"
)

// Document is a parsed pipeline document: a plain key/value map.
type Document = map[string]any

// Options configures a Store.
type Options struct {
	Prompt prompt.Prompt
	Logger *slog.Logger
	// PreferredExtension is used when migrating legacy documents,
	// ".yml" or ".json". Defaults to ".yml".
	PreferredExtension string
	LockTimeout        time.Duration
	LockDelay          time.Duration
}

// Store reads and writes pipeline documents with caching and locking.
//
// The cache is in-process shared state; the Store serializes its own cache
// access, but the documents themselves are only protected across processes
// by the advisory lock protocol, so every writer must go through Set.
type Store struct {
	mu     sync.Mutex
	cache  map[string]cacheEntry
	prompt prompt.Prompt
	logger *slog.Logger

	preferredExt string
	lockTimeout  time.Duration
	lockDelay    time.Duration
}

type cacheEntry struct {
	modTime time.Time
	doc     Document
}

// New constructs a Store.
func New(opts Options) *Store {
	p := opts.Prompt
	if p == nil {
		p = prompt.Decline{}
	}
	ext := opts.PreferredExtension
	if ext != ".json" {
		ext = ".yml"
	}
	return &Store{
		cache:        make(map[string]cacheEntry),
		prompt:       p,
		logger:       logging.NewComponentLogger(opts.Logger, "confstore"),
		preferredExt: ext,
		lockTimeout:  opts.LockTimeout,
		lockDelay:    opts.LockDelay,
	}
}

// PreferredExtension returns the migration target extension.
func (s *Store) PreferredExtension() string { return s.preferredExt }

// Get returns the value at the given key path inside the document, or the
// whole document when no keys are given. The second result reports whether
// the document and key exist. Absent documents are not an error.
func (s *Store) Get(ctx context.Context, path string, keys ...string) (any, bool, error) {
	doc, ok, err := s.load(ctx, path)
	if err != nil || !ok {
		return nil, false, err
	}
	if len(keys) == 0 {
		return copyDocument(doc), true, nil
	}
	value, found, err := lookup(doc, keys)
	if err != nil || !found {
		return nil, found, err
	}
	return deepCopyValue(value), true, nil
}

// GetDefault returns the value at the key path, persisting and returning
// dft when the document or key is absent.
func (s *Store) GetDefault(ctx context.Context, path string, dft any, keys ...string) (any, error) {
	value, ok, err := s.Get(ctx, path, keys...)
	if err != nil {
		return nil, err
	}
	if ok {
		return value, nil
	}
	if err := s.Set(ctx, path, dft, keys...); err != nil {
		return nil, err
	}
	return dft, nil
}

// Set writes value at the given key path using a read-merge-write cycle
// under the document lock. With no keys, a map value is deep-merged into
// the existing document (sibling keys survive); any other value replaces
// the document wholesale. On success the cache is refreshed from the
// just-written value instead of re-reading the file.
func (s *Store) Set(ctx context.Context, path string, value any, keys ...string) error {
	return s.update(ctx, path, func(doc Document) (Document, error) {
		if len(keys) == 0 {
			if m, ok := value.(Document); ok {
				mergeNested(doc, m)
				return doc, nil
			}
			if m, ok := value.(map[string]any); ok {
				mergeNested(doc, m)
				return doc, nil
			}
			return nil, services.Wrap(services.ErrConfiguration, "confstore", "set",
				"replacing a whole document requires SetDocument", nil)
		}
		assign(doc, keys, value)
		return doc, nil
	})
}

// SetDocument writes doc as the complete document content. When replace is
// false the document is deep-merged into the existing content instead.
func (s *Store) SetDocument(ctx context.Context, path string, doc Document, replace bool) error {
	return s.update(ctx, path, func(existing Document) (Document, error) {
		if replace {
			return copyDocument(doc), nil
		}
		mergeNested(existing, doc)
		return existing, nil
	})
}

// Delete removes the value at the given key path. Deleting from a list
// value removes the matching element. Deleting a missing key is a no-op.
func (s *Store) Delete(ctx context.Context, path string, keys ...string) error {
	if len(keys) == 0 {
		return services.Wrap(services.ErrConfiguration, "confstore", "delete", "key required", nil)
	}
	return s.update(ctx, path, func(doc Document) (Document, error) {
		unassign(doc, keys)
		return doc, nil
	})
}

// ClearCache drops the cache entry for path, or the whole cache when path
// is empty.
func (s *Store) ClearCache(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == "" {
		s.cache = make(map[string]cacheEntry)
		return
	}
	delete(s.cache, normPath(path))
}

// CacheTime returns the modification time recorded when path was cached.
func (s *Store) CacheTime(path string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[normPath(path)]
	return entry.modTime, ok
}

func (s *Store) update(ctx context.Context, path string, apply func(Document) (Document, error)) error {
	if path == "" {
		return services.Wrap(services.ErrConfiguration, "confstore", "set", "empty document path", nil)
	}
	path = normPath(path)

	doc, err := s.readForUpdate(ctx, path)
	if err != nil {
		return err
	}
	doc, err = apply(doc)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrTransient, "confstore", "set", "create directory for "+path, err)
	}

	lock := lockfile.New(path, lockfile.Options{
		Timeout: s.lockTimeout,
		Delay:   s.lockDelay,
		Logger:  s.logger,
	})
	if err := s.acquireWithPrompt(ctx, lock, path); err != nil {
		return err
	}
	defer lock.Release()

	if err := s.writeDocument(path, doc); err != nil {
		// Leave the cache untouched so stale-but-consistent data keeps
		// being served.
		return err
	}

	s.cacheStore(path, copyDocument(doc))
	return nil
}

// acquireWithPrompt waits for the document lock, asking the prompt port
// whether to retry or force a stale lock when the bounded wait elapses.
func (s *Store) acquireWithPrompt(ctx context.Context, lock *lockfile.Lock, path string) error {
	for {
		err := lock.Acquire(ctx)
		if err == nil {
			return nil
		}
		if !services.Retryable(err) {
			return err
		}
		choice := s.prompt.Ask(prompt.Question{
			Key:     "confstore.write-locked",
			Message: "The document is locked by another process: " + path,
			Choices: []prompt.Choice{prompt.Retry, prompt.ForceRelease, prompt.Cancel},
			Default: prompt.Cancel,
		})
		switch choice {
		case prompt.Retry:
			continue
		case prompt.ForceRelease:
			if ferr := lock.ForceRelease(); ferr != nil {
				return ferr
			}
			continue
		default:
			return err
		}
	}
}

func (s *Store) load(ctx context.Context, path string) (Document, bool, error) {
	if path == "" {
		return nil, false, nil
	}
	path = normPath(path)

	if doc, ok := s.cacheLookup(path); ok {
		return doc, true, nil
	}

	if _, err := os.Stat(path); err != nil {
		migrated, merr := s.ConvertLegacy(ctx, legacyPath(path))
		if merr != nil || migrated == "" {
			return nil, false, merr
		}
		path = migrated
		if _, err := os.Stat(path); err != nil {
			return nil, false, nil
		}
	}

	doc, err := s.readGuarded(ctx, path)
	if err != nil {
		return nil, false, err
	}

	if info, err := os.Stat(path); err == nil {
		s.mu.Lock()
		s.cache[path] = cacheEntry{modTime: info.ModTime(), doc: doc}
		s.mu.Unlock()
	}
	return doc, true, nil
}

func (s *Store) cacheLookup(path string) (Document, bool) {
	s.mu.Lock()
	entry, ok := s.cache[path]
	s.mu.Unlock()
	if !ok {
		return nil, false
	}
	info, err := os.Stat(path)
	if err != nil || !info.ModTime().Equal(entry.modTime) {
		// The file changed (or vanished) under us; fall back to a re-read.
		s.mu.Lock()
		delete(s.cache, path)
		s.mu.Unlock()
		return nil, false
	}
	return entry.doc, true
}

func (s *Store) cacheStore(path string, doc Document) {
	entry := cacheEntry{doc: doc}
	if info, err := os.Stat(path); err == nil {
		entry.modTime = info.ModTime()
	}
	s.mu.Lock()
	s.cache[path] = entry
	s.mu.Unlock()
}

func normPath(path string) string {
	return filepath.Clean(path)
}

func legacyPath(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + ".ini"
}
