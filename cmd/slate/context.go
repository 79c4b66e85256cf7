package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"slate/internal/config"
	"slate/internal/confstore"
	"slate/internal/ingest"
	"slate/internal/locations"
	"slate/internal/logging"
	"slate/internal/master"
	"slate/internal/project"
	"slate/internal/prompt"
	"slate/internal/versions"
)

// commandContext wires the library stack once per invocation and hands the
// pieces to every command.
type commandContext struct {
	configFlag *string

	once sync.Once
	err  error

	cfg      *config.Config
	logger   *slog.Logger
	store    *confstore.Store
	project  *project.Project
	registry *locations.Registry
	scanner  *versions.Scanner
	manager  *master.Manager
	ingestor *ingest.Ingestor

	// answers maps decision keys to non-interactive choices set by
	// command flags; unanswered questions fall back to their defaults.
	answers map[string]prompt.Choice
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		answers:    map[string]prompt.Choice{},
	}
}

func (c *commandContext) ensure() error {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.err = err
			return
		}
		c.cfg = cfg

		paths := []string{"stderr"}
		if cfg.Logging.Dir != "" {
			paths = append(paths, filepath.Join(cfg.Logging.Dir, "slate.log"))
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: paths,
		})
		if err != nil {
			c.err = err
			return
		}
		c.logger = logger

		c.store = confstore.New(confstore.Options{
			Prompt:             prompt.Static{Answers: c.answers},
			Logger:             logger,
			PreferredExtension: cfg.DocExtension(),
			LockTimeout:        time.Duration(cfg.Locking.TimeoutSeconds) * time.Second,
			LockDelay:          time.Duration(cfg.Locking.RetryDelayMS) * time.Millisecond,
		})

		p, err := project.Load(context.Background(), cfg, c.store, logger)
		if err != nil {
			c.err = err
			return
		}
		c.project = p
		c.registry = locations.NewRegistry(p)
		c.scanner = versions.NewScanner(p, c.registry)
		c.manager = master.NewManager(p, c.scanner, c.registry, prompt.Static{Answers: c.answers})
		c.ingestor = ingest.New(p, c.scanner, c.registry)
	})
	return c.err
}

// answer pre-seeds a prompt decision from a command flag.
func (c *commandContext) answer(key string, choice prompt.Choice) {
	c.answers[key] = choice
}
