// Package logging assembles the structured slog loggers used across slate.
//
// It owns level parsing, console/JSON handler selection, and output routing,
// and exposes thin attr helpers plus a no-op logger for tests and wiring code
// that cannot fail. Prefer these constructors over hand-rolled slog setup so
// every component emits log lines with the same shape.
package logging
