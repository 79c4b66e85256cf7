// Package confstore is the durable, process-shared store for small pipeline
// documents: version sidecars, the project pipeline document, custom
// location tables.
//
// Documents are YAML or JSON key/value maps, dispatched by file extension.
// Reads are served from an in-process cache keyed by normalized path and
// invalidated by file modification time; writes are read-merge-write cycles
// guarded by a per-path lockfile so concurrent processes never interleave.
// Old flat INI documents are migrated to the structured format on first
// access.
//
// The store never presents UI. Lock contention and unparsable documents are
// resolved through the prompt port; headless callers get a safe cancel.
package confstore
