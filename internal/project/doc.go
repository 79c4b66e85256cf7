// Package project holds the per-project state every other component is
// handed explicitly: storage roots, the folder-structure template table,
// version-number conventions and the current user. Nothing in this module
// is process-global; callers construct one Project and pass it down.
package project
