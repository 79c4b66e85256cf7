// Package services defines the error taxonomy shared by the storage layer.
//
// Failures are tagged with exported sentinel errors so callers can classify
// them with errors.Is without parsing message text: transient I/O problems
// worth retrying, corrupt documents needing an explicit user decision,
// ambiguous queries that refuse to guess, and fatal project misconfiguration.
// Wrap builds tagged errors with consistent component/operation context.
package services
