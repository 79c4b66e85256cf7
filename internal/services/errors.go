package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks recoverable I/O failures: permission denied, disk
	// full, a file held open by another process. Retrying may succeed.
	ErrTransient = errors.New("transient io error")
	// ErrLocked marks a bounded lock wait that elapsed without acquiring
	// the document lock.
	ErrLocked = errors.New("document locked")
	// ErrCorrupt marks a document that exists but cannot be parsed.
	ErrCorrupt = errors.New("corrupt document")
	// ErrAmbiguous marks queries with more than one equally valid answer.
	// The layer returns no result rather than guessing.
	ErrAmbiguous = errors.New("ambiguous query")
	// ErrNotFound marks lookups whose subject does not exist on disk.
	ErrNotFound = errors.New("not found")
	// ErrConfiguration marks project misconfiguration: unknown templates,
	// unknown locations, unresolvable tokens. Not retryable.
	ErrConfiguration = errors.New("configuration error")
	// ErrCanceled marks operations stopped by the caller between files.
	ErrCanceled = errors.New("canceled")
)

// Wrap builds an error that includes component context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether the caller may reasonably retry the operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrLocked)
}

// Fatal reports whether the error indicates project misconfiguration rather
// than a runtime race.
func Fatal(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "storage failure"
	}
	return strings.Join(parts, ": ")
}
