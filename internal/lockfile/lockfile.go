// Package lockfile provides cross-process mutual exclusion for pipeline
// documents.
//
// Each guarded path gets a ".lock" sidecar next to it. Writers hold an OS
// advisory lock on the sidecar (gofrs/flock) for as long as the write lasts
// and remove the sidecar on release, so its presence marks a write in
// progress for cooperating processes and human operators alike. The lock is
// advisory: a process that bypasses this package can still corrupt a
// document, which is why every writer in the system routes through
// internal/confstore.
package lockfile

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"slate/internal/logging"
	"slate/internal/services"
)

const (
	// Suffix is appended to the guarded path to form the sidecar name.
	Suffix = ".lock"

	defaultTimeout = 10 * time.Second
	defaultDelay   = 50 * time.Millisecond
)

// Owner describes the process holding a lock, recorded inside the sidecar
// so a human can decide whether a force release is safe.
type Owner struct {
	Host       string    `json:"host"`
	PID        int       `json:"pid"`
	ID         string    `json:"id"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Options tunes lock wait behavior.
type Options struct {
	Timeout time.Duration
	Delay   time.Duration
	Logger  *slog.Logger
}

// Lock guards a single document path.
type Lock struct {
	path     string
	lockPath string
	fl       *flock.Flock
	timeout  time.Duration
	delay    time.Duration
	logger   *slog.Logger
	held     bool
}

// New creates a lock for the given document path. The lock is not acquired.
func New(path string, opts Options) *Lock {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = defaultDelay
	}
	lockPath := path + Suffix
	return &Lock{
		path:     path,
		lockPath: lockPath,
		fl:       flock.New(lockPath),
		timeout:  timeout,
		delay:    delay,
		logger:   logging.NewComponentLogger(opts.Logger, "lockfile"),
	}
}

// Path returns the sidecar path.
func (l *Lock) Path() string { return l.lockPath }

// Acquire takes the exclusive lock, waiting up to the configured timeout.
// A timeout yields an error tagged services.ErrLocked.
func (l *Lock) Acquire(ctx context.Context) error {
	if l.held {
		return nil
	}
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ok, err := l.fl.TryLockContext(waitCtx, l.delay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTransient, "lockfile", "acquire", l.lockPath, err)
	}
	if !ok {
		return services.Wrap(services.ErrLocked, "lockfile", "acquire", "timeout waiting for "+l.lockPath, nil)
	}
	l.held = true
	l.writeOwner()
	return nil
}

// Release drops the lock and removes the sidecar. Safe to call when the
// lock is not held.
func (l *Lock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := l.fl.Unlock(); err != nil {
		return services.Wrap(services.ErrTransient, "lockfile", "release", l.lockPath, err)
	}
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		l.logger.Warn("could not remove lock sidecar",
			logging.String("lock", l.lockPath), logging.Error(err))
	}
	return nil
}

// WaitUntilReady blocks until no writer holds the lock, up to the configured
// timeout. It is used before reads to avoid observing a half-written
// document. A returned error tagged services.ErrLocked means the lock was
// still held (or a stale sidecar remains) when the wait elapsed.
func (l *Lock) WaitUntilReady(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	for {
		if !l.sidecarExists() {
			return nil
		}
		ok, err := l.fl.TryRLockContext(waitCtx, l.delay)
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTransient, "lockfile", "wait", l.lockPath, err)
		}
		if ok {
			stale := l.sidecarExists()
			if stale {
				// flock opens the sidecar with O_CREATE, so if the writer
				// removed it between our existence check and the lock
				// attempt we just recreated it empty. An ownerless sidecar
				// under a held read lock cannot belong to a live writer;
				// clean it up instead of reporting it stale forever.
				if _, hasOwner := l.Owner(); !hasOwner {
					_ = os.Remove(l.lockPath)
					stale = false
				}
			}
			_ = l.fl.Unlock()
			if stale {
				// Nobody holds the lock but an owner record remains: the
				// owner died mid-write. Surface it so the caller can force
				// release.
				return services.Wrap(services.ErrLocked, "lockfile", "wait", "stale lock "+l.lockPath, nil)
			}
			return nil
		}
		select {
		case <-waitCtx.Done():
			return services.Wrap(services.ErrLocked, "lockfile", "wait", "timeout waiting for "+l.lockPath, nil)
		case <-time.After(l.delay):
		}
	}
}

// IsLocked reports whether the sidecar currently exists.
func (l *Lock) IsLocked() bool { return l.sidecarExists() }

// ForceRelease removes the sidecar regardless of ownership. This is the
// human-operator escape hatch for stale locks and is logged as a risk:
// forcing while the owner is alive can corrupt the document.
func (l *Lock) ForceRelease() error {
	owner, hasOwner := l.Owner()
	attrs := []logging.Attr{logging.String("lock", l.lockPath)}
	if hasOwner {
		attrs = append(attrs,
			logging.String("owner_host", owner.Host),
			logging.Int("owner_pid", owner.PID))
	}
	l.logger.Warn("force releasing lock; concurrent writer may lose data", logging.Args(attrs...)...)
	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return services.Wrap(services.ErrTransient, "lockfile", "force-release", l.lockPath, err)
	}
	return nil
}

// Owner reads the owner record from the sidecar, if one is present.
func (l *Lock) Owner() (Owner, bool) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil || len(data) == 0 {
		return Owner{}, false
	}
	var owner Owner
	if err := json.Unmarshal(data, &owner); err != nil {
		return Owner{}, false
	}
	return owner, true
}

func (l *Lock) writeOwner() {
	host, _ := os.Hostname()
	owner := Owner{
		Host:       host,
		PID:        os.Getpid(),
		ID:         uuid.NewString(),
		AcquiredAt: time.Now().UTC(),
	}
	data, err := json.Marshal(owner)
	if err != nil {
		return
	}
	if err := os.WriteFile(l.lockPath, data, 0o644); err != nil {
		l.logger.Debug("could not record lock owner",
			logging.String("lock", l.lockPath), logging.Error(err))
	}
}

func (l *Lock) sidecarExists() bool {
	_, err := os.Stat(l.lockPath)
	return err == nil
}
