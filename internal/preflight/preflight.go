// Package preflight provides readiness checks for the filesystem roots the
// version store depends on.
//
// The CLI "slate preflight" command runs RunAll and renders the results;
// bulk tools run it before long ingest or master-update batches so a
// mis-mounted root fails fast instead of partway through a copy.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"slate/internal/config"
)

// minFreeBytes is the floor below which a root is reported as full.
const minFreeBytes = 1 << 30

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every applicable check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Project root", cfg.Project.Root))
	results = append(results, CheckDiskSpace("Project root space", cfg.Project.Root))
	if cfg.UseLocal() {
		results = append(results, CheckDirectoryAccess("Local root", cfg.Project.LocalRoot))
		results = append(results, CheckDiskSpace("Local root space", cfg.Project.LocalRoot))
	}
	results = append(results, CheckLockDir(cfg))
	return results
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDiskSpace verifies the filesystem under path has headroom left.
func CheckDiskSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (%.1f GiB free, below minimum)", path, gib(free))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%.1f GiB free)", path, gib(free))}
}

// CheckLockDir verifies lockfiles can be created where the pipeline
// document lives.
func CheckLockDir(cfg *config.Config) Result {
	const name = "Lock directory"
	dir := filepath.Dir(cfg.PipelineConfigPath())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", dir, err)}
	}
	probe, err := os.CreateTemp(dir, ".lockcheck-*")
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not writable: %v)", dir, err)}
	}
	probe.Close()
	os.Remove(probe.Name())
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (writable)", dir)}
}

func gib(b uint64) float64 {
	return float64(b) / (1 << 30)
}
