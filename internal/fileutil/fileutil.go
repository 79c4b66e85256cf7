package fileutil

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// CopyFile streams src to dst using io.Copy with default permissions (0o644).
func CopyFile(src, dst string) error {
	return CopyFileMode(src, dst, 0o644)
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

// CopyFileVerified streams src to dst with SHA256 + size integrity verification.
// Removes dst on mismatch.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}

	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	return nil
}

// LinkOrCopy hardlinks src to dst, falling back to a plain copy when the
// link fails (different filesystem, unsupported).
func LinkOrCopy(src, dst string) error {
	if err := os.Link(src, dst); err == nil {
		return nil
	}
	return CopyFile(src, dst)
}

// RenameFunc maps a source filename to its destination filename.
type RenameFunc func(name string) string

// CopyTree copies every regular file under src into dst, applying rename to
// each filename and preserving the relative directory layout. Hardlink
// swaps the copy for os.Link where possible. The context is checked before
// every file; on cancellation no further files are processed and the count
// of files already completed is returned alongside the error.
func CopyTree(ctx context.Context, src, dst string, rename RenameFunc, hardlink bool) (int, error) {
	if rename == nil {
		rename = func(name string) string { return name }
	}

	var files []string
	err := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	sort.Strings(files)

	done := 0
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		rel, err := filepath.Rel(src, file)
		if err != nil {
			return done, err
		}
		dir, name := filepath.Split(rel)
		target := filepath.Join(dst, dir, rename(name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return done, err
		}
		if hardlink {
			err = LinkOrCopy(file, target)
		} else {
			err = CopyFile(file, target)
		}
		if err != nil {
			return done, fmt.Errorf("copy %s: %w", file, err)
		}
		done++
	}
	return done, nil
}

// ReplaceVersion rewrites the exact version string embedded in a filename,
// e.g. "Hero_model_v0007.abc" with "v0007" and "master" becomes
// "Hero_model_master.abc". The match is padding-exact, so unrelated digit
// runs ("conv123", "v07") survive untouched.
func ReplaceVersion(name, version, replacement string) string {
	if version == "" {
		return name
	}
	return strings.ReplaceAll(name, version, replacement)
}
