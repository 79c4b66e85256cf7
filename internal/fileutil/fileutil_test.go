package fileutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	content := []byte("hello world")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	content := []byte("verified copy content")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFileVerified(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestLinkOrCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := LinkOrCopy(src, dst); err != nil {
		t.Fatal(err)
	}
	srcInfo, _ := os.Stat(src)
	dstInfo, _ := os.Stat(dst)
	if !os.SameFile(srcInfo, dstInfo) {
		t.Fatal("expected a hardlink on the same filesystem")
	}
}

func TestCopyTreeRenamesAndCounts(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	for _, name := range []string{"Hero_model_v0007.abc", "Hero_model_v0007.fbx", "aux/notes.txt"} {
		path := filepath.Join(src, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	rename := func(name string) string { return ReplaceVersion(name, "v0007", "master") }
	done, err := CopyTree(context.Background(), src, dst, rename, false)
	if err != nil {
		t.Fatalf("copy tree: %v", err)
	}
	if done != 3 {
		t.Fatalf("got %d files, want 3", done)
	}
	for _, name := range []string{"Hero_model_master.abc", "Hero_model_master.fbx", "aux/notes.txt"} {
		if _, err := os.Stat(filepath.Join(dst, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestCopyTreeStopsOnCancel(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "a.bin"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	done, err := CopyTree(ctx, src, dst, nil, false)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if done != 0 {
		t.Fatalf("completed %d files after cancel", done)
	}
}

func TestReplaceVersion(t *testing.T) {
	cases := []struct{ in, version, want string }{
		{"Hero_model_v0007.abc", "v0007", "Hero_model_master.abc"},
		{"shot_v0012_beauty.0001.exr", "v0012", "shot_master_beauty.0001.exr"},
		{"no_version_here.txt", "v0007", "no_version_here.txt"},
		// Only the exact padded string matches.
		{"conv123.dat", "v0002", "conv123.dat"},
		{"ref_v02.mov", "v0002", "ref_v02.mov"},
	}
	for _, tc := range cases {
		if got := ReplaceVersion(tc.in, tc.version, "master"); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.in, got, tc.want)
		}
	}
}
