package master_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"slate/internal/locations"
	"slate/internal/master"
	"slate/internal/project"
	"slate/internal/testsupport"
	"slate/internal/versions"
)

type fixture struct {
	project *project.Project
	scanner *versions.Scanner
	manager *master.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	p := testsupport.MustLoadProject(t, cfg)
	reg := locations.NewRegistry(p)
	scanner := versions.NewScanner(p, reg)
	return fixture{
		project: p,
		scanner: scanner,
		manager: master.NewManager(p, scanner, reg, nil),
	}
}

func heroModel(version string) project.Context {
	return project.Context{
		Entity:  project.Asset{Path: "Characters/Hero"},
		Product: "model",
		Version: version,
	}
}

func seedVersion(t *testing.T, f fixture, version string) string {
	t.Helper()
	return testsupport.SeedVersion(t, f.project, f.project.Root, heroModel(version),
		"Hero_model_"+version+".abc", "Hero_model_"+version+".fbx")
}

func TestUpdateCreatesMaster(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	ctx := context.Background()

	masterPath, err := f.manager.Update(ctx, src)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if filepath.Base(masterPath) != "master" {
		t.Fatalf("master path %s", masterPath)
	}
	for _, name := range []string{"Hero_model_master.abc", "Hero_model_master.fbx"} {
		if _, err := os.Stat(filepath.Join(masterPath, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	source, ok := f.manager.VersionNumber(ctx, masterPath)
	if !ok || source != "v0002" {
		t.Fatalf("recorded source %q ok=%v", source, ok)
	}
	if label := f.manager.Label(ctx, masterPath); label != "master (v0002)" {
		t.Fatalf("label %q", label)
	}
}

func TestUpdateReplacesWholesale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	src2 := seedVersion(t, f, "v0002")
	if _, err := f.manager.Update(ctx, src2); err != nil {
		t.Fatalf("first update: %v", err)
	}

	src3 := testsupport.SeedVersion(t, f.project, f.project.Root, heroModel("v0003"),
		"Hero_model_v0003.bgeo")
	masterPath, err := f.manager.Update(ctx, src3)
	if err != nil {
		t.Fatalf("second update: %v", err)
	}

	// No stale files from the previous master may survive.
	if _, err := os.Stat(filepath.Join(masterPath, "Hero_model_master.abc")); err == nil {
		t.Fatal("stale file from previous master still present")
	}
	if _, err := os.Stat(filepath.Join(masterPath, "Hero_model_master.bgeo")); err != nil {
		t.Fatalf("new master content missing: %v", err)
	}
	if source, _ := f.manager.VersionNumber(ctx, masterPath); source != "v0003" {
		t.Fatalf("recorded source %q", source)
	}
}

func TestUpdateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		masterPath, err := f.manager.Update(ctx, src)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if source, _ := f.manager.VersionNumber(ctx, masterPath); source != "v0002" {
			t.Fatalf("update %d recorded %q", i, source)
		}
	}
}

func TestUpdateRewritesPreferredFile(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	ctx := context.Background()
	if err := f.scanner.SetPreferredFile(ctx, src, "Hero_model_v0002.fbx"); err != nil {
		t.Fatalf("set preferred: %v", err)
	}

	masterPath, err := f.manager.Update(ctx, src)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, ok, err := f.scanner.ReadSidecar(ctx, masterPath)
	if err != nil || !ok {
		t.Fatalf("sidecar: ok=%v err=%v", ok, err)
	}
	if doc["preferredFile"] != "Hero_model_master.fbx" {
		t.Fatalf("preferredFile %v", doc["preferredFile"])
	}
}

func TestUpdateRejectsNonVersionFolder(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	if _, err := f.manager.Update(context.Background(), dir); err == nil {
		t.Fatal("expected error for non-version folder")
	}
}

func TestHardlinkOptIn(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	t.Setenv(master.EnvHardlink, "1")

	masterPath, err := f.manager.Update(context.Background(), src)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	srcInfo, err := os.Stat(filepath.Join(src, "Hero_model_v0002.abc"))
	if err != nil {
		t.Fatal(err)
	}
	dstInfo, err := os.Stat(filepath.Join(masterPath, "Hero_model_master.abc"))
	if err != nil {
		t.Fatal(err)
	}
	if !os.SameFile(srcInfo, dstInfo) {
		t.Fatal("expected hardlinked master file")
	}
}

func TestHardlinkLeavesSourceSidecarIntact(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	t.Setenv(master.EnvHardlink, "1")
	ctx := context.Background()

	if _, err := f.manager.Update(ctx, src); err != nil {
		t.Fatalf("update: %v", err)
	}

	doc, ok, err := f.scanner.ReadSidecar(ctx, src)
	if err != nil || !ok {
		t.Fatalf("source sidecar: ok=%v err=%v", ok, err)
	}
	if doc["version"] != "v0002" {
		t.Fatalf("source sidecar version %v", doc["version"])
	}
	if _, tainted := doc[versions.KeySourceVersion]; tainted {
		t.Fatalf("source sidecar gained master fields: %v", doc)
	}
}

func TestUpdateKeepsAuxiliaryFileNames(t *testing.T) {
	f := newFixture(t)
	src := seedVersion(t, f, "v0002")
	// Files next to the export output that are not part of it.
	testsupport.WriteFile(t, filepath.Join(src, "turntable_v0002.mov"), 16)
	testsupport.WriteFile(t, filepath.Join(src, "conv123.dat"), 16)

	masterPath, err := f.manager.Update(context.Background(), src)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, name := range []string{"Hero_model_master.abc", "turntable_v0002.mov", "conv123.dat"} {
		if _, err := os.Stat(filepath.Join(masterPath, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
	for _, name := range []string{"turntable_master.mov", "conmaster.dat"} {
		if _, err := os.Stat(filepath.Join(masterPath, name)); err == nil {
			t.Fatalf("auxiliary file was renamed to %s", name)
		}
	}
}

func TestUpdateRenamesShotCamAuxiliaryFiles(t *testing.T) {
	f := newFixture(t)
	c := project.Context{
		Entity:  project.Shot{Sequence: "sq010", Shot: "sh020"},
		Product: "_ShotCam",
		Version: "v0003",
	}
	src := testsupport.SeedVersion(t, f.project, f.project.Root, c,
		"sq010-sh020__ShotCam_v0003.abc")
	testsupport.WriteFile(t, filepath.Join(src, "playblast_v0003.mov"), 16)

	masterPath, err := f.manager.Update(context.Background(), src)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, name := range []string{"sq010-sh020__ShotCam_master.abc", "playblast_master.mov"} {
		if _, err := os.Stat(filepath.Join(masterPath, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}

func TestMasterBecomesLatest(t *testing.T) {
	f := newFixture(t)
	seedVersion(t, f, "v0001")
	src := seedVersion(t, f, "v0002")
	ctx := context.Background()

	if _, err := f.manager.Update(ctx, src); err != nil {
		t.Fatalf("update: %v", err)
	}
	records, err := f.scanner.Scan(ctx, heroModel(""))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	rec, ok, err := f.scanner.Latest(ctx, records, true, "")
	if err != nil || !ok {
		t.Fatalf("latest: ok=%v err=%v", ok, err)
	}
	if rec.Version != "master" {
		t.Fatalf("latest %s, want master", rec.Version)
	}
}

func TestFindOutdated(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entities := []project.Entity{project.Asset{Path: "Characters/Hero"}}

	seedVersion(t, f, "v0001")
	src := seedVersion(t, f, "v0002")

	// No master yet: the product is reported with an empty master side.
	out, err := f.manager.FindOutdated(ctx, entities)
	if err != nil {
		t.Fatalf("outdated: %v", err)
	}
	if len(out) != 1 || out[0].MasterVersion != "" || out[0].LatestVersion != "v0002" {
		t.Fatalf("got %+v", out)
	}

	if _, err := f.manager.Update(ctx, src); err != nil {
		t.Fatalf("update: %v", err)
	}
	out, err = f.manager.FindOutdated(ctx, entities)
	if err != nil {
		t.Fatalf("outdated: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected up-to-date master, got %+v", out)
	}

	seedVersion(t, f, "v0003")
	out, err = f.manager.FindOutdated(ctx, entities)
	if err != nil {
		t.Fatalf("outdated: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %+v", out)
	}
	if out[0].MasterVersion != "v0002" || out[0].LatestVersion != "v0003" {
		t.Fatalf("got %+v", out[0])
	}
}

func TestFindOutdatedIgnoresOtherLocations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	entities := []project.Entity{project.Asset{Path: "Characters/Hero"}}

	src := seedVersion(t, f, "v0002")
	if _, err := f.manager.Update(ctx, src); err != nil {
		t.Fatalf("update: %v", err)
	}
	// A newer version that only exists at another location does not make
	// the master outdated.
	testsupport.SeedVersion(t, f.project, f.project.LocalRoot, heroModel("v0005"),
		"Hero_model_v0005.abc")

	out, err := f.manager.FindOutdated(ctx, entities)
	if err != nil {
		t.Fatalf("outdated: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("cross-location comparison leaked: %+v", out)
	}
}
