package synth_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depotkit/internal/depot"
	"depotkit/internal/synth"
	"depotkit/internal/unlocker"
)

func TestBuildScriptLocked(t *testing.T) {
	keys := depot.NewKeySet()
	keys.Add("481", "aabb")
	keys.Add("482", "ccdd")
	got := synth.BuildScript(synth.ScriptInput{
		AppID: "480",
		Keys:  keys,
		Manifests: []depot.ManifestRef{
			{DepotID: "481", Token: "111"},
			{DepotID: "482", Token: "222"},
		},
		Policy: unlocker.Locked,
	})
	want := `addappid(480, 1, "None")
addappid(481, 1, "aabb")
addappid(482, 1, "ccdd")
setManifestid(481, "111")
setManifestid(482, "222")
`
	if got != want {
		t.Fatalf("script mismatch:\n%s", got)
	}
}

func TestBuildScriptFloatingCommentsPins(t *testing.T) {
	got := synth.BuildScript(synth.ScriptInput{
		AppID:     "480",
		Manifests: []depot.ManifestRef{{DepotID: "481", Token: "111"}},
		Policy:    unlocker.Floating,
	})
	if !strings.Contains(got, `--setManifestid(481, "111")`) {
		t.Fatalf("expected commented pin, got:\n%s", got)
	}
}

func TestWriteScript(t *testing.T) {
	layout := unlocker.Layout{Root: t.TempDir()}
	dest, err := synth.WriteScript(synth.ScriptInput{AppID: "480"}, layout)
	if err != nil {
		t.Fatal(err)
	}
	if dest != filepath.Join(layout.PluginDir(), "480.lua") {
		t.Fatalf("unexpected destination %q", dest)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "addappid(480, 1, \"None\")") {
		t.Fatalf("missing bootstrap line:\n%s", data)
	}
}

func TestScriptRoundTripsThroughScan(t *testing.T) {
	keys := depot.NewKeySet()
	keys.Add("481", "aabb")
	script := synth.BuildScript(synth.ScriptInput{AppID: "480", Keys: keys})
	recovered := depot.ScanScript(script)
	all := recovered.All()
	if len(all) != 1 || all[0].DepotID != "481" || all[0].DecryptionKey != "aabb" {
		t.Fatalf("scan recovered %+v", all)
	}
}

func TestInstallFileDrop(t *testing.T) {
	layout := unlocker.Layout{Root: t.TempDir()}
	src := filepath.Join(t.TempDir(), "481_111.manifest")
	if err := os.WriteFile(src, []byte("manifest"), 0o644); err != nil {
		t.Fatal(err)
	}

	keys := depot.NewKeySet()
	keys.Add("481", "aabb")
	err := synth.InstallFileDrop(synth.FileDropInput{
		AppID:         "480",
		ManifestPaths: []string{src},
		Keys:          keys,
	}, layout)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(layout.DepotCacheDir(), "481_111.manifest")); err != nil {
		t.Fatalf("manifest not installed: %v", err)
	}
	first, err := os.ReadFile(filepath.Join(layout.AppListDir(), "0.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != "480" {
		t.Fatalf("first marker = %q, want app id", first)
	}
	second, err := os.ReadFile(filepath.Join(layout.AppListDir(), "1.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(second) != "481" {
		t.Fatalf("second marker = %q, want depot id", second)
	}
}

func TestInstallFileDropContinuesNumbering(t *testing.T) {
	layout := unlocker.Layout{Root: t.TempDir()}
	if err := os.MkdirAll(layout.AppListDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(layout.AppListDir(), "3.txt"), []byte("999"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := filepath.Join(t.TempDir(), "481_111.manifest")
	if err := os.WriteFile(src, []byte("m"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := synth.InstallFileDrop(synth.FileDropInput{
		AppID:         "480",
		ManifestPaths: []string{src},
	}, layout)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(layout.AppListDir(), "4.txt")); err != nil {
		t.Fatalf("expected marker 4.txt after existing 3.txt: %v", err)
	}
}

func TestInstallFileDropRequiresManifests(t *testing.T) {
	err := synth.InstallFileDrop(synth.FileDropInput{AppID: "480"}, unlocker.Layout{Root: t.TempDir()})
	if err != synth.ErrNoManifests {
		t.Fatalf("err = %v, want ErrNoManifests", err)
	}
}
