package archive_test

import (
	"archive/zip"
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"depotkit/internal/archive"
	"depotkit/internal/container"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func staticSource(url string) archive.Source {
	return archive.NewSource("test", "Test", func(string) string { return url })
}

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, data := range files {
		f, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// encodeContainer builds a container payload that container.Decode accepts.
func encodeContainer(t *testing.T, script string, seed uint32) []byte {
	t.Helper()
	plain := append(make([]byte, 512), []byte(script)...)
	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	key := container.EffectiveKey(seed)
	payload := compressed.Bytes()
	for i := range payload {
		payload[i] ^= key
	}

	out := make([]byte, 12+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], seed)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(payload)))
	copy(out[12:], payload)
	return out
}

func TestSourceURLs(t *testing.T) {
	cases := map[string]string{
		"swa":           "https://api.printedwaste.com/gfk/download/480",
		"cysaw":         "https://cysaw.top/uploads/480.zip",
		"furcate":       "https://furcate.eu/files/480.zip",
		"cngs":          "https://assiw.cngames.site/qindan/480.zip",
		"steamdatabase": "https://steamdatabase.s3.eu-north-1.amazonaws.com/480.zip",
	}
	for name, want := range cases {
		src, ok := archive.SourceByName(name)
		if !ok {
			t.Fatalf("source %q not found", name)
		}
		if got := src.URL("480"); got != want {
			t.Fatalf("%s URL = %q, want %q", name, got, want)
		}
	}
	if _, ok := archive.SourceByName("nope"); ok {
		t.Fatal("unknown source should not resolve")
	}
}

func TestFetchHarvestsArchive(t *testing.T) {
	script := "addappid(481, 1, \"aabb\")\n"
	zipData := buildZip(t, map[string][]byte{
		"481_111.manifest": []byte("manifest"),
		"480.st":           encodeContainer(t, script, 7),
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	}))
	defer srv.Close()

	scratch := t.TempDir()
	engine := archive.NewEngine(scratch, 5*time.Second, testLogger()).WithHTTPClient(srv.Client())
	payload, err := engine.Fetch(context.Background(), staticSource(srv.URL), "480")
	if err != nil {
		t.Fatal(err)
	}
	defer payload.Close()

	if len(payload.ManifestPaths) != 1 {
		t.Fatalf("manifests = %v", payload.ManifestPaths)
	}
	if len(payload.Manifests) != 1 || payload.Manifests[0].DepotID != "481" || payload.Manifests[0].Token != "111" {
		t.Fatalf("manifest refs = %+v", payload.Manifests)
	}
	keys := payload.Keys.All()
	if len(keys) != 1 || keys[0].DepotID != "481" || keys[0].DecryptionKey != "aabb" {
		t.Fatalf("keys = %+v", keys)
	}

	if err := payload.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(payload.Dir); !os.IsNotExist(err) {
		t.Fatal("scratch dir survived Close")
	}
}

func TestFetchKeyConfigWinsOverScripts(t *testing.T) {
	keyVDF := "\"depots\"\n{\n\t\"900\"\n\t{\n\t\t\"DecryptionKey\"\t\t\"fromvdf\"\n\t}\n}\n"
	zipData := buildZip(t, map[string][]byte{
		"key.vdf": []byte(keyVDF),
		"480.lua": []byte("addappid(901, 1, \"fromlua\")\n"),
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	}))
	defer srv.Close()

	engine := archive.NewEngine(t.TempDir(), 5*time.Second, testLogger()).WithHTTPClient(srv.Client())
	payload, err := engine.Fetch(context.Background(), staticSource(srv.URL), "480")
	if err != nil {
		t.Fatal(err)
	}
	defer payload.Close()

	keys := payload.Keys.All()
	if len(keys) != 1 || keys[0].DepotID != "900" {
		t.Fatalf("keys = %+v, want key config only", keys)
	}
}

func TestFetchCleansScratchOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	scratch := t.TempDir()
	engine := archive.NewEngine(scratch, 5*time.Second, testLogger()).WithHTTPClient(srv.Client())
	_, err := engine.Fetch(context.Background(), staticSource(srv.URL), "480")
	if err == nil {
		t.Fatal("expected download failure")
	}
	if _, err := os.Stat(filepath.Join(scratch, "480")); !os.IsNotExist(err) {
		t.Fatal("scratch dir survived failed fetch")
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	zipData := buildZip(t, map[string][]byte{
		"../escape.txt": []byte("bad"),
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(zipData)
	}))
	defer srv.Close()

	engine := archive.NewEngine(t.TempDir(), 5*time.Second, testLogger()).WithHTTPClient(srv.Client())
	_, err := engine.Fetch(context.Background(), staticSource(srv.URL), "480")
	if err == nil {
		t.Fatal("expected traversal rejection")
	}
}
