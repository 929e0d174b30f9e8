package region_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"depotkit/internal/region"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestDetectDirectRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flag":0,"country":"DE"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	d := region.NewDetector(srv.URL, srv.Client(), testLogger(&buf))
	if got := d.Detect(context.Background()); got != region.Direct {
		t.Fatalf("Detect = %v, want Direct", got)
	}
}

func TestDetectMirrorRegion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flag":1,"country":"CN"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	d := region.NewDetector(srv.URL, srv.Client(), testLogger(&buf))
	if got := d.Detect(context.Background()); got != region.Mirror {
		t.Fatalf("Detect = %v, want Mirror", got)
	}
}

func TestDetectFailureDefaultsToMirror(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	d := region.NewDetector(srv.URL, srv.Client(), testLogger(&buf))
	if got := d.Detect(context.Background()); got != region.Mirror {
		t.Fatalf("Detect = %v, want Mirror", got)
	}
	if !strings.Contains(buf.String(), "defaulting to mirror") {
		t.Fatalf("expected warning log, got %q", buf.String())
	}
}

func TestRepeatedDetectDoesNotRelog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"flag":0,"country":"US"}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	d := region.NewDetector(srv.URL, srv.Client(), testLogger(&buf))
	d.Detect(context.Background())
	first := buf.Len()
	d.Detect(context.Background())
	if buf.Len() != first {
		t.Fatalf("second unchanged detection re-logged: %q", buf.String())
	}
}
