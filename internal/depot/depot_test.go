package depot_test

import (
	"errors"
	"reflect"
	"testing"

	"depotkit/internal/depot"
)

func TestKeySetLastWriteWinsKeepsOrder(t *testing.T) {
	set := depot.NewKeySet()
	set.Add("481", "aaaa")
	set.Add("482", "bbbb")
	set.Add("481", "cccc")
	want := []depot.Key{{DepotID: "481", DecryptionKey: "cccc"}, {DepotID: "482", DecryptionKey: "bbbb"}}
	if got := set.All(); !reflect.DeepEqual(got, want) {
		t.Fatalf("All = %v, want %v", got, want)
	}
}

func TestParseKeyConfig(t *testing.T) {
	src := `"depots"
{
	"481"
	{
		"DecryptionKey"		"deadbeef"
	}
	"482"
	{
		"DecryptionKey"		"cafef00d"
	}
}
`
	set, err := depot.ParseKeyConfig([]byte(src))
	if err != nil {
		t.Fatalf("ParseKeyConfig: %v", err)
	}
	keys := set.All()
	if len(keys) != 2 || keys[0].DepotID != "481" || keys[0].DecryptionKey != "deadbeef" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestParseKeyConfigMissingSection(t *testing.T) {
	if _, err := depot.ParseKeyConfig([]byte(`"other" { }`)); !errors.Is(err, depot.ErrKeyConfig) {
		t.Fatalf("expected ErrKeyConfig, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]depot.FileKind{
		"481_abc123.manifest": depot.KindManifest,
		"Key.vdf":             depot.KindKeyConfig,
		"sub/dir/key.vdf":     depot.KindKeyConfig,
		"620.st":              depot.KindContainer,
		"620.lua":             depot.KindScript,
		"README.md":           depot.KindOther,
	}
	for input, want := range cases {
		if got := depot.Classify(input); got != want {
			t.Fatalf("Classify(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseManifestName(t *testing.T) {
	ref, ok := depot.ParseManifestName("481_7520979169916154223.manifest")
	if !ok || ref.DepotID != "481" || ref.Token != "7520979169916154223" {
		t.Fatalf("ParseManifestName = %+v ok=%v", ref, ok)
	}
	if _, ok := depot.ParseManifestName("nope.manifest"); ok {
		t.Fatal("expected grammar mismatch")
	}
}

func TestScanScript(t *testing.T) {
	script := "addappid(480, 1, \"None\")\naddappid(481, 1, \"deadbeef\")\naddappid(482, \"cafef00d\")\n"
	set := depot.ScanScript(script)
	want := []depot.Key{{DepotID: "481", DecryptionKey: "deadbeef"}, {DepotID: "482", DecryptionKey: "cafef00d"}}
	if got := set.All(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ScanScript = %v, want %v", got, want)
	}
}
