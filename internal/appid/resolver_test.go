package appid_test

import (
	"reflect"
	"testing"

	"depotkit/internal/appid"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"bare id", "620", "620", true},
		{"store url", "https://store.steampowered.com/app/620/Portal_2/", "620", true},
		{"steamdb url", "https://steamdb.info/app/440/", "440", true},
		{"store url without scheme", "store.steampowered.com/app/730", "730", true},
		{"garbage", "not-an-id", "", false},
		{"empty", "", "", false},
		{"mixed digits", "62a0", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := appid.Extract(tc.input)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("Extract(%q) = (%q, %v), want (%q, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestResolveDedupesAndNormalizes(t *testing.T) {
	inputs := []string{"620", "620", "https://store.steampowered.com/app/620"}
	got := appid.Resolve(inputs, nil)
	if !reflect.DeepEqual(got, []string{"620"}) {
		t.Fatalf("Resolve = %v, want [620]", got)
	}
}

func TestResolveSkipsInvalidPreservesOrder(t *testing.T) {
	inputs := []string{"440", "bogus", "https://steamdb.info/app/620/", "440"}
	got := appid.Resolve(inputs, nil)
	if !reflect.DeepEqual(got, []string{"440", "620"}) {
		t.Fatalf("Resolve = %v, want [440 620]", got)
	}
}
