package depot

import (
	"errors"
	"fmt"
	"regexp"

	"depotkit/internal/keyvalues"
)

// Key pairs a depot id with its hex decryption key.
type Key struct {
	DepotID       string
	DecryptionKey string
}

// KeySet holds depot keys with last-write-wins semantics per depot id while
// preserving first-insertion order for deterministic output.
type KeySet struct {
	order []string
	keys  map[string]string
}

// NewKeySet returns an empty key set.
func NewKeySet() *KeySet {
	return &KeySet{keys: make(map[string]string)}
}

// Add inserts or overwrites the key for a depot id.
func (s *KeySet) Add(depotID, key string) {
	if _, ok := s.keys[depotID]; !ok {
		s.order = append(s.order, depotID)
	}
	s.keys[depotID] = key
}

// Merge folds every key from other into s, other winning on conflicts.
func (s *KeySet) Merge(other *KeySet) {
	if other == nil {
		return
	}
	for _, k := range other.All() {
		s.Add(k.DepotID, k.DecryptionKey)
	}
}

// All returns keys in first-insertion order.
func (s *KeySet) All() []Key {
	out := make([]Key, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Key{DepotID: id, DecryptionKey: s.keys[id]})
	}
	return out
}

// Len reports the number of distinct depot ids.
func (s *KeySet) Len() int { return len(s.order) }

// ErrKeyConfig marks an unparsable key configuration file.
var ErrKeyConfig = errors.New("key config parse error")

// ParseKeyConfig extracts depot keys from a key.vdf payload shaped as
// {depots: {depotId: {DecryptionKey: hex}}}.
func ParseKeyConfig(data []byte) (*KeySet, error) {
	root, err := keyvalues.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyConfig, err)
	}
	depots := root.ChildFold("depots")
	if depots == nil {
		return nil, fmt.Errorf("%w: no depots section", ErrKeyConfig)
	}
	set := NewKeySet()
	for _, d := range depots.Children {
		key := d.ChildFold("DecryptionKey")
		if key == nil || !key.HasValue {
			continue
		}
		set.Add(d.Key, key.Value)
	}
	return set, nil
}

var scriptKeyPattern = regexp.MustCompile(`addappid\((\d+),\s*(?:1,\s*)?"([^"]+)"\)`)

// ScanScript recovers depot keys from previously generated script text.
// Bootstrap entries carrying the "None" placeholder are skipped.
func ScanScript(content string) *KeySet {
	set := NewKeySet()
	for _, m := range scriptKeyPattern.FindAllStringSubmatch(content, -1) {
		if m[2] == "None" {
			continue
		}
		set.Add(m[1], m[2])
	}
	return set
}
