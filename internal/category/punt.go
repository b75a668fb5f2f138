package category

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PuntSet is an immutable set of categories excluded from total value.
// The zero value is the empty set.
type PuntSet struct {
	keys map[Key]struct{}
}

// ParsePuntSet builds a set from raw keys. Unknown keys fail the whole parse;
// duplicates collapse. Blank entries are skipped so "a,,b" style query strings work.
func ParsePuntSet(raw []string) (PuntSet, error) {
	keys := make(map[Key]struct{}, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		k, err := Parse(r)
		if err != nil {
			return PuntSet{}, err
		}
		keys[k] = struct{}{}
	}
	return PuntSet{keys: keys}, nil
}

// ParsePuntList parses a comma-separated list such as "to,fg_pct".
func ParsePuntList(s string) (PuntSet, error) {
	if strings.TrimSpace(s) == "" {
		return PuntSet{}, nil
	}
	return ParsePuntSet(strings.Split(s, ","))
}

// NewPuntSet is ParsePuntSet for keys already known to be valid; it panics otherwise.
func NewPuntSet(keys ...Key) PuntSet {
	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = string(k)
	}
	ps, err := ParsePuntSet(raw)
	if err != nil {
		panic(err)
	}
	return ps
}

// PuntAll returns the set containing every category.
func PuntAll() PuntSet {
	return NewPuntSet(All()...)
}

func (p PuntSet) Contains(k Key) bool {
	_, ok := p.keys[k]
	return ok
}

func (p PuntSet) Len() int { return len(p.keys) }

// Keys returns the punted keys in canonical order.
func (p PuntSet) Keys() []Key {
	out := make([]Key, 0, len(p.keys))
	for _, k := range All() {
		if p.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

// Active returns the non-punted keys in canonical order.
func (p PuntSet) Active() []Key {
	out := make([]Key, 0, Count()-len(p.keys))
	for _, k := range All() {
		if !p.Contains(k) {
			out = append(out, k)
		}
	}
	return out
}

// Toggle returns a new set with k flipped. The receiver is not modified.
func (p PuntSet) Toggle(k Key) (PuntSet, error) {
	if !k.Valid() {
		return PuntSet{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(k))
	}
	keys := make(map[Key]struct{}, len(p.keys)+1)
	for existing := range p.keys {
		keys[existing] = struct{}{}
	}
	if _, ok := keys[k]; ok {
		delete(keys, k)
	} else {
		keys[k] = struct{}{}
	}
	return PuntSet{keys: keys}, nil
}

// String is the canonical comma-joined form; equal sets give equal strings.
func (p PuntSet) String() string {
	keys := p.Keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

func (p PuntSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Keys())
}

func (p *PuntSet) UnmarshalJSON(b []byte) error {
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	ps, err := ParsePuntSet(raw)
	if err != nil {
		return err
	}
	*p = ps
	return nil
}
