package category

import (
	"errors"
	"fmt"
	"strings"
)

// Key identifies one of the nine scoring categories.
type Key string

const (
	FGPct Key = "fg_pct"
	FTPct Key = "ft_pct"
	TPM   Key = "tpm"
	PTS   Key = "pts"
	REB   Key = "reb"
	AST   Key = "ast"
	STL   Key = "stl"
	BLK   Key = "blk"
	TO    Key = "to"
)

var ErrUnknownCategory = errors.New("unknown category")

type definition struct {
	key           Key
	label         string
	lowerIsBetter bool
}

// Canonical order. Everything that iterates categories goes through this table.
var definitions = []definition{
	{FGPct, "FG%", false},
	{FTPct, "FT%", false},
	{TPM, "3PM", false},
	{PTS, "PTS", false},
	{REB, "REB", false},
	{AST, "AST", false},
	{STL, "STL", false},
	{BLK, "BLK", false},
	{TO, "TO", true},
}

var index = func() map[Key]int {
	m := make(map[Key]int, len(definitions))
	for i, d := range definitions {
		m[d.key] = i
	}
	return m
}()

// All returns every category key in canonical order. The slice is a copy.
func All() []Key {
	out := make([]Key, len(definitions))
	for i, d := range definitions {
		out[i] = d.key
	}
	return out
}

func Count() int { return len(definitions) }

func (k Key) Valid() bool {
	_, ok := index[k]
	return ok
}

// Label is the display label ("FG%", "3PM", ...). Unknown keys return the raw key.
func (k Key) Label() string {
	if i, ok := index[k]; ok {
		return definitions[i].label
	}
	return string(k)
}

// LowerIsBetter reports whether a smaller raw value is the better one (turnovers).
func (k Key) LowerIsBetter() bool {
	if i, ok := index[k]; ok {
		return definitions[i].lowerIsBetter
	}
	return false
}

func (k Key) String() string { return string(k) }

// Parse normalizes s and checks it against the fixed set.
func Parse(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return k, nil
}

// Info is the serializable description of a category.
type Info struct {
	Key           Key    `json:"key"`
	Label         string `json:"label"`
	LowerIsBetter bool   `json:"lower_is_better"`
}

func Describe() []Info {
	out := make([]Info, 0, len(definitions))
	for _, d := range definitions {
		out = append(out, Info{Key: d.key, Label: d.label, LowerIsBetter: d.lowerIsBetter})
	}
	return out
}
