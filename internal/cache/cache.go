// Package cache memoizes serialized ranking output. Ranking is a pure function
// of (dataset version, punt set, options), so those make up the key.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key builds "fantasy-lab:v<version>:<kind>:<parts...>".
func Key(version uint64, kind string, parts ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "fantasy-lab:v%d:%s", version, kind)
	for _, p := range parts {
		b.WriteByte(':')
		b.WriteString(p)
	}
	return b.String()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }
