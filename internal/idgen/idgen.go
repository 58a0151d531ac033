// Package idgen produces short entity ids.
package idgen

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// Generator returns a new id on every call.
type Generator func() string

// New returns a short base36 token drawn from a random (v4) UUID. Ids are
// unique enough for a single-user store; collisions are not checked.
func New() string {
	u := uuid.New()
	return strconv.FormatUint(binary.BigEndian.Uint64(u[:8]), 36)
}

// Sequence returns a deterministic generator yielding prefix-1, prefix-2, ...
// It is safe for concurrent use.
func Sequence(prefix string) Generator {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
