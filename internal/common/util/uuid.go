package util

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid"
)

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewULID returns a fresh lowercase ULID. The shared entropy source is
// guarded by a mutex, so ids may be generated concurrently.
func NewULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return strings.ToLower(ulid.MustNew(ulid.Now(), ulidEntropy).String())
}
