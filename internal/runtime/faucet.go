package runtime

import (
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Faucet applies a token bucket per recipient and evicts idle entries.
// A nil *Faucet allows everything.
type Faucet struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu    sync.Mutex
	byKey map[string]*bucket
	hits  uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewFaucet creates a per-recipient limiter; returns nil if rps or burst is
// not positive.
func NewFaucet(rps float64, burst int, idleTTL time.Duration) *Faucet {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Faucet{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*bucket),
	}
}

// Window is the time an empty bucket takes to refill completely. Grants older
// than that no longer hold a bucket below its burst.
func (f *Faucet) Window() time.Duration {
	if f == nil {
		return 0
	}
	d := float64(f.burst) / float64(f.limit) * float64(time.Second)
	if d >= math.MaxInt64 {
		return math.MaxInt64
	}
	return time.Duration(d)
}

// Allow reports whether one airdrop for key may proceed at now.
func (f *Faucet) Allow(key string, now time.Time) bool {
	if f == nil {
		return true
	}
	key = strings.TrimSpace(key)

	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.byKey[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(f.limit, f.burst)}
		f.byKey[key] = b
	}
	b.lastSeen = now

	f.hits++
	if f.hits%256 == 0 {
		f.evict(now)
	}
	return b.limiter.AllowN(now, 1)
}

// evict drops buckets idle for longer than idleTTL. Caller holds f.mu.
func (f *Faucet) evict(now time.Time) {
	for k, b := range f.byKey {
		if now.Sub(b.lastSeen) > f.idleTTL {
			delete(f.byKey, k)
		}
	}
}
