// Package ratelimit enforces per-client request budgets.
//
// Each tier is a "<count>/<unit>" budget. Every (tier, client) pair counts
// requests in a fixed window that opens with its first request; once count
// requests have been admitted the rest are rejected until the window ends.
package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Tier names.
const (
	TierDefault = "default"
	TierAdmin   = "admin"
	TierUser    = "user"
	TierStrict  = "strict"
)

// DefaultMaxKeys bounds the number of tracked (tier, client) windows.
const DefaultMaxKeys = 10000

// Tier is a request budget: Count requests per Window.
type Tier struct {
	Count  int
	Window time.Duration
}

// String formats the tier the way ParseTier accepts it.
func (t Tier) String() string {
	unit := "second"
	switch t.Window {
	case time.Minute:
		unit = "minute"
	case time.Hour:
		unit = "hour"
	case 24 * time.Hour:
		unit = "day"
	case time.Second:
	default:
		return fmt.Sprintf("%d/%s", t.Count, t.Window)
	}
	return fmt.Sprintf("%d/%s", t.Count, unit)
}

// ParseTier parses strings like "100/minute".
func ParseTier(s string) (Tier, error) {
	count, unit, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Tier{}, fmt.Errorf("invalid rate limit %q: expected <count>/<unit>", s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(count))
	if err != nil || n <= 0 {
		return Tier{}, fmt.Errorf("invalid rate limit %q: count must be a positive integer", s)
	}
	var window time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "second", "seconds", "s":
		window = time.Second
	case "minute", "minutes", "m":
		window = time.Minute
	case "hour", "hours", "h":
		window = time.Hour
	case "day", "days", "d":
		window = 24 * time.Hour
	default:
		return Tier{}, fmt.Errorf("invalid rate limit %q: unknown unit %q", s, unit)
	}
	return Tier{Count: n, Window: window}, nil
}

// DefaultTiers returns the built-in budgets.
func DefaultTiers() map[string]Tier {
	return map[string]Tier{
		TierDefault: {Count: 100, Window: time.Minute},
		TierAdmin:   {Count: 200, Window: time.Minute},
		TierUser:    {Count: 50, Window: time.Minute},
		TierStrict:  {Count: 10, Window: time.Minute},
	}
}

type windowKey struct {
	tier   string
	client string
}

// window counts the requests admitted since start.
type window struct {
	start time.Time
	n     int
}

// Limiter tracks per-client request windows for a fixed set of tiers.
type Limiter struct {
	tiers map[string]Tier

	mu      sync.Mutex
	windows *lru.Cache[windowKey, *window]

	now func() time.Time
}

// New creates a Limiter for tiers, tracking at most maxKeys windows. The
// least recently used window is dropped when the cache is full.
func New(tiers map[string]Tier, maxKeys int) (*Limiter, error) {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	cache, err := lru.New[windowKey, *window](maxKeys)
	if err != nil {
		return nil, fmt.Errorf("rate limit cache: %w", err)
	}
	copied := make(map[string]Tier, len(tiers))
	for name, t := range tiers {
		if t.Count <= 0 || t.Window <= 0 {
			return nil, fmt.Errorf("rate limit tier %q: invalid budget %v", name, t)
		}
		copied[name] = t
	}
	return &Limiter{tiers: copied, windows: cache, now: time.Now}, nil
}

// Tiers returns a copy of the configured tiers.
func (l *Limiter) Tiers() map[string]Tier {
	out := make(map[string]Tier, len(l.tiers))
	for k, v := range l.tiers {
		out[k] = v
	}
	return out
}

// Allow counts one request from client in tier and reports whether it fits
// the budget. Unknown tiers are not limited.
func (l *Limiter) Allow(tier, client string) bool {
	ok, _ := l.Check(tier, client)
	return ok
}

// Check is Allow that also returns, for a rejected request, how long until
// client's window in tier ends.
func (l *Limiter) Check(tier, client string) (bool, time.Duration) {
	t, ok := l.tiers[tier]
	if !ok {
		return true, 0
	}
	now := l.now()
	key := windowKey{tier: tier, client: client}

	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows.Get(key)
	if !ok || now.Sub(w.start) >= t.Window {
		w = &window{start: now}
		l.windows.Add(key, w)
	}
	if w.n >= t.Count {
		return false, w.start.Add(t.Window).Sub(now)
	}
	w.n++
	return true, 0
}
