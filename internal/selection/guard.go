package selection

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Guard hands out generation tickets per tab key and topic. Starting a newer request
// for the same topic, or changing the tab's scope, makes older tickets stale so only
// the latest response is used.
type Guard struct {
	mu       sync.Mutex
	next     uint64
	scopes   map[string]uint64
	requests map[string]map[string]uint64
	touched  map[string]time.Time
	now      func() time.Time
}

func NewGuard() *Guard {
	return &Guard{
		scopes:   make(map[string]uint64),
		requests: make(map[string]map[string]uint64),
		touched:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// Ticket identifies one request generation.
type Ticket struct {
	guard    *Guard
	key      string
	topic    string
	scopeGen uint64
	gen      uint64
}

// Begin starts a new generation of topic for key against the scope as it is now.
func (g *Guard) Begin(key, topic string) Ticket {
	if g == nil {
		return Ticket{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.begin(key, topic, g.scopes[key])
}

// BeginAt is Begin for a caller that read the scope when it was at scopeGen. The
// ticket is already stale if the scope changed since.
func (g *Guard) BeginAt(key, topic string, scopeGen uint64) Ticket {
	if g == nil {
		return Ticket{}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.begin(key, topic, scopeGen)
}

// ScopeGeneration returns the current scope generation of key.
func (g *Guard) ScopeGeneration(key string) uint64 {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scopes[key]
}

func (g *Guard) begin(key, topic string, scopeGen uint64) Ticket {
	g.next++
	g.touched[key] = g.now()
	topics, ok := g.requests[key]
	if !ok {
		topics = make(map[string]uint64)
		g.requests[key] = topics
	}
	topics[topic] = g.next
	return Ticket{guard: g, key: key, topic: topic, scopeGen: scopeGen, gen: g.next}
}

// Invalidate makes every outstanding ticket for key stale, whatever its topic, and
// returns the new scope generation.
func (g *Guard) Invalidate(key string) uint64 {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.next++
	g.scopes[key] = g.next
	g.touched[key] = g.now()
	return g.next
}

// Forget drops all state for key. Generations are global, so tickets issued before
// stay stale.
func (g *Guard) Forget(key string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forget(key)
}

// ForgetPrefix drops the state of every key starting with prefix, for example all tabs
// of one session.
func (g *Guard) ForgetPrefix(prefix string) {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	for key := range g.touched {
		if strings.HasPrefix(key, prefix) {
			g.forget(key)
		}
	}
}

// Prune drops keys that saw no request or scope change since cutoff and returns how
// many went.
func (g *Guard) Prune(cutoff time.Time) int {
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for key, at := range g.touched {
		if at.Before(cutoff) {
			g.forget(key)
			n++
		}
	}
	return n
}

// PruneEvery runs Prune with the given idle age until ctx is done.
func (g *Guard) PruneEvery(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := g.Prune(time.Now().Add(-idle)); n > 0 {
				log.Debug("pruned %d idle tabs from the request guard", n)
			}
		}
	}
}

// Len reports how many keys the guard tracks.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.touched)
}

func (g *Guard) forget(key string) {
	delete(g.scopes, key)
	delete(g.requests, key)
	delete(g.touched, key)
}

// Current reports whether neither a newer request for the same topic nor a scope
// change happened since t was issued.
func (t Ticket) Current() bool {
	if t.guard == nil {
		return true
	}
	t.guard.mu.Lock()
	defer t.guard.mu.Unlock()
	return t.guard.scopes[t.key] == t.scopeGen && t.guard.requests[t.key][t.topic] == t.gen
}
