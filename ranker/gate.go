package ranker

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ErrSuperseded is returned to a feed wide pass that gave up its turn to a
// newer feed wide pass. It is expected, never a failure.
var ErrSuperseded = errors.New("feed wide scoring pass superseded by a newer request")

// latestWinsGate lets one holder run at a time with at most one request
// waiting behind it. A new request evicts the waiting one.
type latestWinsGate struct {
	// Single token, held by the running pass.
	sem chan struct{}

	mu         sync.Mutex
	waiting    *gateWaiter
	generation uint64
}

type gateWaiter struct {
	generation uint64
	superseded chan struct{}
}

func newLatestWinsGate() *latestWinsGate {
	return &latestWinsGate{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the caller holds the gate, a newer request takes its
// place, or ctx is done. On success the returned release func must be called
// exactly once.
func (g *latestWinsGate) Acquire(ctx context.Context) (func(), error) {
	g.mu.Lock()
	g.generation++
	w := &gateWaiter{generation: g.generation, superseded: make(chan struct{})}
	if g.waiting != nil {
		close(g.waiting.superseded)
	}
	g.waiting = w
	g.mu.Unlock()

	select {
	case g.sem <- struct{}{}:
	case <-w.superseded:
		return nil, ErrSuperseded
	case <-ctx.Done():
		g.mu.Lock()
		if g.waiting == w {
			g.waiting = nil
		}
		g.mu.Unlock()
		return nil, ctx.Err()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	// Someone asked after us while we were taking the token.
	if w.generation != g.generation {
		<-g.sem
		return nil, ErrSuperseded
	}
	if g.waiting == w {
		g.waiting = nil
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-g.sem })
	}, nil
}
