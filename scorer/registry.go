package scorer

import (
	"context"

	"github.com/Luismorlan/tootmux/model"
	. "github.com/Luismorlan/tootmux/utils/log"
	"golang.org/x/sync/errgroup"
)

// ScorerDescription is the read only view of a scorer for presentation.
type ScorerDescription struct {
	Name         model.ScoreName
	Description  string
	IsReady      bool
	IsFeedScorer bool
}

// Registry holds the active scorers. The set is fixed at construction, only
// the scorers' data changes afterwards.
type Registry struct {
	items []ItemScorer
	feeds []FeedScorer
}

func NewRegistry(items []ItemScorer, feeds []FeedScorer) *Registry {
	return &Registry{items: items, feeds: feeds}
}

func (r *Registry) ItemScorers() []ItemScorer {
	return r.items
}

func (r *Registry) FeedScorers() []FeedScorer {
	return r.feeds
}

// All returns item scorers followed by feed scorers, in registration order.
func (r *Registry) All() []Scorer {
	res := make([]Scorer, 0, len(r.items)+len(r.feeds))
	for _, s := range r.items {
		res = append(res, s)
	}
	for _, s := range r.feeds {
		res = append(res, s)
	}
	return res
}

// Get returns the scorer registered under name, nil if there is none.
func (r *Registry) Get(name model.ScoreName) Scorer {
	for _, s := range r.All() {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func (r *Registry) Describe() []ScorerDescription {
	res := []ScorerDescription{}
	for _, s := range r.items {
		res = append(res, ScorerDescription{Name: s.Name(), Description: s.Description(), IsReady: s.IsReady()})
	}
	for _, s := range r.feeds {
		res = append(res, ScorerDescription{Name: s.Name(), Description: s.Description(), IsReady: s.IsReady(), IsFeedScorer: true})
	}
	return res
}

// PrepareAll runs every item scorer's prepare step concurrently and waits for
// all of them. A failing scorer does not hold up the others.
func (r *Registry) PrepareAll(ctx context.Context) {
	var g errgroup.Group
	for _, s := range r.items {
		s := s
		g.Go(func() error {
			s.PrepareScoreData(ctx)
			return nil
		})
	}
	g.Wait()
	Log.WithField("scorers", len(r.items)).Info("item scorers prepared")
}

// ExtractAll refreshes every feed scorer from feed.
func (r *Registry) ExtractAll(feed []*model.Toot) {
	for _, s := range r.feeds {
		s.ExtractScoreDataFromFeed(feed)
	}
}
