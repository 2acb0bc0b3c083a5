// Package scorer holds the scoring signal framework: item scorers that only
// need per account history, feed scorers that need to see the whole feed
// first, and the registry combining them.
package scorer

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/utils"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/sirupsen/logrus"
)

// ScoreData is the lookup table a scorer builds before scoring, e.g. account
// handle -> number of times the user favourited that account. Once published
// it is never mutated, a refresh swaps in a whole new table.
type ScoreData map[string]float64

type Scorer interface {
	Name() model.ScoreName
	Description() string
	IsReady() bool
	ScoreData() ScoreData
	// Score never fails. See base.Score for what happens before the scorer is
	// ready.
	Score(toot *model.Toot) float64
}

type ItemScorer interface {
	Scorer
	// PrepareScoreData fetches whatever history the scorer needs. Called once
	// before a scoring pass, not per toot. Always leaves the scorer ready.
	PrepareScoreData(ctx context.Context)
}

type FeedScorer interface {
	Scorer
	// ExtractScoreDataFromFeed must be called again every time the feed
	// changes, its output depends on every toot in the feed.
	ExtractScoreDataFromFeed(feed []*model.Toot)
}

// ScoreFunc scores the real toot using the scorer's current data.
type ScoreFunc func(toot *model.Toot, data ScoreData) float64

// PrepareFunc builds an item scorer's data from external history.
type PrepareFunc func(ctx context.Context) (ScoreData, error)

// ExtractFunc builds a feed scorer's data from the whole feed.
type ExtractFunc func(feed []*model.Toot) ScoreData

type base struct {
	name        model.ScoreName
	description string
	score       ScoreFunc

	ready atomic.Bool
	data  atomic.Pointer[ScoreData]
}

func (b *base) setup(name model.ScoreName, description string, score ScoreFunc) {
	b.name = name
	b.description = description
	b.score = score
	b.setData(ScoreData{})
}

func (b *base) Name() model.ScoreName {
	return b.name
}

func (b *base) Description() string {
	return b.description
}

func (b *base) IsReady() bool {
	return b.ready.Load()
}

func (b *base) ScoreData() ScoreData {
	return *b.data.Load()
}

func (b *base) setData(data ScoreData) {
	if data == nil {
		data = ScoreData{}
	}
	b.data.Store(&data)
}

// Score delegates to the scorer once it is ready. Until then it keeps
// returning the raw value from the toot's previous scoring pass, if there was
// one, so the feed doesn't jump around while data is loading.
func (b *base) Score(toot *model.Toot) float64 {
	if !b.IsReady() {
		if raw, ok := toot.ScoreInfo().Raw(b.name); ok {
			return raw
		}
		Log.WithFields(logrus.Fields{"scorer": b.name, "uri": toot.CanonicalURI()}).
			Debug("scorer not ready and toot has no previous score, using 0")
		return 0
	}

	res := b.score(toot, b.ScoreData())
	if !utils.IsFinite(res) {
		Log.WithFields(logrus.Fields{"scorer": b.name, "uri": toot.CanonicalURI(), "score": res}).
			Warn("scorer returned a non finite score, using 0")
		return 0
	}
	return res
}

// Item is an ItemScorer built from a prepare step and a score function.
type Item struct {
	base
	prepare PrepareFunc
}

// NewItemScorer returns a scorer that is ready right away when prepare is nil.
func NewItemScorer(name model.ScoreName, description string, prepare PrepareFunc, score ScoreFunc) *Item {
	s := &Item{prepare: prepare}
	s.setup(name, description, score)
	if prepare == nil {
		s.ready.Store(true)
	}
	return s
}

func (s *Item) PrepareScoreData(ctx context.Context) {
	defer s.ready.Store(true)
	if s.prepare == nil {
		return
	}

	data, err := s.runPrepare(ctx)
	if err != nil {
		Log.WithFields(logrus.Fields{"scorer": s.name}).WithError(err).
			Warn("fail to prepare score data, scorer will score 0")
		s.setData(ScoreData{})
		return
	}
	s.setData(data)
}

func (s *Item) runPrepare(ctx context.Context) (data ScoreData, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.prepare(ctx)
}

// Feed is a FeedScorer built from an extract step and a score function.
type Feed struct {
	base
	extract ExtractFunc
}

func NewFeedScorer(name model.ScoreName, description string, extract ExtractFunc, score ScoreFunc) *Feed {
	s := &Feed{extract: extract}
	s.setup(name, description, score)
	return s
}

func (s *Feed) ExtractScoreDataFromFeed(feed []*model.Toot) {
	s.setData(s.extract(feed))
	s.ready.Store(true)
	Log.WithFields(logrus.Fields{"scorer": s.name, "feed_size": len(feed), "entries": len(s.ScoreData())}).
		Debug("extracted feed score data")
}
