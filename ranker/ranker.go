// Package ranker turns the raw values of every registered scorer into one
// score per toot and sorts the feed by it.
package ranker

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync/atomic"
	"time"

	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/bus"
	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	"github.com/Luismorlan/tootmux/utils"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// Notifier is told about every completed scoring pass.
type Notifier interface {
	NotifyFeedScored(ctx context.Context, event bus.FeedScoredEvent) error
}

type Ranker struct {
	registry *scorer.Registry
	setting  app_setting.RankerAppSetting
	notifier Notifier
	gate     *latestWinsGate

	// Overridable clock, toot ages are measured against it.
	Now func() time.Time

	feedRefreshes atomic.Int64
}

// NewRanker returns a ranker scoring with registry. notifier may be nil.
func NewRanker(registry *scorer.Registry, setting app_setting.RankerAppSetting, notifier Notifier) *Ranker {
	return &Ranker{
		registry: registry,
		setting:  setting.WithDefaults(),
		notifier: notifier,
		gate:     newLatestWinsGate(),
		Now:      time.Now,
	}
}

func (r *Ranker) Registry() *scorer.Registry {
	return r.registry
}

// FeedRefreshes is the number of times feed scorers were refreshed by a feed
// wide pass.
func (r *Ranker) FeedRefreshes() int64 {
	return r.feedRefreshes.Load()
}

// PrepareScorers loads the history every item scorer needs.
func (r *Ranker) PrepareScorers(ctx context.Context) {
	r.registry.PrepareAll(ctx)
}

/*

ScoreAndSort scores every toot and returns a new slice sorted by score, highest
first. The input slice keeps its order, the toots themselves get their
ScoreInfo replaced.

A feed wide pass (isFeedWide) first refreshes the feed scorers from toots and
only one of those runs at a time. If it is superseded by a newer feed wide
pass before starting, toots are returned sorted by their previous scores.

ScoreAndSort never fails. Anything going wrong mid pass is logged and the
toots are returned sorted by whatever scores they have.

*/
func (r *Ranker) ScoreAndSort(ctx context.Context, toots []*model.Toot, weights model.Weights, isFeedWide bool) []*model.Toot {
	passID := uuid.NewString()
	logger := Log.WithFields(logrus.Fields{
		"pass_id":   passID,
		"feed_wide": isFeedWide,
		"num_toots": len(toots),
	})

	start := time.Now()
	err := r.scorePass(ctx, toots, weights.Copy(), isFeedWide)
	sorted := sortByScore(toots)

	label := feedWideLabel(isFeedWide)
	switch {
	case err == nil:
		elapsed := time.Since(start)
		scoringPasses.WithLabelValues(label, outcomeOK).Inc()
		scoringPassSeconds.WithLabelValues(label).Observe(elapsed.Seconds())
		scoredToots.Add(float64(len(sorted)))
		logger.WithField("elapsed", elapsed).Debug("scoring pass done")
	case errors.Is(err, ErrSuperseded):
		scoringPasses.WithLabelValues(label, outcomeSuperseded).Inc()
		logger.Debug("scoring pass superseded, keeping previous scores")
		return sorted
	default:
		scoringPasses.WithLabelValues(label, outcomeFailed).Inc()
		logger.WithError(err).Warn("scoring pass failed, returning best effort order")
		return sorted
	}

	if r.notifier != nil {
		event := bus.NewFeedScoredEvent(passID, isFeedWide, sorted, r.Now())
		if err := r.notifier.NotifyFeedScored(ctx, event); err != nil {
			logger.WithError(err).Warn("fail to notify feed scored")
		}
	}
	return sorted
}

func (r *Ranker) scorePass(ctx context.Context, toots []*model.Toot, weights model.Weights, isFeedWide bool) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic during scoring pass: %v", rec)
		}
	}()

	if isFeedWide {
		release, err := r.gate.Acquire(ctx)
		if err != nil {
			return err
		}
		defer release()

		r.registry.ExtractAll(withoutNil(toots))
		r.feedRefreshes.Add(1)
	}

	c := newCombiner(weights, r.setting, r.Now())
	return r.scoreBatches(ctx, toots, r.registry.All(), c)
}

func (r *Ranker) scoreBatches(ctx context.Context, toots []*model.Toot, scorers []scorer.Scorer, c combiner) error {
	batchSize := r.setting.SCORING_BATCH_SIZE
	pause := r.setting.BatchPause()

	for start := 0; start < len(toots); start += batchSize {
		if start > 0 && pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var g errgroup.Group
		for _, toot := range toots[start:min(start+batchSize, len(toots))] {
			toot := toot
			if toot == nil {
				continue
			}
			g.Go(guard(func() error {
				return scoreToot(toot, scorers, c)
			}))
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	return nil
}

// scoreToot runs every scorer on toot concurrently and stores the combined
// result on the toot and on the original it reshares.
func scoreToot(toot *model.Toot, scorers []scorer.Scorer, c combiner) error {
	raws := make([]float64, len(scorers))
	var g errgroup.Group
	for i, s := range scorers {
		i, s := i, s
		g.Go(guard(func() error {
			raws[i] = s.Score(toot)
			return nil
		}))
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "fail to score "+toot.CanonicalURI())
	}

	info := c.combine(toot, scorers, raws)
	toot.SetScoreInfo(info)
	if toot.Reblog != nil {
		toot.Reblog.SetScoreInfo(info)
	}
	return nil
}

// guard turns a panic in fn into an error so it can't take down the process
// from inside an errgroup goroutine.
func guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		return fn()
	}
}

// combiner holds everything about a pass that doesn't depend on the toot.
type combiner struct {
	weights           model.Weights
	trending          float64
	dampening         float64
	timeDecayBase     float64
	timeDecayExponent float64
	now               time.Time
}

func newCombiner(weights model.Weights, setting app_setting.RankerAppSetting, now time.Time) combiner {
	return combiner{
		weights:           weights,
		trending:          weights.Trending(),
		dampening:         1 / weights.OutlierDampener(),
		timeDecayBase:     weights.TimeDecay()/10 + 1,
		timeDecayExponent: setting.TIME_DECAY_EXPONENT,
		now:               now,
	}
}

func (c combiner) combine(toot *model.Toot, scorers []scorer.Scorer, raws []float64) *model.ScoreInfo {
	scores := make(map[model.ScoreName]model.WeightedScore, len(scorers))
	weightedValues := make([]float64, len(scorers))
	for i, s := range scorers {
		name := s.Name()
		weighted := raws[i] * c.weights.ScoreWeight(name)
		if name.IsTrending() {
			weighted *= c.trending
		}
		weighted = utils.SignedPow(weighted, c.dampening)

		weightedValues[i] = weighted
		scores[name] = model.WeightedScore{Raw: raws[i], Weighted: weighted}
	}

	weightedScore := 1 + floats.Sum(weightedValues)
	decayExponent := -math.Pow(toot.AgeInHours(c.now), c.timeDecayExponent)
	timeDecay := math.Pow(c.timeDecayBase, decayExponent)

	return &model.ScoreInfo{
		Scores:              scores,
		RawScore:            1 + floats.Sum(raws),
		WeightedScore:       weightedScore,
		TimeDecayMultiplier: timeDecay,
		TrendingMultiplier:  c.trending,
		Score:               weightedScore * timeDecay,
	}
}

func withoutNil(toots []*model.Toot) []*model.Toot {
	res := make([]*model.Toot, 0, len(toots))
	for _, t := range toots {
		if t != nil {
			res = append(res, t)
		}
	}
	return res
}

// sortByScore returns a copy of toots ordered by score descending, ties kept
// in input order.
func sortByScore(toots []*model.Toot) []*model.Toot {
	res := withoutNil(toots)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Score() > res[j].Score()
	})
	return res
}
