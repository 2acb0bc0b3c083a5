package instances

import (
	"hash/fnv"

	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
)

func counter(name model.ScoreName, description string, get func(*model.Toot) int) *scorer.Item {
	return scorer.NewItemScorer(name, description, nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			return float64(get(toot.Real()))
		})
}

func NewNumFavouritesScorer() *scorer.Item {
	return counter(model.ScoreNameNumFavourites, "Favour toots favourited by many people",
		func(t *model.Toot) int { return t.FavouritesCount })
}

func NewNumRepliesScorer() *scorer.Item {
	return counter(model.ScoreNameNumReplies, "Favour toots with lots of replies",
		func(t *model.Toot) int { return t.RepliesCount })
}

func NewNumRetootsScorer() *scorer.Item {
	return counter(model.ScoreNameNumRetoots, "Favour toots reshared by many people",
		func(t *model.Toot) int { return t.ReblogsCount })
}

func NewImageAttachmentsScorer() *scorer.Item {
	return counter(model.ScoreNameImageAttachments, "Favour toots with images",
		func(t *model.Toot) int { return len(t.MediaOfType(model.MediaTypeImage)) })
}

func NewVideoAttachmentsScorer() *scorer.Item {
	return counter(model.ScoreNameVideoAttachments, "Favour toots with video",
		func(t *model.Toot) int { return len(t.MediaOfType(model.MediaTypeVideo, model.MediaTypeGifv)) })
}

// AlreadyShown scores negative, the more often a toot was shown the lower it
// sinks.
func NewAlreadyShownScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameAlreadyShown,
		"Disfavour toots you have already seen",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			return -float64(toot.Real().NumTimesShown)
		},
	)
}

// Chaos is deterministic per toot so repeated passes don't shuffle the feed.
func NewChaosScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameChaos,
		"Insert a bit of randomness",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			h := fnv.New64a()
			h.Write([]byte(toot.CanonicalURI()))
			// Top 53 bits give a uniform float in [0, 1).
			return float64(h.Sum64()>>11) / (1 << 53)
		},
	)
}

// RetootsInFeed counts distinct accounts that reshared the toot beyond the
// first one.
func NewRetootsInFeedScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameRetootsInFeed,
		"Favour toots reshared by more than one account you follow",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			resharers := map[string]bool{}
			for _, a := range toot.Real().ReblogsBy {
				resharers[a.Key()] = true
			}
			if toot.Reblog != nil && toot.Account != nil {
				resharers[toot.Account.Key()] = true
			}
			if len(resharers) <= 1 {
				return 0
			}
			return float64(len(resharers) - 1)
		},
	)
}

func NewTrendingLinksScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameTrendingLinks,
		"Favour links that are trending in the fediverse",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			n := 0.0
			for _, l := range toot.Real().TrendingLinks {
				n += l.NumAccounts
			}
			return n
		},
	)
}

// TrendingRank is higher for toots trending harder, 0 for toots that aren't.
func NewTrendingTootsScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameTrendingToots,
		"Favour toots that are trending in the fediverse",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			return float64(toot.Real().TrendingRank)
		},
	)
}
