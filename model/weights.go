package model

import (
	"fmt"

	. "github.com/Luismorlan/tootmux/utils/log"
)

// WeightName keys the user's weight sliders. Every ScoreName is a WeightName,
// plus the three non-score weights below.
type WeightName string

const (
	// Strength of the double-exponential time decay.
	WeightNameTimeDecay WeightName = "TimeDecay"
	// Extra multiplier applied to trending scorers.
	WeightNameTrending WeightName = "Trending"
	// Nth root applied to every weighted score before summing. Must be > 0.
	WeightNameOutlierDampener WeightName = "OutlierDampener"
)

var NonScoreWeightNames = []WeightName{
	WeightNameTimeDecay,
	WeightNameTrending,
	WeightNameOutlierDampener,
}

func (e WeightName) IsValid() bool {
	if ScoreName(e).IsValid() {
		return true
	}
	for _, n := range NonScoreWeightNames {
		if n == e {
			return true
		}
	}
	return false
}

func (e WeightName) String() string {
	return string(e)
}

func ParseWeightName(s string) (WeightName, error) {
	n := WeightName(s)
	if !n.IsValid() {
		return "", fmt.Errorf("%s is not a valid WeightName", s)
	}
	return n, nil
}

/*

Weights is the user controlled mapping from weight name to multiplier.

A scorer without an entry contributes nothing to a toot's score. Use
WithDefaults() to fill missing entries from DefaultWeights().

*/
type Weights map[WeightName]float64

// DefaultWeights is the mapping used for every weight absent from a user's
// stored preferences.
func DefaultWeights() Weights {
	return Weights{
		WeightName(ScoreNameAlreadyShown):         5,
		WeightName(ScoreNameChaos):                1,
		WeightName(ScoreNameDiversity):            1,
		WeightName(ScoreNameFavouritedAccounts):   1,
		WeightName(ScoreNameFavouritedTags):       0.1,
		WeightName(ScoreNameFollowedTags):         4,
		WeightName(ScoreNameImageAttachments):     0,
		WeightName(ScoreNameInteractions):         2,
		WeightName(ScoreNameMentionsFollowed):     2,
		WeightName(ScoreNameMostRepliedAccounts):  1,
		WeightName(ScoreNameMostRetootedAccounts): 3,
		WeightName(ScoreNameNumFavourites):        1,
		WeightName(ScoreNameNumReplies):           1,
		WeightName(ScoreNameNumRetoots):           1,
		WeightName(ScoreNameRetootsInFeed):        10,
		WeightName(ScoreNameTrendingLinks):        0.7,
		WeightName(ScoreNameTrendingTags):         0.4,
		WeightName(ScoreNameTrendingToots):        1,
		WeightName(ScoreNameVideoAttachments):     0,
		WeightNameTimeDecay:                       1.5,
		WeightNameTrending:                        0.15,
		WeightNameOutlierDampener:                 1.6,
	}
}

// Get returns the weight for name, 0 when unset.
func (w Weights) Get(name WeightName) float64 {
	return w[name]
}

func (w Weights) ScoreWeight(name ScoreName) float64 {
	return w[name.WeightName()]
}

func (w Weights) TimeDecay() float64 {
	return w[WeightNameTimeDecay]
}

func (w Weights) Trending() float64 {
	return w[WeightNameTrending]
}

// OutlierDampener never returns a non-positive value; those are corrected to
// 1 so the dampening exponent 1/x stays finite.
func (w Weights) OutlierDampener() float64 {
	d, ok := w[WeightNameOutlierDampener]
	if !ok || d <= 0 {
		Log.WithField("outlier_dampener", d).Warn("outlier dampener must be > 0, using 1")
		return 1
	}
	return d
}

// WithDefaults returns a copy with every missing weight taken from
// DefaultWeights(). Stored values, including zeros, win.
func (w Weights) WithDefaults() Weights {
	res := DefaultWeights()
	for k, v := range w {
		res[k] = v
	}
	return res
}

// Copy returns a shallow copy so callers can hand weights to a pass while
// the user keeps moving sliders.
func (w Weights) Copy() Weights {
	res := make(Weights, len(w))
	for k, v := range w {
		res[k] = v
	}
	return res
}
