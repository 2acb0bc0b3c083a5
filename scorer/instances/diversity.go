package instances

import (
	"sort"

	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/sirupsen/logrus"
)

// Positive diversity scores below this are float noise from the tag pools.
const diversityNoiseTolerance = 0.2

/*

NewDiversityScorer penalizes accounts and trending hashtags that are
overrepresented in the current feed.

Account penalty: a toot is penalized by the number of newer toots in the feed
from the same account(s), so a prolific account's newest toot is left alone
and its older ones sink.

Trending tag penalty: the first DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY
toots carrying a trending tag pass for free. After that each toot drains the
tag's pool (initially the largest account count reported for the tag) by an
equal share and is penalized by what remains, so the penalty shrinks as the
tag keeps showing up. Toots from followed accounts skip the tag penalty, and
so do tags the user follows. Skipped occurrences don't use up the free quota.

Data is keyed by canonical URI and every value is <= 0.

*/
func NewDiversityScorer(setting app_setting.RankerAppSetting) *scorer.Feed {
	return scorer.NewFeedScorer(
		model.ScoreNameDiversity,
		"Disfavour accounts and trending tags that show up too often",
		func(feed []*model.Toot) scorer.ScoreData {
			return extractDiversity(feed, setting.DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY)
		},
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			return scoreDiversity(toot, data, setting.DIVERSITY_RESHARE_MULTIPLIER)
		},
	)
}

func extractDiversity(feed []*model.Toot, minTagTootsForPenalty int) scorer.ScoreData {
	sorted := make([]*model.Toot, 0, len(feed))
	for _, toot := range feed {
		if toot != nil {
			sorted = append(sorted, toot)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	accountsRemaining := map[string]int{}
	tagCounts := map[string]int{}
	tagMaxAccounts := map[string]float64{}

	for _, toot := range sorted {
		for _, a := range toot.Accounts() {
			accountsRemaining[a.Key()]++
		}
		for _, tag := range toot.Real().TrendingTags {
			key := tag.Key()
			tagCounts[key]++
			if tag.NumAccounts > tagMaxAccounts[key] {
				tagMaxAccounts[key] = tag.NumAccounts
			}
		}
	}

	tagIncrement := map[string]float64{}
	tagPool := map[string]float64{}
	for key, n := range tagCounts {
		tagIncrement[key] = tagMaxAccounts[key] / float64(n)
		tagPool[key] = tagMaxAccounts[key]
	}

	tagSeen := map[string]int{}
	res := scorer.ScoreData{}

	for _, toot := range sorted {
		penalty := 0.0

		for _, a := range toot.Accounts() {
			key := a.Key()
			accountsRemaining[key]--
			remaining := accountsRemaining[key]
			if remaining < 0 {
				Log.WithFields(logrus.Fields{"account": key, "remaining": remaining, "uri": toot.CanonicalURI()}).
					Warn("diversity account count went negative, using 0")
				remaining = 0
			}
			penalty -= float64(remaining)
		}

		if !toot.IsFromFollowedAccount() {
			followedTags := map[string]bool{}
			for _, tag := range toot.Real().FollowedTags {
				followedTags[tag.Key()] = true
			}
			for _, tag := range toot.Real().TrendingTags {
				key := tag.Key()
				if followedTags[key] {
					continue
				}
				tagSeen[key]++
				if tagSeen[key] <= minTagTootsForPenalty {
					continue
				}
				tagPool[key] -= tagIncrement[key]
				if tagPool[key] > 0 {
					penalty -= tagPool[key]
				}
			}
		}

		// Duplicates should have been reconciled already. If not, keep the
		// harsher penalty.
		uri := toot.CanonicalURI()
		if prev, ok := res[uri]; !ok || penalty < prev {
			res[uri] = penalty
		}
	}

	return res
}

func scoreDiversity(toot *model.Toot, data scorer.ScoreData, reshareMultiplier float64) float64 {
	score := data[toot.CanonicalURI()]
	if score > 0 {
		if score >= diversityNoiseTolerance {
			Log.WithFields(logrus.Fields{"uri": toot.CanonicalURI(), "score": score}).
				Warn("diversity score should never be positive, using 0")
		}
		return 0
	}
	if toot.Reblog != nil {
		return score * reshareMultiplier
	}
	return score
}
