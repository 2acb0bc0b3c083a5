package instances

import (
	"context"
	"strings"

	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	"github.com/Luismorlan/tootmux/utils"
	"github.com/pkg/errors"
)

func NewFavouritedTagsScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameFavouritedTags,
		"Favour hashtags you often favourite",
		func(ctx context.Context) (scorer.ScoreData, error) {
			favs, err := src.RecentFavourites(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get recent favourites")
			}
			l := utils.NewCountedList(func(t model.Tag) string { return strings.ToLower(t.Name) })
			for _, t := range favs {
				for _, tag := range t.Real().Tags {
					l.Add(tag)
				}
			}
			return l.ToDict(), nil
		},
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			n := 0.0
			seen := map[string]bool{}
			for _, tag := range toot.Real().Tags {
				key := strings.ToLower(tag.Name)
				if !seen[key] {
					n += data[key]
					seen[key] = true
				}
			}
			return n
		},
	)
}

func NewFollowedTagsScorer() *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameFollowedTags,
		"Favour toots containing hashtags you follow",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			return float64(len(toot.Real().FollowedTags))
		},
	)
}

func NewTrendingTagsScorer(setting app_setting.RankerAppSetting) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameTrendingTags,
		"Favour hashtags that are trending in the fediverse",
		nil,
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			n := 0.0
			for _, tag := range toot.Real().TrendingTags {
				if tag.NumAccounts >= setting.TRENDING_TAG_MIN_ACCOUNTS {
					n += tag.NumAccounts
				}
			}
			return n
		},
	)
}
