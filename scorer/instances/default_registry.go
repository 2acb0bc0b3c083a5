// Package instances contains the concrete scoring signals.
package instances

import (
	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/scorer"
)

// NewDefaultItemScorers returns every item scorer, src provides the history
// the account and tag scorers need.
func NewDefaultItemScorers(src scorer.UserDataSource, setting app_setting.RankerAppSetting) []scorer.ItemScorer {
	return []scorer.ItemScorer{
		NewAlreadyShownScorer(),
		NewChaosScorer(),
		NewFavouritedAccountsScorer(src),
		NewFavouritedTagsScorer(src),
		NewFollowedTagsScorer(),
		NewImageAttachmentsScorer(),
		NewInteractionsScorer(src),
		NewMentionsFollowedScorer(src),
		NewMostRepliedAccountsScorer(src),
		NewMostRetootedAccountsScorer(src),
		NewNumFavouritesScorer(),
		NewNumRepliesScorer(),
		NewNumRetootsScorer(),
		NewRetootsInFeedScorer(),
		NewTrendingLinksScorer(),
		NewTrendingTagsScorer(setting),
		NewTrendingTootsScorer(),
		NewVideoAttachmentsScorer(),
	}
}

func NewDefaultFeedScorers(setting app_setting.RankerAppSetting) []scorer.FeedScorer {
	return []scorer.FeedScorer{
		NewDiversityScorer(setting),
	}
}

func NewDefaultRegistry(src scorer.UserDataSource, setting app_setting.RankerAppSetting) *scorer.Registry {
	setting = setting.WithDefaults()
	return scorer.NewRegistry(
		NewDefaultItemScorers(src, setting),
		NewDefaultFeedScorers(setting),
	)
}
