package model

import "fmt"

// ScoreName identifies a scoring signal. It is a closed set so that weights
// can't silently point at a scorer that doesn't exist.
type ScoreName string

const (
	ScoreNameAlreadyShown         ScoreName = "AlreadyShown"
	ScoreNameChaos                ScoreName = "Chaos"
	ScoreNameDiversity            ScoreName = "Diversity"
	ScoreNameFavouritedAccounts   ScoreName = "FavouritedAccounts"
	ScoreNameFavouritedTags       ScoreName = "FavouritedTags"
	ScoreNameFollowedTags         ScoreName = "FollowedTags"
	ScoreNameImageAttachments     ScoreName = "ImageAttachments"
	ScoreNameInteractions         ScoreName = "Interactions"
	ScoreNameMentionsFollowed     ScoreName = "MentionsFollowed"
	ScoreNameMostRepliedAccounts  ScoreName = "MostRepliedAccounts"
	ScoreNameMostRetootedAccounts ScoreName = "MostRetootedAccounts"
	ScoreNameNumFavourites        ScoreName = "NumFavourites"
	ScoreNameNumReplies           ScoreName = "NumReplies"
	ScoreNameNumRetoots           ScoreName = "NumRetoots"
	ScoreNameRetootsInFeed        ScoreName = "RetootsInFeed"
	ScoreNameTrendingLinks        ScoreName = "TrendingLinks"
	ScoreNameTrendingTags         ScoreName = "TrendingTags"
	ScoreNameTrendingToots        ScoreName = "TrendingToots"
	ScoreNameVideoAttachments     ScoreName = "VideoAttachments"
)

var AllScoreName = []ScoreName{
	ScoreNameAlreadyShown,
	ScoreNameChaos,
	ScoreNameDiversity,
	ScoreNameFavouritedAccounts,
	ScoreNameFavouritedTags,
	ScoreNameFollowedTags,
	ScoreNameImageAttachments,
	ScoreNameInteractions,
	ScoreNameMentionsFollowed,
	ScoreNameMostRepliedAccounts,
	ScoreNameMostRetootedAccounts,
	ScoreNameNumFavourites,
	ScoreNameNumReplies,
	ScoreNameNumRetoots,
	ScoreNameRetootsInFeed,
	ScoreNameTrendingLinks,
	ScoreNameTrendingTags,
	ScoreNameTrendingToots,
	ScoreNameVideoAttachments,
}

// TrendingScoreNames are the scorers whose weighted value is further scaled
// by the Trending non-score weight.
var TrendingScoreNames = []ScoreName{
	ScoreNameTrendingLinks,
	ScoreNameTrendingTags,
	ScoreNameTrendingToots,
}

func (e ScoreName) IsValid() bool {
	for _, n := range AllScoreName {
		if n == e {
			return true
		}
	}
	return false
}

func (e ScoreName) IsTrending() bool {
	for _, n := range TrendingScoreNames {
		if n == e {
			return true
		}
	}
	return false
}

func (e ScoreName) String() string {
	return string(e)
}

// WeightName returns the weight key this scorer is multiplied by.
func (e ScoreName) WeightName() WeightName {
	return WeightName(e)
}

// ParseScoreName converts a stored string back to a ScoreName.
func ParseScoreName(s string) (ScoreName, error) {
	n := ScoreName(s)
	if !n.IsValid() {
		return "", fmt.Errorf("%s is not a valid ScoreName", s)
	}
	return n, nil
}
