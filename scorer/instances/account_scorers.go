package instances

import (
	"context"

	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	"github.com/Luismorlan/tootmux/utils"
	"github.com/pkg/errors"
)

func accountKey(a *model.Account) string {
	return a.Key()
}

func lookupAuthor(toot *model.Toot, data scorer.ScoreData) float64 {
	return data[toot.Author().Key()]
}

func NewFavouritedAccountsScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameFavouritedAccounts,
		"Favour accounts you often favourite",
		func(ctx context.Context) (scorer.ScoreData, error) {
			favs, err := src.RecentFavourites(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get recent favourites")
			}
			l := utils.NewCountedList(accountKey)
			for _, t := range favs {
				if a := t.Author(); a != nil {
					l.Add(a)
				}
			}
			return l.ToDict(), nil
		},
		lookupAuthor,
	)
}

func NewInteractionsScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameInteractions,
		"Favour accounts that recently interacted with you",
		func(ctx context.Context) (scorer.ScoreData, error) {
			accounts, err := src.InteractingAccounts(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get interacting accounts")
			}
			return utils.CountValues(accounts, accountKey).ToDict(), nil
		},
		lookupAuthor,
	)
}

func NewMostRepliedAccountsScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameMostRepliedAccounts,
		"Favour accounts you often reply to",
		func(ctx context.Context) (scorer.ScoreData, error) {
			toots, err := src.RecentToots(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get recent toots")
			}
			// Replies only carry the account id of the replied to account.
			return utils.CountValues(toots, func(t *model.Toot) string {
				return t.InReplyToAccountID
			}).ToDict(), nil
		},
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			if a := toot.Author(); a != nil {
				return data[a.ID]
			}
			return 0
		},
	)
}

func NewMostRetootedAccountsScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameMostRetootedAccounts,
		"Favour accounts you often reshare",
		func(ctx context.Context) (scorer.ScoreData, error) {
			toots, err := src.RecentToots(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get recent toots")
			}
			l := utils.NewCountedList(accountKey)
			for _, t := range toots {
				if t.Reblog != nil && t.Reblog.Account != nil {
					l.Add(t.Reblog.Account)
				}
			}
			return l.ToDict(), nil
		},
		lookupAuthor,
	)
}

func NewMentionsFollowedScorer(src scorer.UserDataSource) *scorer.Item {
	return scorer.NewItemScorer(
		model.ScoreNameMentionsFollowed,
		"Favour toots that mention accounts you follow",
		func(ctx context.Context) (scorer.ScoreData, error) {
			followed, err := src.FollowedAccounts(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "fail to get followed accounts")
			}
			res := scorer.ScoreData{}
			for _, a := range followed {
				res[a.Key()] = 1
			}
			return res, nil
		},
		func(toot *model.Toot, data scorer.ScoreData) float64 {
			n := 0.0
			for _, m := range toot.Real().Mentions {
				n += data[(&model.Account{Acct: m.Acct}).Key()]
			}
			return n
		},
	)
}
