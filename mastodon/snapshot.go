package mastodon

import (
	"encoding/json"
	"io/ioutil"
	"strings"

	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

/*

Snapshot is everything fetched from a server for one ranking run, as raw API
JSON.

HomeTimeline, TrendingToots: candidate toots, trending ones in trending order
TrendingTags, TrendingLinks: what the server reports as trending right now
FollowedAccounts, FollowedTags, RecentFavourites, RecentToots,
	InteractingAccounts: the user's history, see scorer.UserDataSource

*/
type Snapshot struct {
	HomeTimeline        []*ApiStatus      `json:"home_timeline"`
	TrendingToots       []*ApiStatus      `json:"trending_toots"`
	TrendingTags        []ApiTag          `json:"trending_tags"`
	TrendingLinks       []ApiTrendingLink `json:"trending_links"`
	FollowedAccounts    []*ApiAccount     `json:"followed_accounts"`
	FollowedTags        []ApiTag          `json:"followed_tags"`
	RecentFavourites    []*ApiStatus      `json:"recent_favourites"`
	RecentToots         []*ApiStatus      `json:"recent_toots"`
	InteractingAccounts []*ApiAccount     `json:"interacting_accounts"`
}

func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "fail to read snapshot "+path)
	}
	s := &Snapshot{}
	if err := json.Unmarshal(raw, s); err != nil {
		return nil, errors.Wrap(err, "fail to unmarshal snapshot "+path)
	}
	return s, nil
}

// Toots converts every candidate status, tagging each with the timeline it
// came from. Trending toots get a TrendingRank, highest for the first one,
// and toots linking a trending link get that link. Statuses that fail to
// convert are logged and skipped.
func (s *Snapshot) Toots() []*model.Toot {
	links := map[string]*model.TrendingLink{}
	for _, l := range s.TrendingLinks {
		links[strings.ToLower(l.URL)] = l.ToTrendingLink()
	}

	res := []*model.Toot{}
	add := func(status *ApiStatus, source string, rank int) {
		toot, err := status.ToToot(source)
		if err != nil {
			Log.WithFields(logrus.Fields{"uri": status.URI, "source": source}).WithError(err).
				Warn("skipping unconvertible status")
			return
		}
		real := toot.Real()
		real.TrendingRank = rank
		if link, ok := links[strings.ToLower(status.LinkURL())]; ok && status.LinkURL() != "" {
			real.TrendingLinks = []*model.TrendingLink{link}
		}
		res = append(res, toot)
	}

	for _, status := range s.HomeTimeline {
		add(status, model.SourceHomeTimeline, 0)
	}
	for i, status := range s.TrendingToots {
		add(status, model.SourceTrendingToots, len(s.TrendingToots)-i)
	}
	return res
}

// FollowedTagsByName and TrendingTagsByName key tags the way
// model.Toot.Complete expects.
func (s *Snapshot) FollowedTagsByName() map[string]*model.TagWithUsage {
	return tagsByName(s.FollowedTags)
}

func (s *Snapshot) TrendingTagsByName() map[string]*model.TagWithUsage {
	return tagsByName(s.TrendingTags)
}

// ParticipatedTagsByName counts the tags of the user's own recent toots.
func (s *Snapshot) ParticipatedTagsByName() map[string]*model.TagWithUsage {
	res := map[string]*model.TagWithUsage{}
	for _, status := range s.RecentToots {
		real := status
		if status.Reblog != nil {
			real = status.Reblog
		}
		for _, t := range real.Tags {
			key := strings.ToLower(t.Name)
			if _, ok := res[key]; !ok {
				res[key] = &model.TagWithUsage{Name: key, URL: t.URL}
			}
			res[key].NumToots++
		}
	}
	return res
}

func tagsByName(tags []ApiTag) map[string]*model.TagWithUsage {
	res := map[string]*model.TagWithUsage{}
	for _, t := range tags {
		usage := t.ToTagWithUsage()
		res[usage.Key()] = usage
	}
	return res
}

// UserData converts the user's history. Followed accounts are flagged as
// followed.
func (s *Snapshot) UserData() (*scorer.StaticUserData, error) {
	res := &scorer.StaticUserData{
		Followed:     []*model.Account{},
		Tags:         []*model.TagWithUsage{},
		Favourites:   []*model.Toot{},
		Toots:        []*model.Toot{},
		Interactions: []*model.Account{},
	}

	for _, a := range s.FollowedAccounts {
		acct, err := a.ToAccount()
		if err != nil {
			return nil, err
		}
		if acct == nil {
			continue
		}
		acct.IsFollowed = true
		res.Followed = append(res.Followed, acct)
	}
	for _, a := range s.InteractingAccounts {
		acct, err := a.ToAccount()
		if err != nil {
			return nil, err
		}
		if acct != nil {
			res.Interactions = append(res.Interactions, acct)
		}
	}
	for _, t := range s.FollowedTags {
		res.Tags = append(res.Tags, t.ToTagWithUsage())
	}
	for _, status := range s.RecentFavourites {
		toot, err := status.ToToot("")
		if err != nil {
			return nil, errors.Wrap(err, "fail to convert favourite")
		}
		res.Favourites = append(res.Favourites, toot)
	}
	for _, status := range s.RecentToots {
		toot, err := status.ToToot("")
		if err != nil {
			return nil, errors.Wrap(err, "fail to convert recent toot")
		}
		res.Toots = append(res.Toots, toot)
	}
	return res, nil
}

// MarkFollowed flags the authors of toots the user follows, the home timeline
// API doesn't say.
func MarkFollowed(toots []*model.Toot, followed []*model.Account) {
	keys := map[string]bool{}
	for _, a := range followed {
		if a.Key() != "" {
			keys[a.Key()] = true
		}
	}
	for _, t := range toots {
		for _, a := range []*model.Account{t.Account, t.Real().Account} {
			if keys[a.Key()] {
				a.IsFollowed = true
			}
		}
	}
}
