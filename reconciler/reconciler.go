// Package reconciler collapses duplicate observations of the same toot into
// one record before scoring.
package reconciler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Luismorlan/tootmux/model"
	. "github.com/Luismorlan/tootmux/utils/log"
	"github.com/sirupsen/logrus"
)

/*

Reconcile returns one toot per canonical URI.

The same toot can arrive several times: from the home timeline, from trending,
from a hashtag search, wrapped in different reshares. Each observation may know
something the others don't, so each group's state is merged and written to
every member (and every member's original). The member created last is the one
returned. Output order follows the first appearance of each URI in toots.

Toots without a URI can't be matched and pass through untouched.

*/
func Reconcile(toots []*model.Toot) []*model.Toot {
	groups := make(map[string][]*model.Toot)
	order := []string{}
	numWithoutURI := 0

	for i, t := range toots {
		if t == nil {
			continue
		}
		key := t.CanonicalURI()
		if key == "" {
			// Can't collide with a real URI.
			key = fmt.Sprintf("\x00%d", i)
			numWithoutURI++
		}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], t)
	}

	res := make([]*model.Toot, 0, len(order))
	numMerged := 0
	for _, key := range order {
		group := uniqueToots(groups[key])
		if len(group) == 1 {
			res = append(res, group[0])
			continue
		}
		numMerged += len(group) - 1
		res = append(res, mergeGroup(group))
	}

	Log.WithFields(logrus.Fields{
		"input":       len(toots),
		"output":      len(res),
		"merged":      numMerged,
		"without_uri": numWithoutURI,
	}).Debug("reconciled toots")
	return res
}

// uniqueToots drops repeated pointers, the same record passed in twice is
// not a duplicate observation.
func uniqueToots(group []*model.Toot) []*model.Toot {
	seen := make(map[*model.Toot]bool, len(group))
	res := make([]*model.Toot, 0, len(group))
	for _, t := range group {
		if !seen[t] {
			seen[t] = true
			res = append(res, t)
		}
	}
	return res
}

// mergedState is everything a group's members agree on after merging.
type mergedState struct {
	completedAt  *time.Time
	trendingRank int
	scoreInfo    *model.ScoreInfo

	filterResults    []model.FilterResult
	followedTags     []*model.TagWithUsage
	participatedTags []*model.TagWithUsage
	trendingTags     []*model.TagWithUsage
	trendingLinks    []*model.TrendingLink
	sources          []string

	favouritesCount int
	reblogsCount    int
	repliesCount    int
	numTimesShown   int

	bookmarked bool
	favourited bool
	reblogged  bool
	muted      bool

	reblogsBy []*model.Account
}

func mergeGroup(group []*model.Toot) *model.Toot {
	// Most recently edited first, this decides "first found wins" fields.
	sorted := make([]*model.Toot, len(group))
	copy(sorted, group)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EditedOrCreatedAt().After(sorted[j].EditedOrCreatedAt())
	})

	// Members followed by their originals.
	all := make([]*model.Toot, 0, 2*len(sorted))
	seen := map[*model.Toot]bool{}
	for _, t := range sorted {
		for _, x := range []*model.Toot{t, t.Reblog} {
			if x != nil && !seen[x] {
				seen[x] = true
				all = append(all, x)
			}
		}
	}

	state := mergedState{
		completedAt:  firstCompletedAt(sorted),
		trendingRank: firstTrendingRank(sorted),
		scoreInfo:    firstScoreInfo(sorted),
		reblogsBy:    mergeReblogsBy(sorted),
	}

	filterResults := newUnion(func(f model.FilterResult) string { return f.FilterID })
	followedTags := newUnion((*model.TagWithUsage).Key)
	participatedTags := newUnion((*model.TagWithUsage).Key)
	trendingTags := newUnion((*model.TagWithUsage).Key)
	trendingLinks := newUnion(func(l *model.TrendingLink) string {
		if l == nil {
			return ""
		}
		return strings.ToLower(l.URL)
	})
	sources := newUnion(func(s string) string { return s })

	for _, t := range all {
		filterResults.add(t.FilterResults...)
		followedTags.add(t.FollowedTags...)
		participatedTags.add(t.ParticipatedTags...)
		trendingTags.add(t.TrendingTags...)
		trendingLinks.add(t.TrendingLinks...)
		sources.add(t.Sources...)

		state.favouritesCount = max(state.favouritesCount, t.FavouritesCount)
		state.reblogsCount = max(state.reblogsCount, t.ReblogsCount)
		state.repliesCount = max(state.repliesCount, t.RepliesCount)
		state.numTimesShown = max(state.numTimesShown, t.NumTimesShown)

		state.bookmarked = state.bookmarked || t.Bookmarked
		state.favourited = state.favourited || t.Favourited
		state.reblogged = state.reblogged || t.Reblogged
		state.muted = state.muted || t.Muted
	}

	state.filterResults = filterResults.items
	state.followedTags = followedTags.items
	state.participatedTags = participatedTags.items
	state.trendingTags = trendingTags.items
	state.trendingLinks = trendingLinks.items
	state.sources = sources.items

	for _, t := range all {
		state.applyTo(t)
	}
	mergeAccountFlags(all, state.reblogsBy)

	chosen := sorted[0]
	for _, t := range sorted[1:] {
		if t.CreatedAt.After(chosen.CreatedAt) {
			chosen = t
		}
	}

	Log.WithFields(logrus.Fields{
		"uri":     chosen.CanonicalURI(),
		"members": len(group),
		"sources": state.sources,
	}).Debug("merged duplicate toots")
	return chosen
}

func (s *mergedState) applyTo(t *model.Toot) {
	t.CompletedAt = s.completedAt
	t.TrendingRank = s.trendingRank
	t.SetScoreInfo(s.scoreInfo)

	// Every toot gets its own slices so later appends don't alias.
	t.FilterResults = append([]model.FilterResult(nil), s.filterResults...)
	t.FollowedTags = append([]*model.TagWithUsage(nil), s.followedTags...)
	t.ParticipatedTags = append([]*model.TagWithUsage(nil), s.participatedTags...)
	t.TrendingTags = append([]*model.TagWithUsage(nil), s.trendingTags...)
	t.TrendingLinks = append([]*model.TrendingLink(nil), s.trendingLinks...)
	t.Sources = append([]string(nil), s.sources...)
	t.ReblogsBy = append([]*model.Account(nil), s.reblogsBy...)

	t.FavouritesCount = s.favouritesCount
	t.ReblogsCount = s.reblogsCount
	t.RepliesCount = s.repliesCount
	t.NumTimesShown = s.numTimesShown

	t.Bookmarked = s.bookmarked
	t.Favourited = s.favourited
	t.Reblogged = s.reblogged
	t.Muted = s.muted
}

func firstCompletedAt(sorted []*model.Toot) *time.Time {
	for _, t := range sorted {
		if t.CompletedAt != nil {
			return t.CompletedAt
		}
		if t.Reblog != nil && t.Reblog.CompletedAt != nil {
			return t.Reblog.CompletedAt
		}
	}
	return nil
}

func firstTrendingRank(sorted []*model.Toot) int {
	for _, t := range sorted {
		if t.TrendingRank > 0 {
			return t.TrendingRank
		}
		if t.Reblog != nil && t.Reblog.TrendingRank > 0 {
			return t.Reblog.TrendingRank
		}
	}
	return 0
}

func firstScoreInfo(sorted []*model.Toot) *model.ScoreInfo {
	for _, t := range sorted {
		if info := t.ScoreInfo(); info != nil {
			return info
		}
		if t.Reblog != nil {
			if info := t.Reblog.ScoreInfo(); info != nil {
				return info
			}
		}
	}
	return nil
}

// mergeReblogsBy unions known resharers with the authors of reshare members,
// sorted by display name.
func mergeReblogsBy(sorted []*model.Toot) []*model.Account {
	u := newUnion((*model.Account).Key)
	for _, t := range sorted {
		u.add(t.ReblogsBy...)
		if t.Reblog != nil {
			u.add(t.Reblog.ReblogsBy...)
			if t.Account != nil {
				u.add(t.Account)
			}
		}
	}
	res := u.items
	sort.SliceStable(res, func(i, j int) bool {
		if res[i].SortName() != res[j].SortName() {
			return res[i].SortName() < res[j].SortName()
		}
		return res[i].Key() < res[j].Key()
	})
	return res
}

// mergeAccountFlags ORs follow and suspension state over every sighting of
// an account, some discovery paths build toots before follows are known.
func mergeAccountFlags(toots []*model.Toot, reblogsBy []*model.Account) {
	accounts := append([]*model.Account(nil), reblogsBy...)
	for _, t := range toots {
		if t.Account != nil {
			accounts = append(accounts, t.Account)
		}
		accounts = append(accounts, t.ReblogsBy...)
	}

	followed := map[string]bool{}
	suspended := map[string]bool{}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		followed[a.Key()] = followed[a.Key()] || a.IsFollowed
		suspended[a.Key()] = suspended[a.Key()] || a.Suspended
	}
	for _, a := range accounts {
		if a == nil {
			continue
		}
		a.IsFollowed = followed[a.Key()]
		a.Suspended = suspended[a.Key()]
	}
}

// union keeps the first item seen for each key, in order. Empty keys are
// dropped.
type union[T any] struct {
	keyFn func(T) string
	seen  map[string]bool
	items []T
}

func newUnion[T any](keyFn func(T) string) *union[T] {
	return &union[T]{keyFn: keyFn, seen: map[string]bool{}, items: []T{}}
}

func (u *union[T]) add(items ...T) {
	for _, item := range items {
		key := u.keyFn(item)
		if key == "" || u.seen[key] {
			continue
		}
		u.seen[key] = true
		u.items = append(u.items, item)
	}
}
