package reconciler

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Luismorlan/tootmux/model"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(minutes int) time.Time {
	return t0.Add(time.Duration(minutes) * time.Minute)
}

func newToot(id, uri string, minutes int) *model.Toot {
	return &model.Toot{
		ID:        id,
		URI:       uri,
		CreatedAt: at(minutes),
		Account:   &model.Account{ID: "a1", Acct: "alice@a.social", DisplayName: "Alice"},
	}
}

func snapshot(t *testing.T, toots []*model.Toot) string {
	b, err := json.Marshal(toots)
	require.NoError(t, err)
	return string(b)
}

func TestReconcile_HomeAndTrendingObservations(t *testing.T) {
	home := newToot("1", "https://a.social/toots/1", 0)
	home.FavouritesCount = 3
	home.Sources = []string{model.SourceHomeTimeline}

	trending := newToot("99", "https://a.social/toots/1", 0)
	trending.FavouritesCount = 5
	trending.Sources = []string{model.SourceTrendingToots}
	trending.TrendingTags = []*model.TagWithUsage{{Name: "golang", NumAccounts: 40}}

	res := Reconcile([]*model.Toot{home, trending})
	require.Len(t, res, 1)

	merged := res[0]
	assert.Equal(t, 5, merged.FavouritesCount)
	assert.ElementsMatch(t, []string{model.SourceHomeTimeline, model.SourceTrendingToots}, merged.Sources)
	require.Len(t, merged.TrendingTags, 1)
	assert.Equal(t, "golang", merged.TrendingTags[0].Name)

	// Both observations agree after merging.
	assert.Equal(t, 5, home.FavouritesCount)
	assert.ElementsMatch(t, home.Sources, trending.Sources)
}

func TestReconcile_IsIdempotent(t *testing.T) {
	a := newToot("1", "uri-a", 0)
	a.Sources = []string{model.SourceHomeTimeline}
	b := newToot("2", "uri-a", 1)
	b.RepliesCount = 2
	b.Sources = []string{model.SourceHashtagSearch}
	c := newToot("3", "uri-c", 2)

	once := Reconcile([]*model.Toot{a, b, c})
	before := snapshot(t, once)

	twice := Reconcile(once)
	require.Len(t, twice, len(once))
	for i := range once {
		assert.Same(t, once[i], twice[i])
	}
	assert.JSONEq(t, before, snapshot(t, twice))

	var decodedOnce, decodedTwice []*model.Toot
	require.NoError(t, json.Unmarshal([]byte(before), &decodedOnce))
	require.NoError(t, json.Unmarshal([]byte(snapshot(t, twice)), &decodedTwice))
	assert.Empty(t, cmp.Diff(decodedOnce, decodedTwice, cmpopts.IgnoreUnexported(model.Toot{})))
}

func TestReconcile_CountersTakeMaximum(t *testing.T) {
	counts := [][4]int{{3, 0, 7, 1}, {1, 9, 2, 0}, {2, 4, 8, 5}}
	group := []*model.Toot{}
	for i, c := range counts {
		toot := newToot(string(rune('a'+i)), "uri", i)
		toot.FavouritesCount, toot.ReblogsCount, toot.RepliesCount, toot.NumTimesShown = c[0], c[1], c[2], c[3]
		group = append(group, toot)
	}

	res := Reconcile(group)
	require.Len(t, res, 1)
	merged := res[0]
	assert.Equal(t, 3, merged.FavouritesCount)
	assert.Equal(t, 9, merged.ReblogsCount)
	assert.Equal(t, 8, merged.RepliesCount)
	assert.Equal(t, 5, merged.NumTimesShown)
	for _, c := range counts {
		assert.GreaterOrEqual(t, merged.FavouritesCount, c[0])
		assert.GreaterOrEqual(t, merged.ReblogsCount, c[1])
		assert.GreaterOrEqual(t, merged.RepliesCount, c[2])
		assert.GreaterOrEqual(t, merged.NumTimesShown, c[3])
	}
}

func TestReconcile_ReshareAndOriginalMerge(t *testing.T) {
	original := newToot("1", "uri-orig", 0)
	original.FavouritesCount = 2
	original.Favourited = true

	copyOfOriginal := newToot("7", "uri-orig", 0)
	copyOfOriginal.FavouritesCount = 6
	copyOfOriginal.Account.IsFollowed = true

	bob := &model.Account{ID: "b1", Acct: "bob@b.social", DisplayName: "Bob"}
	reshare := &model.Toot{
		ID:         "2",
		URI:        "uri-reshare",
		CreatedAt:  at(30),
		Account:    bob,
		Reblog:     copyOfOriginal,
		Bookmarked: true,
		Sources:    []string{model.SourceHomeTimeline},
	}

	res := Reconcile([]*model.Toot{original, reshare})
	require.Len(t, res, 1)

	// The reshare was created last.
	chosen := res[0]
	assert.Same(t, reshare, chosen)
	assert.Equal(t, 6, chosen.Real().FavouritesCount)
	assert.True(t, chosen.Real().Favourited)
	assert.True(t, chosen.Bookmarked)
	assert.True(t, original.Bookmarked)

	require.Len(t, chosen.Real().ReblogsBy, 1)
	assert.Equal(t, "bob@b.social", chosen.Real().ReblogsBy[0].Acct)

	// Follow state learnt from one sighting spreads to all of them.
	assert.True(t, original.Account.IsFollowed)
	assert.True(t, chosen.Author().IsFollowed)
	assert.False(t, bob.IsFollowed)
}

func TestReconcile_FlagsAreOredAcrossSightings(t *testing.T) {
	muted := newToot("1", "uri-x", 0)
	muted.Muted = true

	reblogged := newToot("2", "uri-x", 0)
	reblogged.Reblogged = true
	reblogged.Account.Suspended = true

	bob := &model.Account{ID: "b1", Acct: "bob@b.social", DisplayName: "Bob"}
	copyOfOriginal := newToot("3", "uri-x", 0)
	reshare := &model.Toot{ID: "4", URI: "uri-reshare", CreatedAt: at(10), Account: bob, Reblog: copyOfOriginal}

	res := Reconcile([]*model.Toot{muted, reblogged, reshare})
	require.Len(t, res, 1)

	for _, toot := range []*model.Toot{muted, reblogged, reshare, copyOfOriginal} {
		assert.True(t, toot.Muted, toot.ID)
		assert.True(t, toot.Reblogged, toot.ID)
		assert.False(t, toot.Bookmarked, toot.ID)
	}
	for _, toot := range []*model.Toot{muted, reblogged, copyOfOriginal} {
		assert.True(t, toot.Account.Suspended, toot.ID)
	}
	assert.False(t, bob.Suspended)
}

func TestReconcile_ReblogsBySortedByDisplayName(t *testing.T) {
	original := &model.Toot{URI: "uri", Account: &model.Account{Acct: "alice@a.social"}}
	mk := func(id string, name string, minutes int) *model.Toot {
		return &model.Toot{
			ID:        id,
			URI:       "reshare-" + id,
			CreatedAt: at(minutes),
			Account:   &model.Account{Acct: name + "@x.social", DisplayName: name},
			Reblog:    &model.Toot{URI: "uri", Account: original.Account},
		}
	}

	res := Reconcile([]*model.Toot{mk("1", "zed", 1), mk("2", "Amy", 2), mk("3", "mia", 3), mk("4", "Amy", 4)})
	require.Len(t, res, 1)

	names := []string{}
	for _, a := range res[0].Real().ReblogsBy {
		names = append(names, a.DisplayName)
	}
	assert.Equal(t, []string{"Amy", "mia", "zed"}, names)
}

func TestReconcile_FirstFoundFieldsFollowEditTime(t *testing.T) {
	completedOld := at(5)
	completedNew := at(50)

	older := newToot("1", "uri", 0)
	older.CompletedAt = &completedOld
	older.TrendingRank = 3
	older.SetScoreInfo(&model.ScoreInfo{Score: 1})

	edited := at(40)
	newer := newToot("2", "uri", 0)
	newer.EditedAt = &edited
	newer.CompletedAt = &completedNew

	Reconcile([]*model.Toot{older, newer})

	assert.Equal(t, completedNew, *older.CompletedAt)
	// The edited toot has no rank or score, so the next one's win.
	assert.Equal(t, 3, newer.TrendingRank)
	require.NotNil(t, newer.ScoreInfo())
	assert.Equal(t, 1.0, newer.ScoreInfo().Score)
}

func TestReconcile_UnionsByNaturalKey(t *testing.T) {
	a := newToot("1", "uri", 0)
	a.FilterResults = []model.FilterResult{{FilterID: "f1"}}
	a.FollowedTags = []*model.TagWithUsage{{Name: "Go"}}
	a.TrendingLinks = []*model.TrendingLink{{URL: "https://go.dev"}}
	a.Sources = []string{model.SourceHomeTimeline}

	b := newToot("2", "uri", 1)
	b.FilterResults = []model.FilterResult{{FilterID: "f1"}, {FilterID: "f2"}}
	b.FollowedTags = []*model.TagWithUsage{{Name: "go"}, nil}
	b.TrendingLinks = []*model.TrendingLink{{URL: "https://GO.dev"}, {URL: "https://pkg.go.dev"}}
	b.Sources = []string{model.SourceHomeTimeline, model.SourceConversation}

	res := Reconcile([]*model.Toot{a, b})
	require.Len(t, res, 1)
	m := res[0]
	assert.Len(t, m.FilterResults, 2)
	assert.Len(t, m.FollowedTags, 1)
	assert.Len(t, m.TrendingLinks, 2)
	assert.Equal(t, []string{model.SourceHomeTimeline, model.SourceConversation}, m.Sources)
}

func TestReconcile_KeepsOrderAndTootsWithoutURI(t *testing.T) {
	x := newToot("1", "uri-x", 0)
	noURI := newToot("2", "", 0)
	y := newToot("3", "uri-y", 0)
	xAgain := newToot("4", "uri-x", 5)

	res := Reconcile([]*model.Toot{x, noURI, y, xAgain, nil, x})
	require.Len(t, res, 3)
	assert.Same(t, xAgain, res[0])
	assert.Same(t, noURI, res[1])
	assert.Same(t, y, res[2])
}
