package instances

import (
	"testing"
	"time"

	"github.com/Luismorlan/tootmux/app_setting"
	"github.com/Luismorlan/tootmux/model"
	"github.com/Luismorlan/tootmux/scorer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newToot(uri string, acct string, minutes int, tags ...*model.TagWithUsage) *model.Toot {
	return &model.Toot{
		ID:           uri,
		URI:          uri,
		CreatedAt:    t0.Add(time.Duration(minutes) * time.Minute),
		Account:      &model.Account{Acct: acct, DisplayName: acct},
		TrendingTags: tags,
	}
}

func reshare(uri string, acct string, minutes int, original *model.Toot) *model.Toot {
	return &model.Toot{
		ID:        uri,
		URI:       uri,
		CreatedAt: t0.Add(time.Duration(minutes) * time.Minute),
		Account:   &model.Account{Acct: acct, DisplayName: acct},
		Reblog:    original,
	}
}

func diversitySetting() app_setting.RankerAppSetting {
	return app_setting.RankerAppSetting{
		DIVERSITY_MIN_TRENDING_TAG_TOOTS_FOR_PENALTY: 1,
		DIVERSITY_RESHARE_MULTIPLIER:                 0.5,
	}.WithDefaults()
}

func TestDiversity_PrefersNewestTootOfAccount(t *testing.T) {
	t1 := newToot("uri1", "alice@a.social", 1)
	t2 := newToot("uri2", "alice@a.social", 2)
	t3 := newToot("uri3", "alice@a.social", 3)

	s := NewDiversityScorer(diversitySetting())
	// Feed order must not matter, extraction sorts by creation time.
	s.ExtractScoreDataFromFeed([]*model.Toot{t3, t1, t2})

	p1, p2, p3 := -s.Score(t1), -s.Score(t2), -s.Score(t3)
	assert.Equal(t, 2.0, p1)
	assert.Equal(t, 1.0, p2)
	assert.Equal(t, 0.0, p3)
	assert.True(t, p1 >= p2 && p2 >= p3)
}

func TestDiversity_DistinctAccountsAreNotPenalized(t *testing.T) {
	feed := []*model.Toot{
		newToot("uri1", "alice@a.social", 1),
		newToot("uri2", "bob@b.social", 2),
	}
	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed(feed)

	for _, toot := range feed {
		assert.Equal(t, 0.0, s.Score(toot))
	}
}

func TestDiversity_ReshareCountsBothAccounts(t *testing.T) {
	original := newToot("orig", "alice@a.social", 0)
	byBob := reshare("reshare", "bob@b.social", 1, original)
	own := newToot("own", "alice@a.social", 2)

	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{byBob, own})

	// Alice still has a newer toot ahead, bob doesn't. Halved for a reshare.
	assert.Equal(t, -0.5, s.Score(byBob))
	assert.Equal(t, 0.0, s.Score(own))
}

func TestDiversity_TrendingTagPenaltyShrinks(t *testing.T) {
	tag := func() *model.TagWithUsage { return &model.TagWithUsage{Name: "GoLang", NumAccounts: 30} }
	t1 := newToot("uri1", "a@x.social", 1, tag())
	t2 := newToot("uri2", "b@x.social", 2, tag())
	t3 := newToot("uri3", "c@x.social", 3, &model.TagWithUsage{Name: "golang", NumAccounts: 12})

	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{t1, t2, t3})

	// Pool starts at the max account count (30) and drains by 30/3 per toot
	// once the first toot has passed for free.
	assert.Equal(t, 0.0, s.Score(t1))
	assert.InDelta(t, -20.0, s.Score(t2), 1e-9)
	assert.InDelta(t, -10.0, s.Score(t3), 1e-9)
}

func TestDiversity_FollowedAccountsSkipTagPenalty(t *testing.T) {
	tag := func() *model.TagWithUsage { return &model.TagWithUsage{Name: "golang", NumAccounts: 30} }
	t1 := newToot("uri1", "a@x.social", 1, tag())
	t2 := newToot("uri2", "b@x.social", 2, tag())
	t2.Account.IsFollowed = true
	t3 := newToot("uri3", "c@x.social", 3, tag())

	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{t1, t2, t3})

	assert.Equal(t, 0.0, s.Score(t1))
	assert.Equal(t, 0.0, s.Score(t2))
	assert.InDelta(t, -20.0, s.Score(t3), 1e-9)
}

func TestDiversity_FollowedTagsSkipTagPenalty(t *testing.T) {
	tag := func() *model.TagWithUsage { return &model.TagWithUsage{Name: "golang", NumAccounts: 30} }
	t1 := newToot("uri1", "a@x.social", 1, tag())
	t2 := newToot("uri2", "b@x.social", 2, tag(), &model.TagWithUsage{Name: "rust", NumAccounts: 8})
	t2.FollowedTags = []*model.TagWithUsage{{Name: "GoLang"}}
	t3 := newToot("uri3", "c@x.social", 3, &model.TagWithUsage{Name: "rust", NumAccounts: 8})

	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{t1, t2, t3})

	assert.Equal(t, 0.0, s.Score(t1))
	// golang is followed, rust uses t2's free pass.
	assert.Equal(t, 0.0, s.Score(t2))
	assert.InDelta(t, -4.0, s.Score(t3), 1e-9)
}

func TestDiversity_SkipsNilToots(t *testing.T) {
	t1 := newToot("uri1", "alice@a.social", 1)
	t2 := newToot("uri2", "alice@a.social", 2)

	s := NewDiversityScorer(diversitySetting())
	require.NotPanics(t, func() {
		s.ExtractScoreDataFromFeed([]*model.Toot{t1, nil, t2})
	})
	assert.Equal(t, -1.0, s.Score(t1))
	assert.Equal(t, 0.0, s.Score(t2))
}

func TestDiversity_FollowedAccountStillGetsAccountPenalty(t *testing.T) {
	t1 := newToot("uri1", "alice@a.social", 1)
	t2 := newToot("uri2", "alice@a.social", 2)
	t1.Account.IsFollowed = true
	t2.Account.IsFollowed = true

	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{t1, t2})
	assert.Equal(t, -1.0, s.Score(t1))
}

func TestDiversity_UnknownTootAndPositiveValues(t *testing.T) {
	s := NewDiversityScorer(diversitySetting())
	s.ExtractScoreDataFromFeed([]*model.Toot{newToot("uri1", "alice@a.social", 1)})
	assert.Equal(t, 0.0, s.Score(newToot("late", "bob@b.social", 5)))

	noise := newToot("noise", "a@x.social", 1)
	broken := newToot("broken", "a@x.social", 1)
	data := scorer.ScoreData{"noise": 0.1, "broken": 4}
	assert.Equal(t, 0.0, scoreDiversity(noise, data, 1))
	assert.Equal(t, 0.0, scoreDiversity(broken, data, 1))
}

func TestExtractDiversity_KeysByCanonicalURI(t *testing.T) {
	original := newToot("orig", "alice@a.social", 0)
	data := extractDiversity([]*model.Toot{reshare("reshare", "bob@b.social", 1, original)}, 1)
	require.Contains(t, data, "orig")
	assert.NotContains(t, data, "reshare")
}
