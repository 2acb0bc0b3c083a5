package model

import (
	"strings"
	"sync"
	"time"

	"github.com/Luismorlan/tootmux/utils"
)

// Discovery paths that can surface a toot. Stored on Toot.Sources.
const (
	SourceHomeTimeline    = "HomeTimeline"
	SourceTrendingToots   = "TrendingToots"
	SourceTrendingTags    = "TrendingTags"
	SourceHashtagSearch   = "HashtagSearch"
	SourceParticipatedTag = "ParticipatedTag"
	SourceConversation    = "Conversation"
	SourceList            = "List"
)

/*

Toot is one observation of a post, the unit being ranked.

ID: assigned by the server the toot was fetched from, not stable across
	duplicates fetched from different servers
URI: canonical identity. For a reshare identity belongs to Reblog
Reblog: the original toot when this record is a reshare. A Reblog never has a
	Reblog of its own
Account: author of this record (the resharer for a reshare)
ReblogsBy: accounts known to have reshared the original

FavouritesCount, ReblogsCount, RepliesCount, NumTimesShown: only ever grow over
	the lifetime of a toot, later fetches may report larger values

FollowedTags, ParticipatedTags, TrendingTags, TrendingLinks, TrendingRank:
	derived when the toot is completed, see Complete()
Sources: every discovery path that surfaced the toot, accumulated
CompletedAt: when the derived fields were last computed

scoreInfo: result of the last scoring pass, guarded by scoreMu because best
	effort passes may score a toot while a feed wide pass is running

*/
type Toot struct {
	ID                 string            `json:"id"`
	URI                string            `json:"uri"`
	URL                string            `json:"url"`
	CreatedAt          time.Time         `json:"created_at"`
	EditedAt           *time.Time        `json:"edited_at"`
	Account            *Account          `json:"account"`
	Reblog             *Toot             `json:"reblog"`
	Content            string            `json:"content"`
	Language           string            `json:"language"`
	InReplyToID        string            `json:"in_reply_to_id"`
	InReplyToAccountID string            `json:"in_reply_to_account_id"`
	Tags               []Tag             `json:"tags"`
	Mentions           []Mention         `json:"mentions"`
	MediaAttachments   []MediaAttachment `json:"media_attachments"`

	FavouritesCount int `json:"favourites_count"`
	ReblogsCount    int `json:"reblogs_count"`
	RepliesCount    int `json:"replies_count"`
	NumTimesShown   int `json:"num_times_shown"`

	Bookmarked bool `json:"bookmarked"`
	Favourited bool `json:"favourited"`
	Reblogged  bool `json:"reblogged"`
	Muted      bool `json:"muted"`

	ReblogsBy        []*Account      `json:"reblogs_by"`
	FilterResults    []FilterResult  `json:"filtered"`
	FollowedTags     []*TagWithUsage `json:"followed_tags"`
	ParticipatedTags []*TagWithUsage `json:"participated_tags"`
	TrendingTags     []*TagWithUsage `json:"trending_tags"`
	TrendingLinks    []*TrendingLink `json:"trending_links"`
	TrendingRank     int             `json:"trending_rank"`
	Sources          []string        `json:"sources"`
	CompletedAt      *time.Time      `json:"completed_at"`

	scoreMu   sync.RWMutex
	scoreInfo *ScoreInfo
}

// Real returns the toot all properties and scores should be read from: the
// original for a reshare, the toot itself otherwise.
func (t *Toot) Real() *Toot {
	if t.Reblog != nil {
		return t.Reblog
	}
	return t
}

// CanonicalURI is the identity used for deduplication.
func (t *Toot) CanonicalURI() string {
	return t.Real().URI
}

// Author returns the author of the real toot.
func (t *Toot) Author() *Account {
	return t.Real().Account
}

// Accounts returns the accounts responsible for this toot appearing in the
// feed: the author, and the original author for a reshare. An account is
// never returned twice.
func (t *Toot) Accounts() []*Account {
	res := []*Account{}
	if t.Account != nil {
		res = append(res, t.Account)
	}
	if t.Reblog != nil && t.Reblog.Account != nil && t.Reblog.Account.Key() != t.Account.Key() {
		res = append(res, t.Reblog.Account)
	}
	return res
}

// IsFromFollowedAccount is true when either the resharer or the original author
// is followed by the user.
func (t *Toot) IsFromFollowedAccount() bool {
	for _, a := range t.Accounts() {
		if a.IsFollowed {
			return true
		}
	}
	return false
}

// EditedOrCreatedAt is the last time the content of this record changed.
func (t *Toot) EditedOrCreatedAt() time.Time {
	if t.EditedAt != nil {
		return *t.EditedAt
	}
	return t.CreatedAt
}

// AgeInHours is never negative, future dated toots are brand new.
func (t *Toot) AgeInHours(now time.Time) float64 {
	age := now.Sub(t.CreatedAt).Hours()
	if age < 0 {
		return 0
	}
	return age
}

func (t *Toot) ScoreInfo() *ScoreInfo {
	t.scoreMu.RLock()
	defer t.scoreMu.RUnlock()
	return t.scoreInfo
}

func (t *Toot) SetScoreInfo(info *ScoreInfo) {
	t.scoreMu.Lock()
	t.scoreInfo = info
	t.scoreMu.Unlock()
}

// Score returns the final score of the last pass, 0 if never scored.
func (t *Toot) Score() float64 {
	if info := t.ScoreInfo(); info != nil {
		return info.Score
	}
	return 0
}

// AddSource records a discovery path, ignoring ones already present.
func (t *Toot) AddSource(source string) {
	if utils.ContainsString(t.Sources, source) {
		return
	}
	t.Sources = append(t.Sources, source)
}

// ContainsTag matches a hashtag name case insensitively against the real
// toot's tags.
func (t *Toot) ContainsTag(name string) bool {
	name = strings.ToLower(name)
	for _, tag := range t.Real().Tags {
		if strings.ToLower(tag.Name) == name {
			return true
		}
	}
	return false
}

// MediaOfType returns attachments of the real toot matching any of types.
func (t *Toot) MediaOfType(types ...MediaType) []MediaAttachment {
	res := []MediaAttachment{}
	for _, m := range t.Real().MediaAttachments {
		for _, typ := range types {
			if m.Type == typ {
				res = append(res, m)
				break
			}
		}
	}
	return res
}

/*

Complete derives the tag sets of a toot from the user's tag lists, keyed by
lowercased tag name, and stamps CompletedAt. Derived fields live on the real
toot and are mirrored onto the reshare so either view reads the same.

Deciding when a toot is stale enough to need completing again is left to the
caller.

*/
func (t *Toot) Complete(followedTags, trendingTags, participatedTags map[string]*TagWithUsage, now time.Time) {
	real := t.Real()
	real.FollowedTags = matchTags(real, followedTags)
	real.TrendingTags = matchTags(real, trendingTags)
	real.ParticipatedTags = matchTags(real, participatedTags)
	real.CompletedAt = &now

	if t.Reblog != nil {
		t.FollowedTags = real.FollowedTags
		t.TrendingTags = real.TrendingTags
		t.ParticipatedTags = real.ParticipatedTags
		t.CompletedAt = &now
	}
}

func matchTags(t *Toot, tags map[string]*TagWithUsage) []*TagWithUsage {
	res := []*TagWithUsage{}
	seen := map[string]bool{}
	for _, tag := range t.Tags {
		key := strings.ToLower(tag.Name)
		if seen[key] {
			continue
		}
		if usage, ok := tags[key]; ok {
			res = append(res, usage)
			seen[key] = true
		}
	}
	return res
}
