package scorer

import (
	"context"

	"github.com/Luismorlan/tootmux/model"
)

// UserDataSource is the account history item scorers prepare their data
// from. How it is fetched or cached is up to the implementation.
type UserDataSource interface {
	// FollowedAccounts returns the accounts the user follows.
	FollowedAccounts(ctx context.Context) ([]*model.Account, error)

	// FollowedTags returns the hashtags the user follows.
	FollowedTags(ctx context.Context) ([]*model.TagWithUsage, error)

	// RecentFavourites returns toots the user recently favourited.
	RecentFavourites(ctx context.Context) ([]*model.Toot, error)

	// RecentToots returns the user's own recent toots, including replies and
	// reshares.
	RecentToots(ctx context.Context) ([]*model.Toot, error)

	// InteractingAccounts returns one entry per recent notification (mention,
	// favourite, reshare, follow) naming the account behind it.
	InteractingAccounts(ctx context.Context) ([]*model.Account, error)
}

// StaticUserData serves fixed history from memory, for tests and for
// snapshots loaded from disk. Err, when set, is returned by every call.
type StaticUserData struct {
	Followed     []*model.Account      `json:"followed_accounts"`
	Tags         []*model.TagWithUsage `json:"followed_tags"`
	Favourites   []*model.Toot         `json:"recent_favourites"`
	Toots        []*model.Toot         `json:"recent_toots"`
	Interactions []*model.Account      `json:"interacting_accounts"`
	Err          error                 `json:"-"`
}

func (s *StaticUserData) FollowedAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.Followed, s.Err
}

func (s *StaticUserData) FollowedTags(ctx context.Context) ([]*model.TagWithUsage, error) {
	return s.Tags, s.Err
}

func (s *StaticUserData) RecentFavourites(ctx context.Context) ([]*model.Toot, error) {
	return s.Favourites, s.Err
}

func (s *StaticUserData) RecentToots(ctx context.Context) ([]*model.Toot, error) {
	return s.Toots, s.Err
}

func (s *StaticUserData) InteractingAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.Interactions, s.Err
}
