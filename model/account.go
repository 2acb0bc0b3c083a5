package model

import "strings"

/*

Account is the author of a toot, or an account that reshared one.

Acct: webfinger handle (user@server), the identity used whenever accounts from
	different observations are compared
IsFollowed: the current user follows this account. Not every discovery path
	knows this, so it is OR'd across sightings during reconciliation
Suspended: the account has been suspended by its server

*/
type Account struct {
	ID             string `json:"id"`
	Acct           string `json:"acct"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	URL            string `json:"url"`
	Bot            bool   `json:"bot"`
	FollowersCount int    `json:"followers_count"`
	IsFollowed     bool   `json:"is_followed"`
	Suspended      bool   `json:"suspended"`
}

// Key returns the lowercased webfinger handle.
func (a *Account) Key() string {
	if a == nil {
		return ""
	}
	return strings.ToLower(a.Acct)
}

// SortName is used to order resharers for display.
func (a *Account) SortName() string {
	if a.DisplayName != "" {
		return strings.ToLower(a.DisplayName)
	}
	return a.Key()
}
