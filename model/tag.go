package model

import "strings"

// Tag is a hashtag as written in a toot.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

/*

TagWithUsage is a hashtag plus how widely it is being used.

NumAccounts: distinct accounts fediverse-wide that used the tag recently, as
	reported by the trending endpoint
NumToots: number of toots that used the tag recently

*/
type TagWithUsage struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	NumAccounts float64 `json:"num_accounts"`
	NumToots    float64 `json:"num_toots"`
}

func (t *TagWithUsage) Key() string {
	if t == nil {
		return ""
	}
	return strings.ToLower(t.Name)
}

// TrendingLink is a link currently trending on the user's server.
type TrendingLink struct {
	URL         string  `json:"url"`
	Title       string  `json:"title"`
	NumAccounts float64 `json:"num_accounts"`
	NumToots    float64 `json:"num_toots"`
}

// FilterResult is a server side filter that matched the toot.
type FilterResult struct {
	FilterID       string   `json:"filter_id"`
	Title          string   `json:"title"`
	KeywordMatches []string `json:"keyword_matches"`
}

// MediaAttachment is an image, video, gifv or audio file attached to a toot.
type MediaAttachment struct {
	ID   string    `json:"id"`
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeGifv  MediaType = "gifv"
	MediaTypeAudio MediaType = "audio"
)

// Mention is an account mentioned in a toot's text.
type Mention struct {
	ID   string `json:"id"`
	Acct string `json:"acct"`
	URL  string `json:"url"`
}
