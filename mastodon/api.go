// Package mastodon converts Mastodon API JSON into the ranking model.
package mastodon

import (
	"strconv"
	"strings"
	"time"

	"github.com/Luismorlan/tootmux/model"
	"github.com/araddon/dateparse"
	"github.com/jinzhu/copier"
	"github.com/pkg/errors"
)

type ApiAccount struct {
	ID             string `json:"id"`
	Acct           string `json:"acct"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	URL            string `json:"url"`
	Bot            bool   `json:"bot"`
	FollowersCount int    `json:"followers_count"`
	Suspended      bool   `json:"suspended"`
}

// ApiTagHistory is one day of usage. The API sends numbers as strings.
type ApiTagHistory struct {
	Day      string `json:"day"`
	Uses     string `json:"uses"`
	Accounts string `json:"accounts"`
}

type ApiTag struct {
	Name    string          `json:"name"`
	URL     string          `json:"url"`
	History []ApiTagHistory `json:"history"`
}

type ApiTrendingLink struct {
	URL     string          `json:"url"`
	Title   string          `json:"title"`
	History []ApiTagHistory `json:"history"`
}

type ApiMention struct {
	ID   string `json:"id"`
	Acct string `json:"acct"`
	URL  string `json:"url"`
}

type ApiMediaAttachment struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

type ApiCard struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type ApiFilter struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ApiFilterResult struct {
	Filter         ApiFilter `json:"filter"`
	KeywordMatches []string  `json:"keyword_matches"`
}

type ApiStatus struct {
	ID                 string               `json:"id"`
	URI                string               `json:"uri"`
	URL                string               `json:"url"`
	CreatedAt          string               `json:"created_at"`
	EditedAt           string               `json:"edited_at"`
	Account            *ApiAccount          `json:"account"`
	Reblog             *ApiStatus           `json:"reblog"`
	Content            string               `json:"content"`
	Language           string               `json:"language"`
	InReplyToID        string               `json:"in_reply_to_id"`
	InReplyToAccountID string               `json:"in_reply_to_account_id"`
	Tags               []ApiTag             `json:"tags"`
	Mentions           []ApiMention         `json:"mentions"`
	MediaAttachments   []ApiMediaAttachment `json:"media_attachments"`
	Card               *ApiCard             `json:"card"`
	Filtered           []ApiFilterResult    `json:"filtered"`

	FavouritesCount int `json:"favourites_count"`
	ReblogsCount    int `json:"reblogs_count"`
	RepliesCount    int `json:"replies_count"`

	Bookmarked bool `json:"bookmarked"`
	Favourited bool `json:"favourited"`
	Reblogged  bool `json:"reblogged"`
	Muted      bool `json:"muted"`
}

func (a *ApiAccount) ToAccount() (*model.Account, error) {
	if a == nil {
		return nil, nil
	}
	res := &model.Account{}
	if err := copier.Copy(res, a); err != nil {
		return nil, errors.Wrap(err, "fail to copy account "+a.Acct)
	}
	return res, nil
}

// ToTagWithUsage sums the tag's daily history.
func (t ApiTag) ToTagWithUsage() *model.TagWithUsage {
	accounts, uses := sumHistory(t.History)
	return &model.TagWithUsage{
		Name:        strings.ToLower(t.Name),
		URL:         t.URL,
		NumAccounts: accounts,
		NumToots:    uses,
	}
}

func (l ApiTrendingLink) ToTrendingLink() *model.TrendingLink {
	accounts, uses := sumHistory(l.History)
	return &model.TrendingLink{
		URL:         l.URL,
		Title:       l.Title,
		NumAccounts: accounts,
		NumToots:    uses,
	}
}

func sumHistory(history []ApiTagHistory) (accounts float64, uses float64) {
	for _, h := range history {
		if n, err := strconv.ParseFloat(h.Accounts, 64); err == nil {
			accounts += n
		}
		if n, err := strconv.ParseFloat(h.Uses, 64); err == nil {
			uses += n
		}
	}
	return accounts, uses
}

// ToToot converts a status fetched through source. A status reshared by
// another reshare is unwrapped, a Reblog never has a Reblog of its own.
func (s *ApiStatus) ToToot(source string) (*model.Toot, error) {
	toot, err := s.toToot(source)
	if err != nil {
		return nil, err
	}
	if s.Reblog != nil {
		inner := s.Reblog
		for inner.Reblog != nil {
			inner = inner.Reblog
		}
		if toot.Reblog, err = inner.toToot(source); err != nil {
			return nil, errors.Wrap(err, "fail to convert reshared status of "+s.URI)
		}
	}
	return toot, nil
}

func (s *ApiStatus) toToot(source string) (*model.Toot, error) {
	createdAt, err := parseTime(s.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "fail to parse created_at of status "+s.URI)
	}
	account, err := s.Account.ToAccount()
	if err != nil {
		return nil, err
	}

	toot := &model.Toot{
		ID:                 s.ID,
		URI:                s.URI,
		URL:                s.URL,
		CreatedAt:          createdAt,
		Account:            account,
		Content:            s.Content,
		Language:           s.Language,
		InReplyToID:        s.InReplyToID,
		InReplyToAccountID: s.InReplyToAccountID,
		FavouritesCount:    s.FavouritesCount,
		ReblogsCount:       s.ReblogsCount,
		RepliesCount:       s.RepliesCount,
		Bookmarked:         s.Bookmarked,
		Favourited:         s.Favourited,
		Reblogged:          s.Reblogged,
		Muted:              s.Muted,
		Tags:               []model.Tag{},
		Mentions:           []model.Mention{},
		MediaAttachments:   []model.MediaAttachment{},
		FilterResults:      []model.FilterResult{},
	}
	if s.EditedAt != "" {
		editedAt, err := parseTime(s.EditedAt)
		if err != nil {
			return nil, errors.Wrap(err, "fail to parse edited_at of status "+s.URI)
		}
		toot.EditedAt = &editedAt
	}

	if len(s.Tags) > 0 {
		if err := copier.Copy(&toot.Tags, &s.Tags); err != nil {
			return nil, errors.Wrap(err, "fail to copy tags of status "+s.URI)
		}
	}
	if len(s.Mentions) > 0 {
		if err := copier.Copy(&toot.Mentions, &s.Mentions); err != nil {
			return nil, errors.Wrap(err, "fail to copy mentions of status "+s.URI)
		}
	}
	for _, m := range s.MediaAttachments {
		toot.MediaAttachments = append(toot.MediaAttachments, model.MediaAttachment{
			ID:   m.ID,
			Type: model.MediaType(m.Type),
			URL:  m.URL,
		})
	}
	for _, f := range s.Filtered {
		toot.FilterResults = append(toot.FilterResults, model.FilterResult{
			FilterID:       f.Filter.ID,
			Title:          f.Filter.Title,
			KeywordMatches: f.KeywordMatches,
		})
	}
	if source != "" {
		toot.AddSource(source)
	}
	return toot, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// LinkURL is the URL of the status' preview card, empty when there is none.
func (s *ApiStatus) LinkURL() string {
	real := s
	if s.Reblog != nil {
		real = s.Reblog
	}
	if real.Card == nil {
		return ""
	}
	return real.Card.URL
}
