package content

import (
	"strings"
	"time"
)

// UserData is the result of fetching a user's public activity.
type UserData struct {
	Username       string          `json:"username"`
	AccountCreated time.Time       `json:"account_created"`
	LinkKarma      int             `json:"link_karma"`
	CommentKarma   int             `json:"comment_karma"`
	Posts          []PostRecord    `json:"posts"`
	Comments       []CommentRecord `json:"comments"`
}

// PostRecord is a submission as returned by the fetcher.
type PostRecord struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"` // self-text, empty for link posts
	Subreddit string    `json:"subreddit"`
	CreatedAt time.Time `json:"created_utc"`
	Score     int       `json:"score"`
	URL       string    `json:"url"`
}

// CommentRecord is a comment as returned by the fetcher.
type CommentRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Subreddit string    `json:"subreddit"`
	CreatedAt time.Time `json:"created_utc"`
	Score     int       `json:"score"`
	URL       string    `json:"url"`
}

// Kind distinguishes posts from comments.
type Kind int

const (
	KindPost Kind = iota
	KindComment
)

func (k Kind) String() string {
	switch k {
	case KindPost:
		return "post"
	case KindComment:
		return "comment"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind as "post" or "comment".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Item is one post or comment in the flattened index.
type Item struct {
	Kind      Kind      `json:"kind"`
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"` // posts only
	Body      string    `json:"body"`
	Subreddit string    `json:"subreddit"`
	CreatedAt time.Time `json:"created_at"`
	Score     int       `json:"score"`
	URL       string    `json:"url"`
}

// SearchText is the lowercased text the citation matcher scans.
// For comments the title is empty, so this reduces to " " + body.
func (i Item) SearchText() string {
	return strings.ToLower(i.Title + " " + i.Body)
}

// UserMeta is passed through the index for report headers.
type UserMeta struct {
	Username       string    `json:"username"`
	AccountCreated time.Time `json:"account_created"`
	LinkKarma      int       `json:"link_karma"`
	CommentKarma   int       `json:"comment_karma"`
}
