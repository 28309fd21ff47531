// Package reddit fetches a user's public posts and comments.
package reddit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/profiler/internal/content"
)

const (
	DefaultOAuthURL      = "https://oauth.reddit.com"
	DefaultPublicURL     = "https://www.reddit.com"
	DefaultTokenURL      = "https://www.reddit.com/api/v1/access_token"
	DefaultPermalinkBase = "https://reddit.com"
	DefaultTimeout       = 30 * time.Second

	pageSize   = 100
	maxRetries = 3
)

// Config holds the Reddit client settings. Without credentials the client
// uses the public JSON endpoints.
type Config struct {
	ClientID     string
	ClientSecret string
	UserAgent    string

	// BaseURL and TokenURL override the API endpoints; used by tests.
	BaseURL  string
	TokenURL string

	// Parallel loads posts and comments concurrently.
	Parallel bool

	RequestsPerSecond float64
	Burst             int
	Timeout           time.Duration
}

type Client struct {
	http      *http.Client
	baseURL   string
	suffix    string // ".json" on the public endpoints
	userAgent string
	parallel  bool
	limiter   *RateLimiter
	logger    *slog.Logger
}

// userAgentTransport sets the User-Agent Reddit requires on every call,
// token requests included.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = "profiler/0.1"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	base := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &userAgentTransport{base: http.DefaultTransport, userAgent: cfg.UserAgent},
	}

	c := &Client{
		http:      base,
		userAgent: cfg.UserAgent,
		parallel:  cfg.Parallel,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		logger:    logger,
	}

	if cfg.ClientID != "" && cfg.ClientSecret != "" {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = DefaultTokenURL
		}
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		c.http = cc.Client(ctx)
		c.http.Timeout = cfg.Timeout
		c.baseURL = DefaultOAuthURL
	} else {
		c.baseURL = DefaultPublicURL
		c.suffix = ".json"
		logger.Warn("reddit credentials not set, using public endpoints")
	}

	if cfg.BaseURL != "" {
		c.baseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return c
}

// FetchUser loads the user's profile, newest posts and newest comments.
// Posts always precede comments in the result regardless of which listing
// finished first.
func (c *Client) FetchUser(ctx context.Context, username string, maxPosts, maxComments int) (content.UserData, error) {
	data := content.UserData{Username: username}

	var (
		posts    []content.PostRecord
		comments []content.CommentRecord
	)

	fetchAbout := func(ctx context.Context) error {
		return c.fetchAbout(ctx, username, &data)
	}
	fetchPosts := func(ctx context.Context) error {
		var err error
		posts, err = c.fetchPosts(ctx, username, maxPosts)
		return err
	}
	fetchComments := func(ctx context.Context) error {
		var err error
		comments, err = c.fetchComments(ctx, username, maxComments)
		return err
	}

	if c.parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return fetchAbout(gctx) })
		g.Go(func() error { return fetchPosts(gctx) })
		g.Go(func() error { return fetchComments(gctx) })
		if err := g.Wait(); err != nil {
			return content.UserData{}, err
		}
	} else {
		for _, fn := range []func(context.Context) error{fetchAbout, fetchPosts, fetchComments} {
			if err := fn(ctx); err != nil {
				return content.UserData{}, err
			}
		}
	}

	data.Posts = posts
	data.Comments = comments
	if data.Posts == nil {
		data.Posts = []content.PostRecord{}
	}
	if data.Comments == nil {
		data.Comments = []content.CommentRecord{}
	}

	c.logger.Info("fetched user content",
		"username", username,
		"posts", len(data.Posts),
		"comments", len(data.Comments),
	)
	return data, nil
}

func (c *Client) fetchAbout(ctx context.Context, username string, data *content.UserData) error {
	body, err := c.get(ctx, "/user/"+url.PathEscape(username)+"/about", nil)
	if err != nil {
		return &FetchError{Username: username, Op: "about", Err: err}
	}
	about := gjson.GetBytes(body, "data")
	if name := about.Get("name").String(); name != "" {
		data.Username = name
	}
	data.AccountCreated = unixTime(about.Get("created_utc"))
	data.LinkKarma = int(about.Get("link_karma").Int())
	data.CommentKarma = int(about.Get("comment_karma").Int())
	return nil
}

func (c *Client) fetchPosts(ctx context.Context, username string, limit int) ([]content.PostRecord, error) {
	var posts []content.PostRecord
	err := c.paginate(ctx, "/user/"+url.PathEscape(username)+"/submitted", limit, func(d gjson.Result) {
		id := d.Get("id").String()
		posts = append(posts, content.PostRecord{
			ID:        id,
			Title:     d.Get("title").String(),
			Content:   d.Get("selftext").String(),
			Subreddit: d.Get("subreddit").String(),
			CreatedAt: unixTime(d.Get("created_utc")),
			Score:     int(d.Get("score").Int()),
			URL:       permalink(d.Get("permalink").String(), "/comments/"+id),
		})
	})
	if err != nil {
		return nil, &FetchError{Username: username, Op: "submitted", Err: err}
	}
	return posts, nil
}

func (c *Client) fetchComments(ctx context.Context, username string, limit int) ([]content.CommentRecord, error) {
	var comments []content.CommentRecord
	err := c.paginate(ctx, "/user/"+url.PathEscape(username)+"/comments", limit, func(d gjson.Result) {
		id := d.Get("id").String()
		link := strings.TrimPrefix(d.Get("link_id").String(), "t3_")
		comments = append(comments, content.CommentRecord{
			ID:        id,
			Content:   d.Get("body").String(),
			Subreddit: d.Get("subreddit").String(),
			CreatedAt: unixTime(d.Get("created_utc")),
			Score:     int(d.Get("score").Int()),
			URL:       permalink(d.Get("permalink").String(), "/comments/"+link+"/_/"+id),
		})
	})
	if err != nil {
		return nil, &FetchError{Username: username, Op: "comments", Err: err}
	}
	return comments, nil
}

// paginate walks a listing newest first until limit children were seen or
// the listing ends.
func (c *Client) paginate(ctx context.Context, path string, limit int, each func(gjson.Result)) error {
	seen := 0
	after := ""
	for seen < limit {
		n := limit - seen
		if n > pageSize {
			n = pageSize
		}
		q := url.Values{}
		q.Set("limit", strconv.Itoa(n))
		q.Set("sort", "new")
		q.Set("raw_json", "1")
		if after != "" {
			q.Set("after", after)
		}

		body, err := c.get(ctx, path, q)
		if err != nil {
			return err
		}

		children := gjson.GetBytes(body, "data.children").Array()
		for _, child := range children {
			if seen >= limit {
				break
			}
			each(child.Get("data"))
			seen++
		}

		after = gjson.GetBytes(body, "data.after").String()
		if after == "" || len(children) == 0 {
			return nil
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path + c.suffix
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("reddit request: %w", err)
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrUserNotFound
		case resp.StatusCode == http.StatusTooManyRequests && attempt < maxRetries:
			wait := retryAfter(resp.Header)
			c.logger.Warn("reddit rate limited", "path", path, "retry_after", wait)
			c.limiter.RecordRateLimit(wait)
			continue
		default:
			return nil, fmt.Errorf("reddit returned %d: %s", resp.StatusCode, truncate(string(body), 200))
		}
	}
}

// retryAfter reads Retry-After or Reddit's x-ratelimit-reset (seconds).
func retryAfter(h http.Header) time.Duration {
	for _, key := range []string{"Retry-After", "X-Ratelimit-Reset"} {
		if v := h.Get(key); v != "" {
			if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return 0
}

func unixTime(v gjson.Result) time.Time {
	if !v.Exists() || v.Float() == 0 {
		return time.Time{}
	}
	return time.Unix(int64(v.Float()), 0).UTC()
}

func permalink(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	return DefaultPermalinkBase + path
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// IsNotFound reports whether err means the user does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
