// Package fourchan fetches threads through the read-only 4chan JSON API.
package fourchan

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/robalyx/embedder/pkg/utils"
	"go.uber.org/zap"
)

const (
	// DefaultAPIURL serves thread JSON.
	DefaultAPIURL = "https://a.4cdn.org"
	// DefaultMediaURL serves attachments.
	DefaultMediaURL = "https://i.4cdn.org"
)

// Domains are the hosts of 4chan thread links.
var Domains = []string{"4chan.org"}

var (
	lineBreaks = regexp.MustCompile(`(?i)<br\s*/?>`)
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
)

// Client implements integration.Fetcher for 4chan.
type Client struct {
	http     *integration.Client
	apiURL   string
	mediaURL string
	logger   *zap.Logger
}

// New creates a 4chan client. Empty URLs select the public endpoints.
func New(http *integration.Client, apiURL, mediaURL string, logger *zap.Logger) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if mediaURL == "" {
		mediaURL = DefaultMediaURL
	}

	return &Client{
		http:     http,
		apiURL:   strings.TrimSuffix(apiURL, "/"),
		mediaURL: strings.TrimSuffix(mediaURL, "/"),
		logger:   logger.Named("fourchan"),
	}
}

// Identify uses "<board>_<thread>" as the uid.
func (c *Client) Identify(_ context.Context, rawURL string) (integration.Identity, error) {
	board, thread, err := parseThreadURL(rawURL)
	if err != nil {
		return integration.Identity{}, err
	}

	return integration.Identity{
		Integration: enum.IntegrationFourChan,
		UID:         board + "_" + thread,
	}, nil
}

// GetPost fetches the opening post of the thread and its attachment.
func (c *Client) GetPost(ctx context.Context, rawURL string) (*integration.PostContent, error) {
	board, posts, err := c.getThread(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	op := posts[0]
	content := &integration.PostContent{
		Author:      op.Name,
		Description: op.text(),
		Spoiler:     op.Spoiler == 1,
		Created:     op.created(),
	}

	if op.Tim != 0 && op.Ext != "" {
		mediaURL := fmt.Sprintf("%s/%s/%d%s", c.mediaURL, board, op.Tim, op.Ext)

		media, err := c.http.Download(ctx, mediaURL)
		switch {
		case errors.Is(err, integration.ErrMediaTooLarge):
			c.logger.Warn("Skipping oversized media", zap.String("url", rawURL))
		case err != nil:
			return nil, fmt.Errorf("failed to download media: %w", err)
		default:
			content.Media = media
		}
	}

	return content, nil
}

// GetComments returns the first n replies in the thread.
func (c *Client) GetComments(ctx context.Context, rawURL string, n int) ([]*integration.Comment, error) {
	_, posts, err := c.getThread(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	replies := posts[1:]
	if len(replies) > n {
		replies = replies[:n]
	}

	comments := make([]*integration.Comment, 0, len(replies))
	for _, reply := range replies {
		comments = append(comments, &integration.Comment{
			Author:  reply.Name,
			Text:    reply.text(),
			Spoiler: reply.Spoiler == 1,
			Created: reply.created(),
		})
	}

	return comments, nil
}

func (c *Client) getThread(ctx context.Context, rawURL string) (string, []post, error) {
	board, thread, err := parseThreadURL(rawURL)
	if err != nil {
		return "", nil, err
	}

	c.logger.Debug("Parsed thread url",
		zap.String("url", rawURL),
		zap.String("board", board),
		zap.String("thread", thread))

	var resp struct {
		Posts []post `json:"posts"`
	}
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/%s/thread/%s.json", c.apiURL, board, thread), &resp); err != nil {
		return "", nil, fmt.Errorf("failed to get thread: %w", err)
	}

	if len(resp.Posts) == 0 {
		return "", nil, integration.ErrPostNotFound
	}

	return board, resp.Posts, nil
}

// parseThreadURL extracts the board and thread number from /{board}/thread/{id}[/slug].
func parseThreadURL(rawURL string) (board string, thread string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", integration.ErrInvalidURL, err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) < 3 || parts[1] != "thread" || parts[0] == "" || parts[2] == "" {
		return "", "", fmt.Errorf("%w: %s", integration.ErrInvalidURL, rawURL)
	}

	return parts[0], parts[2], nil
}

type post struct {
	No      int64  `json:"no"`
	Name    string `json:"name"`
	Sub     string `json:"sub"`
	Com     string `json:"com"`
	Ext     string `json:"ext"`
	Tim     int64  `json:"tim"`
	Time    int64  `json:"time"`
	Spoiler int    `json:"spoiler"`
}

// text converts the HTML comment to plain text, prefixed by the subject if any.
func (p post) text() string {
	body := lineBreaks.ReplaceAllString(p.Com, "\n")
	body = utils.CompressWhitespacePreserveNewlines(html.UnescapeString(htmlTags.ReplaceAllString(body, "")))

	if p.Sub != "" {
		subject := html.UnescapeString(p.Sub)
		if body == "" {
			return subject
		}
		return subject + "\n" + body
	}
	return body
}

func (p post) created() *time.Time {
	if p.Time == 0 {
		return nil
	}
	t := time.Unix(p.Time, 0).UTC()
	return &t
}
