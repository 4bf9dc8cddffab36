// Package bluesky fetches posts through the public Bluesky AppView API.
package bluesky

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public AppView endpoint.
const DefaultBaseURL = "https://public.api.bsky.app"

// Domains are the hosts of Bluesky post links.
var Domains = []string{"bsky.app"}

// IsPostURL reports whether the link points at a single post.
func IsPostURL(link string) bool {
	return strings.Contains(link, "/post/")
}

// Client implements integration.Fetcher for Bluesky.
type Client struct {
	http    *integration.Client
	baseURL string
	logger  *zap.Logger
}

// New creates a Bluesky client. An empty baseURL selects DefaultBaseURL.
func New(http *integration.Client, baseURL string, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		http:    http,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		logger:  logger.Named("bluesky"),
	}
}

// Identify uses the record key of the post as its uid.
func (c *Client) Identify(_ context.Context, rawURL string) (integration.Identity, error) {
	_, rkey, err := parsePostURL(rawURL)
	if err != nil {
		return integration.Identity{}, err
	}

	return integration.Identity{Integration: enum.IntegrationBluesky, UID: rkey}, nil
}

// GetPost fetches the post text, like count and first image.
func (c *Client) GetPost(ctx context.Context, rawURL string) (*integration.PostContent, error) {
	thread, err := c.getThread(ctx, rawURL, 0)
	if err != nil {
		return nil, err
	}

	post := thread.Post
	content := &integration.PostContent{
		Author:      post.Author.name(),
		Description: post.Record.Text,
		Likes:       post.LikeCount,
		Spoiler:     post.hasLabels(),
		Created:     post.Record.created(),
	}

	if imageURL := post.imageURL(); imageURL != "" {
		media, err := c.http.Download(ctx, imageURL)
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

// GetComments returns the first n direct replies to the post.
func (c *Client) GetComments(ctx context.Context, rawURL string, n int) ([]*integration.Comment, error) {
	thread, err := c.getThread(ctx, rawURL, 1)
	if err != nil {
		return nil, err
	}

	comments := make([]*integration.Comment, 0, min(n, len(thread.Replies)))
	for _, reply := range thread.Replies {
		if len(comments) >= n {
			break
		}
		if reply.Post == nil {
			continue
		}

		comments = append(comments, &integration.Comment{
			Author:  reply.Post.Author.name(),
			Text:    reply.Post.Record.Text,
			Likes:   reply.Post.LikeCount,
			Spoiler: reply.Post.hasLabels(),
			Created: reply.Post.Record.created(),
		})
	}

	return comments, nil
}

// getThread resolves the post URL to an AT URI and loads its thread.
func (c *Client) getThread(ctx context.Context, rawURL string, depth int) (*threadView, error) {
	actor, rkey, err := parsePostURL(rawURL)
	if err != nil {
		return nil, err
	}

	did, err := c.resolveActor(ctx, actor)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("uri", fmt.Sprintf("at://%s/app.bsky.feed.post/%s", did, rkey))
	query.Set("depth", fmt.Sprint(depth))
	query.Set("parentHeight", "0")

	var resp threadResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/xrpc/app.bsky.feed.getPostThread?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("failed to get post thread: %w", err)
	}

	if resp.Thread.NotFound || resp.Thread.Blocked || resp.Thread.Post == nil {
		c.logger.Debug("Post not found or blocked",
			zap.String("url", rawURL),
			zap.Bool("notFound", resp.Thread.NotFound),
			zap.Bool("blocked", resp.Thread.Blocked))
		return nil, integration.ErrPostNotFound
	}

	return &resp.Thread, nil
}

// resolveActor turns a handle into a DID. DIDs are returned as is.
func (c *Client) resolveActor(ctx context.Context, actor string) (string, error) {
	if strings.HasPrefix(actor, "did:") {
		return actor, nil
	}

	var resp struct {
		DID string `json:"did"`
	}
	endpoint := c.baseURL + "/xrpc/com.atproto.identity.resolveHandle?handle=" + url.QueryEscape(actor)
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("failed to resolve handle %s: %w", actor, err)
	}
	if resp.DID == "" {
		return "", fmt.Errorf("%w: unresolved handle %s", integration.ErrPostNotFound, actor)
	}

	return resp.DID, nil
}

// parsePostURL extracts the actor and record key from /profile/{actor}/post/{rkey}.
func parsePostURL(rawURL string) (actor string, rkey string, err error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", integration.ErrInvalidURL, err)
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(parts) != 4 || parts[0] != "profile" || parts[2] != "post" || parts[1] == "" || parts[3] == "" {
		return "", "", fmt.Errorf("%w: %s", integration.ErrInvalidURL, rawURL)
	}

	return parts[1], parts[3], nil
}

type threadResponse struct {
	Thread threadView `json:"thread"`
}

type threadView struct {
	Type     string       `json:"$type"`
	NotFound bool         `json:"notFound"`
	Blocked  bool         `json:"blocked"`
	Post     *postView    `json:"post"`
	Replies  []threadView `json:"replies"`
}

type postView struct {
	URI    string `json:"uri"`
	Author author `json:"author"`
	Record record `json:"record"`
	Embed  *struct {
		Type   string `json:"$type"`
		Images []struct {
			Thumb    string `json:"thumb"`
			Fullsize string `json:"fullsize"`
		} `json:"images"`
	} `json:"embed"`
	LikeCount *int64 `json:"likeCount"`
	Labels    []struct {
		Val string `json:"val"`
	} `json:"labels"`
}

type author struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
}

func (a author) name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Handle
}

type record struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

func (r record) created() *time.Time {
	t, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
	if err != nil {
		return nil
	}
	return &t
}

// hasLabels reports whether moderation labels are attached, which hides the post behind a spoiler.
func (p *postView) hasLabels() bool {
	return len(p.Labels) > 0
}

func (p *postView) imageURL() string {
	if p.Embed == nil || !strings.HasPrefix(p.Embed.Type, "app.bsky.embed.images") || len(p.Embed.Images) == 0 {
		return ""
	}

	image := p.Embed.Images[0]
	if image.Fullsize != "" {
		return image.Fullsize
	}
	return image.Thumb
}
