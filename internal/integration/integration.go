// Package integration resolves social media URLs to the clients that can fetch them.
package integration

import (
	"context"
	"strconv"
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
)

// Identity is the natural key of a post on its originating platform.
type Identity struct {
	Integration enum.Integration
	UID         string
	// Index selects one entry of a multi-part post, nil for the whole post.
	Index *int
}

// Key returns a stable string form of the identity.
func (i Identity) Key() string {
	key := i.Integration.String() + ":" + i.UID
	if i.Index != nil {
		key += "#" + strconv.Itoa(*i.Index)
	}
	return key
}

// PostContent is the content of a post as returned by a fetcher.
type PostContent struct {
	Author      string
	Description string
	Views       *int64
	Likes       *int64
	Dislikes    *int64
	Media       []byte
	Spoiler     bool
	Created     *time.Time
}

// Comment is a single reply to a post.
type Comment struct {
	Author  string
	Text    string
	Likes   *int64
	Spoiler bool
	Created *time.Time
}

// Fetcher retrieves posts from one platform.
type Fetcher interface {
	// Identify extracts the natural key of the post without contacting the platform.
	Identify(ctx context.Context, url string) (Identity, error)
	// GetPost fetches the post content.
	GetPost(ctx context.Context, url string) (*PostContent, error)
	// GetComments fetches up to n comments of the post.
	GetComments(ctx context.Context, url string, n int) ([]*Comment, error)
}
