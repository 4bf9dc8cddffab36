package embed

import (
	"context"

	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/integration"
)

// PostStore persists fetched posts by their natural key.
type PostStore struct {
	repo PostRepository
}

// NewPostStore creates a post store.
func NewPostStore(repo PostRepository) *PostStore {
	return &PostStore{repo: repo}
}

// Find returns the stored post for the identity or nil.
func (s *PostStore) Find(ctx context.Context, identity integration.Identity) (*types.Post, error) {
	return s.repo.FindPost(ctx, identity.Integration, identity.UID, identity.Index)
}

// Save stores the post and the request record atomically.
// A post stored concurrently under the same key is reused.
func (s *PostStore) Save(ctx context.Context, post *types.Post, record *types.ServerPost) (int64, error) {
	return s.repo.SavePost(ctx, post, record)
}

// Record stores the request record of a reused post.
func (s *PostStore) Record(ctx context.Context, record *types.ServerPost) error {
	return s.repo.RecordPost(ctx, record)
}

// newPost converts fetched content into a storable post.
func newPost(identity integration.Identity, content *integration.PostContent) *types.Post {
	return &types.Post{
		Integration:      identity.Integration,
		IntegrationUID:   identity.UID,
		IntegrationIndex: identity.Index,
		Author:           content.Author,
		Description:      content.Description,
		Views:            content.Views,
		Likes:            content.Likes,
		Dislikes:         content.Dislikes,
		Media:            content.Media,
		Spoiler:          content.Spoiler,
		PostedAt:         content.Created,
	}
}
