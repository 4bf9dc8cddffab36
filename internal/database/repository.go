package database

import (
	"github.com/robalyx/embedder/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	server *models.ServerModel
	post   *models.PostModel
	member *models.MemberModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		server: models.NewServer(db, logger),
		post:   models.NewPost(db, logger),
		member: models.NewMember(db, logger),
	}
}

// Server returns the server model repository.
func (r *Repository) Server() *models.ServerModel {
	return r.server
}

// Post returns the post model repository.
func (r *Repository) Post() *models.PostModel {
	return r.post
}

// Member returns the member model repository.
func (r *Repository) Member() *models.MemberModel {
	return r.member
}
