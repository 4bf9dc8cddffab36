package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/embedder/internal/database/dbretry"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PostModel handles database operations for stored posts and post requests.
type PostModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPost creates a new post model instance.
func NewPost(db *bun.DB, logger *zap.Logger) *PostModel {
	return &PostModel{
		db:     db,
		logger: logger.Named("db_post"),
	}
}

// FindPost retrieves a stored post by its natural key.
// Returns nil when the post has not been stored yet.
func (m *PostModel) FindPost(
	ctx context.Context, integration enum.Integration, uid string, index *int,
) (*types.Post, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Post, error) {
		var post types.Post

		err := naturalKey(m.db.NewSelect().Model(&post), integration, uid, index).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, nil //nolint:nilnil // -
			}

			return nil, fmt.Errorf("failed to find post: %w", err)
		}

		return &post, nil
	})
}

// SavePost stores a post and the request record in one transaction.
// When another request stored the same post first, the existing row is
// reused and its ID is returned.
func (m *PostModel) SavePost(ctx context.Context, post *types.Post, record *types.ServerPost) (int64, error) {
	now := time.Now()
	post.CreatedAt = now
	record.CreatedAt = now

	var reused bool

	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		var ids []int64

		_, err := tx.NewInsert().
			Model(post).
			On("CONFLICT DO NOTHING").
			Returning("id").
			Exec(ctx, &ids)
		if err != nil {
			return err
		}

		reused = len(ids) == 0
		if reused {
			var id int64

			err := naturalKey(tx.NewSelect().Model((*types.Post)(nil)), post.Integration, post.IntegrationUID, post.IntegrationIndex).
				Column("id").
				Limit(1).
				Scan(ctx, &id)
			if err != nil {
				return fmt.Errorf("failed to load conflicting post: %w", err)
			}

			ids = append(ids, id)
		}

		post.ID = ids[0]
		record.PostID = &post.ID

		_, err = tx.NewInsert().Model(record).Exec(ctx)

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to save post: %w", err)
	}

	m.logger.Debug("Saved post",
		zap.Int64("id", post.ID),
		zap.String("integration", post.Integration.String()),
		zap.String("integration_uid", post.IntegrationUID),
		zap.Bool("reused", reused),
		zap.Int("media_size", len(post.Media)))

	return post.ID, nil
}

// RecordPost stores a request record for a post that was already stored.
func (m *PostModel) RecordPost(ctx context.Context, record *types.ServerPost) error {
	record.CreatedAt = time.Now()

	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().Model(record).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to record post: %w", err)
	}

	return nil
}

// CountServerPosts counts the posts requested on a server since the given time.
func (m *PostModel) CountServerPosts(ctx context.Context, serverID int64, since time.Time) (int, error) {
	count, err := dbretry.Operation(ctx, func(ctx context.Context) (int, error) {
		return m.db.NewSelect().
			Model((*types.ServerPost)(nil)).
			Where("server_id = ?", serverID).
			Where("created_at > ?", since).
			Count(ctx)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count server posts: %w", err)
	}

	return count, nil
}

// DeleteServerPosts deletes the stored posts that were requested on a server,
// optionally limited to one integration. Request records are kept.
func (m *PostModel) DeleteServerPosts(
	ctx context.Context, serverID int64, integration *enum.Integration,
) (int, error) {
	deleted, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		requested := m.db.NewSelect().
			Model((*types.ServerPost)(nil)).
			Column("post_id").
			Where("server_id = ?", serverID).
			Where("post_id IS NOT NULL")

		query := m.db.NewDelete().
			Model((*types.Post)(nil)).
			Where("id IN (?)", requested)

		if integration != nil {
			query = query.Where("integration = ?", *integration)
		}

		result, err := query.Exec(ctx)
		if err != nil {
			return 0, err
		}

		return result.RowsAffected()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete server posts: %w", err)
	}

	m.logger.Debug("Deleted server posts",
		zap.Int64("server_id", serverID),
		zap.Int64("deleted", deleted))

	return int(deleted), nil
}

// DeletePostsBefore deletes up to limit stored posts created before the cutoff.
func (m *PostModel) DeletePostsBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	deleted, err := dbretry.Operation(ctx, func(ctx context.Context) (int64, error) {
		expired := m.db.NewSelect().
			Model((*types.Post)(nil)).
			Column("id").
			Where("created_at < ?", cutoff).
			Order("id ASC").
			Limit(limit)

		result, err := m.db.NewDelete().
			Model((*types.Post)(nil)).
			Where("id IN (?)", expired).
			Exec(ctx)
		if err != nil {
			return 0, err
		}

		return result.RowsAffected()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired posts: %w", err)
	}

	return int(deleted), nil
}

// naturalKey filters a select query by the post natural key.
func naturalKey(
	query *bun.SelectQuery, integration enum.Integration, uid string, index *int,
) *bun.SelectQuery {
	query = query.
		Where("integration = ?", integration).
		Where("integration_uid = ?", uid)

	if index == nil {
		return query.Where("integration_index IS NULL")
	}

	return query.Where("integration_index = ?", *index)
}
