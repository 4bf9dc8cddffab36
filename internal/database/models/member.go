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

// MemberModel handles database operations for server members.
type MemberModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewMember creates a new member model instance.
func NewMember(db *bun.DB, logger *zap.Logger) *MemberModel {
	return &MemberModel{
		db:     db,
		logger: logger.Named("db_member"),
	}
}

// IsMemberBanned checks if a member is banned on a server.
// Members without a record are not banned.
func (m *MemberModel) IsMemberBanned(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, memberUID string,
) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		var banned bool

		err := m.db.NewSelect().
			TableExpr("server_members AS sm").
			ColumnExpr("sm.banned").
			Join("JOIN servers AS s ON s.id = sm.server_id").
			Where("s.vendor = ?", vendor).
			Where("s.vendor_uid = ?", vendorUID).
			Where("sm.vendor_uid = ?", memberUID).
			Limit(1).
			Scan(ctx, &banned)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return false, nil
			}

			return false, fmt.Errorf("failed to check member ban: %w", err)
		}

		return banned, nil
	})
}

// SetMemberBanned creates or updates the ban state of a member.
// Returns types.ErrServerNotFound if the server does not exist.
func (m *MemberModel) SetMemberBanned(
	ctx context.Context, vendor enum.ServerVendor, vendorUID string, memberUID string, banned bool,
) error {
	err := dbretry.Transaction(ctx, m.db, func(ctx context.Context, tx bun.Tx) error {
		var serverID int64

		err := tx.NewSelect().
			Model((*types.Server)(nil)).
			Column("id").
			Where("vendor = ?", vendor).
			Where("vendor_uid = ?", vendorUID).
			Scan(ctx, &serverID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return types.ErrServerNotFound
			}

			return err
		}

		now := time.Now()
		member := &types.ServerMember{
			ServerID:  serverID,
			VendorUID: memberUID,
			Banned:    banned,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = tx.NewInsert().
			Model(member).
			On("CONFLICT (server_id, vendor_uid) DO UPDATE").
			Set("banned = EXCLUDED.banned").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set member ban: %w", err)
	}

	m.logger.Debug("Updated member ban",
		zap.String("vendor", vendor.String()),
		zap.String("vendor_uid", vendorUID),
		zap.String("member_uid", memberUID),
		zap.Bool("banned", banned))

	return nil
}
