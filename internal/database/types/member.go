package types

import "time"

// ServerMember tracks the ban state of a member on a server.
type ServerMember struct {
	ID        int64     `bun:",pk,autoincrement"`
	ServerID  int64     `bun:",notnull"`
	VendorUID string    `bun:",notnull"`
	Banned    bool      `bun:",notnull"`
	CreatedAt time.Time `bun:",notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:",notnull,default:current_timestamp"`
}
