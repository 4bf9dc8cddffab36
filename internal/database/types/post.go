package types

import (
	"time"

	"github.com/robalyx/embedder/internal/database/types/enum"
)

// MaxMediaSize is the largest media payload stored with a post.
const MaxMediaSize = 1 << 20

// Post is content fetched from an integration.
// A post is stored once per (integration, integration_uid, integration_index).
type Post struct {
	ID               int64            `bun:",pk,autoincrement"`
	Integration      enum.Integration `bun:"type:varchar(32),notnull"`
	IntegrationUID   string           `bun:",notnull"`
	IntegrationIndex *int             `bun:",nullzero"` // Position inside multi-media posts
	Author           string           `bun:",nullzero"`
	Description      string           `bun:",nullzero,type:text"`
	Views            *int64           `bun:",nullzero"`
	Likes            *int64           `bun:",nullzero"`
	Dislikes         *int64           `bun:",nullzero"`
	Media            []byte           `bun:",nullzero,type:bytea"`
	Spoiler          bool             `bun:",notnull"`
	PostedAt         *time.Time       `bun:",nullzero"`
	CreatedAt        time.Time        `bun:",notnull,default:current_timestamp"`
}

// ServerPost records a post request made on a server.
// References are nullable so the record outlives the post and the server.
type ServerPost struct {
	ID        int64     `bun:",pk,autoincrement"`
	PostID    *int64    `bun:",nullzero"`
	ServerID  *int64    `bun:",nullzero"`
	AuthorUID string    `bun:",notnull"` // Requesting member on the chat platform
	URL       string    `bun:",notnull,type:text"`
	CreatedAt time.Time `bun:",notnull,default:current_timestamp"`
}
