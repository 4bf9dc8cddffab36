package embed_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/robalyx/embedder/internal/cache"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/embed"
	"github.com/robalyx/embedder/internal/integration"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	errMissingCredentials = errors.New("missing credentials")
	errBarrierTimeout     = errors.New("barrier timed out")
)

// memStore is an in-memory datastore enforcing the same uniqueness rules as the database.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	servers map[string]*types.Server
	posts   []*types.Post
	records []*types.ServerPost
	members map[string]bool

	countQueries atomic.Int32
}

func newMemStore() *memStore {
	return &memStore{
		servers: make(map[string]*types.Server),
		members: make(map[string]bool),
	}
}

func (s *memStore) datastore() embed.Datastore {
	return embed.Datastore{Servers: s, Posts: s, Members: s}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func copyServer(server *types.Server) *types.Server {
	c := *server
	c.Integrations = make([]*types.ServerIntegration, 0, len(server.Integrations))
	for _, setting := range server.Integrations {
		sc := *setting
		c.Integrations = append(c.Integrations, &sc)
	}
	return &c
}

func (s *memStore) serverByID(id int64) *types.Server {
	for _, server := range s.servers {
		if server.ID == id {
			return server
		}
	}
	return nil
}

func (s *memStore) setting(serverID int64, i enum.Integration) (*types.ServerIntegration, error) {
	server := s.serverByID(serverID)
	if server == nil {
		return nil, types.ErrServerNotFound
	}
	if setting := server.Integration(i); setting != nil {
		return setting, nil
	}

	setting := &types.ServerIntegration{ID: s.id(), ServerID: serverID, Integration: i}
	server.Integrations = append(server.Integrations, setting)
	return setting, nil
}

func (s *memStore) GetServer(_ context.Context, vendor enum.ServerVendor, vendorUID string) (*types.Server, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	server, ok := s.servers[types.ServerCacheKey(vendor, vendorUID)]
	if !ok {
		return nil, nil //nolint:nilnil // -
	}
	return copyServer(server), nil
}

func (s *memStore) CreateServer(_ context.Context, server *types.Server) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := server.CacheKey()
	if _, ok := s.servers[key]; ok {
		return fmt.Errorf("%w: %s", types.ErrServerExists, key)
	}

	server.ID = s.id()
	server.CreatedAt = time.Now()
	server.UpdatedAt = server.CreatedAt
	for _, setting := range server.Integrations {
		setting.ID = s.id()
		setting.ServerID = server.ID
	}
	s.servers[key] = copyServer(server)

	return nil
}

func (s *memStore) EnableIntegrations(_ context.Context, serverID int64, integrations []enum.Integration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range integrations {
		setting, err := s.setting(serverID, i)
		if err != nil {
			return err
		}
		setting.Enabled = true
	}
	return nil
}

func (s *memStore) SetIntegrationEnabled(_ context.Context, serverID int64, i enum.Integration, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, err := s.setting(serverID, i)
	if err != nil {
		return err
	}
	setting.Enabled = enabled
	return nil
}

func (s *memStore) SetPostFormat(_ context.Context, serverID int64, i enum.Integration, format string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	setting, err := s.setting(serverID, i)
	if err != nil {
		return err
	}
	setting.PostFormat = format
	return nil
}

func (s *memStore) UpdateTier(_ context.Context, serverID int64, tier enum.ServerTier, validUntil *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	server := s.serverByID(serverID)
	if server == nil {
		return types.ErrServerNotFound
	}
	server.Tier = tier
	server.TierValidUntil = validUntil
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, serverID int64, status enum.ServerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	server := s.serverByID(serverID)
	if server == nil {
		return types.ErrServerNotFound
	}
	server.Status = status
	return nil
}

func sameKey(post *types.Post, i enum.Integration, uid string, index *int) bool {
	if post.Integration != i || post.IntegrationUID != uid {
		return false
	}
	if post.IntegrationIndex == nil || index == nil {
		return post.IntegrationIndex == nil && index == nil
	}
	return *post.IntegrationIndex == *index
}

func (s *memStore) findLocked(i enum.Integration, uid string, index *int) *types.Post {
	for _, post := range s.posts {
		if sameKey(post, i, uid, index) {
			return post
		}
	}
	return nil
}

func (s *memStore) FindPost(_ context.Context, i enum.Integration, uid string, index *int) (*types.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post := s.findLocked(i, uid, index)
	if post == nil {
		return nil, nil //nolint:nilnil // -
	}
	c := *post
	return &c, nil
}

func (s *memStore) SavePost(_ context.Context, post *types.Post, record *types.ServerPost) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing := s.findLocked(post.Integration, post.IntegrationUID, post.IntegrationIndex); existing != nil {
		post.ID = existing.ID
	} else {
		post.ID = s.id()
		post.CreatedAt = now
		c := *post
		s.posts = append(s.posts, &c)
	}

	postID := post.ID
	rc := *record
	rc.ID = s.id()
	rc.PostID = &postID
	rc.CreatedAt = now
	s.records = append(s.records, &rc)

	return post.ID, nil
}

func (s *memStore) RecordPost(_ context.Context, record *types.ServerPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rc := *record
	rc.ID = s.id()
	rc.CreatedAt = time.Now()
	s.records = append(s.records, &rc)
	return nil
}

func (s *memStore) CountServerPosts(_ context.Context, serverID int64, since time.Time) (int, error) {
	s.countQueries.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, record := range s.records {
		if record.ServerID != nil && *record.ServerID == serverID && record.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

// deleteLocked removes the posts and clears the references to them.
func (s *memStore) deleteLocked(remove func(*types.Post) bool) int {
	deleted := make(map[int64]bool)
	kept := s.posts[:0]
	for _, post := range s.posts {
		if remove(post) {
			deleted[post.ID] = true
			continue
		}
		kept = append(kept, post)
	}
	s.posts = kept

	for _, record := range s.records {
		if record.PostID != nil && deleted[*record.PostID] {
			record.PostID = nil
		}
	}
	return len(deleted)
}

func (s *memStore) DeleteServerPosts(_ context.Context, serverID int64, i *enum.Integration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requested := make(map[int64]bool)
	for _, record := range s.records {
		if record.ServerID != nil && *record.ServerID == serverID && record.PostID != nil {
			requested[*record.PostID] = true
		}
	}

	return s.deleteLocked(func(post *types.Post) bool {
		return requested[post.ID] && (i == nil || post.Integration == *i)
	}), nil
}

func (s *memStore) DeletePostsBefore(_ context.Context, cutoff time.Time, limit int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	return s.deleteLocked(func(post *types.Post) bool {
		if removed < limit && post.CreatedAt.Before(cutoff) {
			removed++
			return true
		}
		return false
	}), nil
}

func (s *memStore) memberKey(vendor enum.ServerVendor, vendorUID, memberUID string) string {
	return types.ServerCacheKey(vendor, vendorUID) + "/" + memberUID
}

func (s *memStore) IsMemberBanned(_ context.Context, vendor enum.ServerVendor, vendorUID, memberUID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.members[s.memberKey(vendor, vendorUID, memberUID)], nil
}

func (s *memStore) SetMemberBanned(
	_ context.Context, vendor enum.ServerVendor, vendorUID, memberUID string, banned bool,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.servers[types.ServerCacheKey(vendor, vendorUID)]; !ok {
		return types.ErrServerNotFound
	}
	s.members[s.memberKey(vendor, vendorUID, memberUID)] = banned
	return nil
}

func (s *memStore) counts() (servers, posts, records int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.servers), len(s.posts), len(s.records)
}

func (s *memStore) recordsOf(url string) []*types.ServerPost {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []*types.ServerPost
	for _, record := range s.records {
		if record.URL == url {
			c := *record
			result = append(result, &c)
		}
	}
	return result
}

// fakeFetcher serves posts for https://platform.example/post/<uid>.
type fakeFetcher struct {
	integration enum.Integration
	delay       time.Duration
	err         error
	// gate is called after the call is counted and may hold the fetch back.
	gate func() error

	postCalls    atomic.Int32
	commentCalls atomic.Int32
	lastN        atomic.Int32
}

func (f *fakeFetcher) Identify(_ context.Context, url string) (integration.Identity, error) {
	_, uid, ok := strings.Cut(url, "/post/")
	if !ok || uid == "" {
		return integration.Identity{}, integration.ErrInvalidURL
	}
	return integration.Identity{Integration: f.integration, UID: uid}, nil
}

func (f *fakeFetcher) GetPost(ctx context.Context, url string) (*integration.PostContent, error) {
	f.postCalls.Add(1)

	if f.gate != nil {
		if err := f.gate(); err != nil {
			return nil, err
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	likes := int64(1500)
	created := time.Date(2024, time.January, 2, 15, 4, 0, 0, time.UTC)
	return &integration.PostContent{
		Author:      "author",
		Description: "content of " + url,
		Likes:       &likes,
		Media:       []byte("media"),
		Created:     &created,
	}, nil
}

func (f *fakeFetcher) GetComments(_ context.Context, _ string, n int) ([]*integration.Comment, error) {
	f.commentCalls.Add(1)
	f.lastN.Store(int32(n))

	comments := make([]*integration.Comment, 0, n)
	for i := range n {
		comments = append(comments, &integration.Comment{Author: fmt.Sprintf("user%d", i), Text: "nice"})
	}
	return comments, nil
}

// testEnv bundles a service with its fakes.
type testEnv struct {
	service *embed.Service
	store   *memStore
	tiktok  *fakeFetcher
	reddit  *fakeFetcher
}

const (
	tiktokURL   = "https://platform.example/post/"
	redditURL   = "https://reddit.example/post/"
	disabledURL = "https://disabled.example/post/1"
)

func newEnv(t *testing.T, c, banCache cache.Cache) *testEnv {
	t.Helper()

	env := &testEnv{
		store:  newMemStore(),
		tiktok: &fakeFetcher{integration: enum.IntegrationTikTok},
		reddit: &fakeFetcher{integration: enum.IntegrationReddit},
	}
	env.service = newService(t, env.store, env.tiktok, env.reddit, c, banCache)

	return env
}

// newService creates a service over the given store and fetchers.
// Services sharing a store behave like separate processes sharing a database.
func newService(t *testing.T, store *memStore, tiktok, reddit *fakeFetcher, c, banCache cache.Cache) *embed.Service {
	t.Helper()

	logger := zaptest.NewLogger(t)
	registry := integration.NewRegistry(logger,
		integration.Definition{
			Integration: enum.IntegrationTikTok,
			Domains:     []string{"platform.example"},
			Factory:     func() (integration.Fetcher, error) { return tiktok, nil },
		},
		integration.Definition{
			Integration: enum.IntegrationReddit,
			Domains:     []string{"reddit.example"},
			Factory:     func() (integration.Fetcher, error) { return reddit, nil },
		},
		integration.Definition{
			Integration: enum.IntegrationTwitter,
			Domains:     []string{"disabled.example"},
			Factory:     func() (integration.Fetcher, error) { return nil, errMissingCredentials },
		},
	)

	return embed.NewService(embed.Options{
		Datastore: store.datastore(),
		Resolver:  registry,
		Cache:     c,
		BanCache:  banCache,
		Logger:    logger,
	})
}

// barrier returns a gate that releases its callers once n of them arrived.
func barrier(n int32) func() error {
	var arrived atomic.Int32
	all := make(chan struct{})

	return func() error {
		if arrived.Add(1) == n {
			close(all)
		}

		select {
		case <-all:
			return nil
		case <-time.After(5 * time.Second):
			return errBarrierTimeout
		}
	}
}

func newRedisCache(t *testing.T, mr *miniredis.Miniredis, prefix string) cache.Cache {
	t.Helper()

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return cache.NewRedis(client, prefix, zaptest.NewLogger(t))
}

// forEachCache runs the test once without a cache and once against Redis.
func forEachCache(t *testing.T, fn func(t *testing.T, env *testEnv)) {
	t.Helper()

	t.Run("nop cache", func(t *testing.T) {
		t.Parallel()
		fn(t, newEnv(t, cache.NewNop(), cache.NewNop()))
	})

	t.Run("redis cache", func(t *testing.T) {
		t.Parallel()
		mr := miniredis.RunT(t)
		fn(t, newEnv(t, newRedisCache(t, mr, "cache:"), newRedisCache(t, mr, "ban:")))
	})
}

func request(url, serverUID, authorUID string) embed.Request {
	return embed.Request{
		URL:       url,
		Vendor:    enum.ServerVendorDiscord,
		ServerUID: serverUID,
		AuthorUID: authorUID,
	}
}
