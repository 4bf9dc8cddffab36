// Package embed implements the admission and persistence pipeline that turns
// a pasted link into a stored, formatted post.
package embed

import (
	"context"
	"fmt"
	"time"

	"github.com/robalyx/embedder/internal/cache"
	"github.com/robalyx/embedder/internal/database/types"
	"github.com/robalyx/embedder/internal/database/types/enum"
	"github.com/robalyx/embedder/internal/integration"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	// MaxComments is the largest number of comments that can be requested at once.
	MaxComments = 15
	// DefaultComments is used when no comment count is requested.
	DefaultComments = 5
	// DefaultCacheTTL is used for server and post count entries without a configured TTL.
	DefaultCacheTTL = 2 * time.Hour
)

// Resolver maps URLs to integration handlers.
type Resolver interface {
	Resolve(url string) (*integration.Handler, error)
}

// Request describes who asked for which link.
type Request struct {
	URL       string
	Vendor    enum.ServerVendor
	ServerUID string
	AuthorUID string
}

// Result is a post ready to be presented.
type Result struct {
	Integration enum.Integration
	URL         string
	Post        *types.Post
	// Format is the template chosen for this server, see RenderPost.
	Format string
	// Reused is true when the post was served from storage without fetching.
	Reused bool
}

// Options configures a Service.
type Options struct {
	Datastore Datastore
	Resolver  Resolver
	// Cache holds servers and post counters. Defaults to cache.Nop.
	Cache cache.Cache
	// BanCache holds ban states. Defaults to cache.Nop.
	BanCache     cache.Cache
	ServerTTL    time.Duration
	PostCountTTL time.Duration
	// PostFormats overrides the built-in format per integration.
	PostFormats map[enum.Integration]string
	Logger      *zap.Logger
}

// Service serves post and comment requests and the administrative operations around them.
type Service struct {
	resolver Resolver
	servers  *ServerDirectory
	quota    *QuotaTracker
	bans     *BanList
	posts    *PostStore
	postRepo PostRepository
	formats  map[enum.Integration]string
	fetches  singleflight.Group
	logger   *zap.Logger
}

// NewService creates the embed service.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("embed")

	mainCache := opts.Cache
	if mainCache == nil {
		mainCache = cache.NewNop()
	}
	banCache := opts.BanCache
	if banCache == nil {
		banCache = cache.NewNop()
	}

	serverTTL := opts.ServerTTL
	if serverTTL <= 0 {
		serverTTL = DefaultCacheTTL
	}
	postCountTTL := opts.PostCountTTL
	if postCountTTL <= 0 {
		postCountTTL = DefaultCacheTTL
	}

	return &Service{
		resolver: opts.Resolver,
		servers:  NewServerDirectory(opts.Datastore.Servers, mainCache, serverTTL, logger),
		quota:    NewQuotaTracker(opts.Datastore.Posts, mainCache, postCountTTL, logger),
		bans:     NewBanList(opts.Datastore.Members, banCache, logger),
		posts:    NewPostStore(opts.Datastore.Posts),
		postRepo: opts.Datastore.Posts,
		formats:  opts.PostFormats,
		logger:   logger,
	}
}

// Servers returns the server directory.
func (s *Service) Servers() *ServerDirectory {
	return s.servers
}

// GetPost admits the request and returns the stored or freshly fetched post.
func (s *Service) GetPost(ctx context.Context, req Request) (*Result, error) {
	handler, identity, err := s.identify(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	server, err := s.admit(ctx, req, handler.Integration)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.Find(ctx, identity)
	if err != nil {
		return nil, repositoryError("find post", err)
	}

	record := &types.ServerPost{
		ServerID:  &server.ID,
		AuthorUID: req.AuthorUID,
		URL:       req.URL,
	}

	reused := post != nil
	if reused {
		record.PostID = &post.ID
		if err := s.posts.Record(ctx, record); err != nil {
			return nil, repositoryError("record post", err)
		}
	} else {
		content, err := s.fetch(ctx, handler, identity, req.URL)
		if err != nil {
			return nil, err
		}

		post = newPost(identity, content)
		if _, err := s.posts.Save(ctx, post, record); err != nil {
			return nil, repositoryError("save post", err)
		}
	}

	s.quota.Increment(ctx, server.ID)

	s.logger.Debug("Served post",
		zap.String("integration", handler.Integration.String()),
		zap.String("key", identity.Key()),
		zap.String("server_uid", req.ServerUID),
		zap.Bool("reused", reused))

	return &Result{
		Integration: handler.Integration,
		URL:         req.URL,
		Post:        post,
		Format:      s.postFormat(server, handler.Integration),
		Reused:      reused,
	}, nil
}

// GetComments admits the request and returns up to n comments of the post.
// Comments are never stored.
func (s *Service) GetComments(ctx context.Context, req Request, n int) ([]*integration.Comment, error) {
	if n > MaxComments {
		return nil, fmt.Errorf("%w: requested %d, maximum is %d", ErrCommentLimit, n, MaxComments)
	}
	if n <= 0 {
		n = DefaultComments
	}

	handler, _, err := s.identify(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	if _, err := s.admit(ctx, req, handler.Integration); err != nil {
		return nil, err
	}

	comments, err := handler.Fetcher.GetComments(ctx, req.URL, n)
	if err != nil {
		return nil, &FetchError{Integration: handler.Integration, URL: req.URL, Err: err}
	}
	if len(comments) > n {
		comments = comments[:n]
	}

	return comments, nil
}

// ShouldHandle reports whether the URL resolves to an available integration.
func (s *Service) ShouldHandle(url string) bool {
	_, err := s.resolver.Resolve(url)
	return err == nil
}

// identify resolves the handler of the URL and the natural key of its post.
func (s *Service) identify(ctx context.Context, url string) (*integration.Handler, integration.Identity, error) {
	handler, err := s.resolver.Resolve(url)
	if err != nil {
		return nil, integration.Identity{}, fmt.Errorf("%w: %w", ErrNotHandled, err)
	}

	identity, err := handler.Fetcher.Identify(ctx, url)
	if err != nil {
		return nil, integration.Identity{}, fmt.Errorf("%w: %w", ErrNotHandled, err)
	}

	return handler, identity, nil
}

// admit loads or creates the server and runs the quota and ban checks.
func (s *Service) admit(ctx context.Context, req Request, i enum.Integration) (*types.Server, error) {
	server, _, err := s.servers.GetOrCreate(ctx, req.Vendor, req.ServerUID, enum.ServerTierFree)
	if err != nil {
		return nil, repositoryError("load server", err)
	}

	count, err := s.quota.CountLast24h(ctx, server.ID)
	if err != nil {
		return nil, repositoryError("count posts", err)
	}

	if !server.CanPost(count, i, time.Now()) {
		return nil, rejection(server, i)
	}

	banned, err := s.bans.IsBanned(ctx, req.Vendor, req.ServerUID, req.AuthorUID)
	if err != nil {
		return nil, repositoryError("check ban", err)
	}
	if banned {
		return nil, ErrMemberBanned
	}

	return server, nil
}

// rejection explains why CanPost denied the request.
func rejection(server *types.Server, i enum.Integration) error {
	if server.Status != enum.ServerStatusActive {
		return ErrServerInactive
	}
	if setting := server.Integration(i); setting == nil || !setting.Enabled {
		return fmt.Errorf("%w: %s", ErrIntegrationDisabled, i)
	}
	return ErrQuotaExceeded
}

// fetch collapses concurrent fetches of the same post into one call.
// The shared call ignores the cancellation of whichever caller started it,
// each caller stops waiting when its own context ends.
func (s *Service) fetch(
	ctx context.Context, handler *integration.Handler, identity integration.Identity, url string,
) (*integration.PostContent, error) {
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.fetches.DoChan(identity.Key(), func() (any, error) {
		return handler.Fetcher.GetPost(fetchCtx, url)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, &FetchError{Integration: handler.Integration, URL: url, Err: ctx.Err()}
	}

	if res.Err != nil {
		s.logger.Warn("Failed to fetch post",
			zap.String("integration", handler.Integration.String()),
			zap.String("url", url),
			zap.Error(res.Err))
		return nil, &FetchError{Integration: handler.Integration, URL: url, Err: res.Err}
	}

	if res.Shared {
		s.logger.Debug("Shared in-flight fetch", zap.String("key", identity.Key()))
	}

	content, _ := res.Val.(*integration.PostContent)
	if content == nil {
		return nil, &FetchError{Integration: handler.Integration, URL: url, Err: integration.ErrPostNotFound}
	}

	return content, nil
}

// postFormat picks the server override, then the deployment default, then the built-in format.
func (s *Service) postFormat(server *types.Server, i enum.Integration) string {
	if setting := server.Integration(i); setting != nil && setting.PostFormat != "" {
		return setting.PostFormat
	}
	if format, ok := s.formats[i]; ok && format != "" {
		return format
	}
	return integration.PostFormat(i)
}
