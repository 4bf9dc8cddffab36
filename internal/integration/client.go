package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/jaxron/axonet/middleware/circuitbreaker"
	"github.com/jaxron/axonet/middleware/retry"
	"github.com/jaxron/axonet/pkg/client"
	axonetErrors "github.com/jaxron/axonet/pkg/client/errors"
	axonetLogger "github.com/jaxron/axonet/pkg/client/logger"
	"github.com/jaxron/axonet/pkg/client/middleware"
	"github.com/robalyx/embedder/internal/setup/config"
	"github.com/robalyx/embedder/internal/setup/telemetry/logger"
	"go.uber.org/zap"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "embedder/1.0"

// ErrMediaTooLarge is returned when a download exceeds the media size limit.
var ErrMediaTooLarge = errors.New("media exceeds size limit")

// Client is the HTTP client shared by the built-in fetchers.
type Client struct {
	http         *client.Client
	maxMediaSize int64
	logger       *zap.Logger
}

// NewClient creates a client from the fetch configuration.
// Requests go through a circuit breaker and retry rate limits and server errors.
func NewClient(cfg *config.Fetch, zapLogger *zap.Logger) *Client {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	delay, maxDelay := cfg.RetryDelays()
	middlewares := []middleware.Middleware{
		circuitbreaker.New(
			cfg.CircuitBreaker.MaxRequestsOrDefault(),
			cfg.CircuitBreaker.IntervalDuration(),
			cfg.CircuitBreaker.TimeoutDuration(),
		),
		retry.New(cfg.MaxRetries, delay, maxDelay),
		newStatusMiddleware(userAgent),
	}

	httpLogger := zapLogger.Named("http")

	return &Client{
		http: client.NewClient(
			client.WithMarshalFunc(sonic.Marshal),
			client.WithUnmarshalFunc(sonic.Unmarshal),
			client.WithLogger(logger.New(httpLogger)),
			client.WithTimeout(cfg.TimeoutDuration()),
			client.WithMiddleware(middlewares...),
		),
		maxMediaSize: cfg.MediaLimit(),
		logger:       httpLogger,
	}
}

// MaxMediaSize returns the download size limit in bytes.
func (c *Client) MaxMediaSize() int64 {
	return c.maxMediaSize
}

// GetJSON fetches url and decodes the JSON body into dest.
func (c *Client) GetJSON(ctx context.Context, url string, dest any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	if err := sonic.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", url, err)
	}

	return nil
}

// Download fetches url, failing with ErrMediaTooLarge past the media size limit.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug("Downloading media", zap.String("url", url))

	resp, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.ContentLength > c.maxMediaSize {
		return nil, ErrMediaTooLarge
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxMediaSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > c.maxMediaSize {
		return nil, ErrMediaTooLarge
	}

	return body, nil
}

// get sends a GET request and rejects every status other than 200.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	resp, err := c.http.NewRequest().
		Method(http.MethodGet).
		URL(url).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		statusErr := &StatusError{URL: url, StatusCode: resp.StatusCode}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrPostNotFound, statusErr)
		}
		return nil, statusErr
	}

	return resp, nil
}

// statusMiddleware sets the user agent and marks rate limits and server
// errors as temporary so the retry middleware repeats them.
type statusMiddleware struct {
	userAgent string
	logger    axonetLogger.Logger
}

func newStatusMiddleware(userAgent string) *statusMiddleware {
	return &statusMiddleware{
		userAgent: userAgent,
		logger:    &axonetLogger.NoOpLogger{},
	}
}

// Process implements middleware.Middleware.
func (m *statusMiddleware) Process(
	ctx context.Context, httpClient *http.Client, req *http.Request, next middleware.NextFunc,
) (*http.Response, error) {
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := next(ctx, httpClient, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		resp.Body.Close()

		m.logger.WithFields(
			axonetLogger.String("url", req.URL.String()),
			axonetLogger.Int("status_code", resp.StatusCode),
		).Debug("Retrying failed request")

		return nil, fmt.Errorf("%w: %w", axonetErrors.ErrTemporary,
			&StatusError{URL: req.URL.String(), StatusCode: resp.StatusCode})
	}

	return resp, nil
}

// SetLogger implements middleware.Middleware.
func (m *statusMiddleware) SetLogger(l axonetLogger.Logger) {
	m.logger = l
}
