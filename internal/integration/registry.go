package integration

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/robalyx/embedder/internal/database/types/enum"
	"go.uber.org/zap"
)

// Definition declares how URLs map to an integration and how its client is built.
type Definition struct {
	Integration enum.Integration
	// Domains are matched as substrings of the URL.
	Domains []string
	// Match optionally narrows a domain match, e.g. to post URLs only.
	Match func(url string) bool
	// Factory builds the client. It runs at most once.
	Factory func() (Fetcher, error)
}

// matches reports whether the URL belongs to this definition.
// Any domain may match, the predicate then has the final say.
func (d *Definition) matches(url string) bool {
	if !slices.ContainsFunc(d.Domains, func(domain string) bool { return strings.Contains(url, domain) }) {
		return false
	}
	return d.Match == nil || d.Match(url)
}

// Handler is a resolved integration client.
type Handler struct {
	Integration enum.Integration
	Fetcher     Fetcher
}

// entry holds the lazily constructed client of a definition.
type entry struct {
	def     Definition
	once    sync.Once
	fetcher Fetcher
	err     error
}

func (e *entry) get() (Fetcher, error) {
	e.once.Do(func() {
		if e.def.Factory == nil {
			e.err = &ConfigurationError{Integration: e.def.Integration, Err: ErrNoClient}
			return
		}

		fetcher, err := e.def.Factory()
		if err != nil {
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				err = &ConfigurationError{Integration: e.def.Integration, Err: err}
			}
			e.err = err
			return
		}
		e.fetcher = fetcher
	})
	return e.fetcher, e.err
}

// Registry dispatches URLs to integration clients.
type Registry struct {
	entries []*entry
	logger  *zap.Logger
}

// NewRegistry creates a registry. Definitions are tried in the given order.
func NewRegistry(logger *zap.Logger, defs ...Definition) *Registry {
	entries := make([]*entry, 0, len(defs))
	for _, def := range defs {
		entries = append(entries, &entry{def: def})
	}

	return &Registry{
		entries: entries,
		logger:  logger.Named("registry"),
	}
}

// Resolve returns the handler of the first definition matching the URL.
func (r *Registry) Resolve(url string) (*Handler, error) {
	for _, e := range r.entries {
		if !e.def.matches(url) {
			continue
		}

		fetcher, err := e.get()
		if err != nil {
			r.logger.Debug("Integration unavailable",
				zap.String("integration", e.def.Integration.String()),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %w", ErrHandlerUnavailable, err)
		}

		return &Handler{Integration: e.def.Integration, Fetcher: fetcher}, nil
	}

	return nil, ErrUnsupportedURL
}

// ShouldHandle reports whether the URL resolves to an available integration.
func (r *Registry) ShouldHandle(url string) bool {
	_, err := r.Resolve(url)
	return err == nil
}

// Integrations returns the registered integrations in resolution order.
func (r *Registry) Integrations() []enum.Integration {
	result := make([]enum.Integration, 0, len(r.entries))
	for _, e := range r.entries {
		result = append(result, e.def.Integration)
	}
	return result
}
