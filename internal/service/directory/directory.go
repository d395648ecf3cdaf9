package directory

import (
	"context"
	"fmt"
	"time"

	drepo "SigTrail/internal/domain/repository"
	pkgcache "SigTrail/pkg/cache"
	xhttp "SigTrail/pkg/http"
	applogger "SigTrail/pkg/logger"
)

// Service resolves trading account IDs to display names through the
// accounts API, with a cache in front of it.
type Service struct {
	base     string
	client   *xhttp.Client
	cache    pkgcache.Service
	cacheTTL time.Duration
	log      *applogger.Logger
}

type Option func(*Service)

// WithCache sets the cache used for resolved names.
func WithCache(c pkgcache.Service, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithHTTPTimeout sets the outbound request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.client = xhttp.NewClient(xhttp.WithTimeout(d))
	}
}

func New(baseURL string, log *applogger.Logger, opts ...Option) *Service {
	s := &Service{
		base:     baseURL,
		client:   xhttp.NewClient(xhttp.WithTimeout(5 * time.Second)),
		cacheTTL: 5 * time.Minute,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type accountResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ResolveAccountName returns the display name for an account ID.
// Misses and upstream failures both report ok=false; callers fall back
// to the raw ID.
func (s *Service) ResolveAccountName(ctx context.Context, accountID string) (string, bool) {
	if accountID == "" {
		return "", false
	}

	key := "account:name:" + accountID
	if s.cache != nil {
		var name string
		if err := s.cache.Get(ctx, key, &name); err == nil && name != "" {
			return name, true
		}
	}

	var acc accountResponse
	err := s.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/accounts/%s", s.base, accountID),
	}, &acc)
	if err != nil {
		s.log.Debug("account lookup failed",
			applogger.String("account_id", accountID),
			applogger.Error(err))
		return "", false
	}
	if acc.Name == "" {
		return "", false
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, acc.Name, s.cacheTTL); err != nil {
			s.log.Debug("account cache set failed", applogger.Error(err))
		}
	}
	return acc.Name, true
}

var _ drepo.AccountDirectory = (*Service)(nil)
