package saxo

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"

	"fxstream/internal/domain"
)

// TokenCacheKey is where the authorization flow parks the current OAuth
// token document.
const TokenCacheKey = "saxo:current_token"

// TokenProvider yields a bearer credential for the feed. Callers depend on
// this interface only; which source produced the token is an implementation
// detail of the chain.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed token from configuration. An empty
// token defers to the next provider in the chain.
type StaticTokenProvider struct {
	Value string
}

func (p StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if p.Value == "" {
		return "", domain.ErrNoToken
	}
	return p.Value, nil
}

// CacheTokenProvider reads the OAuth token document the authorization flow
// stores in the cache and extracts its access_token field.
type CacheTokenProvider struct {
	Cache domain.Cache
	Key   string
}

func (p CacheTokenProvider) Token(ctx context.Context) (string, error) {
	key := p.Key
	if key == "" {
		key = TokenCacheKey
	}

	raw, err := p.Cache.Get(ctx, key)
	if err != nil {
		return "", domain.ErrNoToken
	}

	var doc struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil || doc.AccessToken == "" {
		return "", domain.ErrNoToken
	}
	return doc.AccessToken, nil
}

// EnvTokenProvider reads the token from an environment variable. Intended
// for standalone runs and local testing.
type EnvTokenProvider struct {
	Name string
}

func (p EnvTokenProvider) Token(ctx context.Context) (string, error) {
	name := p.Name
	if name == "" {
		name = "SAXO_API_TOKEN"
	}
	if token := os.Getenv(name); token != "" {
		return token, nil
	}
	return "", domain.ErrNoToken
}

// ChainTokenProvider tries each provider in order and returns the first
// token found. The precedence is fixed at construction and documented by
// the order of its elements.
type ChainTokenProvider struct {
	Providers []TokenProvider
	Logger    *slog.Logger
}

// NewTokenChain builds the standard precedence: configured token, then the
// cache document, then the environment.
func NewTokenChain(configured string, cache domain.Cache, logger *slog.Logger) ChainTokenProvider {
	return ChainTokenProvider{
		Providers: []TokenProvider{
			StaticTokenProvider{Value: configured},
			CacheTokenProvider{Cache: cache},
			EnvTokenProvider{},
		},
		Logger: logger,
	}
}

func (p ChainTokenProvider) Token(ctx context.Context) (string, error) {
	for _, provider := range p.Providers {
		token, err := provider.Token(ctx)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrNoToken) {
			return "", err
		}
	}
	if p.Logger != nil {
		p.Logger.Error("no token source produced a credential")
	}
	return "", domain.ErrNoToken
}
