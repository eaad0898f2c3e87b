package sheets

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// CachedToken: токен доступа и момент его истечения.
type CachedToken struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// IsValid: токен есть и ещё не истёк. Нулевое ExpiresAt означает бессрочный токен.
func (t CachedToken) IsValid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	return t.ExpiresAt.IsZero() || t.ExpiresAt.After(now)
}

// TokenCache держит один токен и обновляет его из source по требованию.
// Параллельные обновления схлопываются в один запрос. Реализует oauth2.TokenSource.
type TokenCache struct {
	source oauth2.TokenSource
	clock  clockwork.Clock

	mu      sync.Mutex
	current CachedToken
	group   singleflight.Group
}

func NewTokenCache(source oauth2.TokenSource, clock clockwork.Clock) *TokenCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenCache{source: source, clock: clock}
}

// Token отдаёт закешированный токен или получает новый.
func (c *TokenCache) Token() (*oauth2.Token, error) {
	if cached, ok := c.valid(); ok {
		return toOAuth(cached), nil
	}

	v, err, _ := c.group.Do("token", func() (interface{}, error) {
		// Пока ждали, токен мог обновить другой вызов.
		if cached, ok := c.valid(); ok {
			return cached, nil
		}
		tok, err := c.source.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch spreadsheet access token: %w", err)
		}
		if tok == nil || tok.AccessToken == "" {
			return nil, errors.New("spreadsheet access token is empty")
		}
		fresh := CachedToken{AccessToken: tok.AccessToken, TokenType: tok.TokenType, ExpiresAt: tok.Expiry}
		c.mu.Lock()
		c.current = fresh
		c.mu.Unlock()
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return toOAuth(v.(CachedToken)), nil
}

// Current: снимок закешированного токена (для диагностики и тестов).
func (c *TokenCache) Current() CachedToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *TokenCache) valid() (CachedToken, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.current.IsValid(c.clock.Now())
}

func toOAuth(t CachedToken) *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{AccessToken: t.AccessToken, TokenType: tokenType, Expiry: t.ExpiresAt}
}
