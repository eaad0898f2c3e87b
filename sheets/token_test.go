package sheets

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type countingSource struct {
	calls  atomic.Int32
	ttl    time.Duration
	clock  clockwork.Clock
	err    error
	before func()
}

func (s *countingSource) Token() (*oauth2.Token, error) {
	if s.before != nil {
		s.before()
	}
	n := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &oauth2.Token{
		AccessToken: "token-" + string(rune('0'+n)),
		Expiry:      s.clock.Now().Add(s.ttl),
	}, nil
}

func TestCachedToken_IsValid(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, CachedToken{}.IsValid(now))
	assert.True(t, CachedToken{AccessToken: "x"}.IsValid(now))
	assert.True(t, CachedToken{AccessToken: "x", ExpiresAt: now.Add(time.Second)}.IsValid(now))
	assert.False(t, CachedToken{AccessToken: "x", ExpiresAt: now}.IsValid(now))
	assert.False(t, CachedToken{AccessToken: "x", ExpiresAt: now.Add(-time.Minute)}.IsValid(now))
}

func TestTokenCache_ReusesUntilExpiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	src := &countingSource{ttl: time.Hour, clock: clock}
	cache := NewTokenCache(src, clock)

	tok, err := cache.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.TokenType)

	clock.Advance(30 * time.Minute)
	tok, err = cache.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-1", tok.AccessToken)
	assert.EqualValues(t, 1, src.calls.Load())

	clock.Advance(31 * time.Minute)
	tok, err = cache.Token()
	require.NoError(t, err)
	assert.Equal(t, "token-2", tok.AccessToken)
	assert.EqualValues(t, 2, src.calls.Load())
	assert.Equal(t, "token-2", cache.Current().AccessToken)
}

func TestTokenCache_ConcurrentRefreshFetchesOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	release := make(chan struct{})
	src := &countingSource{ttl: time.Hour, clock: clock, before: func() { <-release }}
	cache := NewTokenCache(src, clock)

	const callers = 8
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := cache.Token()
			assert.NoError(t, err)
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
}

func TestTokenCache_PropagatesSourceError(t *testing.T) {
	clock := clockwork.NewFakeClock()
	boom := errors.New("connector unavailable")
	cache := NewTokenCache(&countingSource{clock: clock, err: boom}, clock)

	_, err := cache.Token()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, cache.Current().IsValid(clock.Now()))
}
