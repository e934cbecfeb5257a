package auth

import (
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

// TokenKeeper holds the bearer token for the running client. JWTs are parsed
// without signature verification to read their expiry; the backend owns the
// key. Tokens that are not JWTs never expire client-side.
type TokenKeeper struct {
	mu     sync.RWMutex
	token  string
	parsed jwt.Token
	skew   time.Duration
}

func NewTokenKeeper(skew time.Duration) *TokenKeeper {
	return &TokenKeeper{skew: skew}
}

func (k *TokenKeeper) Set(token string) {
	parsed, err := jwt.ParseInsecure([]byte(token))
	if err != nil {
		parsed = nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = token
	k.parsed = parsed
}

// Token implements the backend's token source.
func (k *TokenKeeper) Token() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.token
}

// Expired reports whether the held token is past its expiry at now. An empty
// keeper is not expired; there is nothing to expire.
func (k *TokenKeeper) Expired(now time.Time) bool {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.parsed == nil {
		return false
	}

	// Only exp decides; a drifting clock must not turn iat or nbf into a sign-out.
	options := []jwt.ValidateOption{
		jwt.WithResetValidators(true),
		jwt.WithValidator(jwt.IsExpirationValid()),
		jwt.WithClock(jwt.ClockFunc(func() time.Time { return now })),
	}
	if k.skew > 0 {
		options = append(options, jwt.WithAcceptableSkew(k.skew))
	}
	return jwt.Validate(k.parsed, options...) != nil
}

// ExpiresAt returns the token's exp claim, if it has one.
func (k *TokenKeeper) ExpiresAt() (time.Time, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if k.parsed == nil || k.parsed.Expiration().IsZero() {
		return time.Time{}, false
	}
	return k.parsed.Expiration(), true
}

func (k *TokenKeeper) Clear() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.token = ""
	k.parsed = nil
}
