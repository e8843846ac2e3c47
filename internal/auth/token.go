package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL bounds the lifetime of an access token unless configured
// otherwise.
const DefaultTokenTTL = 30 * time.Minute

// TokenClaims is the signed payload of an access token. Authorities carries
// the principal's flattened authority set as a comma-joined string.
type TokenClaims struct {
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// AuthorityList parses the authorities claim back into the authority set.
func (c *TokenClaims) AuthorityList() []string {
	return SplitAuthorities(c.Authorities)
}

// Codec issues and verifies HS256-signed access tokens. It is immutable
// after construction and safe for concurrent use; the secret and issuer are
// loaded once at startup and never change.
type Codec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures Codec construction.
type CodecOption func(*Codec)

// WithClock overrides the codec time source. Used by tests to walk tokens
// across their validity window.
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) {
		if fn != nil {
			c.now = fn
		}
	}
}

// WithTTL overrides the token lifetime.
func WithTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// NewCodec constructs a Codec for the given shared secret and issuer.
func NewCodec(secret, issuer string, opts ...CodecOption) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	issuer = strings.TrimSpace(issuer)
	if issuer == "" {
		return nil, errors.New("auth: token issuer is required")
	}
	c := &Codec{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs a fresh token for the principal. Every call mints a new jti,
// so two tokens for the same principal are never byte-identical.
func (c *Codec) Issue(principal Principal) (string, error) {
	username := strings.TrimSpace(principal.Username)
	if username == "" {
		return "", errors.New("auth: principal username is required")
	}
	now := c.now().UTC()
	claims := TokenClaims{
		Authorities: JoinAuthorities(principal.Authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Verify checks the signature and claims of a token string and returns the
// decoded claims. The failure sentinels name the first check that failed so
// callers can distinguish forged from merely stale tokens; the HTTP layer
// deliberately collapses them all into the same anonymous outcome.
func (c *Codec) Verify(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSignature
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, ErrIssuerMismatch
		default:
			return nil, ErrInvalidToken
		}
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// PrincipalFromClaims rebuilds the request principal from verified claims.
func PrincipalFromClaims(claims *TokenClaims) Principal {
	return Principal{
		Username:    claims.Subject,
		Authorities: claims.AuthorityList(),
	}
}
