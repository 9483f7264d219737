// Package token issues and parses the signed bearer tokens used as
// stateless credentials: short-lived access tokens and long-lived refresh
// tokens. Verification is signature plus expiry only; the server keeps no
// per-token state.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "clavis/pkg/domain"
)

// Kind discriminates access from refresh tokens so one can never be used
// where the other is expected.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Parse failure modes. Callers react differently: expired suggests the
// client should refresh, invalid is rejected outright.
var (
	ErrInvalid = errors.New("token invalid")
	ErrExpired = errors.New("token expired")
)

// Claims carried by every issued token. The subject is the canonical UUID
// text form of the user ID, independent of the codec's native types, so any
// consumer can interpret it.
type Claims struct {
	TokenUse Kind `json:"token_use"`
	jwt.RegisteredClaims
}

// Config selects the signing algorithm and key material. HMAC methods
// (HS256/HS384/HS512) sign with Secret; RS256 and ES256 sign with a PEM
// private key and verify with its public half.
type Config struct {
	Algorithm     string
	Secret        string
	PrivateKeyPEM []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec creates and parses tokens. It is built once at startup and is
// immutable afterwards; issuing and parsing are pure computations safe for
// concurrent use.
type Codec struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithNow overrides the codec's clock. Tests use it to probe the expiry
// boundary deterministically.
func WithNow(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// New builds a Codec from configuration. Key material is parsed here,
// exactly once; a bad key or unsupported algorithm is a fatal configuration
// error, not a per-request condition.
func New(cfg Config, opts ...Option) (*Codec, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("token TTLs must be positive")
	}

	c := &Codec{
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}

	switch cfg.Algorithm {
	case "HS256", "HS384", "HS512":
		if cfg.Secret == "" {
			return nil, fmt.Errorf("signing secret is required for %s", cfg.Algorithm)
		}
		c.method = jwt.GetSigningMethod(cfg.Algorithm)
		c.signKey = []byte(cfg.Secret)
		c.verifyKey = []byte(cfg.Secret)
	case "RS256":
		key, err := jwt.ParseRSAPrivateKeyFromPEM(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse RSA private key: %w", err)
		}
		c.method = jwt.SigningMethodRS256
		c.signKey = key
		c.verifyKey = &key.PublicKey
	case "ES256":
		key, err := jwt.ParseECPrivateKeyFromPEM(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("parse EC private key: %w", err)
		}
		c.method = jwt.SigningMethodES256
		c.signKey = key
		c.verifyKey = &key.PublicKey
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", cfg.Algorithm)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// IssueAccess mints an access token for the subject, expiring after the
// configured access TTL.
func (c *Codec) IssueAccess(subject id.UserID) (string, error) {
	return c.issue(KindAccess, subject, c.accessTTL)
}

// IssueRefresh mints a refresh token for the subject, expiring after the
// configured refresh TTL.
func (c *Codec) IssueRefresh(subject id.UserID) (string, error) {
	return c.issue(KindRefresh, subject, c.refreshTTL)
}

func (c *Codec) issue(kind Kind, subject id.UserID, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		TokenUse: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Parse verifies signature, structure, kind and expiry. It returns
// ErrInvalid for a bad signature, malformed structure, missing claims or a
// kind mismatch, and ErrExpired for a token past its expiry.
//
// Expiry policy: zero leeway, inclusive boundary. The library's own claims
// validation is disabled and the check done here instead, so a token
// presented at exactly its expiry instant is still valid and one second
// later it is not. Verification against RSA or ECDSA public keys is
// possible for external consumers; this codec always verifies with the key
// pair it was configured with.
func (c *Codec) Parse(tokenString string, expected Kind) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalid
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		// Reject algorithm confusion: only the configured method verifies.
		if t.Method.Alg() != c.method.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return c.verifyKey, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil || !parsed.Valid {
		return nil, ErrInvalid
	}

	if claims.TokenUse != expected {
		return nil, ErrInvalid
	}
	if claims.ExpiresAt == nil || claims.Subject == "" {
		return nil, ErrInvalid
	}
	if c.now().After(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}

	return claims, nil
}
