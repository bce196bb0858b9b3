// Package auth issues and verifies the HS256 bearer tokens used by the API
// and defines the Principal derived from a verified token.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/calisthenics-hub/api/apperrors"
	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

var (
	// ErrMissingSecret is returned when no signing secret is configured
	ErrMissingSecret = errors.New("signing secret is required")

	errBadPrincipal = errors.New("token does not describe a valid principal")
)

// Principal is the identity proven by a verified token. It is only
// produced by Verifier and lives for a single request.
type Principal struct {
	SubjectID string
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// IsAdmin returns true if the principal has the admin role
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Claims is the JWT payload.
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Validate checks the claims required to build a Principal. It runs after
// the signature has been verified.
func (c *Claims) Validate() error {
	if c.Subject == "" {
		return fmt.Errorf("%w: missing sub", errBadPrincipal)
	}
	if !c.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", errBadPrincipal, c.Role)
	}
	if c.IssuedAt == nil {
		return fmt.Errorf("%w: missing iat", errBadPrincipal)
	}
	return nil
}

// Config holds token signing settings
type Config struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

func (c Config) clock() func() time.Time {
	if c.Now != nil {
		return c.Now
	}
	return time.Now
}

// Verifier validates bearer credentials against the shared secret. It holds
// no mutable state and is safe for concurrent use.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier for the given config.
func NewVerifier(cfg Config) (*Verifier, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(cfg.clock()),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Verifier{
		secret: secret,
		parser: jwt.NewParser(opts...),
	}, nil
}

// Verify authenticates a raw Authorization header value. An empty header
// is treated as absent.
func (v *Verifier) Verify(header string) (Principal, error) {
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return Principal{}, apperrors.Unauthorized(apperrors.MsgMissingAuthHeader)
	}
	return v.VerifyToken(header[len(bearerPrefix):])
}

// VerifyToken validates a bare token string.
//
// The parser checks the signature before any time-based claim, so a forged
// token is reported as INVALID_TOKEN whatever its exp claim says.
func (v *Verifier) VerifyToken(token string) (Principal, error) {
	claims := &Claims{}
	_, err := v.parser.ParseWithClaims(token, claims, v.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, errBadPrincipal):
			return Principal{}, apperrors.InvalidToken(err)
		case errors.Is(err, jwt.ErrTokenExpired):
			return Principal{}, apperrors.TokenExpired(err)
		default:
			return Principal{}, apperrors.InvalidToken(err)
		}
	}

	return Principal{
		SubjectID: claims.Subject,
		Role:      claims.Role,
		IssuedAt:  claims.IssuedAt.Time.UTC(),
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}, nil
}

func (v *Verifier) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return v.secret, nil
}

// Issuer signs tokens for authenticated users.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer for the given config.
func NewIssuer(cfg Config) (*Issuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, ErrMissingSecret
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", cfg.TTL)
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &Issuer{
		secret: secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.clock(),
	}, nil
}

// Issue signs a token for subjectID with the given role and returns it with
// its expiry time.
func (i *Issuer) Issue(subjectID string, role Role) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("subject is required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q", role)
	}

	now := i.now()
	expiresAt := now.Add(i.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt.Truncate(time.Second).UTC(), nil
}
