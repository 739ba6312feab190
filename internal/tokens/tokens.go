package tokens

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *AccessClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

func (c *RefreshClaims) UserID() (uint, error) {
	return parseSubject(c.Subject)
}

type Issuer struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Now           func() time.Time
}

type Pair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	AccessExp    time.Time `json:"-"`
	RefreshExp   time.Time `json:"-"`
	JTI          string    `json:"-"`
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

func (i *Issuer) CreateAccessToken(userID uint, role string, exp time.Time) (string, error) {
	claims := AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.AccessSecret)
}

func (i *Issuer) CreateRefreshToken(userID uint, jti string, exp time.Time) (string, error) {
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.RefreshSecret)
}

// IssuePair signs a fresh access token and a refresh token with a new jti.
func (i *Issuer) IssuePair(userID uint, role string) (*Pair, error) {
	now := i.now()
	accessExp := now.Add(i.AccessTTL)
	refreshExp := now.Add(i.RefreshTTL)

	access, err := i.CreateAccessToken(userID, role, accessExp)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	jti := NewJTI()
	refresh, err := i.CreateRefreshToken(userID, jti, refreshExp)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		JTI:          jti,
	}, nil
}

func (i *Issuer) ParseAccess(tokenStr string) (*AccessClaims, error) {
	return AccessClaimsFromToken(tokenStr, i.AccessSecret, i.parserOptions()...)
}

func (i *Issuer) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	return RefreshClaimsFromToken(tokenStr, i.RefreshSecret, i.parserOptions()...)
}

func (i *Issuer) parserOptions() []jwt.ParserOption {
	if i.Now == nil {
		return nil
	}
	return []jwt.ParserOption{jwt.WithTimeFunc(i.Now)}
}

func AccessClaimsFromToken(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*AccessClaims, error) {
	var claims AccessClaims
	if err := parse(tokenStr, &claims, secret, opts); err != nil {
		return nil, err
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return &claims, nil
}

func RefreshClaimsFromToken(tokenStr string, secret []byte, opts ...jwt.ParserOption) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := parse(tokenStr, &claims, secret, opts); err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrInvalidToken)
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return &claims, nil
}

func parse(tokenStr string, claims jwt.Claims, secret []byte, opts []jwt.ParserOption) error {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return ErrInvalidToken
	}
	return nil
}

func parseSubject(sub string) (uint, error) {
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return uint(id), nil
}

func NewJTI() string {
	return uuid.NewString()
}

// HashToken is the at-rest form of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
