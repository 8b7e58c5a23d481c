package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// PrincipalClaims is the JWT shape carrying a principal snapshot
type PrincipalClaims struct {
	jwt.RegisteredClaims
	UID         string      `json:"uid"`
	Username    string      `json:"username,omitempty"`
	Authorities []Authority `json:"authorities,omitempty"`
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        jwt.ClaimStrings
	logger          Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(signingKey []byte, tokenExpiration int, issuer string, audience jwt.ClaimStrings, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		issuer:          issuer,
		audience:        audience,
		logger:          logger,
	}
}

// NewTokenServiceFromConfig builds the service from the recognized
// configuration surface.
func NewTokenServiceFromConfig(config Config, logger Logger) TokenService {
	return NewTokenService(
		[]byte(config.GetSigningKey()),
		config.GetTokenExpiration(),
		config.GetIssuer(),
		jwt.ClaimStrings(config.GetAudience()),
		logger,
	)
}

// Generate signs a token whose claims carry the principal snapshot
func (ts *TokenServiceImpl) Generate(principal Principal) (string, error) {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &PrincipalClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    ts.issuer,
			Subject:   principal.AccountID,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ts.tokenExpiration) * time.Hour)),
		},
		UID:         principal.AccountID,
		Username:    principal.Username,
		Authorities: principal.Authorities,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign principal token")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning the principal
// snapshot it carries
func (ts *TokenServiceImpl) Validate(tokenString string) (Principal, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &PrincipalClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("token validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, errors.Wrap(err, errors.CategoryAuth, "principal token is expired").
				WithCode(errors.CodeUnauthorized)
		}
		return Principal{}, errors.Wrap(err, errors.CategoryAuth, "principal token is malformed").
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*PrincipalClaims)
	if !ok || !token.Valid {
		ts.logger.Error("token validate could not decode claims")
		return Principal{}, errors.New("unable to map principal claims", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized)
	}

	return Principal{
		AccountID:   claims.UID,
		Username:    claims.Username,
		Authorities: claims.Authorities,
	}, nil
}

var _ TokenService = (*TokenServiceImpl)(nil)
