package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/passkeeper/passkeeper-server/internal/model"
)

// AccessTTL is the lifetime of an access token. Access tokens are
// stateless and cannot be revoked before expiry.
const AccessTTL = 15 * time.Minute

// Claims represents access token claims with the user's email.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// JWT implements model.AccessTokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey string
	issuer    string
	audience  string
	now       func() time.Time
}

// NewJWT creates a new JWT token manager. The signing key, issuer and
// audience are process-wide and immutable after startup.
func NewJWT(secretKey, issuer, audience string) *JWT {
	return &JWT{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		now:       time.Now,
	}
}

var _ model.AccessTokenManager = (*JWT)(nil)

// Issue creates a signed access token asserting the user identity,
// expiring AccessTTL after issuance.
func (j *JWT) Issue(userID uuid.UUID, email string) (string, error) {
	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
		Email: email,
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// Parse validates signature, expiry, issuer and audience and extracts
// the user identity. Expired or badly-signed tokens are rejected
// outright; there is no partial trust.
func (j *JWT) Parse(tokenString string) (uuid.UUID, string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	},
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithTimeFunc(func() time.Time { return j.now() }),
	)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return uuid.Nil, "", fmt.Errorf("access token is invalid")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("invalid subject claim: %w", err)
	}

	return userID, claims.Email, nil
}
