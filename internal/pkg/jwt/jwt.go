package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/worktracker-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var ErrInvalidExpiration = errors.New("token expiration must be positive")

type Service interface {
	GenerateAccessToken(userID string, role user.Role, ttl time.Duration) (token string, expiresAt int64, err error)
	AccessTokenTTL() time.Duration
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenTTL time.Duration
	tokenAuth      *jwtauth.JWTAuth
	now            func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) AccessTokenTTL() time.Duration {
	return j.accessTokenTTL
}

func NewJWTService(secretKey string, accessTokenTTL time.Duration) Service {
	return &JWTService{
		accessTokenTTL: accessTokenTTL,
		tokenAuth:      jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:            time.Now,
	}
}

// GenerateAccessToken signs a bearer token for userID. A zero ttl uses the configured default.
func (j *JWTService) GenerateAccessToken(userID string, role user.Role, ttl time.Duration) (token string, expiresAt int64, err error) {
	if ttl == 0 {
		ttl = j.accessTokenTTL
	}
	if ttl <= 0 {
		return "", 0, ErrInvalidExpiration
	}
	expiresAt = j.now().Add(ttl).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"role":    string(role),
		"type":    "access",
		"exp":     expiresAt,
	})
	return tokenString, expiresAt, err
}
