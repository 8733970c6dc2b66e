package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken 所有校验失败统一返回（签名/结构/过期不区分，避免泄露细节）
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AccountID subject 即账号 ID
func (c *Claims) AccountID() string { return c.Subject }

type JWTer struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration // 短期（~15min）
	RefreshTTL time.Duration // 长期（~7d）
}

func (j *JWTer) IssueAccessToken(uid, email string) (string, error) {
	return j.issue(uid, email, j.AccessTTL)
}

func (j *JWTer) IssueRefreshToken(uid, email string) (string, error) {
	return j.issue(uid, email, j.RefreshTTL)
}

// IssuePair 一次签发 access + refresh
func (j *JWTer) IssuePair(uid, email string) (access string, refresh string, err error) {
	if access, err = j.IssueAccessToken(uid, email); err != nil {
		return "", "", err
	}
	if refresh, err = j.IssueRefreshToken(uid, email); err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (j *JWTer) issue(uid, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    j.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			// jti 保证同秒内重复签发也不产生相同 token，
			// 否则"最新 refresh token 才有效"的比对会失真
			ID: uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	}, jwt.WithIssuer(j.Issuer))

	if err != nil {
		return nil, ErrInvalidToken
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, ErrInvalidToken
}
