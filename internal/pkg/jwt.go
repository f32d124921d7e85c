package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenInvalid   = errors.New("token invalid")
	ErrRefreshExpired = errors.New("refresh expired")
	ErrRefreshInvalid = errors.New("refresh invalid")
)

const (
	AccessTTL  = time.Minute * 30
	RefreshTTL = time.Hour * 24 * 14

	subjectAccess  = "access"
	subjectRefresh = "refresh"
)

type Claims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenIssuer 签发和校验 access / refresh 两种 token，二者使用不同密钥
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenIssuer(accessSecret, refreshSecret string) *TokenIssuer {
	return &TokenIssuer{accessSecret: []byte(accessSecret), refreshSecret: []byte(refreshSecret)}
}

func (i *TokenIssuer) sign(userID uint64, username, subject string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   subject,
		},
	})
	return token.SignedString(secret)
}

func (i *TokenIssuer) GeneratePair(userID uint64, username string) (*Pair, error) {
	access, err := i.sign(userID, username, subjectAccess, AccessTTL, i.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := i.sign(userID, username, subjectRefresh, RefreshTTL, i.refreshSecret)
	if err != nil {
		return nil, err
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (i *TokenIssuer) parse(tokenStr, subject string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithSubject(subject))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ParseAccess 解析 access token
func (i *TokenIssuer) ParseAccess(tokenStr string) (*Claims, error) {
	claims, err := i.parse(tokenStr, subjectAccess, i.accessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Refresh 用 refresh token 换一对新的 token
func (i *TokenIssuer) Refresh(refreshToken string) (*Pair, *Claims, error) {
	claims, err := i.parse(refreshToken, subjectRefresh, i.refreshSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, nil, ErrRefreshExpired
		}
		return nil, nil, ErrRefreshInvalid
	}
	pair, err := i.GeneratePair(claims.UserID, claims.Username)
	if err != nil {
		return nil, nil, err
	}
	return pair, claims, nil
}
