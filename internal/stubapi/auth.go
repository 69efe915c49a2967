package stubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"dishdash/internal/core/api"
	"dishdash/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	ctxUserKey         = "user"
	credentialsInvalid = "Could not validate credentials"
)

// TokenIssuer 簽發與驗證 HS256 權杖
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer 創建權杖簽發器
func NewTokenIssuer(secret string, ttl time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, common.NewError(common.ErrCodeConfig, "jwt secret is required", 0, nil)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 為使用者簽發權杖
func (t *TokenIssuer) Issue(username string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse 驗證權杖並回傳使用者名稱
func (t *TokenIssuer) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token claims")
	}
	return claims.Subject, nil
}

// AuthRequired 驗證 Bearer 權杖並把使用者放進 context
func AuthRequired(issuer *TokenIssuer, store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			c.Header("WWW-Authenticate", "Bearer")
			common.WriteErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
			return
		}

		username, err := issuer.Parse(strings.TrimSpace(raw))
		if err != nil {
			common.LogDebug("權杖驗證失敗", zap.Error(err))
			c.Header("WWW-Authenticate", "Bearer")
			common.WriteErrorResponse(c, http.StatusUnauthorized, credentialsInvalid)
			return
		}

		user, ok := store.User(username)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			common.WriteErrorResponse(c, http.StatusUnauthorized, credentialsInvalid)
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

// currentUser 取出 AuthRequired 放入的使用者
func currentUser(c *gin.Context) api.User {
	v, _ := c.Get(ctxUserKey)
	u, _ := v.(api.User)
	return u
}
