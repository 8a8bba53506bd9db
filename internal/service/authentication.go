// File: internal/service/authentication.go
package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"foodmap/internal/kv"
	"foodmap/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "refresh_token:"

var (
	ErrInvalidPassword     = errors.New("invalid password")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

var (
	randRead        = rand.Read
	jsonMarshal     = json.Marshal
	jsonUnmarshal   = json.Unmarshal
	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims
)

// CustomClaims 定義 JWT 負載內容；Role 決定能否通過管理員檢查
type CustomClaims struct {
	UserID int        `json:"uid"`
	Name   string     `json:"name"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *CustomClaims) IsAdmin() bool { return c.Role == model.RoleAdmin }

// RefreshTokenData 是存在 Redis 的 refresh token 內容。角色不存在這裡，
// 換發時會重新讀取使用者，角色異動才會立即生效
type RefreshTokenData struct {
	UserID   int       `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// Tokens 簽發與驗證存取令牌
type Tokens struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokens(secret string) *Tokens {
	return &Tokens{
		Secret:     []byte(secret),
		AccessTTL:  24 * time.Hour,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// AuthenticateUser 比對使用者的密碼哈希
func AuthenticateUser(ctx context.Context, user model.User, password string) error {
	if user.PasswordHash == "" {
		return ErrInvalidPassword
	}
	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// IssueAccessToken 依據使用者資訊產生 JWT，回傳令牌與到期時間
func (t *Tokens) IssueAccessToken(user model.User) (string, time.Time, error) {
	if len(t.Secret) == 0 {
		return "", time.Time{}, fmt.Errorf("JWT secret not set")
	}
	if !user.Role.Valid() {
		return "", time.Time{}, fmt.Errorf("unknown role %q", user.Role)
	}

	now := timeNow()
	exp := now.Add(t.AccessTTL)
	claims := CustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccessToken 驗證並解析 JWT 令牌，只接受 HMAC 簽章
func (t *Tokens) VerifyAccessToken(tokenString string) (*CustomClaims, error) {
	if len(t.Secret) == 0 {
		return nil, fmt.Errorf("JWT secret not set")
	}

	token, err := parseWithClaims(tokenString, &CustomClaims{}, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// IssueRefreshToken 產生隨機 refresh token 並寫入 Redis
func (t *Tokens) IssueRefreshToken(ctx context.Context, store kv.Store, user model.User) (string, error) {
	buf := make([]byte, 32)
	if _, err := randRead(buf); err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(buf)

	data, err := jsonMarshal(RefreshTokenData{UserID: user.ID, IssuedAt: timeNow().UTC()})
	if err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	if err := store.Set(ctx, refreshKeyPrefix+token, data, t.RefreshTTL).Err(); err != nil {
		return "", fmt.Errorf("IssueRefreshToken: %w", err)
	}
	return token, nil
}

// ConsumeRefreshToken 取出並同時刪除 refresh token 對應的 session。
// 同一個 token 併發換發時只有一個請求會成功
func (t *Tokens) ConsumeRefreshToken(ctx context.Context, store kv.Store, token string) (*RefreshTokenData, error) {
	if token == "" {
		return nil, ErrInvalidRefreshToken
	}
	raw, err := store.GetDel(ctx, refreshKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("ConsumeRefreshToken: %w", err)
	}

	var d RefreshTokenData
	if err := jsonUnmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("ConsumeRefreshToken: %w", err)
	}
	if d.UserID == 0 {
		return nil, ErrInvalidRefreshToken
	}
	return &d, nil
}

// RevokeRefreshToken 刪除 session；不存在的 token 視為成功
func (t *Tokens) RevokeRefreshToken(ctx context.Context, store kv.Store, token string) error {
	if err := store.Del(ctx, refreshKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("RevokeRefreshToken: %w", err)
	}
	return nil
}
