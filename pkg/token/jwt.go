// Package token 提供了用于生成和验证 JSON Web Tokens (JWT) 的功能。
package token

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 负责管理 JWT 的生成和验证。
type JWTManager struct {
	secretKey   []byte
	issuer      string
	tokenExpiry time.Duration
}

// CustomClaims 定义了我们想要在 JWT 中存储的自定义数据。
// Subject 保存会员 ID，Email 便于日志排查。
type CustomClaims struct {
	MemberID uint   `json:"memberId"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// NewJWTManager 创建一个新的 JWTManager 实例。
// expirationMinutes: access token 的过期时间（分钟）。
func NewJWTManager(secret, issuer string, expirationMinutes int) *JWTManager {
	return &JWTManager{
		secretKey:   []byte(secret),
		issuer:      issuer,
		tokenExpiry: time.Duration(expirationMinutes) * time.Minute,
	}
}

// GenerateToken 为会员签发一个 access token。
func (m *JWTManager) GenerateToken(memberID uint, email string) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		MemberID: memberID,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   strconv.FormatUint(uint64(memberID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 验证给定的 token 字符串。
// 签名不匹配、已过期或签发者不一致时返回错误。
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RemainingTTL 返回 token 距离过期还剩多久，已过期时返回 0。
func (c *CustomClaims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
