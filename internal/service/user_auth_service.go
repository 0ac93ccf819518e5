package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/aipath-api/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuthService 用户身份令牌服务。
// 令牌由外部身份服务使用共享密钥签发，subject 为用户 uid。
type UserAuthService struct {
	cfg config.JWTConfig
}

// NewUserAuthService 创建用户身份令牌服务
func NewUserAuthService(cfg config.JWTConfig) *UserAuthService {
	return &UserAuthService{cfg: cfg}
}

// UserJWTClaims 用户 JWT 声明
type UserJWTClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UserID 返回令牌中的用户 uid
func (c *UserJWTClaims) UserID() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Subject)
}

// GenerateUserJWT 生成用户 JWT Token，供种子数据与联调使用
func (s *UserAuthService) GenerateUserJWT(userID, email string, expireHours int) (string, time.Time, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if expireHours <= 0 {
		expireHours = resolveUserJWTExpireHours(s.cfg)
	}
	now := time.Now()
	expiresAt := now.Add(time.Duration(expireHours) * time.Hour)
	claims := UserJWTClaims{
		Email: strings.TrimSpace(email),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseUserJWT 解析用户 JWT Token
func (s *UserAuthService) ParseUserJWT(tokenString string) (*UserJWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &UserJWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID() == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func resolveUserJWTExpireHours(cfg config.JWTConfig) int {
	if cfg.ExpireHours <= 0 {
		return 24
	}
	return cfg.ExpireHours
}
