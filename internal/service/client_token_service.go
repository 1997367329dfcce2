package service

import (
	"strings"
	"time"

	"github.com/shopizen/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const defaultClientTokenHours = 24 * 30

// ClientClaims 客户端令牌声明
type ClientClaims struct {
	ClientID string `json:"client_id"`
	jwt.RegisteredClaims
}

// ClientTokenService 签发与解析客户端工作区令牌
type ClientTokenService struct {
	cfg   config.ClientTokenConfig
	clock Clock
}

// NewClientTokenService 创建客户端令牌服务
func NewClientTokenService(cfg config.ClientTokenConfig, clock Clock) *ClientTokenService {
	return &ClientTokenService{cfg: cfg, clock: clock}
}

// Issue 签发新的客户端令牌，clientID 为空时生成新ID
func (s *ClientTokenService) Issue(clientID string) (string, string, time.Time, error) {
	clientID = strings.TrimSpace(clientID)
	if clientID == "" {
		clientID = uuid.NewString()
	}
	hours := s.cfg.ExpireHours
	if hours <= 0 {
		hours = defaultClientTokenHours
	}
	now := s.clock.now()
	expiresAt := now.Add(time.Duration(hours) * time.Hour)
	claims := ClientClaims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, clientID, expiresAt, nil
}

// Parse 解析客户端令牌，返回客户端ID
func (s *ClientTokenService) Parse(tokenString string) (string, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", ErrClientTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.now),
	)
	claims := &ClientClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SecretKey), nil
	})
	if err != nil || !token.Valid || strings.TrimSpace(claims.ClientID) == "" {
		return "", ErrClientTokenInvalid
	}
	return claims.ClientID, nil
}
