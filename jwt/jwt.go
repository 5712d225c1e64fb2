package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 簽章錯誤、過期或格式錯誤都回傳同一個錯誤
var ErrInvalidToken = errors.New("invalid token")

const (
	DefaultAccessTTL  = 20 * time.Second
	DefaultRefreshTTL = 30 * time.Second
)

type Claims struct {
	UserID uint `json:"userid"`
	jwt.RegisteredClaims
}

// Service 使用兩把不同的金鑰分別簽發Access Token和Refresh Token
type Service struct {
	accessKey  []byte
	refreshKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

func WithTTL(access, refresh time.Duration) Option {
	return func(s *Service) {
		s.accessTTL = access
		s.refreshTTL = refresh
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(accessSecret, refreshSecret string, opts ...Option) *Service {
	s := &Service{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// 生成Access Token和Refresh Token
func (s *Service) IssueTokens(userID uint) (accessToken string, refreshToken string, err error) {
	accessToken, err = s.sign(userID, s.accessKey, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.sign(userID, s.refreshKey, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// 驗證Access Token並回傳UserID
func (s *Service) VerifyAccess(tokenString string) (uint, error) {
	claims, err := s.parse(tokenString, s.accessKey)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// 驗證Refresh Token後為同一個使用者簽發新的Access Token
func (s *Service) RefreshAccess(refreshToken string) (string, uint, error) {
	claims, err := s.parse(refreshToken, s.refreshKey)
	if err != nil {
		return "", 0, err
	}
	accessToken, err := s.sign(claims.UserID, s.accessKey, s.accessTTL)
	if err != nil {
		return "", 0, err
	}
	return accessToken, claims.UserID, nil
}

func (s *Service) sign(userID uint, key []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(ttl)),
		},
	})
	return token.SignedString(key)
}

func (s *Service) parse(tokenString string, key []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
