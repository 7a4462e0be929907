// Package credential encodes remember credentials for the client. The cookie
// value is an HS256 JWT whose subject is the user id and whose tok claim is
// the remember token.
package credential

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/services/logging"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredential   = errors.New("invalid remember credential")
	ErrExpiredCredential   = errors.New("remember credential has expired")
	ErrMalformedCredential = errors.New("malformed remember credential")
	ErrInvalidSignature    = errors.New("invalid remember credential signature")
)

type Claims struct {
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

type Service struct {
	config *config.CredentialConfig
	scope  string
	logger *logging.Service
	now    func() time.Time
}

func NewService(cfg *config.Config, logger *logging.Service) *Service {
	scope := cfg.Remember.Scope
	if scope == "" {
		scope = "user"
	}
	return &Service{
		config: &cfg.Credential,
		scope:  scope,
		logger: logger.Named("credential"),
		now:    time.Now,
	}
}

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CookieName is remember_<scope>_token.
func (s *Service) CookieName() string {
	return "remember_" + s.scope + "_token"
}

func (s *Service) Encode(userID, token string, expiresAt time.Time) (string, error) {
	now := s.now()
	claims := Claims{
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   userID,
			Audience:  []string{s.config.Issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.SecretKey))
	if err != nil {
		s.logger.Error("failed to sign remember credential", zap.Error(err))
		return "", fmt.Errorf("failed to encode remember credential: %w", err)
	}
	return signed, nil
}

func (s *Service) Decode(value string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(value, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("remember credential rejected", zap.Error(err))

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredCredential
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedCredential
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidCredential
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" || claims.Token == "" {
		return nil, ErrInvalidCredential
	}
	return claims, nil
}

func (s *Service) sameSite() http.SameSite {
	switch strings.ToLower(s.config.CookieSameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Cookie builds the remember cookie carrying value until expiresAt.
func (s *Service) Cookie(value string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.CookieName(),
		Value:    value,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: s.sameSite(),
	}
}

// ExpiredCookie tells the client to drop the remember cookie.
func (s *Service) ExpiredCookie() *http.Cookie {
	return &http.Cookie{
		Name:     s.CookieName(),
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: s.sameSite(),
	}
}
