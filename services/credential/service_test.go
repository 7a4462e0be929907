package credential

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberable/testutils"
)

func TestService_CookieName(t *testing.T) {
	cfg := testutils.GetTestConfig()
	assert.Equal(t, "remember_user_token", NewService(cfg, nil).CookieName())

	cfg.Remember.Scope = "admin"
	assert.Equal(t, "remember_admin_token", NewService(cfg, nil).CookieName())
}

func TestService_EncodeDecode(t *testing.T) {
	cfg := testutils.GetTestConfig()
	service := NewService(cfg, nil)
	expiresAt := time.Now().Add(time.Hour)

	value, err := service.Encode("42", "abc123", expiresAt)
	require.NoError(t, err)

	claims, err := service.Decode(value)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID())
	assert.Equal(t, "abc123", claims.Token)
	assert.Equal(t, cfg.Credential.Issuer, claims.Issuer)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestService_Decode_Rejections(t *testing.T) {
	cfg := testutils.GetTestConfig()
	service := NewService(cfg, nil)

	t.Run("expired", func(t *testing.T) {
		value, err := service.Encode("42", "abc", time.Now().Add(-time.Minute))
		require.NoError(t, err)

		_, err = service.Decode(value)
		assert.ErrorIs(t, err, ErrExpiredCredential)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := service.Decode("not-a-token")
		assert.ErrorIs(t, err, ErrMalformedCredential)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := testutils.GetTestConfig()
		other.Credential.SecretKey = "Zq8Xw3Vn6Bm1Lk4Jh7Gf0Ds9Ap2Ou5Iy8Tr"
		value, err := NewService(other, nil).Encode("42", "abc", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.Decode(value)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := testutils.GetTestConfig()
		other.Credential.Issuer = "someone-else"
		value, err := NewService(other, nil).Encode("42", "abc", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.Decode(value)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})

	t.Run("none algorithm", func(t *testing.T) {
		claims := Claims{
			Token: "abc",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "42",
				Issuer:    cfg.Credential.Issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		value, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Decode(value)
		assert.Error(t, err)
	})

	t.Run("missing token claim", func(t *testing.T) {
		value, err := service.Encode("42", "", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = service.Decode(value)
		assert.ErrorIs(t, err, ErrInvalidCredential)
	})
}

func TestService_Decode_UsesClock(t *testing.T) {
	service := NewService(testutils.GetTestConfig(), nil)
	clock := testutils.NewClock(time.Now())
	service.SetClock(clock.Now)

	value, err := service.Encode("42", "abc", clock.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = service.Decode(value)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = service.Decode(value)
	assert.ErrorIs(t, err, ErrExpiredCredential)
}

func TestService_Cookies(t *testing.T) {
	cfg := testutils.GetTestConfig()
	cfg.Credential.CookieSecure = true
	cfg.Credential.CookieSameSite = "strict"
	service := NewService(cfg, nil)
	expiresAt := time.Now().Add(time.Hour)

	cookie := service.Cookie("value", expiresAt)
	assert.Equal(t, "remember_user_token", cookie.Name)
	assert.Equal(t, "value", cookie.Value)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, expiresAt, cookie.Expires)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)

	expired := service.ExpiredCookie()
	assert.Equal(t, "remember_user_token", expired.Name)
	assert.Empty(t, expired.Value)
	assert.Equal(t, -1, expired.MaxAge)
}
