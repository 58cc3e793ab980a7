package middleware

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetrent/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

func signHMAC(t *testing.T, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims(sub string) Claims {
	return Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    "https://id.example.com",
		Audience:  jwt.ClaimStrings{"fleetrent"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
}

type identityResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
}

func serve(auth *Authenticator, header string) *httptest.ResponseRecorder {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		userID, _ := common.GetUserIDFromContext(c.Request().Context())
		tenantID, _ := common.GetTenantIDFromContext(c.Request().Context())
		return c.JSON(http.StatusOK, identityResponse{UserID: userID, TenantID: tenantID})
	}, auth.Middleware())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticator_HMAC(t *testing.T) {
	auth := NewHMACAuthenticator(testSecret, "https://id.example.com", "fleetrent")
	userID := uuid.New()

	t.Run("subject is the tenant", func(t *testing.T) {
		rec := serve(auth, "Bearer "+signHMAC(t, validClaims(userID.String())))
		require.Equal(t, http.StatusOK, rec.Code)

		var body identityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, userID, body.UserID)
		assert.Equal(t, userID, body.TenantID)
	})

	t.Run("tenant claim wins", func(t *testing.T) {
		tenantID := uuid.New()
		claims := validClaims(userID.String())
		claims.TenantID = tenantID.String()
		rec := serve(auth, "Bearer "+signHMAC(t, claims))
		require.Equal(t, http.StatusOK, rec.Code)

		var body identityResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tenantID, body.TenantID)
	})

	rejected := map[string]func() string{
		"missing header": func() string { return "" },
		"wrong scheme":   func() string { return "Basic abc" },
		"garbage token":  func() string { return "Bearer not.a.token" },
		"expired": func() string {
			claims := validClaims(userID.String())
			claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
			return "Bearer " + signHMAC(t, claims)
		},
		"no expiry": func() string {
			claims := validClaims(userID.String())
			claims.ExpiresAt = nil
			return "Bearer " + signHMAC(t, claims)
		},
		"wrong audience": func() string {
			claims := validClaims(userID.String())
			claims.Audience = jwt.ClaimStrings{"billing"}
			return "Bearer " + signHMAC(t, claims)
		},
		"wrong issuer": func() string {
			claims := validClaims(userID.String())
			claims.Issuer = "https://evil.example.com"
			return "Bearer " + signHMAC(t, claims)
		},
		"subject not a uuid": func() string {
			return "Bearer " + signHMAC(t, validClaims("user@example.com"))
		},
		"tenant not a uuid": func() string {
			claims := validClaims(userID.String())
			claims.TenantID = "acme"
			return "Bearer " + signHMAC(t, claims)
		},
		"wrong secret": func() string {
			token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(userID.String())).SignedString([]byte("other"))
			return "Bearer " + token
		},
	}
	for name, header := range rejected {
		t.Run(name, func(t *testing.T) {
			rec := serve(auth, header())
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestAuthenticator_KeySet(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	set := fmt.Sprintf(`{"keys":[{"kty":"RSA","kid":"k1","alg":"RS256","use":"sig","n":%q,"e":%q}]}`,
		base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()))
	jwks, err := keyfunc.NewJSON(json.RawMessage(set))
	require.NoError(t, err)

	auth := NewKeySetAuthenticator(jwks, "", "")
	defer auth.Close()

	userID := uuid.New()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, validClaims(userID.String()))
	token.Header["kid"] = "k1"
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	rec := serve(auth, "Bearer "+signed)
	assert.Equal(t, http.StatusOK, rec.Code)

	// an HMAC token is refused by an asymmetric key set
	rec = serve(auth, "Bearer "+signHMAC(t, validClaims(userID.String())))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentity(t *testing.T) {
	_, _, err := Identity(&Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.Nil.String()}})
	assert.Error(t, err)
}
