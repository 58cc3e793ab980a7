package middleware

import (
	"errors"
	"time"

	"fleetrent/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const tokenContextKey = "user"

// Claims are the bearer token claims issued by the identity provider.
// TenantID is optional; when absent the subject doubles as the tenant.
type Claims struct {
	TenantID string `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Authenticator verifies bearer tokens issued by the external identity provider.
type Authenticator struct {
	parser  *jwt.Parser
	keyFunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
}

func parserOptions(methods []string, issuer, audience string) []jwt.ParserOption {
	opts := []jwt.ParserOption{jwt.WithValidMethods(methods), jwt.WithExpirationRequired(), jwt.WithLeeway(30 * time.Second)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}
	return opts
}

// NewJWKSAuthenticator fetches the provider's signing keys from jwksURL and keeps them refreshed.
func NewJWKSAuthenticator(jwksURL, issuer, audience string, logger hclog.Logger) (*Authenticator, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to refresh JWKS", "url", jwksURL, "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	return NewKeySetAuthenticator(jwks, issuer, audience), nil
}

// NewKeySetAuthenticator verifies asymmetric tokens against an already loaded key set.
func NewKeySetAuthenticator(jwks *keyfunc.JWKS, issuer, audience string) *Authenticator {
	methods := []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "PS256", "EdDSA"}
	return &Authenticator{
		parser:  jwt.NewParser(parserOptions(methods, issuer, audience)...),
		keyFunc: jwks.Keyfunc,
		jwks:    jwks,
	}
}

// NewHMACAuthenticator verifies tokens signed with a shared secret.
func NewHMACAuthenticator(secret, issuer, audience string) *Authenticator {
	key := []byte(secret)
	return &Authenticator{
		parser: jwt.NewParser(parserOptions([]string{"HS256", "HS384", "HS512"}, issuer, audience)...),
		keyFunc: func(*jwt.Token) (interface{}, error) {
			return key, nil
		},
	}
}

// Close stops background key refreshes.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// ParseToken verifies tokenString and returns its claims.
func (a *Authenticator) ParseToken(tokenString string) (*jwt.Token, error) {
	token, err := a.parser.ParseWithClaims(tokenString, &Claims{}, a.keyFunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	return token, nil
}

// Identity resolves the user and tenant a verified token speaks for.
func Identity(claims *Claims) (userID, tenantID uuid.UUID, err error) {
	userID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("subject is not a UUID")
	}
	tenantID = userID
	if claims.TenantID != "" {
		tenantID, err = uuid.Parse(claims.TenantID)
		if err != nil {
			return uuid.Nil, uuid.Nil, errors.New("tenant_id is not a UUID")
		}
	}
	if tenantID == uuid.Nil {
		return uuid.Nil, uuid.Nil, errors.New("tenant is empty")
	}
	return userID, tenantID, nil
}

// Middleware authenticates the request and stores the caller's user and tenant IDs in its context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey: tokenContextKey,
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return a.ParseToken(auth)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.SendUnauthorizedError(c)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			userID, tenantID, err := Identity(claims)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}

			ctx := common.WithIdentity(c.Request().Context(), userID, tenantID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		})
	}
}
