package middleware

import (
	"net/http"
	"os"
	"strings"

	"pharmaledger/internal/auth"
	"pharmaledger/pkg/apperror"
	"pharmaledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// ExtractToken pulls the bearer credential from the access_token cookie,
// falling back to the Authorization header.
func ExtractToken(c *gin.Context) string {
	if token, err := c.Cookie("access_token"); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// AbortWithError writes the mapped error response and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if len(appErr.Fields) > 0 {
		c.AbortWithStatusJSON(appErr.Status, response.ErrorWithFields(appErr.Status, appErr.Message, appErr.Fields))
		return
	}
	c.AbortWithStatusJSON(appErr.Status, response.Error(appErr.Status, appErr.Message))
}

// Authenticate resolves the bearer credential into a Principal and stores it
// in the request context. First guard of the chain; failures short-circuit.
func Authenticate(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := gate.Resolve(c.Request.Context(), ExtractToken(c))
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// Principal returns the resolved principal set by Authenticate.
func Principal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok
}

// RequirePermission checks the module-level grant after Authenticate. For
// transaction routes the record-level check still runs in the service.
func RequirePermission(module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			AbortWithError(c, apperror.ErrUnauthenticated)
			return
		}

		if !p.HasPermission(module, action) {
			AbortWithError(c, apperror.ErrForbidden)
			return
		}

		c.Next()
	}
}

// RequireRole restricts a route to the given roles after Authenticate.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := Principal(c)
		if !ok {
			AbortWithError(c, apperror.ErrUnauthenticated)
			return
		}

		for _, role := range allowedRoles {
			if p.Role == role {
				c.Next()
				return
			}
		}

		AbortWithError(c, apperror.ErrForbidden)
	}
}
