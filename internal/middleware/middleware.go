package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

const (
	UserKey          = "user"
	AccessCookie     = "access_token"
	RefreshCookie    = "refresh_token"
	refreshCookieAge = 3600 * 24 * 30
)

type TokenVerifier interface {
	Validate(token string) (*helpers.CustomClaims, error)
}

// Profiles provisions local profiles and refreshes provider sessions.
type Profiles interface {
	EnsureProfile(ctx context.Context, id services.Identity) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// StructuredLogger provides structured logging middleware
func StructuredLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		requestID, _ := c.Get("request_id")
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if claims, ok := ClaimsFromContext(c); ok {
			attrs = append(attrs, "user_id", claims.UserID)
		}
		logger.Info("HTTP Request", attrs...)
	}
}

// ErrorHandler provides centralized error handling
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			requestID, _ := c.Get("request_id")

			logger.Error("Request error",
				"request_id", requestID,
				"error", err.Error(),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)

			if !c.Writer.Written() {
				c.JSON(http.StatusInternalServerError, gin.H{
					"error":      "Internal server error",
					"request_id": requestID,
				})
			}
		}
	}
}

// ClaimsFromContext returns the claims stored by AuthMiddleware or OptionalAuth.
func ClaimsFromContext(c *gin.Context) (*helpers.EnhancedClaims, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*helpers.EnhancedClaims)
	return claims, ok && claims != nil
}

// ActorFromContext is the anonymous actor when nobody is signed in.
func ActorFromContext(c *gin.Context) services.Actor {
	claims, _ := ClaimsFromContext(c)
	return claims.Actor()
}

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if token, err := c.Cookie(AccessCookie); err == nil && token != "" {
		return token
	}
	// Browsers cannot set headers on a websocket handshake.
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query(AccessCookie)
	}
	return ""
}

func SetSessionCookies(c *gin.Context, tokens *types.TokenResponse, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, tokens.AccessToken, tokens.ExpiresIn, "/", "", secure, true)
	c.SetCookie(RefreshCookie, tokens.RefreshToken, refreshCookieAge, "/", "", secure, true)
}

func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetCookie(AccessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshCookie, "", -1, "/", "", secure, true)
}

type authenticator struct {
	verifier TokenVerifier
	profiles Profiles
	secure   bool
	logger   *slog.Logger
}

// authenticate resolves the caller, refreshing an expired cookie session when possible.
func (a *authenticator) authenticate(c *gin.Context) (*helpers.EnhancedClaims, error) {
	token := bearerToken(c)
	claims, err := a.verifier.Validate(token)
	if err != nil {
		refreshToken, cookieErr := c.Cookie(RefreshCookie)
		if cookieErr != nil || refreshToken == "" {
			return nil, err
		}
		tokens, refreshErr := a.profiles.RefreshToken(c.Request.Context(), refreshToken)
		if refreshErr != nil || tokens == nil || tokens.AccessToken == "" {
			a.logger.Warn("Token refresh failed", "error", refreshErr)
			return nil, err
		}
		claims, err = a.verifier.Validate(tokens.AccessToken)
		if err != nil {
			return nil, err
		}
		SetSessionCookies(c, tokens, a.secure)
		a.logger.Info("Token refreshed successfully", "user_id", claims.Subject, "expires_in", tokens.ExpiresIn)
	}

	user, err := a.profiles.EnsureProfile(c.Request.Context(), services.Identity{
		ID:          claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.MetadataString("full_name", "name"),
		PhotoURL:    claims.MetadataString("avatar_url", "picture"),
	})
	if err != nil {
		return nil, err
	}
	return &helpers.EnhancedClaims{
		CustomClaims: claims,
		Role:         user.Role,
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		PhotoURL:     user.PhotoURL,
	}, nil
}

func AuthMiddleware(verifier TokenVerifier, profiles Profiles, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	a := &authenticator{verifier: verifier, profiles: profiles, secure: secureCookies, logger: logger}
	return func(c *gin.Context) {
		claims, err := a.authenticate(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, helpers.CodedErrorResponse("unauthorized", "Unauthorized access"))
			return
		}
		c.Set(UserKey, claims)
		c.Next()
	}
}

// OptionalAuth attaches claims when a valid session is present and never rejects.
func OptionalAuth(verifier TokenVerifier, profiles Profiles, secureCookies bool, logger *slog.Logger) gin.HandlerFunc {
	a := &authenticator{verifier: verifier, profiles: profiles, secure: secureCookies, logger: logger}
	return func(c *gin.Context) {
		if bearerToken(c) != "" {
			if claims, err := a.authenticate(c); err == nil {
				c.Set(UserKey, claims)
			}
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok || !claims.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, helpers.CodedErrorResponse("forbidden", "Admin access required"))
			return
		}
		c.Next()
	}
}
