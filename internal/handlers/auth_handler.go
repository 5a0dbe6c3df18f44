package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/middleware"
	"github.com/joshua-takyi/tryfield/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

type sessionRequest struct {
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token" binding:"required"`
	ExpiresIn    int    `json:"expires_in"`
}

// SignInURLHandler returns the provider authorize URL for an OAuth sign-in.
func SignInURLHandler(us *services.UserService, defaultRedirect string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.DefaultQuery("provider", "google")
		redirect := c.DefaultQuery("redirect_to", defaultRedirect)
		url, err := us.SignInURL(provider, redirect)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"url": url}, ""))
	}
}

// SessionHandler stores the tokens issued after the OAuth redirect as cookies.
func SessionHandler(us *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req sessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		user, err := us.ExchangeSession(c.Request.Context(), req.AccessToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, helpers.CodedErrorResponse("unauthorized", "Invalid session"))
			return
		}
		if req.ExpiresIn <= 0 {
			req.ExpiresIn = 3600
		}
		tokens := &types.TokenResponse{}
		tokens.AccessToken = req.AccessToken
		tokens.RefreshToken = req.RefreshToken
		tokens.ExpiresIn = req.ExpiresIn
		middleware.SetSessionCookies(c, tokens, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Signed in"))
	}
}

func RefreshHandler(us *services.UserService, secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie(middleware.RefreshCookie)
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, helpers.CodedErrorResponse("unauthorized", "refresh token not found"))
			return
		}
		tokens, err := us.RefreshToken(c.Request.Context(), refreshToken)
		if err != nil || tokens == nil {
			middleware.ClearSessionCookies(c, secureCookies)
			c.JSON(http.StatusUnauthorized, helpers.CodedErrorResponse("unauthorized", "Token refresh failed"))
			return
		}
		middleware.SetSessionCookies(c, tokens, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"expires_in": tokens.ExpiresIn}, "Token refreshed"))
	}
}

func LogoutHandler(secureCookies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.ClearSessionCookies(c, secureCookies)
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Signed out"))
	}
}
