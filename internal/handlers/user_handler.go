package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
)

func MeHandler(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := actorOf(c)
		view, err := us.Profile(c.Request.Context(), actor, actor.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

// GetProfileHandler applies the owner's privacy settings to the viewer.
func GetProfileHandler(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := us.Profile(c.Request.Context(), actorOf(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(view, ""))
	}
}

func UpdateProfileHandler(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var update models.ProfileUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		user, err := us.UpdateProfile(c.Request.Context(), actorOf(c), &update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(user, "Profile updated"))
	}
}

func RegisterDeviceTokenHandler(us *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		if err := us.RegisterDeviceToken(c.Request.Context(), actorOf(c), body.Token); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Device registered"))
	}
}

func GetPrivacyHandler(ps *services.PrivacyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := ps.Get(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(settings, ""))
	}
}

func UpdatePrivacyHandler(ps *services.PrivacyService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var settings models.PrivacySettings
		if err := c.ShouldBindJSON(&settings); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		saved, err := ps.Update(c.Request.Context(), actorOf(c), settings)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(saved, "Privacy settings updated"))
	}
}
