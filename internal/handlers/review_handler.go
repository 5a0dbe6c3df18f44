package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/services"
)

func SubmitReviewHandler(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var in services.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		review, err := rs.SubmitReview(c.Request.Context(), actorOf(c), tryID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(review, "Review submitted"))
	}
}

func RateUserHandler(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var in services.ReviewInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		rating, err := rs.RateUser(c.Request.Context(), actorOf(c), tryID, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(rating, "Rating submitted"))
	}
}

func TryReviewsHandler(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		reviews, err := rs.TryReviews(c.Request.Context(), tryID)
		if err != nil {
			respondError(c, err)
			return
		}
		ratings, err := rs.TryRatings(c.Request.Context(), tryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"reviews": reviews, "ratings": ratings}, ""))
	}
}

func UserRatingsHandler(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := rs.UserRatings(c.Request.Context(), actorOf(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(list, ""))
	}
}

func RatingSummaryHandler(rs *services.ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := rs.RatingSummary(c.Request.Context(), actorOf(c), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(summary, ""))
	}
}
