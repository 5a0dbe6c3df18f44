package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
)

func CreateTryHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var try models.Try
		if err := c.ShouldBindJSON(&try); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		created, err := ts.CreateTry(c.Request.Context(), actorOf(c), &try, c.Query("clear_draft") == "true")
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(created, "Try created successfully"))
	}
}

func ListTriesHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, ok := queryInt(c, "limit", 10)
		if !ok {
			return
		}
		offset, ok := queryInt(c, "offset", 0)
		if !ok {
			return
		}
		filter := models.TryFilter{
			Keyword:   c.Query("q"),
			Category:  models.TryCategory(c.Query("category")),
			Location:  c.Query("location"),
			Status:    models.TryStatus(c.Query("status")),
			Tag:       c.Query("tag"),
			OwnerID:   c.Query("owner_id"),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			Limit:     limit,
			Offset:    offset,
		}
		tries, total, err := ts.ListTries(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if limit <= 0 {
			limit = 10
		}
		c.JSON(http.StatusOK, helpers.PaginatedResponse(tries, offset/limit+1, limit, int(total)))
	}
}

func GetTryHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		try, err := ts.GetTry(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(try, ""))
	}
}

func UpdateTryHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var update models.TryUpdate
		if err := c.ShouldBindJSON(&update); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		try, err := ts.UpdateTry(c.Request.Context(), actorOf(c), id, &update)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(try, "Try updated successfully"))
	}
}

func DeleteTryHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		if err := ts.DeleteTry(c.Request.Context(), actorOf(c), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(nil, "Try deleted successfully"))
	}
}

// CompleteTryHandler accepts an optional completion report body.
func CompleteTryHandler(ts *services.TryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var completion models.Completion
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&completion); err != nil {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
				return
			}
		}
		try, err := ts.CompleteTry(c.Request.Context(), actorOf(c), id, &completion)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(try, "Try completed"))
	}
}
