package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type textBody struct {
	Text string `json:"text" binding:"required"`
}

func OpenRoomHandler(ds *services.DMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		room, err := ds.OpenRoomWith(c.Request.Context(), actorOf(c), body.UserID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(room, ""))
	}
}

func ListRoomsHandler(ds *services.DMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms, err := ds.Rooms(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(rooms, ""))
	}
}

func SendDirectMessageHandler(ds *services.DMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var body textBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		msg, err := ds.Send(c.Request.Context(), actorOf(c), roomID, body.Text)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(msg, ""))
	}
}

func ListDirectMessagesHandler(ds *services.DMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		page, ok := historyPage(c)
		if !ok {
			return
		}
		msgs, err := ds.Messages(c.Request.Context(), actorOf(c), roomID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(msgs, ""))
	}
}

func MarkRoomReadHandler(ds *services.DMService) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		n, err := ds.MarkRead(c.Request.Context(), actorOf(c), roomID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(gin.H{"updated": n}, ""))
	}
}

func PostChatMessageHandler(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var body struct {
			Content string `json:"content" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
			return
		}
		msg, err := cs.Post(c.Request.Context(), actorOf(c), tryID, body.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(msg, ""))
	}
}

func ListChatMessagesHandler(cs *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		page, ok := historyPage(c)
		if !ok {
			return
		}
		msgs, err := cs.List(c.Request.Context(), actorOf(c), tryID, page)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(msgs, ""))
	}
}

// historyPage reads the limit and before cursor shared by the history endpoints.
func historyPage(c *gin.Context) (models.HistoryPage, bool) {
	limit, ok := queryInt(c, "limit", 50)
	if !ok {
		return models.HistoryPage{}, false
	}
	page := models.HistoryPage{Limit: limit}
	if raw := c.Query("before"); raw != "" {
		before, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			badRequest(c, "invalid before parameter")
			return models.HistoryPage{}, false
		}
		page.Before = before
	}
	return page, true
}
