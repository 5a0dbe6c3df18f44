package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/middleware"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorTable = []errorMapping{
	{models.ErrTryNotFound, http.StatusNotFound, "try_not_found"},
	{models.ErrParticipationNotFound, http.StatusNotFound, "participation_not_found"},
	{models.ErrNotificationNotFound, http.StatusNotFound, "notification_not_found"},
	{models.ErrOutboxNotFound, http.StatusNotFound, "outbox_not_found"},
	{models.ErrRoomNotFound, http.StatusNotFound, "room_not_found"},
	{models.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{models.ErrCommentNotFound, http.StatusNotFound, "comment_not_found"},
	{models.ErrDraftNotFound, http.StatusNotFound, "draft_not_found"},

	{models.ErrForbidden, http.StatusForbidden, "forbidden"},
	{models.ErrNotOrganizer, http.StatusForbidden, "not_organizer"},
	{models.ErrNotParticipant, http.StatusForbidden, "not_participant"},
	{models.ErrNotRoomMember, http.StatusForbidden, "not_room_member"},
	{models.ErrDirectMessagesDisabled, http.StatusForbidden, "direct_messages_disabled"},

	{models.ErrCapacityReached, http.StatusConflict, "capacity_reached"},
	{models.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{models.ErrAlreadyRequested, http.StatusConflict, "already_requested"},
	{models.ErrAlreadyReviewed, http.StatusConflict, "already_reviewed"},
	{models.ErrAlreadyRated, http.StatusConflict, "already_rated"},
	{models.ErrTryNotOpen, http.StatusConflict, "try_not_open"},
	{models.ErrTryAlreadyCompleted, http.StatusConflict, "try_already_completed"},
	{models.ErrTryNotCompleted, http.StatusConflict, "try_not_completed"},

	{models.ErrSelfAction, http.StatusBadRequest, "self_action"},
	{models.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
}

// respondError writes the status and code for a service error. Unknown errors are logged and hidden.
func respondError(c *gin.Context, err error) {
	for _, m := range errorTable {
		if errors.Is(err, m.err) {
			c.JSON(m.status, helpers.CodedErrorResponse(m.code, err.Error()))
			return
		}
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, helpers.CodedErrorResponse("validation_failed", verrs.Error()))
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, helpers.CodedErrorResponse("internal", "Internal server error"))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, helpers.CodedErrorResponse("invalid_input", msg))
}

func actorOf(c *gin.Context) services.Actor {
	return middleware.ActorFromContext(c)
}

// objectIDParam parses a hex id path parameter, tolerating stray quotes.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	raw := strings.Trim(strings.TrimSpace(c.Param(name)), "\"'")
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return n, true
}
