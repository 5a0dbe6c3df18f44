package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/tryfield/internal/helpers"
	"github.com/joshua-takyi/tryfield/internal/models"
	"github.com/joshua-takyi/tryfield/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func RequestParticipationHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		var req services.JoinRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, helpers.ErrorResponse(err.Error()))
				return
			}
		}
		p, err := ps.Request(c.Request.Context(), actorOf(c), tryID, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, helpers.SuccessResponse(p, "Participation requested"))
	}
}

type participationAction func(ctx context.Context, actor services.Actor, id primitive.ObjectID) (*models.Participation, error)

func participationTransition(action participationAction, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		p, err := action(c.Request.Context(), actorOf(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(p, message))
	}
}

func ApproveParticipationHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return participationTransition(ps.Approve, "Participation approved")
}

func RejectParticipationHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return participationTransition(ps.Reject, "Participation rejected")
}

func WithdrawParticipationHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return participationTransition(ps.Withdraw, "Participation withdrawn")
}

// ListParticipationsHandler shows the organizer every applicant and others only approved ones.
func ListParticipationsHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		list, err := ps.List(c.Request.Context(), actorOf(c), tryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(list, ""))
	}
}

func MyParticipationHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tryID, ok := objectIDParam(c, "id")
		if !ok {
			return
		}
		p, err := ps.MyParticipation(c.Request.Context(), actorOf(c), tryID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(p, ""))
	}
}

func MyParticipationsHandler(ps *services.ParticipationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := ps.ListMine(c.Request.Context(), actorOf(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, helpers.SuccessResponse(list, ""))
	}
}
