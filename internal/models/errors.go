package models

import "errors"

var (
	ErrTryNotFound           = errors.New("try not found")
	ErrTryNotOpen            = errors.New("try is not open for participation")
	ErrTryNotCompleted       = errors.New("try has not been completed")
	ErrTryAlreadyCompleted   = errors.New("try is already completed")
	ErrNotOrganizer          = errors.New("only the organizer can perform this action")
	ErrCapacityReached       = errors.New("申し訳ありません。定員に達しました。")
	ErrInvalidTransition     = errors.New("invalid participation status transition")
	ErrAlreadyRequested      = errors.New("user already has an active participation for this try")
	ErrParticipationNotFound = errors.New("participation not found")
	ErrNotParticipant        = errors.New("user is not an approved participant of this try")
	ErrSelfAction            = errors.New("cannot perform this action on yourself")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrOutboxNotFound       = errors.New("outbox entry not found")

	ErrRoomNotFound           = errors.New("dm room not found")
	ErrNotRoomMember          = errors.New("user is not a member of this room")
	ErrDirectMessagesDisabled = errors.New("user does not accept direct messages")

	ErrAlreadyReviewed = errors.New("review already submitted")
	ErrAlreadyRated    = errors.New("rating already submitted")

	ErrUserNotFound    = errors.New("user not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrDraftNotFound   = errors.New("draft not found")
	ErrForbidden       = errors.New("access denied")
	ErrInvalidInput    = errors.New("invalid input")
)
