package service

import "errors"

var (
	ErrEmptyParticipantSet   = errors.New("bracket needs at least one participant")
	ErrMatchNotReady         = errors.New("match does not have two participants yet")
	ErrInvalidWinner         = errors.New("winner is not part of this match")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrInvalidTransition     = errors.New("match cannot move to the requested status")
	ErrInvalidScore          = errors.New("invalid score event")

	ErrBracketNotFound     = errors.New("bracket not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCompetitionNotFound = errors.New("competition not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrClubNotFound        = errors.New("club not found")
)
