package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrNotProfileOwner     = errors.New("not profile owner")
	ErrTabHidden           = errors.New("profile tab hidden")
	ErrEducationNotFound   = errors.New("education entry not found")
	ErrWorkHistoryNotFound = errors.New("work history entry not found")
	ErrUnknownField        = errors.New("unknown profile field")
	ErrUnknownTab          = errors.New("unknown profile tab")
	ErrInvalidVisibility   = errors.New("invalid visibility value")
	ErrInvalidDateRange    = errors.New("end date before start date")
)
