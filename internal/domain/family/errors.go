package family

import "errors"

var (
	ErrFamilyNotFound        = errors.New("family not found")
	ErrTokenNotFound         = errors.New("join token not found")
	ErrAlreadyMember         = errors.New("already a member")
	ErrMemberNotFound        = errors.New("member not found")
	ErrNotMember             = errors.New("not an approved family member")
	ErrNotAdmin              = errors.New("not a family admin")
	ErrDuplicateName         = errors.New("family with this name already exists")
	ErrRequestNotPending     = errors.New("membership request is not pending")
	ErrTokenGenerationFailed = errors.New("join token generation failed")
)
