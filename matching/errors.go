package matching

import "errors"

// Business-rule failures surfaced to handlers. Handlers map these to HTTP
// statuses; storage errors that are none of these bubble up wrapped.
var (
	ErrProfileNotFound        = errors.New("profile not found")
	ErrDuplicateWallet        = errors.New("profile already exists for wallet address")
	ErrDuplicateReferralCode  = errors.New("referral code already in use")
	ErrReferralCodeExhausted  = errors.New("could not generate a unique referral code")
	ErrInvalidReferralCode    = errors.New("invalid referral code")
	ErrSelfReferral           = errors.New("cannot refer yourself")
	ErrAlreadyLiked           = errors.New("user already liked")
	ErrAlreadyMatched         = errors.New("users are already matched")
	ErrCannotDislikeAfterLike = errors.New("cannot dislike a user you have liked")
	ErrSelfAction             = errors.New("cannot perform this action on yourself")
	ErrValidation             = errors.New("missing or invalid profile fields")
)
