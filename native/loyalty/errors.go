package loyalty

import "errors"

var (
	ErrNilRestaurant            = errors.New("loyalty: nil restaurant")
	ErrInvalidRestaurant        = errors.New("loyalty: invalid restaurant")
	ErrUnauthorized             = errors.New("loyalty: unauthorized")
	ErrInvalidSchedule          = errors.New("loyalty: invalid schedule")
	ErrUnknownRestaurant        = errors.New("loyalty: unknown restaurant")
	ErrInactiveRestaurant       = errors.New("loyalty: inactive restaurant")
	ErrOutsideOperatingHours    = errors.New("loyalty: outside operating hours")
	ErrTransactionLimitExceeded = errors.New("loyalty: transaction limit exceeded")
	ErrSelfReferral             = errors.New("loyalty: self referral")
	ErrInvalidReferrer          = errors.New("loyalty: invalid referrer")
	ErrReferrerAlreadySet       = errors.New("loyalty: referrer already set")
	ErrMalformedContext         = errors.New("loyalty: malformed context blob")
	ErrPoolAlreadyInitialized   = errors.New("loyalty: pool already initialized")
	ErrRewardMintFailed         = errors.New("loyalty: reward mint failed")
	ErrBadgeIssueFailed         = errors.New("loyalty: badge issuance failed")
)
