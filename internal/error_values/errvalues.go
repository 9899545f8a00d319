package errorvalues

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidToken     = errors.New("invalid token")

	// Identity failures
	ErrUnknownUser          = errors.New("user doesn't exist")
	ErrWrongPassword        = errors.New("wrong email or password")
	ErrInvalidEmail         = errors.New("invalid email")
	ErrEmailInUse           = errors.New("email already in use")
	ErrWeakPassword         = errors.New("password is too weak")
	ErrPasswordTooLong      = errors.New("password is too long")
	ErrInvalidDisplayName   = errors.New("invalid display name")
	ErrPasswordNotSet       = errors.New("account has no password, use social sign-in")
	ErrUnknownProvider      = errors.New("unknown identity provider")
	ErrInvalidProviderToken = errors.New("invalid identity provider token")
	ErrIdentityLinked       = errors.New("identity already linked")

	// Catalog
	ErrUnknownLevel     = errors.New("unknown skill level")
	ErrUnknownGroup     = errors.New("unknown muscle group")
	ErrExerciseNotFound = errors.New("exercise not found in catalog")

	ErrInvalidDate    = errors.New("invalid date")
	ErrInvalidProfile = errors.New("invalid profile data")
	ErrInvalidWeights = errors.New("weights must be positive numbers")
	ErrMetricsMissing = errors.New("dashboard metrics don't exist")
)
