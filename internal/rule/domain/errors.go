package domain

import "errors"

var (
	ErrInvalidState          = errors.New("invalid_state")
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrMissingThreshold      = errors.New("missing_threshold")
	ErrInvalidThreshold      = errors.New("invalid_threshold")
	ErrInvalidPeriodType     = errors.New("invalid_evaluation_period_type")
	ErrInvalidEffectiveDates = errors.New("invalid_effective_dates")
)
