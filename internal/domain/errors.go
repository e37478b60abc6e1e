package domain

import "errors"

var (
	ErrInvalidTimeRange = errors.New("time range start must be before end")
)
