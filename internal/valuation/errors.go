package valuation

import "errors"

var (
	ErrMissingLeagueAverage  = errors.New("missing league average")
	ErrMissingStat           = errors.New("missing stat field")
	ErrMalformedValue        = errors.New("malformed value")
	ErrDuplicateRosterPlayer = errors.New("player already on roster")
	ErrPlayerNotFound        = errors.New("player not found")
)
