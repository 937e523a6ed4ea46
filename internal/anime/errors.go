package anime

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("anime not found")
	ErrEpisodeNotFound = errors.New("episode not found")
)
