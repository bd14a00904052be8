package progress

import "errors"

var (
	ErrInvalidWeight      = errors.New("weight is out of the accepted range")
	ErrFailedToLogWeight  = errors.New("failed to log weight")
	ErrFailedToGetHistory = errors.New("failed to get weight history")
)
