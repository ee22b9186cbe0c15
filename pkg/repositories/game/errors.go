package game

import "errors"

// ErrNilRoundResult is returned when a nil result is saved
var ErrNilRoundResult = errors.New("round result is nil")
