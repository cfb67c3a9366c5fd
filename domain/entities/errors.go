package entities

import "errors"

// ErrRoundNotDrawn is returned when results are requested for a round that has not been drawn yet
var ErrRoundNotDrawn = errors.New("round has not been drawn yet")
