package pipeline

import "errors"

// ErrMissingProbability is returned when a non-gibberish result carries no
// fraud probability.
var ErrMissingProbability = errors.New("server response carries no fraud probability")
