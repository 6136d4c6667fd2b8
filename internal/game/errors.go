package game

import "errors"

// ErrGeneratorExhausted means the bot fleet generator ran out of placement
// attempts. Given the grid and fleet sizing this should be unreachable, so
// it is treated as a configuration bug rather than a user error.
var ErrGeneratorExhausted = errors.New("bot fleet generator exhausted its attempt budget")

// ValidationError rejects bad geometry or malformed input. Nothing is
// mutated; the reason names the failed check.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IllegalTransitionError rejects an operation that is well-formed but not
// legal in the session's current state (not your turn, cell already
// attacked, session over, ...). Nothing is mutated.
type IllegalTransitionError struct {
	Reason string
}

func (e *IllegalTransitionError) Error() string {
	return e.Reason
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIllegalTransition reports whether err is an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var te *IllegalTransitionError
	return errors.As(err, &te)
}
