package calculator

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	// ErrInvalidInput marks a rejected request: the caller sent something the
	// split rules cannot accept.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInconsistent marks a computation bug or corrupted history. It is not
	// user-correctable.
	ErrInconsistent = errors.New("internal consistency error")
)

var (
	ErrNoParticipants      = fmt.Errorf("%w: no active participants to split the expense between", ErrInvalidInput)
	ErrUnknownMethod       = fmt.Errorf("%w: unknown split method", ErrInvalidInput)
	ErrUnknownParticipant  = fmt.Errorf("%w: user is not an active participant", ErrInvalidInput)
	ErrInvalidTotal        = fmt.Errorf("%w: total amount must be positive", ErrInvalidInput)
	ErrInvalidPercentages  = fmt.Errorf("%w: invalid percentages", ErrInvalidInput)
	ErrInvalidWeights      = fmt.Errorf("%w: invalid weights", ErrInvalidInput)
	ErrInvalidFixedAmounts = fmt.Errorf("%w: invalid fixed amounts", ErrInvalidInput)

	ErrTotalMismatch       = fmt.Errorf("%w: split shares do not add up to the expense total", ErrInconsistent)
	ErrBalanceInconsistent = fmt.Errorf("%w: net balances do not sum to zero", ErrInconsistent)
)
