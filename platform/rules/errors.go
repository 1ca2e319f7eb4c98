package rules

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAction     = errors.New("invalid action")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotPlayersTurn    = errors.New("not your turn")
	// ErrStateInconsistent means the supplied snapshot breaks an invariant. The engine cannot repair it.
	ErrStateInconsistent = errors.New("room state inconsistent")
	ErrInvalidConfig     = errors.New("invalid rule configuration")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidAction, fmt.Sprintf(format, args...))
}

func inconsistent(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrStateInconsistent, fmt.Sprintf(format, args...))
}

func funds(need, have int) error {
	return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, need, have)
}
