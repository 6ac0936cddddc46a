package ledger

import "errors"

// Sentinel errors for rejected orders. Rejections never mutate state.
var (
	ErrInsufficientFunds    = errors.New("ledger: insufficient funds")
	ErrInsufficientPosition = errors.New("ledger: insufficient position")
	ErrInvalidOrder         = errors.New("ledger: invalid order")
)
