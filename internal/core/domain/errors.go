package domain

import "errors"

// Validation errors are returned before any state is touched.
var (
	ErrInvalidGoal          = errors.New("goal must be greater than zero")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidContributor   = errors.New("contributor id is empty")
	ErrInvalidAccount       = errors.New("account id is empty")
	ErrInvalidFeePercentage = errors.New("fee percentage must be in [0, 100)")
	ErrMalformedMessage     = errors.New("transfer message is not an item index")
	ErrItemNotFound         = errors.New("item not found")
	ErrDispatchNotFound     = errors.New("dispatch not found")
)

// Authorization errors.
var (
	ErrNotOperator     = errors.New("caller is not allowed to create a crowdfund")
	ErrNotAuthority    = errors.New("only the service authority can perform this operation")
	ErrCoinNotAccepted = errors.New("this coin is not accepted as payment")
	ErrNotMinter       = errors.New("only the minting service can report mint results")
)

// State errors.
var (
	ErrGoalReached        = errors.New("the goal has already been reached for this item")
	ErrFundingClosed      = errors.New("item does not accept funding in its current status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrNotRetryable       = errors.New("tokenization cannot be retried in the current state")
	ErrDuplicateTransfer  = errors.New("transfer has already been processed")
	ErrDispatchNotPending = errors.New("dispatch is not pending")
)

// ErrOverflow is returned when balance accumulation would exceed int64.
var ErrOverflow = errors.New("arithmetic overflow")

// ErrorKind groups domain errors by how callers should react to them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindAuthorization
	KindState
	KindArithmetic
)

// Kind classifies err. Unknown errors are KindInternal.
func Kind(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrItemNotFound), errors.Is(err, ErrDispatchNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidGoal), errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidContributor), errors.Is(err, ErrInvalidAccount),
		errors.Is(err, ErrInvalidFeePercentage),
		errors.Is(err, ErrMalformedMessage):
		return KindValidation
	case errors.Is(err, ErrNotOperator), errors.Is(err, ErrNotAuthority),
		errors.Is(err, ErrCoinNotAccepted), errors.Is(err, ErrNotMinter):
		return KindAuthorization
	case errors.Is(err, ErrGoalReached), errors.Is(err, ErrFundingClosed),
		errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrNotRetryable),
		errors.Is(err, ErrDuplicateTransfer), errors.Is(err, ErrDispatchNotPending):
		return KindState
	case errors.Is(err, ErrOverflow):
		return KindArithmetic
	default:
		return KindInternal
	}
}
