package core

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrUnauthorized caller is not the admin or guardian
	ErrUnauthorized ErrorCode = 100001

	// ErrMarketNotFound no market
	ErrMarketNotFound ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrInvalidAccountPair borrower and liquidator are the same
	ErrInvalidAccountPair ErrorCode = 100102
	// ErrInvalidCloseAmount zero or sentinel repay in a liquidation
	ErrInvalidCloseAmount ErrorCode = 100103
	// ErrInvalidCollateralFactor collateral factor out of range
	ErrInvalidCollateralFactor ErrorCode = 100104
	// ErrInvalidCloseFactor close factor out of range
	ErrInvalidCloseFactor ErrorCode = 100105
	// ErrInvalidLiquidationIncentive liquidation incentive below one
	ErrInvalidLiquidationIncentive ErrorCode = 100106
	// ErrInvalidReserveFactor reserve factor above one
	ErrInvalidReserveFactor ErrorCode = 100107
	// ErrInvalidInput malformed arguments
	ErrInvalidInput ErrorCode = 100108

	// ErrMarketNotListed market is not supported by the controller
	ErrMarketNotListed ErrorCode = 100200
	// ErrMarketAlreadyListed market is listed twice
	ErrMarketAlreadyListed ErrorCode = 100201
	// ErrMarketNotFresh accrual period lags the current period
	ErrMarketNotFresh ErrorCode = 100202
	// ErrActionPaused the action is paused by the guardian
	ErrActionPaused ErrorCode = 100203
	// ErrBorrowCapReached total borrows would reach the cap
	ErrBorrowCapReached ErrorCode = 100204

	// ErrInsufficientLiquidity account would be under collateralized
	ErrInsufficientLiquidity ErrorCode = 100300
	// ErrInsufficientShortfall account is not liquidatable
	ErrInsufficientShortfall ErrorCode = 100301
	// ErrTooMuchRepay repay exceeds the close factor or the balance
	ErrTooMuchRepay ErrorCode = 100302
	// ErrInsufficientCash market holds less cash than requested
	ErrInsufficientCash ErrorCode = 100303
	// ErrInsufficientBalance account holds less shares than requested
	ErrInsufficientBalance ErrorCode = 100304
	// ErrInsufficientReserves reserves are lower than requested
	ErrInsufficientReserves ErrorCode = 100305
	// ErrInsufficientRewards distributor float is too low
	ErrInsufficientRewards ErrorCode = 100306
	// ErrNonzeroBorrowBalance account still owes the market
	ErrNonzeroBorrowBalance ErrorCode = 100307
	// ErrPriceUnavailable oracle has no price for the market
	ErrPriceUnavailable ErrorCode = 100308
	// ErrSeizeTooMuch borrower holds less collateral than the seize amount
	ErrSeizeTooMuch ErrorCode = 100309

	// ErrMath overflow, underflow or division by zero
	ErrMath ErrorCode = 100400
	// ErrBorrowRateTooHigh interest model returned an absurd rate
	ErrBorrowRateTooHigh ErrorCode = 100401
	// ErrInterestRateModel interest model failed
	ErrInterestRateModel ErrorCode = 100402

	// ErrTransferFailed external token transfer failed
	ErrTransferFailed ErrorCode = 100500
)

// ErrorKind groups error codes
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuthorization
	KindValidation
	KindMarketState
	KindLiquidity
	KindArithmetic
	KindExternalTransfer
)

var kindNames = map[ErrorKind]string{
	KindUnknown:          "unknown",
	KindAuthorization:    "authorization",
	KindValidation:       "validation",
	KindMarketState:      "market_state",
	KindLiquidity:        "liquidity",
	KindArithmetic:       "arithmetic",
	KindExternalTransfer: "external_transfer",
}

func (k ErrorKind) String() string {
	return kindNames[k]
}

// Kind returns the taxonomy group of the code
func (e ErrorCode) Kind() ErrorKind {
	switch {
	case e == ErrUnauthorized:
		return KindAuthorization
	case e >= 100100 && e < 100200:
		return KindValidation
	case e >= 100200 && e < 100300:
		return KindMarketState
	case e >= 100300 && e < 100400:
		return KindLiquidity
	case e >= 100400 && e < 100500:
		return KindArithmetic
	case e == ErrTransferFailed:
		return KindExternalTransfer
	default:
		return KindUnknown
	}
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

// Error carries the code, a sub-reason such as "market/redeem/insufficient-cash"
// and the underlying cause when there is one
type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

// NewError new error
func NewError(code ErrorCode, reason string) *Error {
	return &Error{Code: code, Reason: reason}
}

// WrapError attaches a code and reason to err
func WrapError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %v", e.Reason, e.Code, e.Err)
	}

	return fmt.Sprintf("%s (%d)", e.Reason, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error or a bare ErrorCode by code
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case *Error:
		return t.Code == e.Code
	case ErrorCode:
		return t == e.Code
	}

	return false
}

// Kind kind
func (e *Error) Kind() ErrorKind {
	return e.Code.Kind()
}

// IsFatal reports whether the error came from arithmetic, an external
// transfer or somewhere unexpected. The rest are business rejections.
func (e *Error) IsFatal() bool {
	k := e.Kind()
	return k == KindUnknown || k == KindArithmetic || k == KindExternalTransfer
}

// CodeOf extracts the ErrorCode from err, ErrUnknown when absent
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	var code ErrorCode
	if errors.As(err, &code) {
		return code
	}

	return ErrUnknown
}

// IsFatal reports whether err is fatal. Unknown errors are fatal.
func IsFatal(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.IsFatal()
	}

	return true
}
