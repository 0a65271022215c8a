package compound

import (
	"lender/core"
	"lender/pkg/number"
)

// Require returns a *core.Error carrying code and reason when condition is false
func Require(condition bool, code core.ErrorCode, reason string) error {
	if condition {
		return nil
	}

	return core.NewError(code, reason)
}

// Math tags a checked arithmetic failure with reason. Errors that already
// carry a code are returned untouched.
func Math(err error, reason string) error {
	if err == nil {
		return nil
	}

	if _, ok := err.(*core.Error); ok {
		return err
	}

	if number.IsMathError(err) {
		return core.WrapError(core.ErrMath, reason, err)
	}

	return core.WrapError(core.ErrUnknown, reason, err)
}
