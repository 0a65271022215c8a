package core

import (
	"errors"
	"fmt"
	"testing"

	"lender/pkg/number"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cases := map[ErrorCode]ErrorKind{
		ErrUnauthorized:          KindAuthorization,
		ErrInvalidAmount:         KindValidation,
		ErrMarketNotFresh:        KindMarketState,
		ErrInsufficientLiquidity: KindLiquidity,
		ErrMath:                  KindArithmetic,
		ErrTransferFailed:        KindExternalTransfer,
		ErrUnknown:               KindUnknown,
	}

	for code, kind := range cases {
		assert.Equal(t, kind, code.Kind(), code.String())
	}

	assert.Equal(t, "liquidity", KindLiquidity.String())
}

func TestErrorMatching(t *testing.T) {
	err := fmt.Errorf("redeem: %w", NewError(ErrInsufficientCash, "market/redeem/insufficient-cash"))

	assert.True(t, errors.Is(err, ErrInsufficientCash))
	assert.False(t, errors.Is(err, ErrInsufficientBalance))
	assert.Equal(t, ErrInsufficientCash, CodeOf(err))
	assert.False(t, IsFatal(err))

	wrapped := WrapError(ErrMath, "market/accrue", number.ErrOverflow)
	assert.True(t, errors.Is(wrapped, number.ErrOverflow))
	assert.True(t, IsFatal(wrapped))
	assert.Contains(t, wrapped.Error(), "100400")

	assert.Equal(t, ErrUnknown, CodeOf(errors.New("boom")))
	assert.True(t, IsFatal(errors.New("boom")))
	assert.Equal(t, ErrTooMuchRepay, CodeOf(ErrTooMuchRepay))
}
