package codes

import (
	"errors"
	"strconv"

	"lender/core"

	"github.com/twitchtv/twirp"
)

const (
	// CustomCodeKey code key
	CustomCodeKey = "custom_code"

	// InvalidArguments invalid arguments
	InvalidArguments = 100001
)

// With with specified error
func With(err error, code int) error {
	var twerr twirp.Error
	if !errors.As(err, &twerr) {
		twerr = twirp.InternalErrorWith(err)
	}

	return twerr.WithMeta(CustomCodeKey, strconv.Itoa(code))
}

// FromError converts an engine error into a twirp error carrying the
// ledger error code
func FromError(err error) twirp.Error {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr
	}

	code := core.CodeOf(err)

	var tc twirp.ErrorCode
	switch code.Kind() {
	case core.KindAuthorization:
		tc = twirp.PermissionDenied
	case core.KindValidation:
		tc = twirp.InvalidArgument
	case core.KindMarketState, core.KindLiquidity:
		tc = twirp.FailedPrecondition
	default:
		tc = twirp.Internal
	}

	if code == core.ErrMarketNotFound {
		tc = twirp.NotFound
	}

	return twirp.NewError(tc, err.Error()).WithMeta(CustomCodeKey, code.String())
}

// Get get error code
func Get(twerr twirp.Error) int {
	if v := twerr.Meta(CustomCodeKey); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			return code
		}
	}

	switch twerr.Code() {
	case twirp.InvalidArgument:
		return InvalidArguments
	default:
		return twirp.ServerHTTPStatusFromErrorCode(twerr.Code())
	}
}
