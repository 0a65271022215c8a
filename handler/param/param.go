package param

import (
	"encoding/json"
	"io"
	"net/http"
	"reflect"
	"time"

	"lender/core"
	"lender/pkg/number"

	"github.com/asaskevich/govalidator"
	"github.com/gorilla/schema"
	"github.com/holiman/uint256"
)

var decoder = schema.NewDecoder()

func init() {
	decoder.SetAliasTag("json")
	decoder.IgnoreUnknownKeys(true)
	decoder.RegisterConverter(time.Time{}, func(s string) reflect.Value {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return reflect.Value{}
		}

		return reflect.ValueOf(t)
	})
}

// Binding fills v from the query string, then from a json body, and
// validates the result
func Binding(r *http.Request, v interface{}) error {
	if err := decoder.Decode(v, r.URL.Query()); err != nil {
		return core.WrapError(core.ErrInvalidInput, "param/query", err)
	}

	if r.Body != nil && r.Method != http.MethodGet {
		if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
			return core.WrapError(core.ErrInvalidInput, "param/body", err)
		}
	}

	if _, err := govalidator.ValidateStruct(v); err != nil {
		return core.WrapError(core.ErrInvalidInput, "param/validate", err)
	}

	return nil
}

// Amount parses an integer amount. With allowMax, "max" maps to the repay
// everything sentinel.
func Amount(s string, allowMax bool) (uint256.Int, error) {
	if allowMax && s == "max" {
		return core.RepayAll(), nil
	}

	v, err := number.ParseInt(s)
	if err != nil {
		return uint256.Int{}, core.WrapError(core.ErrInvalidAmount, "param/amount", err)
	}

	return v, nil
}
