package number

import (
	"testing"

	"github.com/bmizerany/assert"
	"github.com/shopspring/decimal"
)

func TestParseInt(t *testing.T) {
	data := map[string]string{
		"0":          "0",
		"1000000":    "1000000",
		"12.99":      "12",
		"1e18":       "1000000000000000000",
		"0.00000001": "0",
	}

	for k, v := range data {
		t.Run(k, func(t *testing.T) {
			n, err := ParseInt(k)
			assert.Equal(t, nil, err)
			assert.Equal(t, v, n.Dec(), "should truncate")
		})
	}
}

func TestIntFromDecimalRejectsNegative(t *testing.T) {
	_, err := IntFromDecimal(decimal.NewFromInt(-1))
	assert.Equal(t, ErrUnderflow, err)

	huge := decimal.New(1, 80)
	_, err = IntFromDecimal(huge)
	assert.Equal(t, ErrOverflow, err)
}

func TestIntToDecimal(t *testing.T) {
	assert.Equal(t, "123456789", IntToDecimal(NewInt(123456789)).String())
}
