package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent(t *testing.T) {
	tx := New()
	assert.NotEqual(t, tx, New())

	a := Event(tx, "mint", 0)
	assert.Equal(t, a, Event(tx, "mint", 0))
	assert.NotEqual(t, a, Event(tx, "mint", 1))
	assert.NotEqual(t, a, Event(tx, "redeem", 0))
	assert.Len(t, a, 36)
}
