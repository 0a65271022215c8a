package id

import (
	"fmt"

	"github.com/fox-one/pkg/uuid"
	gouuid "github.com/gofrs/uuid"
)

// New random id for a ledger transaction
func New() string {
	return gouuid.Must(gouuid.NewV4()).String()
}

// Event trace id of the seq-th event emitted by tx, stable for the same inputs
func Event(tx string, action string, seq int) string {
	return uuid.Modify(tx, fmt.Sprintf("%s:%d", action, seq))
}
