package ledger

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces candidate order identifiers.
type IDGenerator interface {
	NewOrderID() (string, error)
}

// UUIDOrderIDs issues "ORD" followed by the 32 hex digits of a UUIDv7,
// so ids stay time ordered without depending on clock resolution.
type UUIDOrderIDs struct{}

func (UUIDOrderIDs) NewOrderID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return "ORD" + strings.ToUpper(hex.EncodeToString(id[:])), nil
}
