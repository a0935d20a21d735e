// Package operator defines the bridge operator registry domain model.
package operator

import (
	"errors"
	"time"
)

// Operator is an account authorized to approve or reject bridge requests.
// Removal deactivates the record rather than deleting it, so signatures cast
// while the operator was active remain attributable.
type Operator struct {
	Account   string     `json:"account"`
	Active    bool       `json:"active"`
	AddedAt   time.Time  `json:"added_at"`
	RemovedAt *time.Time `json:"removed_at,omitzero"`
}

var (
	// ErrNotFound is returned when the account was never registered.
	ErrNotFound = errors.New("operator not found")
	// ErrAlreadyActive is returned when adding an operator that is already active.
	ErrAlreadyActive = errors.New("operator already active")
)
