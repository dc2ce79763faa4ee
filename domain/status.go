package domain

import (
	"fmt"
	"time"
)

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	StatusPending    ContractStatus = "PENDING"
	StatusInProgress ContractStatus = "IN_PROGRESS"
	StatusCancelled  ContractStatus = "CANCELLED"
	StatusCompleted  ContractStatus = "COMPLETED"
)

var statusDescriptions = map[ContractStatus]string{
	StatusPending:    "Not started",
	StatusInProgress: "In progress",
	StatusCancelled:  "Cancelled",
	StatusCompleted:  "Ended",
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []ContractStatus {
	return []ContractStatus{StatusPending, StatusInProgress, StatusCancelled, StatusCompleted}
}

// ParseContractStatus accepts the exact status names only.
func ParseContractStatus(value string) (ContractStatus, error) {
	s := ContractStatus(value)
	if _, ok := statusDescriptions[s]; !ok {
		return "", fmt.Errorf("unknown contract status %q", value)
	}
	return s, nil
}

func (s ContractStatus) Valid() bool {
	_, ok := statusDescriptions[s]
	return ok
}

// Description is the human readable label shown next to the status.
func (s ContractStatus) Description() string {
	return statusDescriptions[s]
}

// IsTerminal reports whether date-driven recomputation must leave the status alone.
func (s ContractStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// DeriveStatus computes the status a contract has on the given calendar day.
// Terminal statuses are returned unchanged.
func DeriveStatus(stored ContractStatus, startDate, endDate, today time.Time) ContractStatus {
	if stored.IsTerminal() {
		return stored
	}
	today = DateOf(today)
	switch {
	case DateOf(startDate).After(today):
		return StatusPending
	case DateOf(endDate).Before(today):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}
