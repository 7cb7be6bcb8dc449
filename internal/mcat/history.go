package mcat

import "time"

// Operation statuses.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusError   = "error"
)

// Operation is one entry of the command history kept next to the catalog.
type Operation struct {
	ID         int64
	RunID      string
	Operation  string
	Parameters string
	Status     string
	StartedAt  time.Time
	FinishedAt *time.Time
}

// OperationLog records mutating commands run against a Store.
type OperationLog interface {
	CreateOperation(operation, parameters, runID string) (*Operation, error)
	FinishOperation(id int64, status string) error
	// ListOperations returns the most recent operations, newest first.
	ListOperations(limit int) ([]*Operation, error)
}
