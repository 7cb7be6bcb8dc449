package app

import (
	"github.com/google/uuid"

	"mcat-go/internal/mcat"
)

// Operation tracks a CLI command that may mutate the catalog.
// Operations are created in memory with ID=0. Only catalog-mutating
// commands persist them (giving them an auto-increment ID from the database).
type Operation struct {
	ID         int64
	RunID      string
	Name       string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates a new in-memory operation with a fresh run ID.
func NewOperation(name, parameters string) *Operation {
	return &Operation{
		RunID:      uuid.New().String(),
		Name:       name,
		Parameters: parameters,
		Status:     mcat.StatusSuccess,
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = mcat.StatusError
}
