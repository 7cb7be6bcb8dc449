package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOperation(t *testing.T) {
	tests := []struct {
		name       string
		operation  string
		parameters string
	}{
		{name: "with parameters", operation: "Ingest", parameters: "/data/incoming"},
		{name: "empty parameters", operation: "Rebuild", parameters: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := NewOperation(tt.operation, tt.parameters)

			assert.Equal(t, tt.operation, op.Name)
			assert.Equal(t, tt.parameters, op.Parameters)
			assert.Equal(t, "success", op.Status)
			assert.Zero(t, op.ID)
			assert.NotEmpty(t, op.RunID)
		})
	}

	assert.NotEqual(t, NewOperation("a", "").RunID, NewOperation("a", "").RunID, "run IDs should differ between operations")
}

func TestOperation_Persisted(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{name: "not persisted when ID is 0", id: 0, want: false},
		{name: "persisted when ID is positive", id: 1, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &Operation{ID: tt.id}
			assert.Equal(t, tt.want, op.Persisted())
		})
	}
}

func TestOperation_Fail(t *testing.T) {
	op := NewOperation("Ingest", "")
	op.Fail()
	assert.Equal(t, "error", op.Status)
}
