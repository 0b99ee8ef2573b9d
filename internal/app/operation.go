package app

import "github.com/google/uuid"

// Operation tracks a CLI run that may mutate the index. Operations start in
// memory with ID=0. Only index-mutating commands persist them, which gives
// them an auto-increment ID that doubles as the snapshot version.
type Operation struct {
	ID         int64
	RunID      string
	Name       string
	Parameters string
	Status     string // "success" or "error"
}

// NewOperation creates an in-memory operation with a fresh run ID.
func NewOperation(name, parameters string) *Operation {
	return &Operation{
		RunID:      uuid.NewString(),
		Name:       name,
		Parameters: parameters,
		Status:     "success",
	}
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed when err is non-nil and returns err.
func (op *Operation) Fail(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}
