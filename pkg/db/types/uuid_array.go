package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UUIDArray maps a postgres uuid[] column. sqlite stores the same array
// literal in a TEXT column.
type UUIDArray []uuid.UUID

func (a *UUIDArray) Scan(src any) error {
	var literal pq.StringArray
	if err := literal.Scan(src); err != nil {
		return fmt.Errorf("uuid array: %w", err)
	}
	ids := make(UUIDArray, 0, len(literal))
	for _, raw := range literal {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("uuid array element %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	*a = ids
	return nil
}

// Value never returns NULL; an empty array is written as {}.
func (a UUIDArray) Value() (driver.Value, error) {
	literal := make(pq.StringArray, len(a))
	for i, id := range a {
		literal[i] = id.String()
	}
	return literal.Value()
}

func (a UUIDArray) Contains(id uuid.UUID) bool {
	return slices.Contains(a, id)
}
