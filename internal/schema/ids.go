package schema

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator assigns ids to tables and columns while a schema is built.
//
// tableIndex is the position the table will take in the table list;
// columnIndex is the position of the column within its table.
type IDGenerator interface {
	TableID(tableIndex int) string
	ColumnID(tableIndex, columnIndex int) string
}

// SequentialIDs numbers tables and columns from "1". Column numbering
// restarts in every table, so column ids are only unique within a table.
type SequentialIDs struct{}

// TableID returns the 1-based table position
func (SequentialIDs) TableID(tableIndex int) string {
	return strconv.Itoa(tableIndex + 1)
}

// ColumnID returns the 1-based column position within its table
func (SequentialIDs) ColumnID(_, columnIndex int) string {
	return strconv.Itoa(columnIndex + 1)
}

// UUIDIDs assigns random UUIDs, unique across the whole schema.
type UUIDIDs struct{}

// TableID returns a new random UUID
func (UUIDIDs) TableID(int) string {
	return uuid.NewString()
}

// ColumnID returns a new random UUID
func (UUIDIDs) ColumnID(int, int) string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator registered under name:
// "sequence" (or empty) and "uuid".
func NewIDGenerator(name string) (IDGenerator, error) {
	switch name {
	case "", "sequence":
		return SequentialIDs{}, nil
	case "uuid":
		return UUIDIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme: %s (must be 'sequence' or 'uuid')", name)
	}
}
