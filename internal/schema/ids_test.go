package schema

import (
	"testing"

	"github.com/google/uuid"
)

func TestSequentialIDs(t *testing.T) {
	ids := SequentialIDs{}

	if got := ids.TableID(0); got != "1" {
		t.Errorf("TableID(0) = %s, want 1", got)
	}
	if got := ids.TableID(11); got != "12" {
		t.Errorf("TableID(11) = %s, want 12", got)
	}
	if got := ids.ColumnID(5, 2); got != "3" {
		t.Errorf("ColumnID(5, 2) = %s, want 3", got)
	}
}

func TestUUIDIDs(t *testing.T) {
	ids := UUIDIDs{}
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		for _, id := range []string{ids.TableID(i), ids.ColumnID(i, i)} {
			if _, err := uuid.Parse(id); err != nil {
				t.Fatalf("Expected a valid UUID, got %q: %v", id, err)
			}
			if seen[id] {
				t.Fatalf("Duplicate id %s", id)
			}
			seen[id] = true
		}
	}
}

func TestNewIDGenerator(t *testing.T) {
	tests := []struct {
		name    string
		want    IDGenerator
		wantErr bool
	}{
		{name: "", want: SequentialIDs{}},
		{name: "sequence", want: SequentialIDs{}},
		{name: "uuid", want: UUIDIDs{}},
		{name: "snowflake", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewIDGenerator(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewIDGenerator(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NewIDGenerator(%q) = %T, want %T", tt.name, got, tt.want)
			}
		})
	}
}
