package schema

import (
	"reflect"
	"testing"
)

func sampleSchema() *Schema {
	return &Schema{Tables: []Table{
		{
			ID:   "1",
			Name: "users",
			Columns: []Column{
				{ID: "1", Name: "id", Type: "int", IsPrimaryKey: true},
				{ID: "2", Name: "email", Type: "varchar"},
			},
		},
		{
			ID:   "2",
			Name: "orders",
			Columns: []Column{
				{ID: "1", Name: "id", Type: "int", IsPrimaryKey: true},
				{ID: "2", Name: "user_id", Type: "int", IsForeignKey: true,
					ForeignKeyReference: &ForeignKeyReference{TableID: "1", ColumnID: "1"}},
				{ID: "3", Name: "coupon_id", Type: "int", IsForeignKey: true},
			},
		},
	}}
}

func TestLookups(t *testing.T) {
	s := sampleSchema()

	if got := s.TableByID("2"); got == nil || got.Name != "orders" {
		t.Errorf("TableByID(2) = %v, want orders", got)
	}
	if got := s.TableByName("users"); got == nil || got.ID != "1" {
		t.Errorf("TableByName(users) = %v, want id 1", got)
	}
	if s.TableByID("9") != nil || s.TableByName("missing") != nil {
		t.Error("Expected nil for unknown tables")
	}

	orders := s.TableByName("orders")
	if got := orders.ColumnByID("2"); got == nil || got.Name != "user_id" {
		t.Errorf("ColumnByID(2) = %v, want user_id", got)
	}
	if got := orders.ColumnByName("coupon_id"); got == nil || got.ID != "3" {
		t.Errorf("ColumnByName(coupon_id) = %v, want id 3", got)
	}
	if orders.ColumnByName("nope") != nil {
		t.Error("Expected nil for unknown column")
	}
}

func TestLookupReturnsFirstMatch(t *testing.T) {
	tables := []Table{{ID: "1", Name: "dup"}, {ID: "2", Name: "dup"}}
	if got := FindTableByName(tables, "dup"); got.ID != "1" {
		t.Errorf("Expected first match, got id %s", got.ID)
	}
}

func TestLookupPointsIntoSlice(t *testing.T) {
	s := sampleSchema()
	s.TableByName("users").ColumnByName("email").Comment = "changed"

	if s.Tables[0].Columns[1].Comment != "changed" {
		t.Error("Expected lookups to return pointers into the schema")
	}
}

func TestPrimaryKeyColumns(t *testing.T) {
	table := Table{Columns: []Column{
		{Name: "a", IsPrimaryKey: true},
		{Name: "b"},
		{Name: "c", IsPrimaryKey: true},
	}}

	if got, want := table.PrimaryKeyColumns(), []string{"a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PrimaryKeyColumns() = %v, want %v", got, want)
	}
	if got := (&Table{}).PrimaryKeyColumns(); got != nil {
		t.Errorf("Expected nil for a table without keys, got %v", got)
	}
}

func TestResolveReference(t *testing.T) {
	s := sampleSchema()
	orders := s.TableByName("orders")

	table, column, ok := ResolveReference(s.Tables, orders.ColumnByName("user_id"))
	if !ok {
		t.Fatal("Expected user_id to resolve")
	}
	if table.Name != "users" || column.Name != "id" {
		t.Errorf("Expected users.id, got %s.%s", table.Name, column.Name)
	}

	if _, _, ok := ResolveReference(s.Tables, orders.ColumnByName("coupon_id")); ok {
		t.Error("Expected coupon_id without reference not to resolve")
	}
	if _, _, ok := ResolveReference(s.Tables, orders.ColumnByName("id")); ok {
		t.Error("Expected a non-FK column not to resolve")
	}
}

func TestReferences(t *testing.T) {
	refs := References(sampleSchema().Tables)
	if len(refs) != 1 {
		t.Fatalf("Expected 1 reference, got %d", len(refs))
	}

	ref := refs[0]
	if ref.Table.Name != "orders" || ref.Column.Name != "user_id" ||
		ref.TargetTable.Name != "users" || ref.TargetColumn.Name != "id" {
		t.Errorf("Unexpected reference %s.%s -> %s.%s",
			ref.Table.Name, ref.Column.Name, ref.TargetTable.Name, ref.TargetColumn.Name)
	}
}
