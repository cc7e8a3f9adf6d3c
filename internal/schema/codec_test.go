package schema

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestDecodeJSON(t *testing.T) {
	input := `{
  "tables": [
    {
      "id": "1",
      "name": "users",
      "columns": [
        {"id": "1", "name": "id", "type": "int", "isPrimaryKey": true, "isForeignKey": false, "comment": ""}
      ]
    },
    {
      "id": "2",
      "name": "orders",
      "columns": [
        {"id": "1", "name": "user_id", "type": "int", "isPrimaryKey": false, "isForeignKey": true, "comment": "buyer",
         "foreignKeyReference": {"tableId": "1", "columnId": "1"}}
      ]
    }
  ]
}`
	s, err := Decode(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(s.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(s.Tables))
	}
	col := s.Tables[1].Columns[0]
	if !col.IsForeignKey || col.Comment != "buyer" {
		t.Errorf("Unexpected column %+v", col)
	}
	if col.ForeignKeyReference == nil || *col.ForeignKeyReference != (ForeignKeyReference{TableID: "1", ColumnID: "1"}) {
		t.Errorf("Unexpected reference %+v", col.ForeignKeyReference)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{name: "truncated json", input: `{"tables": [`, format: FormatJSON},
		{name: "wrong json type", input: `{"tables": "users"}`, format: FormatJSON},
		{name: "empty json", input: ``, format: FormatJSON},
		{name: "bad yaml", input: "tables:\n  - id: [1\n", format: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(tt.input), tt.format); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestDecodeEmptyYAML(t *testing.T) {
	s, err := Decode(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(s.Tables) != 0 {
		t.Errorf("Expected no tables, got %d", len(s.Tables))
	}
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := Decode(strings.NewReader("{}"), Format("toml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Decode() error = %v, want ErrUnsupportedFormat", err)
	}

	err = Encode(&bytes.Buffer{}, &Schema{}, Format("toml"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Encode() error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			original := sampleSchema()

			var buf bytes.Buffer
			if err := Encode(&buf, original, format); err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			decoded, err := Decode(&buf, format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !reflect.DeepEqual(decoded, original) {
				t.Errorf("Decode(Encode(s)) = %+v, want %+v", decoded, original)
			}
		})
	}
}

func TestEncodeJSONKeys(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, sampleSchema(), FormatJSON); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	out := buf.String()
	for _, key := range []string{`"tables"`, `"isPrimaryKey"`, `"isForeignKey"`, `"foreignKeyReference"`, `"tableId"`, `"columnId"`} {
		if !strings.Contains(out, key) {
			t.Errorf("Expected key %s in output", key)
		}
	}
	if !strings.Contains(out, `"comment": ""`) {
		t.Error("Expected column comment to be written even when empty")
	}
}

func TestEncodeNilTables(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, &Schema{}, FormatJSON); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "{\n  \"tables\": []\n}" {
		t.Errorf("Encode() = %s, want an empty table list", got)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"schema.json", FormatJSON, true},
		{"schema.YAML", FormatYAML, true},
		{"dir/schema.yml", FormatYAML, true},
		{"diagram.mmd", "", false},
		{"noext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := FormatFromPath(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("FormatFromPath(%s) = %s, %v, want %s, %v", tt.path, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
