package erdkit

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tordrt/erdkit/internal/schema"
)

const shopDiagram = `erDiagram
    users {
        int id PK
        varchar email "login address"
    }
    orders {
        int id PK
        int user_id FK
    }
    users ||--o{ orders : "user_id"
`

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantType string
		wantConn string
		wantErr  bool
	}{
		{name: "postgres", url: "postgres://u:p@localhost/db", wantType: "postgres", wantConn: "postgres://u:p@localhost/db"},
		{name: "postgresql", url: "postgresql://localhost/db", wantType: "postgres", wantConn: "postgresql://localhost/db"},
		{name: "mysql", url: "mysql://u:p@tcp(localhost:3306)/shop", wantType: "mysql", wantConn: "u:p@tcp(localhost:3306)/shop"},
		{name: "sqlite", url: "sqlite://data/shop.db", wantType: "sqlite", wantConn: "data/shop.db"},
		{name: "empty", url: "", wantErr: true},
		{name: "unknown scheme", url: "oracle://localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbType, conn, err := parseDatabaseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseDatabaseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if dbType != tt.wantType {
				t.Errorf("parseDatabaseURL() type = %s, want %s", dbType, tt.wantType)
			}
			if conn != tt.wantConn {
				t.Errorf("parseDatabaseURL() conn = %s, want %s", conn, tt.wantConn)
			}
		})
	}
}

func TestFilterExcludedTables(t *testing.T) {
	tests := []struct {
		name        string
		tables      []string
		excludeList []string
		wantTables  []string
	}{
		{
			name:        "exclude single table",
			tables:      []string{"users", "posts", "comments"},
			excludeList: []string{"posts"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude multiple tables",
			tables:      []string{"users", "posts", "comments", "likes"},
			excludeList: []string{"posts", "likes"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude no tables",
			tables:      []string{"users", "posts"},
			excludeList: []string{},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude non-existent table",
			tables:      []string{"users", "posts"},
			excludeList: []string{"products"},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude all tables",
			tables:      []string{"users", "posts"},
			excludeList: []string{"users", "posts"},
			wantTables:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterExcludedTables(tt.tables, tt.excludeList)

			if len(got) != len(tt.wantTables) {
				t.Errorf("filterExcludedTables() resulted in %d tables, want %d", len(got), len(tt.wantTables))
				return
			}

			for i, table := range got {
				if table != tt.wantTables[i] {
					t.Errorf("filterExcludedTables() table[%d] = %s, want %s", i, table, tt.wantTables[i])
				}
			}
		})
	}
}

func TestInputFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"shop.mmd", InputMermaid},
		{"shop.txt", InputMermaid},
		{"shop", InputMermaid},
		{"shop.json", InputJSON},
		{"shop.yaml", InputYAML},
		{"SHOP.YML", InputYAML},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := InputFormat(tt.path); got != tt.want {
				t.Errorf("InputFormat(%s) = %s, want %s", tt.path, got, tt.want)
			}
		})
	}
}

func TestReadSchema(t *testing.T) {
	s, warnings, err := ReadSchema(strings.NewReader(shopDiagram), InputMermaid, nil)
	if err != nil {
		t.Fatalf("ReadSchema failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	if len(s.Tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(s.Tables))
	}
	if s.Tables[1].Columns[1].ForeignKeyReference == nil {
		t.Error("Expected orders.user_id to reference users")
	}

	empty, _, err := ReadSchema(strings.NewReader(""), InputMermaid, nil)
	if err != nil {
		t.Fatalf("ReadSchema failed: %v", err)
	}
	if empty.Tables == nil {
		t.Error("Expected non-nil tables for empty input")
	}

	if _, _, err := ReadSchema(strings.NewReader("{"), InputJSON, nil); err == nil {
		t.Error("Expected error for malformed JSON")
	}

	_, _, err = ReadSchema(strings.NewReader(""), "xml", nil)
	if !errors.Is(err, schema.ErrUnsupportedFormat) {
		t.Errorf("Expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadSchemaFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	tables := Parse(shopDiagram)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := FormatSchema(&Schema{Tables: tables}, format, &OutputOptions{Writer: &buf}); err != nil {
				t.Fatalf("FormatSchema failed: %v", err)
			}

			path := filepath.Join(dir, "shop."+format)
			if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
				t.Fatal(err)
			}

			s, _, err := LoadSchemaFile(path, nil)
			if err != nil {
				t.Fatalf("LoadSchemaFile failed: %v", err)
			}
			if got := Serialize(s.Tables); got != Serialize(tables) {
				t.Errorf("Expected identical diagram after %s round trip, got\n%s", format, got)
			}
		})
	}

	if _, _, err := LoadSchemaFile(filepath.Join(dir, "missing.mmd"), nil); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestFormatSchemaToWriter(t *testing.T) {
	s := &Schema{Tables: Parse(shopDiagram)}

	tests := []struct {
		format string
		want   string
	}{
		{"mermaid", `users ||--o{ orders : "user_id"`},
		{"sql", `CREATE TABLE "orders" (`},
		{"json", `"foreignKeyReference"`},
		{"yaml", "isPrimaryKey: true"},
		{"markdown", "## orders"},
		{"text", "TABLE users"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := FormatSchema(s, tt.format, &OutputOptions{Writer: &buf}); err != nil {
				t.Fatalf("FormatSchema failed: %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("Expected output to contain %q, got\n%s", tt.want, buf.String())
			}
		})
	}

	if err := FormatSchema(s, "xml", &OutputOptions{Writer: &bytes.Buffer{}}); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFormatSchemaSQLOptions(t *testing.T) {
	s := &Schema{Tables: Parse(shopDiagram)}

	var buf bytes.Buffer
	err := FormatSchema(s, "sql", &OutputOptions{Writer: &buf, DDL: DDLOptions{DeferForeignKeys: true}})
	if err != nil {
		t.Fatalf("FormatSchema failed: %v", err)
	}
	if !strings.Contains(buf.String(), "-- Foreign keys\n") {
		t.Errorf("Expected deferred foreign keys, got\n%s", buf.String())
	}
}

func TestFormatSchemaToDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	s := &Schema{Tables: Parse(shopDiagram)}

	if err := FormatSchema(s, "sql", &OutputOptions{OutputDir: tmpDir}); err != nil {
		t.Fatalf("FormatSchema failed: %v", err)
	}

	for _, name := range []string{"_overview.sql", "users.sql", "orders.sql"} {
		if _, err := os.Stat(filepath.Join(tmpDir, name)); err != nil {
			t.Errorf("Expected file %s to exist", name)
		}
	}

	if err := FormatSchema(s, "json", &OutputOptions{OutputDir: tmpDir}); err == nil {
		t.Error("Expected error for json multi-file output")
	}
}

func TestGenerateDDLNilOptions(t *testing.T) {
	tables := Parse(shopDiagram)
	if got, want := GenerateDDL(tables, nil), GenerateDDL(tables, &DDLOptions{}); got != want {
		t.Errorf("GenerateDDL(nil) =\n%s\nwant\n%s", got, want)
	}
}

func TestExtractSchemaErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
	}{
		{name: "empty URL", url: ""},
		{name: "invalid URL scheme", url: "invalid://test.db"},
		{name: "missing SQLite file", url: "sqlite://" + filepath.Join(t.TempDir(), "missing.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExtractSchema(ctx, tt.url, nil); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestApplySchemaRejectsOtherDatabases(t *testing.T) {
	_, err := ApplySchema(context.Background(), "sqlite://shop.db", Parse(shopDiagram), nil)
	if err == nil || !strings.Contains(err.Error(), "PostgreSQL only") {
		t.Errorf("Expected PostgreSQL only error, got %v", err)
	}
}
