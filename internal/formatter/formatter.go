// Package formatter renders an ERD schema in the supported output formats.
package formatter

import (
	"fmt"
	"io"

	"github.com/tordrt/erdkit/internal/ddl"
	"github.com/tordrt/erdkit/internal/mermaid"
	"github.com/tordrt/erdkit/internal/schema"
)

// Output format names
const (
	FormatMermaid  = "mermaid"
	FormatSQL      = "sql"
	FormatJSON     = "json"
	FormatYAML     = "yaml"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formats lists every format accepted by New
var Formats = []string{FormatMermaid, FormatSQL, FormatJSON, FormatYAML, FormatMarkdown, FormatText}

// Formatter writes a schema to its destination
type Formatter interface {
	Format(s *schema.Schema) error
}

// New returns the formatter for the named format writing to w
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case FormatMermaid:
		return NewMermaidFormatter(w), nil
	case FormatSQL:
		return NewSQLFormatter(w, ddl.Options{}), nil
	case FormatJSON:
		return NewExchangeFormatter(w, schema.FormatJSON), nil
	case FormatYAML:
		return NewExchangeFormatter(w, schema.FormatYAML), nil
	case FormatMarkdown:
		return NewMarkdownFormatter(w), nil
	case FormatText:
		return NewTextFormatter(w), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (must be one of mermaid, sql, json, yaml, markdown, text)", format)
	}
}

// MermaidFormatter writes erDiagram text
type MermaidFormatter struct {
	writer io.Writer
}

// NewMermaidFormatter creates a new Mermaid formatter
func NewMermaidFormatter(w io.Writer) *MermaidFormatter {
	return &MermaidFormatter{writer: w}
}

// Format writes the schema as an erDiagram
func (f *MermaidFormatter) Format(s *schema.Schema) error {
	if _, err := io.WriteString(f.writer, mermaid.Serialize(s.Tables)); err != nil {
		return fmt.Errorf("failed to write diagram: %w", err)
	}
	return nil
}

// SQLFormatter writes PostgreSQL DDL
type SQLFormatter struct {
	writer    io.Writer
	generator *ddl.Generator
}

// NewSQLFormatter creates a new DDL formatter
func NewSQLFormatter(w io.Writer, opts ddl.Options) *SQLFormatter {
	return &SQLFormatter{writer: w, generator: ddl.NewGenerator(opts)}
}

// Format writes the schema as CREATE TABLE statements
func (f *SQLFormatter) Format(s *schema.Schema) error {
	if _, err := io.WriteString(f.writer, f.generator.Generate(s.Tables)); err != nil {
		return fmt.Errorf("failed to write DDL: %w", err)
	}
	return nil
}

// ExchangeFormatter writes the {"tables": [...]} document
type ExchangeFormatter struct {
	writer io.Writer
	format schema.Format
}

// NewExchangeFormatter creates a formatter for the JSON or YAML exchange shape
func NewExchangeFormatter(w io.Writer, format schema.Format) *ExchangeFormatter {
	return &ExchangeFormatter{writer: w, format: format}
}

// Format encodes the schema
func (f *ExchangeFormatter) Format(s *schema.Schema) error {
	return schema.Encode(f.writer, s, f.format)
}
