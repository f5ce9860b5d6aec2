// Package sheetssql treats tabs of a Google spreadsheet as typed tables. The
// first row of a table holds column names, the second their types, and data
// starts on the third row.
package sheetssql

import (
	"context"
	"fmt"
	"strings"
)

// SheetsClient defines the sheets operations a DB needs
type SheetsClient interface {
	GetValues(ctx context.Context, spreadsheetID, sheetRange string) ([][]any, error)
	AppendRows(ctx context.Context, spreadsheetID, sheetRange string, values [][]any) error
	ReplaceValues(ctx context.Context, spreadsheetID, tab string, values [][]any) error
	SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	CreateSheet(ctx context.Context, spreadsheetID, sheetTitle string) (int64, error)
}

// Column defines a column with name and type
type Column struct {
	Name string
	Type string // e.g. "text", "date", "float", "int", "bool", "uuid"
}

// TableSchema defines the structure of a table
type TableSchema struct {
	Name    string
	Columns []Column
}

// Schema defines the database schema
type Schema struct {
	Tables []TableSchema
}

// DB is a spreadsheet used as a database
type DB struct {
	client        SheetsClient
	spreadsheetID string
	schema        *Schema
}

// NewDB connects to a spreadsheet and creates any table of schema it is missing
func NewDB(ctx context.Context, client SheetsClient, spreadsheetID string, schema *Schema) (*DB, error) {
	db := &DB{
		client:        client,
		spreadsheetID: spreadsheetID,
		schema:        schema,
	}

	if err := db.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}
	return db, nil
}

func (db *DB) Client() SheetsClient {
	return db.client
}

func (db *DB) SpreadsheetID() string {
	return db.spreadsheetID
}

// Table returns the schema of a table by name
func (db *DB) Table(name string) (TableSchema, bool) {
	if db.schema == nil {
		return TableSchema{}, false
	}
	for _, t := range db.schema.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSchema{}, false
}

// InsertRows appends rows to the end of a table
func (db *DB) InsertRows(ctx context.Context, tableName string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	return db.client.AppendRows(ctx, db.spreadsheetID, tableName, rows)
}

// ReplaceRows rewrites a table with its header and type rows followed by rows
func (db *DB) ReplaceRows(ctx context.Context, tableName string, rows [][]any) error {
	table, ok := db.Table(tableName)
	if !ok {
		return fmt.Errorf("unknown table %s", tableName)
	}
	values := append(table.headerRows(), rows...)
	return db.client.ReplaceValues(ctx, db.spreadsheetID, tableName, values)
}

// ReadTable reads a free-form tab whose first row is the header row and has no type row.
// Reference tables maintained by hand in the spreadsheet use this layout.
func (db *DB) ReadTable(ctx context.Context, tab string) ([]string, [][]any, error) {
	values, err := db.client.GetValues(ctx, db.spreadsheetID, tab)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", tab, err)
	}
	if len(values) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", tab)
	}

	headers := make([]string, len(values[0]))
	for i, h := range values[0] {
		headers[i] = strings.TrimSpace(fmt.Sprint(h))
	}
	return headers, values[1:], nil
}
