package sheetssql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type TestShift struct {
	ID     string     `ssql_header:"id" ssql_type:"uuid"`
	Day    time.Time  `ssql_header:"day" ssql_type:"date"`
	Hours  float64    `ssql_header:"hours" ssql_type:"float"`
	Units  *float64   `ssql_header:"units" ssql_type:"float"`
	Born   *time.Time `ssql_header:"born" ssql_type:"date"`
	Count  int        `ssql_header:"count" ssql_type:"int"`
	Active bool       `ssql_header:"active" ssql_type:"bool"`
}

type namedTable struct {
	ID string `ssql_header:"id" ssql_type:"uuid"`
}

func (namedTable) TableName() string { return "derived_rows" }

func TestSchemaFromModels_SingleModel(t *testing.T) {
	schema, err := SchemaFromModels(TestShift{})
	require.NoError(t, err)

	require.Len(t, schema.Tables, 1)
	table := schema.Tables[0]
	assert.Equal(t, "test_shift", table.Name)
	require.Len(t, table.Columns, 7)
	assert.Equal(t, Column{Name: "day", Type: "date"}, table.Columns[1])
	assert.Equal(t, Column{Name: "units", Type: "float"}, table.Columns[3])
}

func TestSchemaFromModels_TableNameOverride(t *testing.T) {
	schema, err := SchemaFromModels(namedTable{}, &TestShift{})
	require.NoError(t, err)

	require.Len(t, schema.Tables, 2)
	assert.Equal(t, "derived_rows", schema.Tables[0].Name)
	assert.Equal(t, "test_shift", schema.Tables[1].Name)
}

func TestSchemaFromModels_MissingTags(t *testing.T) {
	type noHeader struct {
		ID string `ssql_type:"uuid"`
	}
	type noType struct {
		ID string `ssql_header:"id"`
	}

	_, err := SchemaFromModels(noHeader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'ssql_header' tag")

	_, err = SchemaFromModels(noType{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'ssql_type' tag")
}

func TestSchemaFromModels_NotAStruct(t *testing.T) {
	_, err := SchemaFromModels("not a struct")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a struct")
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"StoredWorkLog", "stored_work_log"},
		{"TestShift", "test_shift"},
		{"UUID", "u_u_i_d"},
		{"simple", "simple"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, toSnakeCase(tt.input))
		})
	}
}

func TestNewDB_CreatesMissingTables(t *testing.T) {
	mock := &mockSheetsClient{titles: []string{"Sheet1"}}
	schema, err := SchemaFromModels(TestShift{})
	require.NoError(t, err)

	_, err = NewDB(context.Background(), mock, "sheet123", schema)
	require.NoError(t, err)

	assert.Equal(t, []string{"test_shift"}, mock.created)
	require.Len(t, mock.appended["test_shift"], 2)
	assert.Equal(t, []any{"id", "day", "hours", "units", "born", "count", "active"}, mock.appended["test_shift"][0])
	assert.Equal(t, []any{"uuid", "date", "float", "float", "date", "int", "bool"}, mock.appended["test_shift"][1])
}

func TestNewDB_VerifiesExistingTables(t *testing.T) {
	mock := &mockSheetsClient{
		titles: []string{"derived_rows"},
		values: map[string][][]any{
			"derived_rows!A1:ZZ2": {{"id"}, {"text"}},
		},
	}
	schema, err := SchemaFromModels(namedTable{})
	require.NoError(t, err)

	_, err = NewDB(context.Background(), mock, "sheet123", schema)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema mismatch")
	assert.Empty(t, mock.created)
}

func TestNewDB_ListError(t *testing.T) {
	mock := &mockSheetsClient{titlesErr: errors.New("forbidden")}
	_, err := NewDB(context.Background(), mock, "sheet123", &Schema{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}
