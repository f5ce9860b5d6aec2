package sheetssql

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/genf/workreport/pkg/core/ingest"
	"github.com/genf/workreport/pkg/core/period"
)

var timeType = reflect.TypeOf(time.Time{})

// GetTableAs reads every data row of T's table. Columns without a matching
// field are ignored and empty cells leave the field at its zero value.
func GetTableAs[T any](ctx context.Context, db *DB) ([]T, error) {
	var model T
	name := tableName(model)

	values, err := db.client.GetValues(ctx, db.spreadsheetID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get table %s: %w", name, err)
	}
	if len(values) < 3 {
		return []T{}, nil
	}

	t := reflect.TypeOf(model)
	fieldIndex := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if header := t.Field(i).Tag.Get("ssql_header"); header != "" {
			fieldIndex[header] = i
		}
	}

	// column position -> struct field
	columns := make(map[int]int)
	for i, header := range values[0] {
		if h, ok := header.(string); ok {
			if f, ok := fieldIndex[h]; ok {
				columns[i] = f
			}
		}
	}

	results := make([]T, 0, len(values)-2)
	for rowIdx, row := range values[2:] {
		result := reflect.New(t).Elem()
		for col, f := range columns {
			if col >= len(row) || ingest.IsNull(row[col]) {
				continue
			}
			if err := setFieldValue(result.Field(f), row[col]); err != nil {
				return nil, fmt.Errorf("row %d, column %s: %w", rowIdx+3, t.Field(f).Tag.Get("ssql_header"), err)
			}
		}
		results = append(results, result.Interface().(T))
	}
	return results, nil
}

// setFieldValue converts a sheet cell to the field's Go type
func setFieldValue(field reflect.Value, cell any) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	if field.Kind() == reflect.Ptr {
		if ingest.IsNull(cell) {
			field.Set(reflect.Zero(field.Type()))
			return nil
		}
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), cell); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.Type() == timeType {
		d, ok, err := ingest.Date(cell)
		if err != nil {
			return fmt.Errorf("failed to parse date: %w", err)
		}
		if ok {
			field.Set(reflect.ValueOf(d))
		}
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		s, _ := ingest.String(cell)
		field.SetString(s)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f, ok, err := ingest.Float(cell)
		if err != nil {
			return fmt.Errorf("failed to parse int: %w", err)
		}
		if ok && f != math.Trunc(f) {
			return fmt.Errorf("failed to parse int: %v is not integral", cell)
		}
		field.SetInt(int64(f))

	case reflect.Float32, reflect.Float64:
		f, _, err := ingest.Float(cell)
		if err != nil {
			return fmt.Errorf("failed to parse float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		switch x := cell.(type) {
		case bool:
			field.SetBool(x)
		default:
			s, _ := ingest.String(cell)
			b, err := strconv.ParseBool(s)
			if err != nil {
				return fmt.Errorf("failed to parse bool: %w", err)
			}
			field.SetBool(b)
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}

// cellValue renders a field for writing. Nil pointers become empty cells and dates are written as YYYY-MM-DD.
func cellValue(v reflect.Value) any {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		t := v.Interface().(time.Time)
		if t.IsZero() {
			return ""
		}
		return t.Format(period.DateLayout)
	}
	return v.Interface()
}

// ModelRows renders models as table rows in field order
func ModelRows[T any](models []T) [][]any {
	rows := make([][]any, 0, len(models))
	for _, model := range models {
		v := reflect.ValueOf(model)
		t := v.Type()
		row := make([]any, 0, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			if t.Field(i).Tag.Get("ssql_header") == "" {
				continue
			}
			row = append(row, cellValue(v.Field(i)))
		}
		rows = append(rows, row)
	}
	return rows
}

// InsertModels appends structs as rows to their table
func InsertModels[T any](ctx context.Context, db *DB, models []T) error {
	if len(models) == 0 {
		return nil
	}
	var model T
	return db.InsertRows(ctx, tableName(model), ModelRows(models))
}

// ReplaceModels rewrites T's table so it holds exactly models
func ReplaceModels[T any](ctx context.Context, db *DB, models []T) error {
	var model T
	return db.ReplaceRows(ctx, tableName(model), ModelRows(models))
}
