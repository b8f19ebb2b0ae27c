package querybuilder

import (
	"errors"
	"reflect"
	"strings"
)

// Columns lists the db-tagged columns of a row struct in field order.
func Columns(model any) ([]string, error) {
	cols, _, err := columnsAndValues(model)
	return cols, err
}

// InsertModels builds a multi-row insert from db-tagged structs of one type.
func InsertModels[T any](table string, rows []T) (*InsertBuilder, error) {
	if len(rows) == 0 {
		return nil, errNoRows
	}
	b := InsertInto(table)
	for i := range rows {
		cols, vals, err := columnsAndValues(&rows[i])
		if err != nil {
			return nil, err
		}
		if i == 0 {
			b.Columns(cols...)
		}
		b.Values(vals...)
	}
	return b, nil
}

func columnsAndValues(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, errors.New("querybuilder: model is nil")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, errors.New("querybuilder: model must be a struct")
	}

	t := v.Type()
	cols := make([]string, 0, t.NumField())
	vals := make([]any, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		col, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		col = strings.TrimSpace(col)
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, v.Field(i).Interface())
	}
	if len(cols) == 0 {
		return nil, nil, errors.New("querybuilder: model has no db columns")
	}
	return cols, vals, nil
}
