package querybuilder

import (
	"errors"
	"reflect"
	"strings"
	"sync"
)

type dbField struct {
	column string
	index  int
}

// fieldsByType caches the db-tagged exported fields of each row model.
var fieldsByType sync.Map

func dbFields(t reflect.Type) []dbField {
	if cached, ok := fieldsByType.Load(t); ok {
		return cached.([]dbField)
	}

	var fields []dbField
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, dbField{column: column, index: i})
	}

	actual, _ := fieldsByType.LoadOrStore(t, fields)
	return actual.([]dbField)
}

// InsertModel renders a single-row insert from a struct's db tags. suffix is
// appended as with InsertBuilder.Suffix.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "", nil, errors.New("querybuilder: nil model")
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return "", nil, errors.New("querybuilder: model must be a struct, got " + v.Kind().String())
	}

	fields := dbFields(v.Type())
	if len(fields) == 0 {
		return "", nil, errors.New("querybuilder: " + v.Type().Name() + " has no db columns")
	}

	columns := make([]string, len(fields))
	values := make([]any, len(fields))
	for i, f := range fields {
		columns[i] = f.column
		values[i] = v.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(columns...).Values(values...).Suffix(suffix).ToSQL()
}
