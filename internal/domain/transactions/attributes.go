package transactions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm/schema"
)

// Attributes owned by the engine or the checklist. Submitted action data never
// overwrites them.
var protectedAttributes = map[string]struct{}{
	"id":                  {},
	"owner_user_id":       {},
	"status":              {},
	"current_action_code": {},
	"last_action_at":      {},
	"action_count":        {},
	"version":             {},
	"completed_steps":     {},
	"completed_actions":   {},
	"transaction_data":    {},
	"created_at":          {},
	"updated_at":          {},
}

func IsProtectedAttribute(name string) bool {
	_, ok := protectedAttributes[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

var (
	txSchemaOnce sync.Once
	txSchema     *schema.Schema
	txSchemaErr  error
)

func transactionSchema() (*schema.Schema, error) {
	txSchemaOnce.Do(func() {
		txSchema, txSchemaErr = schema.Parse(&Transaction{}, &sync.Map{}, schema.NamingStrategy{})
	})
	return txSchema, txSchemaErr
}

func lookupAttribute(name string) *schema.Field {
	sch, err := transactionSchema()
	if err != nil || sch == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	f := sch.LookUpField(name)
	if f == nil || f.DBName != name {
		return nil
	}
	return f
}

// HasAttribute reports whether name is a persisted column of Transaction.
func HasAttribute(name string) bool {
	return lookupAttribute(name) != nil
}

// Attribute reads a column value by column name, zero values included. ok is
// false when the transaction has no such column.
func (t *Transaction) Attribute(ctx context.Context, name string) (value any, ok bool) {
	if t == nil {
		return nil, false
	}
	f := lookupAttribute(name)
	if f == nil {
		return nil, false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	v, _ := f.ValueOf(ctx, reflect.ValueOf(t).Elem())
	return v, true
}

// MissingField reports whether the named attribute is absent or blank.
func (t *Transaction) MissingField(ctx context.Context, name string) bool {
	v, ok := t.Attribute(ctx, name)
	if !ok {
		return true
	}
	return IsBlank(v)
}

// AttributeError reports a payload value that does not fit its column.
type AttributeError struct {
	Field string
	Err   error
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("attribute %s: %v", e.Field, e.Err)
}

func (e *AttributeError) Unwrap() error { return e.Err }

// SetAttribute assigns value to the named column, converting it to the
// column's Go type. Unknown and protected names are ignored and report false.
func (t *Transaction) SetAttribute(ctx context.Context, name string, value any) (bool, error) {
	if t == nil || IsProtectedAttribute(name) {
		return false, nil
	}
	f := lookupAttribute(name)
	if f == nil || IsProtectedAttribute(f.DBName) {
		return false, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	converted, err := convertTo(f.FieldType, value)
	if err != nil {
		return false, &AttributeError{Field: f.DBName, Err: err}
	}
	if err := f.Set(ctx, reflect.ValueOf(t).Elem(), converted); err != nil {
		return false, &AttributeError{Field: f.DBName, Err: err}
	}
	return true, nil
}

// ApplyData back-writes every key of data naming an existing, non-protected
// column. It returns the column names that were written, sorted.
func (t *Transaction) ApplyData(ctx context.Context, data map[string]any) ([]string, error) {
	if t == nil || len(data) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var written []string
	for _, k := range keys {
		ok, err := t.SetAttribute(ctx, k, data[k])
		if err != nil {
			return written, err
		}
		if ok {
			written = append(written, k)
		}
	}
	return written, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if tm, err := time.Parse(layout, s); err == nil {
			return tm.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf(&time.Time{})
)

// convertTo coerces a decoded JSON value into typ through a JSON round-trip,
// with a date-only fallback for time columns.
func convertTo(typ reflect.Type, value any) (any, error) {
	if value == nil {
		return reflect.Zero(typ).Interface(), nil
	}
	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(typ) {
		return value, nil
	}
	if s, ok := value.(string); ok {
		switch typ {
		case timeType:
			return parseTime(s)
		case timePtrType:
			if strings.TrimSpace(s) == "" {
				return (*time.Time)(nil), nil
			}
			tm, err := parseTime(s)
			if err != nil {
				return nil, err
			}
			return &tm, nil
		}
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	out := reflect.New(typ)
	if err := json.Unmarshal(raw, out.Interface()); err != nil {
		return nil, err
	}
	return out.Elem().Interface(), nil
}

// IsBlank treats nil, zero values, whitespace-only strings and empty
// collections (including JSON null, [] and {}) as missing.
func IsBlank(v any) bool {
	if v == nil {
		return true
	}
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return blankJSON(x)
	case json.RawMessage:
		return blankJSON(x)
	case *time.Time:
		return x == nil || x.IsZero()
	case time.Time:
		return x.IsZero()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsBlank(rv.Elem().Interface())
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return blankJSON(rv.Bytes())
		}
		return rv.Len() == 0
	case reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.String:
		return strings.TrimSpace(rv.String()) == ""
	}
	return rv.IsZero()
}

func blankJSON(b []byte) bool {
	t := bytes.TrimSpace(b)
	if len(t) == 0 {
		return true
	}
	switch string(t) {
	case "null", "[]", "{}", `""`:
		return true
	}
	return false
}
