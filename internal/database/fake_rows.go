package database

import (
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FakeRow 以給定的欄位值模擬單筆 Scan
type FakeRow struct {
	Values []any
	Err    error
}

func (r FakeRow) Scan(dest ...any) error {
	if r.Err != nil {
		return r.Err
	}
	return scanInto(r.Values, dest)
}

// FakeRows 模擬多筆查詢結果
type FakeRows struct {
	Data    [][]any
	ScanErr error
	Error   error
	idx     int
	cur     []any
}

func (r *FakeRows) Close()                                       {}
func (r *FakeRows) Err() error                                   { return r.Error }
func (r *FakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *FakeRows) RawValues() [][]byte                          { return nil }
func (r *FakeRows) Conn() *pgx.Conn                              { return nil }
func (r *FakeRows) Values() ([]any, error)                       { return r.cur, nil }

func (r *FakeRows) Next() bool {
	if r.idx >= len(r.Data) {
		return false
	}
	r.cur = r.Data[r.idx]
	r.idx++
	return true
}

func (r *FakeRows) Scan(dest ...any) error {
	if r.ScanErr != nil {
		return r.ScanErr
	}
	return scanInto(r.cur, dest)
}

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d destinations", len(values), len(dest))
	}
	for i := range dest {
		if err := assign(dest[i], values[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, v any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination must be a non-nil pointer, got %T", dest)
	}
	target := dv.Elem()
	if v == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	sv := reflect.ValueOf(v)
	switch {
	case sv.Type().AssignableTo(target.Type()):
		target.Set(sv)
	case target.Kind() == reflect.Pointer && sv.Type().AssignableTo(target.Type().Elem()):
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(sv)
		target.Set(p)
	case sv.Kind() == target.Kind() && sv.Type().ConvertibleTo(target.Type()):
		target.Set(sv.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %s", v, target.Type())
	}
	return nil
}
