package memstore

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"wellness/shared/constant"
	gDto "wellness/shared/dto"
	"wellness/shared/timezone"
)

// column finds the struct field tagged db:"name", including promoted metadata fields.
func column(v reflect.Value, name string) (reflect.Value, bool) {
	for _, f := range reflect.VisibleFields(v.Type()) {
		if f.Anonymous {
			continue
		}

		if tag, _, _ := strings.Cut(f.Tag.Get("db"), ","); tag == name {
			return v.FieldByIndex(f.Index), true
		}
	}

	return reflect.Value{}, false
}

func deref(v reflect.Value) (any, bool) {
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, false
		}

		v = v.Elem()
	}

	return v.Interface(), true
}

// compare orders a stored column against a filter or sort value. Dates stored as time.Time match
// the 2006-01-02 strings the filters carry.
func compare(stored, value any) int {
	if t, ok := stored.(time.Time); ok {
		switch other := value.(type) {
		case string:
			if len(other) == len(constant.DayFormat) {
				return cmp.Compare(t.Format(constant.DayFormat), other)
			}

			return cmp.Compare(t.Format(constant.DateFormat), other)
		case time.Time:
			return t.Compare(other)
		}
	}

	a, aNum := number(stored)
	b, bNum := number(value)

	if aNum && bNum {
		return cmp.Compare(a, b)
	}

	return cmp.Compare(fmt.Sprint(stored), fmt.Sprint(value))
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func matchFilter(row reflect.Value, f gDto.Filter) bool {
	field, ok := column(row, f.Field)
	if !ok {
		return false
	}

	stored, present := deref(field)

	switch f.Operator {
	case gDto.FilterIsNull:
		return !present
	case gDto.FilterIsNotNull:
		return present
	}

	if !present {
		return false
	}

	switch f.Operator {
	case gDto.FilterOperatorEq:
		return compare(stored, f.Value) == 0
	case gDto.FilterOperatorNotEq:
		return compare(stored, f.Value) != 0
	case gDto.FilterOperatorLessEq:
		return compare(stored, f.Value) <= 0
	case gDto.FilterOperatorGreaterEq:
		return compare(stored, f.Value) >= 0
	case gDto.FilterOperatorLike:
		return strings.Contains(strings.ToLower(fmt.Sprint(stored)), strings.ToLower(fmt.Sprint(f.Value)))
	case gDto.FilterOperatorIn:
		values := reflect.ValueOf(f.Value)
		if values.Kind() != reflect.Slice && values.Kind() != reflect.Array {
			return false
		}

		for i := range values.Len() {
			if compare(stored, values.Index(i).Interface()) == 0 {
				return true
			}
		}

		return false
	default:
		return false
	}
}

func matches(row any, group gDto.FilterGroup) bool {
	v := reflect.ValueOf(row)
	or := strings.EqualFold(group.Operator, gDto.FilterGroupOperatorOr)

	if len(group.Filters) == 0 {
		return true
	}

	for _, item := range group.Filters {
		var ok bool

		switch f := item.(type) {
		case gDto.Filter:
			ok = matchFilter(v, f)
		case gDto.FilterGroup:
			ok = matches(row, f)
		default:
			continue
		}

		if or && ok {
			return true
		}

		if !or && !ok {
			return false
		}
	}

	return !or
}

// list filters, sorts and pages rows the way the SQL repository does.
func list[T any](rows []T, params gDto.QueryParams, filter gDto.FilterGroup) []T {
	res := slices.DeleteFunc(slices.Clone(rows), func(row T) bool { return !matches(row, filter) })

	sortBy, sortDir := params.SortBy, params.SortDir
	if sortBy == "" {
		sortBy = constant.DefaultValueSortBy

		if sortDir == "" {
			sortDir = constant.DefaultValueSortDir
		}
	}

	desc := sortDir == gDto.SortDirDesc

	slices.SortStableFunc(res, func(a, b T) int {
		av, _ := column(reflect.ValueOf(a), sortBy)
		bv, _ := column(reflect.ValueOf(b), sortBy)

		x, _ := deref(av)
		y, _ := deref(bv)

		c := compare(x, y)
		if desc {
			return -c
		}

		return c
	})

	if params.Limit > 0 {
		page := max(params.Page, 1)
		start := min((page-1)*params.Limit, len(res))
		end := min(start+params.Limit, len(res))
		res = res[start:end]
	}

	return res
}

// assign writes value into the db column of row, converting the representations the update maps
// use (day strings, nil, plain values for pointer columns).
func assign(row reflect.Value, name string, value any) error {
	field, ok := column(row, name)
	if !ok {
		return fmt.Errorf("unknown column %s", name)
	}

	if value == nil {
		field.Set(reflect.Zero(field.Type()))

		return nil
	}

	if s, isString := value.(string); isString && field.Type() == reflect.TypeFor[time.Time]() {
		day, err := timezone.Parse(constant.DayFormat, s)
		if err != nil {
			return fmt.Errorf("column %s: %w", name, err)
		}

		value = day
	}

	v := reflect.ValueOf(value)

	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case v.Type().ConvertibleTo(field.Type()):
		field.Set(v.Convert(field.Type()))
	case field.Kind() == reflect.Pointer && v.Type().ConvertibleTo(field.Type().Elem()):
		ptr := reflect.New(field.Type().Elem())
		ptr.Elem().Set(v.Convert(field.Type().Elem()))
		field.Set(ptr)
	default:
		return fmt.Errorf("column %s: cannot assign %T", name, value)
	}

	return nil
}
