// Package fieldpath applies dotted-path field updates to json-tagged
// record structs without mutating the input. Every struct, pointer and
// slice along the path is cloned, so untouched siblings keep their
// identity and previously captured snapshots stay valid.
package fieldpath

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrUnknownField indicates a path segment that matches no field.
	ErrUnknownField = errors.New("fieldpath: unknown field")
	// ErrIndexOutOfRange indicates a numeric segment past a slice end.
	ErrIndexOutOfRange = errors.New("fieldpath: index out of range")
	// ErrBadValue indicates a value that cannot be assigned to the leaf.
	ErrBadValue = errors.New("fieldpath: incompatible value")
)

// Set returns a copy of rec with the field at path replaced by value.
// Path segments are json tag names (falling back to Go field names),
// e.g. "cessExpDuty.cenvat.date". Nil pointer sub-records along the
// path are materialised as zero records. rec itself is never modified.
func Set[T any](rec T, path string, value any) (T, error) {
	segs := strings.Split(path, ".")
	if path == "" || len(segs) == 0 {
		return rec, fmt.Errorf("%w: empty path", ErrUnknownField)
	}
	out, err := setValue(reflect.ValueOf(rec), segs, value)
	if err != nil {
		return rec, err
	}
	return out.Interface().(T), nil
}

func setValue(v reflect.Value, segs []string, value any) (reflect.Value, error) {
	if len(segs) == 0 {
		return assign(v.Type(), value)
	}

	switch v.Kind() {
	case reflect.Pointer:
		elemType := v.Type().Elem()
		var elem reflect.Value
		if v.IsNil() {
			elem = reflect.Zero(elemType)
		} else {
			elem = v.Elem()
		}
		inner, err := setValue(elem, segs, value)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(elemType)
		out.Elem().Set(inner)
		return out, nil

	case reflect.Struct:
		idx, ok := fieldIndex(v.Type(), segs[0])
		if !ok {
			return reflect.Value{}, fmt.Errorf("%w: %q in %s", ErrUnknownField, segs[0], v.Type())
		}
		clone := reflect.New(v.Type()).Elem()
		clone.Set(v)
		updated, err := setValue(v.Field(idx), segs[1:], value)
		if err != nil {
			return reflect.Value{}, err
		}
		clone.Field(idx).Set(updated)
		return clone, nil

	case reflect.Slice:
		i, err := strconv.Atoi(segs[0])
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q is not a slice index", ErrUnknownField, segs[0])
		}
		if i < 0 || i >= v.Len() {
			return reflect.Value{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, v.Len())
		}
		clone := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(clone, v)
		updated, err := setValue(v.Index(i), segs[1:], value)
		if err != nil {
			return reflect.Value{}, err
		}
		clone.Index(i).Set(updated)
		return clone, nil

	default:
		return reflect.Value{}, fmt.Errorf("%w: cannot descend into %s", ErrUnknownField, v.Kind())
	}
}

// fieldIndex resolves a path segment to an exported struct field,
// preferring the json tag name and falling back to the Go name.
func fieldIndex(t reflect.Type, seg string) (int, bool) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == seg {
			return i, true
		}
		if tag == "" && strings.EqualFold(f.Name, seg) {
			return i, true
		}
	}
	// Second pass: allow addressing a tagged field by its Go name.
	for i := 0; i < t.NumField(); i++ {
		if f := t.Field(i); f.IsExported() && strings.EqualFold(f.Name, seg) {
			return i, true
		}
	}
	return 0, false
}

// assign converts value to the leaf type, tolerating the loose typing
// of decoded JSON (float64 numbers, RFC3339 date strings, values for
// pointer-typed optional fields).
func assign(t reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	if t.Kind() == reflect.Pointer {
		inner, err := assign(t.Elem(), value)
		if err != nil {
			return reflect.Value{}, err
		}
		out := reflect.New(t.Elem())
		out.Elem().Set(inner)
		return out, nil
	}

	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Zero(t), nil
		}
		v = v.Elem()
	}

	if v.Type().AssignableTo(t) {
		return v, nil
	}

	if t == reflect.TypeOf(time.Time{}) && v.Kind() == reflect.String {
		parsed, err := parseTime(v.String())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %v", ErrBadValue, err)
		}
		return reflect.ValueOf(parsed), nil
	}

	if v.Type().ConvertibleTo(t) && compatibleKinds(v.Kind(), t.Kind()) {
		return v.Convert(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: %s into %s", ErrBadValue, v.Type(), t)
}

// compatibleKinds limits reflect conversions to numeric widening and
// string-kind renames; string<->number conversions silently produce
// garbage and must be rejected instead.
func compatibleKinds(from, to reflect.Kind) bool {
	if from == reflect.String || to == reflect.String {
		return from == reflect.String && to == reflect.String
	}
	return isNumeric(from) && isNumeric(to)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
