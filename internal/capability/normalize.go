package capability

import (
	"fmt"
	"reflect"
	"strings"
)

// Normalize converts an arbitrary capability result into a transport-safe
// tree of primitives, string-keyed maps and slices. It is total: unknown
// shapes degrade to their string representation rather than erroring, and
// normalizing an already-normalized value returns an equal value.
func Normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		[]byte:
		return val
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())

	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Normalize(iter.Value().Interface())
		}
		return out

	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Normalize(rv.Index(i).Interface())
		}
		return out

	case reflect.Struct:
		if fields := structFields(rv); fields != nil {
			return fields
		}
		return fmt.Sprintf("%v", v)

	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.Interface()

	default:
		return fmt.Sprintf("%v", v)
	}
}

// structFields maps a struct's exported fields, honoring json tags the way
// the transport layer would. Returns nil for structs with no exported
// fields so the caller can fall back to a string rendering.
func structFields(rv reflect.Value) map[string]any {
	rt := rv.Type()
	out := make(map[string]any)
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = Normalize(rv.Field(i).Interface())
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
