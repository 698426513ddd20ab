package apillon

import (
	"net/url"
	"reflect"
	"strconv"
	"strings"
)

// Serializers maps a query key to the function that renders its value.
// Keys without an entry use the default coercion: strings as-is, numbers in
// base 10 (enums by ordinal), booleans as true/false.
type Serializers map[string]func(v any) string

// Pagination holds the list parameters shared by every list endpoint.
type Pagination struct {
	Search  *string `query:"search"`
	Page    *int    `query:"page"`
	Limit   *int    `query:"limit"`
	OrderBy *string `query:"orderBy"`
	Desc    *bool   `query:"desc"`
}

// Ptr returns a pointer to v. Filters use pointers to tell "unset" from zero.
func Ptr[T any](v T) *T {
	return &v
}

// BuildURL appends the fields of filter to path as a query string.
//
// filter must be a struct or a pointer to one (nil means no query). Fields are
// emitted in declaration order, embedded structs are flattened in place, and
// nil pointers are omitted, so equal filters always produce the same URL.
func BuildURL(path string, filter any, serializers Serializers) string {
	params := QueryParams(filter, serializers)
	if len(params) == 0 {
		return path
	}

	var sb strings.Builder
	sb.WriteString(path)
	if strings.Contains(path, "?") {
		sb.WriteByte('&')
	} else {
		sb.WriteByte('?')
	}
	for i, p := range params {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(p[0]))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p[1]))
	}
	return sb.String()
}

// QueryParams returns the ordered key/value pairs BuildURL would emit.
func QueryParams(filter any, serializers Serializers) [][2]string {
	if filter == nil {
		return nil
	}
	v := reflect.ValueOf(filter)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var params [][2]string
	collectParams(v, serializers, &params)
	return params
}

func collectParams(v reflect.Value, serializers Serializers, params *[][2]string) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		fv := v.Field(i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			collectParams(fv, serializers, params)
			continue
		}
		if f.Anonymous && f.Type.Kind() == reflect.Pointer && f.Type.Elem().Kind() == reflect.Struct {
			if !fv.IsNil() {
				collectParams(fv.Elem(), serializers, params)
			}
			continue
		}
		if !f.IsExported() {
			continue
		}

		key := f.Tag.Get("query")
		if key == "-" {
			continue
		}
		if key == "" {
			key = f.Name
		}

		if fv.Kind() == reflect.Pointer || fv.Kind() == reflect.Interface {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}

		var s string
		if fn, ok := serializers[key]; ok {
			s = fn(fv.Interface())
		} else {
			s = defaultSerialize(fv)
		}
		*params = append(*params, [2]string{key, s})
	}
}

// defaultSerialize coerces a scalar to its string form. Named integer types
// (enums) render their ordinal even when they implement fmt.Stringer.
func defaultSerialize(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return ""
	}
}

// EnumName is a Serializers entry that renders a value by its String method.
func EnumName(v any) string {
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}
