// Package utils holds conversions used when loading Go values into tables.
package utils

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	bytesType         = reflect.TypeOf([]byte(nil))
	stringerType      = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
	jsonMarshalerType = reflect.TypeOf((*json.Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
)

// StructToMap converts a struct, or a pointer to one, into a map keyed by the
// struct's JSON field names.
//
// The struct is marshaled to JSON and decoded back into a map, so `json`
// tags, `omitempty` and embedded structs behave exactly as they would for
// encoding/json. Numbers come back as json.Number, nested objects as
// map[string]any and arrays as []any. Top-level []byte fields and fields
// implementing fmt.Stringer (without their own JSON or text encoding) keep
// their original Go value.
//
// Example:
//
//	type Person struct {
//		First string `json:"First"`
//		Age   int    `json:"Age"`
//	}
//	m, err := StructToMap(Person{First: "Amanda", Age: 29})
//	// m == map[string]any{"First": "Amanda", "Age": json.Number("29")}
func StructToMap[T any](record T) (map[string]any, error) {
	val := reflect.ValueOf(record)
	if !val.IsValid() {
		return nil, fmt.Errorf("input record cannot be nil")
	}

	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, fmt.Errorf("input record cannot be a nil pointer to a struct")
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, fmt.Errorf("input record must be a struct or a pointer to a struct, got %s", val.Kind())
	}

	jsonBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("StructToMap: failed to marshal input record to JSON: %w", err)
	}

	var result map[string]any
	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("StructToMap: failed to unmarshal JSON to map[string]any: %w", err)
	}

	overlayRawFields(val, result)
	return result, nil
}

// overlayRawFields puts back the Go values of top-level fields that JSON would
// otherwise flatten: []byte (base64) and plain fmt.Stringer values. Only keys
// the encoder emitted are touched, so omitempty still applies.
func overlayRawFields(val reflect.Value, result map[string]any) {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Anonymous {
			continue
		}

		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			if tag == "-" {
				continue
			}
			if n, _, _ := strings.Cut(tag, ","); n != "" {
				name = n
			}
		}
		if _, ok := result[name]; !ok {
			continue
		}

		fv := val.Field(i)
		switch {
		case fv.Type() == bytesType:
			result[name] = fv.Interface()
		case fv.Type().Implements(stringerType) &&
			!fv.Type().Implements(jsonMarshalerType) &&
			!fv.Type().Implements(textMarshalerType):
			if (fv.Kind() == reflect.Ptr || fv.Kind() == reflect.Interface) && fv.IsNil() {
				continue
			}
			result[name] = fv.Interface()
		}
	}
}

// Stringify renders a value as the string a table cell would hold. Strings pass
// through, nil becomes "", numbers use their shortest exact form, and composite
// values (maps, slices, structs) are rendered as JSON.
func Stringify(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case json.Number:
		return val.String(), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", val), nil
	case uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case fmt.Stringer:
		return val.String(), nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("Stringify: failed to marshal %T: %w", v, err)
	}
	return string(b), nil
}
