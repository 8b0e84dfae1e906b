package stripe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonObject is the raw form every decoder works on. Unknown keys are
// tolerated; the helpers below enforce presence and primitive types for the
// keys a variant declares.
type jsonObject map[string]json.RawMessage

// FieldError reports a structural problem with a single field of a known
// event variant.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q %s", e.Field, e.Reason)
}

func fieldErr(field, reason string) *FieldError {
	return &FieldError{Field: field, Reason: reason}
}

func decodeObject(raw json.RawMessage) (jsonObject, error) {
	var o jsonObject
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, err
	}
	return o, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (o jsonObject) requiredString(field string) (string, error) {
	raw, ok := o[field]
	if !ok {
		return "", fieldErr(field, "is required")
	}
	if isNull(raw) {
		return "", fieldErr(field, "must not be null")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fieldErr(field, "must be a string")
	}
	return s, nil
}

func (o jsonObject) optionalString(field string) (*string, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fieldErr(field, "must be a string")
	}
	return &s, nil
}

func (o jsonObject) requiredInt(field string) (int64, error) {
	raw, ok := o[field]
	if !ok {
		return 0, fieldErr(field, "is required")
	}
	if isNull(raw) {
		return 0, fieldErr(field, "must not be null")
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fieldErr(field, "must be an integer")
	}
	return n, nil
}

func (o jsonObject) optionalInt(field string) (*int64, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fieldErr(field, "must be an integer")
	}
	return &n, nil
}

// minorUnits decodes a required monetary amount. Amounts are integer minor
// units and never negative.
func (o jsonObject) minorUnits(field string) (int64, error) {
	n, err := o.requiredInt(field)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fieldErr(field, "must not be negative")
	}
	return n, nil
}

func (o jsonObject) optionalMinorUnits(field string) (*int64, error) {
	n, err := o.optionalInt(field)
	if err != nil || n == nil {
		return nil, err
	}
	if *n < 0 {
		return nil, fieldErr(field, "must not be negative")
	}
	return n, nil
}

func (o jsonObject) requiredBool(field string) (bool, error) {
	raw, ok := o[field]
	if !ok {
		return false, fieldErr(field, "is required")
	}
	if isNull(raw) {
		return false, fieldErr(field, "must not be null")
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, fieldErr(field, "must be a boolean")
	}
	return b, nil
}

func (o jsonObject) optionalBool(field string) (*bool, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, fieldErr(field, "must be a boolean")
	}
	return &b, nil
}

func (o jsonObject) requiredStringSlice(field string) ([]string, error) {
	raw, ok := o[field]
	if !ok {
		return nil, fieldErr(field, "is required")
	}
	if isNull(raw) {
		return nil, fieldErr(field, "must not be null")
	}
	var s []string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fieldErr(field, "must be an array of strings")
	}
	return s, nil
}

func (o jsonObject) optionalStringMap(field string) (map[string]string, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fieldErr(field, "must be a string map")
	}
	return m, nil
}

func (o jsonObject) optionalBoolMap(field string) (map[string]bool, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var m map[string]bool
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fieldErr(field, "must be a boolean map")
	}
	return m, nil
}

func (o jsonObject) requiredIntMap(field string) (map[string]int64, error) {
	raw, ok := o[field]
	if !ok {
		return nil, fieldErr(field, "is required")
	}
	if isNull(raw) {
		return nil, fieldErr(field, "must not be null")
	}
	var m map[string]int64
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fieldErr(field, "must be an integer map")
	}
	return m, nil
}

func (o jsonObject) requiredAnyMap(field string) (map[string]any, error) {
	raw, ok := o[field]
	if !ok {
		return nil, fieldErr(field, "is required")
	}
	if isNull(raw) {
		return nil, fieldErr(field, "must not be null")
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fieldErr(field, "must be an object")
	}
	return m, nil
}

func (o jsonObject) optionalAnyMap(field string) (map[string]any, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fieldErr(field, "must be an object")
	}
	return m, nil
}

func (o jsonObject) optionalStringMapSlice(field string) ([]map[string]string, error) {
	raw, ok := o[field]
	if !ok || isNull(raw) {
		return nil, nil
	}
	var s []map[string]string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fieldErr(field, "must be an array of string maps")
	}
	return s, nil
}

func (o jsonObject) currency(field string) (Currency, error) {
	s, err := o.requiredString(field)
	if err != nil {
		return "", err
	}
	c := Currency(s)
	if !c.Supported() {
		return "", fieldErr(field, fmt.Sprintf("has unsupported currency %q", s))
	}
	return c, nil
}
