package types

import (
	"bytes"
	"encoding/json"
	"errors"
)

// NullableAny holds an arbitrary JSON value that may be null. Object fields
// that reference other objects (tenant, region, parent) arrive either as a
// nested document or as null; NullableAny keeps the raw form either way.
type NullableAny struct {
	value json.RawMessage
	valid bool
}

func (na NullableAny) IsNil() bool {
	return !na.valid
}

// Set stores value as raw JSON. Raw bytes are validated, everything else is
// marshaled.
func (na *NullableAny) Set(value any) error {
	var raw json.RawMessage

	switch v := value.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			na.value = nil
			na.valid = false
			return errors.New("value is not valid JSON")
		}
		raw = v
	case []byte:
		if !json.Valid(v) {
			na.value = nil
			na.valid = false
			return errors.New("value is not valid JSON")
		}
		raw = v
	default:
		marshaled, err := json.Marshal(value)
		if err != nil {
			na.value = nil
			na.valid = false
			return err
		}
		raw = marshaled
	}

	na.value = raw
	na.valid = true
	return nil
}

// Get decodes the stored value into a generic Go value, or nil when null.
func (na NullableAny) Get() any {
	if na.valid {
		var v any
		if err := json.Unmarshal(na.value, &v); err != nil {
			return nil
		}
		return v
	}
	return nil
}

// GetAs decodes the stored value into v.
func (na NullableAny) GetAs(v any) error {
	if na.valid {
		return json.Unmarshal(na.value, v)
	}
	return errors.New("value is not set")
}

func (na NullableAny) Equals(other NullableAny) bool {
	if na.valid && other.valid {
		return bytes.Equal(na.value, other.value)
	}
	return na.valid == other.valid
}

// implement json.Marshaler interface
func (na NullableAny) MarshalJSON() ([]byte, error) {
	if na.valid {
		return na.value, nil
	}
	return json.Marshal(nil)
}

func (na *NullableAny) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		na.value = nil
		na.valid = false
		return nil
	}
	if !json.Valid(data) {
		na.value = nil
		na.valid = false
		return errors.New("invalid JSON")
	}
	na.value = data
	na.valid = true
	return nil
}

func NullableAnyFrom(value any) (NullableAny, error) {
	var na NullableAny
	if err := na.Set(value); err != nil {
		return NullableAny{}, err
	}
	return na, nil
}

func NilAny() NullableAny {
	return NullableAny{value: nil, valid: false}
}

var _ json.Marshaler = NullableAny{}
var _ json.Unmarshaler = &NullableAny{}
var _ Nullable = &NullableAny{}
