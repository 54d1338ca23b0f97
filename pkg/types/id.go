package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ID is a database identifier that decodes from either a JSON number or a
// numeric string, since browser clients send both.
type ID int64

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	parsed, ok, err := parseIDToken(trimmed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("id must not be empty")
	}
	*id = ID(parsed)
	return nil
}

// Int64 returns the raw identifier.
func (id ID) Int64() int64 {
	return int64(id)
}

// ParseID parses a path parameter into a positive identifier.
func ParseID(raw string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return value, nil
}

// NullableID tracks whether an identifier was explicitly present in JSON.
// Explicit null and the empty string both decode to a present, nil value.
type NullableID struct {
	Valid bool
	Value *int64
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullableID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	parsed, ok, err := parseIDToken(trimmed)
	if err != nil {
		return err
	}
	n.Valid = true
	if !ok {
		n.Value = nil
		return nil
	}
	n.Value = &parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(*n.Value, 10)), nil
}

// Ptr returns the identifier or nil.
func (n NullableID) Ptr() *int64 {
	if n.Value == nil {
		return nil
	}
	v := *n.Value
	return &v
}

// NewNullableID builds a present NullableID from a pointer.
func NewNullableID(v *int64) NullableID {
	if v == nil {
		return NullableID{Valid: true}
	}
	copy := *v
	return NullableID{Valid: true, Value: &copy}
}

func parseIDToken(data []byte) (int64, bool, error) {
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, false, err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			return 0, false, nil
		}
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("invalid id %q", raw)
	}
	if value <= 0 {
		return 0, false, fmt.Errorf("id must be positive, got %d", value)
	}
	return value, true, nil
}
