package types

import (
	"encoding/json"
	"fmt"
)

// scanJSON decodes a jsonb column delivered as text or bytes.
func scanJSON(value any, dest any, name string) (bool, error) {
	var raw []byte
	switch v := value.(type) {
	case nil:
		return false, nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return false, fmt.Errorf("%s: unsupported scan type %T", name, value)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("%s: decode: %w", name, err)
	}
	return true, nil
}

// valueJSON encodes v as a JSON string so pgx sends it as text rather than bytea.
func valueJSON(v any, name string) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%s: encode: %w", name, err)
	}
	return string(raw), nil
}
