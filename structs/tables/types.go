package tables

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONStrings stores a string list as a JSON-encoded TEXT column, which is how
// list-valued fields are kept in the SQLite schema.
type JSONStrings []string

func (s JSONStrings) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (s *JSONStrings) Scan(src any) error {
	if src == nil {
		*s = JSONStrings{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for JSONStrings: %T", src)
	}

	if len(data) == 0 {
		*s = JSONStrings{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = out
	return nil
}
