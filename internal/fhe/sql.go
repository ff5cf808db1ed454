package fhe

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Value is stored as a JSON document so the handle and its viewer list
// travel together.
func (v Value) Value() (driver.Value, error) {
	return json.Marshal(v)
}

func (v *Value) Scan(src any) error {
	var b []byte
	switch s := src.(type) {
	case []byte:
		b = s
	case string:
		b = []byte(s)
	case nil:
		*v = Value{}
		return nil
	default:
		return fmt.Errorf("fhe: cannot scan %T into Value", src)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}
