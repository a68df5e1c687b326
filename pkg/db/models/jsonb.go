package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

func jsonbValue(v any) (driver.Value, error) {
	return json.Marshal(v)
}

func jsonbScan(src, dest any) error {
	switch value := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(value, dest)
	case string:
		return json.Unmarshal([]byte(value), dest)
	default:
		return fmt.Errorf("models: cannot scan %T into %T", src, dest)
	}
}
