package search

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is the free-form JSONB object stored with each document.
type Metadata map[string]interface{}

// Value implements the driver.Valuer interface for database storage
func (m Metadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface. NULL scans to an empty map.
func (m *Metadata) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = Metadata{}
		return nil
	case []byte:
		return m.unmarshal(v)
	case string:
		return m.unmarshal([]byte(v))
	default:
		return fmt.Errorf("metadata: unsupported scan type %T", value)
	}
}

func (m *Metadata) unmarshal(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*m = Metadata{}
		return nil
	}
	return json.Unmarshal(b, (*map[string]interface{})(m))
}
