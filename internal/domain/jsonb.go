package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// BlockList is the analysis_blocks column type. It implements sql.Scanner
// and driver.Valuer so the block batch round-trips through a single
// PostgreSQL JSONB column.
type BlockList []AnalysisBlock

// Scan implements the sql.Scanner interface.
func (b *BlockList) Scan(value any) error {
	if value == nil {
		*b = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return errors.New("unsupported type for BlockList")
	}

	if len(data) == 0 {
		*b = BlockList{}
		return nil
	}

	return json.Unmarshal(data, b)
}

// Value implements the driver.Valuer interface.
func (b BlockList) Value() (driver.Value, error) {
	if len(b) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(b)
}
