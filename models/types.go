package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONB is a generic JSON column (jsonb on postgres, text on sqlite).
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// WeekSchedule maps a weekday name ("Monday") to an ordered list of
// working-hour ranges like "9:00 AM - 5:00 PM".
type WeekSchedule map[string][]string

func (w WeekSchedule) Value() (driver.Value, error) {
	return json.Marshal(w)
}

func (w *WeekSchedule) Scan(value interface{}) error {
	return scanJSON(value, w)
}

// TaxTotals maps a tax type ("HST") to an accumulated amount.
type TaxTotals map[string]float64

func (t TaxTotals) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TaxTotals) Scan(value interface{}) error {
	return scanJSON(value, t)
}

// TaxLine is one tax entry on a bill item.
type TaxLine struct {
	Type   string  `json:"type"`
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

type TaxLines []TaxLine

func (t TaxLines) Value() (driver.Value, error) {
	return json.Marshal(t)
}

func (t *TaxLines) Scan(value interface{}) error {
	return scanJSON(value, t)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	case nil:
		return nil
	default:
		return errors.New("unsupported type for JSON column")
	}
}
