package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for transfer dates.
const DateLayout = "02/01/2006"

// Date is a calendar date stored as a datetime column but exchanged over
// the API as a DD/MM/YYYY string.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day.
func NewDate(t time.Time) Date {
	year, month, day := t.Date()
	return Date{time.Date(year, month, day, 0, 0, 0, 0, t.Location())}
}

// Today returns the current date in UTC.
func Today() Date {
	return NewDate(time.Now().UTC())
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(DateLayout, *s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected DD/MM/YYYY: %w", *s, err)
	}
	*d = Date{t}
	return nil
}

// GormDataType stores Date as a plain datetime column.
func (Date) GormDataType() string {
	return "time"
}

// Value implements driver.Valuer so gorm stores the underlying time.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Scan implements sql.Scanner. The sqlite driver hands back strings,
// postgres hands back time.Time.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = Date{v}
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
}

func (d *Date) scanString(s string) error {
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			*d = Date{t}
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as Date", s)
}
