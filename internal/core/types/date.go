package types

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical wire and storage format of a Date.
const DateLayout = "2006-01-02"

// Layouts accepted by ParseDate, tried in order.
var dateLayouts = []string{
	DateLayout,
	"2006/01/02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"20060102",
}

// Date is a calendar day normalized to UTC midnight.
type Date struct {
	time.Time
}

// NewDate builds a Date from its parts.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// NormalizeDate strips clock and zone from t, keeping the calendar day as seen in t's location.
func NormalizeDate(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// Today returns the current UTC calendar day.
func Today() Date {
	return NormalizeDate(time.Now().UTC())
}

// ParseDate parses s in one of the accepted layouts.
//
// Parsing is strict: the value re-formatted in the matched layout must equal the input,
// so overflowing days such as 2024-02-30 are rejected instead of rolled forward.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		if t.Format(layout) != s {
			continue
		}
		return NormalizeDate(t), nil
	}
	return Date{}, fmt.Errorf("invalid date %q", s)
}

// MustParseDate parses s, panics on error. Use only for constants and tests.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Prev returns the previous calendar day.
func (d Date) Prev() Date { return Date{d.AddDate(0, 0, -1)} }

// Next returns the following calendar day.
func (d Date) Next() Date { return Date{d.AddDate(0, 0, 1)} }

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// DaysBetween lists every day from..to inclusive. Empty when to is before from.
func DaysBetween(from, to Date) []Date {
	var days []Date
	for day := from; !day.After(to); day = day.Next() {
		days = append(days, day)
	}
	return days
}

// MarshalJSON encodes the date as "2006-01-02", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts any layout understood by ParseDate.
func (d *Date) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan implements sql.Scanner for DATE columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NormalizeDate(v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("unsupported type for Date: %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}
