package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawRecord is one untyped row yielded by a SourceReader.
// Keys are source column names; values are whatever the backend produced.
type RawRecord map[string]any

// Has reports whether the key is present with a non-nil value.
func (r RawRecord) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// String returns the value as a string pointer.
// Absent or nil values yield nil. Numbers are formatted in base 10.
func (r RawRecord) String(key string) (*string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, nil
	}
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case []byte:
		s = string(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case int:
		s = strconv.Itoa(val)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return nil, fmt.Errorf("%w: field %q has type %T", ErrDecode, key, v)
	}
	return &s, nil
}

// Int64 returns the value as an int64. Absent or nil values yield 0.
// Numeric strings are parsed; anything else is a decode error.
func (r RawRecord) Int64(key string) (int64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, nil
	}
	switch val := v.(type) {
	case int64:
		return val, nil
	case int:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case float64:
		if val != math.Trunc(val) || val >= math.MaxInt64 || val < math.MinInt64 {
			return 0, fmt.Errorf("%w: field %q is not integral: %v", ErrDecode, key, val)
		}
		return int64(val), nil
	case string:
		return parseInt64(key, val)
	case []byte:
		return parseInt64(key, string(val))
	default:
		return 0, fmt.Errorf("%w: field %q has type %T", ErrDecode, key, v)
	}
}

// Int returns the value as an int, rejecting values outside the 32-bit range.
func (r RawRecord) Int(key string) (int, error) {
	n, err := r.Int64(key)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, fmt.Errorf("%w: field %q out of range: %d", ErrDecode, key, n)
	}
	return int(n), nil
}

func parseInt64(key, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: field %q: %v", ErrDecode, key, err)
	}
	return n, nil
}

// Raw record keys shared by every SourceReader.
const (
	FieldID          = "_id"
	FieldDisplayName = "display_name"
	FieldNumber      = "number"
	FieldAddress     = "address"
	FieldBody        = "body"
	FieldDate        = "date"
	FieldType        = "type"
	FieldDuration    = "duration"
	FieldTitle       = "title"
	FieldDTStart     = "dtstart"
	FieldDTEnd       = "dtend"
)

// Contact is a normalised address book entry.
type Contact struct {
	ID     string   `json:"id"`
	Name   *string  `json:"name"`
	Phones []string `json:"phones"`
}

// Message is a normalised text message.
type Message struct {
	Address *string `json:"address"`
	Body    *string `json:"body"`
	Date    int64   `json:"date"`
	Type    int     `json:"type"`
}

// CallEvent is a normalised call history entry.
type CallEvent struct {
	Number   *string `json:"number"`
	Date     int64   `json:"date"`
	Duration int64   `json:"duration"`
	Type     int     `json:"type"`
}

// CalendarEvent is a normalised calendar entry.
type CalendarEvent struct {
	ID      int64   `json:"id"`
	Title   *string `json:"title"`
	DTStart int64   `json:"dtstart"`
	DTEnd   int64   `json:"dtend"`
}

// ContactPhoneRow is the flattened contact shape served by live queries:
// one row per phone number, or one row with a null phone.
type ContactPhoneRow struct {
	ID    string  `json:"id"`
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// FlattenContacts expands contacts into one row per phone number.
func FlattenContacts(contacts []Contact) []ContactPhoneRow {
	rows := make([]ContactPhoneRow, 0, len(contacts))
	for _, c := range contacts {
		if len(c.Phones) == 0 {
			rows = append(rows, ContactPhoneRow{ID: c.ID, Name: c.Name})
			continue
		}
		for _, phone := range c.Phones {
			p := phone
			rows = append(rows, ContactPhoneRow{ID: c.ID, Name: c.Name, Phone: &p})
		}
	}
	return rows
}
