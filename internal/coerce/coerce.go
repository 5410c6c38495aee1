// Package coerce converts raw spreadsheet cell values into the types the
// import engine stores.
//
// These functions handle the messy reality of user-provided spreadsheet
// data: serial-encoded dates, multiple textual date formats, NaN sentinels
// for empty cells, and currency noise in numbers. Coercion never fails hard;
// callers that require strictness check the ok result.
package coerce

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// serialEpoch is the spreadsheet serial-date base. Spreadsheet engines count
// days from 1899-12-30 so that serial 60 lands on the (nonexistent)
// 1900-02-29 they inherited from Lotus 1-2-3.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Serial bounds accepted as dates: below 60 collides with the 1900 quirk,
// above 2958465 is past year 9999.
const (
	minSerial = 60
	maxSerial = 2958465
)

var (
	slashLayouts = []string{"1/2/2006", "01/02/2006", "1/2/06", "2006/01/02"}
	dashLayouts  = []string{"2006-01-02", "2-Jan-2006", "02-01-2006", "1-2-2006"}
)

// Date attempts to interpret a cell value as a calendar date.
//
// Order of attempts: an existing time.Time passes through (date part only);
// a float parses as a spreadsheet serial; a string containing "/" parses as
// month/day/year; a string containing "-" parses as year-month-day. When
// nothing applies, ok is false and callers needing strict dates must treat
// the value as malformed.
func Date(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return truncate(v), true
	case float64:
		return serialDate(v)
	case int:
		return serialDate(float64(v))
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return serialDate(f)
		}
		var layouts []string
		switch {
		case strings.Contains(s, "/"):
			layouts = slashLayouts
		case strings.Contains(s, "-"):
			layouts = dashLayouts
		default:
			return time.Time{}, false
		}
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return truncate(t), true
			}
		}
	}
	return time.Time{}, false
}

func serialDate(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	days := int(f)
	return serialEpoch.AddDate(0, 0, days), true
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Integer parses a whole number out of a cell, tolerating surrounding
// whitespace, thousands separators, and a decimal tail of zeros.
func Integer(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		if math.IsNaN(v) || v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	case string:
		s := strings.TrimSpace(v)
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

// Sanitize maps dataframe-style "not a number" sentinels to nil so that
// empty spreadsheet cells read as explicitly absent. Maps and slices are
// sanitized recursively.
func Sanitize(value any) any {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) {
			return nil
		}
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || strings.EqualFold(trimmed, "nan") || strings.EqualFold(trimmed, "n/a") {
			return nil
		}
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, elem := range v {
			out[k] = Sanitize(elem)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, elem := range v {
			out[i] = Sanitize(elem)
		}
		return out
	case nil:
		return nil
	default:
		return v
	}
}
