package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FlexTime is a timestamp field that may arrive in any of the shapes the
// reservation data has accumulated over time: a raw millisecond number, a
// structured {seconds, nanoseconds} server value, or a SQL timestamp. All
// shapes normalize to epoch milliseconds; the zero value means absent.
type FlexTime struct {
	millis int64
}

// MillisTime builds a FlexTime from epoch milliseconds.
func MillisTime(ms int64) FlexTime {
	return FlexTime{millis: ms}
}

// Millis returns the normalized epoch-millisecond value, 0 if absent.
func (t FlexTime) Millis() int64 {
	return t.millis
}

// IsZero reports whether the timestamp is absent.
func (t FlexTime) IsZero() bool {
	return t.millis == 0
}

// Time converts to time.Time; the zero time if absent.
func (t FlexTime) Time() time.Time {
	if t.millis == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.millis).UTC()
}

func (t FlexTime) String() string {
	if t.millis == 0 {
		return "absent"
	}
	return strconv.FormatInt(t.millis, 10)
}

// Scan implements sql.Scanner. Accepts NULL, a timestamp column, or a raw
// millisecond bigint (legacy write path).
func (t *FlexTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.millis = 0
		return nil
	case time.Time:
		t.millis = v.UnixMilli()
		return nil
	case int64:
		t.millis = v
		return nil
	case float64:
		t.millis = int64(v)
		return nil
	case []byte:
		ms, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("flextime: cannot parse %q: %w", string(v), err)
		}
		t.millis = ms
		return nil
	default:
		return fmt.Errorf("flextime: unsupported scan type %T", src)
	}
}

// Value implements driver.Valuer, emitting the raw millisecond form.
func (t FlexTime) Value() (driver.Value, error) {
	if t.millis == 0 {
		return nil, nil
	}
	return t.millis, nil
}

// structuredTime is the server-generated JSON shape.
type structuredTime struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds *int64 `json:"nanoseconds"`
}

// UnmarshalJSON accepts either a raw millisecond number or a structured
// seconds/nanoseconds object.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		t.millis = 0
		return nil
	}

	var ms json.Number
	if err := json.Unmarshal(data, &ms); err == nil {
		f, err := ms.Float64()
		if err != nil {
			return fmt.Errorf("flextime: bad number %q: %w", ms, err)
		}
		t.millis = int64(f)
		return nil
	}

	var st structuredTime
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("flextime: unrecognized timestamp shape: %w", err)
	}
	if st.Seconds == nil {
		t.millis = 0
		return nil
	}
	t.millis = *st.Seconds * 1000
	if st.Nanoseconds != nil {
		t.millis += *st.Nanoseconds / int64(time.Millisecond)
	}
	return nil
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.millis == 0 {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(t.millis, 10)), nil
}
