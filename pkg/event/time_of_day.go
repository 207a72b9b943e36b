package event

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// displayLayout renders times as "9:05 AM".
const displayLayout = "3:04 PM"

const minutesPerDay = 24 * 60

// TimeOfDay is a wall-clock time stored as minutes since midnight. The zero
// value means "no time set".
type TimeOfDay struct {
	minutes int
	valid   bool
}

func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: time %02d:%02d out of range", ErrInvalidEvent, hour, minute)
	}
	return TimeOfDay{minutes: hour*60 + minute, valid: true}, nil
}

// TimeOfDayFrom takes the hour and minute of t in its own location.
func TimeOfDayFrom(t time.Time) TimeOfDay {
	return TimeOfDay{minutes: t.Hour()*60 + t.Minute(), valid: true}
}

// ParseTimeOfDay reads the "h:mm AM/PM" display form. An empty string is an
// unset time. Letter case and surrounding spaces are ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return TimeOfDay{}, nil
	}
	t, err := time.Parse(displayLayout, s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: time %q must look like 9:30 AM", ErrInvalidEvent, s)
	}
	return TimeOfDayFrom(t), nil
}

func (t TimeOfDay) IsSet() bool {
	return t.valid
}

// Minutes since midnight; 0 when unset.
func (t TimeOfDay) Minutes() int {
	return t.minutes
}

func (t TimeOfDay) String() string {
	if !t.valid {
		return ""
	}
	return time.Date(2000, time.January, 1, t.minutes/60, t.minutes%60, 0, 0, time.UTC).Format(displayLayout)
}

func (t TimeOfDay) Value() (driver.Value, error) {
	if !t.valid {
		return nil, nil
	}
	return int64(t.minutes), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case int64:
		if v < 0 || v >= minutesPerDay {
			return fmt.Errorf("time of day %d out of range", v)
		}
		*t = TimeOfDay{minutes: int(v), valid: true}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = TimeOfDay{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
