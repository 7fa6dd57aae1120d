package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	// Airport zones must resolve on hosts without a zoneinfo database
	_ "time/tzdata"
)

// Layouts for wall-clock values
const (
	LOCAL_DATE_LAYOUT          = "2006-01-02"
	LOCAL_DATE_TIME_LAYOUT     = "2006-01-02T15:04"
	LOCAL_DATE_TIME_SEC_LAYOUT = "2006-01-02T15:04:05"
	LOCAL_TIME_LAYOUT          = "15:04"
)

// LocalDateTime is a wall-clock date and time without a zone.
// The value is stored as a UTC time.Time so arithmetic never crosses DST boundaries.
type LocalDateTime struct {
	t time.Time
}

// LocalDate is a calendar date without a zone
type LocalDate struct {
	t time.Time
}

// NewLocalDateTime creates a wall-clock date-time
func NewLocalDateTime(year int, month time.Month, day, hour, minute int) LocalDateTime {
	return LocalDateTime{t: time.Date(year, month, day, hour, minute, 0, 0, time.UTC)}
}

// LocalDateTimeOf takes the wall clock of t in its own location
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

// ParseLocalDateTime accepts yyyy-MM-dd['T'][' ']HH:mm[:ss]
func ParseLocalDateTime(value string) (LocalDateTime, error) {
	normalized := strings.Replace(strings.TrimSpace(value), " ", "T", 1)
	for _, layout := range []string{LOCAL_DATE_TIME_LAYOUT, LOCAL_DATE_TIME_SEC_LAYOUT} {
		if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return LocalDateTime{t: t}, nil
		}
	}
	return LocalDateTime{}, fmt.Errorf("invalid local date-time: %q", value)
}

// AtZone resolves the wall clock to an instant in zone
func (l LocalDateTime) AtZone(zone *time.Location) time.Time {
	return time.Date(l.t.Year(), l.t.Month(), l.t.Day(), l.t.Hour(), l.t.Minute(), l.t.Second(), l.t.Nanosecond(), zoneOrUTC(zone))
}

// WithZoneSameInstant converts a wall clock in from to the wall clock in to
func (l LocalDateTime) WithZoneSameInstant(from, to *time.Location) LocalDateTime {
	return LocalDateTimeOf(l.AtZone(from).In(zoneOrUTC(to)))
}

func (l LocalDateTime) PlusMinutes(minutes int) LocalDateTime {
	return LocalDateTime{t: l.t.Add(time.Duration(minutes) * time.Minute)}
}

func (l LocalDateTime) MinusMinutes(minutes int) LocalDateTime {
	return l.PlusMinutes(-minutes)
}

func (l LocalDateTime) Before(o LocalDateTime) bool { return l.t.Before(o.t) }
func (l LocalDateTime) After(o LocalDateTime) bool  { return l.t.After(o.t) }
func (l LocalDateTime) Equal(o LocalDateTime) bool  { return l.t.Equal(o.t) }
func (l LocalDateTime) IsZero() bool                { return l.t.IsZero() }

// Date returns the calendar date part
func (l LocalDateTime) Date() LocalDate {
	return LocalDate{t: time.Date(l.t.Year(), l.t.Month(), l.t.Day(), 0, 0, 0, 0, time.UTC)}
}

// SecondsOfDay returns the time-of-day part in seconds since midnight
func (l LocalDateTime) SecondsOfDay() int {
	return l.t.Hour()*3600 + l.t.Minute()*60 + l.t.Second()
}

// WithDate keeps the time of day and replaces the date
func (l LocalDateTime) WithDate(d LocalDate) LocalDateTime {
	return LocalDateTime{t: time.Date(d.t.Year(), d.t.Month(), d.t.Day(), l.t.Hour(), l.t.Minute(), l.t.Second(), l.t.Nanosecond(), time.UTC)}
}

// TimeString renders HH:mm
func (l LocalDateTime) TimeString() string {
	return l.t.Format(LOCAL_TIME_LAYOUT)
}

// String renders yyyy-MM-ddTHH:mm, adding seconds only when present
func (l LocalDateTime) String() string {
	if l.t.Second() != 0 {
		return l.t.Format(LOCAL_DATE_TIME_SEC_LAYOUT)
	}
	return l.t.Format(LOCAL_DATE_TIME_LAYOUT)
}

func (l LocalDateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *LocalDateTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// NewLocalDate creates a calendar date
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// LocalDateOf takes the calendar date of t in its own location
func LocalDateOf(t time.Time) LocalDate {
	return NewLocalDate(t.Year(), t.Month(), t.Day())
}

// ParseLocalDate accepts yyyy-MM-dd optionally followed by a 'T' or ' ' separated time
func ParseLocalDate(value string) (LocalDate, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.ParseInLocation(LOCAL_DATE_LAYOUT, trimmed, time.UTC); err == nil {
		return LocalDate{t: t}, nil
	}
	dt, err := ParseLocalDateTime(trimmed)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid local date: %q", value)
	}
	return dt.Date(), nil
}

func (d LocalDate) PlusDays(days int) LocalDate {
	return LocalDate{t: d.t.AddDate(0, 0, days)}
}

func (d LocalDate) Before(o LocalDate) bool { return d.t.Before(o.t) }
func (d LocalDate) Equal(o LocalDate) bool  { return d.t.Equal(o.t) }

// AtTime combines the date with an HH:mm wall clock
func (d LocalDate) AtTime(hour, minute int) LocalDateTime {
	return LocalDateTime{t: time.Date(d.t.Year(), d.t.Month(), d.t.Day(), hour, minute, 0, 0, time.UTC)}
}

func (d LocalDate) String() string {
	return d.t.Format(LOCAL_DATE_LAYOUT)
}

func (d LocalDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LoadZone resolves an IANA zone id, falling back to UTC for empty or unknown ids
func LoadZone(id string) *time.Location {
	if id == "" {
		return time.UTC
	}
	zone, err := time.LoadLocation(id)
	if err != nil {
		return time.UTC
	}
	return zone
}

func zoneOrUTC(zone *time.Location) *time.Location {
	if zone == nil {
		return time.UTC
	}
	return zone
}
