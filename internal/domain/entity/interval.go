package entity

import (
	"fmt"
	"time"
)

// ShiftDirection tells ShiftByMinutes which way to move an interval
type ShiftDirection int

const (
	ShiftForward ShiftDirection = iota
	ShiftBackward
)

// Interval is a closed wall-clock interval in a zone.
// Instances may be invalid (start after end); callers check IsValid and discard those.
type Interval struct {
	Start LocalDateTime
	End   LocalDateTime
	Zone  *time.Location
}

// NewInterval creates an interval, a nil zone means UTC
func NewInterval(start, end LocalDateTime, zone *time.Location) Interval {
	return Interval{Start: start, End: end, Zone: zoneOrUTC(zone)}
}

// IsValid reports start <= end
func (i Interval) IsValid() bool {
	return !i.Start.After(i.End)
}

// ShiftByMinutes moves both ends of the wall clock
func (i Interval) ShiftByMinutes(minutes int, direction ShiftDirection) Interval {
	if direction == ShiftBackward {
		minutes = -minutes
	}
	return Interval{
		Start: i.Start.PlusMinutes(minutes),
		End:   i.End.PlusMinutes(minutes),
		Zone:  i.Zone,
	}
}

func (i Interval) PlusMinutes(minutes int) Interval {
	return i.ShiftByMinutes(minutes, ShiftForward)
}

func (i Interval) MinusMinutes(minutes int) Interval {
	return i.ShiftByMinutes(minutes, ShiftBackward)
}

// ToZone converts both ends to the wall clock of zone at the same instants
func (i Interval) ToZone(zone *time.Location) Interval {
	zone = zoneOrUTC(zone)
	return Interval{
		Start: i.Start.WithZoneSameInstant(i.Zone, zone),
		End:   i.End.WithZoneSameInstant(i.Zone, zone),
		Zone:  zone,
	}
}

// Equals compares ends and zone id
func (i Interval) Equals(o Interval) bool {
	return i.Start.Equal(o.Start) && i.End.Equal(o.End) && i.ZoneID() == o.ZoneID()
}

// ZoneID returns the IANA id of the interval zone
func (i Interval) ZoneID() string {
	return zoneOrUTC(i.Zone).String()
}

func (i Interval) String() string {
	return fmt.Sprintf("Interval(%s - %s, %s)", i.Start, i.End, i.ZoneID())
}

// IsFullDay reports an opening window covering the whole day: open at or before 00:00, close at or after 23:59
func (i Interval) IsFullDay() bool {
	return i.Start.SecondsOfDay() <= 0 && i.End.SecondsOfDay() >= (23*60+59)*60
}
