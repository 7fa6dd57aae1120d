package entity

import (
	"time"
)

// AirportTimezone is airport master data used when the charter backend omits a zone
type AirportTimezone struct {
	ID          uint
	AirportCode string
	AirportName string
	CityCode    string
	CityName    string
	GmtTz       string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Location resolves the IANA zone of the airport, UTC when unknown
func (t *AirportTimezone) Location() *time.Location {
	if t == nil {
		return time.UTC
	}
	return LoadZone(t.TzName)
}
