package utils

import (
	"math"

	"charter-concierge/internal/domain/entity"
)

// EARTH_RADIUS_KM is the mean earth radius used for great-circle distances
const EARTH_RADIUS_KM = 6371.0

// Distance returns the haversine distance between two locations in kilometers
func Distance(from, to entity.Location) float64 {
	f1 := toRadians(from.Latitude)
	l1 := toRadians(from.Longitude)
	f2 := toRadians(to.Latitude)
	l2 := toRadians(to.Longitude)

	df := f2 - f1
	dl := l2 - l1

	a := math.Sin(df/2)*math.Sin(df/2) + math.Cos(f1)*math.Cos(f2)*math.Sin(dl/2)*math.Sin(dl/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EARTH_RADIUS_KM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
