package domain

import (
	"math"

	dErrors "donorlink/pkg/domain-errors"
)

// earthRadiusKm is the mean Earth radius used for great-circle distance.
const earthRadiusKm = 6371.0

// Coordinates is a WGS84 point. Construct via NewCoordinates at trust
// boundaries so out-of-range values never enter the domain.
type Coordinates struct {
	Latitude  float64 `json:"latitude" db:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude"`
}

// NewCoordinates validates latitude and longitude ranges.
func NewCoordinates(lat, lng float64) (Coordinates, error) {
	if lat < -90 || lat > 90 {
		return Coordinates{}, dErrors.New(dErrors.CodeValidation, "latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, dErrors.New(dErrors.CodeValidation, "longitude must be between -180 and 180")
	}
	return Coordinates{Latitude: lat, Longitude: lng}, nil
}

// DistanceKm returns the haversine great-circle distance to other, in
// kilometers.
func (c Coordinates) DistanceKm(other Coordinates) float64 {
	lat1 := c.Latitude * math.Pi / 180
	lat2 := other.Latitude * math.Pi / 180
	dLat := (other.Latitude - c.Latitude) * math.Pi / 180
	dLng := (other.Longitude - c.Longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
