// Package location implements the geographic position value object used to
// derive travel time between consecutive bookings.
package location

import (
	"fmt"
	"math"

	"stallbook/internal/result"
)

const (
	MsgInvalidLatitude  = "Latitud måste vara mellan -90 och 90"
	MsgInvalidLongitude = "Longitud måste vara mellan -180 och 180"

	// DefaultSpeedKmh is the assumed average travel speed when the caller
	// does not model terrain or vehicle.
	DefaultSpeedKmh = 50.0

	earthRadiusKm = 6371.0
)

// Location is an immutable coordinate pair with an optional human-readable
// address. Equality is structural: identical coordinates with different
// addresses are not equal.
type Location struct {
	latitude  float64
	longitude float64
	address   string
}

// New validates coordinate ranges, accepting the exact boundary values.
func New(latitude, longitude float64, address string) result.Result[Location] {
	if latitude < -90 || latitude > 90 {
		return result.Fail[Location](MsgInvalidLatitude)
	}
	if longitude < -180 || longitude > 180 {
		return result.Fail[Location](MsgInvalidLongitude)
	}
	return result.Ok(Location{latitude: latitude, longitude: longitude, address: address})
}

func (l Location) Latitude() float64 {
	return l.latitude
}

func (l Location) Longitude() float64 {
	return l.longitude
}

func (l Location) Address() string {
	return l.address
}

// DistanceTo returns the Haversine great-circle distance in kilometres.
func (l Location) DistanceTo(other Location) float64 {
	lat1 := l.latitude * math.Pi / 180
	lat2 := other.latitude * math.Pi / 180
	dLat := (other.latitude - l.latitude) * math.Pi / 180
	dLon := (other.longitude - l.longitude) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// TravelTimeTo returns the travel time in minutes at the given speed.
// Pass DefaultSpeedKmh unless the caller models a different vehicle.
func (l Location) TravelTimeTo(other Location, speedKmh float64) float64 {
	return l.DistanceTo(other) / speedKmh * 60
}

// Equals compares coordinates and address.
func (l Location) Equals(other Location) bool {
	return l.latitude == other.latitude &&
		l.longitude == other.longitude &&
		l.address == other.address
}

func (l Location) String() string {
	if l.address != "" {
		return fmt.Sprintf("%s (%v, %v)", l.address, l.latitude, l.longitude)
	}
	return fmt.Sprintf("(%v, %v)", l.latitude, l.longitude)
}
