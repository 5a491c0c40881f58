// Package geo provides the haversine distance and delivery fee calculations
// used to price rental deliveries from the depot.
package geo

import "math"

const earthRadiusKm = 6371.0 // Earth's radius in kilometers

// Origin is a fixed reference point distances are measured from.
type Origin struct {
	Lat float64
	Lon float64
}

// Business is the rental depot all customer-facing distances are measured from.
var Business = Origin{Lat: 13.7563, Lon: 100.5018}

// Distance returns the great-circle distance in kilometers between two points
// on a spherical-earth approximation. Pure and total for any finite input.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	// convert latitude and longitude from degrees to radians
	rlat1 := degreesToRadians(lat1)
	rlon1 := degreesToRadians(lon1)
	rlat2 := degreesToRadians(lat2)
	rlon2 := degreesToRadians(lon2)

	// haversine formula
	dlat := rlat2 - rlat1
	dlon := rlon2 - rlon1
	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(rlat1)*math.Cos(rlat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// DistanceTo returns the distance in kilometers from the origin to the point.
func (o Origin) DistanceTo(lat, lon float64) float64 {
	return Distance(o.Lat, o.Lon, lat, lon)
}

// DistanceFromBusiness binds Distance to the depot origin.
func DistanceFromBusiness(lat, lon float64) float64 {
	return Business.DistanceTo(lat, lon)
}

// DeliveryFee is a step function over distance tiers, in base monetary units.
func DeliveryFee(distanceKm float64) float64 {
	switch {
	case distanceKm <= 5:
		return 50
	case distanceKm <= 10:
		return 100
	case distanceKm <= 15:
		return 150
	case distanceKm <= 20:
		return 200
	case distanceKm <= 30:
		return 300
	case distanceKm <= 50:
		return 500
	default:
		return 800
	}
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
