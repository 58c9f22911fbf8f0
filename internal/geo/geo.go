// Package geo contains pure geographic computation helpers.
package geo

import "math"

const earthRadiusKm = 6371.0

// Fixed service-center coordinate (lon, lat) and the maximum distance a
// dropoff may be from it.
var ServiceCenter = [2]float64{85.8166, 20.2945}

const ServiceRadiusKm = 350.0

// DistanceKm returns the great-circle (haversine) distance in kilometres
// between two points given as [longitude, latitude] in decimal degrees.
func DistanceKm(a, b [2]float64) float64 {
	lon1, lat1 := a[0], a[1]
	lon2, lat2 := b[0], b[1]

	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// DistanceFromCenterKm returns the distance between the service center and a
// [lon, lat] point.
func DistanceFromCenterKm(p [2]float64) float64 {
	return DistanceKm(ServiceCenter, p)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
