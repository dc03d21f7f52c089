package geo

import "math"

// earthRadiusMiles is the Earth radius in statute miles.
const earthRadiusMiles = 3956

// compassPoints are the 16 points of the compass in clockwise order.
var compassPoints = [16]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// Distance returns the great-circle distance between two points in statute
// miles, using the haversine formula.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlat := radians(lat2 - lat1)
	dlon := radians(lon2 - lon1)

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	// Rounding can push a just past 1 for near-antipodal points.
	if a > 1 {
		a = 1
	}
	c := 2 * math.Asin(math.Sqrt(a))
	return c * earthRadiusMiles
}

// Bearing returns the initial compass bearing from the first point to the
// second, as a 16-point compass label and degrees in [0, 360). Identical
// points yield 0 degrees ("N"). Sector ties round away from zero, i.e. to
// the clockwise sector.
func Bearing(lat1, lon1, lat2, lon2 float64) (string, float64) {
	rlat1 := radians(lat1)
	rlat2 := radians(lat2)
	dlon := radians(lon2 - lon1)

	x := math.Sin(dlon) * math.Cos(rlat2)
	y := math.Cos(rlat1)*math.Sin(rlat2) - math.Sin(rlat1)*math.Cos(rlat2)*math.Cos(dlon)
	deg := math.Mod(degrees(math.Atan2(x, y))+360, 360)

	idx := int(math.Round(deg/22.5)) % 16
	return compassPoints[idx], deg
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
