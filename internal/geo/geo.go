package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/OCAP2/globe/internal/model/core"
	"github.com/wroge/wgs84"
)

// COORDINATES
// Upstream records carry positions that are already cartesian, even though the
// fields are named latitude/longitude/height. Normalize passes them through
// unchanged. Geocentric is the geodetic interpretation and is kept apart so the
// two readings can be compared; converters never call it.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Normalize turns a record coordinate into a renderer position.
// With a height the result has three components, otherwise two.
// NaN and Inf pass through unchecked.
func Normalize(c core.Coordinate) core.Cartesian {
	if c.Height != nil {
		return core.Cartesian{X: c.Latitude, Y: c.Longitude, Z: *c.Height, Is3D: true}
	}
	return core.Cartesian{X: c.Latitude, Y: c.Longitude}
}

// Geocentric reads the coordinate as WGS84 degrees and projects it to
// earth-centred cartesian metres (EPSG:4326 -> EPSG:4978).
func Geocentric(c core.Coordinate) core.Cartesian {
	var h float64
	if c.Height != nil {
		h = *c.Height
	}
	f := wgs84.EPSG().Transform(4326, 4978)
	x, y, z := f(c.Longitude, c.Latitude, h)
	return core.Cartesian{X: x, Y: y, Z: z, Is3D: true}
}

// CoordinateFromString parses "x,y" or "x,y,z" into a core.Coordinate.
// Surrounding brackets are ignored; components beyond the third are ignored.
func CoordinateFromString(coords string) (core.Coordinate, error) {
	coords = strings.TrimSpace(coords)
	coords = strings.TrimPrefix(coords, "[")
	coords = strings.TrimSuffix(coords, "]")

	coordsSplit := strings.Split(coords, ",")
	if len(coordsSplit) < 2 {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[0]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[1]), 64)
	if err != nil {
		return core.Coordinate{}, ErrInvalidCoordinates
	}
	c := core.Coordinate{Latitude: x, Longitude: y}
	if len(coordsSplit) > 2 {
		z, err := strconv.ParseFloat(strings.TrimSpace(coordsSplit[2]), 64)
		if err != nil {
			return core.Coordinate{}, ErrInvalidCoordinates
		}
		c.Height = &z
	}
	return c, nil
}
