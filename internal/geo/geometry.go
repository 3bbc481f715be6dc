package geo

import (
	"github.com/OCAP2/globe/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Point converts a renderer position into a geom.Point.
func Point(c core.Cartesian) geom.Point {
	if c.Is3D {
		return geom.NewPoint(geom.Coordinates{
			XY:   geom.XY{X: c.X, Y: c.Y},
			Z:    c.Z,
			Type: geom.DimXYZ,
		})
	}
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: c.X, Y: c.Y}})
}

// LineString converts positions into a geom.LineString.
// Mixed 2D/3D input is promoted to XYZ with Z=0 for the 2D entries.
func LineString(positions []core.Cartesian) geom.LineString {
	return geom.NewLineString(sequence(positions))
}

// Polygon converts a ring into a geom.Polygon. The ring is closed by
// repeating the first position when needed; an empty ring gives an empty polygon.
func Polygon(ring []core.Cartesian) geom.Polygon {
	if len(ring) == 0 {
		return geom.Polygon{}
	}
	closed := make([]core.Cartesian, len(ring), len(ring)+1)
	copy(closed, ring)
	first, last := ring[0], ring[len(ring)-1]
	if first.X != last.X || first.Y != last.Y || first.Z != last.Z {
		closed = append(closed, first)
	}
	return geom.NewPolygon([]geom.LineString{LineString(closed)})
}

func sequence(positions []core.Cartesian) geom.Sequence {
	is3D := false
	for _, p := range positions {
		if p.Is3D {
			is3D = true
			break
		}
	}

	if !is3D {
		flat := make([]float64, 0, len(positions)*2)
		for _, p := range positions {
			flat = append(flat, p.X, p.Y)
		}
		return geom.NewSequence(flat, geom.DimXY)
	}

	flat := make([]float64, 0, len(positions)*3)
	for _, p := range positions {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return geom.NewSequence(flat, geom.DimXYZ)
}
