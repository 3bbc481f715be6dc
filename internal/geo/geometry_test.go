package geo

import (
	"testing"

	"github.com/OCAP2/globe/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coordsOf(ls geom.LineString) []geom.Coordinates {
	seq := ls.Coordinates()
	out := make([]geom.Coordinates, seq.Length())
	for i := range out {
		out[i] = seq.Get(i)
	}
	return out
}

func TestPoint_3D(t *testing.T) {
	c, ok := Point(core.Cartesian{X: 1, Y: 2, Z: 3, Is3D: true}).Coordinates()
	require.True(t, ok)
	assert.Equal(t, geom.DimXYZ, c.Type)
	assert.Equal(t, geom.XY{X: 1, Y: 2}, c.XY)
	assert.Equal(t, 3.0, c.Z)
}

func TestPoint_2D(t *testing.T) {
	c, ok := Point(core.Cartesian{X: 1, Y: 2}).Coordinates()
	require.True(t, ok)
	assert.Equal(t, geom.DimXY, c.Type)
	assert.Equal(t, geom.XY{X: 1, Y: 2}, c.XY)
}

func TestLineString_PromotesMixedInput(t *testing.T) {
	ls := LineString([]core.Cartesian{
		{X: 1, Y: 2},
		{X: 3, Y: 4, Z: 5, Is3D: true},
	})

	assert.Equal(t, geom.DimXYZ, ls.CoordinatesType())
	out := coordsOf(ls)
	require.Len(t, out, 2)
	assert.Equal(t, geom.XY{X: 1, Y: 2}, out[0].XY)
	assert.Equal(t, 0.0, out[0].Z)
	assert.Equal(t, geom.XY{X: 3, Y: 4}, out[1].XY)
	assert.Equal(t, 5.0, out[1].Z)
}

func TestPolygon_ClosesRing(t *testing.T) {
	ring := []core.Cartesian{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1},
	}
	poly := Polygon(ring)

	ext := coordsOf(poly.ExteriorRing())
	require.Len(t, ext, 5)
	assert.Equal(t, ext[0], ext[4])
	assert.Equal(t, 0, poly.NumInteriorRings())
	// input not modified
	assert.Len(t, ring, 4)
}

func TestPolygon_AlreadyClosed(t *testing.T) {
	ring := []core.Cartesian{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0},
	}
	assert.Len(t, coordsOf(Polygon(ring).ExteriorRing()), 4)
}

func TestPolygon_Empty(t *testing.T) {
	assert.True(t, Polygon(nil).IsEmpty())
}
