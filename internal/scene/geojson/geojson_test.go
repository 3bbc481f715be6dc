package geojson

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OCAP2/globe/internal/config"
	"github.com/OCAP2/globe/internal/entities"
	"github.com/OCAP2/globe/internal/model/core"
	"github.com/OCAP2/globe/internal/scene"
	"github.com/OCAP2/globe/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type featureJSON struct {
	Type     string         `json:"type"`
	ID       int            `json:"id"`
	Geometry map[string]any `json:"geometry"`
	Props    map[string]any `json:"properties"`
}

type collectionJSON struct {
	Type     string        `json:"type"`
	Features []featureJSON `json:"features"`
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func h(v float64) *float64 { return &v }

func testScene(t *testing.T) core.Scene {
	t.Helper()
	conv := entities.New(style.Default())
	sc, err := conv.ConvertModel(core.MapModel{
		Assets: []core.AssetForCesium{{
			Name: "Zone",
			Coordinates: []core.Coordinate{
				{Latitude: 0, Longitude: 0, Height: h(0)},
				{Latitude: 1, Longitude: 0, Height: h(0)},
				{Latitude: 1, Longitude: 1, Height: h(0)},
				{Latitude: 0, Longitude: 1, Height: h(0)},
			},
		}},
		Attacks: []core.AttackForCesium{{
			Name: "Air attack",
			TargetsMetadata: core.TargetMetadata{
				PointEntity:  core.PointEntity{Name: "Plane", Location: &core.Coordinate{Latitude: 5, Longitude: 6, Height: h(7)}},
				Trajectories: []core.TargetTrajectory{{EndPoint: &core.Coordinate{Latitude: 8, Longitude: 9, Height: h(10)}}},
			},
		}},
	})
	require.NoError(t, err)
	sc.Overlays = conv.ConvertOverlays([]core.Overlay{{Name: "CCU", Image: "ccu.svg", Position: core.Coordinate{Latitude: 1, Longitude: 2}}})
	return sc
}

func readCollection(t *testing.T, path string, compressed bool) collectionJSON {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out collectionJSON
	if compressed {
		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		defer gz.Close()
		require.NoError(t, json.NewDecoder(gz).Decode(&out))
	} else {
		require.NoError(t, json.NewDecoder(f).Decode(&out))
	}
	return out
}

func TestExporter_WritesFeatureCollection(t *testing.T) {
	dir := t.TempDir()
	e := New(config.OutputConfig{OutputDir: dir})
	e.now = fixedClock

	stats, err := scene.Run(context.Background(), e, "Exercise 1", testScene(t))
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total())

	path := e.LastExportPath()
	assert.Equal(t, filepath.Join(dir, "Exercise_1_20240301_123000.geojson"), path)

	fc := readCollection(t, path, false)
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 4)

	kinds := []string{}
	for i, f := range fc.Features {
		assert.Equal(t, i, f.ID)
		kinds = append(kinds, f.Props["kind"].(string))
	}
	assert.Equal(t, []string{"billboard", "point", "line", "polygon"}, kinds)

	assert.Equal(t, "Point", fc.Features[0].Geometry["type"])
	assert.Equal(t, "CCU", fc.Features[0].Props["name"])

	line := fc.Features[2]
	assert.Equal(t, "LineString", line.Geometry["type"])
	assert.Equal(t, "trajectory", line.Props["name"])
	assert.Equal(t, "PolylineArrow", line.Props["material"])
	assert.Equal(t, "rgba(255,0,0,1)", line.Props["stroke"])

	poly := fc.Features[3]
	assert.Equal(t, "Polygon", poly.Geometry["type"])
	rings := poly.Geometry["coordinates"].([]any)
	require.Len(t, rings, 1)
	// closed on export
	assert.Len(t, rings[0].([]any), 5)
	assert.Equal(t, "rgba(0,0,255,0.5)", poly.Props["fill"])
}

func TestExporter_Compressed(t *testing.T) {
	dir := t.TempDir()
	e := New(config.OutputConfig{OutputDir: dir, CompressOutput: true})
	e.now = fixedClock

	_, err := scene.Run(context.Background(), e, "scene:one", testScene(t))
	require.NoError(t, err)

	path := e.LastExportPath()
	assert.Equal(t, filepath.Join(dir, "scene_one_20240301_123000.geojson.gz"), path)
	fc := readCollection(t, path, true)
	assert.Len(t, fc.Features, 4)
}

func TestExporter_EmptyScene(t *testing.T) {
	dir := t.TempDir()
	e := New(config.OutputConfig{OutputDir: filepath.Join(dir, "nested")})
	e.now = fixedClock

	_, err := scene.Run(context.Background(), e, "", core.Scene{})
	require.NoError(t, err)

	fc := readCollection(t, e.LastExportPath(), false)
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Empty(t, fc.Features)
	assert.Contains(t, e.LastExportPath(), "scene_20240301_123000.geojson")
}

func TestFeature_PointStyle(t *testing.T) {
	p, err := entities.New(style.Default()).BuildPoint(core.PointEntity{
		Name:               "Radar",
		Location:           &core.Coordinate{Latitude: 1, Longitude: 2, Height: h(3)},
		ShowNameBackground: true,
		OnGround:           true,
	})
	require.NoError(t, err)

	f, err := Feature(p)
	require.NoError(t, err)
	assert.Equal(t, "Radar", f.Properties["name"])
	assert.Equal(t, "CLAMP_TO_GROUND", f.Properties["heightReference"])
	assert.Equal(t, "LEFT_BASELINE", f.Properties["labelOrigin"])
	assert.Equal(t, "rgba(255,255,255,0.7)", f.Properties["labelBackground"])
}
