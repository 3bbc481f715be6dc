// Package geojson writes a drawn scene to a GeoJSON FeatureCollection file.
package geojson

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/OCAP2/globe/internal/config"
	"github.com/OCAP2/globe/internal/geo"
	"github.com/OCAP2/globe/internal/model/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Exporter accumulates primitives and writes them out on End
type Exporter struct {
	cfg config.OutputConfig
	now func() time.Time

	mu             sync.Mutex
	name           string
	started        time.Time
	features       geom.GeoJSONFeatureCollection
	lastExportPath string
}

// New creates an Exporter writing into cfg.OutputDir.
func New(cfg config.OutputConfig) *Exporter {
	return &Exporter{cfg: cfg, now: time.Now}
}

// Begin starts a new scene and drops anything collected before.
func (e *Exporter) Begin(_ context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
	e.started = e.now()
	e.features = nil
	return nil
}

// Add converts p into a feature.
func (e *Exporter) Add(_ context.Context, p core.Primitive) error {
	f, err := Feature(p)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	f.ID = len(e.features)
	e.features = append(e.features, f)
	return nil
}

// End writes the collected features to disk.
func (e *Exporter) End(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started.IsZero() {
		e.started = e.now()
	}
	features := e.features
	if features == nil {
		features = geom.GeoJSONFeatureCollection{}
	}

	// Build filename
	name := e.name
	if name == "" {
		name = "scene"
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, ":", "_")
	timestamp := e.started.Format("20060102_150405")

	var filename string
	if e.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%s.geojson.gz", name, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%s.geojson", name, timestamp)
	}

	// Ensure output directory exists
	if err := os.MkdirAll(e.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	outputPath := filepath.Join(e.cfg.OutputDir, filename)
	if err := writeFile(outputPath, e.cfg.CompressOutput, features); err != nil {
		return err
	}

	e.lastExportPath = outputPath
	return nil
}

// LastExportPath returns the file written by the last End.
func (e *Exporter) LastExportPath() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastExportPath
}

func writeFile(path string, compress bool, fc geom.GeoJSONFeatureCollection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if !compress {
		return json.NewEncoder(f).Encode(fc)
	}

	gzWriter := gzip.NewWriter(f)
	if err := json.NewEncoder(gzWriter).Encode(fc); err != nil {
		gzWriter.Close()
		return err
	}
	return gzWriter.Close()
}

// Feature converts a primitive into a GeoJSON feature carrying its resolved style.
func Feature(p core.Primitive) (geom.GeoJSONFeature, error) {
	props := map[string]interface{}{"kind": string(p.Kind())}

	switch v := p.(type) {
	case core.PolygonPrimitive:
		props["name"] = v.Name
		props["fill"] = v.Fill.CSS()
		props["fillOpacity"] = v.Fill.A
		return geom.GeoJSONFeature{Geometry: geo.Polygon(v.Positions).AsGeometry(), Properties: props}, nil

	case core.PointPrimitive:
		props["name"] = v.Label.Text
		props["markerColor"] = v.Point.Color.CSS()
		props["pixelSize"] = v.Point.PixelSize
		props["outlineColor"] = v.Point.OutlineColor.CSS()
		props["outlineWidth"] = v.Point.OutlineWidth
		props["heightReference"] = string(v.Point.HeightReference)
		labelProps(props, v.Label)
		return geom.GeoJSONFeature{Geometry: geo.Point(v.Position).AsGeometry(), Properties: props}, nil

	case core.LinePrimitive:
		props["name"] = v.Name
		props["stroke"] = v.Material.Color.CSS()
		props["strokeWidth"] = v.Width
		props["material"] = v.Material.Type
		props["arcType"] = string(v.ArcType)
		props["clampToGround"] = v.ClampToGround
		return geom.GeoJSONFeature{Geometry: geo.LineString(v.Positions[:]).AsGeometry(), Properties: props}, nil

	case core.BillboardPrimitive:
		props["name"] = v.Label.Text
		props["image"] = v.Image
		props["heightReference"] = string(v.HeightReference)
		labelProps(props, v.Label)
		return geom.GeoJSONFeature{Geometry: geo.Point(v.Position).AsGeometry(), Properties: props}, nil
	}

	return geom.GeoJSONFeature{}, fmt.Errorf("unsupported primitive %T", p)
}

func labelProps(props map[string]interface{}, l core.LabelStyle) {
	props["labelFont"] = l.Font
	props["labelColor"] = l.FillColor.CSS()
	props["labelOrigin"] = l.HorizontalOrigin + "_" + l.VerticalOrigin
	if l.Background != nil {
		props["labelBackground"] = l.Background.Color.CSS()
	}
}
