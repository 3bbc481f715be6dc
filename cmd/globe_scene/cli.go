package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/OCAP2/globe/internal/config"
	"github.com/OCAP2/globe/internal/database"
	"github.com/OCAP2/globe/internal/entities"
	"github.com/OCAP2/globe/internal/geo"
	"github.com/OCAP2/globe/internal/influx"
	"github.com/OCAP2/globe/internal/scene"
	"github.com/OCAP2/globe/internal/scene/geojson"
	"github.com/OCAP2/globe/internal/scene/websocket"
	"github.com/OCAP2/globe/internal/source"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"
)

const instrumentation = "github.com/OCAP2/globe"

const usage = `usage:
  globe_scene convert [scenario.json | db [name]]
  globe_scene import <scenario.json> [name]
  globe_scene list
  globe_scene probe <x,y[,z]>`

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "No arguments provided.")
		fmt.Fprintln(a.out, usage)
		return nil
	}

	switch strings.ToLower(args[0]) {
	case "convert":
		return a.convert(ctx, args[1:])
	case "import":
		return a.importScenario(ctx, args[1:])
	case "list":
		return a.list(ctx)
	case "probe":
		return a.probe(args[1:])
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

// scenarioName derives a scenario name from a document path.
func scenarioName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// openDB opens and migrates the scenario database. The returned func closes it.
func (a *app) openDB() (*gorm.DB, func(), error) {
	db, err := database.Open(config.GetDatabaseConfig())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			a.logger.Warn("Failed to close database", "error", err)
		}
	}
	if err := database.Migrate(db); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, closeDB, nil
}

// loader picks the scenario source from args, falling back to the source config.
// The returned func releases the source.
func (a *app) loader(args []string) (source.Loader, string, string, func(), error) {
	src := config.GetSourceConfig()

	useDB := src.Type == "db"
	path := src.Path
	name := src.Scenario
	if len(args) > 0 {
		if strings.EqualFold(args[0], "db") {
			useDB = true
			if len(args) > 1 {
				name = args[1]
			}
		} else {
			useDB = false
			path = args[0]
		}
	}

	if useDB {
		db, closeDB, err := a.openDB()
		if err != nil {
			return nil, "", "", nil, err
		}
		return source.NewDBLoader(db, name), name, "db", closeDB, nil
	}
	return source.NewFileLoader(path), scenarioName(path), "file", func() {}, nil
}

func (a *app) sinks(ctx context.Context) (scene.Sink, *geojson.Exporter, func(), error) {
	exporter := geojson.New(config.GetOutputConfig())
	sinks := []scene.Sink{exporter}
	cleanup := func() {}

	stream := config.GetStreamConfig()
	if stream.Enabled && stream.URL != "" {
		ws := websocket.New(websocket.Config{
			URL:        stream.URL,
			Secret:     stream.Secret,
			AckTimeout: stream.AckTimeout,
		}, a.logger)
		if err := ws.Connect(ctx); err != nil {
			a.logger.Warn("Viewer stream unavailable, exporting to file only", "url", stream.URL, "error", err)
		} else {
			a.logger.Info("Streaming scene to viewer", "url", stream.URL)
			sinks = append(sinks, scene.NewOptionalSink(ws, func(err error) {
				a.logger.Warn("Viewer stream failed, exporting to file only", "url", stream.URL, "error", err)
			}))
			cleanup = func() { _ = ws.Close() }
		}
	}

	metered, err := scene.NewMeteredSink(scene.NewMultiSink(sinks...), a.otel.Meter(instrumentation))
	if err != nil {
		cleanup()
		return nil, nil, nil, fmt.Errorf("failed to create scene metrics: %w", err)
	}
	return metered, exporter, cleanup, nil
}

func (a *app) convert(ctx context.Context, args []string) (err error) {
	ctx, span := a.otel.Tracer(instrumentation).Start(ctx, "convert")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	loader, name, origin, release, err := a.loader(args)
	if err != nil {
		return err
	}
	defer release()

	st, err := config.GetStyleConfig()
	if err != nil {
		return fmt.Errorf("invalid style config: %w", err)
	}
	overlays, err := config.GetOverlays()
	if err != nil {
		return fmt.Errorf("invalid overlays config: %w", err)
	}

	model, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	if db, ok := loader.(*source.DBLoader); ok {
		name = db.Name()
	}
	if name == "" {
		name = "scene"
	}
	a.sceneCtx.Set(name, origin)
	span.SetAttributes(
		attribute.String("scenario", name),
		attribute.String("source", origin),
		attribute.Int("assets", len(model.Assets)),
		attribute.Int("deployments", len(model.Deployments)),
		attribute.Int("attacks", len(model.Attacks)),
	)
	a.logger.Info("Scenario loaded",
		"assets", len(model.Assets),
		"deployments", len(model.Deployments),
		"attacks", len(model.Attacks),
	)

	started := time.Now()
	conv := entities.New(st)
	sc, err := conv.ConvertModel(model)
	if err != nil {
		var verr *entities.ValidationError
		if errors.As(err, &verr) {
			a.logger.Error("Scenario rejected", "path", verr.Path, "reason", verr.Reason)
		}
		a.recordConversion(influx.Conversion{Scenario: name, Source: origin, Failed: true, At: started})
		return err
	}
	sc.Overlays = conv.ConvertOverlays(overlays)

	sink, exporter, cleanup, err := a.sinks(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := scene.Run(ctx, sink, name, sc)
	a.recordConversion(influx.Conversion{Scenario: name, Source: origin, Stats: stats, Failed: err != nil, At: started})
	if err != nil {
		return fmt.Errorf("failed to draw scene: %w", err)
	}

	a.logger.Info("Scene drawn",
		"polygons", stats.Polygons,
		"points", stats.Points,
		"lines", stats.Lines,
		"billboards", stats.Billboards,
		"duration", stats.Duration,
		"path", exporter.LastExportPath(),
	)
	fmt.Fprintf(a.out, "%s: %d primitives written to %s\n", name, stats.Total(), exporter.LastExportPath())
	return nil
}

func (a *app) recordConversion(c influx.Conversion) {
	if a.influx == nil {
		return
	}
	if err := a.influx.WriteConversion(c); err != nil {
		a.logger.Warn("Failed to record conversion stats", "error", err)
	}
}

func (a *app) importScenario(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "No scenario file provided.")
		return nil
	}
	path := args[0]
	name := scenarioName(path)
	if len(args) > 1 {
		name = args[1]
	}

	model, err := source.NewFileLoader(path).Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	db, closeDB, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	id, err := source.NewDBLoader(db, name).Save(ctx, name, path, model)
	if err != nil {
		return err
	}

	a.logger.Info("Scenario imported", "name", name, "id", id, "path", path)
	fmt.Fprintf(a.out, "imported %s as scenario %d\n", name, id)
	return nil
}

func (a *app) list(ctx context.Context) error {
	db, closeDB, err := a.openDB()
	if err != nil {
		return err
	}
	defer closeDB()

	names, err := source.NewDBLoader(db, "").Scenarios(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(a.out, n)
	}
	return nil
}

// probe prints how a coordinate is handed to the renderer next to its
// geocentric reading as WGS84 degrees.
func (a *app) probe(args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "No coordinate provided.")
		return nil
	}
	c, err := geo.CoordinateFromString(strings.Join(args, ","))
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", strings.Join(args, ","), err)
	}

	passThrough, err := json.Marshal(geo.Normalize(c))
	if err != nil {
		return err
	}
	geocentric, err := json.Marshal(geo.Geocentric(c))
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "renderer:   %s\n", passThrough)
	fmt.Fprintf(a.out, "geocentric: %s\n", geocentric)
	return nil
}
