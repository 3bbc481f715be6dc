package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OCAP2/globe/internal/config"
	ws "github.com/gorilla/websocket"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScenario = "../../testdata/scenario.json"

func newTestApp(t *testing.T, extra map[string]any) (*app, *bytes.Buffer, string) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := map[string]any{
		"logLevel": "debug",
		"logsDir":  filepath.Join(dir, "logs"),
		"output":   map[string]any{"outputDir": filepath.Join(dir, "scenes")},
		"db":       map[string]any{"driver": "sqlite", "path": filepath.Join(dir, "globe.db")},
		"overlays": []map[string]any{
			{"name": "CCU", "image": "ccu.svg", "position": "1,2,3"},
			{"name": "Radar", "image": "radar.svg", "position": "4,5"},
		},
	}
	for k, v := range extra {
		cfg[k] = v
	}
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), data, 0644))

	var out bytes.Buffer
	a, err := newApp(dir, &out)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.close() })
	return a, &out, dir
}

func TestScenarioName(t *testing.T) {
	assert.Equal(t, "scenario", scenarioName("testdata/scenario.json"))
	assert.Equal(t, "drill", scenarioName("/tmp/drill.json.gz"))
	assert.Equal(t, "plain", scenarioName("plain"))
}

func TestRun_NoArgs(t *testing.T) {
	a, out, _ := newTestApp(t, nil)
	require.NoError(t, a.run(context.Background(), nil))
	assert.Contains(t, out.String(), "No arguments provided.")
}

func TestRun_UnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	err := a.run(context.Background(), []string{"explode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "explode"`)
}

func TestConvert_FromFile(t *testing.T) {
	a, out, dir := newTestApp(t, nil)

	require.NoError(t, a.run(context.Background(), []string{"convert", sampleScenario}))

	// 2 overlays, 3 targets, 7 legs, 2 models, 1 zone
	assert.Contains(t, out.String(), "scenario: 15 primitives written to")

	matches, err := filepath.Glob(filepath.Join(dir, "scenes", "scenario_*.geojson"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var fc struct {
		Features []struct {
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	require.Len(t, fc.Features, 15)
	assert.Equal(t, "CCU", fc.Features[0].Properties["name"])
	assert.Equal(t, "polygon", fc.Features[14].Properties["kind"])

	logData, err := os.ReadFile(a.logFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Scene drawn")
	assert.Contains(t, string(logData), "scenario=scenario")
}

func TestConvert_ValidationFailure(t *testing.T) {
	a, _, dir := newTestApp(t, nil)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{
		"assets": [],
		"deployments": [],
		"attacks": [{"name": "x", "targetsMetadata": {"name": "t", "trajectories": []}}]
	}`), 0644))

	err := a.run(context.Background(), []string{"convert", bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attacks[0].targetsMetadata.location")

	matches, _ := filepath.Glob(filepath.Join(dir, "scenes", "*"))
	assert.Empty(t, matches, "nothing is exported for a rejected scenario")
}

func TestImportThenConvertFromDB(t *testing.T) {
	a, out, dir := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"import", sampleScenario, "Exercise"}))
	assert.Contains(t, out.String(), "imported Exercise as scenario")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"list"}))
	assert.Equal(t, "Exercise\n", out.String())

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"convert", "db", "Exercise"}))
	assert.Contains(t, out.String(), "Exercise: 15 primitives written to")

	matches, err := filepath.Glob(filepath.Join(dir, "scenes", "Exercise_*.geojson"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestConvert_DBMissingScenario(t *testing.T) {
	a, _, _ := newTestApp(t, nil)
	err := a.run(context.Background(), []string{"convert", "db", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario not found")
}

func TestConvert_StreamUnavailableStillExports(t *testing.T) {
	a, out, _ := newTestApp(t, map[string]any{
		"stream": map[string]any{"enabled": true, "url": "ws://127.0.0.1:1/scene"},
	})
	require.NoError(t, a.run(context.Background(), []string{"convert", sampleScenario}))
	assert.Contains(t, out.String(), "15 primitives written to")
}

func TestProbe(t *testing.T) {
	a, out, _ := newTestApp(t, nil)

	require.NoError(t, a.run(context.Background(), []string{"probe", "0,0,0"}))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "renderer:   [0,0,0]", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "geocentric: [6378137"), lines[1])

	out.Reset()
	require.NoError(t, a.run(context.Background(), []string{"probe", "1.5,2"}))
	assert.Contains(t, out.String(), "renderer:   [1.5,2]")

	err := a.run(context.Background(), []string{"probe", "nope"})
	require.Error(t, err)
}

// silentViewer accepts the websocket upgrade and reads every message without acking.
func silentViewer(t *testing.T) string {
	t.Helper()
	upgrader := ws.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestConvert_StreamWithoutAckStillExports(t *testing.T) {
	a, out, dir := newTestApp(t, map[string]any{
		"stream": map[string]any{"enabled": true, "url": silentViewer(t), "ackTimeout": "200ms"},
	})

	require.NoError(t, a.run(context.Background(), []string{"convert", sampleScenario}))
	assert.Contains(t, out.String(), "scenario: 15 primitives written to")

	matches, err := filepath.Glob(filepath.Join(dir, "scenes", "scenario_*.geojson"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	logData, err := os.ReadFile(a.logFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Viewer stream failed")
	assert.Contains(t, string(logData), "start_scene")
}

func TestConvert_DBLatestUsesStoredName(t *testing.T) {
	a, out, dir := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, []string{"import", sampleScenario, "Older"}))
	require.NoError(t, a.run(ctx, []string{"import", sampleScenario, "Drill"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"convert", "db"}))
	assert.Contains(t, out.String(), "Drill: 15 primitives written to")

	matches, err := filepath.Glob(filepath.Join(dir, "scenes", "Drill_*.geojson"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	logData, err := os.ReadFile(a.logFilePath)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "scenario=Drill")
}

func TestOpenDB_CloseReleasesPool(t *testing.T) {
	a, _, _ := newTestApp(t, nil)

	db, closeDB, err := a.openDB()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Ping())

	closeDB()
	assert.Error(t, sqlDB.Ping())
}
