package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/OCAP2/globe/internal/config"
	"github.com/OCAP2/globe/internal/influx"
	"github.com/OCAP2/globe/internal/logging"
	intOtel "github.com/OCAP2/globe/internal/otel"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

const (
	AppName = "globe_scene"

	// shutdown budget for telemetry and influx flushes
	flushTimeout = 5 * time.Second
)

// app carries the process-wide services shared by all subcommands.
type app struct {
	out    io.Writer
	logger *slog.Logger

	slogManager *logging.SlogManager
	otel        *intOtel.Provider
	influx      *influx.Manager
	sceneCtx    *logging.SceneContext

	sessionStart time.Time
	logFile      *os.File
	logFilePath  string
	closers      []io.Closer
}

// newApp loads configuration from configDir and sets up logging, telemetry and influx.
func newApp(configDir string, out io.Writer) (*app, error) {
	a := &app{
		out:          out,
		slogManager:  logging.NewSlogManager(),
		sceneCtx:     &logging.SceneContext{},
		sessionStart: time.Now(),
	}

	// console logging until the log file is open
	a.slogManager.Setup(logging.Options{Level: "info"})
	a.logger = a.slogManager.Logger()

	if err := config.Load(configDir); err != nil {
		a.logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		a.logger.Info("Loaded config", "file", viper.ConfigFileUsed())
	}

	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}
	a.logFilePath = logging.LogFilePath(logsDir, AppName, a.sessionStart)
	logFile, err := os.OpenFile(a.logFilePath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = logFile

	otelCfg := config.GetOTelConfig()
	a.otel, err = intOtel.New(intOtel.Config{
		Enabled:      otelCfg.Enabled,
		ServiceName:  otelCfg.ServiceName,
		BatchTimeout: otelCfg.BatchTimeout,
		LogWriter:    logFile,
		Endpoint:     otelCfg.Endpoint,
		Insecure:     otelCfg.Insecure,
	})
	if err != nil {
		a.logger.Error("Failed to initialize OTel provider", "error", err)
		a.otel, _ = intOtel.New(intOtel.Config{})
	}
	a.otel.SetGlobal()

	opts := logging.Options{
		Level:   config.GetString("logLevel"),
		File:    logFile,
		Context: a.sceneCtx.Attrs,
	}
	var otelLogProvider *sdklog.LoggerProvider
	if a.otel.Enabled() {
		otelLogProvider = a.otel.LoggerProvider()
	}
	opts.Provider = otelLogProvider

	if gl := config.GetGraylogConfig(); gl.Enabled {
		w, err := logging.NewGraylogWriter(gl.Address, AppName)
		if err != nil {
			a.logger.Error("Failed to connect to Graylog", "error", err, "address", gl.Address)
		} else {
			opts.Graylog = w
			a.closers = append(a.closers, w)
		}
	}

	a.slogManager.Setup(opts)
	a.logger = a.slogManager.Logger()
	a.logger.Info("Logging to file", "path", a.logFilePath)

	if influxCfg := config.GetInfluxConfig(); influxCfg.Enabled {
		zl := zerolog.New(logFile).With().Timestamp().Str("component", "influx").Logger()
		backupPath := filepath.Join(logsDir, fmt.Sprintf("%s_influx_%s.log.gz", AppName, a.sessionStart.Format("20060102_150405")))
		m := influx.NewManager(influxCfg, zl, backupPath)
		if err := m.Connect(context.Background()); err != nil {
			a.logger.Error("Failed to set up InfluxDB", "error", err)
		} else {
			a.influx = m
		}
	}

	return a, nil
}

// close flushes telemetry and releases every output opened by newApp.
func (a *app) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	var errs []error
	if a.influx != nil {
		errs = append(errs, a.influx.Close())
	}
	if a.otel != nil {
		errs = append(errs, a.otel.Shutdown(ctx))
	}
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

func main() {
	a, err := newApp(".", os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err = a.run(context.Background(), os.Args[1:])
	if closeErr := a.close(); closeErr != nil {
		fmt.Fprintln(os.Stderr, closeErr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
