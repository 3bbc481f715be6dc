package config

import (
	"fmt"
	"time"

	"github.com/OCAP2/globe/internal/geo"
	"github.com/OCAP2/globe/internal/model/core"
	"github.com/OCAP2/globe/internal/style"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory
const FileName = "globe_scene.cfg.json"

// SourceConfig selects where scenario records are loaded from
type SourceConfig struct {
	Type     string `json:"type" mapstructure:"type"` // "file" or "db"
	Path     string `json:"path" mapstructure:"path"`
	Scenario string `json:"scenario" mapstructure:"scenario"`
}

// DatabaseConfig holds connection settings for the scenario database
type DatabaseConfig struct {
	Driver   string `json:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path     string `json:"path" mapstructure:"path"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`
	Database string `json:"database" mapstructure:"database"`
}

// OutputConfig holds GeoJSON export settings
type OutputConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// StreamConfig holds settings for the live viewer websocket bridge
type StreamConfig struct {
	Enabled    bool
	URL        string
	Secret     string
	AckTimeout time.Duration
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// InfluxConfig holds InfluxDB settings for conversion statistics
type InfluxConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./globelogs")

	viper.SetDefault("source.type", "file")
	viper.SetDefault("source.path", "./testdata/scenario.json")
	viper.SetDefault("source.scenario", "")

	viper.SetDefault("db.driver", "sqlite")
	viper.SetDefault("db.path", "./globe_scene.db")
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "globe")

	viper.SetDefault("output.outputDir", "./scenes")
	viper.SetDefault("output.compressOutput", false)

	viper.SetDefault("stream.enabled", false)
	viper.SetDefault("stream.url", "")
	viper.SetDefault("stream.secret", "")
	viper.SetDefault("stream.ackTimeout", "10s")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "globe-metrics")
	viper.SetDefault("influx.bucket", "scene_conversion")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "globe-scene")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("overlays", []map[string]any{})
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetSourceConfig returns the scenario source settings.
func GetSourceConfig() SourceConfig {
	return SourceConfig{
		Type:     viper.GetString("source.type"),
		Path:     viper.GetString("source.path"),
		Scenario: viper.GetString("source.scenario"),
	}
}

// GetDatabaseConfig returns the database connection settings.
func GetDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:   viper.GetString("db.driver"),
		Path:     viper.GetString("db.path"),
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetOutputConfig returns the GeoJSON export settings.
func GetOutputConfig() OutputConfig {
	return OutputConfig{
		OutputDir:      viper.GetString("output.outputDir"),
		CompressOutput: viper.GetBool("output.compressOutput"),
	}
}

// GetStreamConfig returns the websocket streaming settings.
func GetStreamConfig() StreamConfig {
	return StreamConfig{
		Enabled:    viper.GetBool("stream.enabled"),
		URL:        viper.GetString("stream.url"),
		Secret:     viper.GetString("stream.secret"),
		AckTimeout: viper.GetDuration("stream.ackTimeout"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetInfluxConfig returns the InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetGraylogConfig returns the GELF output settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetStyleConfig returns the default palette with any "style" overrides
// from the config applied. Colours are CSS names or hex strings.
func GetStyleConfig() (style.Style, error) {
	s := style.Default()

	colors := []struct {
		key string
		dst *core.Color
	}{
		{"style.markerColor", &s.MarkerColor},
		{"style.outlineColor", &s.OutlineColor},
		{"style.labelFillColor", &s.LabelFillColor},
		{"style.labelBackground", &s.LabelBackground},
		{"style.lineColor", &s.LineColor},
		{"style.polygonFill", &s.PolygonFill},
	}
	for _, c := range colors {
		if !viper.IsSet(c.key) {
			continue
		}
		parsed, err := core.ParseColor(viper.GetString(c.key))
		if err != nil {
			return style.Style{}, fmt.Errorf("%s: %w", c.key, err)
		}
		*c.dst = parsed
	}

	if viper.IsSet("style.pixelSize") {
		s.PixelSize = viper.GetFloat64("style.pixelSize")
	}
	if viper.IsSet("style.outlineWidth") {
		s.OutlineWidth = viper.GetFloat64("style.outlineWidth")
	}
	if viper.IsSet("style.lineWidth") {
		s.LineWidth = viper.GetFloat64("style.lineWidth")
	}
	if viper.IsSet("style.nameFont") {
		s.NameFont = viper.GetString("style.nameFont")
	}
	if viper.IsSet("style.trajectoryName") {
		s.TrajectoryName = viper.GetString("style.trajectoryName")
	}

	if err := s.Validate(); err != nil {
		return style.Style{}, fmt.Errorf("invalid style config: %w", err)
	}
	return s, nil
}

// GetOverlays returns the static icons configured under "overlays".
// Positions are "x,y[,z]" strings.
func GetOverlays() ([]core.Overlay, error) {
	var raw []struct {
		Name     string `mapstructure:"name"`
		Image    string `mapstructure:"image"`
		Position string `mapstructure:"position"`
	}
	if err := viper.UnmarshalKey("overlays", &raw); err != nil {
		return nil, fmt.Errorf("error reading overlays: %w", err)
	}

	overlays := make([]core.Overlay, 0, len(raw))
	for i, r := range raw {
		pos, err := geo.CoordinateFromString(r.Position)
		if err != nil {
			return nil, fmt.Errorf("overlays[%d] %q: %w", i, r.Name, err)
		}
		overlays = append(overlays, core.Overlay{Name: r.Name, Image: r.Image, Position: pos})
	}
	return overlays, nil
}
