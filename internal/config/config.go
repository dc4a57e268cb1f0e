// Package config provides the configuration structures for the backend and the loader
// that assembles them from compiled defaults, the embedded YAML file, a .env file and
// environment variables.
package config

// EmbeddedConfig holds the content of the configuration file embedded into the binary.
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelTrace  LogLevel = "TRACE"
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelFatal  LogLevel = "FATAL"
	LogLevelSilent LogLevel = "SILENT"
)

// Metrics exporters.
const (
	MetricsExporterPrometheus = "prometheus"
	MetricsExporterOTLP       = "otlp"
	MetricsExporterNone       = "none"
)

// OTLP transport protocols.
const (
	ProtocolGRPC = "grpc"
	ProtocolHTTP = "http"
)

// ServerConfig holds settings for the public HTTP listener.
type ServerConfig struct {
	// Port is the TCP port of the public listener.
	Port int `yaml:"port"`
	// ReadTimeoutSeconds bounds reading a whole request.
	ReadTimeoutSeconds int `yaml:"read_timeout_seconds"`
	// WriteTimeoutSeconds bounds writing a response.
	WriteTimeoutSeconds int `yaml:"write_timeout_seconds"`
	// ShutdownTimeoutSeconds bounds graceful shutdown of both listeners.
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
	// Mode is the gin mode ("release", "debug", "test").
	Mode string `yaml:"mode"`
}

// ManagementConfig holds settings for the management listener (metrics and health).
type ManagementConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Port          int    `yaml:"port"`
	MetricsPath   string `yaml:"metrics_path"`
	HealthPath    string `yaml:"health_path"`
	ReadinessPath string `yaml:"readiness_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC", "Asia/Tokyo").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// OTLPConfig holds the settings shared by the OTLP metric and trace exporters.
type OTLPConfig struct {
	Protocol string `yaml:"protocol"`
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// MetricsConfig selects and configures the HTTP metrics backend.
type MetricsConfig struct {
	// Exporter is one of "prometheus", "otlp" or "none".
	Exporter string `yaml:"exporter"`
	// OTLP is used when Exporter is "otlp".
	OTLP OTLPConfig `yaml:"otlp"`
	// ExportIntervalSeconds is the push interval of the OTLP metric reader.
	ExportIntervalSeconds int `yaml:"export_interval_seconds"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled     bool       `yaml:"enabled"`
	ServiceName string     `yaml:"service_name"`
	SampleRatio float64    `yaml:"sample_ratio"`
	OTLP        OTLPConfig `yaml:"otlp"`
}

// DatasourceConfig selects the connection used by the Employee repository.
type DatasourceConfig struct {
	// Primary is the key in AppConfig.DatabaseConfigs used by the repository.
	Primary string `yaml:"primary"`
	// MigrateOnStart applies the embedded schema migrations during startup.
	MigrateOnStart bool `yaml:"migrate_on_start"`
}

// AppConfig holds all configuration under the "app" top-level key.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Management ManagementConfig `yaml:"management"`
	System     SystemConfig     `yaml:"system"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Tracing    TracingConfig    `yaml:"tracing"`
	Datasource DatasourceConfig `yaml:"datasource"`
	// DatabaseConfigs holds named database connections. Each value is decoded into
	// dbconfig.DatabaseConfig by the database adapters.
	DatabaseConfigs map[string]interface{} `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	App AppConfig `yaml:"app"`
	// EmbeddedConfig holds the raw embedded YAML, not decoded from YAML itself.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// DefaultPrimaryDatasource is the connection name used when none is configured.
const DefaultPrimaryDatasource = "primary"

// NewConfig returns a Config populated with defaults that let the process start
// without any runtime arguments: an in-memory SQLite datasource, the public listener
// on 8080 and the management listener on 8081.
func NewConfig() *Config {
	return &Config{
		App: AppConfig{
			Server: ServerConfig{
				Port:                   8080,
				ReadTimeoutSeconds:     15,
				WriteTimeoutSeconds:    15,
				ShutdownTimeoutSeconds: 10,
				Mode:                   "release",
			},
			Management: ManagementConfig{
				Enabled:       true,
				Port:          8081,
				MetricsPath:   "/metrics",
				HealthPath:    "/healthz",
				ReadinessPath: "/readyz",
			},
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO", Format: "text"},
			},
			Metrics: MetricsConfig{
				Exporter:              MetricsExporterPrometheus,
				OTLP:                  OTLPConfig{Protocol: ProtocolGRPC, Endpoint: "localhost:4317", Insecure: true},
				ExportIntervalSeconds: 15,
			},
			Tracing: TracingConfig{
				Enabled:     false,
				ServiceName: "k8poc-backend",
				SampleRatio: 1.0,
				OTLP:        OTLPConfig{Protocol: ProtocolGRPC, Endpoint: "localhost:4317", Insecure: true},
			},
			Datasource: DatasourceConfig{
				Primary:        DefaultPrimaryDatasource,
				MigrateOnStart: true,
			},
			DatabaseConfigs: map[string]interface{}{
				DefaultPrimaryDatasource: map[string]interface{}{
					"type":     "sqlite",
					"database": "file::memory:?cache=shared",
					"pool": map[string]interface{}{
						"max_open_conns": 1,
						"max_idle_conns": 1,
					},
				},
			},
		},
	}
}
