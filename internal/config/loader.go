package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/k8poc/backend/internal/exception"
	"github.com/k8poc/backend/internal/logger"
)

const moduleName = "config"

// envPortOverride is the conventional container variable for the public listener port.
// APP_SERVER_PORT takes precedence when both are set.
const envPortOverride = "PORT"

// LoadConfig builds the configuration in four layers:
//
//  1. compiled defaults from NewConfig,
//  2. the .env file at envFilePath (a missing file is logged and ignored),
//  3. the embedded YAML, with ${VAR} / ${VAR:-default} expanded inside each scalar value,
//  4. environment variables derived from the yaml tags (e.g. APP_SERVER_PORT).
//
// The result is validated before it is returned.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig, NewOsEnvironmentExpander())
}

func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig, expander EnvironmentExpander) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	}

	cfg := NewConfig()

	if len(embeddedConfig) > 0 {
		var doc yaml.Node
		if err := yaml.Unmarshal(embeddedConfig, &doc); err != nil {
			return nil, exception.NewAppError(moduleName, "failed to unmarshal embedded config", err)
		}
		if err := expandScalars(&doc, expander); err != nil {
			return nil, exception.NewAppError(moduleName, "failed to expand environment placeholders in embedded config", err)
		}
		// yaml.v3 only overwrites keys present in the document, so defaults survive.
		if doc.Kind != 0 {
			if err := doc.Decode(cfg); err != nil {
				return nil, exception.NewAppError(moduleName, "failed to unmarshal embedded config", err)
			}
		}
	}
	cfg.EmbeddedConfig = embeddedConfig

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewAppError(moduleName, "failed to load config from environment variables", err)
	}
	if _, set := os.LookupEnv("APP_SERVER_PORT"); !set {
		if v, ok := os.LookupEnv(envPortOverride); ok && v != "" {
			port, err := strconv.Atoi(v)
			if err != nil {
				return nil, exception.NewAppErrorf(moduleName, "invalid %s value '%s'", envPortOverride, v, err)
			}
			cfg.App.Server.Port = port
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expandScalars replaces placeholders inside scalar values of an already parsed document, so an
// expanded value is never re-read as YAML syntax ("p#ss: word" stays one string). A plain
// scalar has its type re-resolved after expansion ("${DB_PORT}" may become an int); a quoted one
// stays a string.
func expandScalars(node *yaml.Node, expander EnvironmentExpander) error {
	if node.Kind == yaml.ScalarNode {
		if !strings.Contains(node.Value, "$") {
			return nil
		}
		expanded, err := expander.Expand([]byte(node.Value))
		if err != nil {
			return err
		}
		node.Value = string(expanded)
		if node.Style == 0 {
			node.Tag = ""
		}
		return nil
	}
	for i, child := range node.Content {
		// Mapping content alternates key, value. Keys are left alone.
		if node.Kind == yaml.MappingNode && i%2 == 0 {
			continue
		}
		if err := expandScalars(child, expander); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the values that would otherwise fail later in less obvious ways.
func (c *Config) Validate() error {
	app := c.App
	if err := validatePort("app.server.port", app.Server.Port); err != nil {
		return err
	}
	switch app.Server.Mode {
	case "release", "debug", "test":
	default:
		return exception.NewAppErrorf(moduleName, "app.server.mode must be 'release', 'debug' or 'test', got '%s'", app.Server.Mode)
	}
	if app.Management.Enabled {
		if err := validatePort("app.management.port", app.Management.Port); err != nil {
			return err
		}
		if app.Management.Port == app.Server.Port {
			return exception.NewAppErrorf(moduleName, "app.management.port must differ from app.server.port (both %d)", app.Server.Port)
		}
	}
	switch app.Metrics.Exporter {
	case MetricsExporterPrometheus, MetricsExporterOTLP, MetricsExporterNone:
	default:
		return exception.NewAppErrorf(moduleName, "unknown metrics exporter '%s'", app.Metrics.Exporter)
	}
	if app.Metrics.Exporter == MetricsExporterOTLP {
		if err := validateProtocol("app.metrics.otlp.protocol", app.Metrics.OTLP.Protocol); err != nil {
			return err
		}
	}
	if app.Tracing.Enabled {
		if err := validateProtocol("app.tracing.otlp.protocol", app.Tracing.OTLP.Protocol); err != nil {
			return err
		}
		if app.Tracing.SampleRatio < 0 || app.Tracing.SampleRatio > 1 {
			return exception.NewAppErrorf(moduleName, "app.tracing.sample_ratio must be within [0, 1], got %v", app.Tracing.SampleRatio)
		}
	}
	if _, err := time.LoadLocation(app.System.Timezone); err != nil {
		return exception.NewAppErrorf(moduleName, "invalid app.system.timezone '%s'", app.System.Timezone, err)
	}
	if app.Datasource.Primary == "" {
		return exception.NewAppError(moduleName, "app.datasource.primary must not be empty", nil)
	}
	if _, ok := app.DatabaseConfigs[app.Datasource.Primary]; !ok {
		return exception.NewAppErrorf(moduleName, "primary datasource '%s' is not defined under app.database", app.Datasource.Primary)
	}
	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return exception.NewAppErrorf(moduleName, "%s must be within 1-65535, got %d", name, port)
	}
	return nil
}

func validateProtocol(name, protocol string) error {
	if protocol != ProtocolGRPC && protocol != ProtocolHTTP {
		return exception.NewAppErrorf(moduleName, "%s must be '%s' or '%s', got '%s'", name, ProtocolGRPC, ProtocolHTTP, protocol)
	}
	return nil
}

// loadStructFromEnv recursively loads configuration values into a struct from environment variables.
// The variable name is the upper-cased path of yaml tags joined by "_", so the field
// tagged `port` under `app.server` is read from APP_SERVER_PORT. Maps are skipped; database
// connections are configured through ${VAR} placeholders in the YAML instead.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		switch field.Kind() {
		case reflect.Struct:
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		case reflect.Map, reflect.Slice, reflect.Interface:
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField sets a string, int, float or bool field from its string form.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	}
	return nil
}
