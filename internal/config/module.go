package config

import "go.uber.org/fx"

// NewServerConfigProvider extracts *ServerConfig from *Config.
func NewServerConfigProvider(cfg *Config) *ServerConfig {
	return &cfg.App.Server
}

// NewManagementConfigProvider extracts *ManagementConfig from *Config.
func NewManagementConfigProvider(cfg *Config) *ManagementConfig {
	return &cfg.App.Management
}

// Module provides the per-section configuration views. *Config itself is supplied by the caller.
var Module = fx.Options(
	fx.Provide(NewServerConfigProvider),
	fx.Provide(NewManagementConfigProvider),
)
