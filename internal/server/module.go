package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/k8poc/backend/internal/config"
	"github.com/k8poc/backend/internal/metrics"
)

// PublicServerParams are the Fx dependencies of the public listener.
type PublicServerParams struct {
	fx.In
	Cfg      *config.ServerConfig
	Recorder metrics.HTTPRecorder
	Tracer   *metrics.TracerProvider
}

// PublicServerResult names the public server so it can be told apart from the management one.
type PublicServerResult struct {
	fx.Out
	Server *HTTPServer `name:"publicServer"`
}

// ProvidePublicServer assembles router, tracing wrapper and listener.
func ProvidePublicServer(p PublicServerParams) PublicServerResult {
	gin.SetMode(p.Cfg.Mode)
	router := NewRouter(NewHandler(), p.Recorder)
	return PublicServerResult{Server: NewPublicServer(p.Cfg, NewPublicHandler(router, p.Tracer))}
}

type publicServerHook struct {
	fx.In
	Lifecycle fx.Lifecycle
	Server    *HTTPServer `name:"publicServer"`
}

// RegisterPublicServer starts the public listener with the application and stops it first on shutdown.
func RegisterPublicServer(p publicServerHook) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: p.Server.Start,
		OnStop:  p.Server.Stop,
	})
}

// Module provides and starts the public HTTP server.
var Module = fx.Options(
	fx.Provide(ProvidePublicServer),
	fx.Invoke(RegisterPublicServer),
)
