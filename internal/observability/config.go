package observability

import (
	"time"

	"resumeforge/internal/config"
)

// Settings is the flattened observability configuration the manager runs on
type Settings struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	TracingEnabled     bool
	MetricsEnabled     bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// GetSettings derives manager settings from the loaded configuration. The
// application version fills in a missing service version.
func GetSettings(cfg *config.Config, version string) Settings {
	if cfg == nil {
		return Settings{
			ServiceName:        "resumeforge",
			ServiceVersion:     version,
			SampleRate:         1.0,
			CollectionInterval: 30 * time.Second,
			Prometheus:         GetPrometheusConfig(nil),
		}
	}

	obs := cfg.Observability

	serviceVersion := obs.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	interval := obs.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return Settings{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		TracingEnabled:     obs.Tracing.Enabled,
		MetricsEnabled:     obs.Metrics.Enabled,
		ConsoleOutput:      obs.Console.Enabled,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.Tracing.SampleRate,
		CollectionInterval: interval,
		Prometheus:         GetPrometheusConfig(cfg),
		OTLP:               obs.OTLP,
	}
}
