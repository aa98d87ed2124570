package observability

import (
	"time"

	"resumechat/internal/config"
)

const (
	defaultServiceName        = "resumechat"
	defaultCollectionInterval = 15 * time.Second
)

// ObservabilityConfig is the flattened telemetry setup the manager runs with
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               config.OTLPConfig
}

// GetObservabilityConfig flattens the observability section. The app version
// stands in when no service version is configured.
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{ServiceVersion: version}.withDefaults()
	}

	obs := cfg.Observability
	out := ObservabilityConfig{
		ServiceName:        obs.ServiceName,
		ServiceVersion:     obs.ServiceVersion,
		ServiceInstance:    obs.ServiceInstance,
		Enabled:            obs.Enabled,
		ConsoleOutput:      obs.ConsoleOutput,
		PrettyPrint:        obs.Console.PrettyPrint,
		SampleRate:         obs.SampleRate,
		CollectionInterval: obs.Metrics.CollectionInterval,
		Prometheus: PrometheusConfig{
			Enabled:  obs.Prometheus.Enabled,
			Endpoint: obs.Prometheus.Endpoint,
			Port:     obs.Prometheus.Port,
		},
		OTLP: obs.OTLP,
	}
	if out.ServiceVersion == "" {
		out.ServiceVersion = version
	}
	return out.withDefaults()
}

func (c ObservabilityConfig) withDefaults() ObservabilityConfig {
	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
	if c.ServiceInstance == "" {
		c.ServiceInstance = c.ServiceName + "-1"
	}
	if c.SampleRate <= 0 || c.SampleRate > 1 {
		c.SampleRate = 1.0
	}
	if c.CollectionInterval <= 0 {
		c.CollectionInterval = defaultCollectionInterval
	}
	return c
}
