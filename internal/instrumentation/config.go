package instrumentation

import "os"

// Exporter types for metrics.
const (
	ExporterPrometheus = "prometheus"
	ExporterStdout     = "stdout"
)

// Config holds the instrumentation settings.
type Config struct {
	// ServiceName identifies the service in exported metrics.
	ServiceName string

	// ServiceVersion is the running build version.
	ServiceVersion string

	// Enabled determines whether metrics are recorded at all.
	// Set INSTRUMENTATION_ENABLED=false to disable.
	Enabled bool

	// MetricsExporter selects "prometheus" (default) or "stdout".
	MetricsExporter string
}

// DefaultConfig returns the default configuration, honoring environment
// overrides.
func DefaultConfig() Config {
	cfg := Config{
		ServiceName:     "mailchat",
		ServiceVersion:  "dev",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
	}

	if os.Getenv("INSTRUMENTATION_ENABLED") == "false" {
		cfg.Enabled = false
	}
	if exporter := os.Getenv("METRICS_EXPORTER"); exporter != "" {
		cfg.MetricsExporter = exporter
	}

	return cfg
}
