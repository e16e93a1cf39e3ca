package configs

// Telemetry configures metrics and tracing.
type Telemetry struct {
	// MetricsEnabled exposes Prometheus metrics on /metrics.
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
	// OTelEndpoint is the OTLP/HTTP traces endpoint. Tracing is disabled
	// when empty.
	OTelEndpoint string  `env:"OTEL_ENDPOINT"`
	ServiceName  string  `env:"SERVICE_NAME" envDefault:"ad-campaigns"`
	SampleRatio  float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

// Payment configures the payment gateway stubs.
type Payment struct {
	// PaynowBaseURL is the base of the redirect and poll URLs handed out
	// for Paynow payments.
	PaynowBaseURL string `env:"PAYNOW_BASE_URL" envDefault:"https://www.paynow.co.zw/payment"`
}
