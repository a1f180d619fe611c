package config

// APIConfig defines the HTTP API listener settings.
type APIConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies the default listen address.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// RulesConfig points to an optional seed rule snapshot loaded at startup.
type RulesConfig struct {
	// Path is a JSON file holding the initial []PricingRule snapshot.
	// Empty means the engine starts with no rules.
	Path string `json:"path"`
}

// MetricsConfig defines settings for metrics sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies the default Prometheus listen address.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9091"
	}
}
