package config

import (
	"encoding/json"
	"fmt"
)

// ObservabilityConfig holds OTLP trace export configuration.
//
// Tracing uses a local collector for OTLP ingestion.
// See internal/observability for setup details.
type ObservabilityConfig struct {
	// APIKey authenticates against the collector (optional)
	APIKey string `mapstructure:"api_key" json:"api_key"` // SENSITIVE: masked in MarshalJSON
	// Endpoint is the collector OTLP HTTP endpoint (default: localhost:4318)
	Endpoint string `mapstructure:"endpoint" json:"endpoint"`
	// Environment is the deployment environment tag (default: dev)
	Environment string `mapstructure:"environment" json:"environment"`
	// ServiceName is the service name in the APM backend (default: codescope)
	ServiceName string `mapstructure:"service_name" json:"service_name"`
}

// MarshalJSON masks the API key.
func (o ObservabilityConfig) MarshalJSON() ([]byte, error) {
	type alias ObservabilityConfig
	a := alias(o)
	a.APIKey = maskSecret(a.APIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal observability config: %w", err)
	}
	return data, nil
}
