// Package pmsd is configuration of the pms server.
package pmsd

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Environment variables overriding secrets in the config file.
const (
	EnvPlatformToken = "PMS_PLATFORM_TOKEN"
	EnvDatabaseURL   = "PMS_DATABASE_URL"
	EnvPredictionURL = "PMS_PREDICTION_URL"
)

// load pms server config from a file.
//
// returns *Config, error:
//
//	When loading success, returns `(*Config, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadConfig(filepath string) (*Config, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

// Unmarshal reads config from yaml, with overrides from environment variables.
//
// Misconfigurations are returned as errors.
func Unmarshal(conf []byte) (out *Config, err error) {
	var m *ConfigMarshall
	if err := yaml.Unmarshal(conf, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = &ConfigMarshall{}
	}
	overrideByEnv(m)

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()
	return TrySeal(m), nil
}

func overrideByEnv(m *ConfigMarshall) {
	if v := os.Getenv(EnvPlatformToken); v != "" {
		if m.Platform == nil {
			m.Platform = &PlatformConfigMarshall{}
		}
		m.Platform.Token = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		if m.Database == nil {
			m.Database = &DatabaseConfigMarshall{}
		}
		m.Database.URL = v
	}
	if v := os.Getenv(EnvPredictionURL); v != "" {
		if m.Prediction == nil {
			m.Prediction = &PredictionConfigMarshall{}
		}
		m.Prediction.URL = v
	}
}
