package config

import (
	"fmt"
	"os"
	"strconv"

	yaml "gopkg.in/yaml.v3"
)

// fileConfig is the YAML schema accepted through CONFIG_FILE.
type fileConfig struct {
	API struct {
		Port               string  `yaml:"port"`
		MaxUploadBytes     int64   `yaml:"maxUploadBytes"`
		RateLimitRPS       float64 `yaml:"rateLimitRPS"`
		RateLimitBurst     int     `yaml:"rateLimitBurst"`
		MaxInFlight        int     `yaml:"maxInFlight"`
		BackpressureWaitMS int     `yaml:"backpressureWaitMs"`
		MaxConnections     int     `yaml:"maxConnections"`
	} `yaml:"api"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Postgres struct {
		DSN string `yaml:"dsn"`
	} `yaml:"postgres"`

	NATS struct {
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"nats"`

	Storage struct {
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
		B2      struct {
			KeyID  string `yaml:"keyId"`
			AppKey string `yaml:"appKey"`
			Bucket string `yaml:"bucket"`
			APIURL string `yaml:"apiUrl"`
		} `yaml:"b2"`
	} `yaml:"storage"`

	Resilience struct {
		RetryMaxAttempts int   `yaml:"retryMaxAttempts"`
		BreakerEnabled   *bool `yaml:"breakerEnabled"`
	} `yaml:"resilience"`

	Async struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"async"`

	Worker struct {
		MetricsPort string `yaml:"metricsPort"`
	} `yaml:"worker"`
}

// loadFile parses the YAML file and flattens it onto env var names.
func loadFile(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc.values(), nil
}

func (fc fileConfig) values() map[string]string {
	out := map[string]string{}
	setString := func(key, v string) {
		if v != "" {
			out[key] = v
		}
	}
	setInt := func(key string, v int64) {
		if v != 0 {
			out[key] = strconv.FormatInt(v, 10)
		}
	}
	setBool := func(key string, v *bool) {
		if v != nil {
			out[key] = strconv.FormatBool(*v)
		}
	}

	setString("API_PORT", fc.API.Port)
	setInt("MAX_UPLOAD_BYTES", fc.API.MaxUploadBytes)
	if fc.API.RateLimitRPS != 0 {
		out["API_RATE_LIMIT_RPS"] = strconv.FormatFloat(fc.API.RateLimitRPS, 'f', -1, 64)
	}
	setInt("API_RATE_LIMIT_BURST", int64(fc.API.RateLimitBurst))
	setInt("API_MAX_IN_FLIGHT", int64(fc.API.MaxInFlight))
	setInt("API_BACKPRESSURE_WAIT_MS", int64(fc.API.BackpressureWaitMS))
	setInt("API_MAX_CONNECTIONS", int64(fc.API.MaxConnections))
	setString("LOG_LEVEL", fc.Log.Level)
	setString("POSTGRES_DSN", fc.Postgres.DSN)
	setString("NATS_URL", fc.NATS.URL)
	setString("NATS_SUBJECT", fc.NATS.Subject)
	setString("STORAGE_BACKEND", fc.Storage.Backend)
	setString("STORAGE_PATH", fc.Storage.Path)
	setString("B2_KEY_ID", fc.Storage.B2.KeyID)
	setString("B2_APP_KEY", fc.Storage.B2.AppKey)
	setString("B2_BUCKET", fc.Storage.B2.Bucket)
	setString("B2_API_URL", fc.Storage.B2.APIURL)
	setInt("RESILIENCE_RETRY_MAX_ATTEMPTS", int64(fc.Resilience.RetryMaxAttempts))
	setBool("RESILIENCE_BREAKER_ENABLED", fc.Resilience.BreakerEnabled)
	setBool("ASYNC_ENABLED", fc.Async.Enabled)
	setString("WORKER_METRICS_PORT", fc.Worker.MetricsPort)
	return out
}
