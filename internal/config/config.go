// SPDX-License-Identifier: MIT

// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is the rbcm-srv configuration.
type Config struct {
	Addr             string        `envconfig:"RBCM_ADDR" default:":8787"`
	LogLevel         string        `envconfig:"RBCM_LOG_LEVEL" default:"info"`
	LogDevelopment   bool          `envconfig:"RBCM_LOG_DEVELOPMENT" default:"false"`
	RequestTimeout   time.Duration `envconfig:"RBCM_REQUEST_TIMEOUT" default:"30s"`
	ShutdownTimeout  time.Duration `envconfig:"RBCM_SHUTDOWN_TIMEOUT" default:"5s"`
	MaxBodyBytes     int64         `envconfig:"RBCM_MAX_BODY_BYTES" default:"67108864"`
	MaxLocations     int           `envconfig:"RBCM_MAX_LOCATIONS" default:"100000"`
	FusionWorkers    int           `envconfig:"RBCM_FUSION_WORKERS" default:"4"`
	ClusterThreshold float64       `envconfig:"RBCM_CLUSTER_THRESHOLD" default:"0.2"`
	MetricsNamespace string        `envconfig:"RBCM_METRICS_NAMESPACE" default:"rbcm"`
}

// Load processes the RBCM_* environment variables and validates the result.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("config: error loading environment variables: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("RBCM_REQUEST_TIMEOUT must be > 0"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("RBCM_SHUTDOWN_TIMEOUT must be > 0"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("RBCM_MAX_BODY_BYTES must be > 0"))
	}
	if c.MaxLocations <= 0 {
		errs = append(errs, errors.New("RBCM_MAX_LOCATIONS must be > 0"))
	}
	if c.FusionWorkers < 1 {
		errs = append(errs, errors.New("RBCM_FUSION_WORKERS must be >= 1"))
	}
	if !(c.ClusterThreshold >= 0) || math.IsInf(c.ClusterThreshold, 1) {
		errs = append(errs, errors.New("RBCM_CLUSTER_THRESHOLD must be finite and >= 0"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}

	return nil
}
