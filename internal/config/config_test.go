// SPDX-License-Identifier: MIT

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/rbcm/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8787", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, int64(64<<20), c.MaxBodyBytes)
	assert.Equal(t, 4, c.FusionWorkers)
	assert.Equal(t, 0.2, c.ClusterThreshold)
	assert.Equal(t, "rbcm", c.MetricsNamespace)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RBCM_ADDR", "127.0.0.1:9000")
	t.Setenv("RBCM_REQUEST_TIMEOUT", "250ms")
	t.Setenv("RBCM_FUSION_WORKERS", "16")
	t.Setenv("RBCM_CLUSTER_THRESHOLD", "0.5")

	c, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, 250*time.Millisecond, c.RequestTimeout)
	assert.Equal(t, 16, c.FusionWorkers)
	assert.Equal(t, 0.5, c.ClusterThreshold)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("RBCM_FUSION_WORKERS", "0")
	t.Setenv("RBCM_MAX_LOCATIONS", "-1")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RBCM_FUSION_WORKERS")
	assert.Contains(t, err.Error(), "RBCM_MAX_LOCATIONS")
}

func TestLoad_Unparseable(t *testing.T) {
	t.Setenv("RBCM_REQUEST_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ClusterThreshold(t *testing.T) {
	for _, v := range []string{"-0.1", "NaN", "Inf", "+Inf"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("RBCM_CLUSTER_THRESHOLD", v)

			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "RBCM_CLUSTER_THRESHOLD")
		})
	}
}
