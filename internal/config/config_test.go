package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "DEFAULT", cfg.OCIConfigProfile)
	assert.True(t, cfg.IncludeSubcompartments)
	assert.Equal(t, 24, cfg.AuditLookbackHours)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "iam-policy-drift-audit", cfg.ObjectStoragePrefix)
	assert.True(t, cfg.AutoDiscoverBucket)
	assert.True(t, cfg.FailOnUploadError)
	assert.Contains(t, cfg.OCIConfigFile, ".oci")
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("OCI_CONFIG_PROFILE", "AUDIT")
	t.Setenv("OCI_REGION", "eu-frankfurt-1")
	t.Setenv("OCI_INCLUDE_SUBCOMPARTMENTS", "no")
	t.Setenv("OCI_AUDIT_LOOKBACK_HOURS", "72")
	t.Setenv("OCI_OBJECT_STORAGE_PREFIX", "/reports/iam/")
	t.Setenv("OCI_FAIL_ON_UPLOAD_ERROR", "0")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "AUDIT", cfg.OCIConfigProfile)
	assert.Equal(t, "eu-frankfurt-1", cfg.OCIRegion)
	assert.False(t, cfg.IncludeSubcompartments)
	assert.Equal(t, 72, cfg.AuditLookbackHours)
	assert.Equal(t, "reports/iam", cfg.ObjectStoragePrefix)
	assert.False(t, cfg.FailOnUploadError)
}

func TestFromEnvBoolSpellings(t *testing.T) {
	for _, value := range []string{"1", "true", "YES", "y", "On"} {
		t.Setenv("OCI_AUTO_DISCOVER_BUCKET", value)
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.AutoDiscoverBucket, "value %q should parse as true", value)
	}

	t.Setenv("OCI_AUTO_DISCOVER_BUCKET", "definitely")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.AutoDiscoverBucket)
}

func TestFromEnvRejectsBadLookback(t *testing.T) {
	t.Setenv("OCI_AUDIT_LOOKBACK_HOURS", "one-day")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OCI_AUDIT_LOOKBACK_HOURS")
}
