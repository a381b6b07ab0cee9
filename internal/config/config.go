package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds the environment-driven settings for an audit run.
type AppConfig struct {
	OCIConfigFile          string
	OCIConfigProfile       string
	OCIRegion              string
	RootCompartmentOCID    string
	IncludeSubcompartments bool
	AuditLookbackHours     int
	OutputDir              string
	ObjectStorageNamespace string
	ObjectStorageBucket    string
	ObjectStoragePrefix    string
	AutoDiscoverBucket     bool
	FailOnUploadError      bool
}

// FromEnv loads configuration from the environment, reading a .env file
// first when one is present. Variables already set in the environment
// win over .env values.
func FromEnv() (*AppConfig, error) {
	_ = godotenv.Load()

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve home directory: %w", err)
	}

	lookback, err := envInt("OCI_AUDIT_LOOKBACK_HOURS", 24)
	if err != nil {
		return nil, err
	}

	return &AppConfig{
		OCIConfigFile:          envString("OCI_CONFIG_FILE", filepath.Join(home, ".oci", "config")),
		OCIConfigProfile:       envString("OCI_CONFIG_PROFILE", "DEFAULT"),
		OCIRegion:              envString("OCI_REGION", ""),
		RootCompartmentOCID:    envString("OCI_ROOT_COMPARTMENT_OCID", ""),
		IncludeSubcompartments: envBool("OCI_INCLUDE_SUBCOMPARTMENTS", true),
		AuditLookbackHours:     lookback,
		OutputDir:              envString("OCI_OUTPUT_DIR", "output"),
		ObjectStorageNamespace: envString("OCI_OBJECT_STORAGE_NAMESPACE", ""),
		ObjectStorageBucket:    envString("OCI_OBJECT_STORAGE_BUCKET", ""),
		ObjectStoragePrefix:    strings.Trim(envString("OCI_OBJECT_STORAGE_PREFIX", "iam-policy-drift-audit"), "/"),
		AutoDiscoverBucket:     envBool("OCI_AUTO_DISCOVER_BUCKET", true),
		FailOnUploadError:      envBool("OCI_FAIL_ON_UPLOAD_ERROR", true),
	}, nil
}

func envString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, value)
	}
	return parsed, nil
}
