package oci

import (
	"fmt"

	"github.com/oracle/oci-go-sdk/v65/audit"
	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/identity"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
)

// Client bundles the OCI service clients one audit run needs.
type Client struct {
	Identity      identity.IdentityClient
	Audit         audit.AuditClient
	ObjectStorage objectstorage.ObjectStorageClient
	TenancyOCID   string
	Region        string
}

// NewClient builds the service clients from an OCI config file profile.
// An explicit region overrides the profile's region on every client.
func NewClient(configFile, profile, region string) (*Client, error) {
	provider, err := common.ConfigurationProviderFromFileWithProfile(configFile, profile, "")
	if err != nil {
		return nil, fmt.Errorf("loading OCI config %s (profile %s): %w", configFile, profile, err)
	}

	tenancyOCID, err := provider.TenancyOCID()
	if err != nil {
		return nil, fmt.Errorf("resolving tenancy OCID: %w", err)
	}

	resolvedRegion := region
	if resolvedRegion == "" {
		resolvedRegion, err = provider.Region()
		if err != nil {
			return nil, fmt.Errorf("resolving region: %w", err)
		}
	}

	identityClient, err := identity.NewIdentityClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("creating identity client: %w", err)
	}
	auditClient, err := audit.NewAuditClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("creating audit client: %w", err)
	}
	storageClient, err := objectstorage.NewObjectStorageClientWithConfigurationProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("creating object storage client: %w", err)
	}

	if region != "" {
		identityClient.SetRegion(region)
		auditClient.SetRegion(region)
		storageClient.SetRegion(region)
	}

	return &Client{
		Identity:      identityClient,
		Audit:         auditClient,
		ObjectStorage: storageClient,
		TenancyOCID:   tenancyOCID,
		Region:        resolvedRegion,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
