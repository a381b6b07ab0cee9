package oci

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/oracle/oci-go-sdk/v65/common"
	"github.com/oracle/oci-go-sdk/v65/objectstorage"
	"github.com/rs/zerolog"
)

// Uploader writes report artifacts to an Object Storage bucket under a
// fixed prefix.
type Uploader struct {
	client    objectstorage.ObjectStorageClient
	namespace string
	bucket    string
	prefix    string
}

// UploadResult describes one uploaded artifact.
type UploadResult struct {
	ObjectName string
	URI        string
}

func NewUploader(client objectstorage.ObjectStorageClient, namespace, bucket, prefix string) *Uploader {
	return &Uploader{client: client, namespace: namespace, bucket: bucket, prefix: prefix}
}

// ResolveNamespace returns the tenancy's Object Storage namespace.
func ResolveNamespace(ctx context.Context, client objectstorage.ObjectStorageClient) (string, error) {
	resp, err := client.GetNamespace(ctx, objectstorage.GetNamespaceRequest{})
	if err != nil {
		return "", fmt.Errorf("get namespace: %w", err)
	}
	return deref(resp.Value), nil
}

// DiscoverBuckets lists the distinct bucket names visible across the
// scoped compartments, sorted. Compartments the caller cannot list are
// skipped.
func DiscoverBuckets(
	ctx context.Context,
	client objectstorage.ObjectStorageClient,
	namespace string,
	compartmentIDs []string,
) []string {
	seen := make(map[string]bool)
	var buckets []string

	for _, compartmentID := range compartmentIDs {
		var page *string
		for {
			resp, err := client.ListBuckets(ctx, objectstorage.ListBucketsRequest{
				NamespaceName: common.String(namespace),
				CompartmentId: common.String(compartmentID),
				Page:          page,
			})
			if err != nil {
				zerolog.Ctx(ctx).Debug().Err(err).Str("compartment", compartmentID).
					Msg("bucket listing skipped")
				break
			}
			for _, bucket := range resp.Items {
				name := deref(bucket.Name)
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				buckets = append(buckets, name)
			}
			if resp.OpcNextPage == nil {
				break
			}
			page = resp.OpcNextPage
		}
	}

	sort.Strings(buckets)
	return buckets
}

// UploadFile puts a local file into the bucket under the configured
// prefix, keyed by the file's base name.
func (u *Uploader) UploadFile(ctx context.Context, path, contentType string) (*UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	objectName := filepath.Base(path)
	if u.prefix != "" {
		objectName = u.prefix + "/" + objectName
	}

	_, err = u.client.PutObject(ctx, objectstorage.PutObjectRequest{
		NamespaceName: common.String(u.namespace),
		BucketName:    common.String(u.bucket),
		ObjectName:    common.String(objectName),
		ContentLength: common.Int64(info.Size()),
		ContentType:   common.String(contentType),
		PutObjectBody: file,
	})
	if err != nil {
		return nil, fmt.Errorf("put object %s: %w", objectName, err)
	}

	return &UploadResult{
		ObjectName: objectName,
		URI:        fmt.Sprintf("oci://n/%s/b/%s/o/%s", u.namespace, u.bucket, objectName),
	}, nil
}
