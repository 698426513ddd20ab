package clientcli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/cloudfunctions"
	"github.com/apillon/apillon-go/hosting"
	"github.com/apillon/apillon-go/nft"
	"github.com/apillon/apillon-go/storage"
)

// Client bundles the service modules behind one authenticated API client.
type Client struct {
	api *apillon.Client

	Storage        *storage.Storage
	Hosting        *hosting.Hosting
	NFT            *nft.NFT
	CloudFunctions *cloudfunctions.CloudFunctions
}

// New creates a Client for cfg.
func New(cfg *apillon.Config, opts ...apillon.Option) (*Client, error) {
	api, err := apillon.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:            api,
		Storage:        storage.New(api),
		Hosting:        hosting.New(api),
		NFT:            nft.New(api),
		CloudFunctions: cloudfunctions.New(api),
	}, nil
}

// API returns the underlying API client.
func (c *Client) API() *apillon.Client {
	return c.api
}

// VerifyCredentials issues the cheapest authenticated call to check that the
// key pair is accepted.
func (c *Client) VerifyCredentials(ctx context.Context) error {
	_, err := c.Storage.ListBuckets(ctx, &storage.BucketFilter{
		Pagination: apillon.Pagination{Limit: apillon.Ptr(1)},
	})
	return err
}

// DeleteResult represents the result of deleting a single file.
type DeleteResult struct {
	UUID    string `json:"fileUuid"`
	Deleted bool   `json:"deleted"`
	Err     error  `json:"-"` // nil on success
}

// DeleteFiles deletes every file of a bucket, continuing past failures.
func (c *Client) DeleteFiles(ctx context.Context, bucketUUID string, fileUUIDs []string) ([]DeleteResult, error) {
	if len(fileUUIDs) == 0 {
		return nil, ErrNoIDs
	}

	bucket := c.Storage.Bucket(bucketUUID)
	results := make([]DeleteResult, len(fileUUIDs))
	for i, id := range fileUUIDs {
		results[i] = DeleteResult{UUID: id}
		if err := bucket.DeleteFile(ctx, id); err != nil {
			results[i].Err = err
			continue
		}
		results[i].Deleted = true
	}
	return results, nil
}

// HasDeleteErrors reports whether any delete failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for i := range results {
		if results[i].Err != nil {
			return true
		}
	}
	return false
}

// ValidateIDs checks that every argument is a UUID.
func ValidateIDs(ids ...string) error {
	for _, id := range ids {
		if err := uuid.Validate(id); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidID, id)
		}
	}
	return nil
}
