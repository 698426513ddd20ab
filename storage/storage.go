package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apillon/apillon-go"
)

const prefix = "/storage/buckets"

// Storage is the entry point to buckets.
type Storage struct {
	apillon.Module
}

// New creates the storage module.
func New(api *apillon.Client) *Storage {
	return &Storage{Module: apillon.NewModule(api, prefix)}
}

// Bucket returns a handle to the bucket with the given uuid without fetching it.
func (s *Storage) Bucket(uuid string) *Bucket {
	return newBucket(s.Client(), uuid)
}

// ListBuckets returns one page of buckets.
func (s *Storage) ListBuckets(ctx context.Context, filter *BucketFilter) (*apillon.List[*Bucket], error) {
	var raw apillon.RawList
	if err := s.Client().Get(ctx, apillon.BuildURL(s.APIPrefix(), filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	return apillon.DecodeList(raw, func(item json.RawMessage) (*Bucket, error) {
		return decodeBucket(s.Client(), item)
	})
}

// CreateBucketRequest is the body of CreateBucket.
type CreateBucketRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty" validate:"max=1000"`
}

// CreateBucket creates a storage bucket.
func (s *Storage) CreateBucket(ctx context.Context, req CreateBucketRequest) (*Bucket, error) {
	if err := apillon.ValidateRequest(req); err != nil {
		return nil, err
	}
	var raw json.RawMessage
	if err := s.Client().Post(ctx, s.APIPrefix(), req, &raw); err != nil {
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return decodeBucket(s.Client(), raw)
}

// Bucket is a storage bucket. Fields are filled from list and get responses.
type Bucket struct {
	apillon.Entity `json:"-"`

	Name        string    `json:"name"`
	Description string    `json:"description"`
	BucketType  int       `json:"bucketType"`
	Size        int64     `json:"size"`
	MaxSize     int64     `json:"maxSize"`
	CreateTime  time.Time `json:"createTime"`
}

func newBucket(api *apillon.Client, uuid string) *Bucket {
	return &Bucket{Entity: apillon.NewEntity(api, uuid, prefix+"/"+uuid)}
}

func decodeBucket(api *apillon.Client, raw json.RawMessage) (*Bucket, error) {
	id, err := apillon.DecodeID(raw, "bucketUuid")
	if err != nil {
		return nil, err
	}
	b := newBucket(api, id)
	if err := apillon.PopulateJSON(b, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// MarshalJSON includes the bucket uuid.
func (b *Bucket) MarshalJSON() ([]byte, error) {
	type plain Bucket
	return apillon.MarshalEntity("bucketUuid", b.UUID(), (*plain)(b))
}
