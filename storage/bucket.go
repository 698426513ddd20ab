package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/upload"
)

// Get fetches the bucket and fills the fields that are still unset.
func (b *Bucket) Get(ctx context.Context) (*Bucket, error) {
	var raw json.RawMessage
	if err := b.Client().Get(ctx, b.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get bucket %s: %w", b.UUID(), err)
	}
	if err := apillon.PopulateJSON(b, raw); err != nil {
		return nil, err
	}
	return b, nil
}

// GetObjects lists one level of the bucket: the root, or the directory named
// by filter.DirectoryUUID. Items are *File or *Directory.
func (b *Bucket) GetObjects(ctx context.Context, filter *ContentFilter) (*apillon.List[Object], error) {
	var raw apillon.RawList
	url := apillon.BuildURL(b.APIPrefix()+"/content", filter, nil)
	if err := b.Client().Get(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("list content of bucket %s: %w", b.UUID(), err)
	}
	return apillon.DecodeList(raw, b.decodeObject)
}

// GetFilesRecursive walks the directory tree depth-first starting at the
// level selected by filter and returns only the files. Each directory costs
// one request.
func (b *Bucket) GetFilesRecursive(ctx context.Context, filter *ContentFilter) ([]*File, error) {
	page, err := b.GetObjects(ctx, filter)
	if err != nil {
		return nil, err
	}

	var files []*File
	for _, obj := range page.Items {
		switch o := obj.(type) {
		case *File:
			files = append(files, o)
		case *Directory:
			nested, err := b.GetFilesRecursive(ctx, &ContentFilter{DirectoryUUID: apillon.Ptr(o.UUID())})
			if err != nil {
				return nil, err
			}
			files = append(files, nested...)
		}
	}
	return files, nil
}

// GetFiles lists the bucket's files regardless of directory.
func (b *Bucket) GetFiles(ctx context.Context, filter *FileFilter) (*apillon.List[*File], error) {
	var raw apillon.RawList
	if err := b.Client().Get(ctx, apillon.BuildURL(b.APIPrefix()+"/files", filter, nil), &raw); err != nil {
		return nil, fmt.Errorf("list files of bucket %s: %w", b.UUID(), err)
	}
	return apillon.DecodeList(raw, func(item json.RawMessage) (*File, error) {
		return decodeFile(b.Client(), b.UUID(), "fileUuid", item)
	})
}

// Uploader returns an upload pipeline bound to this bucket.
func (b *Bucket) Uploader() *upload.Uploader {
	return upload.New(b.Client(), b.APIPrefix()).WithFilesPath(b.APIPrefix() + "/files")
}

// UploadFromFolder uploads every file below root into the bucket.
func (b *Bucket) UploadFromFolder(ctx context.Context, root string, opts upload.Options) (*upload.Result, error) {
	return b.Uploader().UploadFromFolder(ctx, root, opts)
}

// UploadFiles uploads files whose content is held in memory or referenced by LocalPath.
func (b *Bucket) UploadFiles(ctx context.Context, files []upload.File, opts upload.Options) (*upload.Result, error) {
	return b.Uploader().Upload(ctx, files, opts)
}

// File returns a handle to a file of this bucket without fetching it.
func (b *Bucket) File(uuid string) *File {
	return newFile(b.Client(), b.UUID(), uuid)
}

// Directory returns a handle to a directory of this bucket without fetching it.
func (b *Bucket) Directory(uuid string) *Directory {
	return newDirectory(b, uuid)
}

// DeleteFile marks a file for deletion.
func (b *Bucket) DeleteFile(ctx context.Context, uuid string) error {
	return b.File(uuid).Delete(ctx)
}

// DeleteDirectory marks a directory and its content for deletion.
func (b *Bucket) DeleteDirectory(ctx context.Context, uuid string) error {
	return b.Directory(uuid).Delete(ctx)
}

// IPNS returns the IPNS records of this bucket.
func (b *Bucket) IPNS() *IPNSModule {
	return &IPNSModule{Module: apillon.NewModule(b.Client(), b.APIPrefix()+"/ipns"), bucketUUID: b.UUID()}
}

func (b *Bucket) decodeObject(item json.RawMessage) (Object, error) {
	var head struct {
		Type ContentType `json:"type"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return nil, fmt.Errorf("decode content type: %w", err)
	}

	switch head.Type {
	case ContentTypeFile:
		return decodeFile(b.Client(), b.UUID(), "uuid", item)
	case ContentTypeDirectory:
		return decodeDirectory(b, item)
	default:
		return nil, &apillon.ProtocolError{Message: fmt.Sprintf("unknown content type %d", int(head.Type))}
	}
}
