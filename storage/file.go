package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-cid"

	"github.com/apillon/apillon-go"
)

// Object is an item of a bucket content listing: *File or *Directory.
type Object interface {
	UUID() string
	Kind() ContentType
}

// File is a file stored in a bucket.
type File struct {
	apillon.Entity `json:"-"`

	BucketUUID    string     `json:"bucketUuid"`
	DirectoryUUID string     `json:"directoryUuid,omitempty"`
	Name          string     `json:"name"`
	Path          string     `json:"path,omitempty"`
	CID           string     `json:"CID,omitempty"`
	CIDv1         string     `json:"CIDv1,omitempty"`
	Status        FileStatus `json:"fileStatus"`
	Size          int64      `json:"size"`
	ContentType   string     `json:"contentType,omitempty"`
	Link          string     `json:"link,omitempty"`
}

func newFile(api *apillon.Client, bucketUUID, uuid string) *File {
	f := &File{Entity: apillon.NewEntity(api, uuid, prefix+"/"+bucketUUID+"/files/"+uuid)}
	f.BucketUUID = bucketUUID
	return f
}

func decodeFile(api *apillon.Client, bucketUUID, idKey string, raw json.RawMessage) (*File, error) {
	id, err := apillon.DecodeID(raw, idKey)
	if err != nil {
		return nil, err
	}
	f := newFile(api, bucketUUID, id)
	if err := apillon.PopulateJSON(f, raw); err != nil {
		return nil, err
	}
	return f, nil
}

// Kind reports ContentTypeFile.
func (f *File) Kind() ContentType { return ContentTypeFile }

// MarshalJSON includes the file uuid.
func (f *File) MarshalJSON() ([]byte, error) {
	type plain File
	return apillon.MarshalEntity("fileUuid", f.UUID(), (*plain)(f))
}

// Get fetches the file. The status always takes the server's value; the
// other fields are only filled while unset.
func (f *File) Get(ctx context.Context) (*File, error) {
	var raw json.RawMessage
	if err := f.Client().Get(ctx, f.APIPrefix(), &raw); err != nil {
		return nil, fmt.Errorf("get file %s: %w", f.UUID(), err)
	}

	// Older responses nest the record under "file" next to "fileStatus".
	var detail struct {
		Status *FileStatus     `json:"fileStatus"`
		File   json.RawMessage `json:"file"`
	}
	if err := json.Unmarshal(raw, &detail); err != nil {
		return nil, fmt.Errorf("decode file %s: %w", f.UUID(), err)
	}
	if detail.Status != nil {
		f.Status = *detail.Status
	}
	record := raw
	if len(detail.File) > 0 && string(detail.File) != "null" {
		record = detail.File
	}
	if err := apillon.PopulateJSON(f, record); err != nil {
		return nil, err
	}
	return f, nil
}

// Delete marks the file for deletion.
func (f *File) Delete(ctx context.Context) error {
	if err := f.Client().Delete(ctx, f.APIPrefix(), nil); err != nil {
		return fmt.Errorf("delete file %s: %w", f.UUID(), err)
	}
	return nil
}

// ParsedCID returns the file's content identifier, preferring CIDv1.
func (f *File) ParsedCID() (cid.Cid, error) {
	s := f.CIDv1
	if s == "" {
		s = f.CID
	}
	if s == "" {
		return cid.Undef, fmt.Errorf("file %s has no CID yet: %w", f.UUID(), apillon.ErrInvalidInput)
	}
	return apillon.ParseCID(s)
}

// Directory is a virtual directory inside a bucket.
type Directory struct {
	apillon.Entity `json:"-"`

	Name                string `json:"name"`
	ParentDirectoryUUID string `json:"parentDirectoryUuid,omitempty"`
	CID                 string `json:"CID,omitempty"`

	// Objects holds the content loaded by Get.
	Objects []Object `json:"-"`

	bucket *Bucket
}

func newDirectory(b *Bucket, uuid string) *Directory {
	return &Directory{
		Entity: apillon.NewEntity(b.Client(), uuid, b.APIPrefix()+"/directories/"+uuid),
		bucket: b,
	}
}

func decodeDirectory(b *Bucket, raw json.RawMessage) (*Directory, error) {
	id, err := apillon.DecodeID(raw, "uuid")
	if err != nil {
		return nil, err
	}
	d := newDirectory(b, id)
	if err := apillon.PopulateJSON(d, raw); err != nil {
		return nil, err
	}
	return d, nil
}

// Kind reports ContentTypeDirectory.
func (d *Directory) Kind() ContentType { return ContentTypeDirectory }

// MarshalJSON includes the directory uuid.
func (d *Directory) MarshalJSON() ([]byte, error) {
	type plain Directory
	return apillon.MarshalEntity("directoryUuid", d.UUID(), (*plain)(d))
}

// Get loads the first page of the directory's content into Objects.
func (d *Directory) Get(ctx context.Context) (*Directory, error) {
	page, err := d.Content(ctx, nil)
	if err != nil {
		return nil, err
	}
	d.Objects = page.Items
	return d, nil
}

// Content lists one level of the directory.
func (d *Directory) Content(ctx context.Context, filter *ContentFilter) (*apillon.List[Object], error) {
	f := ContentFilter{}
	if filter != nil {
		f = *filter
	}
	f.DirectoryUUID = apillon.Ptr(d.UUID())
	return d.bucket.GetObjects(ctx, &f)
}

// Delete marks the directory and everything below it for deletion.
func (d *Directory) Delete(ctx context.Context) error {
	if err := d.Client().Delete(ctx, d.APIPrefix(), nil); err != nil {
		return fmt.Errorf("delete directory %s: %w", d.UUID(), err)
	}
	return nil
}
