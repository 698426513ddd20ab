package storage

import (
	"fmt"

	"github.com/apillon/apillon-go"
)

// FileStatus is the lifecycle state of a file. Transitions happen on the
// server; clients observe them through File.Get.
type FileStatus int

const (
	FileStatusUploadRequestGenerated       FileStatus = 1
	FileStatusUploaded                     FileStatus = 2
	FileStatusAvailableOnIPFS              FileStatus = 3
	FileStatusAvailableOnIPFSAndReplicated FileStatus = 4
	FileStatusMarkedForDeletion            FileStatus = 8
)

func (s FileStatus) String() string {
	switch s {
	case FileStatusUploadRequestGenerated:
		return "UPLOAD_REQUEST_GENERATED"
	case FileStatusUploaded:
		return "UPLOADED"
	case FileStatusAvailableOnIPFS:
		return "AVAILABLE_ON_IPFS"
	case FileStatusAvailableOnIPFSAndReplicated:
		return "AVAILABLE_ON_IPFS_AND_REPLICATED"
	case FileStatusMarkedForDeletion:
		return "MARKED_FOR_DELETION"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// ParseFileStatus accepts the symbolic name of a status.
func ParseFileStatus(s string) (FileStatus, error) {
	for _, st := range []FileStatus{
		FileStatusUploadRequestGenerated,
		FileStatusUploaded,
		FileStatusAvailableOnIPFS,
		FileStatusAvailableOnIPFSAndReplicated,
		FileStatusMarkedForDeletion,
	} {
		if st.String() == s {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown file status %q: %w", s, apillon.ErrInvalidInput)
}

// ContentType discriminates the items of a content listing.
type ContentType int

const (
	ContentTypeDirectory ContentType = 1
	ContentTypeFile      ContentType = 2
)

func (t ContentType) String() string {
	switch t {
	case ContentTypeDirectory:
		return "DIRECTORY"
	case ContentTypeFile:
		return "FILE"
	default:
		return fmt.Sprintf("ContentType(%d)", int(t))
	}
}

// BucketFilter filters ListBuckets.
type BucketFilter struct {
	apillon.Pagination
}

// ContentFilter filters a single-level content listing.
type ContentFilter struct {
	DirectoryUUID     *string `query:"directoryUuid"`
	MarkedForDeletion *bool   `query:"markedForDeletion"`
	apillon.Pagination
}

// FileFilter filters the flat file listing of a bucket.
type FileFilter struct {
	FileStatus  *FileStatus `query:"fileStatus"`
	SessionUUID *string     `query:"sessionUuid"`
	apillon.Pagination
}

// IPNSFilter filters the IPNS records of a bucket.
type IPNSFilter struct {
	IPNSName  *string `query:"ipnsName"`
	IPNSValue *string `query:"ipnsValue"`
	apillon.Pagination
}
