package upload

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/apillon/apillon-go"
)

// File is one file of an upload session. Content is used when set,
// otherwise the bytes are streamed from LocalPath at upload time.
type File struct {
	FileName    string `json:"fileName"`
	Path        string `json:"path,omitempty"`
	ContentType string `json:"contentType,omitempty"`

	LocalPath string `json:"-"`
	Content   []byte `json:"-"`
	Size      int64  `json:"-"`

	// Filled in from the session response and, with AwaitCID, from the file listing.
	FileUUID string `json:"-"`
	CID      string `json:"-"`
}

// Key is the virtual path of the file inside the bucket: Path joined with FileName.
func (f File) Key() string {
	return apillon.JoinVirtualPath(f.Path, f.FileName)
}

// Enumerate walks root recursively and returns every regular file below it,
// sorted by virtual path. Path is the directory relative to root using
// forward slashes, empty for files directly in root.
func Enumerate(root string) ([]File, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, &apillon.FilesystemError{Path: root, Err: err}
	}
	if !info.IsDir() {
		return nil, &apillon.FilesystemError{Path: root, Err: errors.New("not a directory")}
	}

	var files []File
	walkErr := filepath.WalkDir(root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)

		fi, err := d.Info()
		if err != nil {
			return err
		}

		dir := path.Dir(rel)
		if dir == "." {
			dir = ""
		}
		files = append(files, File{
			FileName:    path.Base(rel),
			Path:        dir,
			ContentType: DetectContentType(rel),
			LocalPath:   p,
			Size:        fi.Size(),
		})
		return nil
	})
	if walkErr != nil {
		var fsErr *apillon.FilesystemError
		if errors.As(walkErr, &fsErr) {
			return nil, fsErr
		}
		return nil, &apillon.FilesystemError{Path: root, Err: walkErr}
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Key() < files[j].Key()
	})
	return files, nil
}

// DetectContentType returns the MIME type for a file name based on its extension.
func DetectContentType(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return "application/octet-stream"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return "application/octet-stream"
	}

	return mimeType
}
