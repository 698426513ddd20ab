package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/apillon/apillon-go"
	"github.com/apillon/apillon-go/logging"
)

const (
	// DefaultChunkSize is the number of files uploaded together in one group.
	DefaultChunkSize = 10
	// DefaultConcurrency caps the PUT requests in flight across all groups.
	DefaultConcurrency = 20
	// DefaultPollInterval is the delay between file listings while awaiting CIDs.
	DefaultPollInterval = 2 * time.Second
	// DefaultAwaitTimeout bounds how long AwaitCID polls.
	DefaultAwaitTimeout = 60 * time.Second
)

// Options configures one upload session.
type Options struct {
	// WrapWithDirectory wraps the session's files into one IPFS directory.
	WrapWithDirectory bool
	// DirectoryPath is the bucket directory of the wrapped files.
	// Required when WrapWithDirectory is set.
	DirectoryPath string
	// AwaitCID polls the bucket's file listing until every uploaded file has a CID.
	AwaitCID bool
	// Matching overrides how files are paired with their targets.
	Matching Matching
	// PollInterval and AwaitTimeout tune AwaitCID; zero uses the defaults.
	PollInterval time.Duration
	AwaitTimeout time.Duration
}

// Result describes a finished upload session.
type Result struct {
	SessionUUID string
	Files       []File
}

// Uploader runs the session protocol against one bucket or website:
// request targets, PUT every file, end the session.
type Uploader struct {
	client    *apillon.Client
	prefix    string
	filesPath string

	ChunkSize   int
	Concurrency int
}

// New creates an Uploader for the resource at prefix (e.g. /storage/buckets/{uuid}).
func New(client *apillon.Client, prefix string) *Uploader {
	return &Uploader{
		client:      client,
		prefix:      prefix,
		ChunkSize:   DefaultChunkSize,
		Concurrency: DefaultConcurrency,
	}
}

// WithFilesPath sets the listing endpoint polled by AwaitCID.
func (u *Uploader) WithFilesPath(path string) *Uploader {
	u.filesPath = path
	return u
}

type sessionRequest struct {
	Files             []File `json:"files"`
	WrapWithDirectory bool   `json:"wrapWithDirectory,omitempty"`
	DirectoryPath     string `json:"directoryPath,omitempty"`
}

type sessionResponse struct {
	SessionUUID string   `json:"sessionUuid"`
	Files       []Target `json:"files"`
}

type endSessionRequest struct {
	DirectoryPath string `json:"directoryPath,omitempty"`
}

// UploadFromFolder enumerates root and uploads every file below it.
func (u *Uploader) UploadFromFolder(ctx context.Context, root string, opts Options) (*Result, error) {
	logger := u.client.Logger()
	logger.DebugContext(ctx, "preparing upload", "folder", root, "target", u.prefix)

	files, err := Enumerate(root)
	if err != nil {
		logger.ErrorContext(ctx, "read files failed", "folder", root, "err", err)
		return nil, err
	}
	return u.Upload(ctx, files, opts)
}

// Upload uploads files in one session. A failed PUT aborts the upload and
// leaves the session open on the server; nothing is retried. When only the
// end-session call fails, the partial Result is returned with the error and
// its SessionUUID can be passed to EndSession.
func (u *Uploader) Upload(ctx context.Context, files []File, opts Options) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("upload: no files: %w", apillon.ErrInvalidInput)
	}
	if opts.WrapWithDirectory && opts.DirectoryPath == "" {
		return nil, fmt.Errorf("upload: directory path is required when wrapping: %w", apillon.ErrInvalidInput)
	}
	if !apillon.IsValidVirtualPath(opts.DirectoryPath) {
		return nil, fmt.Errorf("upload: invalid directory path %q: %w", opts.DirectoryPath, apillon.ErrInvalidInput)
	}
	if opts.AwaitCID && u.filesPath == "" {
		return nil, fmt.Errorf("upload: awaiting CIDs is not supported here: %w", apillon.ErrInvalidInput)
	}
	for _, f := range files {
		if f.FileName == "" || !apillon.IsValidVirtualPath(f.Path) {
			return nil, fmt.Errorf("upload: invalid file %q: %w", f.Key(), apillon.ErrInvalidInput)
		}
	}

	logger := u.client.Logger()
	logger.DebugContext(ctx, "files to upload", "count", len(files))

	timer := logging.Start(ctx, logger, "upload session")

	var session sessionResponse
	err := u.client.Post(ctx, u.prefix+"/upload", sessionRequest{
		Files:             files,
		WrapWithDirectory: opts.WrapWithDirectory,
		DirectoryPath:     opts.DirectoryPath,
	}, &session)
	if err != nil {
		return nil, fmt.Errorf("request upload session: %w", err)
	}
	if session.SessionUUID == "" {
		return nil, &apillon.ProtocolError{Message: "upload session response has no session uuid"}
	}
	timer.Mark("got upload links", "session", session.SessionUUID)

	pairs, err := Match(files, session.Files, opts.Matching)
	if err != nil {
		return nil, err
	}

	if err := u.uploadAll(ctx, pairs); err != nil {
		return nil, err
	}
	timer.Mark("file upload complete", "files", len(pairs))

	result := &Result{
		SessionUUID: session.SessionUUID,
		Files:       make([]File, len(pairs)),
	}
	for i, p := range pairs {
		f := p.File
		f.FileUUID = p.Target.FileUUID
		f.Content = nil
		result.Files[i] = f
	}

	// The result is returned with the error so the session can be ended again.
	if err := u.EndSession(ctx, session.SessionUUID, opts.DirectoryPath); err != nil {
		return result, err
	}
	timer.Mark("session ended")

	if opts.AwaitCID {
		if err := u.awaitCID(ctx, result, opts); err != nil {
			return result, err
		}
	}

	timer.Stop("session", session.SessionUUID)
	return result, nil
}

// uploadAll dispatches every chunk concurrently. Within a chunk each file
// is its own PUT; the semaphore bounds the total number in flight.
func (u *Uploader) uploadAll(ctx context.Context, pairs []Pair) error {
	concurrency := u.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	g, gctx := errgroup.WithContext(ctx)
	for _, chunk := range Chunk(pairs, u.ChunkSize) {
		g.Go(func() error {
			cg, cctx := errgroup.WithContext(gctx)
			for _, p := range chunk {
				cg.Go(func() error {
					if err := sem.Acquire(cctx, 1); err != nil {
						return err
					}
					defer sem.Release(1)
					return u.put(cctx, p)
				})
			}
			return cg.Wait()
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("upload files: %w", err)
	}
	return nil
}

// put sends the raw bytes of one file to its pre-signed URL.
func (u *Uploader) put(ctx context.Context, p Pair) error {
	var (
		body io.Reader
		size int64
	)
	if p.File.Content != nil {
		body = bytes.NewReader(p.File.Content)
		size = int64(len(p.File.Content))
	} else {
		f, err := os.Open(p.File.LocalPath) //#nosec G304 -- LocalPath comes from Enumerate or the caller
		if err != nil {
			return &apillon.FilesystemError{Path: p.File.LocalPath, Err: err}
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return &apillon.FilesystemError{Path: p.File.LocalPath, Err: err}
		}
		body = f
		size = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.Target.URL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.ContentLength = size
	if size == 0 {
		req.Body = http.NoBody
	}
	contentType := p.Target.ContentType
	if contentType == "" {
		contentType = p.File.ContentType
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := u.client.HTTPClient().Do(req)
	if err != nil {
		return fmt.Errorf("put %s: %w", p.File.Key(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("put %s: %w", p.File.Key(), apillon.ParseServerError(resp.StatusCode, respBody))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// EndSession closes an upload session. The server must confirm it;
// otherwise ErrSessionNotEnded is returned and the caller may try again.
func (u *Uploader) EndSession(ctx context.Context, sessionUUID, directoryPath string) error {
	u.client.Logger().DebugContext(ctx, "closing session", "session", sessionUUID)

	var body any
	if directoryPath != "" {
		body = endSessionRequest{DirectoryPath: directoryPath}
	}

	raw, err := u.client.DoRaw(ctx, http.MethodPost, u.prefix+"/upload/"+sessionUUID+"/end", body)
	if err != nil {
		return fmt.Errorf("end upload session: %w", err)
	}
	if !apillon.Truthy(raw) {
		return fmt.Errorf("session %s: %w", sessionUUID, apillon.ErrSessionNotEnded)
	}
	return nil
}

// listedFile is the subset of a bucket file record AwaitCID needs.
type listedFile struct {
	FileUUID string `json:"fileUuid"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	CID      string `json:"CID"`
}

// awaitCID polls the session's file listing until each result file has a CID.
func (u *Uploader) awaitCID(ctx context.Context, result *Result, opts Options) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	timeout := opts.AwaitTimeout
	if timeout <= 0 {
		timeout = DefaultAwaitTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type filter struct {
		SessionUUID *string `query:"sessionUuid"`
		Limit       *int    `query:"limit"`
	}
	url := apillon.BuildURL(u.filesPath, filter{
		SessionUUID: &result.SessionUUID,
		Limit:       apillon.Ptr(max(len(result.Files), 1)),
	}, nil)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		var page apillon.List[listedFile]
		if err := u.client.Get(ctx, url, &page); err != nil {
			return fmt.Errorf("await cid: %w", err)
		}
		if fillCIDs(result, page.Items) {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("await cid: files still pending after %s: %w", timeout, ctx.Err())
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// fillCIDs copies CIDs from listed into result and reports whether all are known.
func fillCIDs(result *Result, listed []listedFile) bool {
	byUUID := make(map[string]string, len(listed))
	byKey := make(map[string]string, len(listed))
	for _, l := range listed {
		if l.CID == "" {
			continue
		}
		if l.FileUUID != "" {
			byUUID[l.FileUUID] = l.CID
		}
		byKey[apillon.JoinVirtualPath(l.Path, l.Name)] = l.CID
	}

	done := true
	for i := range result.Files {
		f := &result.Files[i]
		if f.CID != "" {
			continue
		}
		if cid, ok := byUUID[f.FileUUID]; ok && f.FileUUID != "" {
			f.CID = cid
		} else if cid, ok := byKey[f.Key()]; ok {
			f.CID = cid
		}
		if f.CID == "" {
			done = false
		}
	}
	return done
}

// MarshalJSON keeps only the fields the session request carries.
func (f File) MarshalJSON() ([]byte, error) {
	type wire struct {
		FileName    string `json:"fileName"`
		Path        string `json:"path,omitempty"`
		ContentType string `json:"contentType,omitempty"`
	}
	return json.Marshal(wire{FileName: f.FileName, Path: f.Path, ContentType: f.ContentType})
}
