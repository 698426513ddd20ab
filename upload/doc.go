// Package upload implements the bulk upload session shared by storage
// buckets and hosting websites.
//
// A session has three steps. The file list is posted to {prefix}/upload and
// the API answers with a session uuid and one pre-signed URL per file. Every
// file is then PUT to its URL, in chunks of ten dispatched concurrently and
// capped by a global semaphore. Finally {prefix}/upload/{session}/end closes
// the session; only after that does the platform start pinning the files.
//
// Targets are paired with local files by their full virtual path, never by
// position, since the API does not keep the request order. MatchByFileName
// keeps the older name-only pairing for callers that depend on it.
//
// A failed PUT aborts the upload before the session is ended, which leaves
// the session open on the server. Nothing is retried.
//
// Usage:
//
//	u := upload.New(client, "/storage/buckets/"+bucketUUID)
//	res, err := u.UploadFromFolder(ctx, "./public", upload.Options{})
package upload
