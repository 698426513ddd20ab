// Package storage wraps the storage buckets of the platform.
//
// A Bucket holds files and virtual directories. GetObjects lists one level
// and returns each item as a *File or *Directory, GetFilesRecursive walks
// the tree depth-first and keeps only the files. Uploads go through the
// upload package; UploadFromFolder and UploadFiles bind it to the bucket.
//
// Handles returned by Storage.Bucket, Bucket.File and friends carry only
// their uuid until Get fills the remaining fields. Get never overwrites a
// field that is already set, except status fields, which always follow the
// server.
package storage
