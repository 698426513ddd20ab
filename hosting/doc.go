// Package hosting manages websites hosted on IPFS and their deployments.
//
// Files are uploaded to a website with the same session protocol storage
// buckets use, then Deploy publishes them to staging or production.
// Deployment listings filter on environment and status by symbolic name
// (TO_STAGING, SUCCESSFUL, ...), unlike every other filter which sends
// numeric values.
package hosting
