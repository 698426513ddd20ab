// Package apillon is a Go client for the Apillon platform API: decentralized
// storage buckets, static website hosting, NFT collections and cloud functions.
//
// This package holds the transport and the pieces every resource module
// shares. The resource families live in sub-packages:
//
//   - storage: buckets, files, directories and IPNS records
//   - hosting: websites and their deployments
//   - nft: NFT collections, minting and transactions
//   - cloudfunctions: cloud functions and their jobs
//   - upload: the bulk upload pipeline used by storage and hosting
//
// # Key Components
//
//   - Client: authenticated HTTP adapter with uniform error translation
//   - Entity / Module: identity and API prefix shared by domain objects
//   - Populate / Merge: fill-only-unset merging of partial server records
//   - BuildURL: deterministic query string construction for list filters
//
// # Example Usage
//
//	client, err := apillon.New(&apillon.Config{
//		APIKey:    os.Getenv("APILLON_API_KEY"),
//		APISecret: os.Getenv("APILLON_API_SECRET"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	buckets, err := storage.New(client).ListBuckets(ctx, nil)
//
// A Client is never global; construct one per credential set and pass it to
// the module constructors.
//
// # Errors
//
// Non-2xx responses become *APIError; use errors.Is with ErrNotFound,
// ErrUnauthorized, ErrForbidden or ErrValidation. Local enumeration failures
// are *FilesystemError and unexpected response shapes are *ProtocolError.
// Nothing is retried.
package apillon
