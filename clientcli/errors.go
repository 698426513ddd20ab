package clientcli

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for input validation.
var (
	ErrNoIDs     = errors.New("no ids provided")
	ErrInvalidID = errors.New("invalid uuid")
)
