package driven

import "errors"

// ErrNotFound is returned by write operations that address a missing record.
var ErrNotFound = errors.New("not found")

// ErrStatusConflict is returned by CredentialStore.UpdateStatus when the stored
// status no longer matches the expected one.
var ErrStatusConflict = errors.New("stored status changed")

// ErrDuplicateCode is returned by CredentialStore.Create when the verification
// code collides with an existing credential.
var ErrDuplicateCode = errors.New("verification code already in use")
