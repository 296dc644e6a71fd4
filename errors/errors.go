// Package errors defines all exported error sentinels for the meshskin library.
//
// This is the single source of truth for error values. Both the top-level
// meshskin package and internal packages import from here, ensuring
// errors.Is checks work across package boundaries.
package errors

import "errors"

// Configuration errors, reported before any parallel work starts.
var (
	ErrInvalidOption         = errors.New("meshskin: invalid option")
	ErrInvalidInput          = errors.New("meshskin: invalid input dataset")
	ErrUnsupportedDataset    = errors.New("meshskin: unsupported dataset type")
	ErrExcludedFacesMismatch = errors.New("meshskin: excluded faces do not match input dimensionality")
)

// Extraction errors
var (
	ErrNonLinearCell = errors.New("meshskin: non-linear cell requires delegation")
	ErrAborted       = errors.New("meshskin: extraction aborted")
	ErrPoolExhausted = errors.New("meshskin: face pool exhausted")
)

// Mesh file errors
var (
	ErrInvalidMagic   = errors.New("meshskin: invalid magic number")
	ErrInvalidVersion = errors.New("meshskin: unsupported version")
	ErrChecksumFailed = errors.New("meshskin: file checksum verification failed")
	ErrTruncatedFile  = errors.New("meshskin: mesh file is truncated")
	ErrCorruptedFile  = errors.New("meshskin: mesh file is corrupted")
	ErrFileClosed     = errors.New("meshskin: mesh file is closed")
)
