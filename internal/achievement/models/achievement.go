package models

import (
	dErrors "laurel/pkg/domain-errors"
)

// MaxMetadataURIBytes bounds the interned metadata reference. The registry
// stores a short pointer (for example a content-addressed IPFS URI prefix),
// never the metadata itself.
const MaxMetadataURIBytes = 32

// Achievement records that a user completed a course. Immutable once issued:
// the registry has no update or delete operation.
type Achievement struct {
	// ID is registry-assigned, unique, and strictly increasing in issuance
	// order starting at 1. IDs are always exactly 1..len of the sequence.
	ID uint32 `json:"id"`
	// CourseID is opaque to the registry; no course catalog is consulted.
	CourseID uint32 `json:"course_id"`
	// UserID is opaque to the registry; no user directory is consulted.
	UserID uint32 `json:"user_id"`
	// IssuedAt is the ledger clock reading at issuance, seconds since epoch.
	IssuedAt uint64 `json:"issued_at"`
	// MetadataURI points at off-registry metadata, at most
	// MaxMetadataURIBytes bytes.
	MetadataURI string `json:"metadata_uri"`
}

// ValidateMetadataURI enforces the encoding bound on the interned metadata
// reference. This is the only input constraint the registry applies: course
// and user identifiers are accepted unchecked.
func ValidateMetadataURI(uri string) error {
	if len(uri) > MaxMetadataURIBytes {
		return dErrors.New(dErrors.CodeBadRequest, "metadata_uri exceeds 32 bytes")
	}
	return nil
}
