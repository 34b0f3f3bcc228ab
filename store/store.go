// Package store persists computed artifacts keyed by fingerprint, across
// storage tiers (in-memory, local filesystem, remote object storage).
// Values are stored as canonical CBOR alongside a metadata document naming
// the producing entity.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid"
)

// ErrNotFound indicates that no artifact exists for a fingerprint.
var ErrNotFound = errors.New("store: artifact not found")

// Metadata describes a cached artifact.
type Metadata struct {
	ID          string    `cbor:"id"`
	Entity      string    `cbor:"entity"`
	Fingerprint string    `cbor:"fingerprint"`
	ContentHash string    `cbor:"content_hash"`
	CreatedAt   time.Time `cbor:"created_at"`
}

// Artifact is a cached value with its metadata. Value holds the
// CBOR-encoded bytes of the computed value.
type Artifact struct {
	Meta  Metadata
	Value []byte
}

// Entry describes one cached artifact during enumeration.
type Entry struct {
	Meta        Metadata
	Tier        string
	ArtifactURL string
}

// Store is one artifact storage tier.
type Store interface {
	// Name returns the tier name, e.g. "local" or "cloud".
	Name() string

	// Has reports whether an artifact exists for the fingerprint.
	Has(ctx context.Context, fingerprint string) (bool, error)

	// Get returns the artifact for the fingerprint, or ErrNotFound.
	Get(ctx context.Context, fingerprint string) (*Artifact, error)

	// Put stores an artifact. Storing an existing fingerprint overwrites.
	Put(ctx context.Context, artifact *Artifact) error

	// List enumerates all artifacts in this tier.
	List(ctx context.Context) ([]Entry, error)
}

// NewArtifact encodes a value and wraps it with metadata for the given
// entity and fingerprint.
func NewArtifact(entity, fingerprint string, value any) (*Artifact, error) {
	data, err := EncodeValue(value)
	if err != nil {
		return nil, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Meta: Metadata{
			ID:          id.String(),
			Entity:      entity,
			Fingerprint: fingerprint,
			ContentHash: ContentHash(data),
			// Second precision: CBOR epoch encoding drops anything finer.
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		},
		Value: data,
	}, nil
}
