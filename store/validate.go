package store

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks one enumerated entry against the stored artifact: the
// artifact must exist, its bytes must match the recorded content hash, and
// the metadata must name the producing entity.
func Validate(ctx context.Context, s Store, entry Entry) error {
	if entry.Meta.Entity == "" {
		return fmt.Errorf("store: entry %s has no entity name", entry.Meta.Fingerprint)
	}
	artifact, err := s.Get(ctx, entry.Meta.Fingerprint)
	if err != nil {
		return fmt.Errorf("store: entry %s unreadable: %w", entry.Meta.Fingerprint, err)
	}
	if got := ContentHash(artifact.Value); got != entry.Meta.ContentHash {
		return fmt.Errorf("store: entry %s content hash mismatch: stored %s, computed %s",
			entry.Meta.Fingerprint, entry.Meta.ContentHash, got)
	}
	if artifact.Meta.Entity != entry.Meta.Entity {
		return fmt.Errorf("store: entry %s entity mismatch: artifact names %q, entry names %q",
			entry.Meta.Fingerprint, artifact.Meta.Entity, entry.Meta.Entity)
	}
	return nil
}

// ValidateAll enumerates a store and validates every entry, aggregating
// the problems found.
func ValidateAll(ctx context.Context, s Store) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}
	var result *multierror.Error
	for _, entry := range entries {
		if err := Validate(ctx, s, entry); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
