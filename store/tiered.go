package store

import (
	"context"
	"errors"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Tiered combines stores in fastest-first order. Reads fall through the
// tiers and promote hits into the faster tiers; writes go to every tier.
type Tiered struct {
	tiers []Store
	log   zerolog.Logger
}

// TieredOption configures a Tiered store.
type TieredOption func(*Tiered)

// WithLogger sets the logger used for promotion failures.
func WithLogger(log zerolog.Logger) TieredOption {
	return func(t *Tiered) {
		t.log = log
	}
}

// NewTiered creates a tiered store over the given tiers, fastest first.
func NewTiered(tiers []Store, opts ...TieredOption) *Tiered {
	t := &Tiered{tiers: tiers, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tiered) Name() string {
	return "tiered"
}

func (t *Tiered) Has(ctx context.Context, fingerprint string) (bool, error) {
	for _, tier := range t.tiers {
		found, err := tier.Has(ctx, fingerprint)
		if err != nil {
			return false, err
		}
		if found {
			return true, nil
		}
	}
	return false, nil
}

func (t *Tiered) Get(ctx context.Context, fingerprint string) (*Artifact, error) {
	for i, tier := range t.tiers {
		artifact, err := tier.Get(ctx, fingerprint)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		// Promote into the faster tiers so the next read short-circuits.
		for _, faster := range t.tiers[:i] {
			if promoteErr := faster.Put(ctx, artifact); promoteErr != nil {
				t.log.Warn().
					Err(promoteErr).
					Str("tier", faster.Name()).
					Str("fingerprint", fingerprint).
					Msg("artifact promotion failed")
			}
		}
		return artifact, nil
	}
	return nil, ErrNotFound
}

func (t *Tiered) Put(ctx context.Context, artifact *Artifact) error {
	var result *multierror.Error
	for _, tier := range t.tiers {
		if err := tier.Put(ctx, artifact); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (t *Tiered) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var result *multierror.Error
	for _, tier := range t.tiers {
		tierEntries, err := tier.List(ctx)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		entries = append(entries, tierEntries...)
	}
	return entries, result.ErrorOrNil()
}
