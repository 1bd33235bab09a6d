// Package service holds the file intake pipeline and the quota/referral
// engine. Handlers in the bot package stay thin and call into here.
package service

import (
	"context"

	"viperrox/hostbot/store"
)

// ObjectStorage is the slice of the storage client the pipeline needs.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// URLShortener produces short aliases for download URLs. Failures are
// never fatal, the caller keeps the long URL.
type URLShortener interface {
	Enabled() bool
	Shorten(ctx context.Context, longURL string) (string, error)
}

type Service struct {
	Store     *store.Store
	Storage   ObjectStorage
	Shortener URLShortener
}

func New(st *store.Store, storage ObjectStorage, shortener URLShortener) *Service {
	return &Service{
		Store:     st,
		Storage:   storage,
		Shortener: shortener,
	}
}
