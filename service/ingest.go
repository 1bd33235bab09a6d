package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"viperrox/hostbot/model"
	"viperrox/hostbot/store"
	"viperrox/hostbot/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

var ErrStorageUpload = errors.New("storage upload failed")

// Ingest validates an upload, hosts the HTML payload and records it.
//
// Nothing is written anywhere until validation and the quota precheck
// pass. A storage failure aborts before any metadata is touched, so no
// quota is consumed. If the metadata write fails after a successful
// upload the object stays behind as an orphan, there is no compensating
// delete.
func (s *Service) Ingest(ctx context.Context, ownerID int64, filename string, raw []byte) (*model.File, error) {
	name, payload, err := validators.FileValidator(filename, raw)
	if err != nil {
		return nil, err
	}

	u, err := s.Store.User(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if u.QuotaUsed >= u.QuotaTotal {
		return nil, store.ErrQuotaExceeded
	}

	id, err := gonanoid.New(10)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("uploads/%d/%s_%s", ownerID, id, name)

	url, err := s.Storage.Put(ctx, key, payload, "text/html")
	if err != nil {
		return nil, fmt.Errorf("%w, %v", ErrStorageUpload, err)
	}

	shortURL := url
	if s.Shortener != nil && s.Shortener.Enabled() {
		alias, err := s.Shortener.Shorten(ctx, url)
		if err != nil {
			zap.L().Warn("URL shortening failed, handing out the long URL",
				zap.String("url", url),
				zap.Error(err))
		} else {
			shortURL = alias
		}
	}

	f := &model.File{
		OwnerID:      ownerID,
		StorageKey:   key,
		OriginalName: name,
		StorageURL:   url,
		ShortURL:     shortURL,
		Size:         int64(len(payload)),
		CreatedAt:    time.Now().UnixMilli(),
	}

	if err := s.Store.RecordUpload(ctx, f); err != nil {
		zap.L().Warn("Metadata write failed after upload, object is orphaned",
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	return f, nil
}
