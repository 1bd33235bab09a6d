package service

import (
	"context"

	"viperrox/hostbot/model"

	"go.uber.org/zap"
)

// Delete removes a file record, frees its quota slot and cleans up the
// storage object. The object removal is best-effort: once the record is
// gone the slot is freed either way, a leftover object only wastes
// bucket space.
func (s *Service) Delete(ctx context.Context, ownerID int64, fileID uint) (*model.File, error) {
	f, err := s.Store.DeleteFile(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.Storage.Delete(ctx, f.StorageKey); err != nil {
		zap.L().Warn("Failed to delete storage object, continuing",
			zap.String("key", f.StorageKey),
			zap.Error(err))
	}

	return f, nil
}
