// Package store wraps all metadata reads and writes. Counter fields
// (quota_used, quota_total, referral_count) are only ever mutated through
// conditional updates inside transactions so concurrent updates for the
// same user can't lose writes.
package store

import (
	"context"
	"errors"
	"time"

	"viperrox/hostbot/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrQuotaExceeded = errors.New("upload quota exceeded")
)

type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// User returns the user record for the given Telegram id.
func (s *Store) User(ctx context.Context, id int64) (*model.User, error) {
	var u model.User

	err := s.DB.WithContext(ctx).First(&u, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &u, nil
}

// EnsureUser creates the user with the base quota if it doesn't exist
// yet. Reports whether a new record was created. Safe to call on every
// /start, existing records are left untouched.
func (s *Store) EnsureUser(ctx context.Context, id int64, baseSlots int) (bool, error) {
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.User{
			ID:         id,
			QuotaTotal: baseSlots,
			CreatedAt:  time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

// ApplyReferral marks user as referred by referrer and credits the
// referrer's quota and referral count, all in one transaction. The
// referred_by write is guarded so a user can be referred at most once,
// which makes the whole operation idempotent. Self-referrals and
// referrals by unknown users report false without error.
func (s *Store) ApplyReferral(ctx context.Context, userID, referrerID int64, bonus int) (bool, error) {
	if userID == referrerID {
		return false, nil
	}

	credited := false

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referrer model.User
		if err := tx.First(&referrer, "id = ?", referrerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Model(model.User{}).
			Where("id = ? AND referred_by IS NULL", userID).
			Update("referred_by", referrerID)
		if res.Error != nil {
			return res.Error
		}

		// Zero rows means the user doesn't exist or already has a
		// referrer, either way no credit is due
		if res.RowsAffected == 0 {
			return nil
		}

		err := tx.Model(model.User{}).
			Where("id = ?", referrerID).
			Updates(map[string]any{
				"quota_total":    gorm.Expr("quota_total + ?", bonus),
				"referral_count": gorm.Expr("referral_count + ?", 1),
			}).
			Error
		if err != nil {
			return err
		}

		credited = true
		return nil
	})

	return credited, err
}

// RecordUpload inserts the file record and consumes one quota slot. The
// increment is conditional on quota_used < quota_total, so a concurrent
// upload that fills the last slot first surfaces as ErrQuotaExceeded
// here instead of overshooting the quota.
func (s *Store) RecordUpload(ctx context.Context, f *model.File) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(model.User{}).
			Where("id = ? AND quota_used < quota_total", f.OwnerID).
			Update("quota_used", gorm.Expr("quota_used + ?", 1))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(model.User{}).Where("id = ?", f.OwnerID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return ErrNotFound
			}
			return ErrQuotaExceeded
		}

		return tx.Create(f).Error
	})
}

// DeleteFile removes the file record and frees its quota slot, floored
// at zero. Returns the removed record so the caller can clean up the
// storage object. ErrNotFound covers both a missing file and a file
// owned by someone else.
func (s *Store) DeleteFile(ctx context.Context, ownerID int64, fileID uint) (*model.File, error) {
	var f model.File

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&f, "owner_id = ? AND id = ?", ownerID, fileID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Delete(model.File{}, f.ID).Error; err != nil {
			return err
		}

		return tx.Model(model.User{}).
			Where("id = ?", ownerID).
			Update("quota_used", gorm.Expr("MAX(quota_used - 1, 0)")).
			Error
	})
	if err != nil {
		return nil, err
	}

	return &f, nil
}

// ListFiles returns the owner's files in upload order.
func (s *Store) ListFiles(ctx context.Context, ownerID int64) ([]model.File, error) {
	var files []model.File

	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id asc").
		Find(&files).
		Error
	if err != nil {
		return nil, err
	}

	return files, nil
}

// GrantSlots raises a user's quota_total by the given amount.
func (s *Store) GrantSlots(ctx context.Context, userID int64, slots int) error {
	res := s.DB.WithContext(ctx).
		Model(model.User{}).
		Where("id = ?", userID).
		Update("quota_total", gorm.Expr("quota_total + ?", slots))
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Leaderboard returns up to limit users ordered by referral count,
// highest first. Ties break on ascending user id so the ordering is
// deterministic.
func (s *Store) Leaderboard(ctx context.Context, limit int) ([]model.User, error) {
	var users []model.User

	err := s.DB.WithContext(ctx).
		Order("referral_count desc, id asc").
		Limit(limit).
		Find(&users).
		Error
	if err != nil {
		return nil, err
	}

	return users, nil
}

// AllUserIDs returns every known user id, used for broadcast fan-out.
func (s *Store) AllUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64

	err := s.DB.WithContext(ctx).
		Model(model.User{}).
		Order("id asc").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
