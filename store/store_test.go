package store

import (
	"context"
	"path/filepath"
	"testing"

	"viperrox/hostbot/model"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.User{}, model.File{}))

	return New(db)
}

func TestEnsureUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureUser(ctx, 100, 10)
	require.NoError(t, err)
	require.True(t, created)

	u, err := s.User(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 10, u.QuotaTotal)
	require.Equal(t, 0, u.QuotaUsed)
	require.Equal(t, 0, u.ReferralCount)
	require.Nil(t, u.ReferredBy)

	// Second call leaves the record alone
	require.NoError(t, s.GrantSlots(ctx, 100, 5))

	created, err = s.EnsureUser(ctx, 100, 10)
	require.NoError(t, err)
	require.False(t, created)

	u, err = s.User(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, 15, u.QuotaTotal)
}

func TestUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.User(context.Background(), 404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestApplyReferral_CreditsOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 10)
	require.NoError(t, err)
	_, err = s.EnsureUser(ctx, 2, 10)
	require.NoError(t, err)

	credited, err := s.ApplyReferral(ctx, 2, 1, 3)
	require.NoError(t, err)
	require.True(t, credited)

	referrer, err := s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 13, referrer.QuotaTotal)
	require.Equal(t, 1, referrer.ReferralCount)

	referred, err := s.User(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, referred.ReferredBy)
	require.Equal(t, int64(1), *referred.ReferredBy)

	// Same code again, and a different code, neither re-credits
	credited, err = s.ApplyReferral(ctx, 2, 1, 3)
	require.NoError(t, err)
	require.False(t, credited)

	_, err = s.EnsureUser(ctx, 3, 10)
	require.NoError(t, err)
	credited, err = s.ApplyReferral(ctx, 2, 3, 3)
	require.NoError(t, err)
	require.False(t, credited)

	referrer, err = s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 13, referrer.QuotaTotal)
	require.Equal(t, 1, referrer.ReferralCount)
}

func TestApplyReferral_SelfReferral(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 10)
	require.NoError(t, err)

	credited, err := s.ApplyReferral(ctx, 1, 1, 3)
	require.NoError(t, err)
	require.False(t, credited)

	u, err := s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 10, u.QuotaTotal)
	require.Equal(t, 0, u.ReferralCount)
	require.Nil(t, u.ReferredBy)
}

func TestApplyReferral_UnknownReferrer(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 2, 10)
	require.NoError(t, err)

	credited, err := s.ApplyReferral(ctx, 2, 999, 3)
	require.NoError(t, err)
	require.False(t, credited)

	u, err := s.User(ctx, 2)
	require.NoError(t, err)
	require.Nil(t, u.ReferredBy)
}

func TestRecordUpload_ConsumesQuota(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 2)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		err = s.RecordUpload(ctx, &model.File{
			OwnerID:      1,
			StorageKey:   "k",
			OriginalName: "a.html",
		})
		require.NoError(t, err)
	}

	u, err := s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, u.QuotaUsed)

	// Quota is full, the guarded increment must refuse
	err = s.RecordUpload(ctx, &model.File{OwnerID: 1, StorageKey: "k3"})
	require.ErrorIs(t, err, ErrQuotaExceeded)

	u, err = s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, u.QuotaUsed)

	files, err := s.ListFiles(ctx, 1)
	require.NoError(t, err)
	require.Len(t, files, 2)
}

func TestRecordUpload_UnknownOwner(t *testing.T) {
	s := newTestStore(t)

	err := s.RecordUpload(context.Background(), &model.File{OwnerID: 42, StorageKey: "k"})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 10)
	require.NoError(t, err)

	f := &model.File{OwnerID: 1, StorageKey: "uploads/1/x_a.html", OriginalName: "a.html"}
	require.NoError(t, s.RecordUpload(ctx, f))

	got, err := s.DeleteFile(ctx, 1, f.ID)
	require.NoError(t, err)
	require.Equal(t, "uploads/1/x_a.html", got.StorageKey)

	files, err := s.ListFiles(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, files)

	u, err := s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, u.QuotaUsed)
}

func TestDeleteFile_NotFoundAndOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 10)
	require.NoError(t, err)
	_, err = s.EnsureUser(ctx, 2, 10)
	require.NoError(t, err)

	f := &model.File{OwnerID: 1, StorageKey: "k"}
	require.NoError(t, s.RecordUpload(ctx, f))

	_, err = s.DeleteFile(ctx, 1, 999)
	require.ErrorIs(t, err, ErrNotFound)

	// Someone else's file looks exactly like a missing one
	_, err = s.DeleteFile(ctx, 2, f.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteFile_QuotaFloorsAtZero(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.EnsureUser(ctx, 1, 10)
	require.NoError(t, err)

	// A file record without a matching quota debit, the decrement must
	// not push quota_used below zero
	require.NoError(t, s.DB.Create(&model.File{OwnerID: 1, StorageKey: "stray"}).Error)

	var f model.File
	require.NoError(t, s.DB.First(&f, "owner_id = ?", 1).Error)

	_, err = s.DeleteFile(ctx, 1, f.ID)
	require.NoError(t, err)

	u, err := s.User(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, u.QuotaUsed)
}

func TestLeaderboard_Ordering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// A(10) and B(20) tie on 5 referrals, C(30) has 2. Ties break on
	// ascending id, so A comes first
	seed := []struct {
		id    int64
		count int
	}{
		{20, 5}, // B
		{10, 5}, // A
		{30, 2}, // C
	}

	for _, u := range seed {
		_, err := s.EnsureUser(ctx, u.id, 10)
		require.NoError(t, err)
		require.NoError(t, s.DB.Model(model.User{}).Where("id = ?", u.id).
			Update("referral_count", u.count).Error)
	}

	users, err := s.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, users, 3)
	require.Equal(t, int64(10), users[0].ID)
	require.Equal(t, int64(20), users[1].ID)
	require.Equal(t, int64(30), users[2].ID)
}

func TestLeaderboard_TieBreaksAscending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		_, err := s.EnsureUser(ctx, id, 10)
		require.NoError(t, err)
	}

	users, err := s.Leaderboard(ctx, 2)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, int64(1), users[0].ID)
	require.Equal(t, int64(2), users[1].ID)
}

func TestGrantSlots_UnknownUser(t *testing.T) {
	s := newTestStore(t)

	err := s.GrantSlots(context.Background(), 404, 5)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAllUserIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []int64{5, 3, 9} {
		_, err := s.EnsureUser(ctx, id, 10)
		require.NoError(t, err)
	}

	ids, err := s.AllUserIDs(ctx)
	require.NoError(t, err)
	require.Equal(t, []int64{3, 5, 9}, ids)
}
