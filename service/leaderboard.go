package service

import (
	"context"
)

const defaultLeaderboardSize = 10

type LeaderboardEntry struct {
	UserID    int64
	Referrals int
}

// Leaderboard returns up to limit users with the most referrals,
// ties broken by ascending user id. A non-positive limit means the
// default of 10.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}

	users, err := s.Store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, LeaderboardEntry{
			UserID:    u.ID,
			Referrals: u.ReferralCount,
		})
	}

	return entries, nil
}

// GrantSlots raises a user's quota, used by the admin /addslots command.
func (s *Service) GrantSlots(ctx context.Context, userID int64, slots int) error {
	return s.Store.GrantSlots(ctx, userID, slots)
}
