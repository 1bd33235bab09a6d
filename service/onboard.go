package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// OnboardResult tells the caller what actually happened so it can word
// the welcome message and notify the referrer.
type OnboardResult struct {
	Created    bool
	Credited   bool
	ReferrerID int64
}

// Onboard makes sure the user exists and applies a referral code from
// the /start deep link. Calling it again, with the same code or any
// other, never re-applies a bonus: referred_by is written at most once.
// Malformed codes and self-referrals are ignored, not errors.
func (s *Service) Onboard(ctx context.Context, userID int64, startParam string) (OnboardResult, error) {
	created, err := s.Store.EnsureUser(ctx, userID, viper.GetInt("quota.base_slots"))
	if err != nil {
		return OnboardResult{}, err
	}

	res := OnboardResult{Created: created}

	startParam = strings.TrimSpace(startParam)
	if startParam == "" {
		return res, nil
	}

	referrerID, err := strconv.ParseInt(startParam, 10, 64)
	if err != nil || referrerID <= 0 {
		zap.L().Debug("Ignoring malformed referral code",
			zap.Int64("user_id", userID),
			zap.String("code", startParam))
		return res, nil
	}

	credited, err := s.Store.ApplyReferral(ctx, userID, referrerID, viper.GetInt("quota.referral_bonus"))
	if err != nil {
		return res, err
	}

	if credited {
		res.Credited = true
		res.ReferrerID = referrerID

		zap.L().Info("Referral credited",
			zap.Int64("user_id", userID),
			zap.Int64("referrer_id", referrerID))
	}

	return res, nil
}
