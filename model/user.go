// Package model defines database models
package model

type User struct {
	// Telegram user id, assigned by Telegram and never generated locally
	ID int64 `gorm:"primaryKey" json:"id"`

	QuotaTotal int `gorm:"not null" json:"quota_total"`
	QuotaUsed  int `gorm:"not null;default:0" json:"quota_used"`

	// Number of users that onboarded through this user's referral link.
	// Kept as a counter and credited in the same transaction that writes
	// ReferredBy on the new user, so it never needs recomputing
	ReferralCount int `gorm:"not null;default:0" json:"referral_count"`

	// Set at most once, on first /start with a valid referral code
	ReferredBy *int64 `json:"referred_by,omitempty"`

	CreatedAt int64 `gorm:"not null" json:"created_at"`

	Files []File `gorm:"foreignKey:OwnerID" json:"-"`
}
