package models

import "time"

// ProviderAccount links an OAuth identity to a local user.
type ProviderAccount struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"index;not null" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Provider       string    `gorm:"type:varchar(50);uniqueIndex:idx_provider_account" json:"provider"`
	ProviderUserID string    `gorm:"type:varchar(191);uniqueIndex:idx_provider_account" json:"provider_user_id"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}
