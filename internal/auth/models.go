package auth

import "time"

type Account struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Email          string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   *string    `json:"-"`
	DisplayName    string     `json:"name"`
	MarketingOptIn bool       `json:"-"`
	IsPro          bool       `json:"is_pro"`
	CreatedAt      time.Time  `json:"-"`
	LastLogin      *time.Time `json:"-"`
}

type Session struct {
	ID        string    `gorm:"primaryKey" json:"-"`
	AccountID uint      `gorm:"index;not null" json:"-"`
	CreatedAt time.Time `json:"-"`
	LastSeen  time.Time `json:"-"`
}

// PasswordResetToken is never physically deleted; consumption sets UsedAt.
type PasswordResetToken struct {
	ID        uint       `gorm:"primaryKey"`
	AccountID uint       `gorm:"index;not null"`
	Token     string     `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	UsedAt    *time.Time
}

func (PasswordResetToken) TableName() string { return "password_resets" }
