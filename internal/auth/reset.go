package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/toolhubapp/toolhub-backend/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 30 * time.Minute

func newResetToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failing means the process is unusable
	}
	return hex.EncodeToString(b)
}

// tokenExpired reports whether the deadline has passed at instant now. The
// deadline instant itself counts as expired; the conditional consumption
// UPDATE in ConfirmReset (`expires_at > now`) mirrors this.
func tokenExpired(now, expiresAt time.Time) bool {
	return !now.Before(expiresAt)
}

// RequestReset mints a reset token for the account behind email, if it
// exists. The empty-token success return for unknown emails is deliberate:
// callers must answer 200 either way to prevent account enumeration.
func RequestReset(email string) (token string, err error) {
	email = NormalizeEmail(email)

	var account Account
	if err := db.DB.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	reset := PasswordResetToken{
		AccountID: account.ID,
		Token:     newResetToken(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := db.DB.Create(&reset).Error; err != nil {
		return "", err
	}
	return reset.Token, nil
}

// ConfirmReset consumes a token and installs the new password hash.
//
// Classification (invalid vs used vs expired) reads the row first, but the
// actual consumption is a single conditional UPDATE keyed on used_at IS NULL
// so two racing confirms cannot both succeed.
func ConfirmReset(token, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	var reset PasswordResetToken
	if err := db.DB.First(&reset, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if reset.UsedAt != nil {
		return ErrTokenUsed
	}
	now := time.Now()
	if tokenExpired(now, reset.ExpiresAt) {
		return ErrTokenExpired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}

	return db.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PasswordResetToken{}).
			Where("id = ? AND used_at IS NULL AND expires_at > ?", reset.ID, now).
			Update("used_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to another confirm.
			return ErrTokenUsed
		}
		return tx.Model(&Account{}).Where("id = ?", reset.AccountID).
			Update("password_hash", string(hashed)).Error
	})
}
