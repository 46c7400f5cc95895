package auth

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/toolhubapp/toolhub-backend/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// bcryptCost matches what production hashes were minted with; changing it
// would only affect new hashes but keep verification cost predictable.
const bcryptCost = 12

// emailRe accepts the basic local@domain.tld shape. Anything fancier is the
// mail provider's problem.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail lowercases and trims an address. Uniqueness is enforced on
// the normalized form, making lookup case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePassword enforces the policy: at least 8 characters, at least one
// letter and one digit.
func ValidatePassword(p string) error {
	if len(p) < 8 {
		return ErrWeakPassword
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !letter || !digit {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account. It never creates a session; that is the
// caller's job.
func Register(email, password, displayName string, marketingOptIn bool) (*Account, error) {
	email = NormalizeEmail(email)
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	var existing Account
	if err := db.DB.First(&existing, "email = ?", email).Error; err == nil {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	account := Account{
		Email:          email,
		PasswordHash:   &hash,
		DisplayName:    displayName,
		MarketingOptIn: marketingOptIn,
	}
	if err := db.DB.Create(&account).Error; err != nil {
		// The unique index backs the existence check above under races.
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return &account, nil
}

// Verify checks email+password and stamps last_login on success.
func Verify(email, password string) (*Account, error) {
	email = NormalizeEmail(email)

	var account Account
	if err := db.DB.First(&account, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.PasswordHash == nil {
		return nil, ErrLegacyAccount
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	account.LastLogin = &now
	db.DB.Model(&account).Update("last_login", now)

	return &account, nil
}

// ChangePassword verifies the current password before writing a new hash.
func ChangePassword(accountID uint, currentPassword, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	var account Account
	if err := db.DB.First(&account, "id = ?", accountID).Error; err != nil {
		return ErrInvalidCredentials
	}
	if account.PasswordHash == nil {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return err
	}
	return db.DB.Model(&account).Update("password_hash", string(hashed)).Error
}
