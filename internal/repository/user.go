package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
)

type UserRepository interface {
	// Create inserts a user. Returns domain.ErrEmailTaken when the email is in use.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	PhoneTaken(ctx context.Context, phone string) (bool, error)
	UpdateName(ctx context.Context, id, name string) error

	// SetOTP stores the hash of a freshly issued code, replacing any previous one.
	SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error

	// ConsumeOTP applies change and clears the stored code in one step, but only
	// if otpHash matches the stored hash and it has not expired at now.
	// Returns domain.ErrOTPInvalid otherwise, leaving the user untouched.
	ConsumeOTP(ctx context.Context, id, otpHash string, now time.Time, change domain.UserChange) error

	// ClearExpiredOTPs removes codes that expired before cutoff.
	ClearExpiredOTPs(ctx context.Context, cutoff time.Time) (int, error)
}
