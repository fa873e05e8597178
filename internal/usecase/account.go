package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/email"
	"github.com/ErlanBelekov/expense-tracker/internal/otp"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
)

// UpdateUserInput carries at most one change. When several fields are set,
// the first in the order email, phone, name, password is applied.
type UpdateUserInput struct {
	NewEmail    *string
	NewPhone    *string
	NewName     *string
	NewPassword *string
	OTP         string
}

type AccountUsecase struct {
	users  repository.UserRepository
	mailer email.CodeDeliverer
	hasher *password.Hasher
	logger *slog.Logger
	now    func() time.Time
}

func NewAccountUsecase(
	users repository.UserRepository,
	mailer email.CodeDeliverer,
	hasher *password.Hasher,
	logger *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		users:  users,
		mailer: mailer,
		hasher: hasher,
		logger: logger.With("component", "account"),
		now:    time.Now,
	}
}

func (u *AccountUsecase) WithClock(now func() time.Time) *AccountUsecase {
	u.now = now
	return u
}

func (u *AccountUsecase) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// SendOTP mails a code to the caller's current address. emailAddr must be
// that address. The generated code is returned so that local builds can echo it.
func (u *AccountUsecase) SendOTP(ctx context.Context, userID, emailAddr, subject string) (string, error) {
	user, err := u.GetUser(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Email != emailAddr {
		return "", domain.ErrEmailMismatch
	}

	code, err := issueCode(ctx, u.users, u.mailer, u.now(), user, email.Code{
		Purpose: domain.OTPPurposeAccountChange,
		Subject: subject,
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

func (u *AccountUsecase) UpdateUserData(ctx context.Context, userID string, in UpdateUserInput) error {
	user, err := u.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	in.dropBlank()
	switch {
	case in.NewEmail != nil:
		if _, err := u.users.FindByEmail(ctx, *in.NewEmail); err == nil {
			return domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrUserNotFound) {
			return fmt.Errorf("check email: %w", err)
		}
		return u.consume(ctx, user, in.OTP, "email", domain.UserChange{Email: in.NewEmail})

	case in.NewPhone != nil:
		taken, err := u.users.PhoneTaken(ctx, *in.NewPhone)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrPhoneTaken
		}
		return u.consume(ctx, user, in.OTP, "phone", domain.UserChange{Phone: in.NewPhone})

	case in.NewName != nil:
		if err := u.users.UpdateName(ctx, user.ID, *in.NewName); err != nil {
			return err
		}
		u.logger.InfoContext(ctx, "account updated", "field", "name")
		return nil

	case in.NewPassword != nil:
		if !otp.Matches(user.OTPHash, user.OTPExpiresAt, in.OTP, u.now()) {
			return domain.ErrOTPInvalid
		}
		hash, err := u.hasher.Hash(*in.NewPassword)
		if err != nil {
			return err
		}
		return u.consume(ctx, user, in.OTP, "password", domain.UserChange{PasswordHash: &hash})
	}

	return domain.ErrNothingToUpdate
}

// dropBlank treats empty strings as absent so they never select an update branch.
func (in *UpdateUserInput) dropBlank() {
	for _, f := range []**string{&in.NewEmail, &in.NewPhone, &in.NewName, &in.NewPassword} {
		if *f != nil && **f == "" {
			*f = nil
		}
	}
}

func (u *AccountUsecase) consume(ctx context.Context, user *domain.User, code, field string, change domain.UserChange) error {
	if code == "" {
		return domain.ErrOTPInvalid
	}
	err := u.users.ConsumeOTP(ctx, user.ID, otp.Hash(code), u.now(), change)
	switch {
	case err == nil:
		u.logger.InfoContext(ctx, "account updated", "field", field)
		return nil
	case errors.Is(err, domain.ErrOTPInvalid), errors.Is(err, domain.ErrEmailTaken):
		return err
	default:
		return fmt.Errorf("update %s: %w", field, err)
	}
}
