package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/email"
	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/ErlanBelekov/expense-tracker/internal/otp"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
)

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Session is the result of a successful login. The refresh token is meant for
// the cookie and never for the response body.
type Session struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *domain.User
}

type AuthUsecase struct {
	users  repository.UserRepository
	mailer email.CodeDeliverer
	tokens *token.Manager
	hasher *password.Hasher
	logger *slog.Logger
	now    func() time.Time
}

func NewAuthUsecase(
	users repository.UserRepository,
	mailer email.CodeDeliverer,
	tokens *token.Manager,
	hasher *password.Hasher,
	logger *slog.Logger,
) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		mailer: mailer,
		tokens: tokens,
		hasher: hasher,
		logger: logger.With("component", "auth"),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for one-time code expiry.
func (u *AuthUsecase) WithClock(now func() time.Time) *AuthUsecase {
	u.now = now
	return u
}

// Signup creates the account. It does not log the user in.
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	hash, err := u.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Phone:        in.Phone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			metrics.AuthEventsTotal.WithLabelValues("signup", "conflict").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("signup", "success").Inc()
	u.logger.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return user, nil
}

func (u *AuthUsecase) Login(ctx context.Context, emailAddr, plain string) (*Session, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.AuthEventsTotal.WithLabelValues("login", "unknown_user").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := u.hasher.Compare(user.PasswordHash, plain); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			metrics.AuthEventsTotal.WithLabelValues("login", "wrong_password").Inc()
			return nil, domain.ErrWrongPassword
		}
		return nil, err
	}

	id := identityOf(user)
	access, _, err := u.tokens.Issue(token.Access, id)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := u.tokens.Issue(token.Refresh, id)
	if err != nil {
		return nil, err
	}

	metrics.AuthEventsTotal.WithLabelValues("login", "success").Inc()
	return &Session{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
		User:             user,
	}, nil
}

// Refresh exchanges a refresh token for a new access token carrying the same
// identity. The refresh token itself is not rotated.
func (u *AuthUsecase) Refresh(_ context.Context, refreshToken string) (string, error) {
	claims, err := u.tokens.Verify(token.Refresh, refreshToken)
	if err != nil {
		metrics.AuthEventsTotal.WithLabelValues("refresh", "rejected").Inc()
		return "", fmt.Errorf("verify refresh token: %w", domain.ErrTokenInvalid)
	}

	access, _, err := u.tokens.Issue(token.Access, claims.Identity())
	if err != nil {
		return "", err
	}
	metrics.AuthEventsTotal.WithLabelValues("refresh", "success").Inc()
	return access, nil
}

// ForgotPassword stores and mails a fresh code, then returns a reset token
// scoped to emailAddr.
func (u *AuthUsecase) ForgotPassword(ctx context.Context, emailAddr string) (string, error) {
	user, err := u.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
		return "", fmt.Errorf("find user: %w", err)
	}

	if _, err := issueCode(ctx, u.users, u.mailer, u.now(), user, email.Code{Purpose: domain.OTPPurposePasswordReset}); err != nil {
		return "", err
	}

	resetToken, _, err := u.tokens.Issue(token.Reset, token.Identity{Email: user.Email})
	if err != nil {
		return "", err
	}
	u.logger.InfoContext(ctx, "password reset requested", "user_id", user.ID)
	return resetToken, nil
}

// ResetPassword replaces the password of the user named by resetToken. The
// code is checked and cleared in the same store write as the new hash.
func (u *AuthUsecase) ResetPassword(ctx context.Context, resetToken, code, newPassword string) error {
	claims, err := u.tokens.Verify(token.Reset, resetToken)
	if err != nil || claims.Email == "" {
		return fmt.Errorf("verify reset token: %w", domain.ErrTokenInvalid)
	}

	user, err := u.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("find user: %w", err)
	}

	now := u.now()
	// Cheap rejection before paying for bcrypt; ConsumeOTP re-checks atomically.
	if !otp.Matches(user.OTPHash, user.OTPExpiresAt, code, now) {
		metrics.AuthEventsTotal.WithLabelValues("reset_password", "bad_otp").Inc()
		return domain.ErrOTPInvalid
	}

	hash, err := u.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := u.users.ConsumeOTP(ctx, user.ID, otp.Hash(code), now, domain.UserChange{PasswordHash: &hash}); err != nil {
		if errors.Is(err, domain.ErrOTPInvalid) {
			metrics.AuthEventsTotal.WithLabelValues("reset_password", "bad_otp").Inc()
			return err
		}
		return fmt.Errorf("consume otp: %w", err)
	}

	metrics.AuthEventsTotal.WithLabelValues("reset_password", "success").Inc()
	u.logger.InfoContext(ctx, "password reset", "user_id", user.ID)
	return nil
}

// issueCode generates a code, stores its hash on user and delivers it to the
// user's current email. The stored code is left to expire if delivery fails.
func issueCode(
	ctx context.Context,
	users repository.UserRepository,
	mailer email.CodeDeliverer,
	now time.Time,
	user *domain.User,
	code email.Code,
) (string, error) {
	value, err := otp.Generate()
	if err != nil {
		return "", err
	}
	if err := users.SetOTP(ctx, user.ID, otp.Hash(value), now.Add(otp.TTL)); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	code.Value = value
	if err := mailer.DeliverCode(ctx, user.Email, code); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrDeliveryFailed, err)
	}
	metrics.OTPsIssuedTotal.WithLabelValues(string(code.Purpose)).Inc()
	return value, nil
}

func identityOf(u *domain.User) token.Identity {
	return token.Identity{UserID: u.ID, Email: u.Email, Phone: u.Phone, Name: u.Name}
}
