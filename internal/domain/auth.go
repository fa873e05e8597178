package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already exists")
	ErrPhoneTaken      = errors.New("phone number already exists")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrTokenInvalid    = errors.New("token is invalid")
	ErrOTPInvalid      = errors.New("invalid or expired OTP")
	ErrEmailMismatch   = errors.New("email does not match the account")
	ErrNothingToUpdate = errors.New("no valid update field provided")
	ErrDeliveryFailed  = errors.New("one-time code delivery failed")
)

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Phone        string
	OTPHash      *string
	OTPExpiresAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserChange is a set of credential-gated field updates applied together with
// consuming the user's one-time code. Nil fields are left unchanged.
type UserChange struct {
	Email        *string
	Phone        *string
	PasswordHash *string
}

// OTPPurpose names the flow a one-time code was issued for.
type OTPPurpose string

const (
	OTPPurposePasswordReset OTPPurpose = "password_reset"
	OTPPurposeAccountChange OTPPurpose = "account_change"
)
