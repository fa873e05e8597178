package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	errInternalServer  = "Internal server error"
	errBadRequest      = "Bad request"
	errUserExists      = "User already exists, please login instead"
	errNoSuchEmail     = "No user found with this email, please signup"
	errIncorrectPass   = "Incorrect password"
	errRefreshMissing  = "Please login first"
	errRefreshInvalid  = "Invalid refresh token"
	errResetInvalid    = "Invalid or expired reset token"
	errOTPInvalid      = "Invalid or expired OTP"
	errUserNotFound    = "User not found"
	errEmailMismatch   = "Email does not match your account"
	errEmailTaken      = "Email already exists"
	errPhoneTaken      = "Phone number already exists"
	errNothingToUpdate = "No valid update field provided"
	errExpenseNotFound = "Expense not found"
	errInvalidID       = "Invalid expense ID"
	errInvalidTimezone = "Invalid timezone"
)

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// failDomain maps a usecase error to a response. Errors it does not know are
// logged and reported as 500 without detail.
func failDomain(c *gin.Context, logger *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		fail(c, http.StatusNotFound, errUserNotFound)
	case errors.Is(err, domain.ErrWrongPassword):
		fail(c, http.StatusUnauthorized, errIncorrectPass)
	case errors.Is(err, domain.ErrOTPInvalid):
		fail(c, http.StatusBadRequest, errOTPInvalid)
	case errors.Is(err, domain.ErrEmailMismatch):
		fail(c, http.StatusBadRequest, errEmailMismatch)
	case errors.Is(err, domain.ErrEmailTaken):
		fail(c, http.StatusBadRequest, errEmailTaken)
	case errors.Is(err, domain.ErrPhoneTaken):
		fail(c, http.StatusBadRequest, errPhoneTaken)
	case errors.Is(err, domain.ErrNothingToUpdate):
		fail(c, http.StatusBadRequest, errNothingToUpdate)
	case errors.Is(err, domain.ErrExpenseNotFound):
		fail(c, http.StatusNotFound, errExpenseNotFound)
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidPayment):
		fail(c, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(c.Request.Context(), op, "error", err)
		fail(c, http.StatusInternalServerError, errInternalServer)
	}
}
