package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
)

type accountUsecaser interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	SendOTP(ctx context.Context, userID, email, subject string) (string, error)
	UpdateUserData(ctx context.Context, userID string, in usecase.UpdateUserInput) error
}

type AccountHandler struct {
	accountUsecase accountUsecaser
	echoOTP        bool
	logger         *slog.Logger
}

// NewAccountHandler returns the handler for the authenticated account routes.
// With echoOTP set, /send-otp includes the generated code in its response.
func NewAccountHandler(accountUsecase accountUsecaser, echoOTP bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accountUsecase: accountUsecase,
		echoOTP:        echoOTP,
		logger:         logger.With("component", "account_handler"),
	}
}

// GET /api/userdata
func (h *AccountHandler) GetUser(c *gin.Context) {
	user, err := h.accountUsecase.GetUser(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		failDomain(c, h.logger, "get user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": toUserResponse(user)})
}

type sendOTPRequest struct {
	Email   string `json:"email"   binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=50"`
}

// POST /api/send-otp
func (h *AccountHandler) SendOTP(c *gin.Context) {
	var req sendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	code, err := h.accountUsecase.SendOTP(c.Request.Context(), c.GetString("userID"), req.Email, req.Subject)
	if err != nil {
		failDomain(c, h.logger, "send otp", err)
		return
	}

	resp := gin.H{"success": true, "message": "OTP sent to your email successfully"}
	if h.echoOTP {
		resp["otp"] = code
	}
	c.JSON(http.StatusOK, resp)
}

type updateUserRequest struct {
	NewEmail    *string `json:"newEmail"    binding:"omitempty,email"`
	NewName     *string `json:"newName"     binding:"omitempty,min=1,max=30"`
	NewPassword *string `json:"newPassword" binding:"omitempty,min=6,max=20"`
	NewPhone    *string `json:"newPhone"    binding:"omitempty,numeric,min=10,max=15"`
	OTP         string  `json:"otp"         binding:"omitempty,len=6"`
}

var updateMessages = []struct {
	set func(updateUserRequest) bool
	msg string
}{
	{func(r updateUserRequest) bool { return r.NewEmail != nil }, "Email updated successfully"},
	{func(r updateUserRequest) bool { return r.NewPhone != nil }, "Phone number updated successfully"},
	{func(r updateUserRequest) bool { return r.NewName != nil }, "Name updated successfully"},
	{func(r updateUserRequest) bool { return r.NewPassword != nil }, "Password updated successfully"},
}

// PUT /api/update/user-data
func (h *AccountHandler) UpdateUserData(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}
	req.NewEmail, req.NewPhone = blankAsNil(req.NewEmail), blankAsNil(req.NewPhone)
	req.NewName, req.NewPassword = blankAsNil(req.NewName), blankAsNil(req.NewPassword)

	err := h.accountUsecase.UpdateUserData(c.Request.Context(), c.GetString("userID"), usecase.UpdateUserInput{
		NewEmail:    req.NewEmail,
		NewPhone:    req.NewPhone,
		NewName:     req.NewName,
		NewPassword: req.NewPassword,
		OTP:         req.OTP,
	})
	if err != nil {
		failDomain(c, h.logger, "update user data", err)
		return
	}

	msg := "User updated successfully"
	for _, m := range updateMessages {
		if m.set(req) {
			msg = m.msg
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": msg})
}

// Clients send "" for fields the user left untouched.
func blankAsNil(s *string) *string {
	if s != nil && *s == "" {
		return nil
	}
	return s
}
