package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
	"github.com/ErlanBelekov/expense-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
)

const refreshCookie = "refreshToken"

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*usecase.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, resetToken, otp, newPassword string) error
}

type AuthHandler struct {
	authUsecase  authUsecaser
	cookieSecure bool
	logger       *slog.Logger
}

// NewAuthHandler returns the handler for the unauthenticated auth routes.
// cookieSecure controls the Secure flag of the refresh cookie.
func NewAuthHandler(authUsecase authUsecaser, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		cookieSecure: cookieSecure,
		logger:       logger.With("component", "auth_handler"),
	}
}

type signupRequest struct {
	Name     string `json:"name"     binding:"required,min=3,max=30"`
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=20"`
	Phone    string `json:"phone"    binding:"required,numeric,len=10"`
}

// POST /api/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	user, err := h.authUsecase.Signup(c.Request.Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			fail(c, http.StatusConflict, errUserExists)
			return
		}
		failDomain(c, h.logger, "signup", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Your account created successfully",
		"user":    toUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/login
// The refresh token is only ever sent as an HttpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	s, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			fail(c, http.StatusNotFound, errNoSuchEmail)
			return
		}
		failDomain(c, h.logger, "login", err)
		return
	}

	h.setRefreshCookie(c, s.RefreshToken, int(token.RefreshTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "login Successfully",
		"accessToken": s.AccessToken,
		"id":          s.User.ID,
		"email":       s.User.Email,
		"name":        s.User.Name,
		"phone":       s.User.Phone,
	})
}

// PUT /api/refresh-token
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil || raw == "" {
		fail(c, http.StatusUnauthorized, errRefreshMissing)
		return
	}

	access, err := h.authUsecase.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			fail(c, http.StatusForbidden, errRefreshInvalid)
			return
		}
		failDomain(c, h.logger, "refresh token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": access})
}

// POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// POST /api/forget-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	resetToken, err := h.authUsecase.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			fail(c, http.StatusNotFound, "User not found, Please enter correct email")
			return
		}
		failDomain(c, h.logger, "forgot password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "OTP sent to your email",
		"resetToken": resetToken,
	})
}

type resetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6,max=20"`
	OTP         string `json:"otp"         binding:"required,numeric,len=6"`
	ResetToken  string `json:"resetToken"  binding:"required"`
}

// PUT /api/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	err := h.authUsecase.ResetPassword(c.Request.Context(), req.ResetToken, req.OTP, req.NewPassword)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			fail(c, http.StatusBadRequest, errResetInvalid)
			return
		}
		failDomain(c, h.logger, "reset password", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password reset successfully"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookie, value, maxAge, "/", "", h.cookieSecure, true)
}
