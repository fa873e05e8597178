package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/token"
	"github.com/ErlanBelekov/expense-tracker/internal/transport/http/handler"
	"github.com/ErlanBelekov/expense-tracker/internal/transport/http/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	sloggin "github.com/samber/slog-gin"
)

type RouterConfig struct {
	AllowedOrigins []string
	HSTS           bool
	// AuthRateLimit is requests per second per client IP on the
	// unauthenticated auth routes. Zero disables limiting.
	AuthRateLimit float64
	AuthRateBurst int
}

type Handlers struct {
	Auth    *handler.AuthHandler
	Account *handler.AccountHandler
	Expense *handler.ExpenseHandler
}

func NewRouter(logger *slog.Logger, cfg RouterConfig, tokens *token.Manager, h Handlers) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security(cfg.HSTS))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	api := r.Group("/api")

	// Unauthenticated auth routes
	public := api.Group("")
	if cfg.AuthRateLimit > 0 {
		public.Use(middleware.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst).Middleware(logger))
	}
	public.POST("/signup", h.Auth.Signup)
	public.POST("/login", h.Auth.Login)
	public.PUT("/refresh-token", h.Auth.Refresh)
	public.POST("/forget-password", h.Auth.ForgotPassword)
	public.PUT("/reset-password", h.Auth.ResetPassword)
	api.POST("/logout", h.Auth.Logout)

	authMW := middleware.Auth(tokens)

	// Protected account routes
	account := api.Group("", authMW)
	account.GET("/userdata", h.Account.GetUser)
	account.POST("/send-otp", h.Account.SendOTP)
	account.PUT("/update/user-data", h.Account.UpdateUserData)

	// Protected expense routes
	expenses := api.Group("", authMW)
	expenses.POST("/add/expense", h.Expense.Add)
	expenses.PUT("/update/expense/:id", h.Expense.Update)
	expenses.DELETE("/delete/expense/:id", h.Expense.Delete)
	expenses.GET("/get/expense", h.Expense.List)
	expenses.GET("/get/expense/summary", h.Expense.Summary)
	expenses.GET("/get/expense/:id", h.Expense.Get)

	return r
}
