package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/period"
	"github.com/ErlanBelekov/expense-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type expenseUsecaser interface {
	Add(ctx context.Context, userID string, in usecase.ExpenseInput) (*domain.Expense, error)
	Update(ctx context.Context, userID, id string, in usecase.ExpenseInput) (*domain.Expense, error)
	Delete(ctx context.Context, userID, id string) error
	Get(ctx context.Context, userID, id string) (*domain.Expense, error)
	List(ctx context.Context, userID string, q usecase.PeriodQuery) ([]*domain.Expense, error)
	Summary(ctx context.Context, userID string, q usecase.PeriodQuery) (*domain.Summary, error)
}

type ExpenseHandler struct {
	expenseUsecase expenseUsecaser
	logger         *slog.Logger
}

func NewExpenseHandler(expenseUsecase expenseUsecaser, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		expenseUsecase: expenseUsecase,
		logger:         logger.With("component", "expense_handler"),
	}
}

type expenseRequest struct {
	Amount        *decimal.Decimal `json:"amount"        binding:"required"`
	Description   string           `json:"description"   binding:"required,min=3,max=500"`
	Category      string           `json:"category"      binding:"required,category"`
	PaymentMethod string           `json:"paymentMethod" binding:"omitempty,payment_method"`
	Notes         *string          `json:"notes"         binding:"omitempty,max=500"`
	ExpenseDate   *time.Time       `json:"expenseDate"`
}

func (r expenseRequest) input() usecase.ExpenseInput {
	return usecase.ExpenseInput{
		Amount:        *r.Amount,
		Description:   r.Description,
		Category:      domain.Category(r.Category),
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		ExpenseDate:   r.ExpenseDate,
		Notes:         r.Notes,
	}
}

// POST /api/add/expense
func (h *ExpenseHandler) Add(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	e, err := h.expenseUsecase.Add(c.Request.Context(), c.GetString("userID"), req.input())
	if err != nil {
		failDomain(c, h.logger, "add expense", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Expense added successfully",
		"expense": toExpenseResponse(e),
	})
}

// PUT /api/update/expense/:id
func (h *ExpenseHandler) Update(c *gin.Context) {
	id, ok := expenseID(c)
	if !ok {
		return
	}

	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return
	}

	e, err := h.expenseUsecase.Update(c.Request.Context(), c.GetString("userID"), id, req.input())
	if err != nil {
		failDomain(c, h.logger, "update expense", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"message":        "Expense updated successfully",
		"updatedExpense": toExpenseResponse(e),
	})
}

// DELETE /api/delete/expense/:id
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, ok := expenseID(c)
	if !ok {
		return
	}

	if err := h.expenseUsecase.Delete(c.Request.Context(), c.GetString("userID"), id); err != nil {
		failDomain(c, h.logger, "delete expense", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Expense deleted successfully"})
}

// GET /api/get/expense/:id
func (h *ExpenseHandler) Get(c *gin.Context) {
	id, ok := expenseID(c)
	if !ok {
		return
	}

	e, err := h.expenseUsecase.Get(c.Request.Context(), c.GetString("userID"), id)
	if err != nil {
		failDomain(c, h.logger, "get expense", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Expense retrieved successfully",
		"expense": toExpenseResponse(e),
	})
}

type periodQuery struct {
	Period string `form:"period"`
	Year   *int   `form:"year"  binding:"omitempty,min=1970,max=9999"`
	Month  *int   `form:"month" binding:"omitempty,min=1,max=12"`
	Week   *int   `form:"week"  binding:"omitempty,min=1,max=53"`
	Day    *int   `form:"day"   binding:"omitempty,min=1,max=31"`
	TZ     string `form:"tz"`
}

// GET /api/get/expense?period=&year=&month=&week=&day=&tz=
// An unknown or incomplete period lists every expense.
func (h *ExpenseHandler) List(c *gin.Context) {
	q, ok := bindPeriod(c)
	if !ok {
		return
	}

	expenses, err := h.expenseUsecase.List(c.Request.Context(), c.GetString("userID"), q)
	if err != nil {
		failDomain(c, h.logger, "list expenses", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  "Expenses retrieved successfully",
		"expenses": toExpenseResponses(expenses),
	})
}

// GET /api/get/expense/summary?period=...
func (h *ExpenseHandler) Summary(c *gin.Context) {
	q, ok := bindPeriod(c)
	if !ok {
		return
	}

	s, err := h.expenseUsecase.Summary(c.Request.Context(), c.GetString("userID"), q)
	if err != nil {
		failDomain(c, h.logger, "expense summary", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "summary": toSummaryResponse(s)})
}

func bindPeriod(c *gin.Context) (usecase.PeriodQuery, bool) {
	var req periodQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, bindError(err))
		return usecase.PeriodQuery{}, false
	}

	q := usecase.PeriodQuery{
		Kind: period.Kind(req.Period),
		Params: period.Params{
			Year:  req.Year,
			Month: req.Month,
			Week:  req.Week,
			Day:   req.Day,
		},
	}
	if req.TZ != "" {
		loc, err := time.LoadLocation(req.TZ)
		if err != nil {
			fail(c, http.StatusBadRequest, errInvalidTimezone)
			return usecase.PeriodQuery{}, false
		}
		q.Location = loc
	}
	return q, true
}

func expenseID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, errInvalidID)
		return "", false
	}
	return id.String(), true
}
