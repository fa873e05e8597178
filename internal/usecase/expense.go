package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/cache"
	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/ErlanBelekov/expense-tracker/internal/period"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

// SummaryCache stores computed summaries per user and resolved interval.
type SummaryCache interface {
	Get(ctx context.Context, userID, field string) (*domain.Summary, bool, error)
	Set(ctx context.Context, userID, field string, s *domain.Summary) error
	Invalidate(ctx context.Context, userID string) error
}

type ExpenseInput struct {
	Amount        decimal.Decimal
	Description   string
	Category      domain.Category
	PaymentMethod domain.PaymentMethod
	// Nil means now.
	ExpenseDate *time.Time
	Notes       *string
}

// PeriodQuery selects expenses by named period. A nil Location resolves the
// period in the usecase's default zone.
type PeriodQuery struct {
	Kind     period.Kind
	Params   period.Params
	Location *time.Location
}

type ExpenseUsecase struct {
	expenses   repository.ExpenseRepository
	cache      SummaryCache
	defaultLoc *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

func NewExpenseUsecase(
	expenses repository.ExpenseRepository,
	summaryCache SummaryCache,
	defaultLoc *time.Location,
	logger *slog.Logger,
) *ExpenseUsecase {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &ExpenseUsecase{
		expenses:   expenses,
		cache:      summaryCache,
		defaultLoc: defaultLoc,
		logger:     logger.With("component", "expense"),
		now:        time.Now,
	}
}

func (u *ExpenseUsecase) WithClock(now func() time.Time) *ExpenseUsecase {
	u.now = now
	return u
}

func (u *ExpenseUsecase) Add(ctx context.Context, userID string, in ExpenseInput) (*domain.Expense, error) {
	e := u.build(userID, in)
	if err := e.Validate(); err != nil {
		return nil, err
	}

	created, err := u.expenses.Create(ctx, e)
	if err != nil {
		return nil, wrapExpenseErr("create expense", err)
	}

	metrics.ExpenseWritesTotal.WithLabelValues("create").Inc()
	u.invalidate(ctx, userID)
	return created, nil
}

// Update replaces every editable field of the expense.
func (u *ExpenseUsecase) Update(ctx context.Context, userID, id string, in ExpenseInput) (*domain.Expense, error) {
	e := u.build(userID, in)
	e.ID = id
	if err := e.Validate(); err != nil {
		return nil, err
	}

	updated, err := u.expenses.Update(ctx, e)
	if err != nil {
		return nil, wrapExpenseErr("update expense", err)
	}

	metrics.ExpenseWritesTotal.WithLabelValues("update").Inc()
	u.invalidate(ctx, userID)
	return updated, nil
}

func (u *ExpenseUsecase) Delete(ctx context.Context, userID, id string) error {
	if err := u.expenses.Delete(ctx, id, userID); err != nil {
		return wrapExpenseErr("delete expense", err)
	}

	metrics.ExpenseWritesTotal.WithLabelValues("delete").Inc()
	u.invalidate(ctx, userID)
	return nil
}

func (u *ExpenseUsecase) Get(ctx context.Context, userID, id string) (*domain.Expense, error) {
	e, err := u.expenses.GetByID(ctx, id, userID)
	if err != nil {
		return nil, wrapExpenseErr("get expense", err)
	}
	return e, nil
}

// List returns the user's expenses in the requested period, newest first.
// An unresolvable period returns every expense.
func (u *ExpenseUsecase) List(ctx context.Context, userID string, q PeriodQuery) ([]*domain.Expense, error) {
	expenses, err := u.expenses.List(ctx, u.listInput(userID, q))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return expenses, nil
}

// Summary totals the user's expenses in the requested period, overall and
// per category. Results are cached until the user's next write.
func (u *ExpenseUsecase) Summary(ctx context.Context, userID string, q PeriodQuery) (*domain.Summary, error) {
	input := u.listInput(userID, q)
	field := cache.Field(input.From, input.To)

	if s, ok, err := u.cache.Get(ctx, userID, field); err != nil {
		u.logger.WarnContext(ctx, "summary cache read failed", "error", err)
	} else if ok {
		return s, nil
	}

	totals, err := u.expenses.TotalsByCategory(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	s := summarize(totals)
	s.Start, s.End = input.From, input.To

	if err := u.cache.Set(ctx, userID, field, s); err != nil {
		u.logger.WarnContext(ctx, "summary cache write failed", "error", err)
	}
	return s, nil
}

func (u *ExpenseUsecase) build(userID string, in ExpenseInput) *domain.Expense {
	date := u.now()
	if in.ExpenseDate != nil {
		date = *in.ExpenseDate
	}
	method := in.PaymentMethod
	if method == "" {
		method = domain.PaymentCash
	}
	return &domain.Expense{
		UserID:        userID,
		Amount:        in.Amount,
		Description:   in.Description,
		Category:      in.Category,
		ExpenseDate:   date,
		PaymentMethod: method,
		Notes:         in.Notes,
	}
}

func (u *ExpenseUsecase) listInput(userID string, q PeriodQuery) repository.ListExpensesInput {
	loc := q.Location
	if loc == nil {
		loc = u.defaultLoc
	}

	input := repository.ListExpensesInput{UserID: userID}
	if iv, ok := period.Resolve(q.Kind, q.Params, u.now().In(loc)); ok {
		input.From, input.To = &iv.Start, &iv.End
	}
	return input
}

// A failed invalidation leaves a stale summary until the cache TTL expires.
func (u *ExpenseUsecase) invalidate(ctx context.Context, userID string) {
	if err := u.cache.Invalidate(ctx, userID); err != nil {
		u.logger.WarnContext(ctx, "summary cache invalidation failed", "error", err)
	}
}

var hundred = decimal.NewFromInt(100)

func summarize(totals []domain.CategoryTotal) *domain.Summary {
	s := &domain.Summary{Total: decimal.Zero, Categories: make([]domain.CategoryTotal, 0, len(totals))}
	for _, t := range totals {
		s.Total = s.Total.Add(t.Total)
		s.Count += t.Count
	}
	for _, t := range totals {
		if s.Total.IsPositive() {
			t.Percentage = t.Total.Mul(hundred).Div(s.Total).Round(2).InexactFloat64()
		}
		s.Categories = append(s.Categories, t)
	}
	return s
}

func wrapExpenseErr(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrExpenseNotFound),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidPayment):
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
