package repository

import (
	"context"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
)

type ListExpensesInput struct {
	UserID string
	// Nil bounds mean no date filter.
	From *time.Time // inclusive
	To   *time.Time // exclusive
}

type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Expense, error)
	Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	Delete(ctx context.Context, id, userID string) error
	// List returns expenses ordered by expense date, newest first.
	List(ctx context.Context, input ListExpensesInput) ([]*domain.Expense, error)
	// TotalsByCategory aggregates the same rows List would return.
	TotalsByCategory(ctx context.Context, input ListExpensesInput) ([]domain.CategoryTotal, error)
}
