package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// amount is exchanged as text so decimal.Decimal round-trips without a pgx codec.
const expenseColumns = `id, user_id, amount::text, description, category, expense_date,
	payment_method, notes, created_at, updated_at`

type ExpenseRepository struct {
	pool *pgxpool.Pool
}

func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO expenses (user_id, amount, description, category, expense_date, payment_method, notes)
		VALUES ($1, $2::text::numeric, $3, $4, $5, $6, $7)
		RETURNING `+expenseColumns,
		e.UserID, e.Amount.String(), e.Description, string(e.Category),
		e.ExpenseDate, string(e.PaymentMethod), e.Notes,
	)
	created, err := scanExpense(row)
	if err != nil {
		return nil, mapExpenseErr(err)
	}
	return created, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id, userID string) (*domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+expenseColumns+`
		FROM   expenses
		WHERE  id = $1 AND user_id = $2`, id, userID)
	e, err := scanExpense(row)
	if err != nil {
		return nil, mapExpenseErr(err)
	}
	return e, nil
}

func (r *ExpenseRepository) Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE expenses
		SET    amount         = $3::text::numeric,
		       description    = $4,
		       category       = $5,
		       expense_date   = $6,
		       payment_method = $7,
		       notes          = $8,
		       updated_at     = NOW()
		WHERE  id = $1 AND user_id = $2
		RETURNING `+expenseColumns,
		e.ID, e.UserID, e.Amount.String(), e.Description, string(e.Category),
		e.ExpenseDate, string(e.PaymentMethod), e.Notes,
	)
	updated, err := scanExpense(row)
	if err != nil {
		return nil, mapExpenseErr(err)
	}
	return updated, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapExpenseErr(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) List(ctx context.Context, input repository.ListExpensesInput) ([]*domain.Expense, error) {
	where, args := expenseFilter(input)
	rows, err := r.pool.Query(ctx, `
		SELECT `+expenseColumns+`
		FROM   expenses
		WHERE  `+where+`
		ORDER  BY expense_date DESC, id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []*domain.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

func (r *ExpenseRepository) TotalsByCategory(ctx context.Context, input repository.ListExpensesInput) ([]domain.CategoryTotal, error) {
	where, args := expenseFilter(input)
	rows, err := r.pool.Query(ctx, `
		SELECT   category, SUM(amount)::text, COUNT(*)
		FROM     expenses
		WHERE    `+where+`
		GROUP BY category
		ORDER BY SUM(amount) DESC, category`, args...)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	defer rows.Close()

	totals := []domain.CategoryTotal{}
	for rows.Next() {
		var (
			category string
			sum      string
			t        domain.CategoryTotal
		)
		if err := rows.Scan(&category, &sum, &t.Count); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		if t.Total, err = decimal.NewFromString(sum); err != nil {
			return nil, fmt.Errorf("parse category total: %w", err)
		}
		t.Category = domain.Category(category)
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return totals, nil
}

func expenseFilter(input repository.ListExpensesInput) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{input.UserID}
	if input.From != nil {
		args = append(args, *input.From)
		conds = append(conds, fmt.Sprintf("expense_date >= $%d", len(args)))
	}
	if input.To != nil {
		args = append(args, *input.To)
		conds = append(conds, fmt.Sprintf("expense_date < $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func scanExpense(row rowScanner) (*domain.Expense, error) {
	var (
		e             domain.Expense
		amount        string
		category      string
		paymentMethod string
	)
	err := row.Scan(
		&e.ID, &e.UserID, &amount, &e.Description, &category, &e.ExpenseDate,
		&paymentMethod, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if e.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	e.Category = domain.Category(category)
	e.PaymentMethod = domain.PaymentMethod(paymentMethod)
	return &e, nil
}

func mapExpenseErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrExpenseNotFound
	}
	switch code, constraint := pgErrorCode(err); {
	case code == codeInvalidText:
		// malformed UUID
		return domain.ErrExpenseNotFound
	case code == codeNumericOverflow:
		return domain.ErrAmountTooLarge
	case code == codeCheckViolation && strings.Contains(constraint, "amount"):
		return domain.ErrInvalidAmount
	case code == codeCheckViolation && strings.Contains(constraint, "payment_method"):
		return domain.ErrInvalidPayment
	case code == codeCheckViolation && strings.Contains(constraint, "category"):
		return domain.ErrInvalidCategory
	}
	return fmt.Errorf("expense query: %w", err)
}
