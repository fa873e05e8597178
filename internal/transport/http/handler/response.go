package handler

import (
	"encoding/json"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
)

// userResponse never carries the password hash or one-time code fields.
type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Amounts are JSON numbers with two decimals so clients read 42.50, not "42.5".
type expenseResponse struct {
	ID            string      `json:"id"`
	UserID        string      `json:"userId"`
	Amount        json.Number `json:"amount"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	ExpenseDate   time.Time   `json:"expenseDate"`
	PaymentMethod string      `json:"paymentMethod"`
	Notes         *string     `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

func toExpenseResponse(e *domain.Expense) expenseResponse {
	return expenseResponse{
		ID:            e.ID,
		UserID:        e.UserID,
		Amount:        json.Number(e.Amount.StringFixed(2)),
		Description:   e.Description,
		Category:      string(e.Category),
		ExpenseDate:   e.ExpenseDate,
		PaymentMethod: string(e.PaymentMethod),
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func toExpenseResponses(es []*domain.Expense) []expenseResponse {
	out := make([]expenseResponse, 0, len(es))
	for _, e := range es {
		out = append(out, toExpenseResponse(e))
	}
	return out
}

type categoryTotalResponse struct {
	Category   string      `json:"category"`
	Total      json.Number `json:"total"`
	Count      int         `json:"count"`
	Percentage float64     `json:"percentage"`
}

type summaryResponse struct {
	Start      *time.Time              `json:"start"`
	End        *time.Time              `json:"end"`
	Total      json.Number             `json:"total"`
	Count      int                     `json:"count"`
	Categories []categoryTotalResponse `json:"categories"`
}

func toSummaryResponse(s *domain.Summary) summaryResponse {
	cats := make([]categoryTotalResponse, 0, len(s.Categories))
	for _, ct := range s.Categories {
		cats = append(cats, categoryTotalResponse{
			Category:   string(ct.Category),
			Total:      json.Number(ct.Total.StringFixed(2)),
			Count:      ct.Count,
			Percentage: ct.Percentage,
		})
	}
	return summaryResponse{
		Start:      s.Start,
		End:        s.End,
		Total:      json.Number(s.Total.StringFixed(2)),
		Count:      s.Count,
		Categories: cats,
	}
}
