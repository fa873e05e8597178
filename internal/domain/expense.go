package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrAmountPrecision = errors.New("amount must have at most two decimal places")
	ErrAmountTooLarge  = errors.New("amount must be less than 10000000000")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidPayment  = errors.New("invalid payment method")
)

// MaxAmount is the exclusive upper bound of NUMERIC(12,2).
var MaxAmount = decimal.New(1, 10)

type Category string

const (
	CategoryFoodDining     Category = "Food & Dining"
	CategoryTransportation Category = "Transportation"
	CategoryShopping       Category = "Shopping"
	CategoryEntertainment  Category = "Entertainment"
	CategoryHealthcare     Category = "Healthcare"
	CategoryBillsUtilities Category = "Bills & Utilities"
	CategoryEducation      Category = "Education"
	CategoryTravel         Category = "Travel"
	CategoryBusiness       Category = "Business"
	CategoryTechnology     Category = "Technology"
	CategoryPersonal       Category = "Personal"
	CategoryGas            Category = "Gas"
	CategoryGroceries      Category = "Groceries"
	CategoryCarExpense     Category = "Car Expense"
	CategoryHomeLiving     Category = "Home & Living"
	CategoryOther          Category = "Other"
)

// Categories lists every accepted category. The order is the display order.
var Categories = []Category{
	CategoryFoodDining,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryHealthcare,
	CategoryBillsUtilities,
	CategoryEducation,
	CategoryTravel,
	CategoryBusiness,
	CategoryTechnology,
	CategoryPersonal,
	CategoryGas,
	CategoryGroceries,
	CategoryCarExpense,
	CategoryHomeLiving,
	CategoryOther,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "Cash"
	PaymentCreditCard PaymentMethod = "Credit Card"
	PaymentDebitCard  PaymentMethod = "Debit Card"
	PaymentOnline     PaymentMethod = "Online Payment"
	PaymentUPI        PaymentMethod = "UPI"
	PaymentWallet     PaymentMethod = "Wallet"
	PaymentNetBanking PaymentMethod = "Net Banking"
	PaymentOther      PaymentMethod = "Other"
)

var PaymentMethods = []PaymentMethod{
	PaymentCash,
	PaymentCreditCard,
	PaymentDebitCard,
	PaymentOnline,
	PaymentUPI,
	PaymentWallet,
	PaymentNetBanking,
	PaymentOther,
}

func (p PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods {
		if p == known {
			return true
		}
	}
	return false
}

type Expense struct {
	ID            string
	UserID        string
	Amount        decimal.Decimal
	Description   string
	Category      Category
	ExpenseDate   time.Time
	PaymentMethod PaymentMethod
	Notes         *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the invariants the store also enforces.
func (e *Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Amounts are whole cents.
	if !e.Amount.Equal(e.Amount.Truncate(2)) {
		return ErrAmountPrecision
	}
	if e.Amount.GreaterThanOrEqual(MaxAmount) {
		return ErrAmountTooLarge
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if !e.PaymentMethod.Valid() {
		return ErrInvalidPayment
	}
	return nil
}

type CategoryTotal struct {
	Category   Category
	Total      decimal.Decimal
	Count      int
	Percentage float64
}

type Summary struct {
	Start      *time.Time
	End        *time.Time
	Total      decimal.Decimal
	Count      int
	Categories []CategoryTotal
}
