// seed inserts a demo user and a spread of expenses into the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	seedEmail    = "seed@test.local"
	seedPassword = "seed-pass"
)

type expenseSpec struct {
	daysAgo     int
	amount      string
	category    domain.Category
	method      domain.PaymentMethod
	description string
}

var expenses = []expenseSpec{
	// Today and this week
	{0, "42.50", domain.CategoryGroceries, domain.PaymentCash, "Weekly shop"},
	{0, "3.20", domain.CategoryFoodDining, domain.PaymentUPI, "Coffee"},
	{1, "18.00", domain.CategoryTransportation, domain.PaymentDebitCard, "Metro card top-up"},
	{2, "64.99", domain.CategoryShopping, domain.PaymentCreditCard, "Running shoes"},
	{3, "120.00", domain.CategoryBillsUtilities, domain.PaymentNetBanking, "Electricity bill"},

	// Earlier this month and last month
	{9, "55.40", domain.CategoryGas, domain.PaymentCreditCard, "Fuel"},
	{12, "15.99", domain.CategoryEntertainment, domain.PaymentOnline, "Streaming subscription"},
	{20, "230.00", domain.CategoryHealthcare, domain.PaymentDebitCard, "Dental checkup"},
	{27, "89.00", domain.CategoryEducation, domain.PaymentOnline, "Online course"},
	{34, "410.75", domain.CategoryTravel, domain.PaymentCreditCard, "Flight tickets"},
	{41, "26.30", domain.CategoryPersonal, domain.PaymentWallet, "Haircut"},

	// Older
	{75, "999.00", domain.CategoryTechnology, domain.PaymentCreditCard, "Laptop"},
	{120, "74.10", domain.CategoryHomeLiving, domain.PaymentCash, "Kitchen supplies"},
	{200, "310.00", domain.CategoryCarExpense, domain.PaymentDebitCard, "Car service"},
	{380, "12.00", domain.CategoryOther, domain.PaymentOther, "Parking fine"},
}

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, run: direnv allow")
	}

	if err := postgres.Migrate(dbURL); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	users := postgres.NewUserRepository(pool)
	user, created, err := ensureUser(ctx, users)
	if err != nil {
		pool.Close()
		log.Fatalf("ensure user: %v", err)
	}

	// Expenses are only inserted for a fresh user so re-runs stay idempotent.
	var inserted int
	if created {
		repo := postgres.NewExpenseRepository(pool)
		now := time.Now().UTC()
		for _, spec := range expenses {
			_, err := repo.Create(ctx, &domain.Expense{
				UserID:        user.ID,
				Amount:        decimal.RequireFromString(spec.amount),
				Description:   spec.description,
				Category:      spec.category,
				PaymentMethod: spec.method,
				ExpenseDate:   now.AddDate(0, 0, -spec.daysAgo),
			})
			if err != nil {
				pool.Close()
				log.Fatalf("insert expense %q: %v", spec.description, err)
			}
			inserted++
		}
	}

	pool.Close()

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:              %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:           %s\n", user.ID)
	fmt.Printf("  Expenses created:  %d\n", inserted)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Step 1: log in and copy the access token:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/api/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Step 2: list this month's expenses and the summary:")
	fmt.Println()
	fmt.Println("    export JWT=eyJ...")
	fmt.Println("    curl -s 'http://localhost:8080/api/get/expense?period=month' -H \"Authorization: Bearer $JWT\"")
	fmt.Println("    curl -s 'http://localhost:8080/api/get/expense/summary?period=year' -H \"Authorization: Bearer $JWT\"")
}

func ensureUser(ctx context.Context, users repository.UserRepository) (*domain.User, bool, error) {
	existing, err := users.FindByEmail(ctx, seedEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	hash, err := password.NewHasher(0).Hash(seedPassword)
	if err != nil {
		return nil, false, err
	}
	u, err := users.Create(ctx, &domain.User{
		Name:         "Seed User",
		Email:        seedEmail,
		PasswordHash: hash,
		Phone:        "5550000000",
	})
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}
