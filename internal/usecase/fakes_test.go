package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/email"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
	"golang.org/x/crypto/bcrypt"
)

// ---- fakes ----

type fakeUserRepo struct {
	create           func(ctx context.Context, u *domain.User) (*domain.User, error)
	findByID         func(ctx context.Context, id string) (*domain.User, error)
	findByEmail      func(ctx context.Context, email string) (*domain.User, error)
	phoneTaken       func(ctx context.Context, phone string) (bool, error)
	updateName       func(ctx context.Context, id, name string) error
	setOTP           func(ctx context.Context, id, otpHash string, expiresAt time.Time) error
	consumeOTP       func(ctx context.Context, id, otpHash string, now time.Time, change domain.UserChange) error
	clearExpiredOTPs func(ctx context.Context, cutoff time.Time) (int, error)
}

func (r *fakeUserRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	return r.create(ctx, u)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findByEmail(ctx, email)
}

func (r *fakeUserRepo) PhoneTaken(ctx context.Context, phone string) (bool, error) {
	return r.phoneTaken(ctx, phone)
}

func (r *fakeUserRepo) UpdateName(ctx context.Context, id, name string) error {
	return r.updateName(ctx, id, name)
}

func (r *fakeUserRepo) SetOTP(ctx context.Context, id, otpHash string, expiresAt time.Time) error {
	return r.setOTP(ctx, id, otpHash, expiresAt)
}

func (r *fakeUserRepo) ConsumeOTP(ctx context.Context, id, otpHash string, now time.Time, change domain.UserChange) error {
	return r.consumeOTP(ctx, id, otpHash, now, change)
}

func (r *fakeUserRepo) ClearExpiredOTPs(ctx context.Context, cutoff time.Time) (int, error) {
	return r.clearExpiredOTPs(ctx, cutoff)
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

type fakeMailer struct {
	deliver func(ctx context.Context, to string, code email.Code) error
}

func (m *fakeMailer) DeliverCode(ctx context.Context, to string, code email.Code) error {
	return m.deliver(ctx, to, code)
}

type fakeExpenseRepo struct {
	create           func(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	getByID          func(ctx context.Context, id, userID string) (*domain.Expense, error)
	update           func(ctx context.Context, e *domain.Expense) (*domain.Expense, error)
	delete           func(ctx context.Context, id, userID string) error
	list             func(ctx context.Context, in repository.ListExpensesInput) ([]*domain.Expense, error)
	totalsByCategory func(ctx context.Context, in repository.ListExpensesInput) ([]domain.CategoryTotal, error)
}

func (r *fakeExpenseRepo) Create(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	return r.create(ctx, e)
}

func (r *fakeExpenseRepo) GetByID(ctx context.Context, id, userID string) (*domain.Expense, error) {
	return r.getByID(ctx, id, userID)
}

func (r *fakeExpenseRepo) Update(ctx context.Context, e *domain.Expense) (*domain.Expense, error) {
	return r.update(ctx, e)
}

func (r *fakeExpenseRepo) Delete(ctx context.Context, id, userID string) error {
	return r.delete(ctx, id, userID)
}

func (r *fakeExpenseRepo) List(ctx context.Context, in repository.ListExpensesInput) ([]*domain.Expense, error) {
	return r.list(ctx, in)
}

func (r *fakeExpenseRepo) TotalsByCategory(ctx context.Context, in repository.ListExpensesInput) ([]domain.CategoryTotal, error) {
	return r.totalsByCategory(ctx, in)
}

// mapCache is an in-memory SummaryCache.
type mapCache struct {
	entries     map[string]*domain.Summary
	invalidated []string
}

func newMapCache() *mapCache { return &mapCache{entries: map[string]*domain.Summary{}} }

func (c *mapCache) Get(_ context.Context, userID, field string) (*domain.Summary, bool, error) {
	s, ok := c.entries[userID+"/"+field]
	return s, ok, nil
}

func (c *mapCache) Set(_ context.Context, userID, field string, s *domain.Summary) error {
	c.entries[userID+"/"+field] = s
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, userID string) error {
	c.invalidated = append(c.invalidated, userID)
	for k := range c.entries {
		if len(k) > len(userID) && k[:len(userID)+1] == userID+"/" {
			delete(c.entries, k)
		}
	}
	return nil
}

// ---- helpers ----

var testNow = time.Date(2024, time.March, 13, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

var testHasher = password.NewHasher(bcrypt.MinCost)

func newTokens() *token.Manager {
	m, err := token.NewManager(token.Config{
		AccessSecret:  []byte("access-secret-at-least-32-characters!!"),
		RefreshSecret: []byte("refresh-secret-at-least-32-characters!"),
		ResetSecret:   []byte("reset-secret-at-least-32-characters!!!"),
	})
	if err != nil {
		panic(err)
	}
	return m.WithClock(fixedClock)
}

func mustHash(plain string) string {
	h, err := testHasher.Hash(plain)
	if err != nil {
		panic(err)
	}
	return h
}

func strp(s string) *string { return &s }
