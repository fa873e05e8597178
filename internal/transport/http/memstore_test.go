package httptransport_test

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/domain"
	"github.com/ErlanBelekov/expense-tracker/internal/email"
	"github.com/ErlanBelekov/expense-tracker/internal/repository"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory stand-in for the Postgres repositories with the
// same observable semantics (unique email, owner scoping, compare-and-clear OTP).
type memStore struct {
	mu       sync.Mutex
	seq      int
	users    map[string]*domain.User
	expenses map[string]*domain.Expense
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*domain.User{}, expenses: map[string]*domain.Expense{}}
}

// nextID returns UUID-shaped ids so they pass path validation.
func (s *memStore) nextID() string {
	s.seq++
	return "00000000-0000-4000-8000-" + leftPad(strconv.Itoa(s.seq), 12)
}

func leftPad(v string, n int) string {
	for len(v) < n {
		v = "0" + v
	}
	return v
}

type memUsers struct{ *memStore }

func (s memUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	cp := *u
	cp.ID = s.nextID()
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s memUsers) PhoneTaken(_ context.Context, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s memUsers) UpdateName(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Name = name
	return nil
}

func (s memUsers) SetOTP(_ context.Context, id, otpHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.OTPHash, u.OTPExpiresAt = &otpHash, &expiresAt
	return nil
}

func (s memUsers) ConsumeOTP(_ context.Context, id, otpHash string, now time.Time, change domain.UserChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.OTPHash == nil || *u.OTPHash != otpHash || u.OTPExpiresAt == nil || !u.OTPExpiresAt.After(now) {
		return domain.ErrOTPInvalid
	}
	if change.Email != nil {
		u.Email = *change.Email
	}
	if change.Phone != nil {
		u.Phone = *change.Phone
	}
	if change.PasswordHash != nil {
		u.PasswordHash = *change.PasswordHash
	}
	u.OTPHash, u.OTPExpiresAt = nil, nil
	return nil
}

func (s memUsers) ClearExpiredOTPs(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.users {
		if u.OTPExpiresAt != nil && u.OTPExpiresAt.Before(cutoff) {
			u.OTPHash, u.OTPExpiresAt = nil, nil
			n++
		}
	}
	return n, nil
}

type memExpenses struct{ *memStore }

func (s memExpenses) Create(_ context.Context, e *domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.ID = s.nextID()
	cp.CreatedAt, cp.UpdatedAt = time.Now(), time.Now()
	s.expenses[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s memExpenses) GetByID(_ context.Context, id, userID string) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return nil, domain.ErrExpenseNotFound
	}
	cp := *e
	return &cp, nil
}

func (s memExpenses) Update(_ context.Context, e *domain.Expense) (*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.expenses[e.ID]
	if !ok || existing.UserID != e.UserID {
		return nil, domain.ErrExpenseNotFound
	}
	cp := *e
	cp.CreatedAt, cp.UpdatedAt = existing.CreatedAt, time.Now()
	s.expenses[e.ID] = &cp
	out := cp
	return &out, nil
}

func (s memExpenses) Delete(_ context.Context, id, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.expenses[id]
	if !ok || e.UserID != userID {
		return domain.ErrExpenseNotFound
	}
	delete(s.expenses, id)
	return nil
}

func (s memExpenses) List(_ context.Context, in repository.ListExpensesInput) ([]*domain.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*domain.Expense{}
	for _, e := range s.expenses {
		if e.UserID != in.UserID {
			continue
		}
		if in.From != nil && e.ExpenseDate.Before(*in.From) {
			continue
		}
		if in.To != nil && !e.ExpenseDate.Before(*in.To) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseDate.After(out[j].ExpenseDate) })
	return out, nil
}

func (s memExpenses) TotalsByCategory(ctx context.Context, in repository.ListExpensesInput) ([]domain.CategoryTotal, error) {
	list, _ := s.List(ctx, in)
	byCat := map[domain.Category]*domain.CategoryTotal{}
	for _, e := range list {
		t, ok := byCat[e.Category]
		if !ok {
			t = &domain.CategoryTotal{Category: e.Category, Total: decimal.Zero}
			byCat[e.Category] = t
		}
		t.Total = t.Total.Add(e.Amount)
		t.Count++
	}
	out := make([]domain.CategoryTotal, 0, len(byCat))
	for _, t := range byCat {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Total.GreaterThan(out[j].Total) })
	return out, nil
}

// inbox records the last code delivered to each address.
type inbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (b *inbox) DeliverCode(_ context.Context, to string, code email.Code) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.codes[to] = code.Value
	return nil
}

func (b *inbox) last(to string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.codes[to]
}
