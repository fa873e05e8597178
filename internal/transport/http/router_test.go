package httptransport_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ErlanBelekov/expense-tracker/internal/cache"
	"github.com/ErlanBelekov/expense-tracker/internal/password"
	"github.com/ErlanBelekov/expense-tracker/internal/token"
	httptransport "github.com/ErlanBelekov/expense-tracker/internal/transport/http"
	"github.com/ErlanBelekov/expense-tracker/internal/transport/http/handler"
	"github.com/ErlanBelekov/expense-tracker/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var secrets = token.Config{
	AccessSecret:  []byte("access-secret-at-least-32-characters!!"),
	RefreshSecret: []byte("refresh-secret-at-least-32-characters!"),
	ResetSecret:   []byte("reset-secret-at-least-32-characters!!!"),
}

type app struct {
	t      *testing.T
	router *gin.Engine
	store  *memStore
	inbox  *inbox
	tokens *token.Manager
}

func newApp(t *testing.T) *app {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens, err := token.NewManager(secrets)
	require.NoError(t, err)

	store := newMemStore()
	users, expenses := memUsers{store}, memExpenses{store}
	box := &inbox{codes: map[string]string{}}
	hasher := password.NewHasher(bcrypt.MinCost)

	h := httptransport.Handlers{
		Auth:    handler.NewAuthHandler(usecase.NewAuthUsecase(users, box, tokens, hasher, logger), true, logger),
		Account: handler.NewAccountHandler(usecase.NewAccountUsecase(users, box, hasher, logger), false, logger),
		Expense: handler.NewExpenseHandler(usecase.NewExpenseUsecase(expenses, cache.Nop{}, nil, logger), logger),
	}
	router := httptransport.NewRouter(logger, httptransport.RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
	}, tokens, h)

	return &app{t: t, router: router, store: store, inbox: box, tokens: tokens}
}

type request struct {
	method, path, body, bearer string
	cookies                    []*http.Cookie
}

func (a *app) do(r request) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(r.method, r.path, strings.NewReader(r.body))
	req.Header.Set("Content-Type", "application/json")
	if r.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+r.bearer)
	}
	for _, c := range r.cookies {
		req.AddCookie(c)
	}
	a.router.ServeHTTP(w, req)

	var body map[string]any
	if w.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func (a *app) signupAndLogin(email, pass string) (string, []*http.Cookie) {
	a.t.Helper()
	w, _ := a.do(request{method: http.MethodPost, path: "/api/signup",
		body: `{"name":"Alice","email":"` + email + `","password":"` + pass + `","phone":"5551234567"}`})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, body := a.login(email, pass)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return body["accessToken"].(string), w.Result().Cookies()
}

func (a *app) login(email, pass string) (*httptest.ResponseRecorder, map[string]any) {
	return a.do(request{method: http.MethodPost, path: "/api/login",
		body: `{"email":"` + email + `","password":"` + pass + `"}`})
}

func TestE2E_AddedExpenseListedForToday(t *testing.T) {
	a := newApp(t)
	access, _ := a.signupAndLogin("alice@example.com", "secret1")

	w, body := a.do(request{method: http.MethodPost, path: "/api/add/expense", bearer: access,
		body: `{"amount":42.50,"category":"Groceries","paymentMethod":"Cash","description":"Weekly shop"}`})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body["expense"].(map[string]any)

	w, body = a.do(request{method: http.MethodGet, path: "/api/get/expense?period=today", bearer: access})
	require.Equal(t, http.StatusOK, w.Code)
	list := body["expenses"].([]any)
	require.Len(t, list, 1)
	got := list[0].(map[string]any)
	assert.Equal(t, created["id"], got["id"])
	assert.Equal(t, 42.5, got["amount"])
	assert.Contains(t, w.Body.String(), `"amount":42.50`)
	assert.Equal(t, "Groceries", got["category"])

	w, body = a.do(request{method: http.MethodGet, path: "/api/get/expense/summary?period=month", bearer: access})
	require.Equal(t, http.StatusOK, w.Code)
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 42.5, summary["total"])
	assert.EqualValues(t, 1, summary["count"])
}

func TestE2E_SubCentAmountRejectedAndNotStored(t *testing.T) {
	a := newApp(t)
	access, _ := a.signupAndLogin("alice@example.com", "secret1")

	w, body := a.do(request{method: http.MethodPost, path: "/api/add/expense", bearer: access,
		body: `{"amount":0.001,"category":"Groceries","paymentMethod":"Cash","description":"Rounding test"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "amount must have at most two decimal places", body["message"])

	_, body = a.do(request{method: http.MethodGet, path: "/api/get/expense", bearer: access})
	assert.Empty(t, body["expenses"])
}

func TestE2E_ExpensesAreOwnerScoped(t *testing.T) {
	a := newApp(t)
	alice, _ := a.signupAndLogin("alice@example.com", "secret1")
	bob, _ := a.signupAndLogin("bob@example.com", "secret2")

	_, body := a.do(request{method: http.MethodPost, path: "/api/add/expense", bearer: alice,
		body: `{"amount":10,"category":"Travel","paymentMethod":"UPI","description":"Train ticket"}`})
	id := body["expense"].(map[string]any)["id"].(string)

	w, _ := a.do(request{method: http.MethodGet, path: "/api/get/expense/" + id, bearer: bob})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = a.do(request{method: http.MethodDelete, path: "/api/delete/expense/" + id, bearer: bob})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = a.do(request{method: http.MethodDelete, path: "/api/delete/expense/" + id, bearer: alice})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestE2E_ForgotAndResetPassword(t *testing.T) {
	a := newApp(t)
	a.signupAndLogin("alice@example.com", "secret1")

	w, body := a.do(request{method: http.MethodPost, path: "/api/forget-password", body: `{"email":"alice@example.com"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resetToken := body["resetToken"].(string)
	code := a.inbox.last("alice@example.com")
	require.Len(t, code, 6)

	reset := `{"newPassword":"newpass1","otp":"` + code + `","resetToken":"` + resetToken + `"}`
	w, _ = a.do(request{method: http.MethodPut, path: "/api/reset-password", body: reset})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = a.login("alice@example.com", "secret1")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = a.login("alice@example.com", "newpass1")
	assert.Equal(t, http.StatusOK, w.Code)

	// The code is single-use.
	w, body = a.do(request{method: http.MethodPut, path: "/api/reset-password",
		body: `{"newPassword":"another1","otp":"` + code + `","resetToken":"` + resetToken + `"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired OTP", body["message"])
}

func TestE2E_EmailUpdateRequiresOTP(t *testing.T) {
	a := newApp(t)
	access, _ := a.signupAndLogin("alice@example.com", "secret1")

	w, body := a.do(request{method: http.MethodPut, path: "/api/update/user-data", bearer: access,
		body: `{"newEmail":"new@example.com"}`})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired OTP", body["message"])

	_, body = a.do(request{method: http.MethodGet, path: "/api/userdata", bearer: access})
	assert.Equal(t, "alice@example.com", body["user"].(map[string]any)["email"])

	w, _ = a.do(request{method: http.MethodPost, path: "/api/send-otp", bearer: access,
		body: `{"email":"alice@example.com","subject":"email"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	code := a.inbox.last("alice@example.com")

	w, _ = a.do(request{method: http.MethodPut, path: "/api/update/user-data", bearer: access,
		body: `{"newEmail":"new@example.com","otp":"` + code + `"}`})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	_, body = a.do(request{method: http.MethodGet, path: "/api/userdata", bearer: access})
	assert.Equal(t, "new@example.com", body["user"].(map[string]any)["email"])
}

func TestE2E_RefreshFlow(t *testing.T) {
	a := newApp(t)
	_, cookies := a.signupAndLogin("alice@example.com", "secret1")
	require.Len(t, cookies, 1)

	w, body := a.do(request{method: http.MethodPut, path: "/api/refresh-token", cookies: cookies})
	require.Equal(t, http.StatusOK, w.Code)
	access := body["accessToken"].(string)

	w, _ = a.do(request{method: http.MethodGet, path: "/api/userdata", bearer: access})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(request{method: http.MethodPut, path: "/api/refresh-token"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestE2E_RefreshTokenSignedWithAccessSecretRejected(t *testing.T) {
	a := newApp(t)
	access, _ := a.signupAndLogin("alice@example.com", "secret1")

	// A refresh-shaped token signed with the access secret is just an access token.
	w, _ := a.do(request{method: http.MethodPut, path: "/api/refresh-token",
		cookies: []*http.Cookie{{Name: "refreshToken", Value: access}}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// And the refresh token never works as a bearer.
	w, _ = a.login("alice@example.com", "secret1")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	w, _ = a.do(request{method: http.MethodGet, path: "/api/userdata", bearer: cookies[0].Value})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestE2E_AuthMiddlewareStatuses(t *testing.T) {
	a := newApp(t)

	w, _ := a.do(request{method: http.MethodGet, path: "/api/get/expense"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := a.do(request{method: http.MethodGet, path: "/api/get/expense", bearer: "garbage"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, false, body["success"])
}
